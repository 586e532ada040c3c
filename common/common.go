package common

import (
	"io/fs"
)

// Log field names shared by the logger helpers and everything that logs
// through them.
const (
	HostName      = "Host"
	SessionName   = "Session"
	OperationName = "Operation"
)

const (
	// FileMode0755 represents rwxr-xr-x
	FileMode0755 fs.FileMode = 0755
)

const (
	DefaultSSHPort = 22
)
