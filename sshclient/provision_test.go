package sshclient

import (
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// opRecorder is a fake transferChannel shared across opens. It records every
// primitive as "stat:<path>" or "mkdir:<path>" and tracks how many channels
// were opened and closed, so tests can assert both the exact operation order
// and the one-channel-per-primitive discipline.
type opRecorder struct {
	ops      []string
	existing map[string]bool
	files    map[string]bool
	statErr  map[string]error
	mkdirErr map[string]error
	opened   int
	closed   int
}

func newOpRecorder(existingDirs ...string) *opRecorder {
	existing := make(map[string]bool, len(existingDirs))
	for _, dir := range existingDirs {
		existing[dir] = true
	}
	return &opRecorder{
		existing: existing,
		files:    make(map[string]bool),
		statErr:  make(map[string]error),
		mkdirErr: make(map[string]error),
	}
}

func (r *opRecorder) opener() channelOpener {
	return func() (transferChannel, error) {
		r.opened++
		return r, nil
	}
}

func (r *opRecorder) Stat(path string) (os.FileInfo, error) {
	r.ops = append(r.ops, "stat:"+path)
	if err, ok := r.statErr[path]; ok {
		return nil, err
	}
	if r.existing[path] {
		return fakeFileInfo{name: path, dir: true}, nil
	}
	if r.files[path] {
		return fakeFileInfo{name: path, dir: false}, nil
	}
	return nil, os.ErrNotExist
}

func (r *opRecorder) Mkdir(path string) error {
	r.ops = append(r.ops, "mkdir:"+path)
	if err, ok := r.mkdirErr[path]; ok {
		return err
	}
	r.existing[path] = true
	return nil
}

func (r *opRecorder) Close() error {
	r.closed++
	return nil
}

type fakeFileInfo struct {
	name string
	dir  bool
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0755 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.dir }
func (f fakeFileInfo) Sys() interface{}   { return nil }

func TestProvisionPathOrderedCreation(t *testing.T) {
	rec := newOpRecorder("/a")

	require.NoError(t, provisionPath(rec.opener(), "/a/b/c"))

	// Every level is probed in order; only the missing ones are created, each
	// immediately after its own probe.
	assert.Equal(t, []string{
		"stat:/a",
		"stat:/a/b",
		"mkdir:/a/b",
		"stat:/a/b/c",
		"mkdir:/a/b/c",
	}, rec.ops)

	// One channel per level, all of them closed.
	assert.Equal(t, 3, rec.opened)
	assert.Equal(t, 3, rec.closed)
}

func TestProvisionPathIdempotent(t *testing.T) {
	rec := newOpRecorder()

	require.NoError(t, provisionPath(rec.opener(), "/x/y"))
	require.NoError(t, provisionPath(rec.opener(), "/x/y"))

	assert.Equal(t, []string{
		"stat:/x",
		"mkdir:/x",
		"stat:/x/y",
		"mkdir:/x/y",
		// Second run finds every level in place and creates nothing.
		"stat:/x",
		"stat:/x/y",
	}, rec.ops)
}

func TestProvisionPathRelative(t *testing.T) {
	rec := newOpRecorder()

	require.NoError(t, provisionPath(rec.opener(), "work/data"))

	assert.Equal(t, []string{
		"stat:work",
		"mkdir:work",
		"stat:work/data",
		"mkdir:work/data",
	}, rec.ops)
}

func TestProvisionPathProbeFailureStopsCreation(t *testing.T) {
	rec := newOpRecorder("/a")
	rec.statErr["/a/b"] = errors.New("connection reset by peer")

	err := provisionPath(rec.opener(), "/a/b/c")
	require.Error(t, err)
	assert.True(t, IsTransferError(err))

	var terr *TransferError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "stat", terr.Op)
	assert.Equal(t, "/a/b", terr.Path)

	// The failed probe did not get misread as absence: nothing was created and
	// deeper levels were never touched.
	assert.Equal(t, []string{
		"stat:/a",
		"stat:/a/b",
	}, rec.ops)
}

func TestProvisionPathExistingNonDirectory(t *testing.T) {
	rec := newOpRecorder()
	rec.files["/data"] = true

	err := provisionPath(rec.opener(), "/data/out")
	require.Error(t, err)
	assert.True(t, IsTransferError(err))
	assert.Contains(t, err.Error(), "not a directory")

	assert.Equal(t, []string{"stat:/data"}, rec.ops)
}

func TestProvisionPathMkdirFailure(t *testing.T) {
	rec := newOpRecorder()
	rec.mkdirErr["/ro"] = errors.New("permission denied")

	err := provisionPath(rec.opener(), "/ro/sub")
	require.Error(t, err)
	assert.True(t, IsTransferError(err))

	var terr *TransferError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "mkdir", terr.Op)
	assert.Equal(t, "/ro", terr.Path)
}

func TestProvisionPathRootIsNoOp(t *testing.T) {
	rec := newOpRecorder()

	// The root has no segments to create and always exists, so provisioning
	// it succeeds without touching the remote side.
	for _, path := range []string{"/", "//"} {
		require.NoError(t, provisionPath(rec.opener(), path), "path %q", path)
	}
	assert.Empty(t, rec.ops)
	assert.Equal(t, 0, rec.opened)
}

func TestProvisionPathEmpty(t *testing.T) {
	rec := newOpRecorder()

	err := provisionPath(rec.opener(), "")
	require.Error(t, err)
	assert.True(t, IsTransferError(err))
	assert.Empty(t, rec.ops)
}

func TestProvisionPathOpenFailure(t *testing.T) {
	open := func() (transferChannel, error) {
		return nil, errors.New("administratively prohibited")
	}

	err := provisionPath(open, "/a/b")
	require.Error(t, err)
	assert.True(t, IsTransferError(err))
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path     string
		expected []string
	}{
		{"/a/b/c", []string{"a", "b", "c"}},
		{"a/b", []string{"a", "b"}},
		{"/a//b/", []string{"a", "b"}},
		{"/", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, splitPath(tt.path), "path %q", tt.path)
	}
}
