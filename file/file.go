package file

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"

	"github.com/acntech/easycontainers-sub002/common"
)

// PathExists checks if a path exists. It distinguishes between "not exist"
// and other errors: on a stat failure other than "not exist" it returns
// false and the error.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// CreateDir creates a directory and all its parents if they don't exist.
func CreateDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("path %s exists but is not a directory", path)
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(path, common.FileMode0755)
	}

	return fmt.Errorf("failed to check directory %s: %w", path, err)
}

// IsDir checks if the given path is a directory.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// FileMD5 calculates the MD5 checksum of a file.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
