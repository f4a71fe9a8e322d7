//go:build !windows

package pgadaptor

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// validateFilePermission requires a file readable and writable by its owner
// only, owned by the current user. It guards files that may hold passwords.
func validateFilePermission(filePath string) error {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if permission := fileInfo.Mode().Perm(); permission != os.FileMode(0600) {
		return fmt.Errorf("file %v has permissions %#o, expected 0600", filePath, permission)
	}
	return validateFileOwner(filePath)
}

// validateCfgPerm rejects files writable by group or others.
func validateCfgPerm(filePath string) error {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if permission := fileInfo.Mode().Perm(); permission&0022 != 0 {
		return fmt.Errorf("configuration file %v can be modified by group or others", filePath)
	}
	return nil
}

func validateFileOwner(filePath string) error {
	owner, err := provideFileOwner(filePath)
	if err != nil {
		return err
	}
	if uid := unix.Getuid(); owner != uint32(uid) {
		return fmt.Errorf("file %v is owned by uid %v, not by the current user %v", filePath, owner, uid)
	}
	return nil
}

func provideFileOwner(filePath string) (uint32, error) {
	var st unix.Stat_t
	if err := unix.Stat(filePath, &st); err != nil {
		return 0, err
	}
	return st.Uid, nil
}
