//go:build !windows

package pgadaptor

import (
	"fmt"
	"os"
	"path"
	"testing"

	"golang.org/x/sys/unix"
)

func TestConfigPermissions(t *testing.T) {
	testCases := []struct {
		filePerm int
		isValid  bool
	}{
		{filePerm: 0700, isValid: true},
		{filePerm: 0600, isValid: true},
		{filePerm: 0500, isValid: true},
		{filePerm: 0400, isValid: true},
		{filePerm: 0200, isValid: true},
		{filePerm: 0707, isValid: false},
		{filePerm: 0706, isValid: false},
		{filePerm: 0705, isValid: true},
		{filePerm: 0704, isValid: true},
		{filePerm: 0702, isValid: false},
		{filePerm: 0770, isValid: false},
		{filePerm: 0760, isValid: false},
		{filePerm: 0750, isValid: true},
		{filePerm: 0740, isValid: true},
		{filePerm: 0720, isValid: false},
		{filePerm: 0644, isValid: true},
		{filePerm: 0666, isValid: false},
	}

	oldMask := unix.Umask(0000)
	defer unix.Umask(oldMask)

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("0%o", tc.filePerm), func(t *testing.T) {
			tempFile := path.Join(t.TempDir(), fmt.Sprintf("filePerm_%o", tc.filePerm))
			err := os.WriteFile(tempFile, nil, os.FileMode(tc.filePerm))
			assertNilF(t, err)
			err = validateCfgPerm(tempFile)
			if tc.isValid {
				assertNilE(t, err)
			} else {
				assertNotNilE(t, err)
			}
		})
	}
}

func TestSecretFilePermissions(t *testing.T) {
	testCases := []struct {
		filePerm int
		isValid  bool
	}{
		{filePerm: 0600, isValid: true},
		{filePerm: 0700, isValid: false},
		{filePerm: 0400, isValid: false},
		{filePerm: 0640, isValid: false},
		{filePerm: 0604, isValid: false},
		{filePerm: 0666, isValid: false},
	}

	oldMask := unix.Umask(0000)
	defer unix.Umask(oldMask)

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("0%o", tc.filePerm), func(t *testing.T) {
			tempFile := path.Join(t.TempDir(), connectionsFileName)
			err := os.WriteFile(tempFile, nil, os.FileMode(tc.filePerm))
			assertNilF(t, err)
			err = validateFilePermission(tempFile)
			if tc.isValid {
				assertNilE(t, err)
			} else {
				assertNotNilE(t, err)
			}
		})
	}
}

func TestFileOwner(t *testing.T) {
	tempFile := path.Join(t.TempDir(), "owned")
	assertNilF(t, os.WriteFile(tempFile, nil, 0600))
	owner, err := provideFileOwner(tempFile)
	assertNilF(t, err)
	assertEqualE(t, owner, uint32(unix.Getuid()))
	assertNilE(t, validateFileOwner(tempFile))

	_, err = provideFileOwner(path.Join(t.TempDir(), "missing"))
	assertNotNilE(t, err)
}

func TestLogDirectoryPermissions(t *testing.T) {
	oldMask := unix.Umask(0000)
	defer unix.Umask(oldMask)

	logPath, err := clientLogDir(t.TempDir())
	assertNilF(t, err)
	stat, err := os.Stat(logPath)
	assertNilF(t, err)
	assertTrueE(t, stat.IsDir())
	assertEqualE(t, stat.Mode().Perm(), os.FileMode(0700))
}
