//go:build windows

package lockmgr

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// lock the whole addressable range of the file
const (
	rangeLow  = ^uint32(0)
	rangeHigh = ^uint32(0)
)

func lockFile(f *os.File, mode Mode) error {
	flags := uint32(windows.LOCKFILE_FAIL_IMMEDIATELY)
	if mode == Exclusive {
		flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
	}

	ol := new(windows.Overlapped)
	err := windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, rangeLow, rangeHigh, ol)
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return ErrWouldBlock
	}
	return err
}

func unlockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, rangeLow, rangeHigh, ol)
}
