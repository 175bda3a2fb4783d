//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || windows)

package lockmgr

import "os"

func lockFile(*os.File, Mode) error {
	return ErrUnsupported
}

func unlockFile(*os.File) error {
	return ErrUnsupported
}
