//go:build unix || darwin || linux || freebsd || openbsd || netbsd

package blockfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive takes a non-blocking advisory exclusive lock on f: at most
// one manager instance may have the file open for mutation. The lock is
// best-effort only, not a substitute for real concurrency control.
func lockExclusive(f *os.File) (func() error, error) {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return nil, err
	}
	return func() error {
		return unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}, nil
}
