//go:build windows

package blockfile

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockExclusive takes a non-blocking advisory exclusive lock on f, mirroring
// lock_unix.go's guarantee: best-effort single-writer enforcement only.
func lockExclusive(f *os.File) (func() error, error) {
	handle := windows.Handle(f.Fd())
	var overlapped windows.Overlapped

	err := windows.LockFileEx(
		handle,
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		1, 0,
		&overlapped,
	)
	if err != nil {
		return nil, err
	}

	return func() error {
		var unlockOverlapped windows.Overlapped
		return windows.UnlockFileEx(handle, 0, 1, 0, &unlockOverlapped)
	}, nil
}
