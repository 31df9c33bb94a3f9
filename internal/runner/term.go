//go:build linux || darwin || freebsd || netbsd || openbsd

package runner

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// inputModeGuard holds the controlling terminal in cbreak mode (no line
// buffering, no echo) and restores the saved state exactly once on
// release. Output post-processing is left untouched so the rendered
// table stays intact.
type inputModeGuard struct {
	fd    int
	saved unix.Termios
	once  sync.Once
}

// acquireInputMode switches the terminal on fd into cbreak mode.
func acquireInputMode(fd int) (*inputModeGuard, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}
	guard := &inputModeGuard{fd: fd, saved: *termios}

	cbreak := *termios
	cbreak.Lflag &^= unix.ICANON | unix.ECHO
	cbreak.Cc[unix.VMIN] = 1
	cbreak.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &cbreak); err != nil {
		return nil, err
	}
	return guard, nil
}

// Release restores the original input mode. Safe to call from every
// exit path; only the first call writes.
func (g *inputModeGuard) Release() {
	g.once.Do(func() {
		_ = unix.IoctlSetTermios(g.fd, ioctlWriteTermios, &g.saved)
	})
}

// Poll waits up to timeout for a single buffered keystroke and returns
// it without waiting for line termination. A timeout or an interrupted
// poll reports no key and no error.
func (g *inputModeGuard) Poll(timeout time.Duration) (byte, bool, error) {
	fds := []unix.PollFd{{Fd: int32(g.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return 0, false, nil
	}

	buf := make([]byte, 1)
	if _, err := unix.Read(g.fd, buf); err != nil {
		return 0, false, err
	}
	return buf[0], true, nil
}
