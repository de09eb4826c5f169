//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

type TermSize struct {
	WSRow, WSCol       uint
	WSXPixel, WSYPixel uint
}

// GetTermSize asks the controlling terminal for its size in cells and, where
// the terminal reports it, in pixels.
func GetTermSize() (TermSize, error) {
	f, err := os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666)
	if err == nil {
		defer f.Close()
		sz, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err == nil {
			return TermSize{WSRow: uint(sz.Row), WSCol: uint(sz.Col), WSXPixel: uint(sz.Xpixel), WSYPixel: uint(sz.Ypixel)}, nil
		}
	}
	w, h, err := terminal.GetSize(0)
	if err != nil {
		return TermSize{}, err
	}
	return TermSize{WSRow: uint(h), WSCol: uint(w)}, nil
}
