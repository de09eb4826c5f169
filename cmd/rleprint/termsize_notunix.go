//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package main

import (
	"golang.org/x/crypto/ssh/terminal"
)

type TermSize struct {
	WSRow, WSCol       uint
	WSXPixel, WSYPixel uint
}

func GetTermSize() (TermSize, error) {
	w, h, err := terminal.GetSize(0)
	if err != nil {
		return TermSize{}, err
	}
	return TermSize{WSRow: uint(h), WSCol: uint(w)}, nil
}
