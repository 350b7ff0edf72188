//go:build !windows

package ir

import "golang.org/x/sys/unix"

// defaultArenaHint sizes the initial arena to roughly one host page's
// worth of Def pointers, so a freshly constructed World's first growth
// spurt lands on a page boundary rather than libc's default small slice
// growth curve.
func defaultArenaHint() int {
	n := unix.Getpagesize() / 8
	if n < 64 {
		return 64
	}
	return n
}
