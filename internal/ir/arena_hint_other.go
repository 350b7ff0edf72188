//go:build windows

package ir

// defaultArenaHint is a fixed fallback on platforms x/sys/unix does not
// cover.
func defaultArenaHint() int { return 512 }
