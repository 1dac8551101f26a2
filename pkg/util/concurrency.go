package util

import "runtime"

const (
	minConcurrency = 4
	maxConcurrency = 32
)

// Concurrency returns n when positive. Otherwise it returns twice the CPU
// count clamped to [4, 32]; parsing spends most of its time in cgo, so
// workers beyond the core count still make progress.
//
// The same value sizes the file worker pool and every grammar's parser
// pool, so a worker never waits for a parser.
func Concurrency(n int) int {
	if n > 0 {
		return n
	}
	return clampConcurrency(runtime.NumCPU() * 2)
}

func clampConcurrency(n int) int {
	return min(max(n, minConcurrency), maxConcurrency)
}
