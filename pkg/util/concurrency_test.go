package util

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcurrency(t *testing.T) {
	assert.Equal(t, 3, Concurrency(3), "explicit values are kept")
	assert.Equal(t, 100, Concurrency(100))

	auto := Concurrency(0)
	assert.Equal(t, clampConcurrency(runtime.NumCPU()*2), auto)
	assert.Equal(t, auto, Concurrency(-1))
}

func TestClampConcurrency(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1, 4},
		{4, 4},
		{16, 16},
		{32, 32},
		{48, 32},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, clampConcurrency(tc.in), "clamp(%d)", tc.in)
	}
}
