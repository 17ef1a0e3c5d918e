package util

import "runtime"

const (
	minPoolSize = 4
	maxPoolSize = 32
)

// GetOptimalPoolSize returns the number of components rendered concurrently.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Rendering mixes template execution with file writes, so twice the core
// count keeps the CPU busy while workers wait on disk.
func GetOptimalPoolSize() int {
	return clampPoolSize(runtime.NumCPU() * 2)
}

// GetOptimalPoolSizeWithOverride returns override when positive and
// GetOptimalPoolSize otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}

func clampPoolSize(n int) int {
	return min(max(n, minPoolSize), maxPoolSize)
}
