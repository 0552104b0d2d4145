package evloop

import (
	"os"
	"strconv"
)

// defaultThreadCount is the thread count used when POOL_SIZE is unset
// (spec §4.C.1).
const defaultThreadCount = 4

// maxThreadpoolSize mirrors original_source/libuv/src/threadpool.c's
// MAX_THREADPOOL_SIZE (spec §12): the upper clamp on nthreads regardless of
// what POOL_SIZE requests.
const maxThreadpoolSize = 1024

// poolSizeFromEnv reads POOL_SIZE permissively: an unset value gives
// defaultThreadCount, a non-numeric or zero value gives 1, and the result
// is clamped to
// [1, maxThreadpoolSize] (spec §6). This is deliberately not
// github.com/kelseyhightower/envconfig (see SPEC_FULL.md §10.3): envconfig
// fails the whole config on a malformed value, but this field's contract is
// a silent fallback, not a validation error.
func poolSizeFromEnv() int {
	raw, ok := os.LookupEnv("POOL_SIZE")
	if !ok {
		return defaultThreadCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return 1
	}
	if n < 0 {
		n = -n
	}
	return clampThreadCount(n)
}

func clampThreadCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxThreadpoolSize {
		return maxThreadpoolSize
	}
	return n
}

// slowThreadThreshold is ceil(nthreads/2) (spec §3, §4.C.6): the maximum
// number of workers simultaneously allowed to be running a SLOW_IO item.
func slowThreadThreshold(nthreads int) int {
	return (nthreads + 1) / 2
}
