package evloop

import "testing"

func TestPoolSizeFromEnv_Unset(t *testing.T) {
	if got := poolSizeFromEnv(); got != defaultThreadCount {
		t.Fatalf("got %d, want default %d", got, defaultThreadCount)
	}
}

func TestPoolSizeFromEnv_NonNumericFallsBackToOne(t *testing.T) {
	t.Setenv("POOL_SIZE", "not-a-number")
	if got := poolSizeFromEnv(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestPoolSizeFromEnv_ZeroFallsBackToOne(t *testing.T) {
	t.Setenv("POOL_SIZE", "0")
	if got := poolSizeFromEnv(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestPoolSizeFromEnv_NegativeIsAbsoluted(t *testing.T) {
	t.Setenv("POOL_SIZE", "-8")
	if got := poolSizeFromEnv(); got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestPoolSizeFromEnv_ClampedToMax(t *testing.T) {
	t.Setenv("POOL_SIZE", "100000")
	if got := poolSizeFromEnv(); got != maxThreadpoolSize {
		t.Fatalf("got %d, want %d", got, maxThreadpoolSize)
	}
}

func TestSlowThreadThreshold(t *testing.T) {
	cases := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 6: 3}
	for nthreads, want := range cases {
		if got := slowThreadThreshold(nthreads); got != want {
			t.Fatalf("slowThreadThreshold(%d) = %d, want %d", nthreads, got, want)
		}
	}
}
