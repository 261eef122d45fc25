package workers

import (
	"os"
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	cpus := runtime.GOMAXPROCS(0)

	tests := []struct {
		name     string
		override string
		kind     Kind
		max      int
		want     int
	}{
		{name: "cpu bound", kind: CPUBound, want: cpus},
		{name: "io bound", kind: IOBound, want: 2 * cpus},
		{name: "capped", kind: IOBound, max: 1, want: 1},
		{name: "override", override: "7", kind: CPUBound, want: 7},
		{name: "override still capped", override: "7", kind: CPUBound, max: 3, want: 3},
		{name: "invalid override ignored", override: "lots", kind: CPUBound, want: cpus},
		{name: "zero override ignored", override: "0", kind: IOBound, want: 2 * cpus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.override)
			if tt.override == "" {
				os.Unsetenv(EnvOverride)
			}
			if got := Count(tt.kind, tt.max); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.kind, tt.max, got, tt.want)
			}
		})
	}
}
