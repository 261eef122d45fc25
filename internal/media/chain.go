package media

import (
	"context"
	"errors"
)

// Prober measures the pixel dimensions of a vault file.
type Prober interface {
	Probe(ctx context.Context, path string) (width, height int, err error)
}

// ChainProber tries each prober in order and returns the first success.
type ChainProber []Prober

// Probe implements dimensions.Prober.
func (c ChainProber) Probe(ctx context.Context, path string) (int, int, error) {
	var errs []error
	for _, p := range c {
		w, h, err := p.Probe(ctx, path)
		if err == nil {
			return w, h, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return 0, 0, errors.New("no prober configured")
	}
	return 0, 0, errors.Join(errs...)
}

// NewProber returns the prober used by the server: libvips first when it
// is enabled and initialized, then the Go decoders.
func NewProber(opener Opener, useVips bool) Prober {
	decode := NewDecodeProber(opener)
	if useVips && IsVipsAvailable() {
		return ChainProber{NewVipsProber(opener), decode}
	}
	return decode
}
