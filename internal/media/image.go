package media

import (
	"context"
	"fmt"
	"image"
	"io"

	"media-catalog/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Opener opens vault files for reading. filesystem.Vault implements it.
type Opener interface {
	Open(path string) (io.ReadCloser, error)
}

// ImageDimensions holds image width and height
type ImageDimensions struct {
	Width  int
	Height int
}

// DecodeProber measures images through the registered image decoders.
//
// It reads only the header via image.DecodeConfig. When that fails it falls
// back to a full imaging decode, and SVG files are measured from their root
// element attributes.
type DecodeProber struct {
	opener Opener
}

// NewDecodeProber creates a prober reading files through opener.
func NewDecodeProber(opener Opener) *DecodeProber {
	return &DecodeProber{opener: opener}
}

// Probe implements dimensions.Prober.
func (p *DecodeProber) Probe(ctx context.Context, path string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	if isSVG(path) {
		dims, err := p.withFile(path, GetSVGDimensions)
		if err != nil {
			return 0, 0, err
		}
		return dims.Width, dims.Height, nil
	}

	dims, err := p.withFile(path, GetImageDimensions)
	if err == nil {
		return dims.Width, dims.Height, nil
	}
	logging.Debug("Could not read image header for %s: %v, decoding fully", path, err)

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	dims, err = p.withFile(path, decodeOriented)
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return dims.Width, dims.Height, nil
}

func (p *DecodeProber) withFile(path string, fn func(io.Reader) (*ImageDimensions, error)) (*ImageDimensions, error) {
	rc, err := p.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()
	return fn(rc)
}

// GetImageDimensions returns image dimensions without fully decoding the image
func GetImageDimensions(r io.Reader) (*ImageDimensions, error) {
	config, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, err
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", config.Width, config.Height)
	}

	return &ImageDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// decodeOriented decodes the whole image, applying EXIF orientation.
func decodeOriented(r io.Reader) (*ImageDimensions, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &ImageDimensions{Width: b.Dx(), Height: b.Dy()}, nil
}
