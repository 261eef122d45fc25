package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"media-catalog/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
)

// ErrVipsUnavailable is returned by VipsProber before InitVips has run.
var ErrVipsUnavailable = errors.New("libvips not available")

// vipsLogSettings maps the application log level to a vips level and a
// handler that forwards vips messages to our logger.
func vipsLogSettings(level logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	forward := func(domain string, l vips.LogLevel, msg string) {
		switch l {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}

	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo, forward
	case logging.LevelInfo:
		return vips.LogLevelWarning, forward
	case logging.LevelWarn:
		return vips.LogLevelError, forward
	default:
		return vips.LogLevelCritical, forward
	}
}

// InitVips initializes the libvips library
// This should be called once at startup
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Configure logging BEFORE Startup() so LOG_LEVEL applies to vips too
	vipsLevel, handler := vipsLogSettings(logging.GetLevel())
	vips.LoggingSettings(handler, vipsLevel)

	// Probing only reads headers, so keep the cache small
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      16 * 1024 * 1024,
		MaxCacheSize:     50,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsInitialized
}

// VipsProber measures images with libvips, which also understands formats
// the Go decoders do not (HEIC, AVIF, JPEG XL). Dimensions are reported
// after EXIF auto-rotation.
type VipsProber struct {
	opener Opener
}

// NewVipsProber creates a libvips prober reading files through opener.
func NewVipsProber(opener Opener) *VipsProber {
	return &VipsProber{opener: opener}
}

// Probe implements dimensions.Prober.
func (p *VipsProber) Probe(ctx context.Context, path string) (int, int, error) {
	if !IsVipsAvailable() {
		return 0, 0, ErrVipsUnavailable
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	rc, err := p.opener.Open(path)
	if err != nil {
		return 0, 0, err
	}
	buf, err := io.ReadAll(rc)
	if cerr := rc.Close(); cerr != nil {
		logging.Warn("failed to close image file %s: %v", path, cerr)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", path, err)
	}

	ref, err := vips.LoadImageFromBuffer(buf, vips.NewImportParams())
	if err != nil {
		return 0, 0, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	logging.Debug("Vips measured %s: %dx%d", path, ref.Width(), ref.Height())
	return ref.Width(), ref.Height(), nil
}
