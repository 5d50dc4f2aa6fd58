package codec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Adapter is an opened audio stream.
type Adapter interface {
	// Channels returns the number of interleaved channels Read produces.
	Channels() int

	// SampleRate returns the output sample rate in Hz.
	SampleRate() int

	// Format returns the extension identifier, used for diagnostics.
	Format() string

	// TotalSamples returns the interleaved sample count of the decoded
	// stream. It is computed once at open time.
	TotalSamples() int64

	// Read fills dst with interleaved float32 samples in [-1, 1] and returns
	// the number written. Zero means the stream is exhausted.
	Read(dst []float32) (int, error)

	// Release frees decoder and stream resources. It is idempotent.
	Release() error
}

// OpenFunc opens an adapter over an encoded file held in memory.
type OpenFunc func(data []byte) (Adapter, error)

// Registry maps extensions to adapter constructors, preserving registration
// order as the search order.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]OpenFunc
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]OpenFunc)}
}

// Register adds or replaces the constructor for format.
func (r *Registry) Register(format string, open OpenFunc) {
	format = normalizeFormat(format)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.openers[format]; !exists {
		r.order = append(r.order, format)
	}
	r.openers[format] = open
}

// Extensions returns the registered formats in search order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Open decodes data with the adapter registered for format.
func (r *Registry) Open(format string, data []byte) (Adapter, error) {
	format = normalizeFormat(format)

	r.mu.RLock()
	open, ok := r.openers[format]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	adapter, err := open(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.Open",
			"format":   format,
			"size":     len(data),
			"error":    err.Error(),
		}).Warn("Failed to open audio stream")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":      "Registry.Open",
		"format":        format,
		"channels":      adapter.Channels(),
		"sample_rate":   adapter.SampleRate(),
		"total_samples": adapter.TotalSamples(),
	}).Debug("Opened audio stream")

	return adapter, nil
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(format, "."))
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register(FormatMP3, OpenMP3)
	r.Register(FormatOgg, OpenOgg)
	r.Register(FormatOpus, OpenOpus)
	return r
}()

// Default returns the registry holding the built-in adapters.
func Default() *Registry { return defaultRegistry }

// Open decodes data with the built-in adapter for format.
func Open(format string, data []byte) (Adapter, error) {
	return defaultRegistry.Open(format, data)
}

// Extensions returns the built-in formats in search order.
func Extensions() []string {
	return defaultRegistry.Extensions()
}
