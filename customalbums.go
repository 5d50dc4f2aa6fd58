package customalbums

import (
	"errors"
	"time"

	"github.com/opd-ai/customalbums/album"
	"github.com/opd-ai/customalbums/asset"
	"github.com/opd-ai/customalbums/decode"
	"github.com/opd-ai/customalbums/hook"
	"github.com/opd-ai/customalbums/host"
	"github.com/sirupsen/logrus"
)

// ErrDisabled is returned by Attach once the interception layer has been
// disabled by an earlier failure.
var ErrDisabled = errors.New("customalbums: interception layer disabled")

// Options configures a Loader.
type Options struct {
	// AlbumDir is scanned for album directories and .mdm packages.
	AlbumDir string
	// UID is the album UID; the generated manifest is ALBUM<UID+1>.
	UID int
	// ChunkSize is the number of samples decoded per Iterate call.
	ChunkSize int
	// AutoPromote resumes the oldest parked decode when the active one ends.
	AutoPromote bool
	// Titles maps game languages to the title of the custom album set.
	Titles map[string]string
	// IterationInterval is the suggested delay between Iterate calls when
	// the caller drives the loop itself.
	IterationInterval time.Duration
}

// NewOptions returns the default options.
func NewOptions() *Options {
	return &Options{
		AlbumDir:          "Custom_Albums",
		UID:               asset.DefaultUID,
		ChunkSize:         decode.ChunkSize,
		AutoPromote:       false,
		Titles:            asset.DefaultTitles(),
		IterationInterval: 16 * time.Millisecond,
	}
}

// Loader ties the interceptor, resolver and decode scheduler together.
type Loader struct {
	options     *Options
	rt          host.Runtime
	albums      *album.Registry
	scheduler   *decode.Scheduler
	resolver    *asset.Resolver
	interceptor *hook.Interceptor

	disabled bool
	closed   bool
}

// New creates a Loader serving the albums found in options.AlbumDir.
//
// The album directory is scanned once. Each subdirectory and each .mdm
// package that parses becomes an album; broken entries are logged and
// skipped. The returned Loader is not yet attached: call Attach with the
// address of the game's LoadFromName to start serving, and Iterate once per
// frame to drive audio decoding.
//
// Parameters:
//   - rt: The host runtime used to read names and create game objects
//   - platform: Hooking backend that installs the LoadFromName detour
//   - options: Loader configuration (nil selects NewOptions)
//
// Returns the Loader, or an error when options.AlbumDir cannot be read.
func New(rt host.Runtime, platform hook.Platform, options *Options) (*Loader, error) {
	if options == nil {
		options = NewOptions()
	}

	albums, err := album.Load(options.AlbumDir)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "New",
			"dir":      options.AlbumDir,
			"error":    err.Error(),
		}).Error("Failed to load albums")
		return nil, err
	}

	return NewWithAlbums(rt, platform, albums, options), nil
}

// NewWithAlbums builds a Loader over an already loaded registry. The Loader
// takes ownership of albums.
func NewWithAlbums(rt host.Runtime, platform hook.Platform, albums *album.Registry, options *Options) *Loader {
	if options == nil {
		options = NewOptions()
	}
	if albums == nil {
		albums = album.NewRegistry()
	}

	scheduler := decode.NewScheduler(rt,
		decode.WithChunkSize(options.ChunkSize),
		decode.WithAutoPromote(options.AutoPromote),
	)

	l := &Loader{
		options:   options,
		rt:        rt,
		albums:    albums,
		scheduler: scheduler,
		resolver: asset.NewResolver(rt, albums, scheduler, asset.Config{
			UID:    options.UID,
			Titles: options.Titles,
		}),
	}
	l.interceptor = hook.NewInterceptor(platform, l.handle)

	logrus.WithFields(logrus.Fields{
		"function":   "NewWithAlbums",
		"albums":     albums.Len(),
		"manifest":   l.resolver.Classifier().Manifest(),
		"chunk_size": scheduler.ChunkSize(),
	}).Info("Custom album loader created")

	return l
}

// Attach installs the LoadFromName detour at target. Failure is fatal for
// the loader: it stays disabled and serves nothing.
func (l *Loader) Attach(target uintptr) error {
	if l.disabled {
		return ErrDisabled
	}
	if err := l.interceptor.Attach(target); err != nil {
		if !errors.Is(err, hook.ErrAlreadyAttached) {
			l.disabled = true
			logrus.WithFields(logrus.Fields{
				"function": "Loader.Attach",
				"error":    err.Error(),
			}).Error("Interception layer disabled")
		}
		return err
	}
	return nil
}

// Attached reports whether the detour is installed and serving.
func (l *Loader) Attached() bool {
	return l.interceptor.Attached() && !l.disabled
}

// LoadFromName is the detour body, matching the native signature.
func (l *Loader) LoadFromName(instance, name, info uintptr) uintptr {
	return l.interceptor.Invoke(instance, name, info)
}

func (l *Loader) handle(nameRef, original uintptr) uintptr {
	if l.disabled || l.closed {
		return original
	}
	name, ok := l.rt.String(nameRef)
	if !ok {
		return original
	}
	return uintptr(l.resolver.Resolve(name, host.Handle(original)))
}

// Iterate advances the active decode job by one chunk. Call it once per
// game frame.
func (l *Loader) Iterate() {
	if l.closed {
		return
	}
	l.scheduler.Tick()
}

// IterationInterval returns the suggested delay between Iterate calls.
func (l *Loader) IterationInterval() time.Duration {
	return l.options.IterationInterval
}

// Options returns the options the loader was built with.
func (l *Loader) Options() *Options { return l.options }

// Albums returns the album registry.
func (l *Loader) Albums() *album.Registry { return l.albums }

// Resolver returns the asset resolver.
func (l *Loader) Resolver() *asset.Resolver { return l.resolver }

// Scheduler returns the decode scheduler.
func (l *Loader) Scheduler() *decode.Scheduler { return l.scheduler }

// Interceptor returns the LoadFromName interceptor.
func (l *Loader) Interceptor() *hook.Interceptor { return l.interceptor }

// Close stops serving requests, aborts decode jobs still in flight and
// closes album packages. The detour stays installed and passes original
// results through.
func (l *Loader) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.scheduler.Close()

	logrus.WithFields(logrus.Fields{
		"function": "Loader.Close",
		"stats":    l.resolver.Stats(),
	}).Info("Custom album loader closed")

	return l.albums.Close()
}
