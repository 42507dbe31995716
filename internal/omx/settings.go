package omx

import "time"

// Output selects which video output the player renders to.
type Output string

const (
	OutputHDMI  Output = "hdmi"  // primary display
	OutputLocal Output = "local" // secondary/composite display
	OutputBoth  Output = "both"
)

// defaultSampleInterval is how often the progress sampler queries the player.
// It is not caller-overridable at construction time.
const defaultSampleInterval = 1 * time.Second

// Settings holds the effective playback configuration for one controller.
// It is immutable after construction; exactly one of BackgroundColor and
// NoBackground is active at any time.
type Settings struct {
	Output          Output
	DBusName        string // control channel identifier, unique per instance
	Layer           int    // dispmanx display layer
	BackgroundColor string // ARGB hex, e.g. "0xff000000"; empty when NoBackground
	NoBackground    bool
	Loop            bool
	TestMode        bool
	SampleInterval  time.Duration
}

// Option overrides a single settings key at construction time.
// Later options win over earlier ones.
type Option func(*Settings)

// WithOutput sets the video output route.
func WithOutput(o Output) Option {
	return func(s *Settings) { s.Output = o }
}

// WithDBusName sets the D-Bus name the spawned player registers under.
// Must be unique when running multiple players concurrently.
func WithDBusName(name string) Option {
	return func(s *Settings) { s.DBusName = name }
}

// WithLayer sets the display layer the player renders on.
func WithLayer(layer int) Option {
	return func(s *Settings) { s.Layer = layer }
}

// WithBackgroundColor sets the blanking color behind the video and clears
// any previous no-background override.
func WithBackgroundColor(color string) Option {
	return func(s *Settings) {
		s.BackgroundColor = color
		s.NoBackground = false
	}
}

// WithNoBackground disables background blanking entirely.
func WithNoBackground() Option {
	return func(s *Settings) {
		s.NoBackground = true
		s.BackgroundColor = ""
	}
}

// WithLoop makes the player restart the file when it reaches the end.
func WithLoop(loop bool) Option {
	return func(s *Settings) { s.Loop = loop }
}

// defaultSettings returns the documented defaults.
func defaultSettings() Settings {
	return Settings{
		Output:          OutputBoth,
		DBusName:        "org.mpris.omxplayer",
		Layer:           0,
		BackgroundColor: "0xff000000",
		NoBackground:    false,
		Loop:            false,
		SampleInterval:  defaultSampleInterval,
	}
}

// newSettings merges caller options over the defaults.
func newSettings(opts ...Option) Settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
