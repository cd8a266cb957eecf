package toolkit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/agiangrant/toolkit/internal/logger"
	"github.com/agiangrant/toolkit/loop"
	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/controller"
	"github.com/agiangrant/toolkit/text/decorator"
	"github.com/agiangrant/toolkit/visual"
)

// Config is the toolkit configuration, usually read from toolkit.toml.
type Config struct {
	Log    logger.Config `toml:"log"`
	Text   TextConfig    `toml:"text"`
	Visual VisualConfig  `toml:"visual"`
	Loop   LoopConfig    `toml:"loop"`
}

// TextConfig configures editable text.
type TextConfig struct {
	CursorWidth           float32 `toml:"cursor_width"`
	CursorBlinkIntervalMS int     `toml:"cursor_blink_interval_ms"`
	CursorBlinkDurationMS int     `toml:"cursor_blink_duration_ms"` // zero blinks forever
	ScrollThreshold       float32 `toml:"scroll_threshold"`
	ScrollSpeed           float32 `toml:"scroll_speed"` // pixels per second
	ScrollTickMS          int     `toml:"scroll_tick_ms"`
	SmoothHandlePan       bool    `toml:"smooth_handle_pan"`
	HorizontalScroll      bool    `toml:"horizontal_scroll"`
	VerticalScroll        bool    `toml:"vertical_scroll"`
	SelectionEnabled      bool    `toml:"selection_enabled"`
	PopupEnabled          bool    `toml:"popup_enabled"`
	HideClipboardOnExit   bool    `toml:"hide_clipboard_on_exit"`
	Ligatures             bool    `toml:"ligatures"`
	LineWrap              bool    `toml:"line_wrap"`
	Alignment             string  `toml:"alignment"`          // begin, center or end
	VerticalAlignment     string  `toml:"vertical_alignment"` // top, center or bottom
	MaxCharacters         int     `toml:"max_characters"`
}

// VisualConfig configures visual creation and loading.
type VisualConfig struct {
	DebugWireframe     bool `toml:"debug_wireframe"`
	MaxConcurrentLoads int  `toml:"max_concurrent_loads"`
	HTTPTimeoutMS      int  `toml:"http_timeout_ms"`
	DesiredWidth       int  `toml:"desired_width"`
	DesiredHeight      int  `toml:"desired_height"`
}

// LoopConfig configures the host loop.
type LoopConfig struct {
	TickMS int `toml:"tick_ms"`
}

// DefaultConfig returns the defaults used for any unset field.
func DefaultConfig() Config {
	d := decorator.DefaultConfig()
	l := visual.DefaultLoaderConfig()
	return Config{
		Log: logger.Config{Level: "info", Format: "console"},
		Text: TextConfig{
			CursorWidth:           d.CursorWidth,
			CursorBlinkIntervalMS: int(d.BlinkInterval / time.Millisecond),
			ScrollThreshold:       d.ScrollThreshold,
			ScrollSpeed:           d.ScrollSpeed,
			ScrollTickMS:          int(d.ScrollTickInterval / time.Millisecond),
			HorizontalScroll:      true,
			SelectionEnabled:      true,
			PopupEnabled:          true,
			HideClipboardOnExit:   true,
			Alignment:             text.AlignBegin.String(),
			VerticalAlignment:     text.AlignTop.String(),
		},
		Visual: VisualConfig{
			MaxConcurrentLoads: int(l.MaxConcurrent),
			HTTPTimeoutMS:      int(l.HTTPTimeout / time.Millisecond),
		},
		Loop: LoopConfig{
			TickMS: int(loop.DefaultConfig().TickInterval / time.Millisecond),
		},
	}
}

// LoadConfig reads the configuration at path. A missing file yields the
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return config, nil
}

// ParseConfig decodes a TOML configuration over the defaults. Zero numeric
// and empty string fields also take their defaults.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Text.CursorWidth == 0 {
		c.Text.CursorWidth = d.Text.CursorWidth
	}
	if c.Text.CursorBlinkIntervalMS == 0 {
		c.Text.CursorBlinkIntervalMS = d.Text.CursorBlinkIntervalMS
	}
	if c.Text.ScrollThreshold == 0 {
		c.Text.ScrollThreshold = d.Text.ScrollThreshold
	}
	if c.Text.ScrollSpeed == 0 {
		c.Text.ScrollSpeed = d.Text.ScrollSpeed
	}
	if c.Text.ScrollTickMS == 0 {
		c.Text.ScrollTickMS = d.Text.ScrollTickMS
	}
	if c.Text.Alignment == "" {
		c.Text.Alignment = d.Text.Alignment
	}
	if c.Text.VerticalAlignment == "" {
		c.Text.VerticalAlignment = d.Text.VerticalAlignment
	}
	if c.Visual.MaxConcurrentLoads == 0 {
		c.Visual.MaxConcurrentLoads = d.Visual.MaxConcurrentLoads
	}
	if c.Visual.HTTPTimeoutMS == 0 {
		c.Visual.HTTPTimeoutMS = d.Visual.HTTPTimeoutMS
	}
	if c.Loop.TickMS == 0 {
		c.Loop.TickMS = d.Loop.TickMS
	}
}

// Validate reports the first field holding a value no component accepts.
func (c Config) Validate() error {
	if _, ok := text.ParseHorizontalAlignment(c.Text.Alignment); !ok {
		return fmt.Errorf("text.alignment: unknown alignment %q", c.Text.Alignment)
	}
	if _, ok := text.ParseVerticalAlignment(c.Text.VerticalAlignment); !ok {
		return fmt.Errorf("text.vertical_alignment: unknown alignment %q", c.Text.VerticalAlignment)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Visual.MaxConcurrentLoads < 0 {
		return fmt.Errorf("visual.max_concurrent_loads: must not be negative")
	}
	if c.Text.MaxCharacters < 0 {
		return fmt.Errorf("text.max_characters: must not be negative")
	}
	return nil
}

// Save writes the configuration to path as TOML.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Controller returns the text controller settings.
func (c TextConfig) Controller() controller.Config {
	config := controller.DefaultConfig()
	if c.LineWrap {
		config.Layout = text.MultiLineBox
	}
	if a, ok := text.ParseHorizontalAlignment(c.Alignment); ok {
		config.HorizontalAlignment = a
	}
	if a, ok := text.ParseVerticalAlignment(c.VerticalAlignment); ok {
		config.VerticalAlignment = a
	}
	config.Ligatures = c.Ligatures
	config.MaximumNumberOfCharacters = c.MaxCharacters
	config.CursorBlink = c.CursorBlinkIntervalMS > 0
	config.SelectionEnabled = c.SelectionEnabled
	config.PopupEnabled = c.PopupEnabled
	config.ClipboardHideEnabled = c.HideClipboardOnExit
	return config
}

// Decorator returns the decorator settings.
func (c TextConfig) Decorator() decorator.Config {
	config := decorator.DefaultConfig()
	config.CursorWidth = c.CursorWidth
	config.BlinkInterval = time.Duration(c.CursorBlinkIntervalMS) * time.Millisecond
	config.BlinkDuration = time.Duration(c.CursorBlinkDurationMS) * time.Millisecond
	config.ScrollThreshold = c.ScrollThreshold
	config.ScrollSpeed = c.ScrollSpeed
	config.ScrollTickInterval = time.Duration(c.ScrollTickMS) * time.Millisecond
	config.SmoothHandlePan = c.SmoothHandlePan
	config.HorizontalScroll = c.HorizontalScroll
	config.VerticalScroll = c.VerticalScroll
	return config
}

// Loader returns the visual loader settings.
func (c VisualConfig) Loader() visual.LoaderConfig {
	config := visual.DefaultLoaderConfig()
	if c.MaxConcurrentLoads > 0 {
		config.MaxConcurrent = int64(c.MaxConcurrentLoads)
	}
	if c.HTTPTimeoutMS > 0 {
		config.HTTPTimeout = time.Duration(c.HTTPTimeoutMS) * time.Millisecond
	}
	return config
}

// Factory returns the visual factory settings.
func (c VisualConfig) Factory() visual.FactoryConfig {
	return visual.FactoryConfig{
		DebugWireframe: c.DebugWireframe,
		DesiredWidth:   c.DesiredWidth,
		DesiredHeight:  c.DesiredHeight,
	}
}

// Loop returns the host loop settings.
func (c LoopConfig) Loop() loop.Config {
	config := loop.DefaultConfig()
	if c.TickMS > 0 {
		config.TickInterval = time.Duration(c.TickMS) * time.Millisecond
	}
	return config
}
