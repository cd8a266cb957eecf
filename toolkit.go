// Package toolkit assembles the pieces a host needs to show editable text
// and visuals: the host loop, the font client, the visual loader and
// factory, the clipboard and the logger, all configured from one Config.
package toolkit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/clipboard"
	"github.com/agiangrant/toolkit/control"
	"github.com/agiangrant/toolkit/internal/logger"
	"github.com/agiangrant/toolkit/loop"
	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/controller"
	"github.com/agiangrant/toolkit/textfield"
	"github.com/agiangrant/toolkit/visual"
)

// Version is the toolkit version.
const Version = "0.2.0"

// Toolkit owns the shared services of every control it creates.
type Toolkit struct {
	config    Config
	log       *zap.Logger
	loop      *loop.Loop
	fonts     *text.FontClient
	loader    *visual.Loader
	factory   *visual.Factory
	clipboard *clipboard.Clipboard
	imf       controller.InputMethodContext
}

// Option adjusts a Toolkit being created.
type Option func(*Toolkit)

// WithLogger uses l instead of a logger built from the configuration.
func WithLogger(l *zap.Logger) Option {
	return func(tk *Toolkit) { tk.log = l }
}

// WithFontClient shares fonts with the host.
func WithFontClient(fonts *text.FontClient) Option {
	return func(tk *Toolkit) { tk.fonts = fonts }
}

// WithInputMethod connects new text fields to imf.
func WithInputMethod(imf controller.InputMethodContext) Option {
	return func(tk *Toolkit) { tk.imf = imf }
}

// New creates a toolkit from config.
func New(config Config, opts ...Option) (*Toolkit, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to initialize toolkit: %w", err)
	}
	tk := &Toolkit{config: config}
	for _, opt := range opts {
		opt(tk)
	}

	if tk.log == nil {
		l, err := logger.New(config.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize toolkit: %w", err)
		}
		tk.log = l
	}
	if tk.fonts == nil {
		tk.fonts = text.NewFontClient()
	}

	loopConfig := config.Loop.Loop()
	loopConfig.Logger = tk.log
	tk.loop = loop.New(loopConfig)

	loaderConfig := config.Visual.Loader()
	loaderConfig.Logger = tk.log
	tk.loader = visual.NewLoader(tk.loop, loaderConfig)

	factoryConfig := config.Visual.Factory()
	factoryConfig.Logger = tk.log
	tk.factory = visual.NewFactory(tk.loader, tk.loop, tk.fonts, factoryConfig)

	tk.clipboard = clipboard.New(clipboard.DefaultCapacity, tk.log)

	tk.log.Debug("toolkit initialized",
		zap.String("version", Version),
		zap.Duration("tick", loopConfig.TickInterval),
		zap.Bool("debugWireframe", config.Visual.DebugWireframe))
	return tk, nil
}

// Config returns the configuration the toolkit was created with.
func (tk *Toolkit) Config() Config { return tk.config }

// Logger returns the toolkit logger.
func (tk *Toolkit) Logger() *zap.Logger { return tk.log }

// Loop returns the host loop every control schedules work on.
func (tk *Toolkit) Loop() *loop.Loop { return tk.loop }

// Fonts returns the font client.
func (tk *Toolkit) Fonts() *text.FontClient { return tk.fonts }

// Factory returns the visual factory.
func (tk *Toolkit) Factory() *visual.Factory { return tk.factory }

// Clipboard returns the clipboard shared by text fields.
func (tk *Toolkit) Clipboard() *clipboard.Clipboard { return tk.clipboard }

// CreateVisual creates a visual from a property map; nil for an unknown
// type.
func (tk *Toolkit) CreateVisual(props visual.PropertyMap) visual.Visual {
	return tk.factory.CreateVisual(props)
}

// NewControl creates a control whose visuals come from the toolkit factory.
// relayout is called when the control needs laying out; it may be nil.
func (tk *Toolkit) NewControl(name string, relayout func()) *control.Control {
	return control.New(control.Config{
		Name:            name,
		Factory:         tk.factory,
		Idle:            tk.loop,
		RelayoutRequest: relayout,
		Logger:          tk.log,
	})
}

// NewTextField creates an editable text field configured from the text
// section of the configuration.
func (tk *Toolkit) NewTextField(name string) *textfield.TextField {
	controllerConfig := tk.config.Text.Controller()
	controllerConfig.Logger = tk.log
	decoratorConfig := tk.config.Text.Decorator()
	decoratorConfig.Logger = tk.log

	return textfield.New(textfield.Config{
		Name:       name,
		Controller: controllerConfig,
		Decorator:  decoratorConfig,
		Scheduler:  tk.loop,
		Factory:    tk.factory,
		Fonts:      tk.fonts,
		IMF:        tk.imf,
		Clipboard:  tk.clipboard,
		Logger:     tk.log,
	})
}

// Run drives the host loop until ctx is cancelled.
func (tk *Toolkit) Run(ctx context.Context) error {
	return tk.loop.Run(logger.NewContext(ctx, tk.log))
}

// Shutdown flushes the logger.
func (tk *Toolkit) Shutdown() {
	_ = tk.log.Sync()
}
