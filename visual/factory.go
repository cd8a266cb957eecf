package visual

import (
	"strings"

	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/internal/logger"
	"github.com/agiangrant/toolkit/text"
)

// FactoryConfig configures a Factory.
type FactoryConfig struct {
	// DebugWireframe wraps every created visual in a wireframe.
	DebugWireframe bool

	// DesiredWidth and DesiredHeight apply to images that set neither.
	DesiredWidth  int
	DesiredHeight int

	Logger *zap.Logger
}

// Factory creates visuals from property maps.
type Factory struct {
	loader *Loader
	timers TimerScheduler
	fonts  *text.FontClient
	config FactoryConfig
	log    *zap.Logger
}

// NewFactory creates a factory. loader serves image, svg, mesh and
// animated visuals; timers drive animations; fonts lay out text visuals.
func NewFactory(loader *Loader, timers TimerScheduler, fonts *text.FontClient, config FactoryConfig) *Factory {
	if fonts == nil {
		fonts = text.NewFontClient()
	}
	return &Factory{
		loader: loader,
		timers: timers,
		fonts:  fonts,
		config: config,
		log:    logger.Or(config.Logger).Named("visual"),
	}
}

// Loader returns the loader the factory's visuals share.
func (f *Factory) Loader() *Loader { return f.loader }

// CreateVisual creates the visual described by props. The type comes from
// visualType and defaults to IMAGE; image urls pick a more specific type
// by extension. Returns nil for an unknown type.
func (f *Factory) CreateVisual(props PropertyMap) Visual {
	typ := Image
	if s, ok := props.String(KeyVisualType); ok {
		t, ok := ParseType(s)
		if !ok {
			f.log.Error("unknown visual type", zap.String("type", s))
			return nil
		}
		typ = t
	}
	if typ == Image {
		typ = imageTypeOf(props)
		if f.config.DesiredWidth > 0 || f.config.DesiredHeight > 0 {
			if _, ok := props[KeyDesiredWidth]; !ok {
				if _, ok := props[KeyDesiredHeight]; !ok {
					props = props.Merge(PropertyMap{
						KeyDesiredWidth:  int64(f.config.DesiredWidth),
						KeyDesiredHeight: int64(f.config.DesiredHeight),
					})
				}
			}
		}
	}

	var v Visual
	switch typ {
	case Border:
		v = NewBorder(props)
	case Color:
		v = NewColor(props)
	case Gradient:
		v = NewGradient(props)
	case Image:
		v = NewImage(props, f.loader)
	case Mesh:
		v = NewMesh(props, f.loader)
	case Primitive:
		v = NewPrimitive(props)
	case Wireframe:
		return NewWireframe(props, nil)
	case Text:
		v = NewText(props, f.fonts)
	case NPatch:
		v = NewNPatch(props, f.loader)
	case SVG:
		v = NewSVG(props, f.loader)
	case AnimatedImage:
		v = NewAnimatedImage(props, f.loader, f.timers)
	default:
		f.log.Error("unsupported visual type", zap.Stringer("type", typ))
		return nil
	}

	if ce := f.log.Check(zap.DebugLevel, "visual created"); ce != nil {
		ce.Write(zap.Stringer("type", typ))
	}
	if f.config.DebugWireframe {
		return NewWireframe(nil, v)
	}
	return v
}

// imageTypeOf picks the visual type for an image url.
func imageTypeOf(props PropertyMap) Type {
	if _, ok := props.Strings(KeyURL); ok {
		return AnimatedImage
	}
	u, _ := props.String(KeyURL)
	switch {
	case IsNinePatchURL(u):
		return NPatch
	case strings.HasSuffix(strings.ToLower(u), ".svg"):
		return SVG
	case IsGIFURL(u):
		return AnimatedImage
	}
	return Image
}
