package visual

import (
	"context"
	"image"

	"github.com/agiangrant/toolkit/text"
)

// pending tracks the load in flight so results arriving after the visual
// left the scene or reloaded are dropped.
type pending struct {
	gen    int
	cancel context.CancelFunc
}

func (p *pending) start() (context.Context, int) {
	p.stop()
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	return ctx, p.gen
}

func (p *pending) current(gen int) bool {
	if gen != p.gen {
		return false
	}
	p.cancel = nil
	return true
}

func (p *pending) stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
}

// ImageVisual draws a raster image loaded from a url.
type ImageVisual struct {
	Base

	loader *Loader
	req    ImageRequest
	sync   bool
	img    image.Image
	load   pending
}

// NewImage creates an image visual. An image already in the loader's
// cache makes the visual ready immediately.
func NewImage(props PropertyMap, loader *Loader) *ImageVisual {
	v := &ImageVisual{loader: loader}
	v.init(v, v, Image, props)
	v.req = parseImageRequest(props)
	v.sync, _ = props.Bool(KeySynchronousLoading)
	if loader != nil && v.req.URL != "" {
		if img, ok := loader.CachedImage(v.req); ok {
			v.img = img
			v.status = Ready
		}
	}
	return v
}

func parseImageRequest(props PropertyMap) ImageRequest {
	var req ImageRequest
	req.URL, _ = props.String(KeyURL)
	req.Width, _ = props.Int(KeyDesiredWidth)
	req.Height, _ = props.Int(KeyDesiredHeight)
	if s, ok := props.String(KeyFittingMode); ok {
		req.Fit, _ = ParseFittingMode(s)
	}
	return req
}

func writeImageRequest(m PropertyMap, req ImageRequest) {
	m[KeyURL] = req.URL
	if req.Width > 0 {
		m[KeyDesiredWidth] = int64(req.Width)
	}
	if req.Height > 0 {
		m[KeyDesiredHeight] = int64(req.Height)
	}
	if req.Fit != FitDefault {
		m[KeyFittingMode] = req.Fit.String()
	}
}

// URL returns the url the image is loaded from.
func (v *ImageVisual) URL() string { return v.req.URL }

// Image returns the decoded image, nil until ready.
func (v *ImageVisual) Image() image.Image { return v.img }

// NaturalSize returns the image size, or the desired size before loading.
func (v *ImageVisual) NaturalSize() text.Vector2 {
	if v.img != nil {
		b := v.img.Bounds()
		return text.Vector2{X: float32(b.Dx()), Y: float32(b.Dy())}
	}
	if v.req.Width > 0 && v.req.Height > 0 {
		return text.Vector2{X: float32(v.req.Width), Y: float32(v.req.Height)}
	}
	return v.Base.NaturalSize()
}

func (v *ImageVisual) doSetOnScene() {
	if v.img != nil {
		v.resourceReady(Ready)
		return
	}
	v.startLoad()
}

func (v *ImageVisual) startLoad() {
	if v.loader == nil || v.req.URL == "" {
		v.resourceReady(Failed)
		return
	}
	if v.sync {
		img, err := v.loader.LoadImageSync(context.Background(), v.req)
		v.finishLoad(img, err)
		return
	}
	ctx, gen := v.load.start()
	v.loader.LoadImage(ctx, v.req, func(img image.Image, err error) {
		if !v.load.current(gen) || !v.onScene {
			return
		}
		v.finishLoad(img, err)
	})
}

func (v *ImageVisual) finishLoad(img image.Image, err error) {
	if err != nil {
		v.resourceReady(Failed)
		return
	}
	v.img = img
	v.resourceReady(Ready)
}

func (v *ImageVisual) doSetOffScene() {
	v.load.stop()
}

// DoAction reloads the image on ActionReload.
func (v *ImageVisual) DoAction(action int, _ PropertyMap) {
	if action != ActionReload {
		return
	}
	if v.loader != nil {
		v.loader.Evict(v.req.URL)
	}
	v.img = nil
	v.status = Preparing
	if v.onScene {
		v.startLoad()
	}
}

func (v *ImageVisual) doCreatePropertyMap(m PropertyMap) {
	writeImageRequest(m, v.req)
	if v.sync {
		m[KeySynchronousLoading] = true
	}
}

func (v *ImageVisual) doCreateInstancePropertyMap(PropertyMap) {}
