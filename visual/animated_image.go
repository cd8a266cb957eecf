package visual

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"image/gif"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/loop"
	"github.com/agiangrant/toolkit/text"
)

// KeyFrame is the DoAction attribute naming the frame to jump to.
const KeyFrame = "frame"

const (
	defaultFrameDelay = 100 * time.Millisecond
	defaultBatchSize  = 2
	defaultCacheSize  = 5
)

// TimerScheduler creates repeating timers on the host loop.
type TimerScheduler interface {
	AddTimer(interval time.Duration, tick func() bool) *loop.Timer
}

// PlayState is the playback state of an animated image.
type PlayState uint8

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// AnimatedImageVisual plays a gif file or a sequence of image urls. A
// sequence is loaded batchSize frames at a time and keeps at most
// cacheSize decoded frames.
type AnimatedImageVisual struct {
	Base

	loader *Loader
	timers TimerScheduler

	gifURL    string
	urls      []string
	batchSize int
	cacheSize int
	delay     time.Duration
	loopCount int

	frames     map[int]image.Image
	delays     []time.Duration
	frameCount int
	current    int
	loopsDone  int
	requested  map[int]bool

	state PlayState
	timer *loop.Timer
	load  pending
}

// NewAnimatedImage creates an animated image visual. url is either a gif
// file or an array of frame urls. loopCount below zero loops forever.
func NewAnimatedImage(props PropertyMap, loader *Loader, timers TimerScheduler) *AnimatedImageVisual {
	v := &AnimatedImageVisual{
		loader:    loader,
		timers:    timers,
		batchSize: defaultBatchSize,
		cacheSize: defaultCacheSize,
		delay:     defaultFrameDelay,
		loopCount: -1,
		frames:    make(map[int]image.Image),
		requested: make(map[int]bool),
	}
	v.init(v, v, AnimatedImage, props)

	if urls, ok := props.Strings(KeyURL); ok {
		v.urls = urls
		v.frameCount = len(urls)
	} else {
		v.gifURL, _ = props.String(KeyURL)
	}
	if n, ok := props.Int(KeyBatchSize); ok && n > 0 {
		v.batchSize = n
	}
	if n, ok := props.Int(KeyCacheSize); ok && n > 0 {
		v.cacheSize = n
	}
	v.cacheSize = max(v.cacheSize, v.batchSize)
	if ms, ok := props.Int(KeyFrameDelay); ok && ms > 0 {
		v.delay = time.Duration(ms) * time.Millisecond
	}
	if n, ok := props.Int(KeyLoopCount); ok {
		v.loopCount = n
	}
	return v
}

// IsGIFURL reports whether u names a gif file.
func IsGIFURL(u string) bool {
	return strings.HasSuffix(strings.ToLower(u), ".gif")
}

// FrameCount returns the number of frames, zero until known.
func (v *AnimatedImageVisual) FrameCount() int { return v.frameCount }

// CurrentFrame returns the index of the frame shown.
func (v *AnimatedImageVisual) CurrentFrame() int { return v.current }

// Frame returns the decoded frame i, nil when not loaded.
func (v *AnimatedImageVisual) Frame(i int) image.Image { return v.frames[i] }

// PlayState returns the playback state.
func (v *AnimatedImageVisual) PlayState() PlayState { return v.state }

// NaturalSize returns the size of the first loaded frame.
func (v *AnimatedImageVisual) NaturalSize() text.Vector2 {
	if img := v.frames[v.current]; img != nil {
		b := img.Bounds()
		return text.Vector2{X: float32(b.Dx()), Y: float32(b.Dy())}
	}
	return v.Base.NaturalSize()
}

func (v *AnimatedImageVisual) doSetOnScene() {
	if v.loader == nil || (v.gifURL == "" && len(v.urls) == 0) {
		v.resourceReady(Failed)
		return
	}
	if len(v.frames) > 0 {
		v.resourceReady(Ready)
		v.play()
		return
	}
	if v.gifURL != "" {
		v.loadGIF()
		return
	}
	v.loadBatch(v.current)
}

func (v *AnimatedImageVisual) loadGIF() {
	ctx, gen := v.load.start()
	v.loader.LoadData(ctx, v.gifURL, func(data []byte, err error) {
		if !v.load.current(gen) || !v.onScene {
			return
		}
		if err == nil {
			err = v.decodeGIF(data)
		}
		if err != nil {
			v.loader.log.Warn("animated image rejected", zap.String("url", v.gifURL), zap.Error(err))
			v.resourceReady(Failed)
			return
		}
		v.resourceReady(Ready)
		v.play()
	})
}

// decodeGIF composites every frame of data onto the logical screen.
func (v *AnimatedImageVisual) decodeGIF(data []byte) error {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to decode gif")
	}
	if len(g.Image) == 0 {
		return errors.New("failed to decode gif: no frames")
	}
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	v.delays = make([]time.Duration, len(g.Image))
	for i, frame := range g.Image {
		var previous *image.RGBA
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
			previous = image.NewRGBA(bounds)
			draw.Draw(previous, bounds, canvas, bounds.Min, draw.Src)
		}
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		snapshot := image.NewRGBA(bounds)
		draw.Draw(snapshot, bounds, canvas, bounds.Min, draw.Src)
		v.frames[i] = snapshot

		if i < len(g.Delay) && g.Delay[i] > 0 {
			v.delays[i] = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				canvas = previous
			}
		}
	}
	v.frameCount = len(g.Image)
	if v.loopCount < 0 {
		switch {
		case g.LoopCount > 0:
			v.loopCount = g.LoopCount + 1
		case g.LoopCount < 0:
			v.loopCount = 1
		}
	}
	return nil
}

// loadBatch requests the batch of sequence frames starting at from.
func (v *AnimatedImageVisual) loadBatch(from int) {
	ctx := context.Background()
	gen := v.load.gen
	for i := 0; i < v.batchSize && i < v.frameCount; i++ {
		idx := (from + i) % v.frameCount
		if v.frames[idx] != nil || v.requested[idx] {
			continue
		}
		v.requested[idx] = true
		v.loader.LoadImage(ctx, ImageRequest{URL: v.urls[idx]}, func(img image.Image, err error) {
			if gen != v.load.gen || !v.onScene {
				return
			}
			delete(v.requested, idx)
			v.frameLoaded(idx, img, err)
		})
	}
}

func (v *AnimatedImageVisual) frameLoaded(idx int, img image.Image, err error) {
	if err != nil {
		if v.status == Preparing {
			v.resourceReady(Failed)
		}
		return
	}
	v.frames[idx] = img
	v.evict()
	if v.status == Preparing && idx == v.current {
		v.resourceReady(Ready)
		v.play()
	}
}

// evict drops sequence frames outside the cache window ahead of current.
func (v *AnimatedImageVisual) evict() {
	if v.gifURL != "" || len(v.frames) <= v.cacheSize {
		return
	}
	for idx := range v.frames {
		ahead := (idx - v.current + v.frameCount) % v.frameCount
		if ahead >= v.cacheSize {
			delete(v.frames, idx)
		}
	}
}

func (v *AnimatedImageVisual) frameDelay(i int) time.Duration {
	if i < len(v.delays) && v.delays[i] > 0 {
		return v.delays[i]
	}
	return v.delay
}

func (v *AnimatedImageVisual) play() {
	if v.state == Playing || v.frameCount <= 1 || v.timers == nil || !v.onScene {
		return
	}
	v.state = Playing
	v.schedule()
}

func (v *AnimatedImageVisual) schedule() {
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = v.timers.AddTimer(v.frameDelay(v.current), v.tick)
}

func (v *AnimatedImageVisual) tick() bool {
	if v.state != Playing {
		return false
	}
	next := v.current + 1
	if next >= v.frameCount {
		v.loopsDone++
		if v.loopCount >= 0 && v.loopsDone >= v.loopCount {
			v.state = Stopped
			v.timer = nil
			v.notifyVisualEvent(AnimationFinished)
			return false
		}
		next = 0
	}
	if v.urls != nil && v.frames[next] == nil {
		// Hold the current frame until the next one arrives.
		v.loadBatch(next)
		return true
	}
	v.current = next
	if v.urls != nil {
		v.loadBatch(v.current + 1)
		v.evict()
	}
	if v.frameDelay(v.current) != v.timer.Interval() {
		v.schedule()
		return false
	}
	return true
}

func (v *AnimatedImageVisual) stopTimer() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

// DoAction handles play, pause, stop, jump to and reload.
func (v *AnimatedImageVisual) DoAction(action int, attrs PropertyMap) {
	switch action {
	case ActionPlay:
		if v.state == Stopped {
			v.loopsDone = 0
		}
		v.play()
	case ActionPause:
		if v.state == Playing {
			v.stopTimer()
			v.state = Paused
		}
	case ActionStop:
		v.stopTimer()
		v.state = Stopped
		v.current = 0
		v.loopsDone = 0
	case ActionJumpTo:
		frame, ok := attrs.Int(KeyFrame)
		if !ok || frame < 0 || frame >= v.frameCount {
			return
		}
		v.current = frame
		if v.urls != nil && v.frames[frame] == nil && v.onScene {
			v.loadBatch(frame)
		}
	case ActionReload:
		v.stopTimer()
		v.load.stop()
		v.state = Stopped
		v.frames = make(map[int]image.Image)
		v.requested = make(map[int]bool)
		v.delays = nil
		v.current, v.loopsDone = 0, 0
		v.status = Preparing
		if v.onScene {
			v.doSetOnScene()
		}
	}
}

func (v *AnimatedImageVisual) doSetOffScene() {
	v.stopTimer()
	v.load.stop()
	v.requested = make(map[int]bool)
	if v.state == Playing {
		v.state = Paused
	}
}

func (v *AnimatedImageVisual) doCreatePropertyMap(m PropertyMap) {
	if v.urls != nil {
		urls := make([]any, len(v.urls))
		for i, u := range v.urls {
			urls[i] = u
		}
		m[KeyURL] = urls
		m[KeyBatchSize] = int64(v.batchSize)
		m[KeyCacheSize] = int64(v.cacheSize)
		m[KeyFrameDelay] = v.delay.Milliseconds()
	} else {
		m[KeyURL] = v.gifURL
	}
	m[KeyLoopCount] = int64(v.loopCount)
}

func (v *AnimatedImageVisual) doCreateInstancePropertyMap(m PropertyMap) {
	m[KeyFrame] = int64(v.current)
}
