package visual

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/toolkit/loop"
	"github.com/agiangrant/toolkit/text"
)

var epoch = time.Unix(1_700_000_000, 0)

func newTestLoader(t *testing.T) (*loop.Loop, *Loader) {
	t.Helper()
	l := loop.New(loop.DefaultConfig())
	l.RunOnce(epoch)
	return l, NewLoader(l, LoaderConfig{MaxConcurrent: 2})
}

// waitReady runs the loop until v leaves the preparing state.
func waitReady(t *testing.T, l *loop.Loop, v Visual) {
	t.Helper()
	require.Eventually(t, func() bool {
		l.RunOnce(epoch)
		return v.ResourceStatus() != Preparing
	}, 2*time.Second, 5*time.Millisecond)
}

func writePNG(t *testing.T, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestImageLoadsAsync(t *testing.T) {
	l, loader := newTestLoader(t)
	path := writePNG(t, "a.png", solid(40, 20, color.White))

	v := NewImage(PropertyMap{KeyURL: path}, loader)
	rec := &recorder{}
	v.AddEventObserver(rec)
	v.SetOnScene()
	assert.Equal(t, Preparing, v.ResourceStatus())

	waitReady(t, l, v)
	assert.Equal(t, Ready, v.ResourceStatus())
	assert.Len(t, rec.ready, 1)
	assert.Equal(t, text.Vector2{X: 40, Y: 20}, v.NaturalSize())

	// A second visual for the same image is ready from the cache.
	again := NewImage(PropertyMap{KeyURL: path}, loader)
	assert.True(t, again.IsResourceReady())
}

func TestImageFitting(t *testing.T) {
	tests := []struct {
		name string
		fit  string
		w, h int
		want text.Vector2
	}{
		{"shrink to fit", "SHRINK_TO_FIT", 20, 20, text.Vector2{X: 20, Y: 10}},
		{"scale to fill", "SCALE_TO_FILL", 20, 20, text.Vector2{X: 20, Y: 20}},
		{"fit width", "FIT_WIDTH", 10, 0, text.Vector2{X: 10, Y: 5}},
		{"fit height", "FIT_HEIGHT", 0, 10, text.Vector2{X: 20, Y: 10}},
		{"fill", "FILL", 8, 8, text.Vector2{X: 8, Y: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, loader := newTestLoader(t)
			path := writePNG(t, "a.png", solid(40, 20, color.Black))
			v := NewImage(PropertyMap{
				KeyURL:           path,
				KeyFittingMode:   tt.fit,
				KeyDesiredWidth:  tt.w,
				KeyDesiredHeight: tt.h,
			}, loader)
			v.SetOnScene()
			waitReady(t, l, v)
			assert.Equal(t, tt.want, v.NaturalSize())
		})
	}
}

func TestImageSynchronousLoading(t *testing.T) {
	_, loader := newTestLoader(t)
	path := writePNG(t, "a.png", solid(4, 4, color.White))
	v := NewImage(PropertyMap{KeyURL: path, KeySynchronousLoading: true}, loader)
	v.SetOnScene()
	assert.Equal(t, Ready, v.ResourceStatus())
}

func TestImageFailures(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.png")},
		{"unsupported scheme", "ftp://example.com/a.png"},
		{"not an image", writeFile(t, "a.png", "plain text")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, loader := newTestLoader(t)
			v := NewImage(PropertyMap{KeyURL: tt.url}, loader)
			v.SetOnScene()
			waitReady(t, l, v)
			assert.Equal(t, Failed, v.ResourceStatus())
			assert.True(t, v.IsResourceReady())
		})
	}

	v := NewImage(PropertyMap{}, nil)
	v.SetOnScene()
	assert.Equal(t, Failed, v.ResourceStatus())
}

func TestLoaderErrors(t *testing.T) {
	_, loader := newTestLoader(t)
	_, err := loader.LoadDataSync(t.Context(), "")
	assert.ErrorIs(t, err, ErrMissingURL)
	_, err = loader.LoadDataSync(t.Context(), "gopher://x")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestImageOffSceneDropsResult(t *testing.T) {
	l, loader := newTestLoader(t)
	path := writePNG(t, "a.png", solid(4, 4, color.White))
	v := NewImage(PropertyMap{KeyURL: path}, loader)
	v.SetOnScene()
	v.SetOffScene()

	// Let the load finish; its result belongs to a cancelled request.
	_, _ = loader.LoadImageSync(t.Context(), ImageRequest{URL: path})
	l.Drain(epoch, 10)
	time.Sleep(20 * time.Millisecond)
	l.Drain(epoch, 10)
	assert.Equal(t, Preparing, v.ResourceStatus())
}

func TestNinePatch(t *testing.T) {
	// 7x7 frame around a 5x5 body: columns 2-3 and row 2 stretch, content
	// is columns 1-4 and rows 1-3.
	img := solid(7, 7, color.White)
	black := color.Black
	for _, x := range []int{2, 3} {
		img.Set(x+1, 0, black)
	}
	img.Set(0, 3, black)
	for x := 1; x <= 4; x++ {
		img.Set(x+1, 6, black)
	}
	for y := 1; y <= 3; y++ {
		img.Set(6, y+1, black)
	}
	l, loader := newTestLoader(t)
	path := writePNG(t, "button.9.png", img)

	v := NewNPatch(PropertyMap{KeyURL: path}, loader)
	v.SetOnScene()
	waitReady(t, l, v)
	require.Equal(t, Ready, v.ResourceStatus())

	assert.Equal(t, []StretchRange{{Start: 2, End: 4}}, v.StretchX())
	assert.Equal(t, []StretchRange{{Start: 2, End: 3}}, v.StretchY())
	assert.Equal(t, image.Rect(1, 1, 5, 4), v.Content())
	assert.Equal(t, text.Vector2{X: 5, Y: 5}, v.NaturalSize())
}

func TestNPatchBorderProperty(t *testing.T) {
	l, loader := newTestLoader(t)
	path := writePNG(t, "panel.png", solid(10, 8, color.White))
	v := NewNPatch(PropertyMap{KeyURL: path, KeyBorder: []any{2, 3, 1, 1}}, loader)
	v.SetOnScene()
	waitReady(t, l, v)
	assert.Equal(t, []StretchRange{{Start: 2, End: 7}}, v.StretchX())
	assert.Equal(t, []StretchRange{{Start: 1, End: 7}}, v.StretchY())
}

func TestParseSVGHeader(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    text.Vector2
		wantErr bool
	}{
		{"width and height", `<svg xmlns="http://www.w3.org/2000/svg" width="48px" height="24"/>`, text.Vector2{X: 48, Y: 24}, false},
		{"view box", `<?xml version="1.0"?><svg viewBox="0 0 100 50"></svg>`, text.Vector2{X: 100, Y: 50}, false},
		{"comma view box", `<svg viewBox="0,0,10,20" width="30"/>`, text.Vector2{X: 30, Y: 20}, false},
		{"not svg", `<html></html>`, text.Vector2{}, true},
		{"empty", ``, text.Vector2{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseSVGHeader([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Size())
		})
	}
}

func TestSVGVisual(t *testing.T) {
	l, loader := newTestLoader(t)
	path := writeFile(t, "icon.svg", `<svg width="16" height="32"><rect/></svg>`)
	v := NewSVG(PropertyMap{KeyURL: path}, loader)
	v.SetOnScene()
	waitReady(t, l, v)
	require.Equal(t, Ready, v.ResourceStatus())
	assert.Equal(t, text.Vector2{X: 16, Y: 32}, v.NaturalSize())

	bad := NewSVG(PropertyMap{KeyURL: writeFile(t, "bad.svg", "<div/>")}, loader)
	bad.SetOnScene()
	waitReady(t, l, bad)
	assert.Equal(t, Failed, bad.ResourceStatus())
}

const pyramid = `# square pyramid
mtllib m.mtl
v 0 0 0
v 2 0 0
v 2 3 0
v 0 3 0
v 1 1 4
vn 0 0 1
vt 0 0
f 1 2 3 4
f 1 2 5
f 2 3 5
`

func TestParseOBJ(t *testing.T) {
	info, err := ParseOBJ([]byte(pyramid))
	require.NoError(t, err)
	assert.Equal(t, 5, info.Vertices)
	assert.Equal(t, 1, info.Normals)
	assert.Equal(t, 1, info.TexCoords)
	assert.Equal(t, 4, info.Faces)
	assert.Equal(t, text.Vector2{X: 2, Y: 3}, info.Extent())

	_, err = ParseOBJ([]byte("# nothing\n"))
	assert.Error(t, err)
	_, err = ParseOBJ([]byte("v 1 x 2\n"))
	assert.Error(t, err)
}

func TestMeshVisual(t *testing.T) {
	l, loader := newTestLoader(t)
	obj := writeFile(t, "m.obj", pyramid)
	mtl := writeFile(t, "m.mtl", "newmtl a\nKd 1 0 0\nnewmtl b\n")
	v := NewMesh(PropertyMap{KeyObjectURL: obj, KeyMaterialURL: mtl}, loader)
	v.SetOnScene()
	waitReady(t, l, v)
	require.Equal(t, Ready, v.ResourceStatus())
	assert.Equal(t, 2, v.Info().Materials)
	assert.Equal(t, 5, v.Info().Vertices)
}

func writeGIF(t *testing.T, frames int) string {
	t.Helper()
	palette := color.Palette{color.Black, color.White}
	g := &gif.GIF{LoopCount: 0}
	for i := 0; i < frames; i++ {
		img := image.NewPaletted(image.Rect(0, 0, 6, 4), palette)
		img.SetColorIndex(i, 0, 1)
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	path := filepath.Join(t.TempDir(), "spin.gif")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestAnimatedGIFPlaysAndFinishes(t *testing.T) {
	l, loader := newTestLoader(t)
	v := NewAnimatedImage(PropertyMap{KeyURL: writeGIF(t, 3), KeyLoopCount: 1}, loader, l)
	rec := &recorder{}
	v.AddEventObserver(rec)
	v.SetOnScene()
	waitReady(t, l, v)

	require.Equal(t, Ready, v.ResourceStatus())
	assert.Equal(t, 3, v.FrameCount())
	assert.Equal(t, Playing, v.PlayState())
	assert.Equal(t, text.Vector2{X: 6, Y: 4}, v.NaturalSize())

	frameTime := 100 * time.Millisecond
	l.RunOnce(epoch.Add(frameTime))
	assert.Equal(t, 1, v.CurrentFrame())
	l.RunOnce(epoch.Add(2 * frameTime))
	assert.Equal(t, 2, v.CurrentFrame())
	assert.Empty(t, rec.events)

	l.RunOnce(epoch.Add(3 * frameTime))
	assert.Equal(t, Stopped, v.PlayState())
	assert.Equal(t, []int{AnimationFinished}, rec.events)
	assert.Equal(t, 2, v.CurrentFrame())
}

func TestAnimatedImageActions(t *testing.T) {
	l, loader := newTestLoader(t)
	v := NewAnimatedImage(PropertyMap{KeyURL: writeGIF(t, 4)}, loader, l)
	v.SetOnScene()
	waitReady(t, l, v)
	require.Equal(t, Playing, v.PlayState())

	v.DoAction(ActionPause, nil)
	assert.Equal(t, Paused, v.PlayState())
	l.RunOnce(epoch.Add(time.Second))
	assert.Equal(t, 0, v.CurrentFrame())

	v.DoAction(ActionJumpTo, PropertyMap{KeyFrame: 3})
	assert.Equal(t, 3, v.CurrentFrame())
	v.DoAction(ActionJumpTo, PropertyMap{KeyFrame: 9})
	assert.Equal(t, 3, v.CurrentFrame())

	v.DoAction(ActionStop, nil)
	assert.Equal(t, Stopped, v.PlayState())
	assert.Equal(t, 0, v.CurrentFrame())

	v.DoAction(ActionPlay, nil)
	assert.Equal(t, Playing, v.PlayState())

	v.SetOffScene()
	assert.Equal(t, Paused, v.PlayState())
}

func TestAnimatedImageSequence(t *testing.T) {
	l, loader := newTestLoader(t)
	var urls []any
	for i := 0; i < 4; i++ {
		urls = append(urls, writePNG(t, "f.png", solid(3+i, 3, color.White)))
	}
	v := NewAnimatedImage(PropertyMap{
		KeyURL:        urls,
		KeyBatchSize:  1,
		KeyCacheSize:  2,
		KeyFrameDelay: 50,
	}, loader, l)
	v.SetOnScene()
	waitReady(t, l, v)
	require.Equal(t, Ready, v.ResourceStatus())
	assert.Equal(t, 4, v.FrameCount())
	assert.NotNil(t, v.Frame(0))
	assert.Nil(t, v.Frame(2))
	assert.Equal(t, text.Vector2{X: 3, Y: 3}, v.NaturalSize())
}
