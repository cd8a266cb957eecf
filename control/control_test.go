package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/toolkit/loop"
	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/controller"
	"github.com/agiangrant/toolkit/visual"
)

// fakeVisual becomes ready when the test says so.
type fakeVisual struct {
	name      string
	depth     int
	onScene   bool
	status    visual.ResourceStatus
	observers []visual.EventObserver
	actions   []int
}

func newFake(ready bool) *fakeVisual {
	v := &fakeVisual{}
	if ready {
		v.status = visual.Ready
	}
	return v
}

func (v *fakeVisual) Type() visual.Type                     { return visual.Color }
func (v *fakeVisual) Name() string                          { return v.name }
func (v *fakeVisual) SetName(name string)                   { v.name = name }
func (v *fakeVisual) SetOnScene()                           { v.onScene = true }
func (v *fakeVisual) SetOffScene()                          { v.onScene = false }
func (v *fakeVisual) IsOnScene() bool                       { return v.onScene }
func (v *fakeVisual) DepthIndex() int                       { return v.depth }
func (v *fakeVisual) SetDepthIndex(d int)                   { v.depth = d }
func (v *fakeVisual) ResourceStatus() visual.ResourceStatus { return v.status }
func (v *fakeVisual) NaturalSize() text.Vector2             { return text.Vector2{} }
func (v *fakeVisual) CreatePropertyMap() visual.PropertyMap { return visual.PropertyMap{} }

func (v *fakeVisual) DoAction(action int, _ visual.PropertyMap) {
	v.actions = append(v.actions, action)
}

func (v *fakeVisual) CreateInstancePropertyMap() visual.PropertyMap {
	return visual.PropertyMap{}
}

func (v *fakeVisual) IsResourceReady() bool {
	return v.status == visual.Ready || v.status == visual.Failed
}

func (v *fakeVisual) AddEventObserver(o visual.EventObserver) {
	v.observers = append(v.observers, o)
}

func (v *fakeVisual) RemoveEventObserver(o visual.EventObserver) {
	for i, existing := range v.observers {
		if existing == o {
			v.observers = append(v.observers[:i], v.observers[i+1:]...)
			return
		}
	}
}

func (v *fakeVisual) ready() {
	v.status = visual.Ready
	for _, o := range append([]visual.EventObserver(nil), v.observers...) {
		o.ResourceReady(v)
	}
}

func (v *fakeVisual) raise(id int) {
	for _, o := range v.observers {
		o.NotifyVisualEvent(v, id)
	}
}

type keyFilter struct{ seen []string }

func (f *keyFilter) FilterEventKey(ev controller.KeyEvent) bool {
	f.seen = append(f.seen, ev.Text)
	return ev.Text == "a"
}

func newControl(t *testing.T, idle IdleScheduler) (*Control, *int) {
	t.Helper()
	relayouts := 0
	c := New(Config{
		Name:            "test",
		Factory:         visual.NewFactory(nil, nil, nil, visual.FactoryConfig{}),
		Idle:            idle,
		RelayoutRequest: func() { relayouts++ },
	})
	return c, &relayouts
}

func TestReplaceWaitsForReady(t *testing.T) {
	c, _ := newControl(t, nil)
	c.OnSceneConnection()

	a := newFake(true)
	c.RegisterVisual(PropertyUserStart, a)
	require.True(t, a.IsOnScene())

	b := newFake(false)
	c.RegisterVisual(PropertyUserStart, b)

	assert.True(t, a.IsOnScene(), "old visual drawn until replacement is ready")
	assert.True(t, b.IsOnScene())
	assert.True(t, c.IsReplacing(PropertyUserStart))
	assert.Same(t, b, c.GetVisual(PropertyUserStart))
	assert.Len(t, c.VisualsInDepthOrder(), 2)
	assert.Empty(t, a.observers)

	b.ready()

	assert.False(t, a.IsOnScene())
	assert.False(t, c.IsReplacing(PropertyUserStart))
	assert.Equal(t, []visual.Visual{b}, c.VisualsInDepthOrder())
}

func TestReplaceTwiceDropsStaleReplacement(t *testing.T) {
	c, _ := newControl(t, nil)
	c.OnSceneConnection()

	a, b, d := newFake(true), newFake(false), newFake(false)
	c.RegisterVisual(PropertyUserStart, a)
	c.RegisterVisual(PropertyUserStart, b)
	c.RegisterVisual(PropertyUserStart, d)

	assert.True(t, a.IsOnScene())
	assert.False(t, b.IsOnScene())
	assert.True(t, d.IsOnScene())

	d.ready()
	assert.False(t, a.IsOnScene())
	assert.Equal(t, []visual.Visual{d}, c.VisualsInDepthOrder())
}

func TestReplaceOffSceneIsImmediate(t *testing.T) {
	c, _ := newControl(t, nil)

	a, b := newFake(true), newFake(false)
	c.RegisterVisual(PropertyUserStart, a)
	c.RegisterVisual(PropertyUserStart, b)

	assert.False(t, c.IsReplacing(PropertyUserStart))
	assert.Same(t, b, c.GetVisual(PropertyUserStart))
}

func TestRegisterDepth(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Control) visual.Visual
		want int
	}{
		{
			name: "first visual keeps own depth",
			run: func(c *Control) visual.Visual {
				v := newFake(true)
				c.RegisterVisual(1, v)
				return v
			},
			want: 0,
		},
		{
			name: "new index goes above deepest",
			run: func(c *Control) visual.Visual {
				c.RegisterVisual(1, newFake(true), WithDepthIndex(5))
				v := newFake(true)
				c.RegisterVisual(2, v)
				return v
			},
			want: 6,
		},
		{
			name: "never below zero",
			run: func(c *Control) visual.Visual {
				c.RegisterVisual(1, newFake(true), WithDepthIndex(DepthBackground))
				v := newFake(true)
				c.RegisterVisual(2, v)
				return v
			},
			want: 0,
		},
		{
			name: "replacement keeps depth",
			run: func(c *Control) visual.Visual {
				c.RegisterVisual(1, newFake(true), WithDepthIndex(42))
				v := newFake(true)
				c.RegisterVisual(1, v)
				return v
			},
			want: 42,
		},
		{
			name: "explicit depth wins",
			run: func(c *Control) visual.Visual {
				c.RegisterVisual(1, newFake(true), WithDepthIndex(42))
				v := newFake(true)
				c.RegisterVisual(1, v, WithDepthIndex(-3))
				return v
			},
			want: -3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newControl(t, nil)
			assert.Equal(t, tt.want, tt.run(c).DepthIndex())
		})
	}
}

func TestVisualsInDepthOrder(t *testing.T) {
	c, _ := newControl(t, nil)
	front, back, middle := newFake(true), newFake(true), newFake(true)
	c.RegisterVisual(1, front, WithDepthIndex(10))
	c.RegisterVisual(2, back, WithDepthIndex(-10))
	c.RegisterVisual(3, middle, WithDepthIndex(0))
	c.RegisterVisual(4, newFake(true), Hidden())

	assert.Equal(t, []visual.Visual{back, middle, front}, c.VisualsInDepthOrder())
}

func TestResourceReadyEmitsWhenAllReady(t *testing.T) {
	c, relayouts := newControl(t, nil)
	emitted := 0
	c.ResourceReadySignal().Connect(func(*Control) { emitted++ })
	c.OnSceneConnection()

	a, b := newFake(false), newFake(false)
	c.RegisterVisual(1, a)
	c.RegisterVisual(2, b)
	c.RegisterVisual(3, newFake(false), Hidden())
	assert.False(t, c.IsResourceReady())

	a.ready()
	assert.Equal(t, 0, emitted)

	before := *relayouts
	b.ready()
	assert.Equal(t, 1, emitted)
	assert.True(t, c.IsResourceReady())
	assert.Greater(t, *relayouts, before)
}

func TestResourceReadyDuringEmitIsDeferredToIdle(t *testing.T) {
	l := loop.New(loop.DefaultConfig())
	c, _ := newControl(t, l)

	late := newFake(false)
	emitted := 0
	c.ResourceReadySignal().Connect(func(*Control) {
		emitted++
		if emitted == 1 {
			c.RegisterVisual(2, late)
			late.ready()
		}
	})

	c.RegisterVisual(1, newFake(true))
	assert.Equal(t, 1, emitted, "nested ready is not emitted re-entrantly")

	l.RunOnce(time.Unix(0, 0))
	assert.Equal(t, 2, emitted)

	l.RunOnce(time.Unix(0, 0))
	assert.Equal(t, 2, emitted)
}

func TestResourceReadyWithoutIdleRepeats(t *testing.T) {
	c, _ := newControl(t, nil)
	late := newFake(false)
	emitted := 0
	c.ResourceReadySignal().Connect(func(*Control) {
		emitted++
		if emitted == 1 {
			c.RegisterVisual(2, late)
			late.ready()
		}
	})

	c.RegisterVisual(1, newFake(true))
	assert.Equal(t, 2, emitted)
}

func TestVisualEvent(t *testing.T) {
	c, _ := newControl(t, nil)
	v := newFake(true)
	c.RegisterVisual(7, v)

	var got []VisualEvent
	c.VisualEventSignal().Connect(func(e VisualEvent) { got = append(got, e) })
	v.raise(visual.AnimationFinished)

	require.Len(t, got, 1)
	assert.Same(t, c, got[0].Control)
	assert.Equal(t, 7, got[0].Index)
	assert.Equal(t, visual.AnimationFinished, got[0].SignalID)

	c.DoAction(7, visual.ActionPlay, nil)
	assert.Equal(t, []int{visual.ActionPlay}, v.actions)
}

func TestEnableAndUnregister(t *testing.T) {
	c, _ := newControl(t, nil)
	c.OnSceneConnection()

	v := newFake(true)
	c.RegisterVisual(1, v, Hidden())
	assert.False(t, v.IsOnScene())
	assert.False(t, c.IsVisualEnabled(1))

	c.EnableVisual(1, true)
	assert.True(t, v.IsOnScene())
	assert.True(t, c.IsVisualEnabled(1))

	c.EnableVisual(1, false)
	assert.False(t, v.IsOnScene())

	c.EnableVisual(99, true)
	assert.Equal(t, visual.Preparing, c.GetVisualResourceStatus(99))
	assert.Equal(t, visual.Ready, c.GetVisualResourceStatus(1))

	c.UnregisterVisual(1)
	assert.Nil(t, c.GetVisual(1))
	assert.Empty(t, v.observers)

	c.RegisterVisual(2, newFake(true))
	c.RegisterVisual(2, nil)
	assert.Nil(t, c.GetVisual(2))
}

func TestSceneDisconnection(t *testing.T) {
	c, _ := newControl(t, nil)
	c.OnSceneConnection()

	a, b := newFake(true), newFake(false)
	c.RegisterVisual(1, a)
	c.RegisterVisual(1, b)
	require.True(t, c.IsReplacing(1))

	c.OnSceneDisconnection()
	assert.False(t, a.IsOnScene())
	assert.False(t, b.IsOnScene())
	assert.False(t, c.IsReplacing(1))
	assert.Same(t, b, c.GetVisual(1))

	c.OnSceneConnection()
	assert.True(t, b.IsOnScene())
	assert.False(t, a.IsOnScene())
}

func TestBackgroundAndShadow(t *testing.T) {
	c, relayouts := newControl(t, nil)
	c.SetBackgroundColor("#ff0000")

	bg := c.GetVisual(PropertyBackground)
	require.NotNil(t, bg)
	assert.Equal(t, "background", bg.Name())
	assert.Equal(t, DepthBackground, bg.DepthIndex())
	assert.False(t, bg.IsResourceReady())

	c.OnSceneConnection()
	assert.True(t, c.IsResourceReady())

	c.SetShadow(visual.PropertyMap{visual.KeyVisualType: "COLOR", visual.KeyMixColor: "#000000"})
	shadow := c.GetVisual(PropertyShadow)
	require.NotNil(t, shadow)
	assert.Equal(t, "shadow", shadow.Name())
	assert.Equal(t, []visual.Visual{shadow, bg}, c.VisualsInDepthOrder())

	before := *relayouts
	c.ClearShadow()
	c.ClearBackground()
	assert.Nil(t, c.GetVisual(PropertyShadow))
	assert.Nil(t, c.GetVisual(PropertyBackground))
	assert.Equal(t, before+2, *relayouts)

	c.SetBackground(visual.PropertyMap{visual.KeyVisualType: "NOPE"})
	assert.Nil(t, c.GetVisual(PropertyBackground))
}

func TestMarginPaddingAndKeys(t *testing.T) {
	c, relayouts := newControl(t, nil)
	c.SetMargin(Extents{Start: 1, End: 2, Top: 3, Bottom: 4})
	c.SetPadding(Extents{Start: 5})
	assert.Equal(t, Extents{Start: 1, End: 2, Top: 3, Bottom: 4}, c.Margin())
	assert.Equal(t, uint16(5), c.Padding().Start)
	assert.Equal(t, 2, *relayouts)

	assert.False(t, c.FilterKeyEvent(controller.KeyEvent{Text: "a"}))

	f := &keyFilter{}
	c.SetInputMethodContext(f)
	assert.True(t, c.FilterKeyEvent(controller.KeyEvent{Text: "a"}))
	assert.False(t, c.FilterKeyEvent(controller.KeyEvent{Text: "b"}))
	assert.Equal(t, []string{"a", "b"}, f.seen)
}

func TestSignalDisconnectDuringEmit(t *testing.T) {
	var s Signal[int]
	var got []int
	var second Connection
	s.Connect(func(v int) {
		got = append(got, v)
		s.Disconnect(second)
	})
	second = s.Connect(func(v int) { got = append(got, -v) })

	s.Emit(1)
	s.Emit(2)
	assert.Equal(t, []int{1, -1, 2}, got)
	assert.False(t, s.Disconnect(second))
	assert.False(t, s.Empty())
}
