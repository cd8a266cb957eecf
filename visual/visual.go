// Package visual provides the renderable pieces a control is drawn with:
// colors, borders, gradients, images, n-patches, svg, animated images,
// text, meshes and primitives.
//
// A visual may not be ready when it is created. Visuals that load assets
// report readiness later, on the loop goroutine, through the observers
// registered with AddEventObserver.
package visual

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/agiangrant/toolkit/text"
)

// ============================================================================
// Types
// ============================================================================

// Type identifies a visual implementation.
type Type uint8

const (
	Border Type = iota
	Color
	Gradient
	Image
	Mesh
	Primitive
	Wireframe
	Text
	NPatch
	SVG
	AnimatedImage
)

var typeNames = [...]string{
	Border:        "BORDER",
	Color:         "COLOR",
	Gradient:      "GRADIENT",
	Image:         "IMAGE",
	Mesh:          "MESH",
	Primitive:     "PRIMITIVE",
	Wireframe:     "WIREFRAME",
	Text:          "TEXT",
	NPatch:        "N_PATCH",
	SVG:           "SVG",
	AnimatedImage: "ANIMATED_IMAGE",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "UNKNOWN"
}

// ParseType returns the type named s, case insensitive.
func ParseType(s string) (Type, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s {
			return Type(t), true
		}
	}
	return 0, false
}

// ResourceStatus is the loading state of a visual's resources.
type ResourceStatus uint8

const (
	Preparing ResourceStatus = iota
	Ready
	Failed
)

func (s ResourceStatus) String() string {
	switch s {
	case Preparing:
		return "preparing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Visual event signals raised through NotifyVisualEvent.
const (
	// AnimationFinished is raised by animated images when the last loop ends.
	AnimationFinished = iota + 1
)

// Actions accepted by DoAction.
const (
	ActionReload = iota
	ActionPlay
	ActionPause
	ActionStop
	ActionJumpTo
)

// ============================================================================
// Interfaces
// ============================================================================

// EventObserver is told when a visual's resources become ready and when
// the visual raises an event.
type EventObserver interface {
	ResourceReady(v Visual)
	NotifyVisualEvent(v Visual, signalID int)
}

// Visual is the capability set a control relies on.
type Visual interface {
	Type() Type
	Name() string
	SetName(name string)

	SetOnScene()
	SetOffScene()
	IsOnScene() bool

	DepthIndex() int
	SetDepthIndex(index int)

	IsResourceReady() bool
	ResourceStatus() ResourceStatus

	// NaturalSize is the size the visual would like to be drawn at.
	NaturalSize() text.Vector2

	CreatePropertyMap() PropertyMap
	CreateInstancePropertyMap() PropertyMap

	AddEventObserver(o EventObserver)
	RemoveEventObserver(o EventObserver)

	DoAction(action int, attributes PropertyMap)
}

// hooks is implemented by every concrete visual to specialise Base.
type hooks interface {
	doSetOnScene()
	doSetOffScene()
	doCreatePropertyMap(m PropertyMap)
	doCreateInstancePropertyMap(m PropertyMap)
}

// ============================================================================
// Base
// ============================================================================

// Base carries the state common to every visual.
type Base struct {
	self  Visual
	hooks hooks

	typ        Type
	name       string
	depthIndex int
	onScene    bool
	status     ResourceStatus
	observers  []EventObserver

	mixColor     colorful.Color
	hasMixColor  bool
	opacity      float32
	cornerRadius float32
	transform    Transform
}

func (b *Base) init(self Visual, h hooks, t Type, props PropertyMap) {
	b.self = self
	b.hooks = h
	b.typ = t
	b.opacity = 1
	if props == nil {
		return
	}
	if c, ok := props.Color(KeyMixColor); ok {
		b.mixColor, b.hasMixColor = c, true
	}
	if v, ok := props.Float(KeyOpacity); ok {
		b.opacity = v
	}
	if v, ok := props.Float(KeyCornerRadius); ok {
		b.cornerRadius = v
	}
	if m, ok := props.Map(KeyTransform); ok {
		b.transform = ParseTransform(m)
	}
}

func (b *Base) Type() Type          { return b.typ }
func (b *Base) Name() string        { return b.name }
func (b *Base) SetName(name string) { b.name = name }
func (b *Base) DepthIndex() int     { return b.depthIndex }
func (b *Base) IsOnScene() bool     { return b.onScene }

// SetDepthIndex sets the drawing order among the visuals of a control.
func (b *Base) SetDepthIndex(index int) { b.depthIndex = index }

// MixColor returns the color blended over the visual, white when unset.
func (b *Base) MixColor() colorful.Color {
	if !b.hasMixColor {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return b.mixColor
}

// Opacity returns the visual's opacity in [0, 1].
func (b *Base) Opacity() float32 { return b.opacity }

// Transform returns the placement of the visual inside its control.
func (b *Base) Transform() Transform { return b.transform }

// SetTransform replaces the placement of the visual.
func (b *Base) SetTransform(t Transform) { b.transform = t }

// SetOnScene starts showing the visual.
func (b *Base) SetOnScene() {
	if b.onScene {
		return
	}
	b.onScene = true
	b.hooks.doSetOnScene()
}

// SetOffScene stops showing the visual and releases what it holds.
func (b *Base) SetOffScene() {
	if !b.onScene {
		return
	}
	b.hooks.doSetOffScene()
	b.onScene = false
}

// IsResourceReady reports whether the visual can be drawn. A failed visual
// counts as ready; it draws its broken state.
func (b *Base) IsResourceReady() bool {
	return b.status == Ready || b.status == Failed
}

func (b *Base) ResourceStatus() ResourceStatus { return b.status }

// NaturalSize returns the transform size for visuals without intrinsic size.
func (b *Base) NaturalSize() text.Vector2 { return b.transform.Size }

// resourceReady records status and tells every observer.
func (b *Base) resourceReady(status ResourceStatus) {
	b.status = status
	if status == Preparing {
		return
	}
	for _, o := range append([]EventObserver(nil), b.observers...) {
		o.ResourceReady(b.self)
	}
}

// notifyVisualEvent raises signalID to every observer.
func (b *Base) notifyVisualEvent(signalID int) {
	for _, o := range append([]EventObserver(nil), b.observers...) {
		o.NotifyVisualEvent(b.self, signalID)
	}
}

func (b *Base) AddEventObserver(o EventObserver) {
	for _, existing := range b.observers {
		if existing == o {
			return
		}
	}
	b.observers = append(b.observers, o)
}

func (b *Base) RemoveEventObserver(o EventObserver) {
	for i, existing := range b.observers {
		if existing == o {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// CreatePropertyMap returns the properties the visual was created from,
// suitable for recreating it with a Factory.
func (b *Base) CreatePropertyMap() PropertyMap {
	m := PropertyMap{KeyVisualType: b.typ.String()}
	if b.hasMixColor {
		m[KeyMixColor] = FormatColor(b.mixColor)
	}
	if b.opacity != 1 {
		m[KeyOpacity] = float64(b.opacity)
	}
	if b.cornerRadius != 0 {
		m[KeyCornerRadius] = float64(b.cornerRadius)
	}
	if !b.transform.IsZero() {
		m[KeyTransform] = b.transform.PropertyMap()
	}
	b.hooks.doCreatePropertyMap(m)
	return m
}

// CreateInstancePropertyMap returns the properties that change while the
// visual is alive and must survive a visual being recreated.
func (b *Base) CreateInstancePropertyMap() PropertyMap {
	m := PropertyMap{}
	if !b.transform.IsZero() {
		m[KeyTransform] = b.transform.PropertyMap()
	}
	b.hooks.doCreateInstancePropertyMap(m)
	return m
}

// DoAction is a no-op for visuals without actions.
func (b *Base) DoAction(int, PropertyMap) {}

// noHooks gives visuals without loading behavior the default hooks.
type noHooks struct{}

func (noHooks) doSetOffScene()                          {}
func (noHooks) doCreateInstancePropertyMap(PropertyMap) {}

// ============================================================================
// Transform
// ============================================================================

// Transform places a visual inside its control, in pixels.
type Transform struct {
	Offset text.Vector2
	Size   text.Vector2
}

// ParseTransform reads offset and size from m.
func ParseTransform(m PropertyMap) Transform {
	var t Transform
	if v, ok := m.Vector2(KeyOffset); ok {
		t.Offset = v
	}
	if v, ok := m.Vector2(KeySize); ok {
		t.Size = v
	}
	return t
}

// IsZero reports whether t was never set.
func (t Transform) IsZero() bool {
	return t == Transform{}
}

// PropertyMap returns t in property map form.
func (t Transform) PropertyMap() PropertyMap {
	return PropertyMap{
		KeyOffset: []any{float64(t.Offset.X), float64(t.Offset.Y)},
		KeySize:   []any{float64(t.Size.X), float64(t.Size.Y)},
	}
}
