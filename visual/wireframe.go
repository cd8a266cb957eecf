package visual

import "github.com/agiangrant/toolkit/text"

// WireframeVisual outlines the area of the visual it wraps. It reports
// the wrapped visual's readiness as its own.
type WireframeVisual struct {
	Base

	inner Visual
}

// NewWireframe wraps inner, which may be nil for a bare outline.
func NewWireframe(props PropertyMap, inner Visual) *WireframeVisual {
	v := &WireframeVisual{inner: inner}
	v.init(v, v, Wireframe, props)
	if inner != nil {
		inner.AddEventObserver(v)
		if inner.IsResourceReady() {
			v.status = inner.ResourceStatus()
		}
	}
	return v
}

// Inner returns the wrapped visual.
func (v *WireframeVisual) Inner() Visual { return v.inner }

// NaturalSize returns the wrapped visual's natural size.
func (v *WireframeVisual) NaturalSize() text.Vector2 {
	if v.inner != nil {
		return v.inner.NaturalSize()
	}
	return v.Base.NaturalSize()
}

// SetDepthIndex sets the depth of the wireframe and the wrapped visual.
func (v *WireframeVisual) SetDepthIndex(index int) {
	v.Base.SetDepthIndex(index)
	if v.inner != nil {
		v.inner.SetDepthIndex(index)
	}
}

// DoAction forwards to the wrapped visual.
func (v *WireframeVisual) DoAction(action int, attrs PropertyMap) {
	if v.inner != nil {
		v.inner.DoAction(action, attrs)
	}
}

// ResourceReady is called by the wrapped visual.
func (v *WireframeVisual) ResourceReady(inner Visual) {
	v.resourceReady(inner.ResourceStatus())
}

// NotifyVisualEvent forwards events of the wrapped visual.
func (v *WireframeVisual) NotifyVisualEvent(_ Visual, signalID int) {
	v.notifyVisualEvent(signalID)
}

func (v *WireframeVisual) doSetOnScene() {
	if v.inner == nil {
		v.resourceReady(Ready)
		return
	}
	v.inner.SetOnScene()
	if v.inner.IsResourceReady() && !v.IsResourceReady() {
		v.resourceReady(v.inner.ResourceStatus())
	}
}

func (v *WireframeVisual) doSetOffScene() {
	if v.inner != nil {
		v.inner.SetOffScene()
	}
}

func (v *WireframeVisual) doCreatePropertyMap(m PropertyMap) {
	if v.inner == nil {
		return
	}
	for k, val := range v.inner.CreatePropertyMap() {
		if k != KeyVisualType {
			m[k] = val
		}
	}
}

func (v *WireframeVisual) doCreateInstancePropertyMap(m PropertyMap) {
	if v.inner == nil {
		return
	}
	for k, val := range v.inner.CreateInstancePropertyMap() {
		m[k] = val
	}
}
