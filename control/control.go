// Package control holds the base every widget builds on: the registry of
// visuals the widget is drawn with, resource-ready aggregation, state
// driven visual switching, margin and padding, and key filtering.
//
// A visual registered at an index that already holds one replaces it. On
// scene, the old visual stays drawn until its replacement reports ready,
// so the swap never leaves a gap.
package control

import (
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/internal/logger"
	"github.com/agiangrant/toolkit/text/controller"
	"github.com/agiangrant/toolkit/visual"
)

// ============================================================================
// Constants
// ============================================================================

// Depth index ranges. Visuals draw in ascending depth order.
const (
	DepthBackgroundEffect = -20000000
	DepthBackground       = -10000000
	DepthContent          = 0
	DepthDecoration       = 10000000
	DepthForegroundEffect = 20000000
)

// Visual indices used by every control. Widgets number their own visuals
// from PropertyUserStart.
const (
	PropertyBackground = iota + 1
	PropertyShadow
	PropertyForeground

	PropertyUserStart = 1000

	// Visuals created from a style without a named index are numbered
	// from here.
	propertyDynamicStart = 1 << 20
)

var builtinNames = map[int]string{
	PropertyBackground: "background",
	PropertyShadow:     "shadow",
	PropertyForeground: "foreground",
}

// ============================================================================
// Collaborators
// ============================================================================

// IdleScheduler runs one-shot callbacks when the host loop is idle.
type IdleScheduler interface {
	AddIdle(fn func()) bool
}

// KeyFilter is the input method a control routes key events through.
type KeyFilter interface {
	FilterEventKey(ev controller.KeyEvent) bool
}

// Extents are the sizes of the four sides of a box, in pixels.
type Extents struct {
	Start, End, Top, Bottom uint16
}

// VisualEvent is emitted when a registered visual raises an event.
type VisualEvent struct {
	Control  *Control
	Index    int
	SignalID int
}

// Config configures a Control.
type Config struct {
	Name string

	// Factory creates background, shadow and style visuals.
	Factory *visual.Factory

	// Idle defers a resource-ready emission requested while the signal is
	// being emitted. Without it the emission repeats once the current one
	// returns.
	Idle IdleScheduler

	// RelayoutRequest is called when the control needs laying out again.
	RelayoutRequest func()

	Logger *zap.Logger
}

// ============================================================================
// Control
// ============================================================================

// registeredVisual is one entry of the registry.
type registeredVisual struct {
	index   int
	visual  visual.Visual
	enabled bool
	// pending is set while the visual waits to replace an on-scene one.
	pending bool
	// source is the property map a style visual was created from.
	source visual.PropertyMap
}

// Control owns the visuals of one widget. It is used from the loop
// goroutine only.
type Control struct {
	name    string
	factory *visual.Factory
	idle    IdleScheduler
	relay   func()
	log     *zap.Logger

	visuals       []*registeredVisual
	removeVisuals []*registeredVisual
	names         map[int]string
	nextDynamic   int
	onScene       bool

	emitting   bool
	needEmit   bool
	idleQueued bool

	state    State
	subState string
	style    *Style

	margin  Extents
	padding Extents
	imf     KeyFilter

	resourceReady Signal[*Control]
	visualEvent   Signal[VisualEvent]
}

// New creates a control that is off scene and has no visuals.
func New(config Config) *Control {
	c := &Control{
		name:        config.Name,
		factory:     config.Factory,
		idle:        config.Idle,
		relay:       config.RelayoutRequest,
		names:       make(map[int]string),
		nextDynamic: propertyDynamicStart,
	}
	c.log = logger.Or(config.Logger).Named("control")
	if c.name != "" {
		c.log = c.log.With(zap.String("control", c.name))
	}
	for index, name := range builtinNames {
		c.names[index] = name
	}
	return c
}

// Name returns the control name.
func (c *Control) Name() string { return c.name }

// RegisterPropertyName names the visual index, so visuals registered there
// without a name take it and style visuals with that name use the index.
func (c *Control) RegisterPropertyName(index int, name string) {
	c.names[index] = name
}

// ResourceReadySignal is emitted when every enabled visual is ready.
func (c *Control) ResourceReadySignal() *Signal[*Control] { return &c.resourceReady }

// VisualEventSignal is emitted when a registered visual raises an event.
func (c *Control) VisualEventSignal() *Signal[VisualEvent] { return &c.visualEvent }

// IsOnScene reports whether the control is connected to the scene.
func (c *Control) IsOnScene() bool { return c.onScene }

func (c *Control) requestRelayout() {
	if c.relay != nil {
		c.relay()
	}
}

// ============================================================================
// Registry
// ============================================================================

// RegisterOption adjusts a RegisterVisual call.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	enabled  bool
	depth    int
	depthSet bool
}

// Hidden registers the visual without showing it.
func Hidden() RegisterOption {
	return func(o *registerOptions) { o.enabled = false }
}

// WithEnabled registers the visual shown or hidden.
func WithEnabled(enabled bool) RegisterOption {
	return func(o *registerOptions) { o.enabled = enabled }
}

// WithDepthIndex overrides the depth the visual is drawn at.
func WithDepthIndex(depth int) RegisterOption {
	return func(o *registerOptions) { o.depth, o.depthSet = depth, true }
}

func find(list []*registeredVisual, index int) int {
	for i, rv := range list {
		if rv.index == index {
			return i
		}
	}
	return -1
}

func erase(list []*registeredVisual, i int) []*registeredVisual {
	return append(list[:i], list[i+1:]...)
}

// RegisterVisual registers v at index, replacing the visual there.
//
// Without an explicit depth a new index takes the visual's own depth when
// non-zero, else one above the deepest registered visual (never below
// zero). A replacement keeps the depth of the visual it replaces.
func (c *Control) RegisterVisual(index int, v visual.Visual, opts ...RegisterOption) {
	c.registerVisual(index, v, nil, opts...)
}

func (c *Control) registerVisual(index int, v visual.Visual, source visual.PropertyMap, opts ...RegisterOption) {
	o := registerOptions{enabled: true}
	for _, opt := range opts {
		opt(&o)
	}
	if v == nil {
		c.log.Debug("nil visual registered, unregistering", zap.Int("index", index))
		c.UnregisterVisual(index)
		return
	}

	depth := v.DepthIndex()
	if o.depthSet {
		depth = o.depth
	}

	replaced := false
	if i := find(c.visuals, index); i >= 0 {
		current := c.visuals[i]
		currentDepth := current.visual.DepthIndex()
		current.visual.RemoveEventObserver(c)

		if c.onScene && o.enabled {
			if find(c.removeVisuals, index) >= 0 {
				// Only the latest request is shown; the stale one never
				// became ready.
				current.visual.SetOffScene()
				c.visuals = erase(c.visuals, i)
			} else {
				c.visuals = erase(c.visuals, i)
				c.removeVisuals = append(c.removeVisuals, current)
			}
		} else {
			c.visuals = erase(c.visuals, i)
			current.visual.SetOffScene()
		}

		if !o.depthSet && v.DepthIndex() == 0 {
			depth = currentDepth
		}
		replaced = true
	}

	if v.Name() == "" {
		if name, ok := c.names[index]; ok {
			v.SetName(name)
		}
	}

	if !replaced && !o.depthSet && len(c.visuals) > 0 && v.DepthIndex() == 0 {
		maxDepth := c.visuals[0].visual.DepthIndex()
		for _, rv := range c.visuals[1:] {
			maxDepth = max(maxDepth, rv.visual.DepthIndex())
		}
		depth = max(0, maxDepth+1)
	}

	v.SetDepthIndex(depth)
	v.AddEventObserver(c)
	c.visuals = append(c.visuals, &registeredVisual{
		index:   index,
		visual:  v,
		enabled: o.enabled,
		pending: replaced && o.enabled,
		source:  source,
	})

	if ce := c.log.Check(zap.DebugLevel, "visual registered"); ce != nil {
		ce.Write(zap.Int("index", index), zap.Int("depth", depth),
			zap.Stringer("type", v.Type()), zap.Bool("enabled", o.enabled), zap.Bool("replaced", replaced))
	}

	if o.enabled && c.onScene {
		v.SetOnScene()
	} else if v.IsResourceReady() {
		c.ResourceReady(v)
	}
}

// UnregisterVisual removes the visual at index and any visual it was
// replacing.
func (c *Control) UnregisterVisual(index int) {
	found := false
	if i := find(c.visuals, index); i >= 0 {
		rv := c.visuals[i]
		rv.visual.RemoveEventObserver(c)
		rv.visual.SetOffScene()
		c.visuals = erase(c.visuals, i)
		found = true
	}
	if i := find(c.removeVisuals, index); i >= 0 {
		c.removeVisuals[i].visual.SetOffScene()
		c.removeVisuals = erase(c.removeVisuals, i)
		found = true
	}
	if !found {
		c.log.Debug("unregister of unknown visual", zap.Int("index", index))
	}
}

// GetVisual returns the visual registered at index, nil when none.
func (c *Control) GetVisual(index int) visual.Visual {
	if i := find(c.visuals, index); i >= 0 {
		return c.visuals[i].visual
	}
	return nil
}

// EnableVisual shows or hides the visual at index.
func (c *Control) EnableVisual(index int, enable bool) {
	i := find(c.visuals, index)
	if i < 0 {
		c.log.Warn("enable of unknown visual", zap.Int("index", index), zap.Bool("enable", enable))
		return
	}
	rv := c.visuals[i]
	if rv.enabled == enable {
		return
	}
	rv.enabled = enable
	if !c.onScene {
		return
	}
	if enable {
		rv.visual.SetOnScene()
	} else {
		rv.visual.SetOffScene()
	}
}

// IsVisualEnabled reports whether the visual at index is shown.
func (c *Control) IsVisualEnabled(index int) bool {
	if i := find(c.visuals, index); i >= 0 {
		return c.visuals[i].enabled
	}
	return false
}

// GetVisualResourceStatus returns the status of the visual at index;
// Preparing when none is registered.
func (c *Control) GetVisualResourceStatus(index int) visual.ResourceStatus {
	if i := find(c.visuals, index); i >= 0 {
		return c.visuals[i].visual.ResourceStatus()
	}
	return visual.Preparing
}

// IsResourceReady reports whether every enabled visual is ready.
func (c *Control) IsResourceReady() bool {
	for _, rv := range c.visuals {
		if rv.enabled && !rv.visual.IsResourceReady() {
			return false
		}
	}
	return true
}

// IsReplacing reports whether a visual at index waits for its replacement
// to become ready.
func (c *Control) IsReplacing(index int) bool {
	return find(c.removeVisuals, index) >= 0
}

// VisualsInDepthOrder returns the visuals to draw, back to front: the
// enabled registered visuals and those still waiting to be replaced.
func (c *Control) VisualsInDepthOrder() []visual.Visual {
	out := make([]visual.Visual, 0, len(c.visuals)+len(c.removeVisuals))
	for _, rv := range c.removeVisuals {
		out = append(out, rv.visual)
	}
	for _, rv := range c.visuals {
		if rv.enabled {
			out = append(out, rv.visual)
		}
	}
	// Insertion sort keeps registration order among equal depths.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].DepthIndex() < out[j-1].DepthIndex(); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// DoAction performs action on the visual at index.
func (c *Control) DoAction(index int, action int, attributes visual.PropertyMap) {
	if i := find(c.visuals, index); i >= 0 {
		c.visuals[i].visual.DoAction(action, attributes)
		return
	}
	c.log.Debug("action on unknown visual", zap.Int("index", index), zap.Int("action", action))
}

// ============================================================================
// visual.EventObserver
// ============================================================================

// ResourceReady is called by a registered visual when its resources are
// ready. A visual replacing an on-scene one takes its place now.
func (c *Control) ResourceReady(v visual.Visual) {
	for _, rv := range c.visuals {
		if rv.visual != v {
			continue
		}
		if j := find(c.removeVisuals, rv.index); j >= 0 {
			rv.pending = false
			c.removeVisuals[j].visual.SetOffScene()
			c.removeVisuals = erase(c.removeVisuals, j)
		}
		break
	}

	if c.onScene {
		c.requestRelayout()
	}

	if c.IsResourceReady() {
		c.needEmit = false
		c.emitResourceReady()
	}
}

// NotifyVisualEvent is called by a registered visual raising signalID.
func (c *Control) NotifyVisualEvent(v visual.Visual, signalID int) {
	for _, rv := range c.visuals {
		if rv.visual == v {
			c.visualEvent.Emit(VisualEvent{Control: c, Index: rv.index, SignalID: signalID})
			return
		}
	}
}

// emitResourceReady emits the resource-ready signal. A request made by a
// slot during the emission is deferred to an idle callback.
func (c *Control) emitResourceReady() {
	if c.emitting {
		c.needEmit = true
		return
	}
	c.emitting = true
	c.resourceReady.Emit(c)
	c.emitting = false

	if !c.needEmit || c.idleQueued {
		return
	}
	if c.idle != nil {
		c.idleQueued = c.idle.AddIdle(c.onIdle)
		if c.idleQueued {
			return
		}
	}
	c.onIdle()
}

func (c *Control) onIdle() {
	c.idleQueued = false
	if !c.needEmit {
		return
	}
	c.needEmit = false
	if c.onScene {
		c.requestRelayout()
	}
	c.emitResourceReady()
}

// ============================================================================
// Scene
// ============================================================================

// OnSceneConnection puts the enabled visuals on scene.
func (c *Control) OnSceneConnection() {
	if c.onScene {
		return
	}
	c.onScene = true
	for _, rv := range append([]*registeredVisual(nil), c.visuals...) {
		if rv.enabled {
			rv.visual.SetOnScene()
		}
	}
	c.requestRelayout()
}

// OnSceneDisconnection takes every visual off scene. Visuals waiting to
// replace another stay registered and replace it directly when the
// control returns.
func (c *Control) OnSceneDisconnection() {
	if !c.onScene {
		return
	}
	c.onScene = false
	for _, rv := range c.visuals {
		rv.visual.SetOffScene()
	}
	for _, rv := range c.removeVisuals {
		rv.visual.SetOffScene()
	}
	for _, rv := range c.visuals {
		rv.pending = false
	}
	c.removeVisuals = nil
}

// ============================================================================
// Background and shadow
// ============================================================================

// SetBackground creates the background visual from props.
func (c *Control) SetBackground(props visual.PropertyMap) {
	v := c.createVisual(props)
	if v == nil {
		return
	}
	c.RegisterVisual(PropertyBackground, v, WithDepthIndex(DepthBackground))
	c.requestRelayout()
}

// SetBackgroundColor sets a solid background.
func (c *Control) SetBackgroundColor(hex string) {
	c.SetBackground(visual.PropertyMap{
		visual.KeyVisualType: visual.Color.String(),
		visual.KeyMixColor:   hex,
	})
}

// ClearBackground removes the background visual.
func (c *Control) ClearBackground() {
	c.UnregisterVisual(PropertyBackground)
	c.requestRelayout()
}

// SetShadow creates the shadow visual from props, drawn behind the
// background.
func (c *Control) SetShadow(props visual.PropertyMap) {
	v := c.createVisual(props)
	if v == nil {
		return
	}
	v.SetName("shadow")
	c.RegisterVisual(PropertyShadow, v, WithDepthIndex(DepthBackgroundEffect))
	c.requestRelayout()
}

// ClearShadow removes the shadow visual.
func (c *Control) ClearShadow() {
	c.UnregisterVisual(PropertyShadow)
	c.requestRelayout()
}

func (c *Control) createVisual(props visual.PropertyMap) visual.Visual {
	if c.factory == nil {
		c.log.Warn("no visual factory")
		return nil
	}
	return c.factory.CreateVisual(props)
}

// ============================================================================
// Layout and input
// ============================================================================

// SetMargin sets the space around the control.
func (c *Control) SetMargin(m Extents) {
	c.margin = m
	c.requestRelayout()
}

// Margin returns the space around the control.
func (c *Control) Margin() Extents { return c.margin }

// SetPadding sets the space between the control edge and its content.
func (c *Control) SetPadding(p Extents) {
	c.padding = p
	c.requestRelayout()
}

// Padding returns the space between the control edge and its content.
func (c *Control) Padding() Extents { return c.padding }

// SetInputMethodContext sets the input method key events go through.
func (c *Control) SetInputMethodContext(imf KeyFilter) {
	c.imf = imf
}

// FilterKeyEvent offers ev to the input method. Returns true when the
// input method consumed it.
func (c *Control) FilterKeyEvent(ev controller.KeyEvent) bool {
	if c.imf == nil {
		return false
	}
	return c.imf.FilterEventKey(ev)
}
