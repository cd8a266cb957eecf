package control

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/visual"
)

// State is the interaction state of a control.
type State uint8

const (
	Normal State = iota
	Focused
	Disabled
)

var stateNames = [...]string{
	Normal:   "NORMAL",
	Focused:  "FOCUSED",
	Disabled: "DISABLED",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// ParseState returns the state named s, case insensitive.
func ParseState(s string) (State, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for st, name := range stateNames {
		if name == s {
			return State(st), true
		}
	}
	return 0, false
}

// Style lists the visuals a control shows in each state, keyed by state
// name. A state may refine its visuals per sub-state.
//
//	[states.NORMAL.visuals.background]
//	visualType = "COLOR"
//	mixColor = "#ffffff"
//
//	[states.FOCUSED.subStates.SELECTED.visuals.background]
//	visualType = "COLOR"
//	mixColor = "#3366ff"
type Style struct {
	States map[string]*StateStyle `toml:"states"`
}

// StateStyle is the set of visuals for one state, keyed by visual name.
type StateStyle struct {
	Visuals   map[string]visual.PropertyMap `toml:"visuals"`
	SubStates map[string]*StateStyle        `toml:"subStates"`
}

// ParseStyle decodes a style from TOML.
func ParseStyle(data []byte) (*Style, error) {
	var s Style
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse style: %w", err)
	}
	for name := range s.States {
		if _, ok := ParseState(name); !ok {
			return nil, fmt.Errorf("failed to parse style: unknown state %q", name)
		}
	}
	return &s, nil
}

// State returns the current state.
func (c *Control) State() State { return c.state }

// SubState returns the current sub-state name.
func (c *Control) SubState() string { return c.subState }

// SetStyle replaces the style and shows the visuals of the current state.
func (c *Control) SetStyle(style *Style) {
	old := c.styleVisuals(c.state, c.subState)
	c.style = style
	c.replaceStateVisuals(old, c.styleVisuals(c.state, c.subState))
}

// SetState switches to state. The visuals change only when the style
// describes the new state.
func (c *Control) SetState(state State) {
	if state == c.state {
		return
	}
	old := c.styleVisuals(c.state, c.subState)
	prev := c.state
	c.state = state
	if c.style == nil || c.style.States[state.String()] == nil {
		return
	}
	c.log.Debug("state changed", zap.Stringer("from", prev), zap.Stringer("to", state))
	c.replaceStateVisuals(old, c.styleVisuals(state, c.subState))
}

// SetSubState switches to the named sub-state of the current state. The
// visuals change only when the style describes the new sub-state.
func (c *Control) SetSubState(name string) {
	if name == c.subState {
		return
	}
	old := c.styleVisuals(c.state, c.subState)
	c.subState = name
	if c.style == nil {
		return
	}
	st := c.style.States[c.state.String()]
	if st == nil || st.SubStates[name] == nil {
		return
	}
	c.replaceStateVisuals(old, c.styleVisuals(c.state, name))
}

// styleVisuals returns the visuals of state, overridden by those of the
// sub-state.
func (c *Control) styleVisuals(state State, subState string) map[string]visual.PropertyMap {
	if c.style == nil {
		return nil
	}
	st := c.style.States[state.String()]
	if st == nil {
		return nil
	}
	out := maps.Clone(st.Visuals)
	if sub := st.SubStates[subState]; sub != nil {
		if out == nil {
			out = make(map[string]visual.PropertyMap, len(sub.Visuals))
		}
		maps.Copy(out, sub.Visuals)
	}
	return out
}

// replaceStateVisuals unregisters visuals named in old but not in next and
// creates or recreates the rest. A visual in both is recreated only when
// its properties changed, keeping its instance properties.
func (c *Control) replaceStateVisuals(old, next map[string]visual.PropertyMap) {
	for _, name := range slices.Sorted(maps.Keys(old)) {
		if _, ok := next[name]; ok {
			continue
		}
		if index, ok := c.indexOf(name); ok {
			c.UnregisterVisual(index)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(next)) {
		props := next[name]
		index := c.indexFor(name)

		var current *registeredVisual
		if i := find(c.visuals, index); i >= 0 {
			current = c.visuals[i]
		}
		if current != nil && current.source != nil && current.source.Equal(props) {
			continue
		}
		if current != nil {
			props = props.Merge(current.visual.CreateInstancePropertyMap())
		}

		v := c.createVisual(props)
		if v == nil {
			continue
		}
		v.SetName(name)
		var opts []RegisterOption
		if index == PropertyBackground {
			opts = append(opts, WithDepthIndex(DepthBackground))
		}
		c.registerVisual(index, v, next[name], opts...)
	}
	c.requestRelayout()
}

func (c *Control) indexOf(name string) (int, bool) {
	for index, n := range c.names {
		if n == name {
			return index, true
		}
	}
	return 0, false
}

func (c *Control) indexFor(name string) int {
	if index, ok := c.indexOf(name); ok {
		return index
	}
	index := c.nextDynamic
	c.nextDynamic++
	c.names[index] = name
	return index
}
