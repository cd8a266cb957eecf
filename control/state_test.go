package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/visual"
)

const buttonStyle = `
[states.NORMAL.visuals.background]
visualType = "COLOR"
mixColor = "#ffffff"

[states.NORMAL.visuals.frame]
visualType = "BORDER"
borderColor = "#000000"
borderSize = 1.0

[states.FOCUSED.visuals.background]
visualType = "COLOR"
mixColor = "#3366ff"

[states.FOCUSED.visuals.frame]
visualType = "BORDER"
borderColor = "#000000"
borderSize = 1.0

[states.FOCUSED.visuals.glow]
visualType = "COLOR"
mixColor = "#ffff00"

[states.FOCUSED.subStates.SELECTED.visuals.background]
visualType = "COLOR"
mixColor = "#00ff00"
`

func fillHex(t *testing.T, v visual.Visual) string {
	t.Helper()
	cv, ok := v.(*visual.ColorVisual)
	require.True(t, ok, "%T", v)
	c, _ := cv.FillColor()
	return visual.FormatColor(c)
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle([]byte(buttonStyle))
	require.NoError(t, err)
	require.Contains(t, s.States, "FOCUSED")
	assert.Len(t, s.States["FOCUSED"].Visuals, 3)
	assert.Contains(t, s.States["FOCUSED"].SubStates, "SELECTED")

	_, err = ParseStyle([]byte(`[states.HOVERED.visuals.background]`))
	assert.ErrorContains(t, err, "unknown state")

	_, err = ParseStyle([]byte(`states = 3`))
	assert.Error(t, err)
}

func TestParseState(t *testing.T) {
	for _, s := range []State{Normal, Focused, Disabled} {
		t.Run(s.String(), func(t *testing.T) {
			got, ok := ParseState(s.String())
			assert.True(t, ok)
			assert.Equal(t, s, got)
		})
	}
	_, ok := ParseState("pressed")
	assert.False(t, ok)
}

func TestSetStateSwapsVisuals(t *testing.T) {
	style, err := ParseStyle([]byte(buttonStyle))
	require.NoError(t, err)

	c, _ := newControl(t, nil)
	c.SetStyle(style)
	c.OnSceneConnection()

	bg := c.GetVisual(PropertyBackground)
	require.NotNil(t, bg)
	assert.Equal(t, "#ffffff", fillHex(t, bg))
	assert.Equal(t, DepthBackground, bg.DepthIndex())

	frameIndex, ok := c.indexOf("frame")
	require.True(t, ok)
	frame := c.GetVisual(frameIndex)
	require.NotNil(t, frame)

	c.SetState(Focused)
	assert.Equal(t, Focused, c.State())
	assert.Equal(t, "#3366ff", fillHex(t, c.GetVisual(PropertyBackground)))
	assert.Same(t, frame, c.GetVisual(frameIndex), "unchanged visual kept")

	glowIndex, ok := c.indexOf("glow")
	require.True(t, ok)
	require.NotNil(t, c.GetVisual(glowIndex))
	assert.Equal(t, "glow", c.GetVisual(glowIndex).Name())

	c.SetSubState("SELECTED")
	assert.Equal(t, "SELECTED", c.SubState())
	assert.Equal(t, "#00ff00", fillHex(t, c.GetVisual(PropertyBackground)))

	c.SetSubState("")
	c.SetState(Normal)
	assert.Equal(t, "#ffffff", fillHex(t, c.GetVisual(PropertyBackground)))
	assert.Nil(t, c.GetVisual(glowIndex))
	assert.True(t, c.IsResourceReady())
}

func TestSetStateWithoutStyleForState(t *testing.T) {
	style, err := ParseStyle([]byte(buttonStyle))
	require.NoError(t, err)

	c, _ := newControl(t, nil)
	c.SetStyle(style)
	bg := c.GetVisual(PropertyBackground)

	c.SetState(Disabled)
	assert.Equal(t, Disabled, c.State())
	assert.Same(t, bg, c.GetVisual(PropertyBackground))
}

func TestRecreateKeepsInstanceProperties(t *testing.T) {
	style, err := ParseStyle([]byte(buttonStyle))
	require.NoError(t, err)

	c, _ := newControl(t, nil)
	c.SetStyle(style)

	cv := c.GetVisual(PropertyBackground).(*visual.ColorVisual)
	cv.SetTransform(visual.Transform{Size: text.Vector2{X: 40, Y: 20}})

	c.SetState(Focused)
	next := c.GetVisual(PropertyBackground).(*visual.ColorVisual)
	assert.NotSame(t, cv, next)
	assert.Equal(t, cv.Transform(), next.Transform())
}
