package visual

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Shape is the solid drawn by a primitive visual.
type Shape uint8

const (
	Sphere Shape = iota
	ConicalFrustum
	Cone
	Cylinder
	Cube
	Octahedron
	BevelledCube
)

var shapeNames = [...]string{
	Sphere:         "SPHERE",
	ConicalFrustum: "CONICAL_FRUSTUM",
	Cone:           "CONE",
	Cylinder:       "CYLINDER",
	Cube:           "CUBE",
	Octahedron:     "OCTAHEDRON",
	BevelledCube:   "BEVELLED_CUBE",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "UNKNOWN"
}

// ParseShape returns the shape named s, case insensitive.
func ParseShape(s string) (Shape, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range shapeNames {
		if name == s {
			return Shape(i), true
		}
	}
	return 0, false
}

const (
	defaultSlices = 128
	defaultStacks = 128
	maxPartitions = 255
)

// PrimitiveVisual draws a simple solid built from slices and stacks.
type PrimitiveVisual struct {
	Base
	noHooks

	shape  Shape
	slices int
	stacks int
	color  colorful.Color
}

// NewPrimitive creates a primitive visual. Slices and stacks are clamped
// to [1, 255]; spheres need at least three slices and two stacks.
func NewPrimitive(props PropertyMap) *PrimitiveVisual {
	v := &PrimitiveVisual{
		slices: defaultSlices,
		stacks: defaultStacks,
		color:  colorful.Color{R: 0.5, G: 0.5, B: 0.5},
	}
	v.init(v, v, Primitive, props)
	if s, ok := props.String(KeyShape); ok {
		if shape, ok := ParseShape(s); ok {
			v.shape = shape
		}
	}
	if n, ok := props.Int(KeySlices); ok {
		v.slices = clampInt(n, 1, maxPartitions)
	}
	if n, ok := props.Int(KeyStacks); ok {
		v.stacks = clampInt(n, 1, maxPartitions)
	}
	if c, ok := props.Color(KeyShapeColor); ok {
		v.color = c
	}
	if v.shape == Sphere {
		v.slices = max(v.slices, 3)
		v.stacks = max(v.stacks, 2)
	}
	return v
}

// Shape returns the solid drawn.
func (v *PrimitiveVisual) Shape() Shape { return v.shape }

// VertexCount returns the number of vertices the shape is built from.
func (v *PrimitiveVisual) VertexCount() int {
	switch v.shape {
	case Sphere:
		return v.slices*(v.stacks-1) + 2
	case ConicalFrustum, Cylinder:
		return 2*v.slices*2 + 2
	case Cone:
		return v.slices*2 + 2
	case Cube, Octahedron:
		return 24
	case BevelledCube:
		return 144
	}
	return 0
}

func (v *PrimitiveVisual) doSetOnScene() {
	v.resourceReady(Ready)
}

func (v *PrimitiveVisual) doCreatePropertyMap(m PropertyMap) {
	m[KeyShape] = v.shape.String()
	m[KeySlices] = int64(v.slices)
	m[KeyStacks] = int64(v.stacks)
	m[KeyShapeColor] = FormatColor(v.color)
}

func clampInt(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
