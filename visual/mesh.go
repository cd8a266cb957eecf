package visual

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/text"
)

// MeshInfo summarizes a Wavefront OBJ model.
type MeshInfo struct {
	Vertices  int
	Normals   int
	TexCoords int
	Faces     int
	Materials int

	Min, Max [3]float32
}

// Extent returns the model's width and height.
func (m MeshInfo) Extent() text.Vector2 {
	if m.Vertices == 0 {
		return text.Vector2{}
	}
	return text.Vector2{X: m.Max[0] - m.Min[0], Y: m.Max[1] - m.Min[1]}
}

// ParseOBJ reads the element counts and bounds of an OBJ model.
func ParseOBJ(data []byte) (MeshInfo, error) {
	var info MeshInfo
	for i := range 3 {
		info.Min[i] = math32.MaxFloat32
		info.Max[i] = -math32.MaxFloat32
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return info, errors.Errorf("failed to parse obj: line %d: vertex needs three coordinates", line)
			}
			for i := range 3 {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return info, errors.Wrapf(err, "failed to parse obj: line %d", line)
				}
				info.Min[i] = min(info.Min[i], float32(f))
				info.Max[i] = max(info.Max[i], float32(f))
			}
			info.Vertices++
		case "vn":
			info.Normals++
		case "vt":
			info.TexCoords++
		case "f":
			if len(fields) < 4 {
				return info, errors.Errorf("failed to parse obj: line %d: face needs three vertices", line)
			}
			// Polygons are fanned into triangles.
			info.Faces += len(fields) - 3
		}
	}
	if err := sc.Err(); err != nil {
		return info, errors.Wrap(err, "failed to parse obj")
	}
	if info.Vertices == 0 {
		return info, errors.New("failed to parse obj: no vertices")
	}
	return info, nil
}

// countMaterials returns the number of materials an MTL file defines.
func countMaterials(data []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if fields := strings.Fields(sc.Text()); len(fields) > 0 && fields[0] == "newmtl" {
			n++
		}
	}
	return n
}

// MeshVisual draws a model loaded from an OBJ file and an optional MTL
// material file.
type MeshVisual struct {
	Base

	loader      *Loader
	objectURL   string
	materialURL string

	info      MeshInfo
	loaded    bool
	remaining int
	failed    bool
	load      pending
}

// NewMesh creates a mesh visual.
func NewMesh(props PropertyMap, loader *Loader) *MeshVisual {
	v := &MeshVisual{loader: loader}
	v.init(v, v, Mesh, props)
	v.objectURL, _ = props.String(KeyObjectURL)
	v.materialURL, _ = props.String(KeyMaterialURL)
	return v
}

// Info returns the model summary, zero until ready.
func (v *MeshVisual) Info() MeshInfo { return v.info }

// NaturalSize returns the model's width and height in model units.
func (v *MeshVisual) NaturalSize() text.Vector2 {
	if !v.loaded {
		return v.Base.NaturalSize()
	}
	return v.info.Extent()
}

func (v *MeshVisual) doSetOnScene() {
	if v.loaded {
		v.resourceReady(Ready)
		return
	}
	if v.loader == nil || v.objectURL == "" {
		v.resourceReady(Failed)
		return
	}
	ctx, gen := v.load.start()
	v.failed = false
	v.remaining = 1
	if v.materialURL != "" {
		v.remaining++
	}
	done := func(apply func(data []byte) error) func([]byte, error) {
		return func(data []byte, err error) {
			if gen != v.load.gen || !v.onScene || v.failed {
				return
			}
			if err == nil {
				err = apply(data)
			}
			if err != nil {
				v.failed = true
				v.load.stop()
				v.loader.log.Warn("mesh rejected", zap.String("url", v.objectURL), zap.Error(err))
				v.resourceReady(Failed)
				return
			}
			v.remaining--
			if v.remaining == 0 {
				v.load.current(gen)
				v.loaded = true
				v.resourceReady(Ready)
			}
		}
	}
	v.loader.LoadData(ctx, v.objectURL, done(func(data []byte) error {
		materials := v.info.Materials
		info, err := ParseOBJ(data)
		info.Materials = materials
		v.info = info
		return err
	}))
	if v.materialURL != "" {
		v.loader.LoadData(ctx, v.materialURL, done(func(data []byte) error {
			v.info.Materials = countMaterials(data)
			return nil
		}))
	}
}

func (v *MeshVisual) doSetOffScene() {
	v.load.stop()
}

func (v *MeshVisual) doCreatePropertyMap(m PropertyMap) {
	m[KeyObjectURL] = v.objectURL
	if v.materialURL != "" {
		m[KeyMaterialURL] = v.materialURL
	}
}

func (v *MeshVisual) doCreateInstancePropertyMap(PropertyMap) {}
