package arvnet

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/meshing"
)

// MeshResult carrega as malhas de todos os níveis de uma árvore gerada.
type MeshResult struct {
	Preset       string
	Seed         int64
	SegmentCount int32
	Levels       []meshing.LodMesh
	Skeleton     *meshing.Geometry
}

// NewMeshResult monta a mensagem a partir do resultado do pipeline.
func NewMeshResult(preset string, seed int64, res *meshing.Result) *MeshResult {
	m := &MeshResult{Preset: preset, Seed: seed, Levels: res.Levels, Skeleton: res.Skeleton}
	if res.Tree != nil {
		m.SegmentCount = int32(res.Tree.Count())
	}
	return m
}

func (m *MeshResult) Marshal() ([]byte, error) {
	var e encoder
	e.string(1, m.Preset)
	e.int64(2, m.Seed)
	e.varint(3, uint64(m.SegmentCount))
	for i := range m.Levels {
		e.message(4, marshalLodMesh(&m.Levels[i]))
	}
	if m.Skeleton != nil {
		e.message(5, marshalGeometry(m.Skeleton))
	}
	return e.buf, nil
}

func (m *MeshResult) Unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.Preset = string(f.bytes)
		case 2:
			m.Seed = int64(f.varint)
		case 3:
			m.SegmentCount = int32(f.varint)
		case 4:
			lm, err := unmarshalLodMesh(f.bytes)
			if err != nil {
				return err
			}
			m.Levels = append(m.Levels, lm)
		case 5:
			g, err := unmarshalGeometry(f.bytes)
			if err != nil {
				return err
			}
			m.Skeleton = g
		}
		return nil
	})
}

func marshalLodMesh(lm *meshing.LodMesh) []byte {
	var e encoder
	e.float(1, lm.Level.Distance)
	e.varint(2, uint64(lm.Level.Reduction))
	e.varint(3, uint64(lm.Level.BranchDepth))
	e.varint(4, uint64(lm.Level.RootDepth))
	e.varint(5, uint64(lm.Level.MaxRadialSegments))
	if lm.Geometry != nil {
		e.message(6, marshalGeometry(lm.Geometry))
	}
	if lm.Leaves != nil {
		e.message(7, marshalGeometry(lm.Leaves))
	}
	if len(lm.Tips) > 0 {
		tips := make([]float32, 0, len(lm.Tips)*6)
		for _, t := range lm.Tips {
			tips = append(tips, t.Pos[0], t.Pos[1], t.Pos[2], t.Dir[0], t.Dir[1], t.Dir[2])
		}
		e.packedFloats(8, tips)
	}
	if lm.Err != nil {
		e.string(9, lm.Err.Error())
	}
	return e.buf
}

func unmarshalLodMesh(data []byte) (meshing.LodMesh, error) {
	lm := meshing.LodMesh{Level: arvore.NewLevelOfDetail()}
	// Profundidades zero não aparecem no wire.
	lm.Level.BranchDepth = 0
	lm.Level.RootDepth = 0
	lm.Level.MaxRadialSegments = 0
	err := eachField(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			lm.Level.Distance = f.float()
		case 2:
			lm.Level.Reduction = arvore.ReductionType(f.varint)
		case 3:
			lm.Level.BranchDepth = int(f.varint)
		case 4:
			lm.Level.RootDepth = int(f.varint)
		case 5:
			lm.Level.MaxRadialSegments = int(f.varint)
		case 6:
			lm.Geometry, err = unmarshalGeometry(f.bytes)
		case 7:
			lm.Leaves, err = unmarshalGeometry(f.bytes)
		case 8:
			var tips []float32
			tips, err = unpackFloats(f.bytes)
			for i := 0; i+5 < len(tips); i += 6 {
				lm.Tips = append(lm.Tips, meshing.Tip{
					Pos: mgl32.Vec3{tips[i], tips[i+1], tips[i+2]},
					Dir: mgl32.Vec3{tips[i+3], tips[i+4], tips[i+5]},
				})
			}
		case 9:
			lm.Err = errors.New(string(f.bytes))
		}
		return err
	})
	return lm, err
}

func marshalGeometry(g *meshing.Geometry) []byte {
	var e encoder
	e.varint(1, uint64(g.Mode))
	e.packedFloats(2, g.Vertices)
	e.packedFloats(3, g.Normals)
	e.packedFloats(4, g.UVs)
	e.packedFloats(5, g.UVs2)
	e.packedFloats(6, g.Tangents)
	e.packedFloats(7, g.Sizes)
	if len(g.Indices32) > 0 {
		e.packedUint32s(9, g.Indices32)
	} else if len(g.Indices) > 0 {
		idx := make([]uint32, len(g.Indices))
		for i, v := range g.Indices {
			idx[i] = uint32(v)
		}
		e.packedUint32s(8, idx)
	}
	e.float(10, g.BoundsPadding)
	return e.buf
}

func unmarshalGeometry(data []byte) (*meshing.Geometry, error) {
	g := &meshing.Geometry{}
	err := eachField(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			g.Mode = meshing.Mode(f.varint)
		case 2:
			g.Vertices, err = unpackFloats(f.bytes)
		case 3:
			g.Normals, err = unpackFloats(f.bytes)
		case 4:
			g.UVs, err = unpackFloats(f.bytes)
		case 5:
			g.UVs2, err = unpackFloats(f.bytes)
		case 6:
			g.Tangents, err = unpackFloats(f.bytes)
		case 7:
			g.Sizes, err = unpackFloats(f.bytes)
		case 8:
			var idx []uint32
			idx, err = unpackUint32s(f.bytes)
			g.Indices = make([]uint16, len(idx))
			for i, v := range idx {
				if v > math.MaxUint16 {
					return errIndexRange
				}
				g.Indices[i] = uint16(v)
			}
		case 9:
			g.Indices32, err = unpackUint32s(f.bytes)
		case 10:
			g.BoundsPadding = f.float()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

var errIndexRange = errors.New("índice de 16 bits fora do intervalo")
