package meshing

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mode indica a primitiva dos índices/vértices.
type Mode int

const (
	Triangles Mode = iota
	Lines
)

func (m Mode) String() string {
	if m == Lines {
		return "Lines"
	}
	return "Triangles"
}

// Geometry contém os buffers de vértices de uma malha.
// Buffers opcionais ficam vazios quando o atributo não existe.
type Geometry struct {
	Mode      Mode
	Vertices  []float32 // 3 por vértice
	Normals   []float32 // 3 por vértice
	UVs       []float32 // 2 por vértice
	UVs2      []float32 // 2 por vértice (célula do atlas das folhas)
	Tangents  []float32 // 4 por vértice, w = 1
	Sizes     []float32 // 1 por vértice
	Indices   []uint16
	Indices32 []uint32

	// BoundsPadding expande Bounds em todas as direções.
	BoundsPadding float32
}

// VertexCount retorna o número de vértices.
func (g *Geometry) VertexCount() int {
	return len(g.Vertices) / 3
}

// IndexCount retorna o número de índices, seja qual for a largura.
func (g *Geometry) IndexCount() int {
	if len(g.Indices32) > 0 {
		return len(g.Indices32)
	}
	return len(g.Indices)
}

// TriangleCount retorna o número de triângulos (zero para linhas).
func (g *Geometry) TriangleCount() int {
	if g.Mode != Triangles {
		return 0
	}
	return g.IndexCount() / 3
}

// Index retorna o i-ésimo índice.
func (g *Geometry) Index(i int) int {
	if len(g.Indices32) > 0 {
		return int(g.Indices32[i])
	}
	return int(g.Indices[i])
}

// Position retorna a posição do vértice i.
func (g *Geometry) Position(i int) mgl32.Vec3 {
	return mgl32.Vec3{g.Vertices[i*3], g.Vertices[i*3+1], g.Vertices[i*3+2]}
}

// Bounds retorna a caixa envolvente (mínimo, máximo) das posições.
func (g *Geometry) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(g.Vertices) < 3 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	inf := float32(math.Inf(1))
	lo := mgl32.Vec3{inf, inf, inf}
	hi := mgl32.Vec3{-inf, -inf, -inf}
	for i := 0; i+2 < len(g.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			v := g.Vertices[i+a]
			lo[a] = min(lo[a], v)
			hi[a] = max(hi[a], v)
		}
	}
	pad := mgl32.Vec3{g.BoundsPadding, g.BoundsPadding, g.BoundsPadding}
	return lo.Sub(pad), hi.Add(pad)
}

// Clone cria uma cópia profunda dos dados para evitar corrupção de memória
// quando os buffers são enviados ao C.
func (g *Geometry) Clone() *Geometry {
	clone := &Geometry{Mode: g.Mode, BoundsPadding: g.BoundsPadding}
	clone.Vertices = cloneSlice(g.Vertices)
	clone.Normals = cloneSlice(g.Normals)
	clone.UVs = cloneSlice(g.UVs)
	clone.UVs2 = cloneSlice(g.UVs2)
	clone.Tangents = cloneSlice(g.Tangents)
	clone.Sizes = cloneSlice(g.Sizes)
	clone.Indices = cloneSlice(g.Indices)
	clone.Indices32 = cloneSlice(g.Indices32)
	return clone
}

func cloneSlice[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
