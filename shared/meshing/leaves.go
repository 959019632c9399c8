package meshing

import "math"

const (
	// Atlas de folhas: uma coluna usada de 4, 4 linhas.
	leafUCells    = 1
	leafUCellSize = float32(1) / 4
	leafVCells    = 4
	leafVCellSize = float32(1) / leafVCells
	// leafBoundsScale expande a caixa envolvente para as folhas não sumirem cedo.
	leafBoundsScale = 0.6
)

// LeavesGenerator gera um quad por ponta, com os quatro cantos na mesma
// posição. O canto vai em UVs e a célula do atlas em UVs2; o shader abre o
// quad na tela usando Sizes.
type LeavesGenerator struct{}

// Generate retorna nil quando não há pontas.
func (LeavesGenerator) Generate(tips []Tip, quadSize float32) *Geometry {
	if len(tips) == 0 {
		return nil
	}
	n := len(tips) * 4
	g := &Geometry{
		Mode:          Triangles,
		Vertices:      make([]float32, 0, n*3),
		Normals:       make([]float32, 0, n*3),
		UVs:           make([]float32, 0, n*2),
		UVs2:          make([]float32, 0, n*2),
		Sizes:         make([]float32, 0, n),
		BoundsPadding: quadSize * leafBoundsScale,
	}
	wide := n > math.MaxUint16
	corners := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	for cell, tip := range tips {
		uBase, uTop := atlasCell(cell/(leafVCells*2)%(leafUCells*2), leafUCells, leafUCellSize)
		vBase, vTop := atlasCell(cell%(leafVCells*2), leafVCells, leafVCellSize)
		atlas := [4][2]float32{{uBase, vBase}, {uTop, vBase}, {uTop, vTop}, {uBase, vTop}}

		base := g.VertexCount()
		for c := 0; c < 4; c++ {
			g.Vertices = append(g.Vertices, tip.Pos[0], tip.Pos[1], tip.Pos[2])
			g.Normals = append(g.Normals, tip.Dir[0], tip.Dir[1], tip.Dir[2])
			g.UVs = append(g.UVs, corners[c][0], corners[c][1])
			g.UVs2 = append(g.UVs2, atlas[c][0], atlas[c][1])
			g.Sizes = append(g.Sizes, quadSize)
		}
		quad := [6]int{base, base + 1, base + 2, base + 2, base + 3, base}
		for _, i := range quad {
			if wide {
				g.Indices32 = append(g.Indices32, uint32(i))
			} else {
				g.Indices = append(g.Indices, uint16(i))
			}
		}
	}
	return g
}

// atlasCell alterna entre células negativas e positivas para variar as folhas.
func atlasCell(index, cells int, size float32) (lo, hi float32) {
	if index < cells {
		top := -1 + float32(index)*size
		return top + size, top
	}
	lo = float32(index-cells) * size
	return lo, lo + size
}
