package meshing

import (
	"Arvoredo/shared/arvore"

	"github.com/go-gl/mathgl/mgl32"
)

// LineGenerator gera o esqueleto como pares de pontos (modo Lines), sem LOD.
type LineGenerator struct{}

// Generate retorna nil para uma árvore vazia.
func (LineGenerator) Generate(tree *arvore.Tree) *Geometry {
	var points []float32
	for _, seg := range tree.Segments() {
		if seg == nil {
			continue
		}
		points = addLines(mgl32.Vec3{}, seg, points)
	}
	if len(points) == 0 {
		return nil
	}
	return &Geometry{Mode: Lines, Vertices: points}
}

func addLines(start mgl32.Vec3, seg *arvore.Segment, points []float32) []float32 {
	end := start.Add(seg.Dir.Mul(seg.Length))
	points = append(points, start[0], start[1], start[2], end[0], end[1], end[2])
	for _, child := range seg.Children {
		points = addLines(end, child, points)
	}
	return points
}
