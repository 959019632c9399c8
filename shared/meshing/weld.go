package meshing

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// weldCellSize é o lado de cada célula do índice espacial.
	weldCellSize float32 = 0.01
	// maxWeldSpan limita quantas células por eixo uma busca visita antes de
	// cair para a varredura linear.
	maxWeldSpan = 4
)

type cellKey struct{ x, y, z int32 }

// weldIndex é um hash espacial de vértices. A busca devolve o vértice de
// menor Index que satisfaz match, igual a uma varredura linear em ordem.
type weldIndex struct {
	cells map[cellKey][]*Vertex
}

func newWeldIndex() *weldIndex {
	return &weldIndex{cells: make(map[cellKey][]*Vertex)}
}

func cellCoord(f float32) int32 {
	return int32(math.Floor(float64(f / weldCellSize)))
}

func keyOf(p mgl32.Vec3) cellKey {
	return cellKey{cellCoord(p[0]), cellCoord(p[1]), cellCoord(p[2])}
}

func finite(p mgl32.Vec3) bool {
	for _, f := range p {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}

func (w *weldIndex) insert(v *Vertex) {
	if !finite(v.Pos) {
		return
	}
	k := keyOf(v.Pos)
	w.cells[k] = append(w.cells[k], v)
}

// remove tira v da célula correspondente a pos (a posição indexada).
func (w *weldIndex) remove(v *Vertex, pos mgl32.Vec3) {
	if !finite(pos) {
		return
	}
	k := keyOf(pos)
	list := w.cells[k]
	for i, c := range list {
		if c == v {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(w.cells, k)
	} else {
		w.cells[k] = list
	}
}

// find retorna (vértice, true) quando a busca cabe no índice; ok=false pede
// varredura linear (epsilon grande demais ou posição não finita).
func (w *weldIndex) find(pos mgl32.Vec3, epsilon float32, match func(*Vertex) bool) (*Vertex, bool) {
	if !finite(pos) || epsilon > weldCellSize*maxWeldSpan {
		return nil, false
	}
	lo := keyOf(pos.Sub(mgl32.Vec3{epsilon, epsilon, epsilon}))
	hi := keyOf(pos.Add(mgl32.Vec3{epsilon, epsilon, epsilon}))

	var best *Vertex
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				for _, v := range w.cells[cellKey{x, y, z}] {
					if (best == nil || v.Index < best.Index) && match(v) {
						best = v
					}
				}
			}
		}
	}
	return best, true
}
