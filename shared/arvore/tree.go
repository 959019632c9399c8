package arvore

import (
	"fmt"
	"strings"
)

// Índices fixos dos segmentos raiz dentro de Tree.
const (
	TrunkIndex = 0
	RootsIndex = 1
)

// Tree é o contêiner do esqueleto: tronco e raízes, endereçados por índice.
// Cada segmento pertence exclusivamente ao pai; a árvore inteira pertence ao Tree.
type Tree struct {
	segments [2]*Segment
}

// Trunk retorna o segmento base do tronco.
func (t *Tree) Trunk() *Segment { return t.segments[TrunkIndex] }

// Roots retorna o segmento base das raízes (pode ser nil).
func (t *Tree) Roots() *Segment { return t.segments[RootsIndex] }

// SetTrunk define o tronco.
func (t *Tree) SetTrunk(s *Segment) *Segment { return t.SetSegment(TrunkIndex, s) }

// SetRoots define as raízes.
func (t *Tree) SetRoots(s *Segment) *Segment { return t.SetSegment(RootsIndex, s) }

// SetSegment define o segmento no índice.
func (t *Tree) SetSegment(index int, s *Segment) *Segment {
	t.segments[index] = s
	return s
}

// Segment retorna o segmento no índice.
func (t *Tree) Segment(index int) *Segment { return t.segments[index] }

// SegmentCount retorna o número de slots (tronco + raízes).
func (t *Tree) SegmentCount() int { return len(t.segments) }

// Segments retorna os slots na ordem tronco, raízes. Slots vazios são nil.
func (t *Tree) Segments() []*Segment { return t.segments[:] }

// Count conta todos os nós do esqueleto.
func (t *Tree) Count() int {
	n := 0
	for _, s := range t.segments {
		if s != nil {
			s.Walk(func(*Segment, int) { n++ })
		}
	}
	return n
}

// LeafCount conta as folhas a partir de um slot (tronco ou raízes).
func (t *Tree) LeafCount(index int) int {
	s := t.segments[index]
	if s == nil {
		return 0
	}
	n := 0
	s.Walk(func(seg *Segment, _ int) {
		if !seg.HasChildren() {
			n++
		}
	})
	return n
}

func (t *Tree) String() string {
	var sb strings.Builder
	sb.WriteString("Tree[")
	for i, s := range t.segments {
		if i > 0 {
			sb.WriteString(", ")
		}
		if s == nil {
			sb.WriteString("nil")
			continue
		}
		fmt.Fprintf(&sb, "%v", s)
	}
	sb.WriteString("]")
	return sb.String()
}
