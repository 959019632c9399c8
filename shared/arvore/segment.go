package arvore

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ConnectionType descreve como um segmento se liga ao pai.
type ConnectionType int

const (
	// Extrude continua o tubo do pai diretamente.
	Extrude ConnectionType = iota
	// Curve cria uma transição suave entre orientações/raios diferentes.
	Curve
	// Abut encosta o filho no pai sem transição. Não suportado pelos geradores de malha.
	Abut
)

func (c ConnectionType) String() string {
	switch c {
	case Extrude:
		return "Extrude"
	case Curve:
		return "Curve"
	case Abut:
		return "Abut"
	}
	return fmt.Sprintf("ConnectionType(%d)", int(c))
}

// Segment é um nó do esqueleto gerado: um cilindro afunilado.
// EndRadius e VEnd só são válidos depois que a geração do nó termina.
type Segment struct {
	StartRadius float32
	EndRadius   float32
	Length      float32
	UScale      float32
	VStart      float32
	VEnd        float32
	Twist       float32
	Radials     int
	Dir         mgl32.Vec3

	ParentConnection ConnectionType
	Children         []*Segment
}

// NewSegment cria um segmento apontando para cima com 3 radiais.
func NewSegment() *Segment {
	return &Segment{Radials: 3, Dir: mgl32.Vec3{0, 1, 0}}
}

// Inverted indica segmentos que crescem para baixo com V invertido (raízes).
func (s *Segment) Inverted() bool {
	return s.VStart > s.VEnd
}

// HasChildren retorna true se o segmento não for uma folha.
func (s *Segment) HasChildren() bool {
	return len(s.Children) > 0
}

// Extend cria o próximo segmento da cadeia como único filho deste,
// herdando raio final, escala U e V final.
func (s *Segment) Extend(connection ConnectionType) *Segment {
	next := NewSegment()
	next.ParentConnection = connection
	next.StartRadius = s.EndRadius
	next.UScale = s.UScale
	next.VStart = s.VEnd
	next.Dir = s.Dir
	next.Radials = s.Radials
	s.Children = []*Segment{next}
	return next
}

// Walk percorre a subárvore em profundidade, da esquerda para a direita.
// depth conta apenas ligações Curve (cada ramo novo).
func (s *Segment) Walk(fn func(seg *Segment, depth int)) {
	s.walk(0, fn)
}

func (s *Segment) walk(depth int, fn func(seg *Segment, depth int)) {
	fn(s, depth)
	for _, child := range s.Children {
		d := depth
		if child.ParentConnection != Extrude {
			d++
		}
		child.walk(d, fn)
	}
}

func (s *Segment) String() string {
	return fmt.Sprintf("Segment[r=%.4f->%.4f, len=%.4f, dir=%v, v=%.3f->%.3f, %s, filhos=%d]",
		s.StartRadius, s.EndRadius, s.Length, s.Dir, s.VStart, s.VEnd, s.ParentConnection, len(s.Children))
}
