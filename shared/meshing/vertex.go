package meshing

import (
	"math"

	"Arvoredo/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// PinnedWeight marca um vértice cuja normal não deve ser suavizada.
const PinnedWeight float32 = -1

// Vertex é um vértice em construção. Normal, UV e tangente são opcionais;
// Weight acumula a suavização e também serve de canal de tamanho (flat-poly).
type Vertex struct {
	Pos     mgl32.Vec3
	Normal  mgl32.Vec3
	UV      mgl32.Vec2
	Tangent mgl32.Vec3

	HasNormal  bool
	HasUV      bool
	HasTangent bool

	Weight float32
	Group  int
	// Index é a posição estável no buffer final; -1 fora de um MeshBuilder.
	Index int
}

// NewVertex cria um vértice solto (fora de qualquer MeshBuilder).
func NewVertex(pos mgl32.Vec3) *Vertex {
	return &Vertex{Pos: pos, Index: -1}
}

// SetNormal define a normal.
func (v *Vertex) SetNormal(n mgl32.Vec3) {
	v.Normal = n
	v.HasNormal = true
}

// SetUV define a coordenada de textura.
func (v *Vertex) SetUV(uv mgl32.Vec2) {
	v.UV = uv
	v.HasUV = true
}

// SetTangent define a tangente.
func (v *Vertex) SetTangent(t mgl32.Vec3) {
	v.Tangent = t
	v.HasTangent = true
}

// Clone retorna uma cópia solta do vértice.
func (v *Vertex) Clone() *Vertex {
	c := *v
	c.Index = -1
	return &c
}

// isSame compara posição (e UV, quando informada) dentro de epsilon.
// Epsilon negativo nunca solda.
func (v *Vertex) isSame(pos mgl32.Vec3, uv *mgl32.Vec2, epsilon float32) bool {
	if epsilon < 0 {
		return false
	}
	eps2 := epsilon * epsilon
	if d := v.Pos.Sub(pos); d.Dot(d) > eps2 {
		return false
	}
	if uv == nil {
		return true
	}
	if !v.HasUV {
		return false
	}
	d := v.UV.Sub(*uv)
	return d.Dot(d) <= eps2
}

// Triangle referencia três vértices de um MeshBuilder.
type Triangle struct {
	V1, V2, V3 *Vertex
}

// Vertices retorna os três vértices em ordem.
func (t Triangle) Vertices() [3]*Vertex {
	return [3]*Vertex{t.V1, t.V2, t.V3}
}

// Normal calcula a normal da face (zero para triângulos degenerados).
func (t Triangle) Normal() mgl32.Vec3 {
	e1 := t.V2.Pos.Sub(t.V1.Pos)
	e2 := t.V3.Pos.Sub(t.V1.Pos)
	return util.SafeNormalize(e1.Cross(e2), mgl32.Vec3{})
}

// Angle retorna o ângulo interno do triângulo no vértice v.
func (t Triangle) Angle(v *Vertex) float32 {
	var a, b *Vertex
	switch v {
	case t.V1:
		a, b = t.V2, t.V3
	case t.V2:
		a, b = t.V3, t.V1
	case t.V3:
		a, b = t.V1, t.V2
	default:
		return 0
	}
	e1 := a.Pos.Sub(v.Pos)
	e2 := b.Pos.Sub(v.Pos)
	l1, l2 := e1.Len(), e2.Len()
	if l1 == 0 || l2 == 0 {
		return 0
	}
	angle := util.Acos(e1.Dot(e2) / (l1 * l2))
	if math.IsNaN(float64(angle)) {
		return 0
	}
	return angle
}

// Tip é a ponta de um galho: posição e direção, para posicionar folhas.
type Tip struct {
	Pos mgl32.Vec3
	Dir mgl32.Vec3
}

// normalLinks é um grupo de vértices que devem terminar com a mesma normal.
// A ordem de inserção é mantida para que a soma seja determinística.
type normalLinks struct {
	members []*Vertex
}

// combineNormals soma as normais do grupo e grava o resultado em cada membro.
// Membros com PinnedWeight ficam fora da soma e mantêm a própria normal.
func (nl *normalLinks) combineNormals() {
	var normal mgl32.Vec3
	var total float32
	found := false
	for _, v := range nl.members {
		if v.Weight == PinnedWeight {
			continue
		}
		if v.HasNormal {
			normal = normal.Add(v.Normal)
			found = true
		}
		total += v.Weight
	}
	if !found {
		return
	}
	for _, v := range nl.members {
		if v.Weight == PinnedWeight {
			continue
		}
		v.SetNormal(normal)
		v.Weight = total
	}
}
