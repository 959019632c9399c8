package meshing

import (
	"fmt"
	"math"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// capRadius é o raio do anel triangular que fecha as pontas.
	capRadius float32 = 0.001
	capGroup          = 1
)

// errTipState é a mensagem de pânico quando a ponta não chega como vértice único.
const errTipState = "meshing: estado da ponta não repassado corretamente"

// SkinnedGenerator gera tubos contínuos extrudando anéis ao longo do esqueleto.
type SkinnedGenerator struct {
	Curve *CurveGenerator
}

// NewSkinnedGenerator usa DefaultCurveGenerator.
func NewSkinnedGenerator() *SkinnedGenerator {
	return &SkinnedGenerator{Curve: DefaultCurveGenerator}
}

// Generate gera a malha do tronco e das raízes para o nível de detalhe lod e
// retorna as pontas dos galhos do tronco. Falha com ErrAbutUnsupported se o
// esqueleto tiver ligações Abut; nesse caso nenhuma geometria é retornada.
func (g *SkinnedGenerator) Generate(tree *arvore.Tree, lod arvore.LevelOfDetailParameters, yOffset, uRepeat, vScale float32) (*Geometry, []Tip, error) {
	trunk := tree.Trunk()
	if trunk == nil {
		return nil, nil, fmt.Errorf("%w: árvore sem tronco", arvore.ErrInvalidParameters)
	}
	mb := NewMeshBuilder()

	radials := min(trunk.Radials, lod.MaxRadialSegments)
	up := util.FromAngles(-math.Pi/2, 0, 0)
	baseLoop := mb.CreateLoop(mgl32.Vec3{0, yOffset, 0}, up, trunk.StartRadius, radials, 0, 0)
	mb.TextureLoop(baseLoop, mgl32.Vec2{0, 0}, mgl32.Vec2{uRepeat, 0})
	applyTangents(baseLoop, false)

	p := &skinnedPass{mb: mb, lod: lod, curve: g.curve()}
	for i, seg := range tree.Segments() {
		if seg == nil {
			continue
		}
		var err error
		if i == arvore.RootsIndex {
			p.inverted, p.collect = true, false
			err = p.addBranches(invertLoop(baseLoop), seg, 0, -uRepeat, -vScale, 0)
		} else {
			p.inverted, p.collect = false, true
			err = p.addBranches(baseLoop, seg, 0, uRepeat, vScale, 0)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	mb.Smooth()
	return mb.Build(), p.tips, nil
}

func (g *SkinnedGenerator) curve() *CurveGenerator {
	if g.Curve == nil {
		return DefaultCurveGenerator
	}
	return g.Curve
}

type skinnedPass struct {
	mb       *MeshBuilder
	lod      arvore.LevelOfDetailParameters
	curve    *CurveGenerator
	tips     []Tip
	collect  bool
	inverted bool
}

func (p *skinnedPass) addCap(loop []*Vertex, seg *arvore.Segment, vBase, uRepeat, vScaleLocal float32) (*Vertex, error) {
	tip, err := p.mb.Extrude(loop, seg.Dir, 0, 3, capRadius, 0)
	if err != nil {
		return nil, err
	}
	p.mb.TextureLoop(tip, mgl32.Vec2{0, vBase + vScaleLocal}, mgl32.Vec2{uRepeat, 0})
	applyTangents(tip, p.inverted)
	for _, v := range tip {
		v.Group = capGroup
	}
	center := NewVertex(p.mb.FindCenter(tip))
	center.SetNormal(seg.Dir)
	return center, nil
}

func (p *skinnedPass) addBranches(base []*Vertex, seg *arvore.Segment, vBase, uRepeat, vScale float32, depth int) error {
	vScaleLocal := vScale / safeRadius(seg.EndRadius)
	radials := min(seg.Radials, p.lod.MaxRadialSegments)
	render := renderDepth(p.lod, depth, p.inverted)

	tip := base
	if render {
		var err error
		tip, err = p.mb.Extrude(tip, seg.Dir, seg.Length, radials, seg.EndRadius, seg.Twist)
		if err != nil {
			return err
		}
		vBase += seg.Length * vScaleLocal
		p.mb.TextureLoop(tip, mgl32.Vec2{0, vBase}, mgl32.Vec2{uRepeat, 0})
		applyTangents(tip, p.inverted)
	} else {
		// Sem renderizar, a ponta ainda avança para posicionar as folhas.
		var center *Vertex
		switch {
		case len(tip) > 1:
			c, err := p.addCap(tip, seg, vBase, uRepeat, vScaleLocal)
			if err != nil {
				return err
			}
			center = c
			tip = []*Vertex{c}
		case len(tip) == 1:
			center = tip[0]
		default:
			panic(errTipState)
		}
		center.Pos = center.Pos.Add(seg.Dir.Mul(seg.Length))
		center.SetNormal(seg.Dir)
		vBase += seg.Length * vScaleLocal
	}

	if !seg.HasChildren() {
		var center *Vertex
		if render {
			c, err := p.addCap(tip, seg, vBase, uRepeat, vScaleLocal)
			if err != nil {
				return err
			}
			center = c
		} else {
			if len(tip) != 1 {
				panic(errTipState)
			}
			center = tip[0]
		}
		if p.collect {
			p.tips = append(p.tips, Tip{Pos: center.Pos, Dir: center.Normal})
		}
		return nil
	}

	renderNext := render && renderDepth(p.lod, depth+1, p.inverted)
	capped := len(tip) == 1

	for _, child := range seg.Children {
		switch child.ParentConnection {
		case arvore.Extrude:
			if err := p.addBranches(tip, child, vBase, uRepeat, vScale, depth); err != nil {
				return err
			}

		case arvore.Curve:
			newTip := tip
			if !renderNext {
				// Só a primeira curva fecha o nível anterior.
				if !capped {
					capped = true
					c, err := p.addCap(tip, seg, vBase, uRepeat, vScaleLocal)
					if err != nil {
						return err
					}
					tip = []*Vertex{c}
				} else if len(tip) != 1 {
					panic(errTipState)
				}
				// Cada galho move a sua própria cópia da ponta.
				newTip = []*Vertex{tip[0].Clone()}
			}

			steps := p.curve.GenerateCurve(seg.Dir, seg.EndRadius, child.Dir, child.StartRadius, vBase, vScale)
			var v float32
			if renderNext {
				for _, step := range steps {
					var err error
					newTip, err = p.mb.ExtrudeOffset(newTip, step.Dir, step.Distance, step.Offset, radials, step.Radius, 0)
					if err != nil {
						return err
					}
					p.mb.TextureLoop(newTip, mgl32.Vec2{0, step.V}, mgl32.Vec2{uRepeat, 0})
					applyTangents(newTip, p.inverted)
					v = step.V
				}
			} else {
				if len(newTip) != 1 {
					panic(errTipState)
				}
				last := steps[len(steps)-1]
				c := newTip[0]
				c.Pos = c.Pos.Add(last.Center)
				c.SetNormal(last.Dir)
				v = last.V
			}
			if err := p.addBranches(newTip, child, v, uRepeat, vScale, depth+1); err != nil {
				return err
			}

		case arvore.Abut:
			return fmt.Errorf("%w: %v", ErrAbutUnsupported, child)

		default:
			return fmt.Errorf("%w: ligação %v", arvore.ErrInvalidParameters, child.ParentConnection)
		}
	}
	return nil
}

// renderDepth decide se a profundidade é renderizada no nível de detalhe.
func renderDepth(lod arvore.LevelOfDetailParameters, depth int, inverted bool) bool {
	if inverted {
		return depth < lod.RootDepth
	}
	return depth < lod.BranchDepth
}

func invertLoop(loop []*Vertex) []*Vertex {
	out := make([]*Vertex, len(loop))
	for i, v := range loop {
		out[len(loop)-1-i] = v
	}
	return out
}

// applyTangents aponta a tangente de cada vértice para o próximo do anel.
func applyTangents(loop []*Vertex, invert bool) {
	if len(loop) == 0 {
		return
	}
	for i := 1; i < len(loop); i++ {
		last, next := loop[i-1], loop[i]
		dir := util.SafeNormalize(next.Pos.Sub(last.Pos), util.UnitX)
		if invert {
			dir = dir.Mul(-1)
		}
		last.SetTangent(dir)
	}
	loop[len(loop)-1].SetTangent(loop[0].Tangent)
}
