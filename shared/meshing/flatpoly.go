package meshing

import (
	"fmt"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// FlatPolyGenerator gera quads achatados (billboards orientados por eixo)
// por segmento. Cada par de vértices gira em torno do eixo guardado na
// normal; o tamanho vai no canal Sizes.
type FlatPolyGenerator struct {
	Curve *CurveGenerator
}

// NewFlatPolyGenerator usa DefaultCurveGenerator.
func NewFlatPolyGenerator() *FlatPolyGenerator {
	return &FlatPolyGenerator{Curve: DefaultCurveGenerator}
}

// Generate gera a malha flat-poly e as pontas do tronco. A geometria é nil
// quando nenhuma profundidade é renderizada; as pontas continuam válidas.
func (g *FlatPolyGenerator) Generate(tree *arvore.Tree, lod arvore.LevelOfDetailParameters, yOffset, uRepeat, vScale float32) (*Geometry, []Tip, error) {
	trunk := tree.Trunk()
	if trunk == nil {
		return nil, nil, fmt.Errorf("%w: árvore sem tronco", arvore.ErrInvalidParameters)
	}
	mb := NewMeshBuilder()
	center := mgl32.Vec3{0, yOffset, 0}

	// Weight é usado como tamanho; este gerador não suaviza normais.
	r := trunk.StartRadius
	base1 := mb.CreateVertexUV(center.Sub(mgl32.Vec3{r, 0, 0}), mgl32.Vec2{0, 0}, 0, NoWeld)
	base1.SetNormal(util.UnitY)
	base1.Weight = r
	base2 := mb.CreateVertexUV(center.Add(mgl32.Vec3{r, 0, 0}), mgl32.Vec2{uRepeat * 0.5, 0}, 0, NoWeld)
	base2.SetNormal(util.UnitY)
	base2.Weight = r

	curve := g.Curve
	if curve == nil {
		curve = DefaultCurveGenerator
	}
	p := &flatPass{mb: mb, lod: lod, curve: curve, uRepeat: uRepeat}
	for i, seg := range tree.Segments() {
		if seg == nil {
			continue
		}
		var err error
		if i == arvore.RootsIndex {
			p.inverted, p.collect = true, false
			err = p.renderSegment(center, base1, base2, seg, 0, -vScale, 0)
		} else {
			p.inverted, p.collect = false, true
			err = p.renderSegment(center, base1, base2, seg, 0, vScale, 0)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	geom := mb.Build()
	if geom != nil {
		geom.Sizes = mb.Weights()
	}
	return geom, p.tips, nil
}

type flatPass struct {
	mb       *MeshBuilder
	lod      arvore.LevelOfDetailParameters
	curve    *CurveGenerator
	uRepeat  float32
	tips     []Tip
	collect  bool
	inverted bool
}

func (p *flatPass) renderSegment(center mgl32.Vec3, base1, base2 *Vertex, seg *arvore.Segment, vBase, vScale float32, depth int) error {
	next := center.Add(seg.Dir.Mul(seg.Length))
	vScaleLocal := vScale / safeRadius(seg.EndRadius)
	vBase += seg.Length * vScaleLocal

	var tip1, tip2 *Vertex
	render := renderDepth(p.lod, depth, p.inverted)
	if render && base1 != nil && base2 != nil {
		// Uma extrusão seguinte define a direção média da ponta.
		tipDir := seg.Dir
		for _, child := range seg.Children {
			if child.ParentConnection == arvore.Extrude {
				tipDir = util.SafeNormalize(seg.Dir.Add(child.Dir).Mul(0.5), seg.Dir)
				break
			}
		}

		r := seg.EndRadius
		tip1 = p.mb.CreateVertexUV(next.Sub(mgl32.Vec3{r, 0, 0}), mgl32.Vec2{0, vBase}, 0, NoWeld)
		tip1.Weight = r
		tip2 = p.mb.CreateVertexUV(next.Add(mgl32.Vec3{r, 0, 0}), mgl32.Vec2{p.uRepeat * 0.5, vBase}, 0, NoWeld)
		tip2.Weight = r

		if !p.inverted {
			tip1.SetNormal(tipDir)
			tip2.SetNormal(tipDir)
			p.mb.AddTriangle(base1, base2, tip2)
			p.mb.AddTriangle(base1, tip2, tip1)
		} else {
			// Crescendo para baixo: ordem invertida.
			p.mb.AddTriangle(tip1, tip2, base2)
			p.mb.AddTriangle(tip1, base2, base1)
			tip1.SetNormal(tipDir.Mul(-1))
			tip2.SetNormal(tipDir.Mul(-1))
		}
	}

	if !seg.HasChildren() {
		if p.collect {
			p.tips = append(p.tips, Tip{Pos: next, Dir: seg.Dir})
		}
		return nil
	}

	renderNext := render && renderDepth(p.lod, depth+1, p.inverted)
	for _, child := range seg.Children {
		switch child.ParentConnection {
		case arvore.Extrude:
			if err := p.renderSegment(next, tip1, tip2, child, vBase, vScale, depth); err != nil {
				return err
			}

		case arvore.Curve:
			// Curvas começam uma cadeia nova; não há como orientar a junção
			// para vários galhos ao mesmo tempo.
			steps := p.curve.GenerateCurve(seg.Dir, seg.EndRadius, child.Dir, child.StartRadius, vBase, vScale)
			last := steps[len(steps)-1]
			childCenter := next.Add(last.Center)
			v := last.V
			if !renderNext {
				if err := p.renderSegment(childCenter, nil, nil, child, v, vScale, depth+1); err != nil {
					return err
				}
				continue
			}

			r := child.StartRadius
			cBase1 := p.mb.CreateVertexUV(childCenter.Sub(mgl32.Vec3{r, 0, 0}), mgl32.Vec2{0, v}, 0, NoWeld)
			cBase1.Weight = r
			cBase2 := p.mb.CreateVertexUV(childCenter.Add(mgl32.Vec3{r, 0, 0}), mgl32.Vec2{p.uRepeat * 0.5, v}, 0, NoWeld)
			cBase2.Weight = r
			normal := child.Dir
			if p.inverted {
				normal = normal.Mul(-1)
			}
			cBase1.SetNormal(normal)
			cBase2.SetNormal(normal)
			if err := p.renderSegment(childCenter, cBase1, cBase2, child, v, vScale, depth+1); err != nil {
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
