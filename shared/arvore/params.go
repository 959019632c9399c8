package arvore

// BranchParameters são os controles de geração de um nível de profundidade.
// Ângulos em radianos.
type BranchParameters struct {
	Enabled             bool
	Inherit             bool
	RadiusScale         float32
	LengthScale         float32
	RadialSegments      int
	LengthSegments      int
	Taper               float32
	Inclination         float32
	Twist               float32
	TipRotation         float32
	SegmentVariation    float32
	Gravity             float32
	HasEndJoint         bool
	SideJointCount      int
	SideJointStartAngle float32
}

// NewBranchParameters retorna um nível com os valores padrão.
func NewBranchParameters() *BranchParameters {
	return &BranchParameters{
		Enabled:          true,
		Inherit:          true,
		RadiusScale:      1,
		LengthScale:      0.6,
		RadialSegments:   6,
		LengthSegments:   4,
		Taper:            0.7,
		SegmentVariation: 0.4,
		Gravity:          0.1,
		SideJointCount:   4,
		Inclination:      0.872,
	}
}

// Clone retorna uma cópia independente.
func (p *BranchParameters) Clone() *BranchParameters {
	c := *p
	return &c
}

// DefaultDepth é o número de níveis criado por NewTreeParameters(0).
const DefaultDepth = 4

// TreeParameters agrupa os níveis do tronco e das raízes e os controles globais.
type TreeParameters struct {
	Branches []*BranchParameters
	Roots    []*BranchParameters

	BaseScale      float32
	TrunkRadius    float32
	TrunkHeight    float32
	RootHeight     float32
	TextureURepeat int
	TextureVScale  float32
	LeafScale      float32
	GenerateLeaves bool
	Seed           int64
}

// NewTreeParameters cria parâmetros com depth níveis (DefaultDepth se depth <= 0).
// Níveis acima de 3 ficam desabilitados; as raízes recebem uma configuração própria.
func NewTreeParameters(depth int) *TreeParameters {
	if depth <= 0 {
		depth = DefaultDepth
	}
	tp := &TreeParameters{
		BaseScale:      1,
		TrunkRadius:    0.5 * 0.3,
		TrunkHeight:    6 * 0.3,
		RootHeight:     1 * 0.3,
		TextureURepeat: 4,
		TextureVScale:  0.45,
		LeafScale:      1,
	}

	tp.Branches = make([]*BranchParameters, depth)
	for i := range tp.Branches {
		tp.Branches[i] = NewBranchParameters()
		if i > 3 {
			tp.Branches[i].Enabled = false
		}
	}
	tp.Branches[0].Inherit = false

	tp.Roots = make([]*BranchParameters, depth)
	for i := range tp.Roots {
		tp.Roots[i] = NewBranchParameters()
		tp.Roots[i].Enabled = false
	}
	r0 := tp.Roots[0]
	r0.Inherit = false
	r0.LengthSegments = 1
	r0.SegmentVariation = 0
	r0.Taper = 1
	r0.SideJointCount = 5
	r0.Inclination = 0.5
	r0.LengthScale = 1.1
	r0.Enabled = true

	if depth > 1 {
		r1 := tp.Roots[1]
		r1.Inherit = false
		r1.Taper = 0.5
		r1.Gravity = 0.1
		r1.LengthScale = 1.0
		r1.Enabled = true
	}
	if depth > 2 {
		tp.Roots[2].Enabled = true
	}
	return tp
}

// Depth retorna o número de níveis do tronco.
func (tp *TreeParameters) Depth() int {
	return len(tp.Branches)
}

// Clone retorna uma cópia profunda.
func (tp *TreeParameters) Clone() *TreeParameters {
	c := *tp
	c.Branches = cloneLevels(tp.Branches)
	c.Roots = cloneLevels(tp.Roots)
	return &c
}

func cloneLevels(levels []*BranchParameters) []*BranchParameters {
	out := make([]*BranchParameters, len(levels))
	for i, l := range levels {
		if l != nil {
			out[i] = l.Clone()
		}
	}
	return out
}

// EffectiveBranches retorna a visão efetiva dos níveis do tronco.
func (tp *TreeParameters) EffectiveBranches() []*BranchParameters {
	return effectiveLevels(tp.Branches)
}

// EffectiveRoots retorna a visão efetiva dos níveis das raízes.
func (tp *TreeParameters) EffectiveRoots() []*BranchParameters {
	return effectiveLevels(tp.Roots)
}

// effectiveLevels para no primeiro nível desabilitado. Níveis com Inherit
// reutilizam o último nível concreto; o nível 0 herda de si mesmo.
func effectiveLevels(levels []*BranchParameters) []*BranchParameters {
	if len(levels) == 0 {
		return nil
	}
	var result []*BranchParameters
	last := levels[0]
	for _, p := range levels {
		if p == nil || !p.Enabled {
			break
		}
		if p.Inherit {
			result = append(result, last)
			continue
		}
		last = p
		result = append(result, p)
	}
	return result
}
