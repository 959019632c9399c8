package presets

import (
	"math"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/proto/arvnet"
)

// DefaultName é o preset usado quando nenhum é informado.
const DefaultName = "padrao"

// Defaults retorna os presets embutidos.
func Defaults() []arvnet.Preset {
	return []arvnet.Preset{
		{Name: DefaultName, Params: arvore.NewTreeParameters(arvore.DefaultDepth)},
		{Name: "arbusto", Params: shrub()},
		{Name: "salgueiro", Params: willow()},
		{Name: "tronco-seco", Params: deadTrunk()},
	}
}

// shrub: tronco curto com muitos galhos laterais e sem raízes.
func shrub() *arvore.TreeParameters {
	tp := arvore.NewTreeParameters(3)
	tp.TrunkHeight = 0.6
	tp.TrunkRadius = 0.08
	tp.Branches[0].SideJointCount = 6
	tp.Branches[0].Inclination = 0.9
	tp.Branches[1].Inherit = false
	tp.Branches[1].LengthScale = 0.8
	for _, r := range tp.Roots {
		r.Enabled = false
	}
	tp.GenerateLeaves = true
	tp.LeafScale = 0.6
	return tp
}

// willow: galhos longos que pendem com a gravidade.
func willow() *arvore.TreeParameters {
	tp := arvore.NewTreeParameters(arvore.DefaultDepth)
	tp.TrunkHeight = 2.4
	// Os níveis seguintes herdam deste.
	b := tp.Branches[1]
	b.Inherit = false
	b.Gravity = 0.35
	b.LengthScale = 0.9
	b.LengthSegments = 6
	tp.GenerateLeaves = true
	return tp
}

// deadTrunk: um único tronco torcido, sem filhos.
func deadTrunk() *arvore.TreeParameters {
	tp := arvore.NewTreeParameters(1)
	b := tp.Branches[0]
	b.SideJointCount = 0
	b.HasEndJoint = false
	b.Twist = math.Pi / 8
	b.SegmentVariation = 0.6
	b.LengthSegments = 5
	return tp
}
