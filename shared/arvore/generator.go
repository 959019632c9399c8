package arvore

import (
	"fmt"
	"log"
	"math"

	"Arvoredo/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// Debug habilita logs de geração.
var Debug = false

const (
	// variationScale converte segmentVariation² em ângulo máximo de desvio.
	variationScale = 3.14
	// maxGravity fica um pouco abaixo de 180° para evitar reversão total.
	maxGravity = math.Pi / 2 * 1.95
	// maxBendAngle limita o desvio aleatório por parte.
	maxBendAngle = math.Pi / 2 * 0.33 * 0.5
	// minRadius evita divisões por zero com raio nulo.
	minRadius = 1e-4
	// minTaper evita inverter taper nulo.
	minTaper = 1e-3
)

// GenerateFromParameters gera a árvore com raio, alturas e semente dos próprios parâmetros.
func GenerateFromParameters(params *TreeParameters) (*Tree, error) {
	return GenerateWithSeed(params.Seed, params)
}

// GenerateWithSeed gera a árvore com a semente informada.
func GenerateWithSeed(seed int64, params *TreeParameters) (*Tree, error) {
	scale := params.BaseScale
	return GenerateTree(params.TrunkRadius*scale, params.TrunkHeight*scale, params.RootHeight*scale, seed, params)
}

// GenerateTree gera o esqueleto. O resultado é determinístico para a mesma
// semente e parâmetros: o fluxo aleatório é consumido em profundidade, da
// esquerda para a direita, tronco antes das raízes, três valores por parte
// com variação.
func GenerateTree(radius, trunkHeight, rootHeight float32, seed int64, params *TreeParameters) (*Tree, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: parâmetros nulos", ErrInvalidParameters)
	}
	branches := params.EffectiveBranches()
	if len(branches) == 0 || params.Branches[0].Inherit {
		return nil, fmt.Errorf("%w: o nível 0 do tronco deve estar habilitado e não herdado", ErrInvalidParameters)
	}

	rng := util.NewRNG(seed)
	uRepeat := float32(params.TextureURepeat)
	vScale := params.TextureVScale

	tree := &Tree{}
	trunk := &branchContext{rng: rng, levels: branches, uRepeat: uRepeat, vScaleTree: vScale}
	// A parte do tronco que fica na altura das raízes não é desenhada, mas os
	// galhos ainda escalam pela altura total.
	trunkSeg, err := trunk.createBranch(0, util.FromAngles(-math.Pi/2, 0, 0), radius, trunkHeight, rootHeight, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("tronco: %w", err)
	}
	tree.SetTrunk(trunkSeg)

	roots := params.EffectiveRoots()
	if len(roots) > 0 {
		rc := &branchContext{rng: rng, levels: roots, uRepeat: uRepeat, vScaleTree: -vScale, downward: true}
		rootSeg, err := rc.createBranch(0, util.FromAngles(math.Pi/2, 0, 0), radius, rootHeight, 0, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("raízes: %w", err)
		}
		tree.SetRoots(rootSeg)
	}

	if Debug {
		log.Printf("[Gerador] Árvore gerada (semente %d): %d segmentos, %d pontas", seed, tree.Count(), tree.LeafCount(TrunkIndex))
	}
	return tree, nil
}

// branchContext carrega o estado de uma chamada de geração. O RNG é
// compartilhado entre tronco e raízes para manter a ordem de consumo.
type branchContext struct {
	rng        *util.RNG
	levels     []*BranchParameters
	uRepeat    float32
	vScaleTree float32
	downward   bool
}

func (c *branchContext) createBranch(depth int, rotation mgl32.Quat, radius, length, lengthOffset, baseAngle, vBase float32) (*Segment, error) {
	if depth >= len(c.levels) {
		return nil, fmt.Errorf("%w: profundidade %d com %d níveis", ErrDepthExceeded, depth, len(c.levels))
	}
	parms := c.levels[depth]
	radials := max(3, parms.RadialSegments)

	result := NewSegment()
	result.Dir = rotation.Rotate(util.UnitZ)
	result.StartRadius = radius
	result.UScale = c.uRepeat
	result.VStart = vBase
	result.Radials = radials

	safeRadius := max(radius, minRadius)
	vScale := c.vScaleTree / safeRadius
	variation := parms.SegmentVariation * parms.SegmentVariation * variationScale
	effectiveGravity := parms.Gravity * maxGravity
	effectiveLength := max(0, length-lengthOffset)

	// Nas raízes o primeiro nível cresce para baixo: o taper é invertido.
	effectiveTaper := parms.Taper
	if c.downward && depth == 0 {
		effectiveTaper = 1 / max(parms.Taper, minTaper)
	}

	originalRotation := rotation
	tip := result

	if effectiveLength <= 0 {
		result.Length = 0
		result.EndRadius = radius
		result.VEnd = vBase
	} else {
		segs := max(1, parms.LengthSegments)
		n := float32(segs)
		lengthPart := effectiveLength / n
		taperPart := (1 - effectiveTaper) / n
		twistPart := parms.Twist / n
		gravityPart := effectiveGravity / n

		angleLimit := util.Asin(lengthPart / (2 * safeRadius * max(effectiveTaper, minTaper)))
		angleLimit = min(angleLimit, maxBendAngle)

		down := mgl32.Vec3{0, -1, 0}
		for i := 0; i < segs; i++ {
			index := float32(i + 1)

			// Gravidade: gira em torno do eixo perpendicular à direção e ao
			// "baixo" local, proporcional ao quanto o galho não é vertical.
			localDown := originalRotation.Inverse().Rotate(down)
			downAmount := 1 - util.Abs(util.UnitZ.Dot(localDown))
			if gravityPart != 0 && downAmount > 1e-6 {
				side := util.UnitZ.Cross(localDown)
				if side.Len() > 1e-6 {
					originalRotation = originalRotation.Mul(util.FromAngleAxis(gravityPart*downAmount, side))
				}
			}
			tip.Dir = originalRotation.Rotate(util.UnitZ)

			if variation != 0 {
				x := c.rng.Symmetric(variation)
				y := c.rng.Symmetric(variation)
				_ = c.rng.Symmetric(variation) // z: mantém a ordem do fluxo
				x = util.Clamp(x, -angleLimit, angleLimit)
				y = util.Clamp(y, -angleLimit, angleLimit)
				tip.Dir = originalRotation.Mul(util.FromAngles(y, x, 0)).Rotate(util.UnitZ)
			}

			tip.EndRadius = radius * (1 - taperPart*index)
			tip.VEnd = vBase + index*lengthPart*vScale
			tip.Length = lengthPart
			tip.Radials = radials
			tip.Twist = twistPart

			if i+1 < segs {
				tip = tip.Extend(Extrude)
			}
		}
	}

	if depth+1 >= len(c.levels) {
		return result, nil
	}

	rotation = originalRotation
	vBase += effectiveLength * vScale

	joints := max(0, parms.SideJointCount)
	childCount := joints
	if parms.HasEndJoint {
		childCount++
	}
	if childCount == 0 {
		return result, nil
	}

	// Divide a área da seção do pai entre os galhos laterais.
	divisor := float32(max(2, joints))
	area := math.Pi * radius * radius / divisor
	branchRadius := parms.RadiusScale * util.Sqrt(area / math.Pi)
	branchLength := parms.LengthScale * length
	tilt := float32(math.Pi/2) - parms.Inclination
	startAngle := parms.SideJointStartAngle + parms.Twist + baseAngle

	tip.Children = make([]*Segment, 0, childCount)
	if joints > 0 {
		delta := float32(2*math.Pi) / float32(joints)
		for j := 0; j < joints; j++ {
			jointAngle := startAngle + delta*float32(j)
			branchRotation := rotation.Mul(util.FromAngles(0, 0, jointAngle)).Mul(util.FromAngles(tilt, 0, 0))
			child, err := c.createBranch(depth+1, branchRotation, branchRadius, branchLength, 0, 0, vBase)
			if err != nil {
				return nil, err
			}
			child.ParentConnection = Curve
			tip.Children = append(tip.Children, child)
		}
	}
	if parms.HasEndJoint {
		child, err := c.createBranch(depth+1, rotation, tip.EndRadius, length*parms.Taper, 0,
			baseAngle+parms.Twist+parms.TipRotation, vBase)
		if err != nil {
			return nil, err
		}
		child.ParentConnection = Curve
		tip.Children = append(tip.Children, child)
	}
	return result, nil
}
