package meshing

import (
	"math"

	"Arvoredo/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// CurveStep é um passo da transição entre a ponta de um segmento e o início
// de um filho com outra orientação e outro raio.
type CurveStep struct {
	Dir      mgl32.Vec3
	Distance float32
	Radius   float32
	// Center é o deslocamento acumulado desde o início da curva.
	Center mgl32.Vec3
	// Offset é aplicado ao anel depois da conexão (hoje sempre zero).
	Offset mgl32.Vec3
	// V é a coordenada de textura acumulada no fim do passo.
	V float32
}

// CurveGenerator divide a mudança de direção em cantos de no máximo MinAngle.
type CurveGenerator struct {
	MinAngle float32
	// MinSlope é a inclinação mínima (comprimento por variação de raio) de cada canto.
	MinSlope float32
	// TravelFactor multiplica a estimativa geométrica de distância por canto.
	TravelFactor float32
}

// DefaultCurveGenerator usa cantos de 15° e inclinação mínima 5:1.
var DefaultCurveGenerator = &CurveGenerator{
	MinAngle:     mgl32.DegToRad(15),
	MinSlope:     5,
	TravelFactor: 1.4,
}

// parallelDot é o limiar a partir do qual as direções são tratadas como iguais.
const parallelDot = 1 - 1e-6

// GenerateCurve calcula os passos de startDir/startRadius até endDir/endRadius.
// Sempre retorna ao menos um passo; v é a coordenada V inicial.
func (c *CurveGenerator) GenerateCurve(startDir mgl32.Vec3, startRadius float32, endDir mgl32.Vec3, endRadius float32, v, vScale float32) []CurveStep {
	vScaleLocal := vScale / safeRadius(startRadius)

	dot := util.Clamp(startDir.Dot(endDir), -1, 1)
	tiltAngle := util.Acos(dot)

	corners := max(1, int(math.Ceil(float64(tiltAngle/c.MinAngle))))
	n := float32(corners)

	radiusGap := util.Abs(endRadius - startRadius)
	minDist := c.MinSlope * (radiusGap / n) * dot
	angleDelta := tiltAngle / n
	radiusPart := (startRadius - endRadius) / n
	vNextScale := vScale / safeRadius(endRadius)
	vScalePart := (vScaleLocal - vNextScale) / n

	var q1, q2 mgl32.Quat
	degenerate := dot >= parallelDot
	if !degenerate {
		left := startDir.Cross(endDir)
		if left.Len() < 1e-6 {
			// Direções opostas: qualquer eixo perpendicular serve.
			left = perpendicular(startDir)
		}
		left = left.Normalize()
		q1 = util.FromAxes(left, startDir.Cross(left), startDir)
		q2 = util.FromAxes(left, endDir.Cross(left), endDir)
		// QuatSlerp não escolhe o caminho mais curto sozinho.
		if q1.Dot(q2) < 0 {
			q2 = q2.Scale(-1)
		}
	}

	dist := max(startRadius*util.Sin(angleDelta)*c.TravelFactor, minDist)

	steps := make([]CurveStep, corners)
	var center mgl32.Vec3
	for i := 0; i < corners; i++ {
		k := float32(i + 1)
		r := startRadius - radiusPart*k

		dir := endDir
		if !degenerate {
			dir = mgl32.QuatSlerp(q1, q2, k/n).Rotate(util.UnitZ)
		}

		v += dist * (vScaleLocal - vScalePart*k)
		center = center.Add(dir.Mul(dist))
		steps[i] = CurveStep{Dir: dir, Distance: dist, Radius: r, Center: center, V: v}
	}
	return steps
}

func safeRadius(r float32) float32 {
	if util.Abs(r) < 1e-6 {
		if r < 0 {
			return -1e-6
		}
		return 1e-6
	}
	return r
}
