package util

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Eixos canônicos usados pelo gerador e pelo construtor de malhas.
var (
	UnitX = mgl32.Vec3{1, 0, 0}
	UnitY = mgl32.Vec3{0, 1, 0}
	UnitZ = mgl32.Vec3{0, 0, 1}
)

// Lerp realiza interpolação linear entre dois floats.
func Lerp(start, end, amount float32) float32 {
	return start + amount*(end-start)
}

// Clamp limita v ao intervalo [low, high].
func Clamp(v, low, high float32) float32 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// Abs retorna o valor absoluto de um float32.
func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Sqrt em float32.
func Sqrt(v float32) float32 { return float32(math.Sqrt(float64(v))) }

// Sin e Cos em float32 (evita conversões espalhadas pelo código).
func Sin(a float32) float32 { return float32(math.Sin(float64(a))) }
func Cos(a float32) float32 { return float32(math.Cos(float64(a))) }

// Acos protegido contra erros de arredondamento fora de [-1, 1].
func Acos(v float32) float32 {
	return float32(math.Acos(float64(Clamp(v, -1, 1))))
}

// Asin protegido contra erros de arredondamento fora de [-1, 1].
func Asin(v float32) float32 {
	return float32(math.Asin(float64(Clamp(v, -1, 1))))
}

// FromAngles monta um quaternion a partir de ângulos em radianos nos eixos
// X, Y e Z. A composição é Y * Z * X, a mesma ordem usada pelas cenas
// exportadas para o visualizador.
func FromAngles(x, y, z float32) mgl32.Quat {
	qy := mgl32.QuatRotate(y, UnitY)
	qz := mgl32.QuatRotate(z, UnitZ)
	qx := mgl32.QuatRotate(x, UnitX)
	return qy.Mul(qz).Mul(qx)
}

// FromAngleAxis cria uma rotação de angle radianos em torno de axis (normalizado aqui).
func FromAngleAxis(angle float32, axis mgl32.Vec3) mgl32.Quat {
	return mgl32.QuatRotate(angle, axis.Normalize())
}

// FromAxes cria a rotação cujas colunas são os eixos locais x, y e z.
func FromAxes(x, y, z mgl32.Vec3) mgl32.Quat {
	m := mgl32.Mat3FromCols(x, y, z)
	return mgl32.Mat4ToQuat(m.Mat4()).Normalize()
}

// SafeNormalize normaliza v; vetores nulos retornam fallback.
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(float64(l)) {
		return fallback
	}
	return v.Mul(1 / l)
}
