package util

import "math/rand/v2"

// RNG é um invólucro fino sobre math/rand/v2 com semente determinística.
// O gerador de árvores recebe o RNG explicitamente em cada chamada recursiva;
// a ordem de consumo faz parte do contrato de reprodutibilidade.
type RNG struct {
	r *rand.Rand
}

// NewRNG cria um RNG determinístico a partir da semente.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float32 retorna um valor em [0, 1).
func (r *RNG) Float32() float32 {
	return r.r.Float32()
}

// Symmetric retorna um valor em [-magnitude, magnitude).
func (r *RNG) Symmetric(magnitude float32) float32 {
	return r.Float32()*(magnitude*2) - magnitude
}
