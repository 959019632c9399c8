package arvore

import (
	"fmt"
	"math"
	"sort"
)

// ReductionType é a estratégia de simplificação de um nível de detalhe.
type ReductionType int

const (
	ReductionNone ReductionType = iota
	ReductionFlatPoly
	ReductionImpostor
)

var reductionNames = map[ReductionType]string{
	ReductionNone:     "None",
	ReductionFlatPoly: "Flat-poly",
	ReductionImpostor: "Impostor",
}

func (r ReductionType) String() string {
	if name, ok := reductionNames[r]; ok {
		return name
	}
	return fmt.Sprintf("ReductionType(%d)", int(r))
}

// ParseReduction aceita o nome de exibição ("Flat-poly") ou o identificador ("FlatPoly", "Normal").
func ParseReduction(name string) (ReductionType, error) {
	switch name {
	case "None", "Normal", "":
		return ReductionNone, nil
	case "Flat-poly", "FlatPoly":
		return ReductionFlatPoly, nil
	case "Impostor":
		return ReductionImpostor, nil
	}
	return ReductionNone, fmt.Errorf("%w: redução desconhecida %q", ErrInvalidParameters, name)
}

// LevelOfDetailParameters define um nível de detalhe. Só leitura para os geradores de malha.
type LevelOfDetailParameters struct {
	Distance          float32
	Reduction         ReductionType
	BranchDepth       int
	RootDepth         int
	MaxRadialSegments int
}

// NewLevelOfDetail retorna o nível padrão: sem redução, profundidade ilimitada, 6 radiais.
func NewLevelOfDetail() LevelOfDetailParameters {
	return LevelOfDetailParameters{
		Reduction:         ReductionNone,
		BranchDepth:       math.MaxInt32,
		RootDepth:         math.MaxInt32,
		MaxRadialSegments: 6,
	}
}

func (l LevelOfDetailParameters) String() string {
	return fmt.Sprintf("LOD[distance=%g, reduction=%s, branchDepth=%d, rootDepth=%d]",
		l.Distance, l.Reduction, l.BranchDepth, l.RootDepth)
}

// SelectLevel retorna o índice do nível cuja distância é a maior que não
// ultrapassa distance. Abaixo de todos os limiares, o nível mais próximo vence.
// Retorna -1 se levels estiver vazio.
func SelectLevel(levels []LevelOfDetailParameters, distance float32) int {
	if len(levels) == 0 {
		return -1
	}
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return levels[order[a]].Distance < levels[order[b]].Distance
	})
	best := order[0]
	for _, i := range order {
		if levels[i].Distance <= distance {
			best = i
		}
	}
	return best
}
