package main

import (
	"fmt"
	"strconv"
	"strings"

	"Arvoredo/shared/util"
)

// maxSeeds limita o tamanho de um intervalo para evitar lotes acidentais enormes.
const maxSeeds = 100000

// parseSeeds interpreta uma lista como "1-10,42,7". Sementes repetidas são
// descartadas mantendo a ordem da primeira ocorrência.
func parseSeeds(list string) ([]int64, error) {
	q := util.NewUniqueQueue[int64, int64]()
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		// hi-lo estoura int64 quando os extremos têm sinais opostos e são grandes.
		span := uint64(hi) - uint64(lo)
		if span >= maxSeeds {
			return nil, fmt.Errorf("intervalo %q muito grande (máximo %d sementes)", part, maxSeeds)
		}
		for k := uint64(0); k <= span; k++ {
			s := lo + int64(k)
			q.Enqueue(s, s)
		}
		if q.Len() > maxSeeds {
			return nil, fmt.Errorf("mais de %d sementes", maxSeeds)
		}
	}
	seeds := q.Drain()
	if len(seeds) == 0 {
		return nil, fmt.Errorf("nenhuma semente em %q", list)
	}
	return seeds, nil
}

// parseRange aceita "n", "a-b" e números negativos ("-5", "-5--1").
func parseRange(part string) (int64, int64, error) {
	sep := strings.Index(part[1:], "-")
	if sep < 0 {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("semente inválida %q", part)
		}
		return v, v, nil
	}
	sep++
	lo, err := strconv.ParseInt(strings.TrimSpace(part[:sep]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("início de intervalo inválido %q", part)
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(part[sep+1:]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("fim de intervalo inválido %q", part)
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("intervalo invertido %q", part)
	}
	return lo, hi, nil
}

// sequentialSeeds gera count sementes a partir de start.
func sequentialSeeds(start int64, count int) []int64 {
	seeds := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		seeds = append(seeds, start+int64(i))
	}
	return seeds
}
