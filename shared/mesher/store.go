package mesher

import (
	"encoding/binary"
	"encoding/hex"
	"hash/fnv"
	"sync"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/meshing"
	"Arvoredo/shared/proto/arvnet"
)

// ResultStore armazena os resultados de meshing na RAM para evitar re-processamento.
// Ao passar de maxEntries, as entradas mais antigas saem primeiro.
type ResultStore struct {
	mu         sync.RWMutex
	results    map[string]*meshing.Result
	order      []string
	maxEntries int
}

// NewResultStore cria um novo repositório de resultados.
func NewResultStore(maxEntries int) *ResultStore {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &ResultStore{
		results:    make(map[string]*meshing.Result),
		maxEntries: maxEntries,
	}
}

// CacheKey resume parâmetros, semente e níveis numa chave estável.
func CacheKey(params *arvore.TreeParameters, seed int64, levels []arvore.LevelOfDetailParameters) (string, error) {
	if params == nil {
		return "", arvore.ErrInvalidParameters
	}
	p, err := arvnet.EncodeParams(params)
	if err != nil {
		return "", err
	}
	l, err := arvnet.EncodeLevels(levels)
	if err != nil {
		return "", err
	}
	h := fnv.New128a()
	h.Write(p)
	h.Write([]byte{0})
	h.Write(l)
	var s [8]byte
	binary.LittleEndian.PutUint64(s[:], uint64(seed))
	h.Write(s[:])
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retorna uma cópia do resultado guardado.
func (s *ResultStore) Get(key string) (*meshing.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.results[key]
	if !ok {
		return nil, false
	}
	// Retornamos um clone para evitar que modificações externas afetem o cache
	return cloneResult(res), true
}

// Store salva um resultado no repositório.
func (s *ResultStore) Store(key string, res *meshing.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[key]; !ok {
		s.order = append(s.order, key)
	}
	s.results[key] = cloneResult(res)
	for len(s.order) > s.maxEntries {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
}

// Len retorna o número de resultados guardados.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Clear limpa todo o cache de resultados.
func (s *ResultStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[string]*meshing.Result)
	s.order = nil
}

// cloneResult copia as geometrias; a árvore é imutável depois de gerada.
func cloneResult(r *meshing.Result) *meshing.Result {
	out := &meshing.Result{Tree: r.Tree, Levels: make([]meshing.LodMesh, len(r.Levels))}
	if r.Skeleton != nil {
		out.Skeleton = r.Skeleton.Clone()
	}
	for i, lm := range r.Levels {
		if lm.Geometry != nil {
			lm.Geometry = lm.Geometry.Clone()
		}
		if lm.Leaves != nil {
			lm.Leaves = lm.Leaves.Clone()
		}
		lm.Tips = append([]meshing.Tip(nil), lm.Tips...)
		out.Levels[i] = lm
	}
	return out
}
