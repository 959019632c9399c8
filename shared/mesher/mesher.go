// Package mesher gera árvores e malhas em goroutines de trabalho.
package mesher

import (
	"fmt"
	"log"
	"sync"
	"time"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/meshing"
)

// Request descreve uma árvore a gerar.
type Request struct {
	// Key identifica a requisição para deduplicação enquanto ela está pendente.
	Key    string
	ID     uint64
	Preset string
	Seed   int64
	Params *arvore.TreeParameters
	Levels []arvore.LevelOfDetailParameters
	// Owner é devolvido intacto no Result (ex.: a conexão que pediu).
	Owner any
}

// Result é a saída de uma Request.
type Result struct {
	Request Request
	Mesh    *meshing.Result
	Err     error
	Elapsed time.Duration
	Cached  bool
}

// TreeMesher distribui requisições entre vários workers.
type TreeMesher struct {
	requests    chan Request
	results     chan Result
	stop        chan struct{}
	stopOnce    sync.Once
	ResultStore *ResultStore
	pending     map[string]bool
	pendingMu   sync.Mutex
	wg          sync.WaitGroup
}

// NewTreeMesher cria e inicia um mesher com workers goroutines.
func NewTreeMesher(workers int, resultStore *ResultStore) *TreeMesher {
	if workers < 1 {
		workers = 1
	}
	m := &TreeMesher{
		requests:    make(chan Request, 256),
		results:     make(chan Result, 256),
		stop:        make(chan struct{}),
		ResultStore: resultStore,
		pending:     make(map[string]bool),
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// Enqueue tenta enfileirar sem bloquear. Retorna false se a mesma chave já
// estiver pendente ou se a fila estiver cheia.
func (m *TreeMesher) Enqueue(req Request) bool {
	if !m.markPending(req.Key) {
		return false
	}

	select {
	case m.requests <- req:
		return true
	default:
		// Se a fila estiver cheia, remove do pendente para tentar depois
		m.clearPending(req.Key)
		return false
	}
}

// Submit enfileira bloqueando até haver espaço. Retorna false se a chave já
// estiver pendente ou se o mesher tiver sido parado.
func (m *TreeMesher) Submit(req Request) bool {
	if !m.markPending(req.Key) {
		return false
	}
	select {
	case m.requests <- req:
		return true
	case <-m.stop:
		m.clearPending(req.Key)
		return false
	}
}

func (m *TreeMesher) markPending(key string) bool {
	if key == "" {
		return true
	}
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	if m.pending[key] {
		return false
	}
	m.pending[key] = true
	return true
}

func (m *TreeMesher) clearPending(key string) {
	if key == "" {
		return
	}
	m.pendingMu.Lock()
	delete(m.pending, key)
	m.pendingMu.Unlock()
}

// Results é o canal de saída. Precisa ser consumido para os workers não
// pararem; é fechado por Stop.
func (m *TreeMesher) Results() <-chan Result {
	return m.results
}

// Stop encerra os workers, espera todos terminarem e fecha Results.
func (m *TreeMesher) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()
		close(m.results)
	})
}

func (m *TreeMesher) worker() {
	defer m.wg.Done()
	pipeline := meshing.NewPipeline()
	for {
		select {
		case req := <-m.requests:
			res := m.process(pipeline, req)
			m.clearPending(req.Key)
			select {
			case m.results <- res:
			case <-m.stop:
				return
			}
		case <-m.stop:
			return
		}
	}
}

func (m *TreeMesher) process(pipeline *meshing.Pipeline, req Request) Result {
	var key string
	if m.ResultStore != nil {
		var err error
		key, err = CacheKey(req.Params, req.Seed, req.Levels)
		if err == nil {
			if cached, ok := m.ResultStore.Get(key); ok {
				return Result{Request: req, Mesh: cached, Cached: true}
			}
		}
	}

	start := time.Now()
	mesh, err := Generate(pipeline, req)
	res := Result{Request: req, Mesh: mesh, Err: err, Elapsed: time.Since(start)}
	if err == nil && key != "" {
		m.ResultStore.Store(key, mesh)
	}
	return res
}

// Generate roda o pipeline para uma requisição, convertendo pânicos em erro.
func Generate(pipeline *meshing.Pipeline, req Request) (res *meshing.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro no Mesher Worker (%s seed=%d): %v", req.Preset, req.Seed, r)
			res, err = nil, fmt.Errorf("pânico ao gerar árvore: %v", r)
		}
	}()
	if req.Params == nil {
		return nil, fmt.Errorf("%w: requisição sem parâmetros", arvore.ErrInvalidParameters)
	}
	return pipeline.GenerateWithSeed(req.Seed, req.Params, req.Levels)
}
