package mesher

import (
	"errors"
	"testing"
	"time"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/meshing"
)

func testRequest(key string, seed int64) Request {
	return Request{
		Key:    key,
		Seed:   seed,
		Params: arvore.NewTreeParameters(3),
		Levels: []arvore.LevelOfDetailParameters{arvore.NewLevelOfDetail()},
	}
}

func waitResult(t *testing.T, m *TreeMesher) Result {
	t.Helper()
	select {
	case res, ok := <-m.Results():
		if !ok {
			t.Fatal("Results fechado")
		}
		return res
	case <-time.After(10 * time.Second):
		t.Fatal("timeout esperando resultado")
	}
	return Result{}
}

func TestTreeMesherGenerates(t *testing.T) {
	m := NewTreeMesher(2, nil)
	defer m.Stop()

	if !m.Enqueue(testRequest("a", 1)) {
		t.Fatal("Enqueue recusou requisição nova")
	}
	res := waitResult(t, m)
	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if res.Request.Key != "a" || res.Mesh == nil || len(res.Mesh.Levels) != 1 {
		t.Errorf("resultado inesperado: %+v", res)
	}
	if res.Mesh.Levels[0].Geometry.TriangleCount() == 0 {
		t.Error("malha sem triângulos")
	}
}

func TestTreeMesherDedup(t *testing.T) {
	// Sem workers, as requisições ficam paradas na fila.
	m := &TreeMesher{
		requests: make(chan Request, 1),
		results:  make(chan Result, 1),
		stop:     make(chan struct{}),
		pending:  make(map[string]bool),
	}
	defer m.Stop()

	if !m.Enqueue(testRequest("x", 1)) {
		t.Fatal("primeira requisição recusada")
	}
	if m.Enqueue(testRequest("x", 2)) {
		t.Error("chave pendente aceita duas vezes")
	}
	if m.Enqueue(testRequest("y", 1)) {
		t.Error("fila cheia aceitou requisição")
	}
	if m.pending["y"] {
		t.Error("requisição recusada ficou pendente")
	}

	m.wg.Add(1)
	go m.worker()
	if res := waitResult(t, m); res.Request.Seed != 1 {
		t.Errorf("Seed = %d", res.Request.Seed)
	}

	// Depois de entregue, a chave pode voltar.
	if !m.Enqueue(testRequest("x", 3)) {
		t.Fatal("chave continuou pendente")
	}
	if res := waitResult(t, m); res.Request.Seed != 3 {
		t.Errorf("Seed = %d", res.Request.Seed)
	}
}

func TestTreeMesherCache(t *testing.T) {
	store := NewResultStore(4)
	m := NewTreeMesher(1, store)
	defer m.Stop()

	m.Submit(testRequest("", 7))
	first := waitResult(t, m)
	if first.Cached || first.Err != nil {
		t.Fatalf("primeiro resultado: cached=%v err=%v", first.Cached, first.Err)
	}
	m.Submit(testRequest("", 7))
	second := waitResult(t, m)
	if !second.Cached {
		t.Error("segundo resultado deveria vir do cache")
	}
	if first.Mesh.Levels[0].Geometry == second.Mesh.Levels[0].Geometry {
		t.Error("cache devolveu o mesmo ponteiro de geometria")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d", store.Len())
	}
}

func TestTreeMesherError(t *testing.T) {
	m := NewTreeMesher(1, nil)
	defer m.Stop()

	bad := testRequest("", 1)
	bad.Params.Branches[0].Inherit = true
	m.Submit(bad)
	if res := waitResult(t, m); !errors.Is(res.Err, arvore.ErrInvalidParameters) {
		t.Errorf("Err = %v", res.Err)
	}

	m.Submit(Request{Seed: 1})
	if res := waitResult(t, m); !errors.Is(res.Err, arvore.ErrInvalidParameters) {
		t.Errorf("sem parâmetros: Err = %v", res.Err)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	m := NewTreeMesher(1, nil)
	m.Stop()
	m.Stop()
	// Com a fila vazia os dois casos do select são possíveis; a chave nunca
	// pode ficar presa quando a submissão é recusada.
	if !m.Submit(testRequest("z", 1)) && m.pending["z"] {
		t.Error("chave recusada ficou pendente")
	}
}

func TestStopClosesResults(t *testing.T) {
	m := NewTreeMesher(2, nil)
	done := make(chan struct{})
	go func() {
		for range m.Results() {
		}
		close(done)
	}()
	m.Stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumidor de Results não terminou depois de Stop")
	}
}

func TestCacheKey(t *testing.T) {
	p := arvore.NewTreeParameters(3)
	levels := []arvore.LevelOfDetailParameters{arvore.NewLevelOfDetail()}
	a, err := CacheKey(p, 1, levels)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := CacheKey(p.Clone(), 1, levels)
	if a != b {
		t.Error("parâmetros iguais geraram chaves diferentes")
	}
	c, _ := CacheKey(p, 2, levels)
	if a == c {
		t.Error("sementes diferentes geraram a mesma chave")
	}
	p.TrunkHeight += 0.1
	d, _ := CacheKey(p, 1, levels)
	if a == d {
		t.Error("parâmetros diferentes geraram a mesma chave")
	}
	if _, err := CacheKey(nil, 1, nil); err == nil {
		t.Error("esperado erro para parâmetros nulos")
	}
}

func TestResultStoreEviction(t *testing.T) {
	s := NewResultStore(2)
	for _, k := range []string{"a", "b", "c"} {
		s.Store(k, &meshing.Result{})
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Error("entrada mais antiga não foi removida")
	}
	if _, ok := s.Get("c"); !ok {
		t.Error("entrada recente ausente")
	}
	s.Clear()
	if s.Len() != 0 {
		t.Error("Clear não esvaziou")
	}
}
