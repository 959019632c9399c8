package util

import "sync"

// UniqueQueue é uma fila thread-safe que garante elementos únicos por chave.
// O gerador em lote usa a semente como chave para não gerar a mesma árvore
// duas vezes quando a lista de sementes se repete.
type UniqueQueue[K comparable, V any] struct {
	mu      sync.Mutex
	items   []entry[K, V]
	present map[K]bool
}

type entry[K comparable, V any] struct {
	Key   K
	Value V
}

// NewUniqueQueue cria uma nova UniqueQueue.
func NewUniqueQueue[K comparable, V any]() *UniqueQueue[K, V] {
	return &UniqueQueue[K, V]{
		items:   make([]entry[K, V], 0, 64),
		present: make(map[K]bool),
	}
}

// Enqueue adiciona um item se a chave ainda não existir na fila.
// Se a chave já existir, o valor é atualizado e a posição é mantida.
// Retorna true se foi adicionado (novo), false se foi atualizado.
func (q *UniqueQueue[K, V]) Enqueue(key K, value V) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.present[key] {
		for i := range q.items {
			if q.items[i].Key == key {
				q.items[i].Value = value
				break
			}
		}
		return false
	}

	q.items = append(q.items, entry[K, V]{Key: key, Value: value})
	q.present[key] = true
	return true
}

// Drain esvazia a fila e retorna os valores na ordem de chegada.
func (q *UniqueQueue[K, V]) Drain() []V {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]V, 0, len(q.items))
	for _, e := range q.items {
		out = append(out, e.Value)
	}
	q.items = q.items[:0]
	q.present = make(map[K]bool)
	return out
}

// Len retorna o número de items na fila.
func (q *UniqueQueue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
