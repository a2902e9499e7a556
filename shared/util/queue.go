package util

import "sync"

// ThreadSafeQueue é uma fila FIFO simples protegida por mutex.
// Usada pela timeline do backend headless para receber submissões da thread de render.
type ThreadSafeQueue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

// NewThreadSafeQueue cria uma nova fila thread-safe.
func NewThreadSafeQueue[T any]() *ThreadSafeQueue[T] {
	return &ThreadSafeQueue[T]{
		items:  make([]T, 0, 64),
		notify: make(chan struct{}, 1),
	}
}

// Push adiciona um item ao fim da fila e acorda um consumidor bloqueado em Ready.
func (q *ThreadSafeQueue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop remove e retorna o primeiro item. Retorna false se vazia.
func (q *ThreadSafeQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Ready retorna um canal que recebe um sinal sempre que algo é empurrado na fila.
func (q *ThreadSafeQueue[T]) Ready() <-chan struct{} {
	return q.notify
}

// Len retorna o tamanho da fila.
func (q *ThreadSafeQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
