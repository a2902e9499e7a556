package util

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrRingFull é retornado por Enqueue quando o consumidor ainda não liberou espaço.
	ErrRingFull = errors.New("buffer circular cheio")
	// ErrRingEmpty é retornado por Dequeue quando não há itens pendentes.
	ErrRingEmpty = errors.New("buffer circular vazio")
)

// RingBuffer é um buffer circular lock-free de um produtor e um consumidor.
// A thread de render produz amostras de frame e o escritor do journal consome.
type RingBuffer[T any] struct {
	entries    []T
	mask       uint64
	producerID atomic.Uint64
	consumerID atomic.Uint64
}

// NewRingBuffer cria um novo buffer circular com a capacidade dada (arredondada para potência de 2).
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	actualCap := nextPowerOfTwo(capacity)
	return &RingBuffer[T]{
		entries: make([]T, actualCap),
		mask:    uint64(actualCap - 1),
	}
}

// Enqueue adiciona um item ao buffer. Retorna ErrRingFull se estiver cheio.
func (r *RingBuffer[T]) Enqueue(item T) error {
	next := r.producerID.Load()
	consumer := r.consumerID.Load()

	if next-consumer >= uint64(len(r.entries)) {
		return ErrRingFull
	}

	r.entries[next&r.mask] = item
	r.producerID.Store(next + 1)
	return nil
}

// Dequeue remove um item do buffer. Retorna ErrRingEmpty se estiver vazio.
func (r *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	consumer := r.consumerID.Load()
	producer := r.producerID.Load()

	if consumer >= producer {
		return zero, ErrRingEmpty
	}

	item := r.entries[consumer&r.mask]
	r.entries[consumer&r.mask] = zero
	r.consumerID.Store(consumer + 1)
	return item, nil
}

// Len retorna quantos itens aguardam consumo.
func (r *RingBuffer[T]) Len() int {
	return int(r.producerID.Load() - r.consumerID.Load())
}

// Cap retorna a capacidade real (potência de 2).
func (r *RingBuffer[T]) Cap() int {
	return len(r.entries)
}

func nextPowerOfTwo(x int) int {
	res := 2
	for res < x {
		res <<= 1
	}
	return res
}
