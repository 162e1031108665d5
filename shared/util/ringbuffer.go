package util

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	ErrRingFull  = errors.New("buffer circular cheio")
	ErrRingEmpty = errors.New("buffer circular vazio")
)

// RingBuffer é um buffer circular sem locks para um produtor e um consumidor.
// Com mais de um produtor, o chamador deve serializar Enqueue.
type RingBuffer[T any] struct {
	entries    []T
	mask       uint64
	producerID atomic.Uint64
	consumerID atomic.Uint64
}

// NewRingBuffer cria um buffer com a capacidade dada, arredondada para potência de 2.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	actualCap := nextPowerOfTwo(capacity)
	return &RingBuffer[T]{
		entries: make([]T, actualCap),
		mask:    uint64(actualCap - 1),
	}
}

// Enqueue adiciona um item ao buffer.
func (r *RingBuffer[T]) Enqueue(item T) error {
	next := r.producerID.Load()
	if next-r.consumerID.Load() >= uint64(len(r.entries)) {
		return ErrRingFull
	}
	r.entries[next&r.mask] = item
	r.producerID.Store(next + 1)
	return nil
}

// Dequeue remove o item mais antigo.
func (r *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	consumer := r.consumerID.Load()
	if consumer >= r.producerID.Load() {
		return zero, ErrRingEmpty
	}
	item := r.entries[consumer&r.mask]
	// Solta a referência (malhas podem ser grandes).
	r.entries[consumer&r.mask] = zero
	r.consumerID.Store(consumer + 1)
	return item, nil
}

// Len retorna quantos itens aguardam consumo.
func (r *RingBuffer[T]) Len() int {
	return int(r.producerID.Load() - r.consumerID.Load())
}

// Cap retorna a capacidade real do buffer.
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
