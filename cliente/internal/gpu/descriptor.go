package gpu

import (
	"fmt"
	"sync"
)

// DescriptorHandle é o handle de GPU de um descritor dentro de uma tabela shader-visible.
type DescriptorHandle uint64

// DescriptorTable é um heap de descritores SRV visível aos shaders.
// O handle de um slot é start + slot*increment.
type DescriptorTable struct {
	mu        sync.RWMutex
	start     DescriptorHandle
	increment uint64
	slots     []Texture
}

// NewDescriptorTable cria uma tabela com count slots.
func NewDescriptorTable(count int, start DescriptorHandle, increment uint64) *DescriptorTable {
	return &DescriptorTable{
		start:     start,
		increment: increment,
		slots:     make([]Texture, count),
	}
}

// Set grava a textura tex no slot.
func (t *DescriptorTable) Set(slot int, tex Texture) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slot < 0 || slot >= len(t.slots) {
		return fmt.Errorf("%w: slot %d de %d", ErrInvalidDescriptor, slot, len(t.slots))
	}
	t.slots[slot] = tex
	return nil
}

// Start é o handle do primeiro slot.
func (t *DescriptorTable) Start() DescriptorHandle { return t.start }

// Handle retorna o handle de GPU do slot (offset a partir do início do heap).
func (t *DescriptorTable) Handle(slot int) DescriptorHandle {
	return t.start + DescriptorHandle(uint64(slot)*t.increment)
}

// Len retorna o número de slots.
func (t *DescriptorTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots)
}

// Resolve converte um handle de volta na textura do slot.
func (t *DescriptorTable) Resolve(h DescriptorHandle) (Texture, bool) {
	if h < t.start || t.increment == 0 {
		return nil, false
	}
	off := uint64(h - t.start)
	if off%t.increment != 0 {
		return nil, false
	}
	slot := int(off / t.increment)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if slot >= len(t.slots) || t.slots[slot] == nil {
		return nil, false
	}
	return t.slots[slot], true
}
