package gpu

import (
	"fmt"
	"sync"
)

// HostResources implementa a parte do Device comum aos backends: buffers em memória do
// host endereçados por um AddressSpace, fences e tabelas de descritores.
type HostResources struct {
	Space *AddressSpace

	mu             sync.Mutex
	tables         []*DescriptorTable
	nextDescriptor DescriptorHandle
	increment      uint64
}

// NewHostResources cria o conjunto de recursos. increment é o tamanho de um descritor.
func NewHostResources(descriptorIncrement uint64) *HostResources {
	if descriptorIncrement == 0 {
		descriptorIncrement = 32
	}
	return &HostResources{
		Space:          NewAddressSpace(),
		nextDescriptor: DescriptorHandle(descriptorIncrement),
		increment:      descriptorIncrement,
	}
}

func (h *HostResources) CreateUploadBuffer(name string, size int) (*Buffer, error) {
	b, err := h.Space.Allocate(name, HeapUpload, size)
	if err != nil {
		return nil, fmt.Errorf("criando upload buffer: %w", err)
	}
	return b, nil
}

// CreateDefaultBuffer cria um buffer residente já inicializado com data.
func (h *HostResources) CreateDefaultBuffer(name string, data []byte) (*Buffer, error) {
	b, err := h.Space.Allocate(name, HeapDefault, len(data))
	if err != nil {
		return nil, fmt.Errorf("criando default buffer: %w", err)
	}
	copy(b.data, data)
	return b, nil
}

func (h *HostResources) ReleaseBuffer(b *Buffer) {
	h.Space.Free(b)
}

func (h *HostResources) CreateFence(initial uint64) (*Fence, error) {
	return NewFence(initial), nil
}

// CreateDescriptorTable reserva count descritores contíguos.
func (h *HostResources) CreateDescriptorTable(count int) (*DescriptorTable, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: tabela com %d slots", ErrInvalidDescriptor, count)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t := NewDescriptorTable(count, h.nextDescriptor, h.increment)
	h.nextDescriptor += DescriptorHandle(uint64(count) * h.increment)
	h.tables = append(h.tables, t)
	return t, nil
}

// ResolveDescriptor encontra a textura apontada por handle em qualquer tabela.
func (h *HostResources) ResolveDescriptor(handle DescriptorHandle) (Texture, error) {
	h.mu.Lock()
	tables := h.tables
	h.mu.Unlock()

	for _, t := range tables {
		if tex, ok := t.Resolve(handle); ok {
			return tex, nil
		}
	}
	return nil, fmt.Errorf("%w: handle %d", ErrInvalidDescriptor, uint64(handle))
}
