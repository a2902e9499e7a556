package gpu

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// GPUAddress é um endereço virtual de GPU (como D3D12_GPU_VIRTUAL_ADDRESS).
type GPUAddress uint64

// HeapType indica onde o buffer vive.
type HeapType int

const (
	HeapUpload  HeapType = iota // Mapeado para escrita da CPU, lido pela GPU
	HeapDefault                 // Residente, imutável depois do upload
)

func (h HeapType) String() string {
	if h == HeapUpload {
		return "upload"
	}
	return "default"
}

// Buffer é uma região linear de memória endereçável pela GPU.
type Buffer struct {
	name     string
	heap     HeapType
	base     GPUAddress
	data     []byte
	released atomic.Bool
}

func (b *Buffer) Name() string           { return b.name }
func (b *Buffer) Heap() HeapType         { return b.heap }
func (b *Buffer) GPUAddress() GPUAddress { return b.base }
func (b *Buffer) Size() int              { return len(b.data) }
func (b *Buffer) Released() bool         { return b.released.Load() }

// Write copia p para o buffer a partir de offset (memcpy para a região mapeada).
func (b *Buffer) Write(offset int, p []byte) error {
	if b.released.Load() {
		return fmt.Errorf("%w: buffer %q já liberado", ErrInvalidAddress, b.name)
	}
	if offset < 0 || offset+len(p) > len(b.data) {
		return fmt.Errorf("%w: %q offset=%d len=%d size=%d", ErrOutOfRange, b.name, offset, len(p), len(b.data))
	}
	copy(b.data[offset:], p)
	return nil
}

// Bytes devolve uma fatia de leitura. Usado pelos backends na execução e pelos testes.
func (b *Buffer) Bytes(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > len(b.data) {
		return nil, fmt.Errorf("%w: %q offset=%d len=%d size=%d", ErrOutOfRange, b.name, offset, n, len(b.data))
	}
	return b.data[offset : offset+n], nil
}

// addressGranularity separa buffers no espaço virtual (64 KiB, como os heaps placed).
const addressGranularity = 64 * 1024

// AddressSpace atribui endereços virtuais aos buffers e resolve endereços de volta.
type AddressSpace struct {
	mu      sync.RWMutex
	next    GPUAddress
	buffers []*Buffer // Ordenados por base
}

// NewAddressSpace cria um espaço de endereços vazio. O endereço zero nunca é atribuído.
func NewAddressSpace() *AddressSpace {
	return &AddressSpace{next: addressGranularity}
}

// Allocate reserva um novo buffer de size bytes.
func (a *AddressSpace) Allocate(name string, heap HeapType, size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: tamanho %d para %q", ErrOutOfRange, size, name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b := &Buffer{
		name: name,
		heap: heap,
		base: a.next,
		data: make([]byte, size),
	}
	span := (size + addressGranularity - 1) / addressGranularity * addressGranularity
	a.next += GPUAddress(span)
	a.buffers = append(a.buffers, b)
	return b, nil
}

// Free libera o buffer. Endereços nunca são reaproveitados.
func (a *AddressSpace) Free(b *Buffer) {
	if b == nil || b.released.Swap(true) {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	i := sort.Search(len(a.buffers), func(i int) bool { return a.buffers[i].base >= b.base })
	if i < len(a.buffers) && a.buffers[i] == b {
		a.buffers = append(a.buffers[:i], a.buffers[i+1:]...)
	}
}

// Resolve encontra o buffer e o offset correspondentes a addr.
func (a *AddressSpace) Resolve(addr GPUAddress) (*Buffer, int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	i := sort.Search(len(a.buffers), func(i int) bool { return a.buffers[i].base > addr }) - 1
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: 0x%x", ErrInvalidAddress, uint64(addr))
	}
	b := a.buffers[i]
	off := int(addr - b.base)
	if off >= len(b.data) {
		return nil, 0, fmt.Errorf("%w: 0x%x além de %q", ErrInvalidAddress, uint64(addr), b.name)
	}
	return b, off, nil
}

// Live retorna quantos buffers continuam alocados.
func (a *AddressSpace) Live() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.buffers)
}

// VertexBufferView descreve o vertex buffer ligado ao input assembler.
type VertexBufferView struct {
	Buffer *Buffer
	Stride int
	Size   int
}

// IndexFormat é o formato dos índices.
type IndexFormat int

const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

// Size retorna o tamanho em bytes de um índice.
func (f IndexFormat) Size() int {
	if f == IndexUint32 {
		return 4
	}
	return 2
}

// IndexBufferView descreve o index buffer ligado ao input assembler.
type IndexBufferView struct {
	Buffer *Buffer
	Format IndexFormat
	Size   int
}
