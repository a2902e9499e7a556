// Package gpu define a camada de abstração do dispositivo gráfico usada pelo motor.
//
// O modelo segue as APIs explícitas (listas de comandos, fences, pipeline state objects,
// tabelas de descritores). Dois backends implementam Device: rlgpu (Raylib/OpenGL) e
// headless (timeline de software em goroutine própria, usado em testes e execuções sem janela).
package gpu

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceLost        = errors.New("gpu: dispositivo perdido")
	ErrAllocatorBusy     = errors.New("gpu: command allocator ainda em uso pela GPU")
	ErrListClosed        = errors.New("gpu: lista de comandos fechada")
	ErrListOpen          = errors.New("gpu: lista de comandos ainda aberta")
	ErrInvalidAddress    = errors.New("gpu: endereço de GPU inválido")
	ErrInvalidDescriptor = errors.New("gpu: descritor inválido")
	ErrInvalidBarrier    = errors.New("gpu: transição de recurso inválida")
	ErrNoPipeline        = errors.New("gpu: draw sem pipeline state")
	ErrOutOfRange        = errors.New("gpu: acesso fora do buffer")
	ErrShaderCompile     = errors.New("gpu: falha ao compilar shader")
	ErrTextureLoad       = errors.New("gpu: falha ao carregar textura")
)

// ConstantBufferAlignment é o alinhamento mínimo de um constant buffer view.
const ConstantBufferAlignment = 256

// AlignConstantBufferSize arredonda size para o próximo múltiplo de ConstantBufferAlignment.
// Alinhar um tamanho já alinhado não o altera.
func AlignConstantBufferSize(size int) int {
	return (size + ConstantBufferAlignment - 1) &^ (ConstantBufferAlignment - 1)
}

// Device é o backend gráfico consumido pelo motor.
type Device interface {
	Name() string

	// Buffers e recursos
	CreateUploadBuffer(name string, size int) (*Buffer, error)
	CreateDefaultBuffer(name string, data []byte) (*Buffer, error)
	CreateDescriptorTable(count int) (*DescriptorTable, error)
	ReleaseBuffer(b *Buffer)

	// Pipeline
	CreatePipelineState(desc PipelineDesc) (PipelineState, error)
	ReleasePipelineState(p PipelineState)

	// Sincronização
	CreateFence(initial uint64) (*Fence, error)

	Queue() Queue
	SwapChain() SwapChain
	ShaderCompiler() ShaderCompiler
	TextureLoader() TextureLoader

	Close() error
}

// Queue executa listas de comandos na timeline da GPU, em ordem de submissão.
type Queue interface {
	Execute(lists ...*CommandList) error
	// Signal pede que a GPU escreva value na fence quando todo o trabalho anterior terminar.
	Signal(f *Fence, value uint64) error
}

// SwapChain apresenta o back buffer corrente.
type SwapChain interface {
	Present() error
	CurrentBackBuffer() int
	BufferCount() int
	Resize(width, height int) error
	Size() (width, height int)
}

// Texture é uma imagem residente na GPU.
type Texture interface {
	Name() string
	Width() int
	Height() int
}

// TextureLoader carrega um arquivo de imagem e devolve a textura residente.
type TextureLoader interface {
	LoadTexture(name, path string, sampler Sampler) (Texture, error)
}

// SamplerFilter é o filtro de amostragem.
type SamplerFilter int

const (
	FilterPoint SamplerFilter = iota
	FilterLinear
	FilterTrilinear
	FilterAnisotropic
)

// AddressMode define o que acontece fora de [0,1].
type AddressMode int

const (
	AddressWrap AddressMode = iota
	AddressClamp
)

// Sampler é o par filtro/endereçamento aplicado a uma textura.
type Sampler struct {
	Filter SamplerFilter
	Wrap   AddressMode
}

// DefaultSampler é trilinear com repetição.
var DefaultSampler = Sampler{Filter: FilterTrilinear, Wrap: AddressWrap}

// ParseSampler converte os nomes usados no manifesto ("point", "linear", "trilinear",
// "anisotropic" / "wrap", "clamp"). Vazio usa o padrão.
func ParseSampler(filter, wrap string) (Sampler, error) {
	s := DefaultSampler
	switch filter {
	case "":
	case "point":
		s.Filter = FilterPoint
	case "linear":
		s.Filter = FilterLinear
	case "trilinear":
		s.Filter = FilterTrilinear
	case "anisotropic":
		s.Filter = FilterAnisotropic
	default:
		return s, fmt.Errorf("filtro desconhecido %q", filter)
	}
	switch wrap {
	case "", "wrap":
	case "clamp":
		s.Wrap = AddressClamp
	default:
		return s, fmt.Errorf("endereçamento desconhecido %q", wrap)
	}
	return s, nil
}
