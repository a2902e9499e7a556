package gpu

import "fmt"

// FillMode é o modo de preenchimento do rasterizador.
type FillMode int

const (
	FillSolid FillMode = iota
	FillWireframe
)

// CullMode define quais faces são descartadas.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// BlendMode é a configuração de blend do render target 0.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	// BlendAlpha usa SrcAlpha / InvSrcAlpha, como a água.
	BlendAlpha
)

func (f FillMode) String() string {
	if f == FillWireframe {
		return "wireframe"
	}
	return "solid"
}

func (c CullMode) String() string {
	switch c {
	case CullFront:
		return "front"
	case CullNone:
		return "none"
	default:
		return "back"
	}
}

func (b BlendMode) String() string {
	if b == BlendAlpha {
		return "alpha"
	}
	return "opaque"
}

// ShaderBytecode é o resultado do serviço de compilação de shaders.
type ShaderBytecode []byte

// PipelineDesc agrupa estágios de shader, rasterizador, blend e profundidade.
type PipelineDesc struct {
	Name      string
	VS        ShaderBytecode
	PS        ShaderBytecode
	Fill      FillMode
	Cull      CullMode
	Blend     BlendMode
	DepthTest bool
	Topology  Topology
}

// Validate verifica a consistência mínima do descritor.
func (d PipelineDesc) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("pipeline sem nome")
	}
	if len(d.VS) == 0 || len(d.PS) == 0 {
		return fmt.Errorf("pipeline %q sem bytecode de vertex/pixel shader", d.Name)
	}
	return nil
}

// PipelineState é um PSO criado pelo backend.
type PipelineState interface {
	Desc() PipelineDesc
}

// BasicPipeline é um PipelineState que só guarda o descritor.
type BasicPipeline struct {
	desc PipelineDesc
}

// NewBasicPipeline valida desc e o embrulha num PipelineState.
func NewBasicPipeline(desc PipelineDesc) (*BasicPipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &BasicPipeline{desc: desc}, nil
}

func (p *BasicPipeline) Desc() PipelineDesc { return p.desc }
