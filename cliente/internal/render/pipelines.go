package render

import (
	"fmt"
	"log"

	"VoxelTerrain/cliente/internal/gpu"
)

// Nomes dos PSOs.
const (
	PSOOpaque          = "opaque"
	PSOOpaqueWireframe = "opaque_wireframe"
	PSOOpaqueCullFront = "opaque_cullfront"
	PSOOpaqueCullNone  = "opaque_cullnone"
	PSOTransparent     = "transparent"
)

// PipelineSet é o conjunto fixo de PSOs, criado uma vez na inicialização.
type PipelineSet struct {
	byName map[string]gpu.PipelineState

	// DefaultBlend escolhe o PSO do modo padrão.
	DefaultBlend gpu.BlendMode
}

// BuildPipelines compila os shaders e cria os cinco PSOs.
func BuildPipelines(dev gpu.Device, defaultBlend gpu.BlendMode) (*PipelineSet, error) {
	compiler := dev.ShaderCompiler()

	vs, err := compiler.Compile(standardVertexShader, nil, "main", "vs")
	if err != nil {
		return nil, fmt.Errorf("standardVS: %w", err)
	}
	opaquePS, err := compiler.Compile(standardFragmentShader, []gpu.ShaderDefine{{Name: "FOG", Value: "1"}}, "main", "fs")
	if err != nil {
		return nil, fmt.Errorf("opaquePS: %w", err)
	}

	opaque := gpu.PipelineDesc{
		Name:      PSOOpaque,
		VS:        vs,
		PS:        opaquePS,
		Fill:      gpu.FillSolid,
		Cull:      gpu.CullBack,
		Blend:     gpu.BlendOpaque,
		DepthTest: true,
		Topology:  gpu.TopologyTriangleList,
	}
	wireframe := opaque
	wireframe.Name = PSOOpaqueWireframe
	wireframe.Fill = gpu.FillWireframe

	cullFront := opaque
	cullFront.Name = PSOOpaqueCullFront
	cullFront.Cull = gpu.CullFront

	cullNone := opaque
	cullNone.Name = PSOOpaqueCullNone
	cullNone.Cull = gpu.CullNone

	transparent := opaque
	transparent.Name = PSOTransparent
	transparent.Blend = gpu.BlendAlpha

	set := &PipelineSet{byName: make(map[string]gpu.PipelineState), DefaultBlend: defaultBlend}
	for _, desc := range []gpu.PipelineDesc{opaque, wireframe, cullFront, cullNone, transparent} {
		pso, err := dev.CreatePipelineState(desc)
		if err != nil {
			set.Release(dev)
			return nil, fmt.Errorf("PSO %q: %w", desc.Name, err)
		}
		set.byName[desc.Name] = pso
	}

	log.Printf("[Renderer] %d PSOs criados (padrão: %s)", len(set.byName), set.ForMode(ModeDefault).Desc().Name)
	return set, nil
}

// Get retorna o PSO pelo nome.
func (s *PipelineSet) Get(name string) (gpu.PipelineState, bool) {
	pso, ok := s.byName[name]
	return pso, ok
}

func (s *PipelineSet) Len() int { return len(s.byName) }

// Release devolve todos os PSOs ao dispositivo. O conjunto fica vazio.
func (s *PipelineSet) Release(dev gpu.Device) {
	for name, pso := range s.byName {
		dev.ReleasePipelineState(pso)
		delete(s.byName, name)
	}
}

// ForMode retorna o PSO do modo.
func (s *PipelineSet) ForMode(m Mode) gpu.PipelineState {
	switch m {
	case ModeWireframe:
		return s.byName[PSOOpaqueWireframe]
	case ModeCullFront:
		return s.byName[PSOOpaqueCullFront]
	case ModeCullNone:
		return s.byName[PSOOpaqueCullNone]
	}
	if s.DefaultBlend == gpu.BlendOpaque {
		return s.byName[PSOOpaque]
	}
	return s.byName[PSOTransparent]
}
