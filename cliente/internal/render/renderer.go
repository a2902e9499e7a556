// Package render grava a lista de comandos do frame: um draw indexado por render item,
// todos sob o mesmo pipeline state.
package render

import (
	"fmt"

	"VoxelTerrain/cliente/internal/cbuffer"
	"VoxelTerrain/cliente/internal/frame"
	"VoxelTerrain/cliente/internal/gpu"
	"VoxelTerrain/cliente/internal/materials"
	"VoxelTerrain/cliente/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderer é dono da lista de comandos reutilizada a cada frame.
type Renderer struct {
	list     *gpu.CommandList
	textures *materials.TextureTable
}

// NewRenderer cria o gravador sobre a tabela de texturas já carregada.
func NewRenderer(textures *materials.TextureTable) *Renderer {
	return &Renderer{
		list:     gpu.NewCommandList("frame"),
		textures: textures,
	}
}

// List é a lista gravada pelo último Record.
func (r *Renderer) List() *gpu.CommandList { return r.list }

// FrameParams descreve o alvo e o estado do frame a gravar.
type FrameParams struct {
	Resource   *frame.Resource
	Pipeline   gpu.PipelineState
	BackBuffer int
	Width      int
	Height     int
	Clear      mgl32.Vec4
}

// Record reinicia o allocator do slot e grava o frame: barreira para render target,
// limpeza, bindings por passo, um draw por item (camadas em ordem) e barreira para present.
// Devolve o número de draws gravados.
func (r *Renderer) Record(p FrameParams, layers [LayerCount][]*RenderItem) (int, error) {
	res := p.Resource
	if err := res.Allocator.Reset(); err != nil {
		return 0, fmt.Errorf("slot %d: %w", res.Index, err)
	}
	if err := r.list.Reset(res.Allocator, p.Pipeline); err != nil {
		return 0, err
	}

	l := r.list
	l.SetViewport(gpu.Viewport{Width: float32(p.Width), Height: float32(p.Height), MaxDepth: 1})
	l.ResourceBarrier(p.BackBuffer, gpu.StatePresent, gpu.StateRenderTarget)
	l.ClearRenderTarget([4]float32(p.Clear))
	l.ClearDepthStencil(1, 0)

	l.SetDescriptorTable(cbuffer.RootSlotTexture, r.textures.Descriptors().Start())
	l.SetConstantBuffer(cbuffer.RootSlotPass, res.PassCB.Address(0))

	draws := 0
	var bound *meshing.MeshGeometry
	topology := gpu.Topology(-1)
	for _, items := range layers {
		for _, ri := range items {
			if ri.Geo != bound {
				l.SetVertexBuffer(ri.Geo.VertexBufferView())
				l.SetIndexBuffer(ri.Geo.IndexBufferView())
				bound = ri.Geo
			}
			if ri.Topology != topology {
				l.SetPrimitiveTopology(ri.Topology)
				topology = ri.Topology
			}

			l.SetDescriptorTable(cbuffer.RootSlotTexture, r.textures.Handle(ri.Mat.DiffuseSrvHeapIndex))
			l.SetConstantBuffer(cbuffer.RootSlotObject, res.ObjectCB.Address(ri.ObjCBIndex))
			l.SetConstantBuffer(cbuffer.RootSlotMaterial, res.MaterialCB.Address(ri.Mat.CBIndex))
			l.DrawIndexed(ri.DrawArgs())
			draws++
		}
	}

	l.ResourceBarrier(p.BackBuffer, gpu.StateRenderTarget, gpu.StatePresent)
	if err := l.Close(); err != nil {
		return draws, fmt.Errorf("fechando lista: %w", err)
	}
	return draws, nil
}
