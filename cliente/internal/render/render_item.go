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

// Layer separa os itens pelo tipo de blend do material.
type Layer int

const (
	LayerOpaque Layer = iota
	LayerTransparent
	LayerCount
)

func (l Layer) String() string {
	if l == LayerTransparent {
		return "transparent"
	}
	return "opaque"
}

// RenderItem é um bloco desenhável: transformação própria, slot no constant buffer de
// objetos e referências (não donas) ao material e à geometria compartilhados.
type RenderItem struct {
	World        mgl32.Mat4
	TexTransform mgl32.Mat4

	// Quantos slots do anel ainda precisam da transformação atual.
	Dirty frame.Dirty

	ObjCBIndex int

	Mat *materials.Material
	Geo *meshing.MeshGeometry

	Topology   gpu.Topology
	IndexCount uint32
	StartIndex uint32
	BaseVertex int32
}

// NewRenderItem cria um item para a sub-malha submesh de geo, transladado para pos.
func NewRenderItem(index int, pos mgl32.Vec3, mat *materials.Material, geo *meshing.MeshGeometry, submesh string) (*RenderItem, error) {
	args, ok := geo.DrawArgs[submesh]
	if !ok {
		return nil, fmt.Errorf("geometria %q sem sub-malha %q", geo.Name, submesh)
	}
	return &RenderItem{
		World:        mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()),
		TexTransform: mgl32.Ident4(),
		Dirty:        frame.NewDirty(),
		ObjCBIndex:   index,
		Mat:          mat,
		Geo:          geo,
		Topology:     gpu.TopologyTriangleList,
		IndexCount:   args.IndexCount,
		StartIndex:   args.StartIndex,
		BaseVertex:   args.BaseVertex,
	}, nil
}

// Layer devolve a camada do item pelo material.
func (ri *RenderItem) Layer() Layer {
	if ri.Mat != nil && ri.Mat.Transparent {
		return LayerTransparent
	}
	return LayerOpaque
}

// Constants monta o registro do constant buffer de objetos.
func (ri *RenderItem) Constants() cbuffer.ObjectConstants {
	return cbuffer.ObjectConstants{World: ri.World, TexTransform: ri.TexTransform}
}

// DrawArgs são os argumentos do DrawIndexed do item.
func (ri *RenderItem) DrawArgs() gpu.DrawArgs {
	return gpu.DrawArgs{IndexCount: ri.IndexCount, StartIndex: ri.StartIndex, BaseVertex: ri.BaseVertex}
}

// Partition separa os itens por camada, preservando a ordem de inserção.
func Partition(items []*RenderItem) [LayerCount][]*RenderItem {
	var layers [LayerCount][]*RenderItem
	for _, ri := range items {
		l := ri.Layer()
		layers[l] = append(layers[l], ri)
	}
	return layers
}

// UpdateObjectConstants copia as transformações sujas para o slot corrente e devolve quantas copiou.
func UpdateObjectConstants(res *frame.Resource, items []*RenderItem) (int, error) {
	var buf [cbuffer.ObjectConstantsSize]byte
	copies := 0
	for _, ri := range items {
		if !ri.Dirty.Pending() {
			continue
		}
		c := ri.Constants()
		if err := c.MarshalTo(buf[:]); err != nil {
			return copies, err
		}
		if err := res.ObjectCB.CopyData(ri.ObjCBIndex, buf[:]); err != nil {
			return copies, fmt.Errorf("objeto %d: %w", ri.ObjCBIndex, err)
		}
		ri.Dirty.Consume()
		copies++
	}
	return copies, nil
}
