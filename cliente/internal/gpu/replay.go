package gpu

import "fmt"

// MaxRootSlots é o número de parâmetros de root signature suportados.
const MaxRootSlots = 8

// DrawCall é um draw com todos os bindings já resolvidos.
type DrawCall struct {
	Pipeline     PipelineState
	Textures     [MaxRootSlots]Texture
	Constants    [MaxRootSlots][]byte // Bytes a partir do endereço ligado em cada slot
	VertexBuffer VertexBufferView
	IndexBuffer  IndexBufferView
	Topology     Topology
	Args         DrawArgs
}

// ReplayHandler recebe os comandos interpretados por Replay.
type ReplayHandler interface {
	Barrier(resource int, before, after ResourceState) error
	ClearRenderTarget(color [4]float32)
	ClearDepthStencil(depth float32, stencil uint8)
	SetViewport(vp Viewport)
	SetPipeline(pso PipelineState)
	Draw(call *DrawCall) error
}

// Replay interpreta uma lista de comandos gravada, rastreando o estado ligado e
// resolvendo endereços e descritores antes de cada draw.
func (h *HostResources) Replay(cmds []Command, handler ReplayHandler) error {
	var call DrawCall

	for i := range cmds {
		c := &cmds[i]
		switch c.Op {
		case OpSetPipeline:
			call.Pipeline = c.Pipeline
			handler.SetPipeline(c.Pipeline)
		case OpSetViewport:
			handler.SetViewport(c.Viewport)
		case OpBarrier:
			if err := handler.Barrier(c.Resource, c.Before, c.After); err != nil {
				return fmt.Errorf("comando %d: %w", i, err)
			}
		case OpClearRenderTarget:
			handler.ClearRenderTarget(c.Color)
		case OpClearDepthStencil:
			handler.ClearDepthStencil(c.Depth, c.Stencil)
		case OpSetDescriptorTable:
			if c.RootSlot < 0 || c.RootSlot >= MaxRootSlots {
				return fmt.Errorf("comando %d: %w: root slot %d", i, ErrInvalidDescriptor, c.RootSlot)
			}
			tex, err := h.ResolveDescriptor(c.Descriptor)
			if err != nil {
				return fmt.Errorf("comando %d: %w", i, err)
			}
			call.Textures[c.RootSlot] = tex
		case OpSetConstantBuffer:
			if c.RootSlot < 0 || c.RootSlot >= MaxRootSlots {
				return fmt.Errorf("comando %d: %w: root slot %d", i, ErrInvalidAddress, c.RootSlot)
			}
			buf, off, err := h.Space.Resolve(c.Address)
			if err != nil {
				return fmt.Errorf("comando %d: %w", i, err)
			}
			call.Constants[c.RootSlot] = buf.data[off:]
		case OpSetVertexBuffer:
			call.VertexBuffer = c.VertexBuffer
		case OpSetIndexBuffer:
			call.IndexBuffer = c.IndexBuffer
		case OpSetTopology:
			call.Topology = c.Topology
		case OpDrawIndexed:
			if call.Pipeline == nil {
				return fmt.Errorf("comando %d: %w", i, ErrNoPipeline)
			}
			ib := call.IndexBuffer
			if ib.Buffer == nil {
				return fmt.Errorf("comando %d: %w: draw sem index buffer", i, ErrOutOfRange)
			}
			end := int(c.Draw.StartIndex+c.Draw.IndexCount) * ib.Format.Size()
			if end > ib.Size {
				return fmt.Errorf("comando %d: %w: índices até %d, buffer com %d", i, ErrOutOfRange, end, ib.Size)
			}
			call.Args = c.Draw
			if err := handler.Draw(&call); err != nil {
				return fmt.Errorf("comando %d: %w", i, err)
			}
		default:
			return fmt.Errorf("comando %d: op desconhecido %s", i, c.Op)
		}
	}
	return nil
}
