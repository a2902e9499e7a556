package gpu

import (
	"fmt"
	"sync/atomic"
)

// ResourceState é o estado de um back buffer para fins de barreira.
type ResourceState int

const (
	StatePresent ResourceState = iota
	StateRenderTarget
)

func (s ResourceState) String() string {
	if s == StateRenderTarget {
		return "RENDER_TARGET"
	}
	return "PRESENT"
}

// Topology é a topologia primitiva do input assembler.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyLineList
)

// Viewport é a região de rasterização.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// DrawArgs são os argumentos de um DrawIndexed.
type DrawArgs struct {
	IndexCount uint32
	StartIndex uint32
	BaseVertex int32
}

// Op identifica o tipo de comando gravado.
type Op int

const (
	OpSetPipeline Op = iota
	OpSetViewport
	OpBarrier
	OpClearRenderTarget
	OpClearDepthStencil
	OpSetDescriptorTable
	OpSetConstantBuffer
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpSetTopology
	OpDrawIndexed
)

var opNames = [...]string{
	"SetPipeline", "SetViewport", "Barrier", "ClearRenderTarget", "ClearDepthStencil",
	"SetDescriptorTable", "SetConstantBuffer", "SetVertexBuffer", "SetIndexBuffer",
	"SetTopology", "DrawIndexed",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Command é um comando gravado. Só os campos relevantes ao Op são preenchidos.
type Command struct {
	Op Op

	Pipeline PipelineState
	Viewport Viewport

	Resource      int
	Before, After ResourceState

	Color   [4]float32
	Depth   float32
	Stencil uint8

	RootSlot   int
	Descriptor DescriptorHandle
	Address    GPUAddress

	VertexBuffer VertexBufferView
	IndexBuffer  IndexBufferView
	Topology     Topology
	Draw         DrawArgs
}

// CommandAllocator guarda a memória dos comandos gravados.
// Não pode ser resetado enquanto alguma execução que o referencia estiver pendente.
type CommandAllocator struct {
	name     string
	cmds     []Command
	inFlight atomic.Int32
}

// NewCommandAllocator cria um allocator vazio.
func NewCommandAllocator(name string) *CommandAllocator {
	return &CommandAllocator{name: name, cmds: make([]Command, 0, 1024)}
}

// Reset reaproveita a memória do allocator.
func (a *CommandAllocator) Reset() error {
	if a.inFlight.Load() > 0 {
		return fmt.Errorf("%w: %s", ErrAllocatorBusy, a.name)
	}
	a.cmds = a.cmds[:0]
	return nil
}

// Busy indica se a GPU ainda lê comandos deste allocator.
func (a *CommandAllocator) Busy() bool {
	return a.inFlight.Load() > 0
}

// CommandList grava comandos no allocator associado.
// Erros de gravação ficam retidos e aparecem em Close.
type CommandList struct {
	name  string
	alloc *CommandAllocator
	start int
	open  bool
	err   error
}

// NewCommandList cria uma lista fechada, pronta para Reset.
func NewCommandList(name string) *CommandList {
	return &CommandList{name: name}
}

// Reset abre a lista para gravação no allocator dado, com pso como estado inicial.
func (l *CommandList) Reset(alloc *CommandAllocator, pso PipelineState) error {
	if l.open {
		return fmt.Errorf("%w: %s", ErrListOpen, l.name)
	}
	if alloc.Busy() {
		return fmt.Errorf("%w: %s", ErrAllocatorBusy, alloc.name)
	}
	l.alloc = alloc
	l.start = len(alloc.cmds)
	l.open = true
	l.err = nil
	if pso != nil {
		l.SetPipelineState(pso)
	}
	return nil
}

func (l *CommandList) record(c Command) {
	if !l.open {
		if l.err == nil {
			l.err = fmt.Errorf("%w: %s recebeu %s", ErrListClosed, l.name, c.Op)
		}
		return
	}
	l.alloc.cmds = append(l.alloc.cmds, c)
}

func (l *CommandList) SetPipelineState(pso PipelineState) {
	l.record(Command{Op: OpSetPipeline, Pipeline: pso})
}

func (l *CommandList) SetViewport(vp Viewport) {
	l.record(Command{Op: OpSetViewport, Viewport: vp})
}

// ResourceBarrier grava a transição do back buffer resource de before para after.
func (l *CommandList) ResourceBarrier(resource int, before, after ResourceState) {
	l.record(Command{Op: OpBarrier, Resource: resource, Before: before, After: after})
}

func (l *CommandList) ClearRenderTarget(color [4]float32) {
	l.record(Command{Op: OpClearRenderTarget, Color: color})
}

func (l *CommandList) ClearDepthStencil(depth float32, stencil uint8) {
	l.record(Command{Op: OpClearDepthStencil, Depth: depth, Stencil: stencil})
}

func (l *CommandList) SetDescriptorTable(slot int, h DescriptorHandle) {
	l.record(Command{Op: OpSetDescriptorTable, RootSlot: slot, Descriptor: h})
}

func (l *CommandList) SetConstantBuffer(slot int, addr GPUAddress) {
	l.record(Command{Op: OpSetConstantBuffer, RootSlot: slot, Address: addr})
}

func (l *CommandList) SetVertexBuffer(v VertexBufferView) {
	l.record(Command{Op: OpSetVertexBuffer, VertexBuffer: v})
}

func (l *CommandList) SetIndexBuffer(v IndexBufferView) {
	l.record(Command{Op: OpSetIndexBuffer, IndexBuffer: v})
}

func (l *CommandList) SetPrimitiveTopology(t Topology) {
	l.record(Command{Op: OpSetTopology, Topology: t})
}

func (l *CommandList) DrawIndexed(args DrawArgs) {
	l.record(Command{Op: OpDrawIndexed, Draw: args})
}

// Close encerra a gravação e devolve o primeiro erro retido.
func (l *CommandList) Close() error {
	if !l.open {
		return fmt.Errorf("%w: %s", ErrListClosed, l.name)
	}
	l.open = false
	return l.err
}

// IsOpen indica se a lista está gravando.
func (l *CommandList) IsOpen() bool { return l.open }

// Commands retorna os comandos gravados desde o último Reset.
func (l *CommandList) Commands() []Command {
	if l.alloc == nil {
		return nil
	}
	return l.alloc.cmds[l.start:]
}

// BeginExecution é usado pelos backends: marca o allocator como em uso e devolve os
// comandos junto com a função que libera o allocator quando a GPU termina.
func BeginExecution(l *CommandList) ([]Command, func(), error) {
	if l.open {
		return nil, nil, fmt.Errorf("%w: %s", ErrListOpen, l.name)
	}
	if l.alloc == nil {
		return nil, func() {}, nil
	}
	alloc := l.alloc
	alloc.inFlight.Add(1)
	var once atomic.Bool
	done := func() {
		if once.CompareAndSwap(false, true) {
			alloc.inFlight.Add(-1)
		}
	}
	return l.Commands(), done, nil
}
