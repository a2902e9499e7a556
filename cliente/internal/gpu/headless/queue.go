package headless

import (
	"fmt"
	"sync"
	"time"

	"VoxelTerrain/cliente/internal/gpu"
	"VoxelTerrain/shared/util"
)

type opKind int

const (
	opExecute opKind = iota
	opSignal
	opPresent
)

type op struct {
	kind     opKind
	cmds     []gpu.Command
	done     func()
	fence    *gpu.Fence
	value    uint64
	resource int
}

// Queue é a fila de comandos; a goroutine run é a timeline da GPU.
type Queue struct {
	dev     *Device
	pending *opQueue
	quit    chan struct{}
	wg      sync.WaitGroup

	// Estado da timeline (acessado só pela goroutine run)
	states []gpu.ResourceState

	mu     sync.Mutex
	err    error
	fences []*gpu.Fence
}

func newQueue(d *Device) *Queue {
	q := &Queue{
		dev:     d,
		pending: util.NewThreadSafeQueue[op](),
		quit:    make(chan struct{}),
		states:  make([]gpu.ResourceState, d.opts.BufferCount),
	}
	q.wg.Add(1)
	return q
}

// Execute enfileira as listas na ordem dada.
func (q *Queue) Execute(lists ...*gpu.CommandList) error {
	for _, l := range lists {
		cmds, done, err := gpu.BeginExecution(l)
		if err != nil {
			return err
		}
		if err := q.enqueue(op{kind: opExecute, cmds: cmds, done: done}); err != nil {
			done()
			return err
		}
	}
	return nil
}

// Signal enfileira a escrita de value em f depois de todo o trabalho anterior.
func (q *Queue) Signal(f *gpu.Fence, value uint64) error {
	q.mu.Lock()
	known := false
	for _, k := range q.fences {
		if k == f {
			known = true
			break
		}
	}
	if !known {
		q.fences = append(q.fences, f)
	}
	q.mu.Unlock()

	return q.enqueue(op{kind: opSignal, fence: f, value: value})
}

func (q *Queue) enqueue(o op) error {
	if err := q.Err(); err != nil {
		return err
	}
	if q.dev.isClosed() {
		return ErrClosed
	}
	q.pending.Push(o)
	return nil
}

// Err retorna o erro que derrubou a timeline, se houver.
func (q *Queue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

func (q *Queue) fail(err error) {
	q.mu.Lock()
	if q.err == nil {
		q.err = fmt.Errorf("%w: %v", gpu.ErrDeviceLost, err)
	}
	lost := q.err
	fences := append([]*gpu.Fence(nil), q.fences...)
	q.mu.Unlock()

	for _, f := range fences {
		f.Fail(lost)
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.pending.Ready():
			q.drain()
		case <-q.quit:
			q.drain()
			return
		}
	}
}

func (q *Queue) drain() {
	for {
		o, ok := q.pending.Pop()
		if !ok {
			return
		}
		q.process(o)
	}
}

func (q *Queue) process(o op) {
	switch o.kind {
	case opExecute:
		if q.Err() != nil {
			o.done()
			return
		}
		if q.dev.opts.Latency > 0 {
			time.Sleep(q.dev.opts.Latency)
		}
		rec := newRecorder(q.states)
		err := q.dev.Replay(o.cmds, rec)
		o.done()
		if err != nil {
			q.fail(err)
			return
		}
		q.dev.addReport(rec.report)
	case opSignal:
		if err := q.Err(); err != nil {
			o.fence.Fail(err)
			return
		}
		o.fence.Signal(o.value)
	case opPresent:
		if q.Err() != nil {
			return
		}
		if q.states[o.resource] != gpu.StatePresent {
			q.fail(fmt.Errorf("%w: present do buffer %d em %s", gpu.ErrInvalidBarrier, o.resource, q.states[o.resource]))
			return
		}
		q.dev.swap.markPresented()
	}
}

func (q *Queue) stop() {
	close(q.quit)
	q.wg.Wait()
}

// recorder é o ReplayHandler da timeline: valida barreiras e conta draws.
type recorder struct {
	states   []gpu.ResourceState
	pipeline string
	report   Report
}

func newRecorder(states []gpu.ResourceState) *recorder {
	return &recorder{
		states: states,
		report: Report{
			DrawsByPipeline: make(map[string]int),
			DrawsByTexture:  make(map[string]int),
		},
	}
}

func (r *recorder) Barrier(resource int, before, after gpu.ResourceState) error {
	if resource < 0 || resource >= len(r.states) {
		return fmt.Errorf("%w: back buffer %d inexistente", gpu.ErrInvalidBarrier, resource)
	}
	if r.states[resource] != before {
		return fmt.Errorf("%w: buffer %d está em %s, barreira esperava %s",
			gpu.ErrInvalidBarrier, resource, r.states[resource], before)
	}
	r.states[resource] = after
	return nil
}

func (r *recorder) ClearRenderTarget(color [4]float32)           { r.report.Cleared = true }
func (r *recorder) ClearDepthStencil(depth float32, stencil uint8) {}
func (r *recorder) SetViewport(vp gpu.Viewport)                  {}

func (r *recorder) SetPipeline(pso gpu.PipelineState) {
	r.pipeline = pso.Desc().Name
	r.report.Pipelines = append(r.report.Pipelines, r.pipeline)
}

func (r *recorder) Draw(call *gpu.DrawCall) error {
	r.report.Draws++
	r.report.DrawsByPipeline[r.pipeline]++
	for _, tex := range call.Textures {
		if tex != nil {
			r.report.DrawsByTexture[tex.Name()]++
		}
	}
	return nil
}
