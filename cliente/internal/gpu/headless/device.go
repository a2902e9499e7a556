// Package headless implementa gpu.Device sem janela: a fila executa numa goroutine
// própria, com latência configurável, e sinaliza as fences em ordem de submissão.
package headless

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sync"
	"time"

	"VoxelTerrain/cliente/internal/gpu"
	"VoxelTerrain/shared/util"
)

// ErrClosed é retornado depois de Close.
var ErrClosed = errors.New("headless: dispositivo fechado")

// Options configura o dispositivo de software.
type Options struct {
	Width, Height int
	BufferCount   int
	Latency       time.Duration // Tempo simulado de execução por lista de comandos
	Textures      fs.FS         // nil: texturas sintéticas sem leitura de arquivo
}

// Device é o backend de software.
type Device struct {
	*gpu.HostResources

	opts   Options
	queue  *Queue
	swap   *SwapChain
	loader *TextureLoader

	mu        sync.Mutex
	reports   []Report
	pipelines map[gpu.PipelineState]struct{}
	closed    bool
}

// New cria o dispositivo e inicia a timeline da GPU.
func New(opts Options) *Device {
	if opts.BufferCount <= 0 {
		opts.BufferCount = 2
	}
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}

	d := &Device{
		HostResources: gpu.NewHostResources(32),
		opts:          opts,
		loader:        &TextureLoader{fsys: opts.Textures},
		pipelines:     make(map[gpu.PipelineState]struct{}),
	}
	d.swap = &SwapChain{dev: d, width: opts.Width, height: opts.Height, count: opts.BufferCount}
	d.queue = newQueue(d)
	go d.queue.run()

	log.Printf("[GPU] Dispositivo headless criado (%dx%d, latência %v)", opts.Width, opts.Height, opts.Latency)
	return d
}

func (d *Device) Name() string { return "headless" }

func (d *Device) CreatePipelineState(desc gpu.PipelineDesc) (gpu.PipelineState, error) {
	pso, err := gpu.NewBasicPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("criando PSO: %w", err)
	}
	d.mu.Lock()
	d.pipelines[pso] = struct{}{}
	d.mu.Unlock()
	return pso, nil
}

func (d *Device) ReleasePipelineState(p gpu.PipelineState) {
	d.mu.Lock()
	delete(d.pipelines, p)
	d.mu.Unlock()
}

// LivePipelines conta os PSOs criados e ainda não liberados.
func (d *Device) LivePipelines() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pipelines)
}

func (d *Device) Queue() gpu.Queue                   { return d.queue }
func (d *Device) SwapChain() gpu.SwapChain           { return d.swap }
func (d *Device) ShaderCompiler() gpu.ShaderCompiler { return gpu.GLSLPreprocessor{} }
func (d *Device) TextureLoader() gpu.TextureLoader   { return d.loader }

// Close drena a fila e encerra a timeline.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.queue.stop()
	log.Printf("[GPU] Dispositivo headless encerrado (%d listas executadas, %d buffers vivos)",
		len(d.Reports()), d.Space.Live())
	return d.queue.Err()
}

func (d *Device) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Report resume a execução de uma lista de comandos.
type Report struct {
	Draws           int
	Pipelines       []string       // Na ordem em que foram ligados
	DrawsByPipeline map[string]int // Nome do PSO -> draws
	DrawsByTexture  map[string]int // Nome da textura -> draws
	Cleared         bool
}

func (d *Device) addReport(r Report) {
	d.mu.Lock()
	d.reports = append(d.reports, r)
	d.mu.Unlock()
}

// Reports devolve uma cópia dos relatórios das listas já executadas.
func (d *Device) Reports() []Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Report, len(d.reports))
	copy(out, d.reports)
	return out
}

// Presents retorna quantos presents a timeline já processou.
func (d *Device) Presents() int {
	return d.swap.presented()
}

// SwapChain alterna entre BufferCount back buffers.
type SwapChain struct {
	dev *Device

	mu      sync.Mutex
	width   int
	height  int
	count   int
	current int
	shown   int
}

// Present enfileira o present do back buffer corrente e avança para o próximo.
func (s *SwapChain) Present() error {
	if s.dev.isClosed() {
		return ErrClosed
	}
	s.mu.Lock()
	buf := s.current
	s.current = (s.current + 1) % s.count
	s.mu.Unlock()

	return s.dev.queue.enqueue(op{kind: opPresent, resource: buf})
}

func (s *SwapChain) CurrentBackBuffer() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SwapChain) BufferCount() int { return s.count }

func (s *SwapChain) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize inválido %dx%d", width, height)
	}
	s.mu.Lock()
	s.width, s.height = width, height
	s.current = 0
	s.mu.Unlock()
	return nil
}

func (s *SwapChain) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *SwapChain) markPresented() {
	s.mu.Lock()
	s.shown++
	s.mu.Unlock()
}

func (s *SwapChain) presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// queue type alias para manter util.ThreadSafeQueue fora da API pública.
type opQueue = util.ThreadSafeQueue[op]
