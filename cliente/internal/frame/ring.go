// Package frame implementa o anel de frame resources que deixa a CPU gravar até
// RingDepth-1 frames à frente da GPU sem sobrescrever dados que ela ainda lê.
package frame

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"VoxelTerrain/cliente/internal/cbuffer"
	"VoxelTerrain/cliente/internal/gpu"
)

// ErrFenceRegressed indica uma tentativa de carimbar um valor de fence menor que o anterior.
var ErrFenceRegressed = errors.New("frame: valor de fence regrediu")

// Resource é um slot do anel: memória de comandos, regiões de upload e a fence do último uso.
type Resource struct {
	Index      int
	Allocator  *gpu.CommandAllocator
	PassCB     *UploadBuffer
	ObjectCB   *UploadBuffer
	MaterialCB *UploadBuffer

	// Fence é o valor que a GPU precisa atingir antes do slot ser reutilizado. Zero = nunca usado.
	Fence uint64
}

// Ring mantém os RingDepth slots e a fence da fila.
type Ring struct {
	dev       gpu.Device
	resources [RingDepth]*Resource
	fence     *gpu.Fence
	counter   uint64 // Último valor de fence emitido
}

// NewRing aloca os slots. passCount costuma ser 1; objects e materials são as contagens
// de render items e materiais.
func NewRing(dev gpu.Device, passCount, objects, materials int) (*Ring, error) {
	fence, err := dev.CreateFence(0)
	if err != nil {
		return nil, fmt.Errorf("criando fence: %w", err)
	}

	r := &Ring{dev: dev, fence: fence}
	for i := range r.resources {
		res := &Resource{
			Index:     i,
			Allocator: gpu.NewCommandAllocator(fmt.Sprintf("frame%d", i)),
		}
		r.resources[i] = res
		if res.PassCB, err = NewUploadBuffer(dev, fmt.Sprintf("frame%d.pass", i), passCount, cbuffer.PassConstantsSize, true); err != nil {
			r.release()
			return nil, err
		}
		if res.ObjectCB, err = NewUploadBuffer(dev, fmt.Sprintf("frame%d.object", i), objects, cbuffer.ObjectConstantsSize, true); err != nil {
			r.release()
			return nil, err
		}
		if res.MaterialCB, err = NewUploadBuffer(dev, fmt.Sprintf("frame%d.material", i), materials, cbuffer.MaterialConstantsSize, true); err != nil {
			r.release()
			return nil, err
		}
	}

	log.Printf("[Ring] %d frame resources criados (%d objetos, %d materiais, stride obj=%d mat=%d pass=%d)",
		RingDepth, objects, materials, cbuffer.ObjectStride, cbuffer.MaterialStride, cbuffer.PassStride)
	return r, nil
}

// Acquire devolve o slot frameIndex mod RingDepth.
// Não espera a GPU: chame WaitForSlot antes de escrever nele.
func (r *Ring) Acquire(frameIndex uint64) *Resource {
	return r.resources[frameIndex%RingDepth]
}

// Resource devolve o slot i.
func (r *Ring) Resource(i int) *Resource { return r.resources[i] }

// WaitForSlot bloqueia até a GPU terminar o último trabalho que usou res.
// Devolve quanto tempo ficou bloqueado.
func (r *Ring) WaitForSlot(ctx context.Context, res *Resource) (time.Duration, error) {
	if res.Fence == 0 || r.fence.Completed() >= res.Fence {
		return 0, nil
	}
	start := time.Now()
	if err := r.fence.Wait(ctx, res.Fence); err != nil {
		return time.Since(start), fmt.Errorf("slot %d: %w", res.Index, err)
	}
	return time.Since(start), nil
}

// Advance é Acquire seguido de WaitForSlot.
func (r *Ring) Advance(ctx context.Context, frameIndex uint64) (*Resource, time.Duration, error) {
	res := r.Acquire(frameIndex)
	wait, err := r.WaitForSlot(ctx, res)
	return res, wait, err
}

// Stamp emite o próximo valor da fence, grava-o no slot e pede à fila que o sinalize
// depois de todo o trabalho já submetido.
func (r *Ring) Stamp(res *Resource) (uint64, error) {
	value := r.counter + 1
	if value <= res.Fence {
		return 0, fmt.Errorf("%w: slot %d tinha %d, novo %d", ErrFenceRegressed, res.Index, res.Fence, value)
	}
	r.counter = value
	res.Fence = value
	if err := r.dev.Queue().Signal(r.fence, value); err != nil {
		return value, fmt.Errorf("sinalizando fence %d: %w", value, err)
	}
	return value, nil
}

// FenceValue é o último valor emitido pela CPU.
func (r *Ring) FenceValue() uint64 { return r.counter }

// Completed é o último valor atingido pela GPU.
func (r *Ring) Completed() uint64 { return r.fence.Completed() }

// Flush espera a GPU ficar ociosa: sinaliza um valor novo e aguarda.
func (r *Ring) Flush(ctx context.Context) error {
	r.counter++
	value := r.counter
	if err := r.dev.Queue().Signal(r.fence, value); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := r.fence.Wait(ctx, value); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Close faz o flush e só então libera os buffers de upload.
func (r *Ring) Close(ctx context.Context) error {
	err := r.Flush(ctx)
	if err != nil {
		log.Printf("[Ring] Flush falhou, buffers mantidos: %v", err)
		return err
	}
	r.release()
	log.Printf("[Ring] Frame resources liberados (fence final %d)", r.counter)
	return nil
}

func (r *Ring) release() {
	for i, res := range r.resources {
		if res == nil {
			continue
		}
		for _, u := range []*UploadBuffer{res.PassCB, res.ObjectCB, res.MaterialCB} {
			if u != nil {
				r.dev.ReleaseBuffer(u.buf)
			}
		}
		r.resources[i] = nil
	}
}
