package gpu

import (
	"context"
	"fmt"
	"sync"
)

// Fence é um contador monotônico escrito pela timeline da GPU.
type Fence struct {
	mu        sync.Mutex
	completed uint64
	waiters   []fenceWaiter
	err       error
}

type fenceWaiter struct {
	value uint64
	ch    chan struct{}
}

// NewFence cria uma fence com o valor inicial dado.
func NewFence(initial uint64) *Fence {
	return &Fence{completed: initial}
}

// Completed retorna o último valor sinalizado pela GPU.
func (f *Fence) Completed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Signal avança a fence. Chamado pelos backends quando o trabalho anterior termina.
// Valores menores ou iguais ao atual são ignorados.
func (f *Fence) Signal(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if value <= f.completed {
		return
	}
	f.completed = value

	kept := f.waiters[:0]
	for _, w := range f.waiters {
		if w.value <= value {
			close(w.ch)
			continue
		}
		kept = append(kept, w)
	}
	f.waiters = kept
}

// Fail marca o dispositivo como perdido e acorda todos os que esperam.
func (f *Fence) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return
	}
	f.err = err
	for _, w := range f.waiters {
		close(w.ch)
	}
	f.waiters = nil
}

// Err retorna o erro registrado por Fail, se houver.
func (f *Fence) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// SetEventOnCompletion devolve um canal que fecha quando a fence atinge value.
func (f *Fence) SetEventOnCompletion(value uint64) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan struct{})
	if value <= f.completed || f.err != nil {
		close(ch)
		return ch
	}
	f.waiters = append(f.waiters, fenceWaiter{value: value, ch: ch})
	return ch
}

// Wait bloqueia até a fence atingir value, o contexto ser cancelado ou o dispositivo falhar.
func (f *Fence) Wait(ctx context.Context, value uint64) error {
	select {
	case <-f.SetEventOnCompletion(value):
	case <-ctx.Done():
		return fmt.Errorf("esperando fence %d: %w", value, ctx.Err())
	}

	if err := f.Err(); err != nil {
		return fmt.Errorf("esperando fence %d: %w", value, err)
	}
	return nil
}
