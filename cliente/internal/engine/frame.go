package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"VoxelTerrain/cliente/internal/journal"
	"VoxelTerrain/cliente/internal/render"
)

// Stage é uma etapa da máquina de estados do frame.
type Stage int32

const (
	StageIdle Stage = iota
	StageWaitForRingSlot
	StageAnimate
	StageCopyDirtyConstants
	StageSelectPipelineState
	StageRecordCommands
	StageSubmit
	StagePresent
	StageAdvanceFence
)

var stageNames = [...]string{
	"Idle", "WaitForRingSlot", "Animate", "CopyDirtyConstants", "SelectPipelineState",
	"RecordCommands", "Submit", "Present", "AdvanceFence",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

func (e *Engine) enter(s Stage) { e.stage.Store(int32(s)) }

// stageError anota em que etapa o frame falhou.
func stageError(s Stage, frame uint64, err error) error {
	return fmt.Errorf("frame %d, %s: %w", frame, s, err)
}

// Frame executa um frame completo: espera o slot do anel, anima, copia as constantes
// sujas, escolhe o PSO, grava, submete, apresenta e carimba a fence. dt é o tempo desde
// o frame anterior. Qualquer erro é fatal para o chamador.
func (e *Engine) Frame(ctx context.Context, dt time.Duration) (FrameStats, error) {
	if e.stopped.Load() {
		return FrameStats{}, ErrShutdown
	}
	if !e.busy.CompareAndSwap(false, true) {
		return FrameStats{}, ErrReentrantFrame
	}
	defer func() {
		e.enter(StageIdle)
		e.busy.Store(false)
	}()

	st := FrameStats{Frame: e.frameIndex}

	// WaitForRingSlot
	e.enter(StageWaitForRingSlot)
	res, wait, err := e.ring.Advance(ctx, e.frameIndex)
	if err != nil {
		return st, stageError(StageWaitForRingSlot, e.frameIndex, err)
	}
	st.Slot = res.Index
	st.FenceWait = wait

	// Animate
	e.enter(StageAnimate)
	e.elapsed += dt
	e.mats.Animate(float32(dt.Seconds()))
	e.light = e.sky.At(e.elapsed)
	st.Light = e.light
	st.Lighting = e.lighting

	// CopyDirtyConstants
	e.enter(StageCopyDirtyConstants)
	if st.ObjectCopies, err = render.UpdateObjectConstants(res, e.world.Items); err != nil {
		return st, stageError(StageCopyDirtyConstants, e.frameIndex, err)
	}
	if st.MaterialCopies, err = e.mats.UpdateConstants(res); err != nil {
		return st, stageError(StageCopyDirtyConstants, e.frameIndex, err)
	}
	pass := e.passConstants(dt)
	data, err := pass.MarshalBinary()
	if err == nil {
		err = res.PassCB.CopyData(0, data)
	}
	if err != nil {
		return st, stageError(StageCopyDirtyConstants, e.frameIndex, err)
	}

	// SelectPipelineState
	e.enter(StageSelectPipelineState)
	pso := e.psos.ForMode(e.mode)
	st.Mode = e.mode
	st.Pipeline = pso.Desc().Name

	// RecordCommands
	e.enter(StageRecordCommands)
	swap := e.dev.SwapChain()
	w, h := swap.Size()
	if st.Draws, err = e.renderer.Record(render.FrameParams{
		Resource:   res,
		Pipeline:   pso,
		BackBuffer: swap.CurrentBackBuffer(),
		Width:      w,
		Height:     h,
		Clear:      e.light.ClearColor(),
	}, e.layers); err != nil {
		return st, stageError(StageRecordCommands, e.frameIndex, err)
	}

	// Submit
	e.enter(StageSubmit)
	if err := e.dev.Queue().Execute(e.renderer.List()); err != nil {
		return st, stageError(StageSubmit, e.frameIndex, err)
	}

	// Present
	e.enter(StagePresent)
	if err := swap.Present(); err != nil {
		return st, stageError(StagePresent, e.frameIndex, err)
	}

	// AdvanceFence
	e.enter(StageAdvanceFence)
	if st.Fence, err = e.ring.Stamp(res); err != nil {
		return st, stageError(StageAdvanceFence, e.frameIndex, err)
	}
	e.frameIndex++
	e.last = st

	if e.journal != nil {
		if err := e.journal.Record(sampleOf(st)); err != nil {
			log.Printf("[Engine] Amostra do frame %d descartada: %v", st.Frame, err)
		}
	}
	return st, nil
}

func sampleOf(st FrameStats) journal.Sample {
	return journal.Sample{
		Frame:          st.Frame,
		Slot:           st.Slot,
		Fence:          st.Fence,
		FenceWait:      st.FenceWait,
		Draws:          st.Draws,
		ObjectCopies:   st.ObjectCopies,
		MaterialCopies: st.MaterialCopies,
		Mode:           st.Pipeline,
		Lighting:       st.Lighting,
		Angle:          st.Light.Angle,
	}
}
