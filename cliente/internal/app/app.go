package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"VoxelTerrain/cliente/internal/engine"
	"VoxelTerrain/cliente/internal/gpu"
	"VoxelTerrain/cliente/internal/gpu/rlgpu"
	"VoxelTerrain/cliente/internal/journal"
	"VoxelTerrain/shared/config"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Gerando o mundo e criando recursos
	StateViewing                 // Renderizando
	StateFailed                  // Erro fatal, mostrando a mensagem
	StateClosed
)

// shutdownTimeout limita a espera pela GPU no encerramento.
const shutdownTimeout = 5 * time.Second

// fatalDisplay é quanto tempo a mensagem de erro fatal fica na tela.
const fatalDisplay = 5 * time.Second

// App é a aplicação principal do VoxelTerrain.
type App struct {
	Config *config.Config
	State  AppState

	dev      gpu.Device
	engine   *engine.Engine
	journal  *journal.Journal
	seed     int64
	manifest string // De onde o manifesto de assets foi lido

	// Informações de debug
	frameCount int
	lastStats  engine.FrameStats
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config: cfg,
		State:  StateLoading,
		seed:   cfg.Seed,
	}
}

// Seed é a semente usada na geração do mundo (resolvida em Run quando a configuração tem 0).
func (a *App) Seed() int64 { return a.seed }

// Run executa a aplicação no backend configurado. Retorna o erro fatal, se houver,
// depois de esperar a GPU e liberar os recursos.
func (a *App) Run() error {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r) // Re-lança para o runtime mostrar o stack trace
		}
	}()

	switch a.Config.Backend {
	case config.BackendHeadless:
		return a.runHeadless()
	case config.BackendRaylib, "":
		return a.runWindow()
	default:
		return fmt.Errorf("backend desconhecido %q", a.Config.Backend)
	}
}

// runWindow abre a janela raylib e roda o loop até ela ser fechada.
func (a *App) runWindow() error {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	defer rl.CloseWindow()
	rl.SetTraceLogLevel(rl.LogWarning) // Reduz ruído no terminal

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0) // ESC não fecha a janela

	log.Println("[App] Janela inicializada com sucesso")
	log.Printf("[App] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	dev, err := rlgpu.New()
	if err != nil {
		return a.fail(err)
	}
	a.dev = dev
	dev.OnPresent(a.drawHUD)

	if err := a.setup(); err != nil {
		a.shutdown()
		return a.fail(err)
	}

	a.State = StateViewing
	for !rl.WindowShouldClose() {
		if err := a.update(); err != nil {
			a.shutdown()
			return a.fail(err)
		}
	}

	a.shutdown()
	if err := a.Config.Save(); err != nil {
		log.Printf("[App] Erro ao salvar configurações: %v", err)
	}
	return nil
}

// fail registra o erro fatal e o mostra na janela antes de retornar.
func (a *App) fail(err error) error {
	a.State = StateFailed
	log.Printf("[App] ERRO FATAL: %v", err)
	if rl.IsWindowReady() {
		a.drawFatal(err, fatalDisplay)
	}
	return err
}

// shutdown espera a GPU, libera o motor, fecha o journal e o dispositivo, nessa ordem.
func (a *App) shutdown() {
	if a.State == StateClosed {
		return
	}
	log.Println("[App] Finalizando aplicação...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Shutdown(ctx))
	}
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	if a.dev != nil {
		errs = append(errs, a.dev.Close())
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("[App] Erros no encerramento: %v", err)
	}
	a.State = StateClosed
}
