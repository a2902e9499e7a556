package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"VoxelTerrain/cliente/internal/app"
	"VoxelTerrain/shared/config"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	// Flags de linha de comando
	headlessMode := flag.Bool("headless", false, "Rodar sem janela no dispositivo de software")
	frames := flag.Int("frames", 0, "Frames a rodar no modo headless")
	seed := flag.Int64("seed", 0, "Semente do mundo (0 = pela hora)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	journalPath := flag.String("journal", "", "Gravar estatísticas por frame neste banco SQLite")
	assetDir := flag.String("assets", "", "Diretório com manifest.yaml e texturas")
	flag.Parse()

	// Configurar Log em Arquivo
	f, err := os.OpenFile("voxelterrain.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		defer f.Close()
		log.SetOutput(f)
		log.Println("--- INICIANDO VOXEL TERRAIN ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║         VoxelTerrain v0.1.0          ║")
	log.Println("║   Terreno voxel em tempo real        ║")
	log.Println("╚══════════════════════════════════════╝")

	// Carregar configurações
	cfg := config.Load()

	// Aplicar flags de linha de comando (sobrescrevem o config salvo)
	if *headlessMode {
		cfg.Backend = config.BackendHeadless
	}
	if *frames > 0 {
		cfg.HeadlessFrames = *frames
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}
	if *journalPath != "" {
		cfg.JournalPath = *journalPath
	}
	if *assetDir != "" {
		cfg.AssetDir = *assetDir
	}

	// Criar e rodar a aplicação
	application := app.New(cfg)
	if err := application.Run(); err != nil {
		log.Printf("[App] Encerrado com erro: %v", err)
		if f != nil {
			f.Close()
		}
		os.Exit(1)
	}
}
