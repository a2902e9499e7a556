package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

func main() {
	skipSmoke := flag.Bool("skip-smoke", false, "Não rodar o teste headless depois da compilação")
	smokeFrames := flag.Int("frames", 120, "Frames do teste headless")
	pause := flag.Bool("pause", runtime.GOOS == "windows", "Esperar Enter antes de sair")
	flag.Parse()

	fmt.Println(ColorCyan + "╔══════════════════════════════════════╗" + ColorReset)
	fmt.Println(ColorCyan + "║     VoxelTerrain Native Builder      ║" + ColorReset)
	fmt.Println(ColorCyan + "╚══════════════════════════════════════╝" + ColorReset)

	start := time.Now()

	// 1. Configurar Ambiente
	setupEnvironment()

	// 2. Compilar Cliente
	output := clientOutput()
	if err := buildComponent("CLIENTE (CGO + Raylib)", "cliente", output, true, clientLdflags()); err != nil {
		fatal(err, *pause)
	}

	// 3. Teste headless do binário
	if !*skipSmoke {
		if err := smokeTest(output, *smokeFrames); err != nil {
			fatal(err, *pause)
		}
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Printf(ColorYellow+"Dica: Execute '%s' (ou com -headless -frames N para rodar sem janela)."+ColorReset+"\n", output)

	if *pause {
		fmt.Println("\nPressione Enter para sair...")
		fmt.Scanln()
	}
}

func clientOutput() string {
	if runtime.GOOS == "windows" {
		return filepath.Join("cliente", "voxelterrain.exe")
	}
	return filepath.Join("cliente", "voxelterrain")
}

func clientLdflags() string {
	if runtime.GOOS == "windows" {
		return "-extldflags=-static -s -w -H=windowsgui"
	}
	return "-s -w"
}

func setupEnvironment() {
	fmt.Println(ColorYellow + "\n[0/2] Configurando ambiente de compilação..." + ColorReset)

	// Adicionar MSYS2 ao PATH se estiver no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
		fmt.Println("  - Compilador C: gcc (MSYS2)")
	}
}

func buildComponent(name, dir, output string, useCgo bool, ldflags string) error {
	fmt.Printf(ColorYellow+"\n[1/2] Compilando %s..."+ColorReset+"\n", name)

	cgoValue := "0"
	if useCgo {
		cgoValue = "1"
	}
	os.Setenv("CGO_ENABLED", cgoValue)

	args := []string{"build", "-ldflags", ldflags, "-o", output, "./" + dir}
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("falha ao compilar %s: %v", name, err)
	}

	fmt.Printf(ColorGreen+"  - %s compilado com sucesso -> %s"+ColorReset+"\n", name, output)
	return nil
}

// smokeTest roda o binário no backend headless com semente fixa.
func smokeTest(binary string, frames int) error {
	fmt.Printf(ColorYellow+"\n[2/2] Rodando %d frames headless..."+ColorReset+"\n", frames)

	path, err := filepath.Abs(binary)
	if err != nil {
		return err
	}
	cmd := exec.Command(path, "-headless", "-frames", fmt.Sprint(frames), "-seed", "1")
	cmd.Dir = filepath.Dir(path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("teste headless falhou (detalhes em %s): %v", filepath.Join(cmd.Dir, "voxelterrain.log"), err)
	}
	fmt.Printf(ColorGreen+"  - %d frames em %v"+ColorReset+"\n", frames, time.Since(start).Round(time.Millisecond))
	return nil
}

func fatal(err error, pause bool) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	if pause {
		fmt.Println("Pressione Enter para sair...")
		fmt.Scanln()
	}
	os.Exit(1)
}
