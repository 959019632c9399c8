package main

import (
	"fmt"
	"os"
	"os/exec"
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
	fmt.Println(ColorCyan + "╔══════════════════════════════════════╗" + ColorReset)
	fmt.Println(ColorCyan + "║       Arvoredo Native Builder        ║" + ColorReset)
	fmt.Println(ColorCyan + "╚══════════════════════════════════════╝" + ColorReset)

	start := time.Now()

	setupEnvironment()

	components := []component{
		// O servidor e o gerador usam sqlite via cgo
		{"SERVIDOR (CGO + Static)", "servidor", exe("servidor/server"), true, "-extldflags=-static -s -w"},
		{"GERADOR (CGO + Static)", "gerador", exe("gerador/gerador"), true, "-extldflags=-static -s -w"},
		{"CLIENTE (CGO + Static + GUI)", "cliente", exe("cliente/client"), true, clientLdflags()},
		{"LAUNCHER (Pure Go)", "launcher", exe("Arvoredo"), false, "-s -w"},
	}
	for _, c := range components {
		if err := buildComponent(c.name, c.dir, c.output, c.cgo, c.ldflags); err != nil {
			fatal(err)
		}
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Printf(ColorYellow+"Dica: Execute o '%s' para abrir servidor e visualizador."+ColorReset+"\n", exe("Arvoredo"))

	fmt.Println("\nPressione Enter para sair...")
	fmt.Scanln()
}

// component é um executável do projeto.
type component struct {
	name    string
	dir     string
	output  string
	cgo     bool
	ldflags string
}

// exe acrescenta a extensão do sistema ao nome do executável.
func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func clientLdflags() string {
	if runtime.GOOS == "windows" {
		return "-extldflags=-static -s -w -H=windowsgui"
	}
	return "-s -w"
}

func setupEnvironment() {
	fmt.Println(ColorYellow + "\n[0] Configurando ambiente de compilação..." + ColorReset)

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
	fmt.Printf(ColorYellow+"\n[+] Compilando %s..."+ColorReset+"\n", name)

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

func fatal(err error) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	fmt.Println("Pressione Enter para sair...")
	fmt.Scanln()
	os.Exit(1)
}
