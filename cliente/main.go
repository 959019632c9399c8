package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"Arvoredo/cliente/internal/app"
	"Arvoredo/shared/config"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	configPath := flag.String("config", "", "arquivo de configuração (json ou yaml)")
	serverURL := flag.String("server", "", "URL do servidor Arvoredo (ex.: ws://localhost:8080/ws); vazio gera localmente")
	preset := flag.String("preset", "", "preset inicial")
	seed := flag.Int64("seed", -1, "semente inicial")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg := config.Load(path)

	// Log em arquivo
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║           Arvoredo v0.1.0            ║")
	log.Println("║   Gerador procedural de árvores      ║")
	log.Println("╚══════════════════════════════════════╝")

	// Flags sobrescrevem o config salvo
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *preset != "" {
		cfg.DefaultPreset = *preset
	}
	if *seed >= 0 {
		cfg.DefaultSeed = *seed
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

	application := app.New(cfg)
	application.Run()
}
