package main

import (
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"Arvoredo/shared/config"
	"Arvoredo/shared/presets"
)

func main() {
	configPath := flag.String("config", "", "arquivo de configuração (json ou yaml)")
	addrFlag := flag.String("addr", "", "endereço de escuta (sobrescreve a configuração)")
	flag.Parse()

	// Garante que o working directory é o mesmo diretório do executável,
	// para que caminhos relativos (saves/, tmp/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Log em arquivo para depuração de crash
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			mw := io.MultiWriter(os.Stdout, logFile)
			log.SetOutput(mw)
		}
	}
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║      Arvoredo SERVER v" + Version + "          ║")
	log.Println("╚══════════════════════════════════════╝")

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg := config.Load(path)
	if *addrFlag != "" {
		cfg.ListenAddr = *addrFlag
	}
	if p := os.Getenv("PORT"); p != "" {
		cfg.ListenAddr = ":" + p
	}

	store, err := presets.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Erro fatal: não foi possível abrir o banco de presets: %v", err)
	}
	defer store.Close()
	if err := store.SeedDefaults(); err != nil {
		log.Printf("Aviso: falha ao gravar presets padrão: %v", err)
	}

	srv, err := NewServer(cfg, store)
	if err != nil {
		log.Fatalf("Erro fatal: %v", err)
	}
	defer srv.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.serveWs)

	// Verifica a porta antes de subir o servidor HTTP
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Printf("╔══════════════════════════════════════════════════════════════╗")
		log.Printf("║ ERRO CRÍTICO: Não foi possível abrir %s.", cfg.ListenAddr)
		log.Printf("║ Provavelmente há outra instância do servidor rodando.        ║")
		log.Printf("╚══════════════════════════════════════════════════════════════╝")
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	log.Printf("Servidor Arvoredo iniciado em %s (%d workers)", cfg.ListenAddr, cfg.Workers)
	if err := http.Serve(ln, mux); err != nil {
		log.Fatalf("Erro fatal no servidor HTTP: %v", err)
	}
}
