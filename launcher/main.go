package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"Arvoredo/shared/config"
)

func main() {
	addr := flag.String("addr", "", "endereço do servidor (padrão: listen_addr da configuração)")
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║          Arvoredo Launcher           ║")
	fmt.Println("╚══════════════════════════════════════╝")

	cfg := config.Load(config.ConfigPath())
	listen := cfg.ListenAddr
	if *addr != "" {
		listen = *addr
	}

	fmt.Println("[1/2] Iniciando Servidor...")
	serverCmd := exec.Command(absPath(exe("servidor/server")), "-addr", listen)
	serverCmd.Dir = "servidor"
	serverCmd.Stdout = os.Stdout
	serverCmd.Stderr = os.Stderr
	if err := serverCmd.Start(); err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	fmt.Println("Aguardando o servidor aceitar conexões...")
	if err := waitListening(dialAddr(listen), 15*time.Second); err != nil {
		serverCmd.Process.Kill()
		log.Fatalf("Servidor não respondeu: %v", err)
	}

	fmt.Println("[2/2] Abrindo Cliente...")
	clientCmd := exec.Command(absPath(exe("cliente/client")), "-server", "ws://"+dialAddr(listen)+"/ws")
	clientCmd.Dir = "cliente"
	if err := clientCmd.Run(); err != nil {
		fmt.Printf("ERRO: o cliente terminou com falha: %v\n", err)
	}

	// O servidor vive enquanto o visualizador estiver aberto
	serverCmd.Process.Kill()
	serverCmd.Wait()
	fmt.Println("Arvoredo encerrado.")
}

func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// dialAddr troca um host vazio (":8080") por localhost.
func dialAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func waitListening(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(250 * time.Millisecond)
	}
}
