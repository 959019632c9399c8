package client

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"Arvoredo/shared/proto/arvnet"

	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("não conectado ao servidor")

// NetworkClient lida com a comunicação com o servidor Arvoredo
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex
	nextID    atomic.Uint64

	// Callbacks para o App (chamados na goroutine de leitura)
	OnStatus  func(status *arvnet.ServerStatus)
	OnMesh    func(requestID uint64, res *arvnet.MeshResult)
	OnPresets func(names []string)
	OnPreset  func(requestID uint64, p *arvnet.Preset)
	OnError   func(requestID uint64, err error)
}

func NewNetworkClient(url string) *NetworkClient {
	return &NetworkClient{url: url}
}

// Connect tenta conectar algumas vezes antes de desistir.
func (c *NetworkClient) Connect(maxRetries int) error {
	dialer := websocket.Dialer{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
	}

	var conn *websocket.Conn
	var err error
	for i := 0; i < maxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, maxRetries, c.url)
		conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		if i+1 < maxRetries {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Printf("[Network] ERRO CRÍTICO após %d tentativas: %v", maxRetries, err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Close encerra a conexão.
func (c *NetworkClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.writeMu.Lock()
		c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.conn.Close()
	}
	c.connected = false
}

// RequestTree pede uma árvore ao servidor e retorna o id da requisição.
func (c *NetworkClient) RequestTree(req *arvnet.GenerateRequest) (uint64, error) {
	return c.Send(arvnet.MsgGenerate, req)
}

// RequestPresets pede a lista de presets.
func (c *NetworkClient) RequestPresets() error {
	_, err := c.Send(arvnet.MsgListPresets, nil)
	return err
}

// RequestPreset pede os parâmetros de um preset.
func (c *NetworkClient) RequestPreset(name string) (uint64, error) {
	return c.Send(arvnet.MsgGetPreset, &arvnet.PresetRef{Name: name})
}

// SavePreset grava um preset no servidor.
func (c *NetworkClient) SavePreset(p *arvnet.Preset) error {
	_, err := c.Send(arvnet.MsgSavePreset, p)
	return err
}

// Send envia msg num Envelope com um id novo.
func (c *NetworkClient) Send(msgType arvnet.MessageType, msg arvnet.Message) (uint64, error) {
	if !c.IsConnected() {
		return 0, ErrNotConnected
	}

	id := c.nextID.Add(1)
	data, err := arvnet.Wrap(msgType, id, msg)
	if err != nil {
		log.Printf("[Network] Erro ao serializar %s: %v", msgType, err)
		return 0, err
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.BinaryMessage, data)
	c.writeMu.Unlock()

	if err != nil {
		log.Printf("[Network] Erro ao enviar mensagem: %v", err)
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		return 0, err
	}
	return id, nil
}

func (c *NetworkClient) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("[Network] Conexão perdida: %v", err)
			break
		}

		var env arvnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}

		c.handleMessage(&env)
	}
}

func (c *NetworkClient) handleMessage(env *arvnet.Envelope) {
	switch env.Type {
	case arvnet.MsgStatus:
		var status arvnet.ServerStatus
		if err := status.Unmarshal(env.Payload); err == nil {
			log.Printf("[Network] Servidor v%s: %d presets, %d workers", status.Version, status.PresetCount, status.Workers)
			if c.OnStatus != nil {
				c.OnStatus(&status)
			}
		}
	case arvnet.MsgMeshResult:
		var res arvnet.MeshResult
		if err := res.Unmarshal(env.Payload); err != nil {
			log.Printf("[Network] Erro ao decodificar malha: %v", err)
			return
		}
		log.Printf("[Network] Malha recebida: %s seed=%d, %d níveis", res.Preset, res.Seed, len(res.Levels))
		if c.OnMesh != nil {
			c.OnMesh(env.RequestID, &res)
		}
	case arvnet.MsgPresetList:
		var list arvnet.PresetList
		if err := list.Unmarshal(env.Payload); err == nil && c.OnPresets != nil {
			c.OnPresets(list.Names)
		}
	case arvnet.MsgPreset:
		var p arvnet.Preset
		if err := p.Unmarshal(env.Payload); err != nil {
			log.Printf("[Network] Erro ao decodificar preset: %v", err)
			return
		}
		if c.OnPreset != nil {
			c.OnPreset(env.RequestID, &p)
		}
	case arvnet.MsgError:
		var e arvnet.ErrorReply
		if err := e.Unmarshal(env.Payload); err == nil {
			log.Printf("[Network] Erro do servidor (req %d): %s", env.RequestID, e.Message)
			if c.OnError != nil {
				c.OnError(env.RequestID, e.Err())
			}
		}
	}
}
