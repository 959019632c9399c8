package main

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"Arvoredo/shared/proto/arvnet"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	EnableCompression: true,
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	unregister chan *websocket.Conn
	quit       chan struct{}
	mu         sync.Mutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, 64),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("[Hub] Cliente desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			// Copiamos os clientes para escrever fora do lock do hub
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			var targets []clientEntry
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			for _, target := range targets {
				target.lock.Lock()
				err := target.conn.WriteMessage(websocket.BinaryMessage, message)
				target.lock.Unlock()
				if err != nil {
					log.Printf("[Hub] Erro ao enviar para cliente %s: %v", target.conn.RemoteAddr(), err)
					go h.drop(target.conn)
				}
			}
		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// add registra a conexão antes de qualquer escrita nela.
func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
	log.Printf("[Hub] Cliente registrado: %s", conn.RemoteAddr())
}

// drop desregistra uma conexão sem bloquear se o hub já parou.
func (h *Hub) drop(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.quit:
	}
}

// stop encerra o loop e fecha todas as conexões.
func (h *Hub) stop() {
	close(h.quit)
}

// ClientCount retorna o número de conexões registradas.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, messageType int, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("cliente não encontrado no hub")
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(messageType, data)
}

// SendMessage embrulha msg num Envelope e envia para uma conexão.
func (h *Hub) SendMessage(conn *websocket.Conn, msgType arvnet.MessageType, requestID uint64, msg arvnet.Message) {
	data, err := arvnet.Wrap(msgType, requestID, msg)
	if err != nil {
		log.Printf("[Hub] Erro ao serializar %s: %v", msgType, err)
		return
	}
	if err := h.WriteSafe(conn, websocket.BinaryMessage, data); err != nil {
		log.Printf("[Hub] Erro ao enviar %s: %v", msgType, err)
	}
}

// SendError responde uma requisição com ErrorReply.
func (h *Hub) SendError(conn *websocket.Conn, requestID uint64, err error) {
	h.SendMessage(conn, arvnet.MsgError, requestID, &arvnet.ErrorReply{Message: err.Error()})
}

// Broadcast envia msg para todos os clientes.
func (h *Hub) Broadcast(msgType arvnet.MessageType, msg arvnet.Message) {
	data, err := arvnet.Wrap(msgType, 0, msg)
	if err != nil {
		log.Printf("[Hub] Erro ao serializar broadcast %s: %v", msgType, err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}
