package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/config"
	"Arvoredo/shared/mesher"
	"Arvoredo/shared/presets"
	"Arvoredo/shared/proto/arvnet"

	"github.com/gorilla/websocket"
)

const Version = "0.1.0"

// Server liga o hub websocket, o banco de presets e o mesher.
type Server struct {
	hub    *Hub
	store  *presets.Store
	mesher *mesher.TreeMesher
	cfg    *config.Config
	levels []arvore.LevelOfDetailParameters

	// delivered é fechado quando deliverResults termina.
	delivered chan struct{}
}

// NewServer cria o servidor e inicia o hub e a entrega de resultados.
func NewServer(cfg *config.Config, store *presets.Store) (*Server, error) {
	levels, err := cfg.Levels()
	if err != nil {
		return nil, fmt.Errorf("níveis de detalhe da configuração: %w", err)
	}
	s := &Server{
		hub:       newHub(),
		store:     store,
		mesher:    mesher.NewTreeMesher(cfg.Workers, mesher.NewResultStore(64)),
		cfg:       cfg,
		levels:    levels,
		delivered: make(chan struct{}),
	}
	go s.hub.run()
	go s.deliverResults()
	return s, nil
}

// Close para o mesher, espera a entrega dos últimos resultados e para o hub.
func (s *Server) Close() {
	s.mesher.Stop()
	<-s.delivered
	s.hub.stop()
}

// serveWs maneja requisições websocket do peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Erro no upgrade do WebSocket: %v", err)
		return
	}
	s.hub.add(conn)

	count, _ := s.store.Count()
	s.hub.SendMessage(conn, arvnet.MsgStatus, 0, &arvnet.ServerStatus{
		Version:       Version,
		PresetCount:   int32(count),
		Workers:       int32(s.cfg.Workers),
		DefaultPreset: s.cfg.DefaultPreset,
	})

	go func() {
		defer s.hub.drop(conn)

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[WS] Erro ao ler mensagem: %v", err)
				}
				break
			}

			var envelope arvnet.Envelope
			if err := envelope.Unmarshal(message); err != nil {
				log.Printf("[WS] Erro ao desempacotar envelope: %v", err)
				continue
			}
			s.handleClientMessage(conn, &envelope)
		}
	}()
}

func (s *Server) handleClientMessage(conn *websocket.Conn, env *arvnet.Envelope) {
	switch env.Type {
	case arvnet.MsgGenerate:
		var req arvnet.GenerateRequest
		if err := req.Unmarshal(env.Payload); err != nil {
			s.hub.SendError(conn, env.RequestID, err)
			return
		}
		s.handleGenerate(conn, env.RequestID, &req)
	case arvnet.MsgListPresets:
		s.sendPresetList(conn, env.RequestID)
	case arvnet.MsgGetPreset:
		var ref arvnet.PresetRef
		if err := ref.Unmarshal(env.Payload); err != nil {
			s.hub.SendError(conn, env.RequestID, err)
			return
		}
		p, err := s.store.Load(ref.Name)
		if err != nil {
			s.hub.SendError(conn, env.RequestID, err)
			return
		}
		s.hub.SendMessage(conn, arvnet.MsgPreset, env.RequestID, p)
	case arvnet.MsgSavePreset:
		var p arvnet.Preset
		if err := p.Unmarshal(env.Payload); err != nil {
			s.hub.SendError(conn, env.RequestID, err)
			return
		}
		if err := s.store.Save(&p); err != nil {
			s.hub.SendError(conn, env.RequestID, err)
			return
		}
		log.Printf("[WS] Preset salvo: %s", p.Name)
		s.broadcastPresetList()
	case arvnet.MsgDeletePreset:
		var ref arvnet.PresetRef
		if err := ref.Unmarshal(env.Payload); err != nil {
			s.hub.SendError(conn, env.RequestID, err)
			return
		}
		if err := s.store.Delete(ref.Name); err != nil {
			s.hub.SendError(conn, env.RequestID, err)
			return
		}
		s.broadcastPresetList()
	default:
		s.hub.SendError(conn, env.RequestID, fmt.Errorf("tipo de mensagem desconhecido: %s", env.Type))
	}
}

// resolve completa a requisição com o preset, a semente e os níveis padrão.
func (s *Server) resolve(req *arvnet.GenerateRequest) (mesher.Request, error) {
	out := mesher.Request{Preset: req.Preset, Params: req.Params, Levels: req.Levels}
	if out.Preset == "" {
		out.Preset = s.cfg.DefaultPreset
	}
	if out.Params == nil {
		p, err := s.store.Load(out.Preset)
		if err != nil {
			return out, err
		}
		out.Params = p.Params
		if len(out.Levels) == 0 {
			out.Levels = p.Levels
		}
	}
	if len(out.Levels) == 0 {
		out.Levels = s.levels
	}
	out.Seed = out.Params.Seed
	if req.HasSeed {
		out.Seed = req.Seed
	}
	return out, nil
}

func (s *Server) handleGenerate(conn *websocket.Conn, requestID uint64, req *arvnet.GenerateRequest) {
	mreq, err := s.resolve(req)
	if err != nil {
		s.hub.SendError(conn, requestID, err)
		return
	}
	mreq.ID = requestID
	mreq.Owner = conn
	mreq.Key = fmt.Sprintf("%p/%d", conn, requestID)
	if !s.mesher.Enqueue(mreq) {
		s.hub.SendError(conn, requestID, errors.New("fila de geração cheia ou requisição repetida"))
	}
}

func (s *Server) deliverResults() {
	defer close(s.delivered)
	for res := range s.mesher.Results() {
		conn, ok := res.Request.Owner.(*websocket.Conn)
		if !ok {
			continue
		}
		if res.Err != nil {
			log.Printf("[Gerador] Falha em %s (seed=%d): %v", res.Request.Preset, res.Request.Seed, res.Err)
			s.hub.SendError(conn, res.Request.ID, res.Err)
			continue
		}
		if !res.Cached {
			log.Printf("[Gerador] %s seed=%d: %d segmentos em %v", res.Request.Preset, res.Request.Seed, res.Mesh.Tree.Count(), res.Elapsed)
		}
		msg := arvnet.NewMeshResult(res.Request.Preset, res.Request.Seed, res.Mesh)
		s.hub.SendMessage(conn, arvnet.MsgMeshResult, res.Request.ID, msg)
	}
}

func (s *Server) presetList() (*arvnet.PresetList, error) {
	names, err := s.store.List()
	if err != nil {
		return nil, err
	}
	return &arvnet.PresetList{Names: names}, nil
}

func (s *Server) sendPresetList(conn *websocket.Conn, requestID uint64) {
	list, err := s.presetList()
	if err != nil {
		s.hub.SendError(conn, requestID, err)
		return
	}
	s.hub.SendMessage(conn, arvnet.MsgPresetList, requestID, list)
}

func (s *Server) broadcastPresetList() {
	list, err := s.presetList()
	if err != nil {
		log.Printf("[WS] Erro ao listar presets: %v", err)
		return
	}
	s.hub.Broadcast(arvnet.MsgPresetList, list)
}
