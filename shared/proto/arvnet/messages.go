package arvnet

import (
	"errors"
	"fmt"

	"Arvoredo/shared/arvore"
)

// MessageType identifica o conteúdo de um Envelope.
type MessageType int32

const (
	MsgUnknown MessageType = iota
	MsgGenerate
	MsgMeshResult
	MsgListPresets
	MsgPresetList
	MsgGetPreset
	MsgPreset
	MsgSavePreset
	MsgDeletePreset
	MsgError
	MsgStatus
)

var messageNames = map[MessageType]string{
	MsgUnknown:      "UNKNOWN",
	MsgGenerate:     "GENERATE",
	MsgMeshResult:   "MESH_RESULT",
	MsgListPresets:  "LIST_PRESETS",
	MsgPresetList:   "PRESET_LIST",
	MsgGetPreset:    "GET_PRESET",
	MsgPreset:       "PRESET",
	MsgSavePreset:   "SAVE_PRESET",
	MsgDeletePreset: "DELETE_PRESET",
	MsgError:        "ERROR",
	MsgStatus:       "STATUS",
}

func (t MessageType) String() string {
	if name, ok := messageNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", int32(t))
}

// Message é qualquer mensagem que pode viajar dentro de um Envelope.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Envelope embrulha toda mensagem trocada pelo websocket.
type Envelope struct {
	Type      MessageType
	RequestID uint64
	Payload   []byte
}

func (m *Envelope) Marshal() ([]byte, error) {
	var e encoder
	e.varint(1, uint64(m.Type))
	e.varint(2, m.RequestID)
	e.bytes(3, m.Payload)
	return e.buf, nil
}

func (m *Envelope) Unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.Type = MessageType(f.varint)
		case 2:
			m.RequestID = f.varint
		case 3:
			m.Payload = f.bytes
		}
		return nil
	})
}

// Wrap serializa msg dentro de um Envelope já codificado.
func Wrap(t MessageType, requestID uint64, msg Message) ([]byte, error) {
	env := Envelope{Type: t, RequestID: requestID}
	if msg != nil {
		payload, err := msg.Marshal()
		if err != nil {
			return nil, fmt.Errorf("falha ao serializar %s: %w", t, err)
		}
		env.Payload = payload
	}
	return env.Marshal()
}

// GenerateRequest pede a geração de uma árvore. Params nulo usa o preset
// nomeado; Levels vazio usa os níveis do servidor.
type GenerateRequest struct {
	Preset  string
	Params  *arvore.TreeParameters
	Seed    int64
	HasSeed bool
	Levels  []arvore.LevelOfDetailParameters
}

func (m *GenerateRequest) Marshal() ([]byte, error) {
	var e encoder
	e.string(1, m.Preset)
	if m.Params != nil {
		b, err := EncodeParams(m.Params)
		if err != nil {
			return nil, err
		}
		e.message(2, b)
	}
	e.int64(3, m.Seed)
	e.bool(4, m.HasSeed)
	if len(m.Levels) > 0 {
		b, err := EncodeLevels(m.Levels)
		if err != nil {
			return nil, err
		}
		e.message(5, b)
	}
	return e.buf, nil
}

func (m *GenerateRequest) Unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Preset = string(f.bytes)
		case 2:
			m.Params, err = DecodeParams(f.bytes)
		case 3:
			m.Seed = int64(f.varint)
		case 4:
			m.HasSeed = f.varint != 0
		case 5:
			m.Levels, err = DecodeLevels(f.bytes)
		}
		return err
	})
}

// Preset é um conjunto nomeado de parâmetros e níveis de detalhe.
type Preset struct {
	Name   string
	Params *arvore.TreeParameters
	Levels []arvore.LevelOfDetailParameters
}

func (m *Preset) Marshal() ([]byte, error) {
	var e encoder
	e.string(1, m.Name)
	if m.Params != nil {
		b, err := EncodeParams(m.Params)
		if err != nil {
			return nil, err
		}
		e.message(2, b)
	}
	if len(m.Levels) > 0 {
		b, err := EncodeLevels(m.Levels)
		if err != nil {
			return nil, err
		}
		e.message(3, b)
	}
	return e.buf, nil
}

func (m *Preset) Unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Name = string(f.bytes)
		case 2:
			m.Params, err = DecodeParams(f.bytes)
		case 3:
			m.Levels, err = DecodeLevels(f.bytes)
		}
		return err
	})
}

// PresetRef referencia um preset pelo nome (GET_PRESET, DELETE_PRESET).
type PresetRef struct {
	Name string
}

func (m *PresetRef) Marshal() ([]byte, error) {
	var e encoder
	e.string(1, m.Name)
	return e.buf, nil
}

func (m *PresetRef) Unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		if f.num == 1 {
			m.Name = string(f.bytes)
		}
		return nil
	})
}

// PresetList lista os nomes dos presets salvos.
type PresetList struct {
	Names []string
}

func (m *PresetList) Marshal() ([]byte, error) {
	var e encoder
	for _, n := range m.Names {
		e.stringForce(1, n)
	}
	return e.buf, nil
}

func (m *PresetList) Unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		if f.num == 1 {
			m.Names = append(m.Names, string(f.bytes))
		}
		return nil
	})
}

// ErrorReply informa uma falha ao processar a requisição.
type ErrorReply struct {
	Message string
}

func (m *ErrorReply) Marshal() ([]byte, error) {
	var e encoder
	e.string(1, m.Message)
	return e.buf, nil
}

func (m *ErrorReply) Unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		if f.num == 1 {
			m.Message = string(f.bytes)
		}
		return nil
	})
}

// Err converte a resposta em error.
func (m *ErrorReply) Err() error {
	return errors.New(m.Message)
}

// ServerStatus é enviado ao cliente logo após a conexão.
type ServerStatus struct {
	Version       string
	PresetCount   int32
	Workers       int32
	DefaultPreset string
}

func (m *ServerStatus) Marshal() ([]byte, error) {
	var e encoder
	e.string(1, m.Version)
	e.varint(2, uint64(m.PresetCount))
	e.varint(3, uint64(m.Workers))
	e.string(4, m.DefaultPreset)
	return e.buf, nil
}

func (m *ServerStatus) Unmarshal(data []byte) error {
	return eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.Version = string(f.bytes)
		case 2:
			m.PresetCount = int32(f.varint)
		case 3:
			m.Workers = int32(f.varint)
		case 4:
			m.DefaultPreset = string(f.bytes)
		}
		return nil
	})
}
