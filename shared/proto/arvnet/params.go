package arvnet

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"Arvoredo/shared/arvore"
)

// marshalOpts ordena as chaves dos mapas; bytes iguais para parâmetros iguais.
var marshalOpts = proto.MarshalOptions{Deterministic: true}

// EncodeParams serializa os parâmetros como google.protobuf.Struct, no mesmo
// formato de mapa usado pelos presets.
func EncodeParams(params *arvore.TreeParameters) ([]byte, error) {
	s, err := structpb.NewStruct(params.ToMap())
	if err != nil {
		return nil, fmt.Errorf("falha ao converter parâmetros: %w", err)
	}
	return marshalOpts.Marshal(s)
}

// DecodeParams reconstrói parâmetros a partir de EncodeParams. Campos
// ausentes mantêm os valores padrão.
func DecodeParams(data []byte) (*arvore.TreeParameters, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("falha ao decodificar parâmetros: %w", err)
	}
	params := arvore.NewTreeParameters(arvore.DefaultDepth)
	if err := params.FromMap(s.AsMap()); err != nil {
		return nil, err
	}
	return params, nil
}

// EncodeLevels serializa os níveis de detalhe como google.protobuf.ListValue.
func EncodeLevels(levels []arvore.LevelOfDetailParameters) ([]byte, error) {
	items := make([]any, len(levels))
	for i := range levels {
		items[i] = levels[i].ToMap()
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, fmt.Errorf("falha ao converter níveis: %w", err)
	}
	return marshalOpts.Marshal(list)
}

// DecodeLevels é o inverso de EncodeLevels.
func DecodeLevels(data []byte) ([]arvore.LevelOfDetailParameters, error) {
	var list structpb.ListValue
	if err := proto.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("falha ao decodificar níveis: %w", err)
	}
	levels := make([]arvore.LevelOfDetailParameters, 0, len(list.Values))
	for i, item := range list.AsSlice() {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("nível %d: %w", i, arvore.ErrInvalidParameters)
		}
		lod := arvore.NewLevelOfDetail()
		if err := lod.FromMap(m); err != nil {
			return nil, fmt.Errorf("nível %d: %w", i, err)
		}
		levels = append(levels, lod)
	}
	return levels, nil
}
