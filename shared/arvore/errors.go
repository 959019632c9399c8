package arvore

import "errors"

var (
	// ErrDepthExceeded indica uma profundidade além da lista efetiva de níveis.
	ErrDepthExceeded = errors.New("profundidade excede os níveis configurados")
	// ErrInvalidParameters indica parâmetros que não formam uma árvore válida.
	ErrInvalidParameters = errors.New("parâmetros inválidos")
	// ErrUnknownField indica uma chave desconhecida ao ler um mapa de parâmetros.
	ErrUnknownField = errors.New("campo desconhecido")
	// ErrUnsupportedVersion indica um mapa gravado por uma versão mais nova.
	ErrUnsupportedVersion = errors.New("versão de formato não suportada")
)
