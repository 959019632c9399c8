package meshing

import (
	"fmt"
	"log"

	"Arvoredo/shared/arvore"
)

// LodMesh é a malha de um nível de detalhe.
type LodMesh struct {
	Level    arvore.LevelOfDetailParameters
	Geometry *Geometry
	Leaves   *Geometry
	Tips     []Tip
	// Err registra uma redução sem suporte (ErrReductionUnsupported); as
	// outras falhas abortam a geração inteira.
	Err error
}

// Result é a árvore gerada e uma malha por nível de detalhe.
type Result struct {
	Tree   *arvore.Tree
	Levels []LodMesh
	// Skeleton é o esqueleto em linhas, para depuração.
	Skeleton *Geometry
}

// Pipeline gera o esqueleto uma vez e as malhas de todos os níveis.
type Pipeline struct {
	Skinned  *SkinnedGenerator
	FlatPoly *FlatPolyGenerator
	Leaves   LeavesGenerator
	Lines    LineGenerator
	// YOffset desloca a base do tronco no eixo Y.
	YOffset float32
}

// NewPipeline cria um pipeline com os geradores padrão.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Skinned:  NewSkinnedGenerator(),
		FlatPoly: NewFlatPolyGenerator(),
	}
}

// Generate gera a árvore com a semente dos parâmetros.
func (p *Pipeline) Generate(params *arvore.TreeParameters, lods []arvore.LevelOfDetailParameters) (*Result, error) {
	return p.GenerateWithSeed(params.Seed, params, lods)
}

// GenerateWithSeed gera a árvore e uma LodMesh por nível, na ordem recebida.
func (p *Pipeline) GenerateWithSeed(seed int64, params *arvore.TreeParameters, lods []arvore.LevelOfDetailParameters) (*Result, error) {
	tree, err := arvore.GenerateWithSeed(seed, params)
	if err != nil {
		return nil, err
	}
	res := &Result{Tree: tree, Levels: make([]LodMesh, 0, len(lods)), Skeleton: p.Lines.Generate(tree)}
	for i, lod := range lods {
		m, err := p.Mesh(tree, params, lod)
		if err != nil {
			return nil, fmt.Errorf("nível %d (%s): %w", i, lod.Reduction, err)
		}
		res.Levels = append(res.Levels, m)
	}
	return res, nil
}

// Mesh gera a malha de um único nível de detalhe para uma árvore pronta.
func (p *Pipeline) Mesh(tree *arvore.Tree, params *arvore.TreeParameters, lod arvore.LevelOfDetailParameters) (LodMesh, error) {
	m := LodMesh{Level: lod}
	uRepeat := float32(params.TextureURepeat)
	vScale := params.TextureVScale

	var err error
	switch lod.Reduction {
	case arvore.ReductionNone:
		m.Geometry, m.Tips, err = p.skinned().Generate(tree, lod, p.YOffset, uRepeat, vScale)
	case arvore.ReductionFlatPoly:
		m.Geometry, m.Tips, err = p.flatPoly().Generate(tree, lod, p.YOffset, uRepeat, vScale)
	default:
		m.Err = fmt.Errorf("%w: %s", ErrReductionUnsupported, lod.Reduction)
		if Debug {
			log.Printf("[Meshing] %v", m.Err)
		}
		return m, nil
	}
	if err != nil {
		return LodMesh{}, err
	}
	if params.GenerateLeaves {
		m.Leaves = p.Leaves.Generate(m.Tips, params.LeafScale*params.BaseScale)
	}
	return m, nil
}

func (p *Pipeline) skinned() *SkinnedGenerator {
	if p.Skinned == nil {
		return NewSkinnedGenerator()
	}
	return p.Skinned
}

func (p *Pipeline) flatPoly() *FlatPolyGenerator {
	if p.FlatPoly == nil {
		return NewFlatPolyGenerator()
	}
	return p.FlatPoly
}
