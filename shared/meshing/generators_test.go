package meshing

import (
	"errors"
	"math"
	"testing"

	"Arvoredo/shared/arvore"

	"github.com/go-gl/mathgl/mgl32"
)

func testTree(t *testing.T, seed int64) (*arvore.Tree, *arvore.TreeParameters) {
	t.Helper()
	params := arvore.NewTreeParameters(0)
	tree, err := arvore.GenerateWithSeed(seed, params)
	if err != nil {
		t.Fatalf("GenerateWithSeed: %v", err)
	}
	return tree, params
}

func lodWithDepth(branchDepth int) arvore.LevelOfDetailParameters {
	lod := arvore.NewLevelOfDetail()
	lod.BranchDepth = branchDepth
	return lod
}

func checkFinite(t *testing.T, name string, buf []float32) {
	t.Helper()
	for i, f := range buf {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			t.Fatalf("%s[%d] não é finito: %f", name, i, f)
		}
	}
}

func TestSkinnedFullTree(t *testing.T) {
	tree, params := testTree(t, 3)
	geom, tips, err := NewSkinnedGenerator().Generate(tree, arvore.NewLevelOfDetail(), 0,
		float32(params.TextureURepeat), params.TextureVScale)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if geom == nil {
		t.Fatal("geometria nil")
	}
	n := geom.VertexCount()
	if len(geom.Normals) != n*3 || len(geom.UVs) != n*2 || len(geom.Tangents) != n*4 {
		t.Errorf("buffers incompletos para %d vértices", n)
	}
	checkFinite(t, "Vertices", geom.Vertices)
	checkFinite(t, "Normals", geom.Normals)
	checkFinite(t, "UVs", geom.UVs)
	for i := 0; i < geom.IndexCount(); i++ {
		if idx := geom.Index(i); idx < 0 || idx >= n {
			t.Fatalf("índice %d fora do intervalo: %d", i, idx)
		}
	}
	if len(tips) != tree.LeafCount(arvore.TrunkIndex) {
		t.Errorf("pontas = %d, esperado %d", len(tips), tree.LeafCount(arvore.TrunkIndex))
	}
}

func TestSkinnedLodCutoff(t *testing.T) {
	tree, params := testTree(t, 11)
	gen := NewSkinnedGenerator()
	uRepeat, vScale := float32(params.TextureURepeat), params.TextureVScale

	low, lowTips, err := gen.Generate(tree, lodWithDepth(0), 0, uRepeat, vScale)
	if err != nil {
		t.Fatalf("branchDepth 0: %v", err)
	}
	high, highTips, err := gen.Generate(tree, lodWithDepth(3), 0, uRepeat, vScale)
	if err != nil {
		t.Fatalf("branchDepth 3: %v", err)
	}
	if low.TriangleCount() >= high.TriangleCount() {
		t.Errorf("triângulos: profundidade 0 = %d, profundidade 3 = %d", low.TriangleCount(), high.TriangleCount())
	}

	leaves := tree.LeafCount(arvore.TrunkIndex)
	if lowTips == nil || len(lowTips) != leaves || len(highTips) != leaves {
		t.Fatalf("pontas: %d e %d, esperado %d", len(lowTips), len(highTips), leaves)
	}
	// A ponta avança igual com ou sem geometria.
	for i := range lowTips {
		if !lowTips[i].Pos.ApproxEqualThreshold(highTips[i].Pos, 1e-3) {
			t.Errorf("ponta %d: %v != %v", i, lowTips[i].Pos, highTips[i].Pos)
		}
	}
}

func TestSkinnedRadialLimit(t *testing.T) {
	tree, params := testTree(t, 0)
	full := arvore.NewLevelOfDetail()
	reduced := arvore.NewLevelOfDetail()
	reduced.MaxRadialSegments = 3

	g1, _, err := NewSkinnedGenerator().Generate(tree, full, 0, float32(params.TextureURepeat), params.TextureVScale)
	if err != nil {
		t.Fatal(err)
	}
	g2, _, err := NewSkinnedGenerator().Generate(tree, reduced, 0, float32(params.TextureURepeat), params.TextureVScale)
	if err != nil {
		t.Fatal(err)
	}
	if g2.VertexCount() >= g1.VertexCount() {
		t.Errorf("menos radiais deveriam gerar menos vértices: %d >= %d", g2.VertexCount(), g1.VertexCount())
	}
}

func firstCurveChild(seg *arvore.Segment) *arvore.Segment {
	var found *arvore.Segment
	seg.Walk(func(s *arvore.Segment, _ int) {
		if found != nil {
			return
		}
		for _, c := range s.Children {
			if c.ParentConnection == arvore.Curve {
				found = c
				return
			}
		}
	})
	return found
}

func TestAbutUnsupported(t *testing.T) {
	tree, params := testTree(t, 5)
	child := firstCurveChild(tree.Trunk())
	if child == nil {
		t.Fatal("nenhum galho lateral encontrado")
	}
	child.ParentConnection = arvore.Abut

	uRepeat, vScale := float32(params.TextureURepeat), params.TextureVScale
	geom, _, err := NewSkinnedGenerator().Generate(tree, arvore.NewLevelOfDetail(), 0, uRepeat, vScale)
	if !errors.Is(err, ErrAbutUnsupported) || geom != nil {
		t.Errorf("skinned: erro = %v, geometria = %v", err, geom)
	}
	geom, _, err = NewFlatPolyGenerator().Generate(tree, arvore.NewLevelOfDetail(), 0, uRepeat, vScale)
	if !errors.Is(err, ErrAbutUnsupported) || geom != nil {
		t.Errorf("flat-poly: erro = %v, geometria = %v", err, geom)
	}
}

func TestFlatPoly(t *testing.T) {
	tree, params := testTree(t, 8)
	geom, tips, err := NewFlatPolyGenerator().Generate(tree, arvore.NewLevelOfDetail(), 0,
		float32(params.TextureURepeat), params.TextureVScale)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got, want := geom.TriangleCount(), 2*tree.Count(); got != want {
		t.Errorf("triângulos = %d, esperado %d (dois por segmento)", got, want)
	}
	if len(geom.Sizes) != geom.VertexCount() {
		t.Errorf("Sizes = %d, vértices = %d", len(geom.Sizes), geom.VertexCount())
	}
	if len(geom.Tangents) != 0 {
		t.Errorf("flat-poly não deveria ter tangentes")
	}
	checkFinite(t, "Vertices", geom.Vertices)
	checkFinite(t, "Normals", geom.Normals)

	_, skinnedTips, err := NewSkinnedGenerator().Generate(tree, arvore.NewLevelOfDetail(), 0,
		float32(params.TextureURepeat), params.TextureVScale)
	if err != nil {
		t.Fatal(err)
	}
	if len(tips) != len(skinnedTips) {
		t.Fatalf("pontas flat-poly = %d, skinned = %d", len(tips), len(skinnedTips))
	}
	for i := range tips {
		if !tips[i].Pos.ApproxEqualThreshold(skinnedTips[i].Pos, 1e-3) {
			t.Errorf("ponta %d: %v != %v", i, tips[i].Pos, skinnedTips[i].Pos)
		}
	}
}

func TestFlatPolyNoDepth(t *testing.T) {
	tree, params := testTree(t, 8)
	lod := lodWithDepth(0)
	lod.RootDepth = 0
	geom, tips, err := NewFlatPolyGenerator().Generate(tree, lod, 0, float32(params.TextureURepeat), params.TextureVScale)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if geom != nil {
		t.Errorf("sem profundidade renderizada a geometria deveria ser nil")
	}
	if len(tips) != tree.LeafCount(arvore.TrunkIndex) {
		t.Errorf("pontas = %d", len(tips))
	}
}

func TestLineGenerator(t *testing.T) {
	tree, _ := testTree(t, 2)
	geom := LineGenerator{}.Generate(tree)
	if geom.Mode != Lines {
		t.Errorf("modo = %v", geom.Mode)
	}
	if got, want := geom.VertexCount(), 2*tree.Count(); got != want {
		t.Errorf("pontos = %d, esperado %d", got, want)
	}
	if !geom.Position(0).ApproxEqualThreshold(mgl32.Vec3{}, 1e-6) {
		t.Errorf("primeiro ponto deveria ser a origem: %v", geom.Position(0))
	}
	if (LineGenerator{}).Generate(&arvore.Tree{}) != nil {
		t.Errorf("árvore vazia deveria gerar nil")
	}
}

func TestLeavesGenerator(t *testing.T) {
	tips := []Tip{
		{Pos: mgl32.Vec3{0, 1, 0}, Dir: mgl32.Vec3{0, 1, 0}},
		{Pos: mgl32.Vec3{2, 3, 0}, Dir: mgl32.Vec3{1, 0, 0}},
	}
	g := LeavesGenerator{}.Generate(tips, 0.5)
	if g.VertexCount() != 8 || len(g.Indices) != 12 {
		t.Fatalf("vértices = %d, índices = %d", g.VertexCount(), len(g.Indices))
	}
	for i := 0; i < 4; i++ {
		if g.Position(i) != tips[0].Pos {
			t.Errorf("canto %d fora da ponta", i)
		}
	}
	if g.Sizes[5] != 0.5 {
		t.Errorf("tamanho = %f", g.Sizes[5])
	}
	lo, hi := g.Bounds()
	if !lo.ApproxEqualThreshold(mgl32.Vec3{-0.3, 0.7, -0.3}, 1e-5) || !hi.ApproxEqualThreshold(mgl32.Vec3{2.3, 3.3, 0.3}, 1e-5) {
		t.Errorf("bounds = %v..%v", lo, hi)
	}
	// Primeira célula: negativa em U e V.
	if g.UVs2[0] != -0.75 || g.UVs2[1] != -0.75 {
		t.Errorf("célula do atlas = (%f, %f)", g.UVs2[0], g.UVs2[1])
	}
	if (LeavesGenerator{}).Generate(nil, 1) != nil {
		t.Errorf("sem pontas deveria gerar nil")
	}
}

func TestPipeline(t *testing.T) {
	params := arvore.NewTreeParameters(0)
	params.GenerateLeaves = true
	flat := arvore.NewLevelOfDetail()
	flat.Reduction = arvore.ReductionFlatPoly
	flat.Distance = 30
	impostor := arvore.NewLevelOfDetail()
	impostor.Reduction = arvore.ReductionImpostor
	impostor.Distance = 80

	res, err := NewPipeline().Generate(params, []arvore.LevelOfDetailParameters{arvore.NewLevelOfDetail(), flat, impostor})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Levels) != 3 {
		t.Fatalf("níveis = %d", len(res.Levels))
	}
	for i, m := range res.Levels[:2] {
		if m.Err != nil || m.Geometry == nil || m.Leaves == nil {
			t.Errorf("nível %d incompleto: %+v", i, m.Err)
		}
	}
	if !errors.Is(res.Levels[2].Err, ErrReductionUnsupported) || res.Levels[2].Geometry != nil {
		t.Errorf("impostor: erro = %v", res.Levels[2].Err)
	}
	if res.Levels[0].Geometry.TriangleCount() <= res.Levels[1].Geometry.TriangleCount() {
		t.Errorf("flat-poly deveria ter menos triângulos que skinned")
	}
	if res.Skeleton == nil || res.Skeleton.VertexCount() != 2*res.Tree.Count() {
		t.Errorf("esqueleto ausente ou incompleto")
	}
}

func TestGeometryClone(t *testing.T) {
	g := LeavesGenerator{}.Generate([]Tip{{Pos: mgl32.Vec3{1, 1, 1}}}, 1)
	c := g.Clone()
	c.Vertices[0] = 99
	if g.Vertices[0] == 99 {
		t.Errorf("Clone compartilha memória com o original")
	}
	if c.BoundsPadding != g.BoundsPadding || len(c.UVs2) != len(g.UVs2) {
		t.Errorf("Clone incompleto")
	}
}
