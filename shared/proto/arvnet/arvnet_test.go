package arvnet

import (
	"math"
	"reflect"
	"testing"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/meshing"
)

func TestEnvelopeWrap(t *testing.T) {
	data, err := Wrap(MsgGetPreset, 7, &PresetRef{Name: "carvalho"})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	var env Envelope
	if err := env.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if env.Type != MsgGetPreset || env.RequestID != 7 {
		t.Fatalf("envelope = %+v", env)
	}
	var ref PresetRef
	if err := ref.Unmarshal(env.Payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ref.Name != "carvalho" {
		t.Errorf("Name = %q", ref.Name)
	}
}

func TestEnvelopeWithoutPayload(t *testing.T) {
	data, err := Wrap(MsgListPresets, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	var env Envelope
	if err := env.Unmarshal(data); err != nil {
		t.Fatal(err)
	}
	if env.Type != MsgListPresets || len(env.Payload) != 0 {
		t.Errorf("envelope = %+v", env)
	}
}

func TestGenerateRequestParams(t *testing.T) {
	params := arvore.NewTreeParameters(3)
	params.TrunkHeight = 2.5
	params.Seed = -12345
	params.Branches[1].SideJointCount = 5
	levels := []arvore.LevelOfDetailParameters{
		arvore.NewLevelOfDetail(),
		{Distance: 20, Reduction: arvore.ReductionFlatPoly, BranchDepth: 2, RootDepth: 1, MaxRadialSegments: 3},
	}
	req := GenerateRequest{Preset: "x", Params: params, Seed: -99, HasSeed: true, Levels: levels}
	data, err := req.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var got GenerateRequest
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Preset != "x" || got.Seed != -99 || !got.HasSeed {
		t.Errorf("cabeçalho = %+v", got)
	}
	if !reflect.DeepEqual(got.Params, params) {
		t.Errorf("Params = %+v, quer %+v", got.Params, params)
	}
	if !reflect.DeepEqual(got.Levels, levels) {
		t.Errorf("Levels = %v, quer %v", got.Levels, levels)
	}
}

func TestGenerateRequestWithoutParams(t *testing.T) {
	data, err := (&GenerateRequest{Preset: "padrao"}).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var got GenerateRequest
	if err := got.Unmarshal(data); err != nil {
		t.Fatal(err)
	}
	if got.Params != nil || got.Levels != nil || got.HasSeed {
		t.Errorf("esperado somente o preset, obtido %+v", got)
	}
}

func TestMeshResultRoundTrip(t *testing.T) {
	params := arvore.NewTreeParameters(3)
	params.Seed = 5
	params.GenerateLeaves = true
	levels := []arvore.LevelOfDetailParameters{
		arvore.NewLevelOfDetail(),
		{Distance: 30, Reduction: arvore.ReductionFlatPoly, BranchDepth: 1, RootDepth: 0, MaxRadialSegments: 3},
		{Distance: 60, Reduction: arvore.ReductionImpostor},
	}
	res, err := meshing.NewPipeline().Generate(params, levels)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := NewMeshResult("padrao", 5, res).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var got MeshResult
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Preset != "padrao" || got.Seed != 5 || int(got.SegmentCount) != res.Tree.Count() {
		t.Errorf("cabeçalho = %q %d %d", got.Preset, got.Seed, got.SegmentCount)
	}
	if !reflect.DeepEqual(got.Skeleton, res.Skeleton) {
		t.Error("esqueleto diferente")
	}
	if len(got.Levels) != len(levels) {
		t.Fatalf("níveis = %d", len(got.Levels))
	}
	for i, lm := range got.Levels {
		want := res.Levels[i]
		if lm.Level != want.Level {
			t.Errorf("nível %d: %v, quer %v", i, lm.Level, want.Level)
		}
		if !reflect.DeepEqual(lm.Geometry, want.Geometry) {
			t.Errorf("nível %d: geometria diferente", i)
		}
		if !reflect.DeepEqual(lm.Leaves, want.Leaves) {
			t.Errorf("nível %d: folhas diferentes", i)
		}
		if len(lm.Tips) != len(want.Tips) {
			t.Errorf("nível %d: %d pontas, quer %d", i, len(lm.Tips), len(want.Tips))
		}
		if (lm.Err == nil) != (want.Err == nil) {
			t.Errorf("nível %d: erro %v, quer %v", i, lm.Err, want.Err)
		}
	}
}

func TestGeometryWideIndices(t *testing.T) {
	g := &meshing.Geometry{
		Vertices:  []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices32: []uint32{0, 1, 2, math.MaxUint16 + 1},
	}
	got, err := unmarshalGeometry(marshalGeometry(g))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Indices32, g.Indices32) || got.Indices != nil {
		t.Errorf("índices = %v / %v", got.Indices, got.Indices32)
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	data, err := (&PresetList{Names: []string{"a", "", "carvalho"}}).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var full PresetList
	if err := full.Unmarshal(data); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(full.Names, []string{"a", "", "carvalho"}) {
		t.Errorf("Names = %q", full.Names)
	}

	var cut PresetList
	if err := cut.Unmarshal(data[:len(data)-2]); err == nil {
		t.Error("esperado erro para dados truncados")
	}
}

func TestDecodeParamsRejectsNewerVersion(t *testing.T) {
	params := arvore.NewTreeParameters(2)
	data, err := EncodeParams(params)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeParams(data); err != nil {
		t.Fatalf("versão atual rejeitada: %v", err)
	}
	m := params.ToMap()
	m[arvore.VersionKey] = arvore.FormatVersion + 1
	bad := &arvore.TreeParameters{}
	if err := bad.FromMap(m); err == nil {
		t.Error("esperado erro para versão futura")
	}
}
