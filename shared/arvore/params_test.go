package arvore

import (
	"errors"
	"reflect"
	"testing"
)

func TestEffectiveLevels(t *testing.T) {
	tp := NewTreeParameters(6)

	branches := tp.EffectiveBranches()
	if len(branches) != 4 {
		t.Fatalf("níveis efetivos do tronco = %d, esperado 4", len(branches))
	}
	for i, b := range branches {
		if b != tp.Branches[0] {
			t.Errorf("nível %d não reutiliza o nível 0", i)
		}
	}

	roots := tp.EffectiveRoots()
	want := []*BranchParameters{tp.Roots[0], tp.Roots[1], tp.Roots[1]}
	if !reflect.DeepEqual(roots, want) || roots[2] != tp.Roots[1] {
		t.Errorf("raízes efetivas incorretas")
	}

	tp.Branches[2].Enabled = false
	tp.Branches[1].Inherit = false
	branches = tp.EffectiveBranches()
	if len(branches) != 2 || branches[1] != tp.Branches[1] {
		t.Errorf("desabilitar o nível 2 deveria encerrar a lista após o nível 1")
	}
}

func TestTreeParametersMapRoundTrip(t *testing.T) {
	src := NewTreeParameters(0)
	src.Seed = 99
	src.GenerateLeaves = true
	src.Branches[1].Inherit = false
	src.Branches[1].Twist = 0.25
	src.Roots[0].SideJointCount = 7

	m := src.ToMap()
	if m[VersionKey] != FormatVersion {
		t.Errorf("versão = %v", m[VersionKey])
	}

	dst := NewTreeParameters(0)
	if err := dst.FromMap(m); err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if !reflect.DeepEqual(src, dst) {
		t.Errorf("ida e volta alterou os parâmetros:\n%+v\n%+v", src, dst)
	}
}

func TestFromMapAcceptsFloat64(t *testing.T) {
	p := NewBranchParameters()
	err := p.FromMap(map[string]any{
		VersionKey:       float64(1),
		"radialSegments": float64(9),
		"taper":          float64(0.5),
		"hasEndJoint":    true,
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if p.RadialSegments != 9 || p.Taper != 0.5 || !p.HasEndJoint {
		t.Errorf("valores não aplicados: %+v", p)
	}
}

func TestFromMapErrors(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]any
		want error
	}{
		{"campo desconhecido", map[string]any{"bogus": 1}, ErrUnknownField},
		{"tipo errado", map[string]any{"taper": "alto"}, ErrInvalidParameters},
		{"versão futura", map[string]any{VersionKey: 2}, ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBranchParameters().FromMap(tt.m)
			if !errors.Is(err, tt.want) {
				t.Errorf("erro = %v, esperado %v", err, tt.want)
			}
		})
	}
}

func TestFromMapResizesLevels(t *testing.T) {
	tp := NewTreeParameters(0)
	err := tp.FromMap(map[string]any{
		"branches": []any{
			map[string]any{"inherit": false, "taper": 0.9},
			map[string]any{},
		},
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if len(tp.Branches) != 2 {
		t.Fatalf("níveis = %d, esperado 2", len(tp.Branches))
	}
	if tp.Branches[0].Taper != float32(0.9) {
		t.Errorf("taper = %f", tp.Branches[0].Taper)
	}

	err = tp.FromMap(map[string]any{
		"branches": []any{map[string]any{}, map[string]any{}, map[string]any{"lengthSegments": 2}},
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if len(tp.Branches) != 3 || tp.Branches[2].LengthSegments != 2 || tp.Branches[2].RadialSegments != 6 {
		t.Errorf("novo nível deveria partir dos padrões: %+v", tp.Branches[2])
	}
}

func TestLevelOfDetailMap(t *testing.T) {
	lod := LevelOfDetailParameters{Distance: 30, Reduction: ReductionFlatPoly, BranchDepth: 1, RootDepth: 0, MaxRadialSegments: 3}
	m := lod.ToMap()
	if m["reduction"] != "Flat-poly" {
		t.Errorf("reduction = %v", m["reduction"])
	}
	var back LevelOfDetailParameters
	if err := back.FromMap(m); err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if back != lod {
		t.Errorf("ida e volta: %v != %v", back, lod)
	}
}

func TestSelectLevel(t *testing.T) {
	levels := []LevelOfDetailParameters{
		{Distance: 50, Reduction: ReductionFlatPoly},
		{Distance: 0},
		{Distance: 20},
	}
	tests := []struct {
		distance float32
		want     int
	}{
		{0, 1},
		{10, 1},
		{20, 2},
		{49.9, 2},
		{500, 0},
		{-5, 1},
	}
	for _, tt := range tests {
		if got := SelectLevel(levels, tt.distance); got != tt.want {
			t.Errorf("SelectLevel(%v) = %d, esperado %d", tt.distance, got, tt.want)
		}
	}
	if SelectLevel(nil, 10) != -1 {
		t.Errorf("lista vazia deveria retornar -1")
	}
}
