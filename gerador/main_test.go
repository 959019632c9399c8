package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/meshing"
	"Arvoredo/shared/proto/arvnet"

	"github.com/schollz/progressbar/v3"
)

func testBatch(t *testing.T, seeds ...int64) batch {
	t.Helper()
	return batch{
		Preset:  &arvnet.Preset{Name: "teste", Params: arvore.NewTreeParameters(2)},
		Levels:  []arvore.LevelOfDetailParameters{arvore.NewLevelOfDetail()},
		Seeds:   seeds,
		OutDir:  filepath.Join(t.TempDir(), "saida"),
		OBJ:     true,
		Workers: 2,
	}
}

func TestRunBatchWritesFiles(t *testing.T) {
	b := testBatch(t, 1, 2, 3)
	report, err := runBatch(b, progressbar.DefaultSilent(int64(len(b.Seeds))))
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if report.Written != 3 || report.Failed != 0 {
		t.Fatalf("relatório = %+v", report)
	}

	for _, seed := range b.Seeds {
		base := filepath.Join(b.OutDir, treeFileName("teste", seed))
		data, err := os.ReadFile(base + ".arv")
		if err != nil {
			t.Fatalf("arquivo .arv ausente: %v", err)
		}
		var env arvnet.Envelope
		if err := env.Unmarshal(data); err != nil {
			t.Fatalf("envelope: %v", err)
		}
		if env.Type != arvnet.MsgMeshResult {
			t.Fatalf("tipo = %v", env.Type)
		}
		var mr arvnet.MeshResult
		if err := mr.Unmarshal(env.Payload); err != nil {
			t.Fatalf("malha: %v", err)
		}
		if mr.Seed != seed || mr.Preset != "teste" || len(mr.Levels) != 1 {
			t.Errorf("semente %d: conteúdo inesperado (seed %d, preset %q, %d níveis)", seed, mr.Seed, mr.Preset, len(mr.Levels))
		}

		obj, err := os.ReadFile(base + ".obj")
		if err != nil {
			t.Fatalf("arquivo .obj ausente: %v", err)
		}
		if !strings.Contains(string(obj), "\nf ") {
			t.Errorf("semente %d: OBJ sem faces", seed)
		}
	}
}

func TestRunBatchInvalidPreset(t *testing.T) {
	b := testBatch(t, 1)
	b.Preset.Params = nil
	if _, err := runBatch(b, nil); err == nil {
		t.Fatal("runBatch deveria falhar sem parâmetros")
	}
}

func TestRunBatchCountsFailures(t *testing.T) {
	b := testBatch(t, 1, 2)
	lod := arvore.NewLevelOfDetail()
	lod.Reduction = arvore.ReductionImpostor
	b.Levels = []arvore.LevelOfDetailParameters{lod}

	// Impostor não gera geometria, então o OBJ do nível 0 falha.
	report, err := runBatch(b, nil)
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if report.Written != 0 || report.Failed != 2 {
		t.Fatalf("relatório = %+v", report)
	}
}

func TestWriteOBJ(t *testing.T) {
	g := &meshing.Geometry{
		Mode:     meshing.Triangles,
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:      []float32{0, 0, 1, 0, 0, 1},
		Indices:  []uint16{0, 1, 2},
	}
	var sb strings.Builder
	if err := writeOBJ(&sb, "tri", g); err != nil {
		t.Fatalf("writeOBJ: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"o tri\n", "v 1 0 0\n", "vn 0 0 1\n", "vt 0 1\n", "f 1/1/1 2/2/2 3/3/3\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("OBJ sem %q:\n%s", want, out)
		}
	}

	if err := writeOBJ(&sb, "linhas", &meshing.Geometry{Mode: meshing.Lines}); err == nil {
		t.Error("writeOBJ deveria recusar linhas")
	}
}
