package config

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"Arvoredo/shared/arvore"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Workers = 9
			cfg.ServerURL = "ws://exemplo:8080/ws"
			cfg.LodTiers = cfg.LodTiers[:1]

			if err := cfg.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if !reflect.DeepEqual(cfg, got) {
				t.Errorf("ida e volta:\n%+v\n%+v", cfg, got)
			}
		})
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parcial.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\nwireframe_mode: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(path)
	if cfg.Workers != 2 || !cfg.WireframeMode {
		t.Errorf("valores do arquivo não aplicados: %+v", cfg)
	}
	if cfg.WindowWidth != 1280 || len(cfg.LodTiers) != 3 {
		t.Errorf("padrões perdidos: %+v", cfg)
	}
}

func TestLoadFallbacks(t *testing.T) {
	dir := t.TempDir()
	if cfg := Load(filepath.Join(dir, "nao-existe.json")); !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("arquivo ausente deveria gerar os padrões")
	}
	bad := filepath.Join(dir, "ruim.json")
	if err := os.WriteFile(bad, []byte("{ruim"), 0644); err != nil {
		t.Fatal(err)
	}
	if cfg := Load(bad); !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("arquivo inválido deveria gerar os padrões")
	}
	if _, err := LoadFile(bad); err == nil {
		t.Errorf("LoadFile deveria falhar com JSON inválido")
	}
}

func TestLevels(t *testing.T) {
	levels, err := DefaultConfig().Levels()
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("níveis = %d", len(levels))
	}
	if levels[0].BranchDepth != math.MaxInt32 || levels[0].Reduction != arvore.ReductionNone {
		t.Errorf("nível 0 = %v", levels[0])
	}
	if levels[2].Reduction != arvore.ReductionFlatPoly || levels[2].BranchDepth != 2 {
		t.Errorf("nível 2 = %v", levels[2])
	}

	cfg := DefaultConfig()
	cfg.LodTiers[1].Reduction = "Voxel"
	if _, err := cfg.Levels(); err == nil {
		t.Errorf("redução desconhecida deveria falhar")
	}
}
