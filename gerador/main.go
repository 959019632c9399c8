package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/config"
	"Arvoredo/shared/mesher"
	"Arvoredo/shared/presets"
	"Arvoredo/shared/proto/arvnet"

	"github.com/schollz/progressbar/v3"
)

// batch descreve um lote de árvores do mesmo preset.
type batch struct {
	Preset  *arvnet.Preset
	Levels  []arvore.LevelOfDetailParameters
	Seeds   []int64
	OutDir  string
	OBJ     bool
	Workers int
}

// batchReport resume o resultado de um lote.
type batchReport struct {
	Written int
	Failed  int
	Elapsed time.Duration
}

func main() {
	configPath := flag.String("config", "", "arquivo de configuração (json ou yaml)")
	presetName := flag.String("preset", "", "preset a gerar (padrão: default_preset da configuração)")
	seedList := flag.String("seeds", "", "lista de sementes, ex.: 1-100,7")
	start := flag.Int64("start", 0, "primeira semente quando -seeds não é informado")
	count := flag.Int("count", 10, "quantidade de sementes quando -seeds não é informado")
	outDir := flag.String("out", "", "diretório de saída (padrão: output_dir da configuração)")
	workers := flag.Int("workers", 0, "número de workers (padrão: workers da configuração)")
	dbPath := flag.String("db", "", "banco de presets (padrão: database_path da configuração)")
	exportOBJ := flag.Bool("obj", false, "exporta também o nível 0 em Wavefront OBJ")
	flag.Parse()

	log.SetFlags(log.Ltime)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║      Arvoredo - Gerador em Lote      ║")
	log.Println("╚══════════════════════════════════════╝")

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg := config.Load(path)
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	name := *presetName
	if name == "" {
		name = cfg.DefaultPreset
	}

	var seeds []int64
	if *seedList != "" {
		var err error
		seeds, err = parseSeeds(*seedList)
		if err != nil {
			log.Fatalf("[Gerador] %v", err)
		}
	} else {
		if *count < 1 {
			log.Fatalf("[Gerador] -count precisa ser maior que zero")
		}
		seeds = sequentialSeeds(*start, *count)
	}

	store, err := presets.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("[Gerador] Erro ao abrir presets: %v", err)
	}
	defer store.Close()
	if err := store.SeedDefaults(); err != nil {
		log.Printf("[Gerador] Aviso: falha ao gravar presets padrão: %v", err)
	}

	preset, err := store.Load(name)
	if err != nil {
		log.Fatalf("[Gerador] Preset %q: %v", name, err)
	}
	levels := preset.Levels
	if len(levels) == 0 {
		levels, err = cfg.Levels()
		if err != nil {
			log.Fatalf("[Gerador] Configuração de LOD inválida: %v", err)
		}
	}

	b := batch{
		Preset:  preset,
		Levels:  levels,
		Seeds:   seeds,
		OutDir:  cfg.OutputDir,
		OBJ:     *exportOBJ,
		Workers: cfg.Workers,
	}
	log.Printf("[Gerador] %d árvores do preset '%s' em %s (%d workers)", len(seeds), name, b.OutDir, b.Workers)

	bar := progressbar.Default(int64(len(seeds)), "gerando")
	report, err := runBatch(b, bar)
	bar.Close()
	if err != nil {
		log.Fatalf("[Gerador] %v", err)
	}

	log.Printf("[Gerador] Concluído em %v: %d gravadas, %d falhas", report.Elapsed.Round(time.Millisecond), report.Written, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}

// runBatch gera todas as sementes do lote. Uma árvore com falha não
// interrompe as demais; ela só conta em Failed.
func runBatch(b batch, bar *progressbar.ProgressBar) (batchReport, error) {
	var report batchReport
	if b.Preset == nil || b.Preset.Params == nil {
		return report, arvore.ErrInvalidParameters
	}
	if err := os.MkdirAll(b.OutDir, 0755); err != nil {
		return report, fmt.Errorf("falha ao criar diretório de saída: %w", err)
	}

	start := time.Now()
	m := mesher.NewTreeMesher(b.Workers, nil)
	defer m.Stop()

	go func() {
		for _, seed := range b.Seeds {
			req := mesher.Request{
				Key:    fmt.Sprintf("%s/%d", b.Preset.Name, seed),
				Preset: b.Preset.Name,
				Seed:   seed,
				Params: b.Preset.Params,
				Levels: b.Levels,
			}
			if !m.Submit(req) {
				return
			}
		}
	}()

	for range b.Seeds {
		res := <-m.Results()
		if bar != nil {
			bar.Add(1)
		}
		if res.Err != nil {
			report.Failed++
			log.Printf("[Gerador] Semente %d falhou: %v", res.Request.Seed, res.Err)
			continue
		}
		if err := writeTree(b, res); err != nil {
			report.Failed++
			log.Printf("[Gerador] Semente %d: %v", res.Request.Seed, err)
			continue
		}
		report.Written++
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// treeFileName monta o nome base dos arquivos de uma árvore.
func treeFileName(preset string, seed int64) string {
	return fmt.Sprintf("%s-%d", preset, seed)
}

func writeTree(b batch, res mesher.Result) error {
	base := filepath.Join(b.OutDir, treeFileName(b.Preset.Name, res.Request.Seed))

	msg := arvnet.NewMeshResult(b.Preset.Name, res.Request.Seed, res.Mesh)
	data, err := arvnet.Wrap(arvnet.MsgMeshResult, 0, msg)
	if err != nil {
		return fmt.Errorf("falha ao codificar malha: %w", err)
	}
	if err := os.WriteFile(base+".arv", data, 0644); err != nil {
		return fmt.Errorf("falha ao gravar %s.arv: %w", base, err)
	}

	if !b.OBJ {
		return nil
	}
	if len(res.Mesh.Levels) == 0 || res.Mesh.Levels[0].Geometry == nil {
		return errors.New("nível 0 sem geometria para exportar")
	}
	f, err := os.Create(base + ".obj")
	if err != nil {
		return err
	}
	defer f.Close()
	return writeOBJ(f, treeFileName(b.Preset.Name, res.Request.Seed), res.Mesh.Levels[0].Geometry)
}
