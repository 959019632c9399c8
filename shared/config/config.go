package config

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"Arvoredo/shared/arvore"

	"gopkg.in/yaml.v3"
)

// LodTier é um nível de detalhe no arquivo de configuração.
// Profundidade negativa significa ilimitada.
type LodTier struct {
	Distance          float32 `json:"distance" yaml:"distance"`
	Reduction         string  `json:"reduction" yaml:"reduction"`
	BranchDepth       int     `json:"branch_depth" yaml:"branch_depth"`
	RootDepth         int     `json:"root_depth" yaml:"root_depth"`
	MaxRadialSegments int     `json:"max_radial_segments" yaml:"max_radial_segments"`
}

// Config armazena as configurações do Arvoredo.
type Config struct {
	// Janela (visualizador)
	WindowWidth  int32  `json:"window_width" yaml:"window_width"`
	WindowHeight int32  `json:"window_height" yaml:"window_height"`
	WindowTitle  string `json:"window_title" yaml:"window_title"`
	TargetFPS    int32  `json:"target_fps" yaml:"target_fps"`

	// Servidor de geração
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	ServerURL  string `json:"server_url" yaml:"server_url"` // Usado pelo cliente; vazio gera localmente

	// Persistência de presets
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// Geração
	DefaultPreset string    `json:"default_preset" yaml:"default_preset"`
	DefaultSeed   int64     `json:"default_seed" yaml:"default_seed"`
	Workers       int       `json:"workers" yaml:"workers"`
	OutputDir     string    `json:"output_dir" yaml:"output_dir"`
	LodTiers      []LodTier `json:"lod_tiers" yaml:"lod_tiers"`

	// Câmera
	CameraDistance float32 `json:"camera_distance" yaml:"camera_distance"`
	ZoomSpeed      float32 `json:"zoom_speed" yaml:"zoom_speed"`

	// Debug
	LogFile       string `json:"log_file" yaml:"log_file"`
	ShowDebugInfo bool   `json:"show_debug_info" yaml:"show_debug_info"`
	WireframeMode bool   `json:"wireframe_mode" yaml:"wireframe_mode"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "Arvoredo",
		TargetFPS:    60,

		ListenAddr: ":8080",
		ServerURL:  "",

		DatabasePath: filepath.Join("saves", "presets.arv.db"),

		DefaultPreset: "padrao",
		DefaultSeed:   0,
		Workers:       4,
		OutputDir:     "saida",
		LodTiers: []LodTier{
			{Distance: 0, Reduction: "None", BranchDepth: -1, RootDepth: -1, MaxRadialSegments: 6},
			{Distance: 15, Reduction: "None", BranchDepth: 3, RootDepth: 2, MaxRadialSegments: 4},
			{Distance: 40, Reduction: "Flat-poly", BranchDepth: 2, RootDepth: 1, MaxRadialSegments: 3},
		},

		CameraDistance: 6,
		ZoomSpeed:      1.0,

		LogFile:       "arvoredo.log",
		ShowDebugInfo: true,
		WireframeMode: false,
	}
}

// Levels converte os níveis configurados para o formato do gerador.
func (c *Config) Levels() ([]arvore.LevelOfDetailParameters, error) {
	levels := make([]arvore.LevelOfDetailParameters, 0, len(c.LodTiers))
	for i, t := range c.LodTiers {
		reduction, err := arvore.ParseReduction(t.Reduction)
		if err != nil {
			return nil, fmt.Errorf("lod_tiers[%d]: %w", i, err)
		}
		levels = append(levels, arvore.LevelOfDetailParameters{
			Distance:          t.Distance,
			Reduction:         reduction,
			BranchDepth:       depthOrUnlimited(t.BranchDepth),
			RootDepth:         depthOrUnlimited(t.RootDepth),
			MaxRadialSegments: max(3, t.MaxRadialSegments),
		})
	}
	return levels, nil
}

func depthOrUnlimited(d int) int {
	if d < 0 {
		return math.MaxInt32
	}
	return d
}

// ConfigPath retorna o caminho padrão do arquivo de configuração, ao lado do executável.
func ConfigPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile lê a configuração de path (YAML por extensão, senão JSON).
// Campos ausentes mantêm os valores padrão.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Load carrega as configurações de path (ConfigPath() se vazio).
// Se o arquivo não existir ou for inválido, retorna as configurações padrão.
func Load(path string) *Config {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := LoadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Config] Usando padrões: %v", err)
		}
		return DefaultConfig()
	}
	return cfg
}

// Save salva as configurações em path (ConfigPath() se vazio).
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
