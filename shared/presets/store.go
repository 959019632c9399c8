// Package presets persiste conjuntos nomeados de parâmetros de árvore em SQLite.
package presets

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/proto/arvnet"
)

// PresetModel representa o esquema do banco para um preset
type PresetModel struct {
	Name      string `gorm:"primaryKey"`
	Params    []byte // google.protobuf.Struct (arvnet.EncodeParams)
	Levels    []byte // google.protobuf.ListValue, vazio se o preset não define níveis
	UpdatedAt time.Time
}

// Metadata armazena informações globais do banco
type Metadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

var (
	ErrNotFound    = errors.New("preset não encontrado")
	ErrInvalidName = errors.New("nome de preset inválido")
	ErrClosed      = errors.New("banco de dados não inicializado")
)

// Store guarda os presets num banco SQLite.
type Store struct {
	DB   *gorm.DB
	Path string
}

// Open abre (ou cria) o banco de presets e roda as migrações.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&PresetModel{}, &Metadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	// Um banco gravado por uma versão mais nova não é tocado.
	var meta Metadata
	if err := db.Where(&Metadata{Key: "FormatVersion"}).First(&meta).Error; err == nil {
		if v, _ := strconv.Atoi(meta.Value); v > CurrentFormatVersion {
			closeDB(db)
			return nil, fmt.Errorf("%w: banco na versão %d", arvore.ErrUnsupportedVersion, v)
		}
	}
	db.Save(&Metadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})

	log.Printf("[Presets] Banco de dados SQLite aberto: %s", dbPath)
	return &Store{DB: db, Path: dbPath}, nil
}

// Close fecha a conexão com o banco.
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	err := closeDB(s.DB)
	s.DB = nil
	return err
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func validName(name string) bool {
	return strings.TrimSpace(name) != "" && len(name) <= 64
}

// Save grava (ou substitui) um preset.
func (s *Store) Save(p *arvnet.Preset) error {
	if s.DB == nil {
		return ErrClosed
	}
	if !validName(p.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
	}
	if p.Params == nil {
		return fmt.Errorf("preset %s sem parâmetros: %w", p.Name, arvore.ErrInvalidParameters)
	}

	params, err := arvnet.EncodeParams(p.Params)
	if err != nil {
		return err
	}
	model := PresetModel{Name: p.Name, Params: params}
	if len(p.Levels) > 0 {
		if model.Levels, err = arvnet.EncodeLevels(p.Levels); err != nil {
			return err
		}
	}

	// Upsert (Cria ou Atualiza)
	if err := s.DB.Save(&model).Error; err != nil {
		log.Printf("[Presets] ERRO ao salvar preset %s: %v", p.Name, err)
		return err
	}
	return nil
}

// Load carrega um preset pelo nome. Retorna ErrNotFound se não existir.
func (s *Store) Load(name string) (*arvnet.Preset, error) {
	if s.DB == nil {
		return nil, ErrClosed
	}
	var model PresetModel
	if err := s.DB.First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}

	params, err := arvnet.DecodeParams(model.Params)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	p := &arvnet.Preset{Name: model.Name, Params: params}
	if len(model.Levels) > 0 {
		if p.Levels, err = arvnet.DecodeLevels(model.Levels); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
	}
	return p, nil
}

// List retorna os nomes dos presets em ordem alfabética.
func (s *Store) List() ([]string, error) {
	if s.DB == nil {
		return nil, ErrClosed
	}
	var names []string
	err := s.DB.Model(&PresetModel{}).Order("name").Pluck("name", &names).Error
	return names, err
}

// Count retorna o número de presets salvos.
func (s *Store) Count() (int, error) {
	if s.DB == nil {
		return 0, ErrClosed
	}
	var n int64
	err := s.DB.Model(&PresetModel{}).Count(&n).Error
	return int(n), err
}

// Delete remove um preset. Retorna ErrNotFound se não existir.
func (s *Store) Delete(name string) error {
	if s.DB == nil {
		return ErrClosed
	}
	res := s.DB.Delete(&PresetModel{}, "name = ?", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	log.Printf("[Presets] Preset removido: %s", name)
	return nil
}

// SeedDefaults grava os presets embutidos que ainda não existem no banco.
func (s *Store) SeedDefaults() error {
	existing, err := s.List()
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}
	added := 0
	for _, p := range Defaults() {
		if have[p.Name] {
			continue
		}
		if err := s.Save(&p); err != nil {
			return err
		}
		added++
	}
	if added > 0 {
		log.Printf("[Presets] %d presets padrão adicionados", added)
	}
	return nil
}
