package arvore

import (
	"fmt"
	"math"
)

// Chaves e versão do formato de mapa dos parâmetros.
const (
	VersionKey    = "formatVersion"
	FormatVersion = 1
	branchesKey   = "branches"
	rootsKey      = "roots"
)

// field é uma entrada da tabela explícita de campos de uma struct de parâmetros.
type field[T any] struct {
	name string
	get  func(*T) any
	set  func(*T, any) error
}

func boolField[T any](name string, ref func(*T) *bool) field[T] {
	return field[T]{
		name: name,
		get:  func(p *T) any { return *ref(p) },
		set: func(p *T, v any) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%s: esperado bool, recebido %T", name, v)
			}
			*ref(p) = b
			return nil
		},
	}
}

func intField[T any](name string, ref func(*T) *int) field[T] {
	return field[T]{
		name: name,
		get:  func(p *T) any { return *ref(p) },
		set: func(p *T, v any) error {
			f, err := toFloat(name, v)
			if err != nil {
				return err
			}
			*ref(p) = int(f)
			return nil
		},
	}
}

func floatField[T any](name string, ref func(*T) *float32) field[T] {
	return field[T]{
		name: name,
		get:  func(p *T) any { return *ref(p) },
		set: func(p *T, v any) error {
			f, err := toFloat(name, v)
			if err != nil {
				return err
			}
			*ref(p) = float32(f)
			return nil
		},
	}
}

// toFloat aceita qualquer tipo numérico; structpb devolve tudo como float64.
func toFloat(name string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%s: esperado número, recebido %T", name, v)
}

var branchFields = []field[BranchParameters]{
	boolField("enabled", func(p *BranchParameters) *bool { return &p.Enabled }),
	boolField("inherit", func(p *BranchParameters) *bool { return &p.Inherit }),
	floatField("radiusScale", func(p *BranchParameters) *float32 { return &p.RadiusScale }),
	floatField("lengthScale", func(p *BranchParameters) *float32 { return &p.LengthScale }),
	intField("radialSegments", func(p *BranchParameters) *int { return &p.RadialSegments }),
	intField("lengthSegments", func(p *BranchParameters) *int { return &p.LengthSegments }),
	floatField("taper", func(p *BranchParameters) *float32 { return &p.Taper }),
	floatField("inclination", func(p *BranchParameters) *float32 { return &p.Inclination }),
	floatField("twist", func(p *BranchParameters) *float32 { return &p.Twist }),
	floatField("tipRotation", func(p *BranchParameters) *float32 { return &p.TipRotation }),
	floatField("segmentVariation", func(p *BranchParameters) *float32 { return &p.SegmentVariation }),
	floatField("gravity", func(p *BranchParameters) *float32 { return &p.Gravity }),
	boolField("hasEndJoint", func(p *BranchParameters) *bool { return &p.HasEndJoint }),
	intField("sideJointCount", func(p *BranchParameters) *int { return &p.SideJointCount }),
	floatField("sideJointStartAngle", func(p *BranchParameters) *float32 { return &p.SideJointStartAngle }),
}

var treeFields = []field[TreeParameters]{
	floatField("baseScale", func(p *TreeParameters) *float32 { return &p.BaseScale }),
	floatField("trunkRadius", func(p *TreeParameters) *float32 { return &p.TrunkRadius }),
	floatField("trunkHeight", func(p *TreeParameters) *float32 { return &p.TrunkHeight }),
	floatField("rootHeight", func(p *TreeParameters) *float32 { return &p.RootHeight }),
	intField("textureURepeat", func(p *TreeParameters) *int { return &p.TextureURepeat }),
	floatField("textureVScale", func(p *TreeParameters) *float32 { return &p.TextureVScale }),
	floatField("leafScale", func(p *TreeParameters) *float32 { return &p.LeafScale }),
	boolField("generateLeaves", func(p *TreeParameters) *bool { return &p.GenerateLeaves }),
	{
		name: "seed",
		get:  func(p *TreeParameters) any { return p.Seed },
		set: func(p *TreeParameters, v any) error {
			f, err := toFloat("seed", v)
			if err != nil {
				return err
			}
			p.Seed = int64(f)
			return nil
		},
	},
}

var lodFields = []field[LevelOfDetailParameters]{
	floatField("distance", func(p *LevelOfDetailParameters) *float32 { return &p.Distance }),
	{
		name: "reduction",
		get:  func(p *LevelOfDetailParameters) any { return p.Reduction.String() },
		set: func(p *LevelOfDetailParameters, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("reduction: esperado string, recebido %T", v)
			}
			r, err := ParseReduction(s)
			if err != nil {
				return err
			}
			p.Reduction = r
			return nil
		},
	},
	intField("branchDepth", func(p *LevelOfDetailParameters) *int { return &p.BranchDepth }),
	intField("rootDepth", func(p *LevelOfDetailParameters) *int { return &p.RootDepth }),
	intField("maxRadialSegments", func(p *LevelOfDetailParameters) *int { return &p.MaxRadialSegments }),
}

func toMap[T any](fields []field[T], p *T) map[string]any {
	m := make(map[string]any, len(fields)+1)
	m[VersionKey] = FormatVersion
	for _, f := range fields {
		m[f.name] = f.get(p)
	}
	return m
}

func checkVersion(m map[string]any) error {
	v, ok := m[VersionKey]
	if !ok {
		return nil
	}
	n, err := toFloat(VersionKey, v)
	if err != nil {
		return err
	}
	if n > FormatVersion || math.IsNaN(n) {
		return fmt.Errorf("%w: %v", ErrUnsupportedVersion, v)
	}
	return nil
}

// fromMap aplica os valores conhecidos; chaves em extra são tratadas pelo chamador.
func fromMap[T any](fields []field[T], p *T, m map[string]any, extra func(key string, v any) (bool, error)) error {
	if err := checkVersion(m); err != nil {
		return err
	}
	byName := make(map[string]field[T], len(fields))
	for _, f := range fields {
		byName[f.name] = f
	}
	for key, v := range m {
		if key == VersionKey {
			continue
		}
		if extra != nil {
			handled, err := extra(key, v)
			if err != nil {
				return err
			}
			if handled {
				continue
			}
		}
		f, ok := byName[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
		if err := f.set(p, v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
		}
	}
	return nil
}

// ToMap retorna o mapa versionado dos campos.
func (p *BranchParameters) ToMap() map[string]any {
	return toMap(branchFields, p)
}

// FromMap aplica um mapa produzido por ToMap. Campos ausentes mantêm o valor atual.
func (p *BranchParameters) FromMap(m map[string]any) error {
	return fromMap(branchFields, p, m, nil)
}

// ToMap retorna o mapa versionado dos campos.
func (l *LevelOfDetailParameters) ToMap() map[string]any {
	return toMap(lodFields, l)
}

// FromMap aplica um mapa produzido por ToMap.
func (l *LevelOfDetailParameters) FromMap(m map[string]any) error {
	return fromMap(lodFields, l, m, nil)
}

// ToMap retorna o mapa versionado, com os níveis em "branches" e "roots".
func (tp *TreeParameters) ToMap() map[string]any {
	m := toMap(treeFields, tp)
	m[branchesKey] = levelsToList(tp.Branches)
	m[rootsKey] = levelsToList(tp.Roots)
	return m
}

// FromMap aplica um mapa produzido por ToMap. Uma lista de tamanho diferente
// redimensiona os níveis; entradas novas partem dos valores padrão.
func (tp *TreeParameters) FromMap(m map[string]any) error {
	return fromMap(treeFields, tp, m, func(key string, v any) (bool, error) {
		var err error
		switch key {
		case branchesKey:
			tp.Branches, err = listToLevels(key, v, tp.Branches)
		case rootsKey:
			tp.Roots, err = listToLevels(key, v, tp.Roots)
		default:
			return false, nil
		}
		return true, err
	})
}

func levelsToList(levels []*BranchParameters) []any {
	list := make([]any, len(levels))
	for i, l := range levels {
		list[i] = l.ToMap()
	}
	return list
}

func listToLevels(key string, v any, current []*BranchParameters) ([]*BranchParameters, error) {
	var maps []map[string]any
	switch list := v.(type) {
	case []any:
		for i, item := range list {
			lm, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] não é um mapa (%T)", ErrInvalidParameters, key, i, item)
			}
			maps = append(maps, lm)
		}
	case []map[string]any:
		maps = list
	default:
		return nil, fmt.Errorf("%w: %s deve ser uma lista, recebido %T", ErrInvalidParameters, key, v)
	}

	result := make([]*BranchParameters, len(maps))
	for i, lm := range maps {
		if i < len(current) && current[i] != nil {
			result[i] = current[i]
		} else {
			result[i] = NewBranchParameters()
		}
		if err := result[i].FromMap(lm); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
	}
	return result, nil
}
