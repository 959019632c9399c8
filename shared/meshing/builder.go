package meshing

import (
	"errors"
	"fmt"
	"log"
	"math"

	"Arvoredo/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// Debug habilita logs do construtor de malhas.
var Debug = false

const (
	// DefaultEpsilon é a tolerância padrão de soldagem.
	DefaultEpsilon float32 = 0.001
	// ExactEpsilon solda apenas posições idênticas.
	ExactEpsilon float32 = 0
	// NoWeld nunca solda.
	NoWeld float32 = -1
	// minLoopSegments é o mínimo de segmentos de um anel.
	minLoopSegments = 3
)

var (
	// ErrEmptyLoop indica um anel vazio passado a Connect ou Extrude.
	ErrEmptyLoop = errors.New("anel vazio")
	// ErrAbutUnsupported indica uma ligação Abut, que nenhum gerador implementa.
	ErrAbutUnsupported = errors.New("ligação Abut não suportada")
	// ErrReductionUnsupported indica um tipo de redução sem gerador.
	ErrReductionUnsupported = errors.New("tipo de redução não suportado")
)

// MeshBuilder acumula vértices e triângulos e gera os buffers finais.
// Não é seguro para uso concorrente; cada geração usa o seu.
type MeshBuilder struct {
	verts     []*Vertex
	triangles []Triangle
	linksMap  map[*Vertex]*normalLinks
	links     []*normalLinks
	index     *weldIndex
}

// NewMeshBuilder cria um construtor vazio.
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{
		linksMap: make(map[*Vertex]*normalLinks),
		index:    newWeldIndex(),
	}
}

// Vertices retorna os vértices em ordem de Index.
func (mb *MeshBuilder) Vertices() []*Vertex { return mb.verts }

// Triangles retorna os triângulos acumulados.
func (mb *MeshBuilder) Triangles() []Triangle { return mb.triangles }

func (mb *MeshBuilder) newVertex(pos mgl32.Vec3, group int) *Vertex {
	v := &Vertex{Pos: pos, Index: len(mb.verts), Group: group}
	mb.verts = append(mb.verts, v)
	mb.index.insert(v)
	return v
}

func (mb *MeshBuilder) newVertexUV(pos mgl32.Vec3, uv mgl32.Vec2, group int) *Vertex {
	v := mb.newVertex(pos, group)
	v.SetUV(uv)
	return v
}

// CreateVertex retorna um vértice existente a até epsilon de pos no mesmo
// grupo (grupo < 0 aceita qualquer um), ou cria um novo.
func (mb *MeshBuilder) CreateVertex(pos mgl32.Vec3, group int, epsilon float32) *Vertex {
	if v := mb.findVertex(pos, nil, group, epsilon); v != nil {
		return v
	}
	return mb.newVertex(pos, group)
}

// CreateVertexUV é como CreateVertex, mas a UV também precisa coincidir.
func (mb *MeshBuilder) CreateVertexUV(pos mgl32.Vec3, uv mgl32.Vec2, group int, epsilon float32) *Vertex {
	if v := mb.findVertex(pos, &uv, group, epsilon); v != nil {
		return v
	}
	return mb.newVertexUV(pos, uv, group)
}

func (mb *MeshBuilder) findVertex(pos mgl32.Vec3, uv *mgl32.Vec2, group int, epsilon float32) *Vertex {
	if epsilon < 0 {
		return nil
	}
	match := func(v *Vertex) bool {
		if group >= 0 && v.Group != group {
			return false
		}
		return v.isSame(pos, uv, epsilon)
	}
	if v, ok := mb.index.find(pos, epsilon, match); ok {
		return v
	}
	for _, v := range mb.verts {
		if match(v) {
			return v
		}
	}
	return nil
}

// Move desloca um vértice do construtor mantendo o índice de soldagem válido.
func (mb *MeshBuilder) Move(v *Vertex, offset mgl32.Vec3) {
	old := v.Pos
	v.Pos = v.Pos.Add(offset)
	if v.Index >= 0 && v.Index < len(mb.verts) && mb.verts[v.Index] == v {
		mb.index.remove(v, old)
		mb.index.insert(v)
	}
}

// AddTriangle adiciona uma face.
func (mb *MeshBuilder) AddTriangle(v1, v2, v3 *Vertex) {
	mb.triangles = append(mb.triangles, Triangle{v1, v2, v3})
}

// LinkNormals faz v1 e v2 compartilharem a normal final. Grupos existentes
// são unidos.
func (mb *MeshBuilder) LinkNormals(v1, v2 *Vertex) {
	nl1 := mb.linksMap[v1]
	nl2 := mb.linksMap[v2]
	switch {
	case nl1 != nil && nl1 == nl2:
		return
	case nl1 != nil && nl2 != nil:
		nl1.members = append(nl1.members, nl2.members...)
		for _, v := range nl2.members {
			mb.linksMap[v] = nl1
		}
		for i, l := range mb.links {
			if l == nl2 {
				mb.links = append(mb.links[:i], mb.links[i+1:]...)
				break
			}
		}
	case nl1 != nil:
		nl1.members = append(nl1.members, v2)
		mb.linksMap[v2] = nl1
	case nl2 != nil:
		nl2.members = append(nl2.members, v1)
		mb.linksMap[v1] = nl2
	default:
		nl := &normalLinks{members: []*Vertex{v1, v2}}
		if v1 == v2 {
			nl.members = nl.members[:1]
		}
		mb.linksMap[v1] = nl
		mb.linksMap[v2] = nl
		mb.links = append(mb.links, nl)
	}
}

// Linked indica se os dois vértices estão no mesmo grupo de normais.
func (mb *MeshBuilder) Linked(v1, v2 *Vertex) bool {
	nl := mb.linksMap[v1]
	return nl != nil && nl == mb.linksMap[v2]
}

// Smooth calcula normais suaves ponderadas pelo ângulo de cada face no
// vértice. Vértices com PinnedWeight mantêm a normal atual.
func (mb *MeshBuilder) Smooth() {
	for _, v := range mb.verts {
		if v.Weight != PinnedWeight {
			v.Weight = 0
			v.Normal = mgl32.Vec3{}
			v.HasNormal = false
		}
	}

	for _, tri := range mb.triangles {
		normal := tri.Normal()
		for _, v := range tri.Vertices() {
			if v.Weight == PinnedWeight {
				continue
			}
			weight := tri.Angle(v)
			v.SetNormal(v.Normal.Add(normal.Mul(weight)))
			v.Weight += weight
		}
	}

	for _, nl := range mb.links {
		nl.combineNormals()
	}

	for _, v := range mb.verts {
		if !v.HasNormal || v.Weight <= 0 {
			continue
		}
		v.Normal = util.SafeNormalize(v.Normal, v.Normal)
	}
}

// Connect costura dois anéis (de tamanhos possivelmente diferentes) numa
// faixa de triângulos. Emite len(loop1)+len(loop2)-2 triângulos.
func (mb *MeshBuilder) Connect(loop1, loop2 []*Vertex) error {
	if len(loop1) == 0 || len(loop2) == 0 {
		return ErrEmptyLoop
	}
	sameSize := len(loop1) == len(loop2)
	i, j := 0, 0
	for i < len(loop1) && j < len(loop2) {
		last1, last2 := loop1[i], loop2[j]
		var next1, next2 *Vertex
		if i < len(loop1)-1 {
			next1 = loop1[i+1]
		}
		if j < len(loop2)-1 {
			next2 = loop2[j+1]
		}
		if next1 == nil && next2 == nil {
			break
		}

		var next *Vertex
		switch {
		case next1 == nil:
			next = next2
			j++
		case next2 == nil:
			next = next1
			i++
		default:
			// Anéis do mesmo tamanho seguem a ordem dos índices; a
			// distância não é confiável com os dois anéis inclinados.
			var dist1, dist2 float32
			if sameSize {
				dist1, dist2 = float32(j), float32(i)
			} else {
				d1 := last1.Pos.Sub(next2.Pos)
				d2 := last2.Pos.Sub(next1.Pos)
				dist1, dist2 = d1.Dot(d1), d2.Dot(d2)
			}
			if dist1 < dist2 {
				next = next2
				j++
			} else {
				next = next1
				i++
			}
		}
		mb.AddTriangle(last2, last1, next)
	}
	return nil
}

// TextureLoop distribui UVs ao longo do anel de base até base+rng.
// Faixas negativas em U continuam monotônicas.
func (mb *MeshBuilder) TextureLoop(loop []*Vertex, base, rng mgl32.Vec2) {
	count := float32(len(loop))
	if count == 0 {
		return
	}
	uDelta := rng[0] / count
	vDelta := rng[1] / count
	uBase := base[0]
	if uDelta < 0 {
		uBase = -rng[0] + uDelta
	}
	for i, v := range loop {
		fi := float32(i)
		v.SetUV(mgl32.Vec2{uBase + fi*uDelta, base[1] + fi*vDelta})
	}
}

// FindCenter retorna o centro do anel, ignorando o último vértice (repetido).
func (mb *MeshBuilder) FindCenter(loop []*Vertex) mgl32.Vec3 {
	switch len(loop) {
	case 0:
		return mgl32.Vec3{}
	case 1:
		return loop[0].Pos
	}
	var center mgl32.Vec3
	count := len(loop) - 1
	for _, v := range loop[:count] {
		center = center.Add(v.Pos)
	}
	return center.Mul(1 / float32(count))
}

// Extrude cria um anel novo deslocado distance ao longo de dir e o conecta ao anterior.
func (mb *MeshBuilder) Extrude(loop []*Vertex, dir mgl32.Vec3, distance float32, segments int, radius, twist float32) ([]*Vertex, error) {
	return mb.ExtrudeOffset(loop, dir, distance, mgl32.Vec3{}, segments, radius, twist)
}

// ExtrudeOffset é como Extrude, mas desloca o anel novo por offset depois da
// conexão, para não atrapalhar a escolha das diagonais.
func (mb *MeshBuilder) ExtrudeOffset(loop []*Vertex, dir mgl32.Vec3, distance float32, offset mgl32.Vec3,
	segments int, radius, twist float32) ([]*Vertex, error) {
	if len(loop) == 0 {
		return nil, ErrEmptyLoop
	}
	center := mb.FindCenter(loop)
	base := center.Add(dir.Mul(distance))

	// Eixos no espaço do anel: o ângulo 0 cai perto do primeiro vértice do
	// anel anterior. X aponta para a esquerda, por isso o giro de PI.
	look := util.SafeNormalize(dir, util.UnitY)
	right := loop[0].Pos.Sub(center)
	right = right.Sub(look.Mul(right.Dot(look)))
	right = util.SafeNormalize(right, perpendicular(look))
	left := right.Mul(-1)
	up := util.SafeNormalize(look.Cross(left), perpendicular(left))
	rotation := util.FromAxes(left, up, look)

	newLoop := mb.CreateLoop(base, rotation, radius, segments, twist+math.Pi, 0)
	if err := mb.Connect(loop, newLoop); err != nil {
		return nil, err
	}
	if offset != (mgl32.Vec3{}) {
		for _, v := range newLoop {
			mb.Move(v, offset)
		}
	}
	return newLoop, nil
}

// perpendicular retorna um vetor unitário qualquer perpendicular a v.
func perpendicular(v mgl32.Vec3) mgl32.Vec3 {
	axis := util.UnitX
	if util.Abs(v.Dot(axis)) > 0.9 {
		axis = util.UnitY
	}
	return util.SafeNormalize(v.Cross(axis), util.UnitZ)
}

// CreateLoop cria segments+1 vértices num círculo de raio radius no plano
// XY local de orientation, começando em twist. O primeiro e o último
// vértice ficam ligados para não deixar costura.
func (mb *MeshBuilder) CreateLoop(center mgl32.Vec3, orientation mgl32.Quat, radius float32, segments int, twist float32, group int) []*Vertex {
	segments = max(segments, minLoopSegments)
	angleDelta := float32(2*math.Pi) / float32(segments)
	loop := make([]*Vertex, 0, segments+1)
	for i := 0; i <= segments; i++ {
		local := orientation.Mul(util.FromAngles(0, 0, float32(i)*angleDelta+twist))
		pos := local.Rotate(mgl32.Vec3{radius, 0, 0}).Add(center)
		loop = append(loop, mb.newVertex(pos, group))
	}
	mb.LinkNormals(loop[0], loop[segments])
	return loop
}

// Build gera os buffers. Retorna nil sem vértices ou sem triângulos.
// Buffers opcionais existem se o primeiro vértice tiver o atributo.
func (mb *MeshBuilder) Build() *Geometry {
	if len(mb.verts) == 0 || len(mb.triangles) == 0 {
		return nil
	}
	if Debug {
		log.Printf("[Meshing] Criando malha com %d vértices e %d triângulos", len(mb.verts), len(mb.triangles))
	}

	n := len(mb.verts)
	first := mb.verts[0]
	g := &Geometry{Mode: Triangles, Vertices: make([]float32, 0, n*3)}
	if first.HasNormal {
		g.Normals = make([]float32, 0, n*3)
	}
	if first.HasUV {
		g.UVs = make([]float32, 0, n*2)
	}
	if first.HasTangent {
		g.Tangents = make([]float32, 0, n*4)
	}

	for _, v := range mb.verts {
		g.Vertices = append(g.Vertices, v.Pos[0], v.Pos[1], v.Pos[2])
		if g.Normals != nil {
			g.Normals = append(g.Normals, v.Normal[0], v.Normal[1], v.Normal[2])
		}
		if g.UVs != nil {
			g.UVs = append(g.UVs, v.UV[0], v.UV[1])
		}
		if g.Tangents != nil {
			g.Tangents = append(g.Tangents, v.Tangent[0], v.Tangent[1], v.Tangent[2], 1)
		}
	}

	if n <= math.MaxUint16 {
		g.Indices = make([]uint16, 0, len(mb.triangles)*3)
		for _, t := range mb.triangles {
			g.Indices = append(g.Indices, uint16(t.V1.Index), uint16(t.V2.Index), uint16(t.V3.Index))
		}
	} else {
		g.Indices32 = make([]uint32, 0, len(mb.triangles)*3)
		for _, t := range mb.triangles {
			g.Indices32 = append(g.Indices32, uint32(t.V1.Index), uint32(t.V2.Index), uint32(t.V3.Index))
		}
	}
	return g
}

// Weights retorna o peso de cada vértice em ordem (canal de tamanho do flat-poly).
func (mb *MeshBuilder) Weights() []float32 {
	out := make([]float32, len(mb.verts))
	for i, v := range mb.verts {
		out[i] = v.Weight
	}
	return out
}

func (mb *MeshBuilder) String() string {
	return fmt.Sprintf("MeshBuilder[vértices=%d, triângulos=%d, ligações=%d]", len(mb.verts), len(mb.triangles), len(mb.links))
}
