package meshing

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"Arvoredo/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCreateVertexWelding(t *testing.T) {
	mb := NewMeshBuilder()
	a := mb.CreateVertex(mgl32.Vec3{1, 2, 3}, 0, DefaultEpsilon)

	tests := []struct {
		name    string
		pos     mgl32.Vec3
		group   int
		epsilon float32
		same    bool
	}{
		{"idêntico", mgl32.Vec3{1, 2, 3}, 0, DefaultEpsilon, true},
		{"dentro da tolerância", mgl32.Vec3{1.0005, 2, 3}, 0, DefaultEpsilon, true},
		{"fora da tolerância", mgl32.Vec3{1.01, 2, 3}, 0, DefaultEpsilon, false},
		{"qualquer grupo", mgl32.Vec3{1, 2, 3}, -1, DefaultEpsilon, true},
		{"epsilon negativo", mgl32.Vec3{1, 2, 3}, 0, NoWeld, false},
		{"exato", mgl32.Vec3{1, 2, 3}, 0, ExactEpsilon, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mb.CreateVertex(tt.pos, tt.group, tt.epsilon)
			if (got == a) != tt.same {
				t.Errorf("mesmo vértice = %v, esperado %v", got == a, tt.same)
			}
		})
	}

	other := mb.CreateVertex(mgl32.Vec3{1, 2, 3}, 5, DefaultEpsilon)
	if other == a {
		t.Errorf("grupos diferentes nunca deveriam soldar")
	}
	if again := mb.CreateVertex(mgl32.Vec3{1, 2, 3}, 5, DefaultEpsilon); again != other {
		t.Errorf("segunda chamada no grupo 5 deveria devolver o mesmo vértice")
	}
}

func TestCreateVertexUVWelding(t *testing.T) {
	mb := NewMeshBuilder()
	a := mb.CreateVertexUV(mgl32.Vec3{0, 0, 0}, mgl32.Vec2{0.5, 0.5}, 0, DefaultEpsilon)
	if b := mb.CreateVertexUV(mgl32.Vec3{0, 0, 0}, mgl32.Vec2{0.5, 0.5}, 0, DefaultEpsilon); b != a {
		t.Errorf("mesma posição e UV deveriam soldar")
	}
	if c := mb.CreateVertexUV(mgl32.Vec3{0, 0, 0}, mgl32.Vec2{0.7, 0.5}, 0, DefaultEpsilon); c == a {
		t.Errorf("UV diferente não deveria soldar")
	}
	plain := mb.CreateVertex(mgl32.Vec3{5, 0, 0}, 0, DefaultEpsilon)
	if d := mb.CreateVertexUV(mgl32.Vec3{5, 0, 0}, mgl32.Vec2{0, 0}, 0, DefaultEpsilon); d == plain {
		t.Errorf("vértice sem UV não deveria soldar com pedido com UV")
	}
}

func TestWeldIndexMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	mb := NewMeshBuilder()
	var points []mgl32.Vec3
	for i := 0; i < 500; i++ {
		p := mgl32.Vec3{rng.Float32() * 0.2, rng.Float32() * 0.2, rng.Float32() * 0.2}
		points = append(points, p)
		mb.newVertex(p, i%3)
	}
	for i := 0; i < 200; i++ {
		q := points[rng.IntN(len(points))].Add(mgl32.Vec3{rng.Float32() * 0.004, 0, 0})
		group := rng.IntN(4) - 1
		eps := []float32{0, DefaultEpsilon, 0.02, 0.5}[rng.IntN(4)]

		var want *Vertex
		for _, v := range mb.verts {
			if (group < 0 || v.Group == group) && v.isSame(q, nil, eps) {
				want = v
				break
			}
		}
		if got := mb.findVertex(q, nil, group, eps); got != want {
			t.Fatalf("busca %d: índice devolveu %v, varredura %v", i, got, want)
		}
	}
}

func TestMoveKeepsIndex(t *testing.T) {
	mb := NewMeshBuilder()
	v := mb.CreateVertex(mgl32.Vec3{0, 0, 0}, 0, DefaultEpsilon)
	mb.Move(v, mgl32.Vec3{1, 0, 0})
	if got := mb.CreateVertex(mgl32.Vec3{1, 0, 0}, 0, DefaultEpsilon); got != v {
		t.Errorf("vértice movido não encontrado na posição nova")
	}
	if got := mb.CreateVertex(mgl32.Vec3{0, 0, 0}, 0, DefaultEpsilon); got == v {
		t.Errorf("vértice movido encontrado na posição antiga")
	}
}

func TestLinkNormalsMerge(t *testing.T) {
	mb := NewMeshBuilder()
	v := make([]*Vertex, 4)
	for i := range v {
		v[i] = mb.CreateVertex(mgl32.Vec3{float32(i), 0, 0}, 0, NoWeld)
	}
	mb.LinkNormals(v[0], v[1])
	mb.LinkNormals(v[2], v[3])
	if mb.Linked(v[0], v[2]) {
		t.Fatalf("grupos separados não deveriam estar ligados")
	}
	mb.LinkNormals(v[1], v[3])
	for i := 1; i < 4; i++ {
		if !mb.Linked(v[0], v[i]) {
			t.Errorf("v0 e v%d deveriam estar ligados após a união", i)
		}
	}
	if len(mb.links) != 1 {
		t.Errorf("grupos = %d, esperado 1", len(mb.links))
	}
}

func TestConnectTriangleCount(t *testing.T) {
	tests := []struct{ n1, n2 int }{
		{7, 7},
		{4, 7},
		{7, 4},
		{2, 2},
		{1, 5},
	}
	for _, tt := range tests {
		mb := NewMeshBuilder()
		loop1 := make([]*Vertex, tt.n1)
		loop2 := make([]*Vertex, tt.n2)
		for i := range loop1 {
			a := float32(i) / float32(tt.n1) * 2 * math.Pi
			loop1[i] = mb.CreateVertex(mgl32.Vec3{util.Cos(a), 0, util.Sin(a)}, 0, NoWeld)
		}
		for i := range loop2 {
			a := float32(i) / float32(tt.n2) * 2 * math.Pi
			loop2[i] = mb.CreateVertex(mgl32.Vec3{util.Cos(a), 1, util.Sin(a)}, 0, NoWeld)
		}
		if err := mb.Connect(loop1, loop2); err != nil {
			t.Fatalf("Connect(%d, %d): %v", tt.n1, tt.n2, err)
		}
		want := tt.n1 + tt.n2 - 2
		if got := len(mb.Triangles()); got != want {
			t.Errorf("Connect(%d, %d) = %d triângulos, esperado %d", tt.n1, tt.n2, got, want)
		}

		used := make(map[*Vertex]bool)
		for _, tri := range mb.Triangles() {
			for _, v := range tri.Vertices() {
				used[v] = true
			}
		}
		if want > 0 {
			for _, v := range append(loop1, loop2...) {
				if !used[v] {
					t.Errorf("Connect(%d, %d): vértice %d fora dos triângulos", tt.n1, tt.n2, v.Index)
				}
			}
		}
	}
}

func TestConnectEmptyLoop(t *testing.T) {
	mb := NewMeshBuilder()
	loop := mb.CreateLoop(mgl32.Vec3{}, mgl32.QuatIdent(), 1, 4, 0, 0)
	if err := mb.Connect(loop, nil); !errors.Is(err, ErrEmptyLoop) {
		t.Errorf("erro = %v, esperado ErrEmptyLoop", err)
	}
	if _, err := mb.Extrude(nil, util.UnitY, 1, 4, 1, 0); !errors.Is(err, ErrEmptyLoop) {
		t.Errorf("erro = %v, esperado ErrEmptyLoop", err)
	}
}

func TestLoopClosure(t *testing.T) {
	mb := NewMeshBuilder()
	up := util.FromAngles(-math.Pi/2, 0, 0)
	loop := mb.CreateLoop(mgl32.Vec3{}, up, 0.5, 6, 0, 0)
	if len(loop) != 7 {
		t.Fatalf("anel com %d vértices, esperado 7", len(loop))
	}
	if !mb.Linked(loop[0], loop[6]) {
		t.Fatalf("primeiro e último vértice deveriam estar ligados")
	}
	if !loop[0].Pos.ApproxEqualThreshold(loop[6].Pos, 1e-5) {
		t.Errorf("anel não fecha: %v != %v", loop[0].Pos, loop[6].Pos)
	}
	for _, v := range loop {
		if v.Pos.Y() > 1e-5 || v.Pos.Y() < -1e-5 {
			t.Errorf("anel para cima deveria estar no plano XZ: %v", v.Pos)
		}
	}

	next, err := mb.Extrude(loop, util.UnitY, 1, 6, 0.4, 0)
	if err != nil {
		t.Fatalf("Extrude: %v", err)
	}
	mb.Smooth()
	for _, l := range [][]*Vertex{loop, next} {
		first, last := l[0], l[len(l)-1]
		if first.Normal != last.Normal {
			t.Errorf("normais da costura diferem: %v != %v", first.Normal, last.Normal)
		}
		if math.Abs(float64(first.Normal.Len()-1)) > 1e-4 {
			t.Errorf("normal não unitária: %v", first.Normal)
		}
	}
}

func TestExtrudeOffset(t *testing.T) {
	mb := NewMeshBuilder()
	loop := mb.CreateLoop(mgl32.Vec3{}, util.FromAngles(-math.Pi/2, 0, 0), 1, 4, 0, 0)
	offset := mgl32.Vec3{0.5, 0, 0}
	next, err := mb.ExtrudeOffset(loop, util.UnitY, 2, offset, 4, 1, 0)
	if err != nil {
		t.Fatalf("ExtrudeOffset: %v", err)
	}
	center := mb.FindCenter(next)
	if !center.ApproxEqualThreshold(mgl32.Vec3{0.5, 2, 0}, 1e-5) {
		t.Errorf("centro = %v, esperado (0.5, 2, 0)", center)
	}
	if len(mb.Triangles()) != 8 {
		t.Errorf("triângulos = %d, esperado 8", len(mb.Triangles()))
	}
}

func TestTextureLoop(t *testing.T) {
	mb := NewMeshBuilder()
	loop := mb.CreateLoop(mgl32.Vec3{}, mgl32.QuatIdent(), 1, 4, 0, 0)

	mb.TextureLoop(loop, mgl32.Vec2{0, 2}, mgl32.Vec2{5, 0})
	for i := 1; i < len(loop); i++ {
		if loop[i].UV.X() <= loop[i-1].UV.X() {
			t.Errorf("U não cresce no índice %d", i)
		}
		if loop[i].UV.Y() != 2 {
			t.Errorf("V = %f, esperado 2", loop[i].UV.Y())
		}
	}

	mb.TextureLoop(loop, mgl32.Vec2{0, 0}, mgl32.Vec2{-5, 0})
	for i := 1; i < len(loop); i++ {
		if loop[i].UV.X() >= loop[i-1].UV.X() {
			t.Errorf("faixa negativa: U deveria decrescer no índice %d", i)
		}
	}
	if loop[0].UV.X() != 4 {
		t.Errorf("U inicial da faixa negativa = %f, esperado 4", loop[0].UV.X())
	}
}

func TestSmoothFlatQuad(t *testing.T) {
	mb := NewMeshBuilder()
	a := mb.CreateVertex(mgl32.Vec3{0, 0, 0}, 0, DefaultEpsilon)
	b := mb.CreateVertex(mgl32.Vec3{1, 0, 0}, 0, DefaultEpsilon)
	c := mb.CreateVertex(mgl32.Vec3{1, 1, 0}, 0, DefaultEpsilon)
	d := mb.CreateVertex(mgl32.Vec3{0, 1, 0}, 0, DefaultEpsilon)
	mb.AddTriangle(a, b, c)
	mb.AddTriangle(a, c, d)

	d.SetNormal(mgl32.Vec3{1, 0, 0})
	d.Weight = PinnedWeight

	mb.Smooth()
	for _, v := range []*Vertex{a, b, c} {
		if !v.Normal.ApproxEqualThreshold(util.UnitZ, 1e-5) {
			t.Errorf("normal de %d = %v, esperado +Z", v.Index, v.Normal)
		}
	}
	if d.Normal != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("vértice fixo teve a normal alterada: %v", d.Normal)
	}
}

func TestSmoothLinkedPinnedVertex(t *testing.T) {
	mb := NewMeshBuilder()
	a := mb.CreateVertex(mgl32.Vec3{0, 0, 0}, 0, DefaultEpsilon)
	b := mb.CreateVertex(mgl32.Vec3{1, 0, 0}, 0, DefaultEpsilon)
	c := mb.CreateVertex(mgl32.Vec3{1, 1, 0}, 0, DefaultEpsilon)
	// Mesmo ponto de a, mas num triângulo voltado para -Z.
	pinned := mb.CreateVertex(mgl32.Vec3{0, 0, 0}, 1, DefaultEpsilon)
	e := mb.CreateVertex(mgl32.Vec3{0, 1, 0}, 1, DefaultEpsilon)
	f := mb.CreateVertex(mgl32.Vec3{1, 1, 0}, 1, DefaultEpsilon)
	mb.AddTriangle(a, b, c)
	mb.AddTriangle(pinned, e, f)
	mb.LinkNormals(a, pinned)

	pinned.SetNormal(mgl32.Vec3{1, 0, 0})
	pinned.Weight = PinnedWeight

	mb.Smooth()
	if pinned.Normal != (mgl32.Vec3{1, 0, 0}) || pinned.Weight != PinnedWeight {
		t.Errorf("vértice fixo alterado: normal %v peso %f", pinned.Normal, pinned.Weight)
	}
	if !a.Normal.ApproxEqualThreshold(util.UnitZ, 1e-5) {
		t.Errorf("normal de a = %v, esperado +Z sem a contribuição do fixo", a.Normal)
	}
	if a.Weight <= 0 {
		t.Errorf("peso de a = %f, esperado positivo", a.Weight)
	}
}

func TestBuild(t *testing.T) {
	if NewMeshBuilder().Build() != nil {
		t.Errorf("construtor vazio deveria gerar nil")
	}

	mb := NewMeshBuilder()
	mb.CreateVertex(mgl32.Vec3{}, 0, DefaultEpsilon)
	if mb.Build() != nil {
		t.Errorf("sem triângulos deveria gerar nil")
	}

	mb = NewMeshBuilder()
	loop := mb.CreateLoop(mgl32.Vec3{}, mgl32.QuatIdent(), 1, 4, 0, 0)
	mb.TextureLoop(loop, mgl32.Vec2{}, mgl32.Vec2{1, 0})
	applyTangents(loop, false)
	if _, err := mb.Extrude(loop, util.UnitZ, 1, 4, 1, 0); err != nil {
		t.Fatal(err)
	}
	mb.Smooth()
	g := mb.Build()
	n := g.VertexCount()
	if n != 10 {
		t.Fatalf("vértices = %d, esperado 10", n)
	}
	if len(g.Normals) != n*3 || len(g.UVs) != n*2 || len(g.Tangents) != n*4 {
		t.Errorf("buffers opcionais com tamanhos errados: n=%d uv=%d tan=%d", len(g.Normals), len(g.UVs), len(g.Tangents))
	}
	if g.Tangents[3] != 1 {
		t.Errorf("w da tangente = %f, esperado 1", g.Tangents[3])
	}
	if len(g.Indices) != 8*3 || len(g.Indices32) != 0 {
		t.Errorf("índices = %d/%d", len(g.Indices), len(g.Indices32))
	}
}

func TestBuildWideIndices(t *testing.T) {
	mb := NewMeshBuilder()
	var last [3]*Vertex
	for i := 0; i <= math.MaxUint16; i++ {
		last[i%3] = mb.CreateVertex(mgl32.Vec3{float32(i), 0, 0}, 0, NoWeld)
	}
	mb.AddTriangle(last[0], last[1], last[2])
	g := mb.Build()
	if len(g.Indices) != 0 || len(g.Indices32) != 3 {
		t.Errorf("com %d vértices os índices deveriam ser de 32 bits", g.VertexCount())
	}
}
