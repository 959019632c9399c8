package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"log"
	"sync"
	"unsafe"

	"Arvoredo/shared/arvore"
	"Arvoredo/shared/meshing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// lodModel guarda os modelos na GPU de um nível de detalhe.
type lodModel struct {
	Level     arvore.LevelOfDetailParameters
	Bark      rl.Model
	HasBark   bool
	Leaves    rl.Model
	HasLeaves bool
	Triangles int
	Err       error
}

// Stats resume o que foi desenhado no último frame.
type Stats struct {
	Level     int
	Reduction arvore.ReductionType
	Triangles int
	Leaves    bool
}

type Renderer struct {
	mu     sync.RWMutex
	levels []lodModel

	BarkShader  rl.Shader
	LeafShader  rl.Shader
	leafTimeLoc int32

	BarkTexture rl.Texture2D
	LeafTexture rl.Texture2D

	// skeleton são os segmentos do LineGenerator, desenhados em modo debug
	skeleton     []rl.Vector3
	ShowSkeleton bool

	Wireframe   bool
	ShowLeaves  bool
	ForcedLevel int // -1 escolhe pela distância
	last        Stats
}

// NewRenderer cria um renderizador. Precisa de uma janela raylib aberta.
func NewRenderer() *Renderer {
	r := &Renderer{ShowLeaves: true, ForcedLevel: -1}

	if rl.IsWindowReady() {
		r.BarkShader = rl.LoadShaderFromMemory(barkVertexShader, barkFragmentShader)
		r.LeafShader = rl.LoadShaderFromMemory(leafVertexShader, leafFragmentShader)

		// Locs é um ponteiro bruto (*int32) para um array em C (32 posições)
		locsB := unsafe.Slice(r.BarkShader.Locs, 32)
		locsB[0] = rl.GetShaderLocation(r.BarkShader, "texture0")    // SHADER_LOC_MAP_DIFFUSE
		locsB[12] = rl.GetShaderLocation(r.BarkShader, "colDiffuse") // SHADER_LOC_COLOR_DIFFUSE

		locsL := unsafe.Slice(r.LeafShader.Locs, 32)
		locsL[0] = rl.GetShaderLocation(r.LeafShader, "texture0")
		locsL[12] = rl.GetShaderLocation(r.LeafShader, "colDiffuse")
		r.leafTimeLoc = rl.GetShaderLocation(r.LeafShader, "time")

		r.BarkTexture = genBarkTexture()
		r.LeafTexture = genLeafTexture(1)
	}

	log.Printf("[Renderer] Inicializado (shaders: casca=%d folhas=%d)", r.BarkShader.ID, r.LeafShader.ID)
	return r
}

// Upload substitui os modelos atuais pelas malhas de todos os níveis.
// Deve ser chamado na thread da janela.
func (r *Renderer) Upload(levels []meshing.LodMesh) {
	if !rl.IsWindowReady() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unloadLocked()
	r.levels = make([]lodModel, len(levels))
	for i, lm := range levels {
		m := lodModel{Level: lm.Level, Err: lm.Err}
		if lm.Geometry != nil && lm.Geometry.VertexCount() > 0 {
			m.Bark = r.loadModel(lm.Geometry, r.BarkShader, r.BarkTexture, false)
			m.HasBark = true
			m.Triangles = lm.Geometry.TriangleCount()
		}
		if lm.Leaves != nil && lm.Leaves.VertexCount() > 0 {
			m.Leaves = r.loadModel(lm.Leaves, r.LeafShader, r.LeafTexture, true)
			m.HasLeaves = true
		}
		r.levels[i] = m
	}
	log.Printf("[Renderer] %d níveis enviados para a GPU", len(levels))
}

func (r *Renderer) loadModel(g *meshing.Geometry, shader rl.Shader, tex rl.Texture2D, leaves bool) rl.Model {
	mesh := r.geometryToMesh(g, leaves)
	rl.UploadMesh(&mesh, false)
	model := rl.LoadModelFromMesh(mesh)
	if model.MaterialCount > 0 {
		materials := unsafe.Slice(model.Materials, model.MaterialCount)
		if shader.ID != 0 {
			materials[0].Shader = shader
		}
		if tex.ID != 0 {
			rl.SetMaterialTexture(&materials[0], rl.MapDiffuse, tex)
		}
	}
	return model
}

// geometryToMesh copia os buffers para memória C. O raylib libera essa
// memória em UnloadModel.
func (r *Renderer) geometryToMesh(g *meshing.Geometry, leaves bool) rl.Mesh {
	if len(g.Indices32) > 0 {
		// Índices de 32 bits não cabem no raylib; desenhamos sem índices.
		g = expandIndices(g)
	}

	var mesh rl.Mesh
	mesh.VertexCount = int32(g.VertexCount())
	if n := g.IndexCount(); n > 0 {
		mesh.TriangleCount = int32(n / 3)
		mesh.Indices = (*uint16)(r.copyToC(unsafe.Pointer(&g.Indices[0]), len(g.Indices)*2))
	} else {
		mesh.TriangleCount = mesh.VertexCount / 3
	}

	mesh.Vertices = r.floatsToC(g.Vertices)
	mesh.Normals = r.floatsToC(g.Normals)
	mesh.Texcoords = r.floatsToC(g.UVs)
	mesh.Texcoords2 = r.floatsToC(g.UVs2)
	if leaves {
		// O tamanho do quad vai no x da tangente
		tangents := make([]float32, 0, len(g.Sizes)*4)
		for _, s := range g.Sizes {
			tangents = append(tangents, s, 0, 0, 0)
		}
		mesh.Tangents = r.floatsToC(tangents)
	} else {
		mesh.Tangents = r.floatsToC(g.Tangents)
	}
	return mesh
}

// expandIndices duplica os vértices na ordem dos índices.
func expandIndices(g *meshing.Geometry) *meshing.Geometry {
	out := &meshing.Geometry{Mode: g.Mode, BoundsPadding: g.BoundsPadding}
	pick := func(src []float32, width int) []float32 {
		if len(src) == 0 {
			return nil
		}
		dst := make([]float32, 0, len(g.Indices32)*width)
		for _, i := range g.Indices32 {
			dst = append(dst, src[int(i)*width:int(i)*width+width]...)
		}
		return dst
	}
	out.Vertices = pick(g.Vertices, 3)
	out.Normals = pick(g.Normals, 3)
	out.UVs = pick(g.UVs, 2)
	out.UVs2 = pick(g.UVs2, 2)
	out.Tangents = pick(g.Tangents, 4)
	out.Sizes = pick(g.Sizes, 1)
	return out
}

func (r *Renderer) floatsToC(data []float32) *float32 {
	if len(data) == 0 {
		return nil
	}
	return (*float32)(r.copyToC(unsafe.Pointer(&data[0]), len(data)*4))
}

func (r *Renderer) copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// SetSkeleton guarda a geometria de linhas do esqueleto.
func (r *Renderer) SetSkeleton(g *meshing.Geometry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skeleton = r.skeleton[:0]
	if g == nil || g.Mode != meshing.Lines {
		return
	}
	for i := 0; i < g.VertexCount(); i++ {
		p := g.Position(i)
		r.skeleton = append(r.skeleton, rl.Vector3{X: p.X(), Y: p.Y(), Z: p.Z()})
	}
}

// Levels retorna os parâmetros dos níveis carregados.
func (r *Renderer) Levels() []arvore.LevelOfDetailParameters {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]arvore.LevelOfDetailParameters, len(r.levels))
	for i, m := range r.levels {
		out[i] = m.Level
	}
	return out
}

// pickLevel escolhe o nível pela distância; níveis sem malha cedem para o
// nível mais detalhado anterior.
func (r *Renderer) pickLevel(distance float32) int {
	if r.ForcedLevel >= 0 && r.ForcedLevel < len(r.levels) {
		return r.ForcedLevel
	}
	params := make([]arvore.LevelOfDetailParameters, len(r.levels))
	for i, m := range r.levels {
		params[i] = m.Level
	}
	idx := arvore.SelectLevel(params, distance)
	for idx > 0 && !r.levels[idx].HasBark && r.levels[idx].Err != nil {
		idx--
	}
	return idx
}

// Draw desenha o nível apropriado para a distância da câmera.
func (r *Renderer) Draw(camera3d rl.Camera3D, distance float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ShowSkeleton {
		for i := 0; i+1 < len(r.skeleton); i += 2 {
			rl.DrawLine3D(r.skeleton[i], r.skeleton[i+1], rl.Red)
		}
	}

	idx := r.pickLevel(distance)
	if idx < 0 {
		r.last = Stats{Level: -1}
		return
	}
	m := r.levels[idx]
	r.last = Stats{Level: idx, Reduction: m.Level.Reduction, Triangles: m.Triangles}

	if m.HasBark {
		if r.Wireframe {
			rl.DrawModelWires(m.Bark, rl.Vector3{}, 1.0, rl.Brown)
		} else {
			rl.DrawModel(m.Bark, rl.Vector3{}, 1.0, rl.White)
		}
	}
	if m.HasLeaves && r.ShowLeaves && !r.Wireframe {
		if r.LeafShader.ID != 0 {
			rl.SetShaderValue(r.LeafShader, r.leafTimeLoc, []float32{float32(rl.GetTime())}, rl.ShaderUniformFloat)
		}
		rl.DisableBackfaceCulling()
		rl.DrawModel(m.Leaves, rl.Vector3{}, 1.0, rl.White)
		rl.EnableBackfaceCulling()
		r.last.Leaves = true
	}
}

// LastStats retorna as estatísticas do último Draw.
func (r *Renderer) LastStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *Renderer) unloadLocked() {
	for _, m := range r.levels {
		if m.HasBark {
			rl.UnloadModel(m.Bark)
		}
		if m.HasLeaves {
			rl.UnloadModel(m.Leaves)
		}
	}
	r.levels = nil
}

// Unload libera modelos, shaders e texturas.
func (r *Renderer) Unload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unloadLocked()
	if r.BarkShader.ID != 0 {
		rl.UnloadShader(r.BarkShader)
	}
	if r.LeafShader.ID != 0 {
		rl.UnloadShader(r.LeafShader)
	}
	if r.BarkTexture.ID != 0 {
		rl.UnloadTexture(r.BarkTexture)
	}
	if r.LeafTexture.ID != 0 {
		rl.UnloadTexture(r.LeafTexture)
	}
}
