package app

import (
	"log"
	"sync"

	"Arvoredo/cliente/internal/camera"
	"Arvoredo/cliente/internal/client"
	"Arvoredo/cliente/internal/render"
	"Arvoredo/shared/arvore"
	"Arvoredo/shared/config"
	"Arvoredo/shared/mesher"
	"Arvoredo/shared/meshing"
	"Arvoredo/shared/presets"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Esperando a primeira árvore
	StateViewing                 // Visualizando
	StatePaused                  // Pausado
)

// treeUpdate é uma árvore pronta para subir para a GPU.
type treeUpdate struct {
	Preset   string
	Seed     int64
	Segments int
	Levels   []meshing.LodMesh
	Skeleton *meshing.Geometry
	Err      error
}

// App é o visualizador de árvores.
type App struct {
	Config *config.Config
	State  AppState

	Cam      *camera.CameraController
	renderer *render.Renderer

	// Geração local (ServerURL vazio) ou remota
	mesher    *mesher.TreeMesher
	store     *presets.Store
	netClient *client.NetworkClient
	updates   chan treeUpdate

	mu          sync.Mutex
	presetNames []string
	presetIndex int
	preset      string
	seed        int64
	levels      []arvore.LevelOfDetailParameters
	Status      string
	pendingSave uint64
	pendingSeed int64

	// Árvore atual
	segments   int
	generating bool
	treeBounds [2]mgl32.Vec3
	frameCount int
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	levels, err := cfg.Levels()
	if err != nil {
		log.Printf("[App] Níveis de detalhe inválidos, usando o padrão: %v", err)
		levels = []arvore.LevelOfDetailParameters{arvore.NewLevelOfDetail()}
	}
	return &App{
		Config:  cfg,
		State:   StateLoading,
		updates: make(chan treeUpdate, 4),
		preset:  cfg.DefaultPreset,
		seed:    cfg.DefaultSeed,
		levels:  levels,
		Status:  "Iniciando...",
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	a.Cam = camera.New(mgl32.Vec3{0, 1, 0}, a.Config.CameraDistance)
	a.Cam.ZoomSpeed = a.Config.ZoomSpeed
	a.renderer = render.NewRenderer()
	a.renderer.Wireframe = a.Config.WireframeMode

	log.Printf("[Arvoredo] Janela inicializada: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	if a.Config.ServerURL == "" {
		a.startLocal()
	} else {
		go a.connectServer()
	}

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// startLocal abre o banco de presets local e inicia os workers.
func (a *App) startLocal() {
	store, err := presets.Open(a.Config.DatabasePath)
	if err != nil {
		log.Printf("[App] Banco de presets indisponível, usando presets embutidos: %v", err)
	} else {
		a.store = store
		if err := store.SeedDefaults(); err != nil {
			log.Printf("[App] Falha ao gravar presets padrão: %v", err)
		}
	}
	a.mesher = mesher.NewTreeMesher(a.Config.Workers, mesher.NewResultStore(16))
	log.Printf("[App] Geração local com %d workers", a.Config.Workers)

	a.setPresetNames(a.localPresetNames())
	go a.forwardLocalResults()
	a.requestTree()
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++
	a.processUpdates()

	switch a.State {
	case StateViewing, StateLoading:
		a.updateCamera()
		a.updateInput()
	case StatePaused:
		a.updateInput()
	}
}

// processUpdates sobe para a GPU as árvores que chegaram desde o último frame.
func (a *App) processUpdates() {
	for {
		select {
		case up := <-a.updates:
			a.applyUpdate(up)
		default:
			return
		}
	}
}

func (a *App) applyUpdate(up treeUpdate) {
	a.mu.Lock()
	a.generating = false
	a.mu.Unlock()

	if up.Err != nil {
		a.setStatus("Erro: " + up.Err.Error())
		return
	}
	a.renderer.Upload(up.Levels)
	a.renderer.SetSkeleton(up.Skeleton)
	a.segments = up.Segments

	// Enquadra a árvore na primeira malha disponível
	for _, lm := range up.Levels {
		if lm.Geometry != nil {
			lo, hi := lm.Geometry.Bounds()
			a.treeBounds = [2]mgl32.Vec3{lo, hi}
			a.Cam.TargetLookAt = lo.Add(hi).Mul(0.5)
			break
		}
	}
	if a.State == StateLoading {
		a.State = StateViewing
	}
	a.setStatus("")
	log.Printf("[App] Árvore %s seed=%d carregada (%d segmentos)", up.Preset, up.Seed, up.Segments)
}

func (a *App) setStatus(s string) {
	a.mu.Lock()
	a.Status = s
	a.mu.Unlock()
}

func (a *App) setPresetNames(names []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.presetNames = names
	a.presetIndex = 0
	for i, n := range names {
		if n == a.preset {
			a.presetIndex = i
		}
	}
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")
	if a.mesher != nil {
		a.mesher.Stop()
	}
	if a.netClient != nil {
		a.netClient.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	a.renderer.Unload()

	a.Config.WireframeMode = a.renderer.Wireframe
	a.Config.DefaultPreset = a.preset
	a.Config.DefaultSeed = a.seed
	if err := a.Config.Save(config.ConfigPath()); err != nil {
		log.Printf("[Arvoredo] Erro ao salvar configurações: %v", err)
	}
}
