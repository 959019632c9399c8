package app

import (
	"fmt"
	"log"

	"Arvoredo/cliente/internal/client"
	"Arvoredo/shared/mesher"
	"Arvoredo/shared/presets"
	"Arvoredo/shared/proto/arvnet"
)

// connectServer conecta ao servidor Arvoredo e registra os callbacks.
func (a *App) connectServer() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro em connectServer: %v", r)
		}
	}()

	a.setStatus("Conectando a " + a.Config.ServerURL + "...")
	a.netClient = client.NewNetworkClient(a.Config.ServerURL)

	a.netClient.OnStatus = func(status *arvnet.ServerStatus) {
		a.mu.Lock()
		if a.preset == "" {
			a.preset = status.DefaultPreset
		}
		a.mu.Unlock()
		a.netClient.RequestPresets()
		a.requestTree()
	}
	a.netClient.OnPresets = a.setPresetNames
	a.netClient.OnPreset = a.onRemotePreset
	a.netClient.OnMesh = func(_ uint64, res *arvnet.MeshResult) {
		a.updates <- treeUpdate{
			Preset:   res.Preset,
			Seed:     res.Seed,
			Segments: int(res.SegmentCount),
			Levels:   res.Levels,
			Skeleton: res.Skeleton,
		}
	}
	a.netClient.OnError = func(_ uint64, err error) {
		a.updates <- treeUpdate{Err: err}
	}

	if err := a.netClient.Connect(10); err != nil {
		a.setStatus(fmt.Sprintf("Sem conexão com o servidor: %v", err))
	}
}

// requestTree pede a árvore do preset e semente atuais.
func (a *App) requestTree() {
	a.mu.Lock()
	preset, seed, levels := a.preset, a.seed, a.levels
	a.generating = true
	a.mu.Unlock()
	a.setStatus(fmt.Sprintf("Gerando %s (seed %d)...", preset, seed))

	if a.netClient != nil {
		req := &arvnet.GenerateRequest{Preset: preset, Seed: seed, HasSeed: true, Levels: levels}
		if _, err := a.netClient.RequestTree(req); err != nil {
			a.updates <- treeUpdate{Err: err}
		}
		return
	}

	p, err := a.loadLocalPreset(preset)
	if err != nil {
		a.updates <- treeUpdate{Err: err}
		return
	}
	if len(p.Levels) > 0 {
		levels = p.Levels
	}
	req := mesher.Request{Key: fmt.Sprintf("%s/%d", preset, seed), Preset: preset, Seed: seed, Params: p.Params, Levels: levels}
	if !a.mesher.Enqueue(req) {
		log.Printf("[App] Requisição %s já pendente", req.Key)
	}
}

// forwardLocalResults repassa os resultados dos workers para o loop principal.
func (a *App) forwardLocalResults() {
	for res := range a.mesher.Results() {
		up := treeUpdate{Preset: res.Request.Preset, Seed: res.Request.Seed, Err: res.Err}
		if res.Mesh != nil {
			up.Levels = res.Mesh.Levels
			up.Skeleton = res.Mesh.Skeleton
			if res.Mesh.Tree != nil {
				up.Segments = res.Mesh.Tree.Count()
			}
		}
		a.updates <- up
	}
}

func (a *App) localPresetNames() []string {
	if a.store != nil {
		if names, err := a.store.List(); err == nil && len(names) > 0 {
			return names
		}
	}
	var names []string
	for _, p := range presets.Defaults() {
		names = append(names, p.Name)
	}
	return names
}

func (a *App) loadLocalPreset(name string) (*arvnet.Preset, error) {
	if a.store != nil {
		return a.store.Load(name)
	}
	for _, p := range presets.Defaults() {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", presets.ErrNotFound, name)
}

// withSeed copia o preset fixando a semente no nome e nos parâmetros.
func withSeed(p *arvnet.Preset, seed int64) *arvnet.Preset {
	params := p.Params.Clone()
	params.Seed = seed
	return &arvnet.Preset{Name: fmt.Sprintf("%s-%d", p.Name, seed), Params: params, Levels: p.Levels}
}

// saveCurrentPreset grava o preset atual com a semente atual fixada. No modo
// remoto o preset é buscado no servidor e salvo quando chegar (OnPreset).
func (a *App) saveCurrentPreset() {
	a.mu.Lock()
	preset, seed := a.preset, a.seed
	a.mu.Unlock()

	if a.netClient != nil {
		id, err := a.netClient.RequestPreset(preset)
		if err != nil {
			a.setStatus("Erro ao salvar: " + err.Error())
			return
		}
		a.mu.Lock()
		a.pendingSave, a.pendingSeed = id, seed
		a.mu.Unlock()
		return
	}

	p, err := a.loadLocalPreset(preset)
	if err == nil && a.store == nil {
		err = fmt.Errorf("banco de presets indisponível")
	}
	if err != nil {
		a.setStatus("Erro ao salvar: " + err.Error())
		return
	}
	out := withSeed(p, seed)
	if err := a.store.Save(out); err != nil {
		a.setStatus("Erro ao salvar: " + err.Error())
		return
	}
	a.setPresetNames(a.localPresetNames())
	a.setStatus("Preset salvo: " + out.Name)
}

// onRemotePreset completa um saveCurrentPreset remoto.
func (a *App) onRemotePreset(id uint64, p *arvnet.Preset) {
	a.mu.Lock()
	if id != a.pendingSave {
		a.mu.Unlock()
		return
	}
	seed := a.pendingSeed
	a.pendingSave = 0
	a.mu.Unlock()

	out := withSeed(p, seed)
	if err := a.netClient.SavePreset(out); err != nil {
		a.setStatus("Erro ao salvar: " + err.Error())
		return
	}
	a.setStatus("Preset salvo: " + out.Name)
}
