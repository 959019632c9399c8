package camera

import (
	"Arvoredo/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode define o tipo de projeção.
type Mode int

const (
	ModePerspective Mode = iota
	ModeOrthographic
)

// CameraController orbita ao redor da árvore com movimento suave.
type CameraController struct {
	RLCamera rl.Camera3D

	// Configurações
	Mode         Mode
	MinZoom      float32
	MaxZoom      float32
	RotateSpeed  float32
	ZoomSpeed    float32
	PanSpeed     float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave/lento)

	// Estado alvo
	TargetLookAt mgl32.Vec3
	TargetZoom   float32
	TargetAngleY float32 // azimute (radianos)
	TargetAngleX float32 // elevação (radianos)
	AutoRotate   bool

	// Estado atual (interpolado)
	CurrentLookAt mgl32.Vec3
	CurrentZoom   float32
}

// New cria um controlador olhando para target a distance unidades.
func New(target mgl32.Vec3, distance float32) *CameraController {
	c := &CameraController{
		Mode:         ModePerspective,
		MinZoom:      0.5,
		MaxZoom:      200.0,
		RotateSpeed:  2.0,
		ZoomSpeed:    1.0,
		PanSpeed:     2.0,
		SmoothFactor: 0.15,

		TargetLookAt: target,
		TargetZoom:   distance,
		TargetAngleY: 45.0 * rl.Deg2rad,
		TargetAngleX: -15.0 * rl.Deg2rad,
	}
	c.CurrentLookAt = c.TargetLookAt
	c.CurrentZoom = c.TargetZoom

	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45.0,
		Projection: rl.CameraPerspective,
	}
	c.UpdateWait()
	return c
}

// SetTarget move o alvo imediatamente (sem suavização).
func (c *CameraController) SetTarget(pos mgl32.Vec3) {
	c.TargetLookAt = pos
	c.CurrentLookAt = pos
	c.UpdateWait()
}

// Distance é a distância atual até o alvo, usada na escolha do nível de detalhe.
func (c *CameraController) Distance() float32 {
	return c.CurrentZoom
}

// Update interpola o estado atual em direção ao alvo. Deve ser chamado a cada frame.
func (c *CameraController) Update(dt float32) {
	factor := util.Clamp(c.SmoothFactor*60.0*dt, 0, 1) // Normaliza para 60 FPS

	if c.AutoRotate {
		c.TargetAngleY += 0.3 * dt
	}
	c.CurrentLookAt = c.CurrentLookAt.Add(c.TargetLookAt.Sub(c.CurrentLookAt).Mul(factor))
	c.CurrentZoom = util.Lerp(c.CurrentZoom, c.TargetZoom, factor)
	c.UpdateWait()
}

// UpdateWait recalcula a posição da câmera a partir dos ângulos e do zoom atuais.
func (c *CameraController) UpdateWait() {
	dist := c.CurrentZoom
	if c.Mode == ModeOrthographic {
		c.RLCamera.Fovy = c.CurrentZoom
		c.RLCamera.Projection = rl.CameraOrthographic
		dist = c.MaxZoom // longe o bastante para não cortar a geometria
	} else {
		c.RLCamera.Fovy = 45.0
		c.RLCamera.Projection = rl.CameraPerspective
	}

	pos := c.CurrentLookAt.Add(Orbit(c.TargetAngleY, c.TargetAngleX, dist))
	c.RLCamera.Position = rl.Vector3{X: pos.X(), Y: pos.Y(), Z: pos.Z()}
	c.RLCamera.Target = rl.Vector3{X: c.CurrentLookAt.X(), Y: c.CurrentLookAt.Y(), Z: c.CurrentLookAt.Z()}
}

// Orbit converte azimute/elevação/distância no deslocamento a partir do alvo.
func Orbit(angleY, angleX, dist float32) mgl32.Vec3 {
	cosX, sinX := util.Cos(angleX), util.Sin(angleX)
	cosY, sinY := util.Cos(angleY), util.Sin(angleY)
	return mgl32.Vec3{dist * cosX * sinY, dist * -sinX, dist * cosX * cosY}
}

// SetMode alterna entre perspectiva e ortográfica.
func (c *CameraController) SetMode(mode Mode) {
	c.Mode = mode
	c.UpdateWait()
}

// Zoom aplica um passo de zoom proporcional à distância atual.
func (c *CameraController) Zoom(steps float32) {
	c.TargetZoom -= steps * c.ZoomSpeed * (c.TargetZoom * 0.1)
	c.TargetZoom = util.Clamp(c.TargetZoom, c.MinZoom, c.MaxZoom)
}

// HandleInput processa mouse e teclado. Retorna true se houve movimento.
func (c *CameraController) HandleInput(dt float32) bool {
	moved := false
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.Zoom(wheel)
		moved = true
	}

	// Órbita com botão esquerdo
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			moved = true
			c.AutoRotate = false
		}
		c.TargetAngleY -= delta.X * c.RotateSpeed * 0.005
		c.TargetAngleX -= delta.Y * c.RotateSpeed * 0.005
		// Entre -89 graus (topo) e +60 graus (por baixo, para ver as raízes)
		c.TargetAngleX = util.Clamp(c.TargetAngleX, -89*rl.Deg2rad, 60*rl.Deg2rad)
	}

	// W/S sobe e desce o alvo; Q/E gira
	speed := c.PanSpeed * (c.CurrentZoom / 5.0) * dt
	if rl.IsKeyDown(rl.KeyW) {
		c.TargetLookAt[1] += speed
		moved = true
	}
	if rl.IsKeyDown(rl.KeyS) {
		c.TargetLookAt[1] -= speed
		moved = true
	}
	if rl.IsKeyDown(rl.KeyQ) {
		c.TargetAngleY += c.RotateSpeed * dt
		moved = true
	}
	if rl.IsKeyDown(rl.KeyE) {
		c.TargetAngleY -= c.RotateSpeed * dt
		moved = true
	}
	return moved
}
