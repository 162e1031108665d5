package camera

import (
	"math"

	"SpriteVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode define o tipo de projeção estritamente.
type Mode int

const (
	ModePerspective Mode = iota
	ModeOrthographic
)

// CameraController gerencia a câmera orbital. O eixo Z é o "para cima", como no
// espaço dos sprites (o plano da imagem é XY).
type CameraController struct {
	RLCamera rl.Camera3D

	Mode         Mode
	MinZoom      float32
	MaxZoom      float32
	MoveSpeed    float32
	RotateSpeed  float32
	ZoomSpeed    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave)

	// Estado alvo (para interpolação suave)
	TargetLookAt rl.Vector3
	TargetZoom   float32
	Azimuth      float32 // rotação em torno de Z (radianos)
	Elevation    float32 // ângulo acima do plano XY (radianos)

	// Estado atual (interpolado)
	CurrentLookAt rl.Vector3
	CurrentZoom   float32
}

// New cria um novo controlador de câmera.
func New(moveSpeed, zoomSpeed float32) *CameraController {
	c := &CameraController{
		Mode:         ModePerspective,
		MinZoom:      0.5,
		MaxZoom:      200.0,
		MoveSpeed:    moveSpeed,
		RotateSpeed:  2.0,
		ZoomSpeed:    zoomSpeed,
		SmoothFactor: 0.1,

		TargetZoom: 20.0,
		Azimuth:    -90.0 * rl.Deg2rad,
		Elevation:  60.0 * rl.Deg2rad,
	}
	c.CurrentLookAt = c.TargetLookAt
	c.CurrentZoom = c.TargetZoom

	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 0, Z: 1},
		Fovy:       45.0,
		Projection: rl.CameraPerspective,
	}
	c.refresh()
	return c
}

// SetTarget move o alvo imediatamente (sem suavização).
func (c *CameraController) SetTarget(pos rl.Vector3) {
	c.TargetLookAt = pos
	c.CurrentLookAt = pos
	c.refresh()
}

// Frame enquadra a caixa [lo, hi]: centraliza o alvo e ajusta o zoom.
func (c *CameraController) Frame(lo, hi rl.Vector3) {
	center := rl.Vector3{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2, Z: (lo.Z + hi.Z) / 2}
	size := mgl32.Vec3{hi.X - lo.X, hi.Y - lo.Y, hi.Z - lo.Z}.Len()
	c.TargetZoom = util.Clamp(size*1.5, c.MinZoom, c.MaxZoom)
	c.CurrentZoom = c.TargetZoom
	c.SetTarget(center)
}

// Update interpola em direção ao estado alvo. Deve ser chamado a cada frame.
func (c *CameraController) Update(dt float32) {
	factor := util.Clamp(c.SmoothFactor*60.0*dt, 0, 1) // normaliza para 60 FPS

	cur := mgl32.Vec3{c.CurrentLookAt.X, c.CurrentLookAt.Y, c.CurrentLookAt.Z}
	tgt := mgl32.Vec3{c.TargetLookAt.X, c.TargetLookAt.Y, c.TargetLookAt.Z}
	lerped := cur.Add(tgt.Sub(cur).Mul(factor))

	c.CurrentLookAt = rl.Vector3{X: lerped.X(), Y: lerped.Y(), Z: lerped.Z()}
	c.CurrentZoom = util.Lerp(c.CurrentZoom, c.TargetZoom, factor)
	c.refresh()
}

// refresh recalcula a posição da câmera a partir dos ângulos e do zoom atuais.
func (c *CameraController) refresh() {
	dist := c.CurrentZoom
	if c.Mode == ModeOrthographic {
		// No ortográfico o zoom é o Fovy; a câmera fica longe para não cortar a geometria.
		c.RLCamera.Fovy = c.CurrentZoom * 0.5
		c.RLCamera.Projection = rl.CameraOrthographic
		dist = 200.0
	} else {
		c.RLCamera.Fovy = 45.0
		c.RLCamera.Projection = rl.CameraPerspective
	}

	cosE := float32(math.Cos(float64(c.Elevation)))
	sinE := float32(math.Sin(float64(c.Elevation)))
	cosA := float32(math.Cos(float64(c.Azimuth)))
	sinA := float32(math.Sin(float64(c.Azimuth)))

	c.RLCamera.Position = rl.Vector3{
		X: c.CurrentLookAt.X + dist*cosE*cosA,
		Y: c.CurrentLookAt.Y + dist*cosE*sinA,
		Z: c.CurrentLookAt.Z + dist*sinE,
	}
	c.RLCamera.Target = c.CurrentLookAt
}

// SetMode alterna entre Perspectiva e Ortográfica.
func (c *CameraController) SetMode(mode Mode) {
	c.Mode = mode
	c.refresh()
}

// HandleInput processa entrada do usuário. Retorna true se houve input de movimento.
func (c *CameraController) HandleInput(dt float32) bool {
	moved := false

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		moved = true
		c.TargetZoom = util.Clamp(c.TargetZoom-wheel*c.ZoomSpeed*(c.TargetZoom/20.0), c.MinZoom, c.MaxZoom)
	}

	// Órbita com botão esquerdo
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			moved = true
		}
		c.Azimuth -= delta.X * c.RotateSpeed * 0.005
		c.Elevation = util.Clamp(c.Elevation+delta.Y*c.RotateSpeed*0.005, 5.0*rl.Deg2rad, 89.0*rl.Deg2rad)
	}

	// WASD relativo à câmera, projetado no plano XY
	camPos := mgl32.Vec3{c.RLCamera.Position.X, c.RLCamera.Position.Y, c.RLCamera.Position.Z}
	target := mgl32.Vec3{c.TargetLookAt.X, c.TargetLookAt.Y, c.TargetLookAt.Z}

	forward := target.Sub(camPos)
	forward[2] = 0
	if forward.Len() == 0 {
		return moved
	}
	forward = forward.Normalize()
	right := forward.Cross(mgl32.Vec3{0, 0, 1}).Normalize()

	speed := c.MoveSpeed * (c.CurrentZoom / 20.0) * dt
	move := mgl32.Vec3{}
	if rl.IsKeyDown(rl.KeyW) {
		move = move.Add(forward)
	}
	if rl.IsKeyDown(rl.KeyS) {
		move = move.Sub(forward)
	}
	if rl.IsKeyDown(rl.KeyD) {
		move = move.Add(right)
	}
	if rl.IsKeyDown(rl.KeyA) {
		move = move.Sub(right)
	}
	if move.Len() > 0 {
		target = target.Add(move.Normalize().Mul(speed))
		c.TargetLookAt = rl.Vector3{X: target.X(), Y: target.Y(), Z: target.Z()}
		moved = true
	}
	return moved
}
