package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"SpriteVision/shared/logging"
	"SpriteVision/shared/meshing"
	"SpriteVision/shared/scene"
	"SpriteVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// PendingCapacity é o número máximo de operações aguardando a thread de render.
const PendingCapacity = 4096

type opKind int

const (
	opAddObject opKind = iota
	opAddMaterial
	opAssign
	opClear
)

type pendingOp struct {
	kind     opKind
	name     string
	mesh     meshing.MeshDescriptor
	material scene.MaterialDescriptor
}

// SpriteModel é um objeto já enviado para a GPU.
type SpriteModel struct {
	Name     string
	Material string
	Color    rl.Color
	Faces    int
	Min, Max mgl64.Vec3
	Model    rl.Model
}

// Renderer implementa scene.Scene sobre a Raylib. As chamadas de Scene podem vir de
// qualquer goroutine: são validadas na hora e enfileiradas; o upload para a GPU só
// acontece em ProcessPending, na thread principal.
type Renderer struct {
	log logging.Logger

	pushMu  sync.Mutex
	mirror  *scene.Collection
	pending *util.RingBuffer[pendingOp]

	// Apenas thread de render.
	models    map[string]*SpriteModel
	order     []string
	materials map[string]rl.Color

	Wireframe bool
}

var _ scene.Scene = (*Renderer)(nil)

func NewRenderer(log logging.Logger) *Renderer {
	return &Renderer{
		log:       logging.OrNop(log),
		mirror:    scene.NewCollection(),
		pending:   util.NewRingBuffer[pendingOp](PendingCapacity),
		models:    make(map[string]*SpriteModel),
		materials: make(map[string]rl.Color),
	}
}

// push valida contra o espelho e enfileira. O chamador segura pushMu.
func (r *Renderer) push(op pendingOp, apply func() error) error {
	if r.pending.Len() >= r.pending.Cap() {
		return errors.Wrapf(util.ErrRingFull, "render: %s", op.name)
	}
	if err := apply(); err != nil {
		return err
	}
	return r.pending.Enqueue(op)
}

func (r *Renderer) AddObject(ctx context.Context, objectName string, mesh meshing.MeshDescriptor) error {
	r.pushMu.Lock()
	defer r.pushMu.Unlock()
	op := pendingOp{kind: opAddObject, name: objectName, mesh: mesh}
	return r.push(op, func() error { return r.mirror.AddObject(ctx, objectName, mesh) })
}

func (r *Renderer) AddMaterial(ctx context.Context, mat scene.MaterialDescriptor) error {
	r.pushMu.Lock()
	defer r.pushMu.Unlock()
	op := pendingOp{kind: opAddMaterial, name: mat.Name, material: mat}
	return r.push(op, func() error { return r.mirror.AddMaterial(ctx, mat) })
}

func (r *Renderer) AssignMaterial(ctx context.Context, objectName, materialName string) error {
	r.pushMu.Lock()
	defer r.pushMu.Unlock()
	op := pendingOp{kind: opAssign, name: objectName, material: scene.MaterialDescriptor{Name: materialName}}
	return r.push(op, func() error { return r.mirror.AssignMaterial(ctx, objectName, materialName) })
}

// Clear descarta a cena atual (usado quando o servidor troca de sprite).
func (r *Renderer) Clear() error {
	r.pushMu.Lock()
	defer r.pushMu.Unlock()
	return r.push(pendingOp{kind: opClear, name: "*"}, func() error {
		r.mirror.Clear()
		return nil
	})
}

// Len retorna quantos objetos a cena terá depois que a fila for processada.
func (r *Renderer) Len() int {
	return r.mirror.Len()
}

// ProcessPending aplica até budget operações da fila (todas se budget <= 0).
// Deve ser chamado na thread principal, uma vez por frame.
func (r *Renderer) ProcessPending(budget int) int {
	n := 0
	for budget <= 0 || n < budget {
		op, err := r.pending.Dequeue()
		if err != nil {
			break
		}
		r.apply(op)
		n++
	}
	return n
}

func (r *Renderer) apply(op pendingOp) {
	switch op.kind {
	case opAddObject:
		r.upload(op.name, op.mesh)
	case opAddMaterial:
		r.materials[op.material.Name] = toColor(op.material.BaseColor)
	case opAssign:
		m, ok := r.models[op.name]
		if !ok {
			return
		}
		c, ok := r.materials[op.material.Name]
		if !ok {
			return
		}
		m.Material = op.material.Name
		m.Color = c
		if m.Model.MaterialCount > 0 {
			m.Model.Materials.GetMap(rl.MapDiffuse).Color = c
		}
	case opClear:
		r.unloadAll()
	}
}

func (r *Renderer) upload(name string, desc meshing.MeshDescriptor) {
	if len(desc.Faces) == 0 {
		r.log.Warnw("Malha vazia ignorada", "object", name)
		return
	}
	geo := desc.Geometry([4]uint8{255, 255, 255, 255})
	mesh := geometryToMesh(geo)
	rl.UploadMesh(&mesh, false)

	lo, hi := desc.Bounds()
	sm := &SpriteModel{
		Name:  name,
		Color: rl.White,
		Faces: len(desc.Faces),
		Min:   lo,
		Max:   hi,
		Model: rl.LoadModelFromMesh(mesh),
	}
	if old, ok := r.models[name]; ok {
		rl.UnloadModel(old.Model)
	} else {
		r.order = append(r.order, name)
	}
	r.models[name] = sm
	r.log.Debugw("Malha enviada para GPU", "object", name, "faces", sm.Faces, "vertices", geo.VertexCount())
}

func (r *Renderer) unloadAll() {
	for _, m := range r.models {
		rl.UnloadModel(m.Model)
	}
	r.models = make(map[string]*SpriteModel)
	r.materials = make(map[string]rl.Color)
	r.order = r.order[:0]
}

// Models retorna os objetos carregados na ordem em que chegaram.
func (r *Renderer) Models() []*SpriteModel {
	out := make([]*SpriteModel, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.models[name])
	}
	return out
}

// Bounds retorna a caixa que envolve todos os objetos carregados.
func (r *Renderer) Bounds() (lo, hi mgl64.Vec3, ok bool) {
	for i, name := range r.order {
		m := r.models[name]
		if i == 0 {
			lo, hi = m.Min, m.Max
			continue
		}
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], m.Min[k])
			hi[k] = max(hi[k], m.Max[k])
		}
	}
	return lo, hi, len(r.order) > 0
}

// Draw desenha todos os objetos. Deve ser chamado entre BeginMode3D/EndMode3D.
func (r *Renderer) Draw() {
	for _, name := range r.order {
		m := r.models[name]
		rl.DrawModel(m.Model, rl.Vector3{}, 1.0, rl.White)
		if r.Wireframe {
			rl.DrawModelWires(m.Model, rl.Vector3{}, 1.0, rl.DarkGray)
		}
	}
}

// Pick retorna o objeto atingido pelo raio do mouse.
func (r *Renderer) Pick(ray rl.Ray) (*SpriteModel, bool) {
	var (
		closest float32 = 1e9
		hit     *SpriteModel
	)
	for _, name := range r.order {
		m := r.models[name]
		meshes := unsafe.Slice(m.Model.Meshes, m.Model.MeshCount)
		for i := range meshes {
			col := rl.GetRayCollisionMesh(ray, meshes[i], m.Model.Transform)
			if col.Hit && col.Distance < closest {
				closest = col.Distance
				hit = m
			}
		}
	}
	return hit, hit != nil
}

// Close libera todos os modelos da GPU.
func (r *Renderer) Close() {
	r.ProcessPending(0)
	r.unloadAll()
}

func toColor(c [4]float64) rl.Color {
	return rl.NewColor(unit8(c[0]), unit8(c[1]), unit8(c[2]), unit8(c[3]))
}

func unit8(v float64) uint8 {
	return uint8(util.Clamp(float32(v), 0, 1)*255 + 0.5)
}

// geometryToMesh copia os arrays para memória C; a Raylib libera com free em UnloadModel.
func geometryToMesh(data meshing.GeometryData) rl.Mesh {
	var mesh rl.Mesh
	vCount := int32(data.VertexCount())
	mesh.VertexCount = vCount
	mesh.TriangleCount = vCount / 3

	if len(data.Vertices) > 0 {
		mesh.Vertices = (*float32)(copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		mesh.Normals = (*float32)(copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.Colors) > 0 {
		mesh.Colors = (*uint8)(copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	return mesh
}

func copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(ptr), size), unsafe.Slice((*byte)(data), size))
	return ptr
}
