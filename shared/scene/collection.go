package scene

import (
	"context"
	"sync"

	"SpriteVision/shared/meshing"

	"github.com/pkg/errors"
)

// Object é um objeto registrado na Collection.
type Object struct {
	Name     string
	Mesh     meshing.MeshDescriptor
	Material string
}

// Collection é uma cena em memória que guarda objetos e materiais na ordem de registro.
// É segura para uso concorrente (o servidor lê enquanto o pipeline escreve).
type Collection struct {
	mu        sync.RWMutex
	objects   []*Object
	byName    map[string]*Object
	materials map[string]MaterialDescriptor
	matOrder  []string
}

// NewCollection cria uma coleção vazia.
func NewCollection() *Collection {
	return &Collection{
		byName:    make(map[string]*Object),
		materials: make(map[string]MaterialDescriptor),
	}
}

func (c *Collection) AddObject(ctx context.Context, objectName string, mesh meshing.MeshDescriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byName[objectName]; ok {
		return errors.Wrap(ErrDuplicateObject, objectName)
	}
	obj := &Object{Name: objectName, Mesh: mesh}
	c.objects = append(c.objects, obj)
	c.byName[objectName] = obj
	return nil
}

// AddMaterial registra o material. Um material com o mesmo nome é substituído (mesma cor, mesmo nome).
func (c *Collection) AddMaterial(ctx context.Context, mat MaterialDescriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.materials[mat.Name]; !ok {
		c.matOrder = append(c.matOrder, mat.Name)
	}
	c.materials[mat.Name] = mat
	return nil
}

func (c *Collection) AssignMaterial(ctx context.Context, objectName, materialName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.byName[objectName]
	if !ok {
		return errors.Wrap(ErrUnknownObject, objectName)
	}
	if _, ok := c.materials[materialName]; !ok {
		return errors.Wrap(ErrUnknownMaterial, materialName)
	}
	obj.Material = materialName
	return nil
}

// Objects retorna cópias dos objetos na ordem de registro.
func (c *Collection) Objects() []Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Object, len(c.objects))
	for i, o := range c.objects {
		out[i] = *o
	}
	return out
}

// Object busca um objeto pelo nome.
func (c *Collection) Object(name string) (Object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if o, ok := c.byName[name]; ok {
		return *o, true
	}
	return Object{}, false
}

// Material busca um material pelo nome.
func (c *Collection) Material(name string) (MaterialDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.materials[name]
	return m, ok
}

// Materials retorna os materiais na ordem de registro.
func (c *Collection) Materials() []MaterialDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]MaterialDescriptor, 0, len(c.matOrder))
	for _, name := range c.matOrder {
		out = append(out, c.materials[name])
	}
	return out
}

// Len retorna o número de objetos.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}

// Clear remove tudo.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = nil
	c.byName = make(map[string]*Object)
	c.materials = make(map[string]MaterialDescriptor)
	c.matOrder = nil
}
