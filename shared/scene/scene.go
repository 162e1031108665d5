// Package scene define o colaborador de cena que recebe as malhas e materiais gerados.
package scene

import (
	"context"

	"SpriteVision/shared/meshing"
	"SpriteVision/shared/sprite"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// MaterialPrefix é o prefixo do nome de todo material gerado a partir de uma cor.
const MaterialPrefix = "sv_material_"

var (
	ErrDuplicateObject = errors.New("objeto já existe na cena")
	ErrUnknownObject   = errors.New("objeto não existe na cena")
	ErrUnknownMaterial = errors.New("material não existe na cena")
)

// MaterialDescriptor descreve um material de cor sólida.
type MaterialDescriptor struct {
	Name      string
	BaseColor [4]float64
}

// NewMaterialDescriptor deriva o material de uma cor: nome "sv_material_R G B" e alfa 1.0.
func NewMaterialDescriptor(key sprite.ColorKey) MaterialDescriptor {
	return MaterialDescriptor{
		Name:      MaterialPrefix + key.String(),
		BaseColor: key.RGBA(),
	}
}

// Key recupera a cor a partir da cor base.
func (m MaterialDescriptor) Key() sprite.ColorKey {
	return sprite.ColorKey{R: m.BaseColor[0], G: m.BaseColor[1], B: m.BaseColor[2]}
}

// Scene registra objetos e materiais. A posse da malha passa para a cena em AddObject.
type Scene interface {
	AddObject(ctx context.Context, objectName string, mesh meshing.MeshDescriptor) error
	AddMaterial(ctx context.Context, mat MaterialDescriptor) error
	AssignMaterial(ctx context.Context, objectName, materialName string) error
}

type multi []Scene

// Multi replica cada chamada em todas as cenas. Todas são chamadas mesmo que uma falhe;
// os erros são combinados.
func Multi(scenes ...Scene) Scene {
	return multi(scenes)
}

func (m multi) AddObject(ctx context.Context, objectName string, mesh meshing.MeshDescriptor) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.AddObject(ctx, objectName, mesh))
	}
	return err
}

func (m multi) AddMaterial(ctx context.Context, mat MaterialDescriptor) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.AddMaterial(ctx, mat))
	}
	return err
}

func (m multi) AssignMaterial(ctx context.Context, objectName, materialName string) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.AssignMaterial(ctx, objectName, materialName))
	}
	return err
}
