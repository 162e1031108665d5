// Package store persiste as cenas geradas em SQLite.
package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"os"
	"path/filepath"
	"sync"
	"time"

	"SpriteVision/shared/logging"
	"SpriteVision/shared/meshing"
	"SpriteVision/shared/scene"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunModel registra uma execução de importação.
type RunModel struct {
	ID        string `gorm:"primaryKey"`
	Image     string `gorm:"index"`
	Scale     float64
	CreatedAt time.Time
}

// ObjectModel é um objeto de cena com sua malha serializada em GOB.
type ObjectModel struct {
	Name      string `gorm:"primaryKey"`
	RunID     string `gorm:"index"`
	MeshName  string
	Vertices  int
	Faces     int
	Data      []byte
	Material  string
	UpdatedAt time.Time
}

// MaterialModel armazena a cor de um material persistido.
type MaterialModel struct {
	Name       string `gorm:"primaryKey"`
	R, G, B, A float64
}

const CurrentFormatVersion = 1

// meshPayload é o formato GOB da malha no banco.
type meshPayload struct {
	Vertices [][3]float64
	Faces    []meshing.Face
}

// Store implementa scene.Scene sobre SQLite.
type Store struct {
	DB  *gorm.DB
	log logging.Logger

	mu    sync.Mutex
	runID string
}

// Open abre (ou cria) o banco de dados SQLite e roda as migrações.
func Open(path string, log logging.Logger) (*Store, error) {
	log = logging.OrNop(log)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "falha ao criar %s", dir)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "falha ao conectar no SQLite")
	}
	if err := db.AutoMigrate(&RunModel{}, &ObjectModel{}, &MaterialModel{}); err != nil {
		return nil, errors.Wrap(err, "falha na migração do banco")
	}

	log.Infow("Banco de dados SQLite aberto", "path", path, "format", CurrentFormatVersion)
	return &Store{DB: db, log: log}, nil
}

// BeginRun inicia uma nova execução. A cena gravada é substituída: objetos e materiais
// de execuções anteriores são apagados e os gravados a partir de agora levam o id da execução.
// O histórico de execuções é mantido.
func (s *Store) BeginRun(ctx context.Context, id uuid.UUID, image string, scale float64) error {
	run := RunModel{ID: id.String(), Image: image, Scale: scale}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ObjectModel{}).Error; err != nil {
			return errors.Wrap(err, "falha ao limpar objetos")
		}
		if err := tx.Where("1 = 1").Delete(&MaterialModel{}).Error; err != nil {
			return errors.Wrap(err, "falha ao limpar materiais")
		}
		return tx.Create(&run).Error
	})
	if err != nil {
		return errors.Wrapf(err, "falha ao registrar execução %s", run.ID)
	}
	s.mu.Lock()
	s.runID = run.ID
	s.mu.Unlock()
	return nil
}

// AddObject grava (ou substitui) o objeto e sua malha.
func (s *Store) AddObject(ctx context.Context, objectName string, mesh meshing.MeshDescriptor) error {
	if err := mesh.Validate(); err != nil {
		return err
	}
	data, err := encodeMesh(mesh)
	if err != nil {
		return errors.Wrapf(err, "falha ao serializar %s", mesh.Name)
	}

	s.mu.Lock()
	runID := s.runID
	s.mu.Unlock()

	model := ObjectModel{
		Name:     objectName,
		RunID:    runID,
		MeshName: mesh.Name,
		Vertices: len(mesh.Vertices),
		Faces:    len(mesh.Faces),
		Data:     data,
	}
	// Upsert (Cria ou Atualiza)
	if err := s.DB.WithContext(ctx).Save(&model).Error; err != nil {
		s.log.Errorw("Erro ao salvar objeto", "object", objectName, "error", err)
		return errors.Wrapf(err, "falha ao salvar %s", objectName)
	}
	return nil
}

// AddMaterial grava (ou atualiza) o material pelo nome.
func (s *Store) AddMaterial(ctx context.Context, mat scene.MaterialDescriptor) error {
	c := mat.BaseColor
	model := MaterialModel{Name: mat.Name, R: c[0], G: c[1], B: c[2], A: c[3]}
	if err := s.DB.WithContext(ctx).Save(&model).Error; err != nil {
		return errors.Wrapf(err, "falha ao salvar material %s", mat.Name)
	}
	return nil
}

// AssignMaterial associa um material existente a um objeto existente.
func (s *Store) AssignMaterial(ctx context.Context, objectName, materialName string) error {
	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&MaterialModel{}).Where("name = ?", materialName).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errors.Wrap(scene.ErrUnknownMaterial, materialName)
	}
	res := db.Model(&ObjectModel{}).Where("name = ?", objectName).Update("material", materialName)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(scene.ErrUnknownObject, objectName)
	}
	return nil
}

// Objects recarrega os objetos gravados, em ordem de nome.
func (s *Store) Objects(ctx context.Context) ([]scene.Object, error) {
	var models []ObjectModel
	if err := s.DB.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]scene.Object, 0, len(models))
	for _, m := range models {
		mesh, err := decodeMesh(m.MeshName, m.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "objeto %s corrompido", m.Name)
		}
		out = append(out, scene.Object{Name: m.Name, Mesh: mesh, Material: m.Material})
	}
	return out, nil
}

// Materials recarrega os materiais gravados, em ordem de nome.
func (s *Store) Materials(ctx context.Context) ([]scene.MaterialDescriptor, error) {
	var models []MaterialModel
	if err := s.DB.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]scene.MaterialDescriptor, 0, len(models))
	for _, m := range models {
		out = append(out, scene.MaterialDescriptor{Name: m.Name, BaseColor: [4]float64{m.R, m.G, m.B, m.A}})
	}
	return out, nil
}

// Runs lista as execuções, da mais recente para a mais antiga.
func (s *Store) Runs(ctx context.Context) ([]RunModel, error) {
	var runs []RunModel
	err := s.DB.WithContext(ctx).Order("created_at desc").Find(&runs).Error
	return runs, err
}

// Close fecha a conexão com o banco.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func encodeMesh(mesh meshing.MeshDescriptor) ([]byte, error) {
	p := meshPayload{Vertices: make([][3]float64, len(mesh.Vertices)), Faces: mesh.Faces}
	for i, v := range mesh.Vertices {
		p.Vertices[i] = v
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMesh(name string, data []byte) (meshing.MeshDescriptor, error) {
	var p meshPayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return meshing.MeshDescriptor{}, err
	}
	mesh := meshing.MeshDescriptor{
		Name:     name,
		Vertices: make([]mgl64.Vec3, len(p.Vertices)),
		Faces:    p.Faces,
	}
	for i, v := range p.Vertices {
		mesh.Vertices[i] = v
	}
	if mesh.Faces == nil {
		mesh.Faces = []meshing.Face{}
	}
	return mesh, nil
}
