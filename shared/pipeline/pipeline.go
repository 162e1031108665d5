// Package pipeline encadeia classificação, geração de malhas e registro na cena.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"SpriteVision/shared/imagesrc"
	"SpriteVision/shared/logging"
	"SpriteVision/shared/meshing"
	"SpriteVision/shared/scene"
	"SpriteVision/shared/sprite"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	DefaultImageName = "dude1.png"
	DefaultScale     = 0.3

	ObjectPrefix = "dupli_object_"
	MeshPrefix   = "dupli_mesh_"
)

// ErrEmptyGroup indica um grupo de cor sem pontos, o que a classificação nunca produz.
var ErrEmptyGroup = errors.New("grupo de cor vazio")

// Options controla uma execução.
type Options struct {
	ImageName string
	// Scale é o espaçamento e o tamanho dos quads; nil usa DefaultScale.
	// Zero explícito é aceito (quads de área nula, com aviso).
	Scale *float64
	// Prefix é prefixado aos nomes de objeto e malha (usado na importação em lote).
	Prefix string
	// RunID identifica a execução; se vazio, um novo é gerado.
	RunID  uuid.UUID
	Logger logging.Logger
}

func (o Options) withDefaults() Options {
	if o.ImageName == "" {
		o.ImageName = DefaultImageName
	}
	if o.Scale == nil {
		o.Scale = ScaleOf(DefaultScale)
	}
	if o.RunID == uuid.Nil {
		o.RunID = uuid.New()
	}
	o.Logger = logging.OrNop(o.Logger)
	return o
}

// ScaleOf devolve um ponteiro para v, para preencher Options.Scale.
func ScaleOf(v float64) *float64 {
	return &v
}

// GroupReport descreve o que foi gerado para uma cor.
type GroupReport struct {
	Index    int
	Key      sprite.ColorKey
	Points   int
	Object   string
	Mesh     string
	Material string
}

// Report resume uma execução.
type Report struct {
	RunID    uuid.UUID
	Image    string
	Width    int
	Height   int
	Scale    float64
	Opaque   int
	Groups   []GroupReport
	Duration time.Duration
}

// Run carrega a imagem, agrupa os pixels opacos por cor e registra na cena um objeto
// com sua malha e um material por cor, em ordem de primeira aparição da cor.
// Qualquer erro aborta a execução inteira; não há nova tentativa.
func Run(ctx context.Context, src imagesrc.Source, sc scene.Scene, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	log := opts.Logger
	start := time.Now()

	img, err := src.Lookup(ctx, opts.ImageName)
	if err != nil {
		return nil, errors.Wrap(err, "falha ao obter imagem")
	}
	scale := *opts.Scale
	if scale == 0 {
		log.Warnw("Escala zero: os quads terão área nula", "image", img.Name)
	}

	groups, err := img.Classify(scale)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:  opts.RunID,
		Image:  img.Name,
		Width:  img.Width,
		Height: img.Height,
		Scale:  scale,
		Opaque: groups.TotalPoints(),
	}
	log.Infow("Imagem classificada", "image", img.Name, "size", fmt.Sprintf("%dx%d", img.Width, img.Height),
		"colors", groups.Len(), "opaque", report.Opaque)

	err = groups.Each(func(i int, key sprite.ColorKey, points []sprite.Point3) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		gr, err := commitGroup(ctx, sc, opts, i, key, points)
		if err != nil {
			return err
		}
		log.Debugw("Grupo registrado", "object", gr.Object, "color", key.Hex(), "points", gr.Points)
		report.Groups = append(report.Groups, gr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	log.Infow("Importação concluída", "image", img.Name, "objects", len(report.Groups), "duration", report.Duration)
	return report, nil
}

func commitGroup(ctx context.Context, sc scene.Scene, opts Options, i int, key sprite.ColorKey, points []sprite.Point3) (GroupReport, error) {
	if len(points) == 0 {
		return GroupReport{}, errors.Wrapf(ErrEmptyGroup, "cor %s", key)
	}

	objName := fmt.Sprintf("%s%s%d", opts.Prefix, ObjectPrefix, i)
	meshName := fmt.Sprintf("%s%s%d", opts.Prefix, MeshPrefix, i)

	mesh := meshing.BuildPlanes(meshName, points, *opts.Scale/2)
	if err := mesh.Validate(); err != nil {
		return GroupReport{}, err
	}
	if err := sc.AddObject(ctx, objName, mesh); err != nil {
		return GroupReport{}, errors.Wrapf(err, "falha ao registrar %s", objName)
	}

	mat := scene.NewMaterialDescriptor(key)
	if err := sc.AddMaterial(ctx, mat); err != nil {
		return GroupReport{}, errors.Wrapf(err, "falha ao registrar material %s", mat.Name)
	}
	if err := sc.AssignMaterial(ctx, objName, mat.Name); err != nil {
		return GroupReport{}, errors.Wrapf(err, "falha ao associar %s a %s", mat.Name, objName)
	}

	return GroupReport{
		Index:    i,
		Key:      key,
		Points:   len(points),
		Object:   objName,
		Mesh:     meshName,
		Material: mat.Name,
	}, nil
}

// RunAll importa várias imagens na mesma cena. Os nomes recebem o nome do arquivo
// (sem extensão) como prefixo, ex: "dude2/dupli_object_0". Para no primeiro erro.
func RunAll(ctx context.Context, src imagesrc.Source, sc scene.Scene, names []string, opts Options) ([]*Report, error) {
	reports := make([]*Report, 0, len(names))
	for _, name := range names {
		o := opts
		o.ImageName = name
		o.Prefix = Stem(name) + "/"
		o.RunID = uuid.Nil
		r, err := Run(ctx, src, sc, o)
		if err != nil {
			return reports, errors.Wrapf(err, "imagem %s", name)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Stem remove diretório e extensão de um nome de arquivo.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
