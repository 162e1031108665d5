package main

import (
	"fmt"

	"SpriteVision/shared/config"
	"SpriteVision/shared/imagesrc"
	"SpriteVision/shared/pipeline"
	"SpriteVision/shared/scene"
	"SpriteVision/shared/store"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

// settings junta config e flags do subcomando.
func settings(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	if c.IsSet(flagImage) {
		cfg.ImageName = c.String(flagImage)
	}
	if c.IsSet(flagScale) {
		cfg.Scale = c.Float64(flagScale)
	}
	if c.IsSet(flagDB) {
		cfg.DBPath = c.String(flagDB)
	}
	if c.IsSet(flagDir) {
		cfg.ImageDir = c.String(flagDir)
	}
	return cfg, cfg.Validate()
}

// sink abre o destino da importação. Com --dry-run só a coleção em memória é usada.
func sink(c *cli.Context, cfg *config.Config, col *scene.Collection) (scene.Scene, *store.Store, error) {
	if c.Bool(flagDryRun) {
		return col, nil, nil
	}
	st, err := store.Open(cfg.DBPath, newLogger(c, cfg.LogLevel).Named("Store"))
	if err != nil {
		return nil, nil, err
	}
	return scene.Multi(col, st), st, nil
}

// ImportAction importa uma imagem e imprime a tabela de grupos.
func ImportAction(c *cli.Context) (err error) {
	cfg, err := settings(c)
	if err != nil {
		return err
	}
	col := scene.NewCollection()
	sc, st, err := sink(c, cfg, col)
	if err != nil {
		return err
	}
	runID := uuid.New()
	if st != nil {
		defer func() { err = multierr.Append(err, st.Close()) }()
		if err := st.BeginRun(c.Context, runID, cfg.ImageName, cfg.Scale); err != nil {
			return err
		}
	}

	report, err := pipeline.Run(c.Context, imagesrc.Dir(cfg.ImageDir), sc, pipeline.Options{
		ImageName: cfg.ImageName,
		Scale:     pipeline.ScaleOf(cfg.Scale),
		RunID:     runID,
		Logger:    newLogger(c, cfg.LogLevel),
	})
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, reportTable(report))
	return nil
}

// ImportAllAction importa todas as imagens de --dir com nomes prefixados.
func ImportAllAction(c *cli.Context) (err error) {
	cfg, err := settings(c)
	if err != nil {
		return err
	}
	names, err := imagesrc.List(cfg.ImageDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.Errorf("nenhuma imagem em %s", cfg.ImageDir)
	}

	col := scene.NewCollection()
	sc, st, err := sink(c, cfg, col)
	if err != nil {
		return err
	}
	if st != nil {
		defer func() { err = multierr.Append(err, st.Close()) }()
		if err := st.BeginRun(c.Context, uuid.New(), cfg.ImageDir, cfg.Scale); err != nil {
			return err
		}
	}

	reports, err := pipeline.RunAll(c.Context, imagesrc.Dir(cfg.ImageDir), sc, names, pipeline.Options{
		Scale:  pipeline.ScaleOf(cfg.Scale),
		Logger: newLogger(c, cfg.LogLevel),
	})
	fmt.Fprint(c.App.Writer, summaryTable(reports))
	return err
}

// RenameAction numera as imagens de --dir.
func RenameAction(c *cli.Context) error {
	cfg, err := settings(c)
	if err != nil {
		return err
	}
	plan, err := imagesrc.PlanRenames(cfg.ImageDir)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		fmt.Fprintln(c.App.Writer, "nada para renomear")
		return nil
	}
	if c.Bool(flagDryRun) {
		for _, r := range plan {
			fmt.Fprintf(c.App.Writer, "%s -> %s\n", r.From, r.To)
		}
		return nil
	}
	return imagesrc.ApplyRenames(cfg.ImageDir, plan, func(r imagesrc.Rename) {
		fmt.Fprintf(c.App.Writer, "%s renomeado para %s\n", r.From, r.To)
	})
}

// ListAction imprime objetos e materiais do banco.
func ListAction(c *cli.Context) (err error) {
	cfg, err := settings(c)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath, newLogger(c, cfg.LogLevel).Named("Store"))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	objs, err := st.Objects(c.Context)
	if err != nil {
		return err
	}
	mats, err := st.Materials(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, objectsTable(objs, mats))
	return nil
}

func reportTable(r *pipeline.Report) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (%dx%d, escala %.3f, %d pixels opacos)", r.Image, r.Width, r.Height, r.Scale, r.Opaque))
	t.AppendHeader(table.Row{"#", "Objeto", "Malha", "Material", "Hex", "Pixels"})
	for _, g := range r.Groups {
		t.AppendRow(table.Row{g.Index, g.Object, g.Mesh, g.Material, g.Key.Hex(), g.Points})
	}
	t.AppendFooter(table.Row{"", "", "", "", "total", r.Opaque})
	return t.Render() + "\n"
}

func summaryTable(reports []*pipeline.Report) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Imagem", "Tamanho", "Cores", "Pixels", "Duração"})
	for _, r := range reports {
		t.AppendRow(table.Row{r.Image, fmt.Sprintf("%dx%d", r.Width, r.Height), len(r.Groups), r.Opaque, r.Duration.String()})
	}
	return t.Render() + "\n"
}

func objectsTable(objs []scene.Object, mats []scene.MaterialDescriptor) string {
	colors := make(map[string]string, len(mats))
	for _, m := range mats {
		colors[m.Name] = m.Key().Hex()
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Objeto", "Malha", "Quads", "Material", "Hex"})
	for _, o := range objs {
		t.AppendRow(table.Row{o.Name, o.Mesh.Name, len(o.Mesh.Faces), o.Material, colors[o.Material]})
	}
	t.AppendFooter(table.Row{"", "", "", "materiais", len(mats)})
	return t.Render() + "\n"
}
