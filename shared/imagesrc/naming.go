package imagesrc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// SpritePrefix é o prefixo dos sprites numerados (dude1.png, dude2.png, ...).
const SpritePrefix = "dude"

// SpriteName retorna o nome do sprite n (a partir de 1).
func SpriteName(n int) string {
	return fmt.Sprintf("%s%d.png", SpritePrefix, n)
}

// SpriteIndex extrai n de "dude<n>.png".
func SpriteIndex(name string) (int, bool) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, SpritePrefix) || !strings.EqualFold(filepath.Ext(base), ".png") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(base[len(SpritePrefix):], filepath.Ext(base)))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// StepSprite avança delta posições a partir de name, sem passar de 1.
// Nomes fora do padrão recomeçam em dude1.png.
func StepSprite(name string, delta int) string {
	n, ok := SpriteIndex(name)
	if !ok {
		return SpriteName(1)
	}
	return SpriteName(max(1, n+delta))
}

// Rename é uma renomeação planejada.
type Rename struct {
	From, To string
}

// PlanRenames numera os arquivos de imagem de dir: o i-ésimo (ordem alfabética)
// passa a se chamar dude<i+1>.png. Arquivos que já têm o nome certo ficam de fora.
func PlanRenames(dir string) ([]Rename, error) {
	names, err := List(dir)
	if err != nil {
		return nil, err
	}
	var plan []Rename
	for i, name := range names {
		to := SpriteName(i + 1)
		if name == to {
			continue
		}
		plan = append(plan, Rename{From: name, To: to})
	}
	return plan, nil
}

// ApplyRenames executa o plano em duas fases (via nomes temporários), para que
// trocas como dude2.png <-> dude1.png não sobrescrevam arquivos.
func ApplyRenames(dir string, plan []Rename, onRename func(Rename)) error {
	tmp := make([]string, len(plan))
	for i, r := range plan {
		tmp[i] = filepath.Join(dir, fmt.Sprintf(".rename-%d-%s", i, r.From))
		if err := os.Rename(filepath.Join(dir, r.From), tmp[i]); err != nil {
			var rollback error
			for j := i - 1; j >= 0; j-- {
				rollback = multierr.Append(rollback, os.Rename(tmp[j], filepath.Join(dir, plan[j].From)))
			}
			return multierr.Append(errors.Wrapf(err, "falha ao renomear %s", r.From), rollback)
		}
	}
	for i, r := range plan {
		if err := os.Rename(tmp[i], filepath.Join(dir, r.To)); err != nil {
			return multierr.Append(
				errors.Wrapf(err, "falha ao renomear %s para %s", r.From, r.To),
				restore(dir, plan, i, tmp))
		}
		if onRename != nil {
			onRename(r)
		}
	}
	return nil
}

// restore desfaz uma segunda fase interrompida no passo done: os arquivos já
// renomeados voltam ao nome temporário e depois todos voltam ao nome original.
func restore(dir string, plan []Rename, done int, tmp []string) error {
	var err error
	for j := done - 1; j >= 0; j-- {
		err = multierr.Append(err, os.Rename(filepath.Join(dir, plan[j].To), tmp[j]))
	}
	for j := range plan {
		err = multierr.Append(err, os.Rename(tmp[j], filepath.Join(dir, plan[j].From)))
	}
	return err
}
