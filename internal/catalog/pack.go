package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/quartetgames/quartet/internal/game"
)

// Pack is an in-memory puzzle set loaded from a YAML file, used for
// offline play and tests.
type Pack struct {
	byKey map[cacheKey]*game.PuzzleRecord
}

// LoadPack reads a YAML puzzle pack. Every record is validated up front;
// a pack with one bad puzzle is rejected whole.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading puzzle pack: %w", err)
	}

	var pack struct {
		Puzzles []game.PuzzleRecord `yaml:"puzzles"`
	}
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing puzzle pack: %w", err)
	}

	byKey := make(map[cacheKey]*game.PuzzleRecord, len(pack.Puzzles))
	for i := range pack.Puzzles {
		rec := &pack.Puzzles[i]
		if err := checkRecord(rec, rec.Kind, rec.Date); err != nil {
			return nil, fmt.Errorf("pack %s: %w", path, err)
		}
		key := cacheKey{rec.Kind, rec.Date}
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("pack %s: duplicate puzzle %s/%s", path, rec.Kind, rec.Date)
		}
		byKey[key] = rec
	}
	return &Pack{byKey: byKey}, nil
}

// ByDate implements Source.
func (p *Pack) ByDate(_ context.Context, kind game.Kind, date game.Date) (*game.PuzzleRecord, error) {
	return p.byKey[cacheKey{kind, date}], nil
}

// MonthOf implements Source.
func (p *Pack) MonthOf(_ context.Context, kind game.Kind, year, month int) ([]game.PuzzleRecord, error) {
	var out []game.PuzzleRecord
	for key, rec := range p.byKey {
		if key.kind == kind && key.date.Year == year && int(key.date.Month) == month {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Len reports how many puzzles the pack holds.
func (p *Pack) Len() int {
	return len(p.byKey)
}
