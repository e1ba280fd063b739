// Package cv prepares the k folds of a cross-validation experiment: each fold
// holds out one part of the source data as test set and draws labeled and
// unlabeled training data from the rest.
package cv

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/logger"
	"github.com/rssalg/rssalg/settings"
)

// Separator builds folds from a source dataset
type Separator struct {
	NoFolds     int
	NoLabeled   int
	NoUnlabeled int // 0 keeps every remaining training instance
	NoViews     int
	Stratified  bool
	rng         *rand.Rand
}

// NewSeparator creates a separator from the cross-validation settings
func NewSeparator(s *settings.Settings) *Separator {
	return &Separator{
		NoFolds:     s.CV.NoFolds,
		NoLabeled:   s.CV.NoLabeled,
		NoUnlabeled: s.CV.NoUnlabeled,
		NoViews:     s.Dataset.NoViews,
		Stratified:  s.CV.Stratified,
		rng:         s.Random(),
	}
}

// Prepare splits the source into folds
func (sep *Separator) Prepare(src *dataset.Source) ([]*dataset.Dataset, error) {
	if sep.NoFolds < 2 {
		return nil, errors.Newf("need at least 2 folds, got %d", sep.NoFolds)
	}
	if len(src.Instances) < sep.NoFolds {
		return nil, errors.Newf("%d instances cannot fill %d folds", len(src.Instances), sep.NoFolds)
	}
	if sep.NoViews < 1 || len(src.Attributes) < sep.NoViews {
		return nil, errors.Newf("%d attributes cannot fill %d views", len(src.Attributes), sep.NoViews)
	}

	order := sep.order(src)
	parts := make([][]int, sep.NoFolds)
	for i, idx := range order {
		parts[i%sep.NoFolds] = append(parts[i%sep.NoFolds], idx)
	}

	identity := make([]int, len(src.Attributes))
	for i := range identity {
		identity[i] = i
	}
	views := dataset.RoundRobinViews(identity, sep.NoViews)

	folds := make([]*dataset.Dataset, sep.NoFolds)
	for f := range folds {
		var pool []int
		for g, part := range parts {
			if g != f {
				pool = append(pool, part...)
			}
		}
		labeled, rest, err := sep.pickLabeled(src, pool)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", f)
		}
		if sep.NoUnlabeled > 0 && len(rest) > sep.NoUnlabeled {
			// rest is still grouped by class under stratified ordering
			sep.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
			rest = rest[:sep.NoUnlabeled]
		}

		d := &dataset.Dataset{
			Attributes: append([]string(nil), src.Attributes...),
			ClassNames: append([]string(nil), src.ClassNames...),
			Views:      views,
			Labeled:    pick(src, labeled),
			Unlabeled:  pick(src, rest),
			Test:       pick(src, parts[f]),
		}
		folds[f] = d.Clone()
	}
	return folds, nil
}

// order returns the instance indices in the order they are dealt into folds.
// Stratified ordering keeps class proportions roughly equal across folds.
func (sep *Separator) order(src *dataset.Source) []int {
	if !sep.Stratified {
		return sep.rng.Perm(len(src.Instances))
	}
	byClass := groupByClass(src, sep.rng.Perm(len(src.Instances)))
	order := make([]int, 0, len(src.Instances))
	for _, c := range src.ClassNames {
		order = append(order, byClass[c]...)
	}
	return order
}

// pickLabeled selects the labeled instances from the training pool. Stratified
// selection takes one instance of each class in turn so small labeled sets
// still cover every class.
func (sep *Separator) pickLabeled(src *dataset.Source, pool []int) (labeled, rest []int, err error) {
	if len(pool) < sep.NoLabeled {
		return nil, nil, errors.Newf("training pool of %d instances is smaller than noLabeled=%d", len(pool), sep.NoLabeled)
	}
	if !sep.Stratified {
		return pool[:sep.NoLabeled], pool[sep.NoLabeled:], nil
	}

	byClass := groupByClass(src, pool)
	taken := make(map[int]bool, sep.NoLabeled)
	for len(labeled) < sep.NoLabeled {
		for _, c := range src.ClassNames {
			if len(labeled) == sep.NoLabeled {
				break
			}
			if queue := byClass[c]; len(queue) > 0 {
				labeled = append(labeled, queue[0])
				taken[queue[0]] = true
				byClass[c] = queue[1:]
			}
		}
	}
	for _, idx := range pool {
		if !taken[idx] {
			rest = append(rest, idx)
		}
	}
	return labeled, rest, nil
}

func groupByClass(src *dataset.Source, indices []int) map[string][]int {
	byClass := make(map[string][]int)
	for _, idx := range indices {
		c := src.Instances[idx].Class
		byClass[c] = append(byClass[c], idx)
	}
	return byClass
}

func pick(src *dataset.Source, indices []int) []dataset.Instance {
	out := make([]dataset.Instance, len(indices))
	for i, idx := range indices {
		out[i] = src.Instances[idx]
	}
	return out
}

// PrepareExperiment makes sure the result folder holds the folds of the
// experiment and returns their number. With loadPresetExperiment the existing
// folds are reused; otherwise they are rebuilt from the source dataset.
func PrepareExperiment(ctx context.Context, s *settings.Settings, store *dataset.FoldStore, log *zap.SugaredLogger) (int, error) {
	if s.Dataset.LoadPresetExperiment {
		n, err := store.Count()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, errors.WithHint(
				errors.Newf("no folds found in %s", store.Root),
				"unset loadPresetExperiment to build the folds from dataFile",
			)
		}
		log.Infow("Using preset folds", logger.FieldCount, n, logger.FieldPath, store.Root)
		return n, nil
	}

	start := time.Now()
	src, err := dataset.LoadSource(s.Dataset.DataFile, s.Dataset.ClassAttribute, s.Dataset.IDAttribute)
	if err != nil {
		return 0, err
	}
	folds, err := NewSeparator(s).Prepare(src)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare folds")
	}

	for i, d := range folds {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := store.Save(i, d); err != nil {
			return 0, errors.Wrapf(err, "failed to save fold %d", i)
		}
		log.Debugw("Saved fold",
			logger.FieldFold, i,
			"labeled", len(d.Labeled),
			"unlabeled", len(d.Unlabeled),
			"test", len(d.Test),
		)
	}
	if err := store.WriteManifest(len(folds)); err != nil {
		return 0, err
	}

	log.Infow("Prepared folds",
		logger.FieldCount, len(folds),
		logger.FieldSize, len(src.Instances),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return len(folds), nil
}
