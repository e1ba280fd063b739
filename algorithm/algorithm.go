// Package algorithm defines the learning algorithms a cross-validation
// experiment runs on each fold and split, and a registry to select them by
// the name given in the experiment properties.
package algorithm

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rssalg/rssalg/classification"
	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/settings"
)

// Algorithm runs one experiment iteration on a fold's working copy
type Algorithm interface {
	// Name identifies the algorithm in Results.xml and classifier file names
	Name() string

	// Run trains on the labeled (and possibly unlabeled) data and classifies
	// the test set. When record is set the classifiers of this run are
	// available from Classifiers and ClassifiersTestData until the next Run.
	Run(ctx context.Context, data *dataset.Dataset, fold, split int, record bool) (*classification.Result, error)

	// Classifiers returns the predictions of the last run's classifiers on the training side
	Classifiers() *Ensemble

	// ClassifiersTestData returns the predictions of the last run's classifiers on the test data
	ClassifiersTestData() *Ensemble
}

// Factory builds an algorithm from the experiment configuration
type Factory func(s *settings.Settings) (Algorithm, error)

// Registry maps algorithm names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Returns error if the name is already taken.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.Newf("algorithm already registered: %s", name)
	}
	r.factories[name] = factory
	return nil
}

// New builds the named algorithm
func (r *Registry) New(name string, s *settings.Settings) (Algorithm, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.WithHintf(
			errors.Mark(errors.Newf("unknown algorithm %q", name), errors.ErrUnknownAlgorithm),
			"registered algorithms: %s", strings.Join(r.List(), ", "),
		)
	}
	alg, err := factory(s)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create algorithm %s", name)
	}
	return alg, nil
}

// List returns the registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

func init() {
	mustRegister(LabeledOnlyName, func(s *settings.Settings) (Algorithm, error) {
		return NewBaseline(LabeledOnlyName, false), nil
	})
	mustRegister(AllLabeledName, func(s *settings.Settings) (Algorithm, error) {
		return NewBaseline(AllLabeledName, true), nil
	})
}

func mustRegister(name string, factory Factory) {
	if err := defaultRegistry.Register(name, factory); err != nil {
		panic(err)
	}
}

// Register adds a factory to the default registry. Implementations living
// outside this repository call it from their init functions.
func Register(name string, factory Factory) error {
	return defaultRegistry.Register(name, factory)
}

// New builds the named algorithm from the default registry
func New(name string, s *settings.Settings) (Algorithm, error) {
	return defaultRegistry.New(name, s)
}

// List returns the names in the default registry
func List() []string {
	return defaultRegistry.List()
}

// SplitInsensitive reports whether repeated splits are meaningless for the
// algorithm. RSSalg and the test-set ensembles of co-training classifiers
// already combine many co-training runs internally, so they run once per fold.
func SplitInsensitive(name string) bool {
	return strings.Contains(name, "RSSalg") || strings.Contains(name, "_of_Co-training_classifiers_on_test_set")
}

// Optimized reports whether the algorithm is tuned by the genetic
// algorithm, which makes the optimisation measure part of the experiment name
func Optimized(name string) bool {
	return strings.Contains(name, "RSSalg")
}
