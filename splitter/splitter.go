// Package splitter partitions a fold's attributes into the views co-training
// learns from. A splitter rewrites the views of the working copy it is given;
// the loaded fold itself is never touched.
package splitter

import (
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/errors"
)

// None disables splitting
const None = "none"

// Splitter assigns attributes to views
type Splitter interface {
	Name() string

	// Split rewrites data.Views into noViews views. rng is a fresh clone of
	// the master random source; split is the repetition index within the fold.
	Split(noViews int, data *dataset.Dataset, rng *rand.Rand, split int) error
}

// Factory builds a splitter
type Factory func() Splitter

var (
	mu        sync.RWMutex
	factories = map[string]Factory{
		RandomName:  func() Splitter { return Random{} },
		NaturalName: func() Splitter { return Natural{} },
	}
)

// Register adds a splitter factory. Returns error if the name is taken.
func Register(name string, factory Factory) error {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists || name == None || name == "" {
		return errors.Newf("splitter name not available: %q", name)
	}
	factories[name] = factory
	return nil
}

// New returns the named splitter, or nil when name is empty or "none"
func New(name string) (Splitter, error) {
	if name == "" || name == None {
		return nil, nil
	}
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.WithHintf(
			errors.Mark(errors.Newf("unknown splitter %q", name), errors.ErrUnknownSplitter),
			"registered splitters: %s", strings.Join(List(), ", "),
		)
	}
	return factory(), nil
}

// List returns the registered splitter names in sorted order
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplitRandom derives the random source of one split. Each split gets its
// own stream, and repeating a run reproduces it exactly.
func SplitRandom(master *rand.Rand, split int) *rand.Rand {
	var seed int64
	for i := 0; i <= split; i++ {
		seed = master.Int63()
	}
	return rand.New(rand.NewSource(seed))
}
