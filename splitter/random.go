package splitter

import (
	"math/rand"

	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/errors"
)

// Splitter names
const (
	RandomName  = "Random"
	NaturalName = "Natural"
)

// Random shuffles the attributes and deals them into views round-robin
type Random struct{}

// Name implements Splitter
func (Random) Name() string { return RandomName }

// Split implements Splitter
func (Random) Split(noViews int, data *dataset.Dataset, rng *rand.Rand, split int) error {
	if noViews < 1 {
		return errors.Newf("cannot split into %d views", noViews)
	}
	if len(data.Attributes) < noViews {
		return errors.Newf("%d attributes cannot fill %d views", len(data.Attributes), noViews)
	}
	order := rng.Perm(len(data.Attributes))
	data.Views = dataset.RoundRobinViews(order, noViews)
	return nil
}

// Natural keeps the views stored with the fold, for datasets that come with
// a natural feature split
type Natural struct{}

// Name implements Splitter
func (Natural) Name() string { return NaturalName }

// Split implements Splitter
func (Natural) Split(noViews int, data *dataset.Dataset, rng *rand.Rand, split int) error {
	if data.NoViews() != noViews {
		return errors.Newf("fold has %d natural views, %d requested", data.NoViews(), noViews)
	}
	return nil
}
