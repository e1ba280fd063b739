// Package dataset holds the per-fold co-training data: labeled, unlabeled and
// test instances described by numeric attributes that are partitioned into
// views. It also owns the on-disk fold layout under the result folder.
package dataset

import (
	"sort"
)

// Instance is one example. Class is always known on disk; algorithms decide
// whether they may look at it (unlabeled data is labeled only for evaluation).
type Instance struct {
	ID       string
	Class    string
	Features []float64
}

// Dataset is the data of a single fold
type Dataset struct {
	Attributes []string // Feature names, excluding the id and class columns
	ClassNames []string // Sorted distinct class values
	Views      [][]int  // Attribute indices per view

	Labeled   []Instance
	Unlabeled []Instance
	Test      []Instance
}

// Clone returns a deep copy. Every split works on its own copy so a splitter
// or an algorithm can never alter the fold that later splits start from.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		Attributes: append([]string(nil), d.Attributes...),
		ClassNames: append([]string(nil), d.ClassNames...),
		Views:      make([][]int, len(d.Views)),
		Labeled:    cloneInstances(d.Labeled),
		Unlabeled:  cloneInstances(d.Unlabeled),
		Test:       cloneInstances(d.Test),
	}
	for i, v := range d.Views {
		out.Views[i] = append([]int(nil), v...)
	}
	return out
}

func cloneInstances(in []Instance) []Instance {
	if in == nil {
		return nil
	}
	out := make([]Instance, len(in))
	for i, inst := range in {
		out[i] = Instance{
			ID:       inst.ID,
			Class:    inst.Class,
			Features: append([]float64(nil), inst.Features...),
		}
	}
	return out
}

// NoViews returns the number of feature views
func (d *Dataset) NoViews() int {
	return len(d.Views)
}

// ViewFeatures projects an instance onto one view
func (d *Dataset) ViewFeatures(inst Instance, view int) []float64 {
	idx := d.Views[view]
	out := make([]float64, len(idx))
	for i, a := range idx {
		out[i] = inst.Features[a]
	}
	return out
}

// ViewAttributes returns the attribute names of one view
func (d *Dataset) ViewAttributes(view int) []string {
	idx := d.Views[view]
	out := make([]string, len(idx))
	for i, a := range idx {
		out[i] = d.Attributes[a]
	}
	return out
}

// SingleView returns views that put every attribute in one view
func SingleView(noAttributes int) [][]int {
	all := make([]int, noAttributes)
	for i := range all {
		all[i] = i
	}
	return [][]int{all}
}

// RoundRobinViews deals attribute indices into noViews views in order
func RoundRobinViews(order []int, noViews int) [][]int {
	views := make([][]int, noViews)
	for i, a := range order {
		views[i%noViews] = append(views[i%noViews], a)
	}
	for _, v := range views {
		sort.Ints(v)
	}
	return views
}

// classNamesOf returns the sorted distinct classes of the given instances
func classNamesOf(sets ...[]Instance) []string {
	seen := make(map[string]bool)
	for _, set := range sets {
		for _, inst := range set {
			seen[inst.Class] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
