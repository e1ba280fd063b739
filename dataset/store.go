package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rssalg/rssalg/errors"
)

// File names inside the result folder and each fold directory
const (
	ManifestFile  = "folds.toml"
	ViewsFile     = "views.toml"
	LabeledFile   = "labeled.csv"
	UnlabeledFile = "unlabeled.csv"
	TestFile      = "test.csv"

	foldPrefix = "fold_"
)

// File system permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// manifest records how many folds the preparer wrote, so the fold count does
// not depend on which directories happen to exist
type manifest struct {
	Folds   int       `toml:"folds"`
	Created time.Time `toml:"created"`
}

type viewsDoc struct {
	Attributes []string    `toml:"attributes"`
	Classes    []string    `toml:"classes"`
	Views      []viewEntry `toml:"view"`
}

type viewEntry struct {
	Attributes []string `toml:"attributes"`
}

// FoldStore reads and writes fold_N directories under a result folder
type FoldStore struct {
	Root string
}

// NewFoldStore creates a store rooted at the result folder
func NewFoldStore(root string) *FoldStore {
	return &FoldStore{Root: root}
}

// FoldDir returns the directory of fold i
func (s *FoldStore) FoldDir(i int) string {
	return filepath.Join(s.Root, fmt.Sprintf("%s%d", foldPrefix, i))
}

// Count returns the number of folds. The manifest is authoritative when
// present; result folders prepared without one are scanned for fold_0,
// fold_1, ... until a directory is missing.
func (s *FoldStore) Count() (int, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, ManifestFile))
	switch {
	case err == nil:
		var m manifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return 0, errors.Wrapf(err, "failed to parse %s", ManifestFile)
		}
		if m.Folds < 0 {
			return 0, errors.Newf("%s: negative fold count %d", ManifestFile, m.Folds)
		}
		return m.Folds, nil
	case os.IsNotExist(err):
		return s.scan(), nil
	default:
		return 0, errors.Wrapf(err, "failed to read %s", ManifestFile)
	}
}

func (s *FoldStore) scan() int {
	count := 0
	for {
		info, err := os.Stat(s.FoldDir(count))
		if err != nil || !info.IsDir() {
			return count
		}
		count++
	}
}

// WriteManifest records the fold count
func (s *FoldStore) WriteManifest(folds int) error {
	if err := os.MkdirAll(s.Root, DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create result folder %s", s.Root)
	}
	data, err := toml.Marshal(manifest{Folds: folds, Created: time.Now().UTC().Truncate(time.Second)})
	if err != nil {
		return errors.Wrap(err, "failed to encode fold manifest")
	}
	path := filepath.Join(s.Root, ManifestFile)
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// Save writes fold i: three CSV partitions plus the view layout
func (s *FoldStore) Save(i int, d *Dataset) error {
	dir := s.FoldDir(i)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	doc := viewsDoc{Attributes: d.Attributes, Classes: d.ClassNames}
	for v := range d.Views {
		doc.Views = append(doc.Views, viewEntry{Attributes: d.ViewAttributes(v)})
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to encode view layout")
	}
	if err := os.WriteFile(filepath.Join(dir, ViewsFile), data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", ViewsFile)
	}

	parts := []struct {
		file      string
		instances []Instance
	}{
		{LabeledFile, d.Labeled},
		{UnlabeledFile, d.Unlabeled},
		{TestFile, d.Test},
	}
	for _, p := range parts {
		if err := writeInstances(filepath.Join(dir, p.file), d.Attributes, p.instances); err != nil {
			return err
		}
	}
	return nil
}

// Load reads fold i. A missing directory is reported as ErrFoldNotFound; a
// stored view layout with a different number of views than noViews is an
// error since the experiment would silently run on another setup.
func (s *FoldStore) Load(i int, noViews int) (*Dataset, error) {
	dir := s.FoldDir(i)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Mark(errors.Newf("fold %d is missing: %s", i, dir), errors.ErrFoldNotFound)
	}

	data, err := os.ReadFile(filepath.Join(dir, ViewsFile))
	if err != nil {
		return nil, errors.Wrapf(err, "fold %d is corrupt", i)
	}
	var doc viewsDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "fold %d: invalid %s", i, ViewsFile)
	}
	if noViews > 0 && len(doc.Views) != noViews {
		return nil, errors.Newf("fold %d has %d views, configuration expects %d", i, len(doc.Views), noViews)
	}

	d := &Dataset{Attributes: doc.Attributes, ClassNames: doc.Classes}
	index := make(map[string]int, len(doc.Attributes))
	for j, name := range doc.Attributes {
		index[name] = j
	}
	for v, entry := range doc.Views {
		view := make([]int, 0, len(entry.Attributes))
		for _, name := range entry.Attributes {
			j, ok := index[name]
			if !ok {
				return nil, errors.Newf("fold %d: view %d references unknown attribute %q", i, v, name)
			}
			view = append(view, j)
		}
		d.Views = append(d.Views, view)
	}

	if d.Labeled, err = readInstances(filepath.Join(dir, LabeledFile), d.Attributes); err != nil {
		return nil, errors.Wrapf(err, "fold %d is corrupt", i)
	}
	if d.Unlabeled, err = readInstances(filepath.Join(dir, UnlabeledFile), d.Attributes); err != nil {
		return nil, errors.Wrapf(err, "fold %d is corrupt", i)
	}
	if d.Test, err = readInstances(filepath.Join(dir, TestFile), d.Attributes); err != nil {
		return nil, errors.Wrapf(err, "fold %d is corrupt", i)
	}
	if len(d.ClassNames) == 0 {
		d.ClassNames = classNamesOf(d.Labeled, d.Unlabeled, d.Test)
	}
	return d, nil
}
