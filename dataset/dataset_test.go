package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rssalg/rssalg/errors"
)

func sampleFold() *Dataset {
	return &Dataset{
		Attributes: []string{"a", "b", "c", "d"},
		ClassNames: []string{"ham", "spam"},
		Views:      [][]int{{0, 2}, {1, 3}},
		Labeled: []Instance{
			{ID: "1", Class: "spam", Features: []float64{1, 2, 3, 4}},
			{ID: "2", Class: "ham", Features: []float64{0.5, 0, -1, 2.25}},
		},
		Unlabeled: []Instance{
			{ID: "3", Class: "spam", Features: []float64{1, 1, 1, 1}},
		},
		Test: []Instance{
			{ID: "4", Class: "ham", Features: []float64{0, 0, 0, 1e-3}},
		},
	}
}

func TestClone(t *testing.T) {
	d := sampleFold()
	c := d.Clone()
	require.Equal(t, d, c)

	c.Labeled[0].Features[0] = 99
	c.Views[0][0] = 3
	c.Test = append(c.Test, Instance{ID: "5"})

	assert.Equal(t, 1.0, d.Labeled[0].Features[0])
	assert.Equal(t, 0, d.Views[0][0])
	assert.Len(t, d.Test, 1)

	var nilSet *Dataset
	assert.Nil(t, nilSet.Clone())
}

func TestViews(t *testing.T) {
	d := sampleFold()

	assert.Equal(t, 2, d.NoViews())
	assert.Equal(t, []float64{1, 3}, d.ViewFeatures(d.Labeled[0], 0))
	assert.Equal(t, []string{"b", "d"}, d.ViewAttributes(1))

	assert.Equal(t, [][]int{{0, 1, 2}}, SingleView(3))
	assert.Equal(t, [][]int{{1, 3, 4}, {0, 2}}, RoundRobinViews([]int{3, 2, 1, 0, 4}, 2))
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()

	t.Run("with id column", func(t *testing.T) {
		path := filepath.Join(dir, "with_id.csv")
		require.NoError(t, os.WriteFile(path, []byte("id,x,class,y\nr1,1.5,spam,2\nr2, 0.5, ham ,3\n"), 0644))

		src, err := LoadSource(path, "class", "id")
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, src.Attributes)
		assert.Equal(t, []string{"ham", "spam"}, src.ClassNames)
		require.Len(t, src.Instances, 2)
		assert.Equal(t, Instance{ID: "r2", Class: "ham", Features: []float64{0.5, 3}}, src.Instances[1])
	})

	t.Run("synthesised ids", func(t *testing.T) {
		path := filepath.Join(dir, "no_id.csv")
		require.NoError(t, os.WriteFile(path, []byte("x,class\n1,a\n2,b\n"), 0644))

		src, err := LoadSource(path, "class", "id")
		require.NoError(t, err)
		assert.Equal(t, "1", src.Instances[0].ID)
		assert.Equal(t, "2", src.Instances[1].ID)
	})

	t.Run("missing class attribute", func(t *testing.T) {
		path := filepath.Join(dir, "no_class.csv")
		require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n"), 0644))

		_, err := LoadSource(path, "class", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `class attribute "class" not found`)
	})

	t.Run("non numeric attribute", func(t *testing.T) {
		path := filepath.Join(dir, "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("x,class\nhigh,a\n"), 0644))

		_, err := LoadSource(path, "class", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not numeric")
	})

	t.Run("empty dataset", func(t *testing.T) {
		path := filepath.Join(dir, "empty.csv")
		require.NoError(t, os.WriteFile(path, []byte("x,class\n"), 0644))

		_, err := LoadSource(path, "class", "")
		require.Error(t, err)
	})
}

func TestFoldStoreRoundTrip(t *testing.T) {
	store := NewFoldStore(t.TempDir())
	d := sampleFold()

	require.NoError(t, store.Save(0, d))
	for _, name := range []string{ViewsFile, LabeledFile, UnlabeledFile, TestFile} {
		assert.FileExists(t, filepath.Join(store.FoldDir(0), name))
	}

	loaded, err := store.Load(0, 2)
	require.NoError(t, err)
	assert.Equal(t, d, loaded)
}

func TestFoldStoreLoadErrors(t *testing.T) {
	store := NewFoldStore(t.TempDir())
	require.NoError(t, store.Save(0, sampleFold()))

	t.Run("missing fold", func(t *testing.T) {
		_, err := store.Load(1, 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrFoldNotFound))
		assert.Contains(t, errors.UserMessage(err), "fold_1")
	})

	t.Run("view count mismatch", func(t *testing.T) {
		_, err := store.Load(0, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration expects 3")
	})

	t.Run("corrupt partition", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(store.FoldDir(0), TestFile), []byte("id,class,a\n"), 0644))

		_, err := store.Load(0, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fold 0 is corrupt")
	})
}

func TestFoldStoreCount(t *testing.T) {
	t.Run("scan without manifest", func(t *testing.T) {
		store := NewFoldStore(t.TempDir())
		for i := 0; i < 3; i++ {
			require.NoError(t, os.MkdirAll(store.FoldDir(i), DefaultDirPermissions))
		}
		require.NoError(t, os.MkdirAll(store.FoldDir(4), DefaultDirPermissions))

		n, err := store.Count()
		require.NoError(t, err)
		assert.Equal(t, 3, n, "probing stops at the first gap")
	})

	t.Run("manifest wins", func(t *testing.T) {
		store := NewFoldStore(t.TempDir())
		require.NoError(t, os.MkdirAll(store.FoldDir(0), DefaultDirPermissions))
		require.NoError(t, store.WriteManifest(5))

		n, err := store.Count()
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("empty folder", func(t *testing.T) {
		n, err := NewFoldStore(t.TempDir()).Count()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("corrupt manifest", func(t *testing.T) {
		store := NewFoldStore(t.TempDir())
		require.NoError(t, os.WriteFile(filepath.Join(store.Root, ManifestFile), []byte("folds = [[["), 0644))

		_, err := store.Count()
		require.Error(t, err)
	})
}
