package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rssalg/rssalg/algorithm"
	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/history"
	"github.com/rssalg/rssalg/progress"
	"github.com/rssalg/rssalg/results"
	"github.com/rssalg/rssalg/settings"
)

func init() {
	pterm.DisableStyling()
}

// workspace is a properties folder with a 40 instance source dataset
type workspace struct {
	props   string
	results string
}

func newWorkspace(t *testing.T, experiments map[string]string) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{props: filepath.Join(dir, "properties"), results: filepath.Join(dir, "results")}
	require.NoError(t, os.MkdirAll(ws.props, 0755))

	var csv strings.Builder
	csv.WriteString("id,a1,a2,a3,a4,class\n")
	for i := 0; i < 40; i++ {
		class, base := "neg", 0.0
		if i%2 == 0 {
			class, base = "pos", 5.0
		}
		j := float64(i % 3)
		fmt.Fprintf(&csv, "i%d,%g,%g,%g,%g,%s\n", i, base+j, base+1-j/2, base*2+j/3, base-j, class)
	}
	dataFile := filepath.Join(dir, "news.csv")
	require.NoError(t, os.WriteFile(dataFile, []byte(csv.String()), 0644))

	files := map[string]string{
		settings.DataFile: "dataFile = " + dataFile + "\nclassAttribute = class\nidAttribute = id\nnoViews = 2\n" +
			"resultFolder = " + ws.results + "\nrandomSeed = 11\n",
		settings.CVFile:         "noFolds = 4\nnoLabeled = 4\nnoUnlabeled = 10\nstratified = true\n",
		settings.CoTrainingFile: "iterations = 10\npoolSize = 20\ngrowthSize = 1,1\n",
		settings.GAFile:         "optimizationMeasure = Accuracy\n",
	}
	for name, content := range experiments {
		files[name] = content
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(ws.props, name), []byte(content), 0644))
	}
	return ws
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

const experimentL = "algorithm = L\nmeasures = Accuracy, F-measure_pos\nwriteClassifiers = true\nrecordHistory = true\n"

func TestRunExperiment(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"experiment_L.properties":          experimentL,
		"experiment_All_Random.properties": "algorithm = All\nmeasures = Accuracy\nsplitter = Random\nnoSplits = 2\n",
	})

	out, err := RunExperiment(context.Background(), ws.props, "experiment_L.properties", progress.NopEmitter{})
	require.NoError(t, err)
	assert.Equal(t, "L", out.Experiment)
	assert.Equal(t, 4, out.Folds)
	require.Len(t, out.Summaries, 2)
	for _, s := range out.Summaries {
		assert.GreaterOrEqual(t, s.Mean, 0.0)
		assert.LessOrEqual(t, s.Mean, 100.0)
		assert.True(t, s.HasStdDev())
	}

	count, err := dataset.NewFoldStore(ws.results).Count()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.FileExists(t, filepath.Join(ws.results, "fold_3", "classifiers_L.xml"))
	assert.FileExists(t, filepath.Join(ws.results, "fold_3", "classifiers_test_L.xml"))
	assert.FileExists(t, history.Path(ws.results))

	_, err = RunExperiment(context.Background(), ws.props, "experiment_All_Random.properties", progress.NopEmitter{})
	require.NoError(t, err)

	doc, err := results.Load(results.Path(ws.results))
	require.NoError(t, err)
	require.Len(t, doc.Groups, 1, "both experiments share the configuration")
	var names []string
	for _, e := range doc.Groups[0].Experiments {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"L", "All_Random"}, names)
}

func TestRunExperimentSplitterRequired(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"experiment.properties": "algorithm = L\nmeasures = Accuracy\nnoSplits = 3\n",
	})

	_, err := RunExperiment(context.Background(), ws.props, "experiment.properties", progress.NopEmitter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSplitterRequired))
	assert.Equal(t, errors.ErrSplitterRequired.Error(), FatalMessage(err))
	assert.NoFileExists(t, results.Path(ws.results))
}

func TestRunExperimentUnknownAlgorithm(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"experiment.properties": "algorithm = Co-training\nmeasures = Accuracy\n",
	})

	_, err := RunExperiment(context.Background(), ws.props, "experiment.properties", progress.NopEmitter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownAlgorithm))
}

func TestRootArguments(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, GUINotice)
	assert.Contains(t, out, "Usage:")

	out, err = execute(t, "only-one")
	require.NoError(t, err, "a wrong argument count is not an error")
	assert.Contains(t, out, "Usage:")
	assert.NotContains(t, out, GUINotice)

	out, err = execute(t, "a", "b", "c")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestRootSubcommandNameAsFolder(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "rssalg ./results experiment.properties")

	dir := t.TempDir()
	ws := newWorkspace(t, map[string]string{"experiment_L.properties": "algorithm = L\nmeasures = Accuracy\n"})
	require.NoError(t, os.Rename(ws.props, filepath.Join(dir, "settings")))
	t.Chdir(dir)

	out, err = execute(t, "."+string(filepath.Separator)+"settings", "experiment_L.properties")
	require.NoError(t, err)
	assert.Contains(t, out, "Experiment finished.")
}

func TestRootRunsExperiment(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"experiment_L.properties": experimentL})

	out, err := execute(t, ws.props, "experiment_L.properties")
	require.NoError(t, err)
	assert.Contains(t, out, "Experiment finished.")
	assert.Contains(t, out, "Micro averaged")
	assert.Contains(t, out, "F-measure_pos")

	out, err = execute(t, "results", "show", ws.results, "--format", "yaml")
	require.NoError(t, err)
	var groups []groupView
	require.NoError(t, yaml.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "4", groups[0].Properties["noFolds"])
	require.Len(t, groups[0].Experiments, 1)
	assert.Equal(t, "L", groups[0].Experiments[0].Name)
	assert.Len(t, groups[0].Experiments[0].Measures, 2)

	out, err = execute(t, "results", "show", ws.results, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "noLabeled = 4")

	out, err = execute(t, "history", ws.results, "--format", "json", "--folds", "--limit", "5", "--experiment", "")
	require.NoError(t, err)
	var runs []history.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "L", runs[0].Experiment)
	assert.Len(t, runs[0].FoldValues, 8, "two measures on four folds")
}

func TestRootJSONEvents(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"experiment_L.properties": "algorithm = L\nmeasures = Accuracy\n"})

	out, err := execute(t, "--json", ws.props, "experiment_L.properties")
	require.NoError(t, err)

	var types []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var ev progress.Event
		require.NoError(t, json.Unmarshal([]byte(line), &ev), line)
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, "measure")
	assert.Equal(t, "complete", types[len(types)-1])
}

func TestFoldsCommand(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"experiment_L.properties": experimentL})

	out, err := execute(t, "folds", ws.props, "experiment_L.properties", "--rebuild=false")
	require.NoError(t, err)
	assert.Contains(t, out, "4 folds in "+ws.results)
	assert.DirExists(t, filepath.Join(ws.results, "fold_0"))
	assert.NoFileExists(t, results.Path(ws.results), "folds only")
}

func TestHistoryWithoutLedger(t *testing.T) {
	out, err := execute(t, "history", t.TempDir(), "--format", "table", "--folds=false", "--experiment", "")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestSettingsCommands(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"experiment_L.properties": experimentL})

	out, err := execute(t, "settings", "show", ws.props, "experiment_L.properties", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "noFolds: 4")
	assert.Contains(t, out, "algorithm: L")
	assert.Contains(t, out, "#   noLabeled = 4")

	out, err = execute(t, "settings", "list")
	require.NoError(t, err)
	for _, name := range []string{algorithm.LabeledOnlyName, algorithm.AllLabeledName, "Random", "Natural", "Accuracy"} {
		assert.Contains(t, out, name)
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := execute(t, "results", "show", t.TempDir(), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rssalg")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["go_version"])
}

func TestFatalMessage(t *testing.T) {
	assert.Equal(t, "interrupted, no results were written", FatalMessage(errors.Wrap(context.Canceled, "fold 2")))
	err := errors.Wrap(errors.Mark(errors.New("fold 2 is missing: results/fold_2"), errors.ErrFoldNotFound), "cannot load fold 2")
	assert.Equal(t, "fold 2 is missing: results/fold_2", FatalMessage(err))
}

func TestRunExperimentMissingFold(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"experiment_L.properties": "algorithm = L\nmeasures = Accuracy\n",
	})
	_, err := execute(t, "folds", ws.props, "experiment_L.properties", "--rebuild=false")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(ws.results, "fold_2")))

	f, err := os.OpenFile(filepath.Join(ws.props, settings.DataFile), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("loadPresetExperiment = true\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = RunExperiment(context.Background(), ws.props, "experiment_L.properties", progress.NopEmitter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFoldNotFound))
	assert.Contains(t, FatalMessage(err), filepath.Join(ws.results, "fold_2"))
}
