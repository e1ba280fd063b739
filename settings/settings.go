// Package settings holds the experiment configuration read from the
// properties folder: one struct per category, built once at startup and
// passed explicitly to the fold preparer, the runner and the algorithms.
package settings

import (
	"math/rand"
	"strconv"
)

// Property file names inside the properties folder. The experiment file name
// is supplied on the command line.
const (
	DataFile       = "data.properties"
	CVFile         = "cv.properties"
	CoTrainingFile = "co-training.properties"
	GAFile         = "GA.properties"
)

// Macro-averaging modes for experiments that run more than one split per fold.
const (
	// MacroLastSplit keeps only the final split's value per fold
	MacroLastSplit = "lastSplit"
	// MacroSplitMean averages every split's value per fold
	MacroSplitMean = "splitMean"
)

// Settings represents the complete experiment configuration
type Settings struct {
	Dataset    DatasetConfig    `yaml:"data"`
	CV         CVConfig         `yaml:"cv"`
	CoTraining CoTrainingConfig `yaml:"co-training"`
	Experiment ExperimentConfig `yaml:"experiment"`
	GA         GAConfig         `yaml:"GA"`
}

// DatasetConfig configures the source data and where folds and results live
type DatasetConfig struct {
	DataFile             string `mapstructure:"dataFile" yaml:"dataFile"` // Source CSV with a header row
	ClassAttribute       string `mapstructure:"classAttribute" yaml:"classAttribute" validate:"required"`
	IDAttribute          string `mapstructure:"idAttribute" yaml:"idAttribute"` // Synthesised when absent from the source
	NoViews              int    `mapstructure:"noViews" yaml:"noViews" validate:"min=1"`
	ResultFolder         string `mapstructure:"resultFolder" yaml:"resultFolder" validate:"required"`
	LoadPresetExperiment bool   `mapstructure:"loadPresetExperiment" yaml:"loadPresetExperiment"` // Reuse existing fold_N directories
	RandomSeed           int64  `mapstructure:"randomSeed" yaml:"randomSeed"`
}

// CVConfig configures fold preparation
type CVConfig struct {
	NoFolds     int  `mapstructure:"noFolds" yaml:"noFolds" validate:"min=1"`
	NoLabeled   int  `mapstructure:"noLabeled" yaml:"noLabeled" validate:"min=1"`
	NoUnlabeled int  `mapstructure:"noUnlabeled" yaml:"noUnlabeled" validate:"min=0"` // 0 = every remaining training instance
	Stratified  bool `mapstructure:"stratified" yaml:"stratified"`
}

// CoTrainingConfig is consumed by co-training style algorithms registered
// from outside this repository; it also identifies the experiment group.
type CoTrainingConfig struct {
	Iterations int    `mapstructure:"iterations" yaml:"iterations" validate:"min=0"`
	PoolSize   int    `mapstructure:"poolSize" yaml:"poolSize" validate:"min=0"`
	GrowthSize string `mapstructure:"growthSize" yaml:"growthSize"` // Per-class counts added each iteration, e.g. "1,3"
	Classifier string `mapstructure:"classifier" yaml:"classifier"`
}

// ExperimentConfig selects what runs and how results are collected
type ExperimentConfig struct {
	Algorithm        string `mapstructure:"algorithm" yaml:"algorithm" validate:"required"`
	Measures         string `mapstructure:"measures" yaml:"measures" validate:"required"` // Comma separated measure names
	Splitter         string `mapstructure:"splitter" yaml:"splitter"`                     // Empty or "none" disables splitting
	NoSplits         int    `mapstructure:"noSplits" yaml:"noSplits" validate:"min=1"`
	WriteClassifiers bool   `mapstructure:"writeClassifiers" yaml:"writeClassifiers"`
	MacroAveraging   string `mapstructure:"macroAveraging" yaml:"macroAveraging" validate:"oneof=lastSplit splitMean"`
	RecordHistory    bool   `mapstructure:"recordHistory" yaml:"recordHistory"`
}

// GAConfig configures the genetic optimisation used by RSSalg variants
type GAConfig struct {
	OptimizationMeasure  string  `mapstructure:"optimizationMeasure" yaml:"optimizationMeasure" validate:"required"`
	PopulationSize       int     `mapstructure:"populationSize" yaml:"populationSize" validate:"min=1"`
	Generations          int     `mapstructure:"generations" yaml:"generations" validate:"min=1"`
	CrossoverProbability float64 `mapstructure:"crossoverProbability" yaml:"crossoverProbability" validate:"gte=0,lte=1"`
	MutationProbability  float64 `mapstructure:"mutationProbability" yaml:"mutationProbability" validate:"gte=0,lte=1"`
	Elitism              bool    `mapstructure:"elitism" yaml:"elitism"`
}

// Random returns a fresh generator seeded from the configured seed.
// Every call yields an identical stream, which makes each split's feature
// split reproducible without sharing mutable state between splits.
func (s *Settings) Random() *rand.Rand {
	return rand.New(rand.NewSource(s.Dataset.RandomSeed))
}

// Properties returns the configuration that identifies an experiment group in
// Results.xml. Runs sharing these values are comparable and stored together.
func (s *Settings) Properties() map[string]string {
	return map[string]string{
		"dataFile":       s.Dataset.DataFile,
		"classAttribute": s.Dataset.ClassAttribute,
		"noViews":        strconv.Itoa(s.Dataset.NoViews),
		"randomSeed":     strconv.FormatInt(s.Dataset.RandomSeed, 10),
		"noFolds":        strconv.Itoa(s.CV.NoFolds),
		"noLabeled":      strconv.Itoa(s.CV.NoLabeled),
		"noUnlabeled":    strconv.Itoa(s.CV.NoUnlabeled),
		"stratified":     strconv.FormatBool(s.CV.Stratified),
		"iterations":     strconv.Itoa(s.CoTraining.Iterations),
		"poolSize":       strconv.Itoa(s.CoTraining.PoolSize),
		"growthSize":     s.CoTraining.GrowthSize,
		"classifier":     s.CoTraining.Classifier,
	}
}
