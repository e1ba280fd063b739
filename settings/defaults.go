package settings

import (
	"github.com/spf13/viper"
)

// Environment variable prefix; RSSALG_DATA_RESULTFOLDER overrides
// resultFolder in data.properties, RSSALG_EXPERIMENT_NOSPLITS overrides
// noSplits in the experiment file, and so on.
const EnvPrefix = "RSSALG"

// SetDatasetDefaults configures default values for data.properties
func SetDatasetDefaults(v *viper.Viper) {
	v.SetDefault("dataFile", "")
	v.SetDefault("idAttribute", "id")
	v.SetDefault("noViews", 2)
	v.SetDefault("resultFolder", "results")
	v.SetDefault("loadPresetExperiment", false)
	v.SetDefault("randomSeed", 0)
}

// SetCVDefaults configures default values for cv.properties
func SetCVDefaults(v *viper.Viper) {
	v.SetDefault("noFolds", 10)
	v.SetDefault("noLabeled", 10)
	v.SetDefault("noUnlabeled", 0) // every remaining training instance
	v.SetDefault("stratified", true)
}

// SetCoTrainingDefaults configures default values for co-training.properties
func SetCoTrainingDefaults(v *viper.Viper) {
	v.SetDefault("iterations", 30)
	v.SetDefault("poolSize", 75)
	v.SetDefault("growthSize", "1,1")
	v.SetDefault("classifier", "NaiveBayes")
}

// SetExperimentDefaults configures default values for the experiment file
func SetExperimentDefaults(v *viper.Viper) {
	v.SetDefault("measures", "Accuracy")
	v.SetDefault("splitter", "")
	v.SetDefault("noSplits", 1)
	v.SetDefault("writeClassifiers", false)
	v.SetDefault("macroAveraging", MacroLastSplit)
	v.SetDefault("recordHistory", false)
}

// SetGADefaults configures default values for GA.properties
func SetGADefaults(v *viper.Viper) {
	v.SetDefault("optimizationMeasure", "Accuracy")
	v.SetDefault("populationSize", 50)
	v.SetDefault("generations", 20)
	v.SetDefault("crossoverProbability", 0.9)
	v.SetDefault("mutationProbability", 0.01)
	v.SetDefault("elitism", true)
}
