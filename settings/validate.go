package settings

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rssalg/rssalg/errors"
)

// structValidate checks the per-field `validate` tags of each category
var structValidate = validator.New()

func validateStruct(target interface{}) error {
	if err := structValidate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.NewConfigError("%s fails %q (value %v)", fe.Field(), fieldRule(fe), fe.Value())
		}
		return errors.Mark(err, errors.ErrInvalidConfig)
	}
	return nil
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// Validate checks rules that span fields or categories
func (s *Settings) Validate() error {
	// Fresh folds need a source dataset and at least one training fold per test fold
	if !s.Dataset.LoadPresetExperiment {
		if s.Dataset.DataFile == "" {
			return errors.NewConfigError("dataFile cannot be empty unless loadPresetExperiment is set")
		}
		if s.CV.NoFolds < 2 {
			return errors.NewConfigError("noFolds must be >= 2 to build folds, got %d", s.CV.NoFolds)
		}
	}

	if s.Experiment.NoSplits < 1 {
		return errors.NewConfigError("noSplits must be >= 1, got %d", s.Experiment.NoSplits)
	}

	if s.Experiment.MacroAveraging != MacroLastSplit && s.Experiment.MacroAveraging != MacroSplitMean {
		return errors.NewConfigError("macroAveraging must be %q or %q, got %q",
			MacroLastSplit, MacroSplitMean, s.Experiment.MacroAveraging)
	}

	if _, err := s.CoTraining.Growth(); err != nil {
		return err
	}

	return nil
}

// Growth parses the per-class growth sizes, e.g. "1,3" -> [1 3]
func (c CoTrainingConfig) Growth() ([]int, error) {
	if strings.TrimSpace(c.GrowthSize) == "" {
		return nil, nil
	}
	parts := strings.Split(c.GrowthSize, ",")
	growth := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, errors.NewConfigError("growthSize must be a comma separated list of counts, got %q", c.GrowthSize)
		}
		growth = append(growth, n)
	}
	return growth, nil
}
