package settings

import (
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"

	"github.com/rssalg/rssalg/errors"
)

// category describes one property file and the struct it fills
type category struct {
	name     string // used in error messages and the env prefix
	file     string
	defaults func(*viper.Viper)
	target   interface{}
}

// Load reads all five property files from folder and returns the validated
// configuration. Each read failure is wrapped with its category so the user
// learns which file is at fault.
func Load(folder, experimentFile string) (*Settings, error) {
	s := &Settings{}

	categories := []category{
		{name: "data", file: DataFile, defaults: SetDatasetDefaults, target: &s.Dataset},
		{name: "cv", file: CVFile, defaults: SetCVDefaults, target: &s.CV},
		{name: "co-training", file: CoTrainingFile, defaults: SetCoTrainingDefaults, target: &s.CoTraining},
		{name: "experiment", file: experimentFile, defaults: SetExperimentDefaults, target: &s.Experiment},
		{name: "GA", file: GAFile, defaults: SetGADefaults, target: &s.GA},
	}

	for _, c := range categories {
		path := filepath.Join(folder, c.file)
		if err := readCategory(path, c); err != nil {
			return nil, errors.Wrapf(err, "cannot read %s properties", c.name)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid experiment configuration")
	}

	return s, nil
}

// readCategory parses a Java-style property file and decodes it through Viper
// so defaults, environment overrides and weak typing behave the same for
// every category.
func readCategory(path string, c category) error {
	props, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return errors.Wrapf(err, "failed to read property file %s", path)
	}

	v := newViper(c)

	values := make(map[string]interface{}, props.Len())
	for key, value := range props.Map() {
		values[key] = strings.TrimSpace(value)
	}
	if err := v.MergeConfigMap(values); err != nil {
		return errors.Wrapf(err, "failed to merge %s", path)
	}

	if err := v.Unmarshal(c.target); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to decode %s", path), errors.ErrInvalidConfig)
	}

	if err := validateStruct(c.target); err != nil {
		return errors.Wrapf(err, "invalid value in %s", path)
	}

	return nil
}

// newViper initializes a Viper instance for one category with defaults and
// environment binding (RSSALG_<CATEGORY>_<KEY>)
func newViper(c category) *viper.Viper {
	v := viper.New()

	prefix := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(c.name, "-", ""))
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if c.defaults != nil {
		c.defaults(v)
	}
	return v
}
