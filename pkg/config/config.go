package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ForecastBench/pkg/util"
)

// DefaultPath is used when -config is not given. A missing file at this
// path falls back to built-in defaults.
const DefaultPath = "config/config.yaml"

type Config struct {
	Environment string `yaml:"environment" default:"local" validate:"required"`
	Logger      struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic"`
		Format     string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output     string `yaml:"output" default:"stdout" validate:"required"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logger"`
	Data struct {
		PathPattern string `yaml:"path_pattern" default:"../data/%s.csv" validate:"required"`
		CloseColumn string `yaml:"close_column" default:"Close" validate:"required"`
		SplitDate   string `yaml:"split_date" default:"2017-01-01" validate:"required"`
	} `yaml:"data"`
	Experiment struct {
		Symbols         []string `yaml:"symbols" validate:"required,min=1,dive,required"`
		WindowSizes     []int    `yaml:"window_sizes" validate:"required,min=1,dive,gt=0"`
		Repetitions     int      `yaml:"repetitions" default:"2" validate:"gte=1"`
		Epochs          int      `yaml:"epochs" default:"200" validate:"gte=1"`
		BatchSize       int      `yaml:"batch_size" default:"32" validate:"gte=1"`
		LearningRate    float64  `yaml:"learning_rate" default:"0.001" validate:"gt=0"`
		Seed            int64    `yaml:"seed"`
		ContinueOnError bool     `yaml:"continue_on_error"`
		Patience        struct {
			ANN  int `yaml:"ann" default:"2" validate:"gte=1"`
			CNN  int `yaml:"cnn" default:"5" validate:"gte=1"`
			LSTM int `yaml:"lstm" default:"5" validate:"gte=1"`
			GRU  int `yaml:"gru" default:"5" validate:"gte=1"`
		} `yaml:"patience"`
	} `yaml:"experiment"`
	Report struct {
		Dir               string `yaml:"dir" default:"." validate:"required"`
		FilePattern       string `yaml:"file_pattern" default:"predictions_%s.csv" validate:"required"`
		WriteAggregates   bool   `yaml:"write_aggregates"`
		AggregatePattern  string `yaml:"aggregate_pattern" default:"aggregates_%s.csv" validate:"required"`
		ComparisonPattern string `yaml:"comparison_pattern" default:"dm_%s.csv" validate:"required"`
	} `yaml:"report"`
	Diagram struct {
		Dir        string  `yaml:"dir" default:"." validate:"required"`
		WindowSize int     `yaml:"window_size" default:"3" validate:"gte=3"`
		Width      float64 `yaml:"width_inches" default:"5" validate:"gt=0"`
	} `yaml:"diagram"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults,
// with the symbol and window lists of the published experiment.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	c.Experiment.Symbols = []string{"INFY", "BHARTIARTL", "AXISBANK"}
	c.Experiment.WindowSizes = []int{3}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadOrDefault behaves like Load but returns the defaults when path is the
// default path and the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if err == nil {
		return c, nil
	}
	if path == DefaultPath && errors.Is(err, os.ErrNotExist) {
		c, derr := Default()
		if derr != nil {
			return nil, derr
		}
		if verr := c.Validate(); verr != nil {
			return nil, fmt.Errorf("validate config: %w", verr)
		}
		return c, nil
	}
	return nil, err
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if _, ok := util.ParseDate(c.Data.SplitDate); !ok {
		return fmt.Errorf("data.split_date: cannot parse %q", c.Data.SplitDate)
	}
	if !strings.Contains(c.Data.PathPattern, "%s") {
		return fmt.Errorf("data.path_pattern must contain %%s, got '%s'", c.Data.PathPattern)
	}
	seen := make(map[int]bool, len(c.Experiment.WindowSizes))
	for _, w := range c.Experiment.WindowSizes {
		if seen[w] {
			return fmt.Errorf("experiment.window_sizes: duplicate window %d", w)
		}
		seen[w] = true
	}
	return nil
}

// SplitTime returns the parsed split date. Validate guarantees it parses.
func (c *Config) SplitTime() time.Time {
	t, _ := util.ParseDate(c.Data.SplitDate)
	return t
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
