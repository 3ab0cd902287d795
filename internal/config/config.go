package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the generator settings. Values come from an optional config
// file (YAML, JSON or TOML, by extension) overlaid with MODERR_* environment
// variables; command-line flags override both.
type Config struct {
	OutputDir      string `yaml:"output_dir" json:"output_dir" toml:"output_dir" env:"MODERR_OUTPUT_DIR" env-default:"." validate:"required"`
	Package        string `yaml:"package" json:"package" toml:"package" env:"MODERR_PACKAGE" validate:"omitempty,gopkg"`
	DispatchImport string `yaml:"dispatch_import" json:"dispatch_import" toml:"dispatch_import" env:"MODERR_DISPATCH_IMPORT"`
	TemplatesDir   string `yaml:"templates_dir" json:"templates_dir" toml:"templates_dir" env:"MODERR_TEMPLATES_DIR" validate:"omitempty,dir"`
	LogLevel       string `yaml:"log_level" json:"log_level" toml:"log_level" env:"MODERR_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	LogFormat      string `yaml:"log_format" json:"log_format" toml:"log_format" env:"MODERR_LOG_FORMAT" env-default:"text" validate:"oneof=text json"`
	NoColor        bool   `yaml:"no_color" json:"no_color" toml:"no_color" env:"MODERR_NO_COLOR"`
	// ErrorBudget is the byte budget of the static size warning.
	ErrorBudget int    `yaml:"error_budget" json:"error_budget" toml:"error_budget" env:"MODERR_ERROR_BUDGET" env-default:"4" validate:"gte=1,lte=255"`
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" toml:"metrics_file" env:"MODERR_METRICS_FILE"`
}

var goPackageRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("gopkg", func(fl validator.FieldLevel) bool {
		return goPackageRE.MatchString(fl.Field().String())
	})
	return v
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads path and then the environment, which wins on conflicts.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values after flags have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
