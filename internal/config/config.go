// Package config resolves the command line, the environment and an optional config
// file into the settings of a linepipe run.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by linepipe.
const EnvPrefix = "LINEPIPE"

const defaultEnvFile = ".env"

// Config contains the settings of a run.
type Config struct {
	// Stages are the stage expressions, in order.
	Stages []string `mapstructure:"-"`
	// Reducer is the reducer expression. It is only used when HasReducer is true.
	Reducer    string `mapstructure:"-"`
	HasReducer bool   `mapstructure:"-"`
	// InplaceEdit is the file rewritten in place, stdin and stdout are used when empty.
	InplaceEdit string `mapstructure:"-"`
	Version     bool   `mapstructure:"-"`
	Help        bool   `mapstructure:"-"`

	Log     LogConfig `mapstructure:",squash"`
	Measure bool      `mapstructure:"measure"`
	Draw    string    `mapstructure:"draw"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"log-level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"log-format" validate:"oneof=text json"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}

	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return nil
}

// Empty reports whether there is nothing to run.
func (c *Config) Empty() bool {
	return len(c.Stages) == 0 && !c.HasReducer
}

type loader struct {
	envFile string
}

// Option configures Load.
type Option func(*loader)

// WithEnvFile loads the environment from path instead of .env.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

type flags struct {
	reduce     string
	inplace    string
	configFile string
	version    bool
	help       bool
}

func newFlagSet(f *flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("linepipe", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVarP(&f.reduce, "reduce", "r", "", "reduce the selected lines with `EXPR`, self is the list of lines")
	fs.StringVarP(&f.inplace, "inplace-edit", "i", "", "rewrite `FILE` in place instead of reading stdin")
	fs.String("log-level", "", "diagnostics level: trace, debug, info, warn or error")
	fs.String("log-format", "", "diagnostics format: text or json")
	fs.Bool("measure", false, "log the time spent and the records seen by every step")
	fs.String("draw", "", "write the pipeline graph to `FILE` in the DOT language")
	fs.StringVar(&f.configFile, "config", "", "read settings from `FILE`")
	fs.BoolVarP(&f.version, "version", "v", false, "print the version")
	fs.BoolVarP(&f.help, "help", "h", false, "print this help")

	return fs
}

// Usage returns the description of every flag.
func Usage() string {
	return newFlagSet(&flags{}).FlagUsages()
}

// Load parses args, without the program name, into a validated configuration.
//
// Settings are resolved from flags first, then LINEPIPE_ prefixed environment
// variables, then the config file.
func Load(args []string, opts ...Option) (*Config, error) {
	l := &loader{envFile: defaultEnvFile}
	for _, opt := range opts {
		opt(l)
	}

	f := &flags{}
	fs := newFlagSet(f)

	err := fs.Parse(args)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse flags")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	err = l.loadEnv()
	if err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	for _, name := range []string{"log-level", "log-format", "measure", "draw"} {
		err = v.BindPFlag(name, fs.Lookup(name))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to bind flag %s", name)
		}
	}

	if f.configFile != "" {
		v.SetConfigFile(f.configFile)

		err = v.ReadInConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", f.configFile)
		}
	}

	cfg := &Config{}

	err = v.Unmarshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal config")
	}

	cfg.InplaceEdit = f.inplace
	cfg.Version = f.version
	cfg.Help = f.help
	cfg.Stages, cfg.Reducer, cfg.HasReducer = splitExpressions(fs.Args(), f.reduce, fs.Changed("reduce"))

	cfg.ApplyDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitExpressions separates stage expressions from the reducer expression. Without
// an explicit reducer, the last of two or more positionals is the reducer.
func splitExpressions(positionals []string, reduce string, hasReduce bool) ([]string, string, bool) {
	if hasReduce {
		return positionals, reduce, true
	}

	if len(positionals) < 2 {
		return positionals, "", false
	}

	last := len(positionals) - 1

	return positionals[:last], positionals[last], true
}

func (l *loader) loadEnv() error {
	if l.envFile == "" {
		return nil
	}

	_, err := os.Stat(l.envFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	err = godotenv.Load(l.envFile)
	if err != nil {
		return errors.Wrapf(err, "unable to load env file %s", l.envFile)
	}

	return nil
}
