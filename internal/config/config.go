package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/taleweaver/internal/fsutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "TALEWEAVER"
	appDirName = ".taleweaver"
	logName    = "taleweaver.log"

	fileMode        = 0o600
	dirMode         = 0o700
	tempFilePattern = ".config-*.toml.tmp"

	keyDataDir        = "data_dir"
	keyBaseURL        = "ollama.base_url"
	keyModel          = "ollama.model"
	keyPollInterval   = "ollama.poll_interval"
	keyRequestTimeout = "ollama.request_timeout"
	keyHistoryTurns   = "history.turns"
	keyLogLevel       = "log.level"
	keyLogEncoding    = "log.encoding"
	keyLogFile        = "log.file"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrConfigExists  = errors.New("config file already exists")
)

type Config struct {
	DataDir string
	Ollama  OllamaConfig
	History HistoryConfig
	Log     LogConfig
	// File is the config file that was read, or where one would be written.
	File string
}

type OllamaConfig struct {
	BaseURL        string
	Model          string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

type HistoryConfig struct {
	Turns int
}

type LogConfig struct {
	Level    string
	Encoding string
	File     string
}

// Load resolves configuration from defaults, the TOML file under home and
// TALEWEAVER_* environment variables, in increasing precedence.
func Load(v *viper.Viper, home string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	appDir := filepath.Join(home, appDirName)
	defaultFile := filepath.Join(appDir, configName+"."+configType)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(appDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if explicit := os.Getenv(envPrefix + "_CONFIG"); explicit != "" {
		v.SetConfigFile(explicit)
		defaultFile = explicit
	}

	v.SetDefault(keyDataDir, appDir)
	v.SetDefault(keyBaseURL, "http://localhost:11434")
	v.SetDefault(keyModel, "mistral")
	v.SetDefault(keyPollInterval, 15*time.Millisecond)
	v.SetDefault(keyRequestTimeout, 5*time.Minute)
	v.SetDefault(keyHistoryTurns, 20)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogEncoding, "json")
	v.SetDefault(keyLogFile, "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		DataDir: expandHome(v.GetString(keyDataDir), home),
		Ollama: OllamaConfig{
			BaseURL:        strings.TrimSpace(v.GetString(keyBaseURL)),
			Model:          strings.TrimSpace(v.GetString(keyModel)),
			PollInterval:   v.GetDuration(keyPollInterval),
			RequestTimeout: v.GetDuration(keyRequestTimeout),
		},
		History: HistoryConfig{Turns: v.GetInt(keyHistoryTurns)},
		Log: LogConfig{
			Level:    v.GetString(keyLogLevel),
			Encoding: v.GetString(keyLogEncoding),
			File:     expandHome(v.GetString(keyLogFile), home),
		},
		File: defaultFile,
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.File = used
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, logName)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, keyDataDir))
	}
	if c.Ollama.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, keyBaseURL))
	}
	if c.Ollama.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, keyPollInterval))
	}
	if c.Ollama.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, keyRequestTimeout))
	}
	if c.History.Turns <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, keyHistoryTurns))
	}

	return errors.Join(errs...)
}

// Encode renders c in the on-disk TOML layout.
func Encode(c Config) ([]byte, error) {
	data, err := toml.Marshal(toSchema(c))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return data, nil
}

// Write stores c at path atomically. An existing file is only replaced when force is set.
func Write(path string, c Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := Encode(c)
	if err != nil {
		return err
	}

	err = fsutil.WriteAtomic(path, data, fsutil.AtomicFile{
		Pattern:  tempFilePattern,
		FileMode: fileMode,
		DirMode:  dirMode,
	})
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}

	return path
}
