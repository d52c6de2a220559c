// Package config resolves and persists the daemon's on-disk configuration:
// hotkey, injection target, model selection, and the gating/sanitizer
// surface. It generalizes the teacher's single-value JSON API-key file to
// a full YAML document, keeping the teacher's env-var/.env fallback chain.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/talktotext/t2/internal/transcribe"
)

const (
	configFileName   = "config.yaml"
	configDirName    = "t2"
	metricsSubDir    = "metrics"
	transcriptSubDir = "transcripts"
	modelsSubDir     = "models"
)

// InjectionMode selects which Injector the orchestrator wires up.
type InjectionMode string

const (
	InjectionFocusedWindow InjectionMode = "focused_window"
	InjectionMultiplexer   InjectionMode = "multiplexer_pane"
)

// Config is the full on-disk configuration surface named in the
// specification's external-interfaces section: hotkey, injection mode,
// model name/device/language, auto-return, sanitizer settings, and the
// gating constants.
type Config struct {
	Hotkey string `yaml:"hotkey"`

	InjectionMode   InjectionMode `yaml:"injection_mode"`
	MultiplexerPane string        `yaml:"multiplexer_pane,omitempty"` // "session:window.pane"
	CommandNames    []string      `yaml:"command_names,omitempty"`
	AutoReturn      bool          `yaml:"auto_return"`
	TypingDelayMS   int           `yaml:"typing_delay_ms"`

	ModelName string `yaml:"model_name"`
	ModelDir  string `yaml:"model_dir"`
	Device    string `yaml:"device"`
	Language  string `yaml:"language,omitempty"`

	SanitizerMaxLength   int  `yaml:"sanitizer_max_length"`
	SanitizerEscapeShell bool `yaml:"sanitizer_escape_shell"`

	MinRecordingDurationMS int     `yaml:"min_recording_duration_ms"`
	MinAudioRMS            float64 `yaml:"min_audio_rms"`
	MaxRecordingDurationS  int     `yaml:"max_recording_duration_s"`
	TranscriptionTimeoutS  int     `yaml:"transcription_timeout_s"`

	SaveTranscripts bool `yaml:"save_transcripts"`
	TypingSpeedWPM  int  `yaml:"typing_speed_wpm,omitempty"`
}

// Default returns the configuration the daemon uses when no file exists
// yet, matching the gating defaults named in the specification.
func Default() *Config {
	return &Config{
		Hotkey:                 "ctrl_r",
		InjectionMode:          InjectionFocusedWindow,
		CommandNames:           []string{"claude"},
		AutoReturn:             false,
		TypingDelayMS:          0,
		ModelName:              "base",
		Device:                 "auto",
		SanitizerMaxLength:     500,
		SanitizerEscapeShell:   true,
		MinRecordingDurationMS: 300,
		MinAudioRMS:            0.01,
		MaxRecordingDurationS:  60,
		TranscriptionTimeoutS:  30,
		SaveTranscripts:        false,
	}
}

func configDir() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, ".config", configDirName), nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetConfigPath returns the full path to the config file, exported for the
// CLI's --show-config flag.
func GetConfigPath() (string, error) {
	return configPath()
}

// Load reads the on-disk config, applying env-var overrides from .env on
// top. A missing file yields Default(), not an error.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets a handful of deployment-specific values be set
// without touching the config file, matching the teacher's env-first
// resolution chain. .env is loaded best-effort, same as the teacher.
func applyEnvOverrides(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("T2_HOTKEY"); v != "" {
		cfg.Hotkey = v
	}
	if v := os.Getenv("T2_MULTIPLEXER_PANE"); v != "" {
		cfg.MultiplexerPane = v
	}
	if v := os.Getenv("T2_MODEL_DIR"); v != "" {
		cfg.ModelDir = v
	}
	if v := os.Getenv("T2_DEVICE"); v != "" {
		cfg.Device = v
	}
}

// Validate checks the sanitizer bounds, injection-mode consistency, and
// model name the specification requires.
func (c *Config) Validate() error {
	if c.SanitizerMaxLength < 100 || c.SanitizerMaxLength > 5000 {
		return fmt.Errorf("config: sanitizer_max_length must be between 100 and 5000, got %d", c.SanitizerMaxLength)
	}
	switch c.InjectionMode {
	case InjectionFocusedWindow, InjectionMultiplexer:
	default:
		return fmt.Errorf("config: unknown injection_mode %q", c.InjectionMode)
	}
	if c.ModelDir == "" && !transcribe.IsValidModel(transcribe.Model(c.ModelName)) {
		return fmt.Errorf("config: unknown model_name %q", c.ModelName)
	}
	return nil
}

// Save writes cfg to disk with user-only permissions.
func Save(cfg *Config) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// MetricsDir returns the directory usage-metrics history is stored under.
func MetricsDir() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, metricsSubDir), nil
}

// TranscriptDir returns the directory persisted transcripts are written to.
func TranscriptDir() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, transcriptSubDir), nil
}

// ModelsDir returns the root directory holding one subdirectory per model
// size (tiny, base, small, medium, large), used when ModelDir is not set
// explicitly.
func ModelsDir() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, modelsSubDir), nil
}
