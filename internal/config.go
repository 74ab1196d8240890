package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ExiftoolBin   string        `mapstructure:"exiftool"`
	FfmpegBin     string        `mapstructure:"ffmpeg"`
	ToolTimeout   time.Duration `mapstructure:"tool_timeout"`
	SidecarSuffix string        `mapstructure:"sidecar_suffix"`
	VideoExt      []string      `mapstructure:"video_extensions"`
	GenericExt    []string      `mapstructure:"generic_extensions"`
	LogLevel      string        `mapstructure:"log_level"`
}

func LoadConfig() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find user config dir: %w", err)
	}

	viper.SetConfigName("elessar")
	viper.SetConfigType("toml")
	viper.AddConfigPath(filepath.Join(configDir, "elessar"))

	viper.SetDefault("exiftool", "exiftool")
	viper.SetDefault("ffmpeg", "ffmpeg")
	viper.SetDefault("tool_timeout", 2*time.Minute)
	viper.SetDefault("sidecar_suffix", ".json")
	viper.SetDefault("video_extensions", []string{".mp4", ".mov"})
	viper.SetDefault("generic_extensions", []string{".webp", ".avi"})
	viper.SetDefault("log_level", "info")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; that's OK, just use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig is the built-in configuration, used by tests and as the
// fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ExiftoolBin:   "exiftool",
		FfmpegBin:     "ffmpeg",
		ToolTimeout:   2 * time.Minute,
		SidecarSuffix: ".json",
		VideoExt:      []string{".mp4", ".mov"},
		GenericExt:    []string{".webp", ".avi"},
		LogLevel:      "info",
	}
}
