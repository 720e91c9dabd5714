// Package prompts loads prompt and generation settings from TOML files.
// The file layout follows the original tool: a prompts file with a [prompt]
// table holding system/user instructions, and a config file with sampling
// settings.
package prompts

import (
	"fmt"

	"github.com/spf13/viper"
)

// Prompts is one system/user instruction pair.
type Prompts struct {
	System string
	User   string
}

// GenConfig holds generation settings from the config file.
type GenConfig struct {
	Temperature float64
	Model       string
}

// LoadPrompts reads a prompts TOML file:
//
//	[prompt]
//	system = "..."
//	user = "..."
func LoadPrompts(path string) (*Prompts, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read prompts file %s: %w", path, err)
	}

	p := &Prompts{
		System: v.GetString("prompt.system"),
		User:   v.GetString("prompt.user"),
	}
	if p.System == "" {
		return nil, fmt.Errorf("prompts file %s: missing key %q", path, "prompt.system")
	}
	if p.User == "" {
		return nil, fmt.Errorf("prompts file %s: missing key %q", path, "prompt.user")
	}
	return p, nil
}

// LoadGenConfig reads a generation config TOML file with a top-level
// temperature and an optional model.
func LoadGenConfig(path string) (*GenConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if !v.IsSet("temperature") {
		return nil, fmt.Errorf("config file %s: missing key %q", path, "temperature")
	}
	return &GenConfig{
		Temperature: v.GetFloat64("temperature"),
		Model:       v.GetString("model"),
	}, nil
}
