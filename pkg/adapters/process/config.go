package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known command names.
const (
	// CommandExecute runs generated Lua; the code arrives on stdin.
	CommandExecute = "execute"
	// CommandProvision creates a remote process for any node type.
	// "provision:<type>" takes precedence for a specific type.
	CommandProvision = "provision"
	// CommandEditor converts visual-editor markup (stdin) into Lua (stdout).
	CommandEditor = "editor"
)

// ProcessConfig represents one allow-listed external command.
type ProcessConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of commands.yaml.
type ConfigFile struct {
	Commands []ProcessConfig `yaml:"commands" json:"commands"`
}

// LoadCommands reads a configuration file (YAML or JSON) and returns a map of command names to configs.
// A missing file means no commands are configured.
func LoadCommands(path string) (map[string]ProcessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ProcessConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read commands config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	commands := make(map[string]ProcessConfig)
	for _, c := range cfg.Commands {
		if c.Name == "" || c.Command == "" {
			continue
		}
		commands[c.Name] = c
	}
	return commands, nil
}
