package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const keybindingsFile = "keybindings.yaml"

// Keybindings is the move/resize pointer-button binding document, kept
// separate from the TOML process config (gazed-vu's asset-loading style:
// a small hot-reloadable YAML document a user plausibly hand-edits).
type Keybindings struct {
	Move           Binding `yaml:"move"`
	Resize         Binding `yaml:"resize"`
	ClickToActivate bool   `yaml:"click_to_activate"`
}

// Binding is a pointer button plus modifier mask that starts a grab.
type Binding struct {
	Button    int      `yaml:"button"`
	Modifiers []string `yaml:"modifiers"`
}

func defaultKeybindings() Keybindings {
	return Keybindings{
		Move:            Binding{Button: 1, Modifiers: []string{"super"}},
		Resize:          Binding{Button: 3, Modifiers: []string{"super"}},
		ClickToActivate: true,
	}
}

func keybindingsPath() string {
	return filepath.Join(dir(), keybindingsFile)
}

// ReadKeybindings loads the keybindings document, writing out the default
// one first if none exists yet.
func ReadKeybindings() (*Keybindings, error) {
	p := keybindingsPath()
	if ok, err := exists(p); err != nil {
		return nil, fmt.Errorf("config: stat keybindings: %w", err)
	} else if !ok {
		if err := os.MkdirAll(dir(), 0700); err != nil {
			return nil, fmt.Errorf("config: create config dir: %w", err)
		}
		kb := defaultKeybindings()
		if err := WriteKeybindings(&kb); err != nil {
			return nil, err
		}
		return &kb, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("config: read keybindings %s: %w", p, err)
	}
	var kb Keybindings
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("config: parse keybindings %s: %w", p, err)
	}
	return &kb, nil
}

// WriteKeybindings serializes kb as YAML to the keybindings path.
func WriteKeybindings(kb *Keybindings) error {
	data, err := yaml.Marshal(kb)
	if err != nil {
		return fmt.Errorf("config: encode keybindings: %w", err)
	}
	if err := os.WriteFile(keybindingsPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write keybindings: %w", err)
	}
	return nil
}
