package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// PromptSeed is one prompt config loaded from a seed file
type PromptSeed struct {
	Name       string `toml:"name"`
	Scope      string `toml:"scope"`
	RoomNumber *int   `toml:"room_number"`
	Text       string `toml:"text"`
	Active     *bool  `toml:"active"`
}

// IsActive defaults to true when the seed does not say otherwise
func (p PromptSeed) IsActive() bool {
	return p.Active == nil || *p.Active
}

type promptSeedFile struct {
	Prompts []PromptSeed `toml:"prompts"`
}

// LoadPromptSeeds reads [[prompts]] tables from a TOML file
func LoadPromptSeeds(path string) ([]PromptSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt seeds: %w", err)
	}
	return ParsePromptSeeds(data)
}

// ParsePromptSeeds decodes and validates prompt seeds
func ParsePromptSeeds(data []byte) ([]PromptSeed, error) {
	var file promptSeedFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse prompt seeds: %w", err)
	}
	for i, p := range file.Prompts {
		if p.Name == "" || p.Text == "" {
			return nil, fmt.Errorf("prompt seed %d: name and text are required", i)
		}
		switch p.Scope {
		case "global":
			if p.RoomNumber != nil {
				return nil, fmt.Errorf("prompt seed %q: global prompts cannot set room_number", p.Name)
			}
		case "room":
			if p.RoomNumber == nil {
				return nil, fmt.Errorf("prompt seed %q: room prompts require room_number", p.Name)
			}
			if *p.RoomNumber < 0 || *p.RoomNumber > 8 {
				return nil, fmt.Errorf("prompt seed %q: room_number must be between 0 and 8", p.Name)
			}
		default:
			return nil, fmt.Errorf("prompt seed %q: unknown scope %q", p.Name, p.Scope)
		}
	}
	return file.Prompts, nil
}
