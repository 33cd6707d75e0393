package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
)

// chainsFile is the layout of CHAINS_FILE
type chainsFile struct {
	Chains []entities.Chain `yaml:"chains"`
}

// LoadChains returns the built-in chain table, with entries from the YAML file
// at path added or replacing built-ins of the same id. An empty path returns the defaults.
func LoadChains(path string) (*entities.ChainRegistry, error) {
	chains := entities.DefaultChains()
	if path == "" {
		return entities.NewChainRegistry(chains), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chains file: %w", err)
	}

	var file chainsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse chains file: %w", err)
	}

	for i, c := range file.Chains {
		id, err := strconv.ParseInt(c.ID, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("chains file entry %d: invalid id %q", i, c.ID)
		}
		if c.Unit == "" {
			return nil, fmt.Errorf("chains file entry %d: unit is required", i)
		}
		if c.Name == "" {
			c.Name = c.Unit
		}
		chains = append(chains, c)
	}

	return entities.NewChainRegistry(chains), nil
}
