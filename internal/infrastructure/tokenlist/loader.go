package tokenlist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ repositories.TokenListSource = (*DirSource)(nil)

// List is a token list document
type List struct {
	Name   string                   `json:"name"`
	Tokens []*entities.CatalogToken `json:"tokens"`
}

// ParseList decodes a token list document
func ParseList(data []byte) (*List, error) {
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode token list: %w", err)
	}
	return &list, nil
}

// DirSource reads every *.json token list in a directory
type DirSource struct {
	dir    string
	logger *zap.Logger
}

// NewDirSource creates a token list source for dir
func NewDirSource(dir string, logger *zap.Logger) *DirSource {
	return &DirSource{dir: dir, logger: logger}
}

// LoadTokens returns the tokens of all lists in file name order
func (s *DirSource) LoadTokens(ctx context.Context) ([]*entities.CatalogToken, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list token lists: %w", err)
	}
	sort.Strings(files)

	tokens := make([]*entities.CatalogToken, 0)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		list, err := ParseList(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}

		s.logger.Debug("Loaded token list",
			zap.String("file", filepath.Base(file)),
			zap.String("name", list.Name),
			zap.Int("tokens", len(list.Tokens)),
		)

		for _, t := range list.Tokens {
			if t != nil {
				tokens = append(tokens, t)
			}
		}
	}

	return tokens, nil
}
