package neighborhood

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout accepted by LoadSeedFile.
//
//	neighborhoods:
//	  - id: "mission"
//	    name: "Mission District"
//	    url: "https://example.org/mission"
//	    description: "..."
type seedFile struct {
	Neighborhoods []Neighborhood `yaml:"neighborhoods"`
}

// LoadSeedFile reads and validates a neighborhood seed file.
func LoadSeedFile(path string) ([]Neighborhood, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	seen := make(map[string]bool, len(f.Neighborhoods))
	for i := range f.Neighborhoods {
		n := &f.Neighborhoods[i]
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("entry %d: duplicate id %q: %w", i, n.ID, ErrInvalidNeighborhood)
		}
		seen[n.ID] = true
	}
	return f.Neighborhoods, nil
}

// Seed upserts every neighborhood and returns how many were written.
func Seed(ctx context.Context, repo Repository, neighborhoods []Neighborhood) (int, error) {
	for i := range neighborhoods {
		if err := repo.Upsert(ctx, &neighborhoods[i]); err != nil {
			return i, err
		}
	}
	return len(neighborhoods), nil
}
