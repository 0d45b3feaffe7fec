package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadSections seeds the store from a JSON array of sections. Existing
// references are updated in place, so loading the same file twice is safe.
func (s *Store) LoadSections(ctx context.Context, r io.Reader) (int, error) {
	var sections []Section
	if err := json.NewDecoder(r).Decode(&sections); err != nil {
		return 0, fmt.Errorf("decode sections: %w", err)
	}
	n := 0
	for _, sec := range sections {
		if err := s.Insert(ctx, sec); err != nil {
			return n, err
		}
		n++
	}
	s.logger.Info("kb.seeded", "sections", n)
	return n, nil
}

// LoadSectionsFile is LoadSections over a file path.
func (s *Store) LoadSectionsFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return s.LoadSections(ctx, f)
}
