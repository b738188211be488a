package dynamock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// SeedFromJSON reads a JSON array of records and persists each one. Every
// record must contain the primary key of the seeder's table as a string.
// Returns the number of records saved and any errors generated.
func (s *SeedTestData) SeedFromJSON(ctx context.Context, r io.Reader) (int, error) {
	var records []map[string]any
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&records); err != nil {
		return 0, fmt.Errorf("failed to parse JSON document: %w", err)
	}

	for i, record := range records {
		if _, ok := record[s.loc.PrimaryKey].(string); !ok {
			return 0, fmt.Errorf("record at index %d missing string primary key %q", i, s.loc.PrimaryKey)
		}
	}

	count := 0
	for _, record := range records {
		if err := s.SeedRecord(ctx, record); err != nil {
			return count, fmt.Errorf("failed to seed record %v: %w", record[s.loc.PrimaryKey], err)
		}
		count++
	}

	return count, nil
}
