package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedData is a fixture file of records to load.
type SeedData struct {
	Authors []SeedAuthor `yaml:"authors"`
	Orders  []Order      `yaml:"orders"`
}

// SeedAuthor is an author with their quotes nested under them.
type SeedAuthor struct {
	Author `yaml:",inline"`
	Quotes []Quote `yaml:"quotes"`
}

// SeedResult counts what Seed inserted.
type SeedResult struct {
	Authors int `json:"authors"`
	Quotes  int `json:"quotes"`
	Orders  int `json:"orders"`
}

// LoadSeedFile reads and parses a YAML fixture file.
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed parses YAML fixture data.
func ParseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	for i, a := range data.Authors {
		if a.Name == "" {
			return nil, fmt.Errorf("author %d: name is required", i)
		}
	}
	return &data, nil
}

// Seed inserts every record in data. It stops at the first failure.
func (s *Store) Seed(ctx context.Context, data *SeedData) (SeedResult, error) {
	var res SeedResult

	for i := range data.Authors {
		sa := &data.Authors[i]
		if err := s.CreateAuthor(ctx, &sa.Author); err != nil {
			return res, err
		}
		res.Authors++

		for j := range sa.Quotes {
			q := &sa.Quotes[j]
			q.AuthorID = sa.ID
			if err := s.CreateQuote(ctx, q); err != nil {
				return res, err
			}
			res.Quotes++
		}
	}

	for i := range data.Orders {
		if err := s.CreateOrder(ctx, &data.Orders[i]); err != nil {
			return res, err
		}
		res.Orders++
	}

	s.logger.InfoContext(ctx, "seed complete",
		"authors", res.Authors,
		"quotes", res.Quotes,
		"orders", res.Orders,
	)
	return res, nil
}
