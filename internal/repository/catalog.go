package repository

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

var ErrInvalidCatalog = errors.New("invalid questionnaire")

//go:embed schema/questions.schema.json
var questionsSchema []byte

// CatalogRepository provides access to the Prakriti questionnaire.
// The questionnaire is loaded once and never changes while the bot runs.
type CatalogRepository struct {
	catalog *entities.Catalog
}

// NewCatalogRepository loads and validates the questionnaire at path.
func NewCatalogRepository(path string) (*CatalogRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questionnaire: %w", err)
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}

	return &CatalogRepository{catalog: catalog}, nil
}

// Catalog returns the loaded questionnaire.
func (r *CatalogRepository) Catalog() *entities.Catalog {
	return r.catalog
}

// ParseCatalog validates raw questionnaire JSON against the schema and the
// catalog invariants, then decodes it.
func ParseCatalog(data []byte) (*entities.Catalog, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(questionsSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
	}

	var catalog entities.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questionnaire JSON: %w", err)
	}

	if err := validateCatalog(&catalog); err != nil {
		return nil, err
	}

	return &catalog, nil
}

func validateCatalog(c *entities.Catalog) error {
	questionIDs := make(map[string]struct{}, len(c.Questions))
	optionIDs := make(map[string]struct{}, len(c.Questions)*len(entities.Doshas))

	for _, q := range c.Questions {
		if _, dup := questionIDs[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidCatalog, q.ID)
		}
		questionIDs[q.ID] = struct{}{}

		for _, o := range q.Options {
			if !o.Dosha.IsValid() {
				return fmt.Errorf("%w: option %q has unknown dosha %q", ErrInvalidCatalog, o.ID, o.Dosha)
			}
			if _, dup := optionIDs[o.ID]; dup {
				return fmt.Errorf("%w: duplicate option id %q", ErrInvalidCatalog, o.ID)
			}
			optionIDs[o.ID] = struct{}{}
		}
	}

	return nil
}
