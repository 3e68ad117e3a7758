package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

const validCatalog = `{
  "version": "t1",
  "questions": [
    {
      "id": "body-frame",
      "category": "Body",
      "text": "Frame?",
      "options": [
        {"id": "body-frame-v", "text": "Thin", "dosha": "vata"},
        {"id": "body-frame-p", "text": "Medium", "dosha": "pitta"},
        {"id": "body-frame-k", "text": "Broad", "dosha": "kapha"}
      ]
    }
  ]
}`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(validCatalog))
	require.NoError(t, err)

	assert.Equal(t, "t1", c.Version)
	require.Equal(t, 1, c.Len())
	q, ok := c.Question(0)
	require.True(t, ok)
	assert.Equal(t, "Body", q.Category)
	opt, ok := q.Option("body-frame-k")
	require.True(t, ok)
	assert.Equal(t, entities.Kapha, opt.Dosha)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"no questions", `{"version": "t1", "questions": []}`},
		{"unknown dosha", `{"version": "t1", "questions": [{"id": "q", "category": "Body", "text": "t",
			"options": [{"id": "o", "text": "t", "dosha": "ether"}]}]}`},
		{"unknown category", `{"version": "t1", "questions": [{"id": "q", "category": "Soul", "text": "t",
			"options": [{"id": "o", "text": "t", "dosha": "vata"}]}]}`},
		{"duplicate question", `{"version": "t1", "questions": [
			{"id": "q", "category": "Body", "text": "t", "options": [{"id": "o1", "text": "t", "dosha": "vata"}]},
			{"id": "q", "category": "Body", "text": "t", "options": [{"id": "o2", "text": "t", "dosha": "vata"}]}]}`},
		{"duplicate option", `{"version": "t1", "questions": [
			{"id": "q1", "category": "Body", "text": "t", "options": [{"id": "o", "text": "t", "dosha": "vata"}]},
			{"id": "q2", "category": "Body", "text": "t", "options": [{"id": "o", "text": "t", "dosha": "kapha"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestNewCatalogRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(validCatalog), 0o600))

	repo, err := NewCatalogRepository(path)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Catalog().Len())

	_, err = NewCatalogRepository(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestShippedQuestionnaire(t *testing.T) {
	repo, err := NewCatalogRepository(filepath.Join("..", "..", "assets", "data", "questions.json"))
	require.NoError(t, err)

	c := repo.Catalog()
	assert.Equal(t, 20, c.Len())

	categories := make(map[string]int)
	for _, q := range c.Questions {
		categories[q.Category]++

		require.Len(t, q.Options, 3, q.ID)
		seen := make(map[entities.Dosha]bool)
		for _, o := range q.Options {
			seen[o.Dosha] = true
		}
		assert.Len(t, seen, 3, "question %s must offer one option per dosha", q.ID)
	}
	assert.Len(t, categories, 5)
}
