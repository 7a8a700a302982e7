package knowledge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/knowledge"
)

type mockKnowledgeRepo struct {
	putFunc func(ctx context.Context, k *domain.StructuredKnowledge) error
}

func (m *mockKnowledgeRepo) Get(context.Context, string) (*domain.StructuredKnowledge, error) {
	return nil, domain.ErrNotFound
}

func (m *mockKnowledgeRepo) Put(ctx context.Context, k *domain.StructuredKnowledge) error {
	return m.putFunc(ctx, k)
}

func TestLoadDataset_Embedded(t *testing.T) {
	t.Parallel()

	ds, err := knowledge.LoadDataset("")
	require.NoError(t, err)

	doc := ds.Document()
	code, ok := doc.String("college_info", "vtu_code")
	assert.True(t, ok)
	assert.Equal(t, "BN005", code)

	available, ok := doc.Bool("facilities", "transport", "available")
	assert.True(t, ok)
	assert.True(t, available)
}

func TestLoadDataset_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("facilities:\n  library:\n    timing: 9 AM to 5 PM\n"), 0o600))

	ds, err := knowledge.LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "9 AM to 5 PM", knowledge.Format(knowledge.CategoryLibrary, ds.Document()))
}

func TestLoadDataset_Errors(t *testing.T) {
	t.Parallel()

	_, err := knowledge.LoadDataset(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = knowledge.ParseDataset(nil)
	require.Error(t, err)

	_, err = knowledge.ParseDataset([]byte("- just\n- a list\n"))
	require.Error(t, err)

	_, err = knowledge.ParseDataset([]byte("# only a comment\n"))
	require.Error(t, err)
}

func TestDataset_CopiesAreIndependent(t *testing.T) {
	t.Parallel()

	ds, err := knowledge.ParseDataset([]byte("facilities:\n  library:\n    timing: 8 AM\n"))
	require.NoError(t, err)

	first := ds.Data()
	lib := first["facilities"].(map[string]any)["library"].(map[string]any)
	lib["timing"] = "tampered"

	assert.Equal(t, "8 AM", knowledge.Format(knowledge.CategoryLibrary, ds.Document()))
}

func TestParseDataset_NonStringKeys(t *testing.T) {
	t.Parallel()

	ds, err := knowledge.ParseDataset([]byte("important_dates:\n  2025: June\n"))
	require.NoError(t, err)

	got, ok := ds.Document().String("important_dates", "2025")
	assert.True(t, ok)
	assert.Equal(t, "June", got)
}

func TestSeed(t *testing.T) {
	t.Parallel()

	ds, err := knowledge.LoadDataset("")
	require.NoError(t, err)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	var stored *domain.StructuredKnowledge
	repo := &mockKnowledgeRepo{putFunc: func(_ context.Context, k *domain.StructuredKnowledge) error {
		stored = k
		return nil
	}}

	require.NoError(t, knowledge.Seed(t.Context(), repo, "ambit", ds, now))
	require.NotNil(t, stored)
	assert.Equal(t, "ambit", stored.TenantID)
	assert.Equal(t, now, stored.UpdatedAt)
	assert.Contains(t, stored.Data, "admissions")

	repo.putFunc = func(context.Context, *domain.StructuredKnowledge) error { return errors.New("db down") }
	err = knowledge.Seed(t.Context(), repo, "ambit", ds, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge.Seed")
}
