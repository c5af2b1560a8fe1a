package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"quote-tagging-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *QuoteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "repo_test.db")
	require.NoError(t, Init(dbPath))
	t.Cleanup(func() { Close() })
	return NewQuoteRepository()
}

func TestQuoteCreateAndGet(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.Create(&models.QuoteCreate{
		Text:       "Gold prices rise",
		Author:     "Analyst",
		ManualTags: []string{"markets"},
	}, []string{"gold", "precious metals"})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Gold prices rise", created.Text)
	assert.Equal(t, "Analyst", created.Author)
	assert.Equal(t, []string{"markets"}, created.ManualTags)
	assert.Equal(t, []string{"gold", "precious metals"}, created.AutoTags)
	assert.Equal(t, []string{}, created.RemovedAutoTags)
	assert.False(t, created.DateAdded.IsZero())
}

func TestQuoteCreateNilTagsStoredAsEmpty(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.Create(&models.QuoteCreate{Text: "no tags"}, nil)
	require.NoError(t, err)

	// nil 统一存为空数组, 读出来也不是 nil
	assert.Equal(t, []string{}, created.ManualTags)
	assert.Equal(t, []string{}, created.AutoTags)
}

func TestQuoteUpdatePreservesRemovedAutoTags(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.Create(&models.QuoteCreate{Text: "gold"}, []string{"gold"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateAutoTags(created.ID, []string{}, []string{"gold"}))

	// Update 只改内容/手动标签/自动标签, 不碰移除清单
	updated, err := repo.Update(created.ID, &models.QuoteCreate{Text: "silver"}, []string{})
	require.NoError(t, err)
	assert.Equal(t, "silver", updated.Text)
	assert.Equal(t, []string{"gold"}, updated.RemovedAutoTags)
}

func TestQuoteListAndCount(t *testing.T) {
	repo := setupRepo(t)

	for _, text := range []string{"one", "two", "three"} {
		_, err := repo.Create(&models.QuoteCreate{Text: text}, nil)
		require.NoError(t, err)
	}

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	quotes, err := repo.List(2, 0)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	all, err := repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestQuoteDelete(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.Create(&models.QuoteCreate{Text: "bye"}, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(created.ID))

	_, err = repo.GetByID(created.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
