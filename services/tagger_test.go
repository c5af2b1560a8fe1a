package services

import (
	"os"
	"path/filepath"
	"testing"

	"quote-tagging-service/db"
	"quote-tagging-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldInflationCSV = `keyword,tags
gold,"gold, precious metals"
inflation,"inflation, economy"
`

// newGenerateService 只测 Generate 时不需要数据库
func newGenerateService(t *testing.T, csv string) *AutoTagService {
	t.Helper()
	dict := NewKeywordDictionary(writeKeywordCSV(t, csv))
	_, err := dict.Load()
	require.NoError(t, err)
	return NewAutoTagService(dict, NewDictionaryMatcher(), nil, 1)
}

// setupTaggerWithDB 带 SQLite 的完整打标服务
func setupTaggerWithDB(t *testing.T, csv string) (*AutoTagService, *db.QuoteRepository, *KeywordDictionary) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tagger_test.db")
	require.NoError(t, db.Init(dbPath))
	t.Cleanup(func() { db.Close() })

	dict := NewKeywordDictionary(writeKeywordCSV(t, csv))
	_, err := dict.Load()
	require.NoError(t, err)

	repo := db.NewQuoteRepository()
	svc := NewAutoTagService(dict, NewDictionaryMatcher(), repo, 2)
	return svc, repo, dict
}

func TestGenerateScenario(t *testing.T) {
	svc := newGenerateService(t, goldInflationCSV)

	// 命中 gold 和 inflation, 标签并集按字典序
	tags := svc.Generate("Gold prices rise amid inflation fears", nil)
	assert.Equal(t, []string{"economy", "gold", "inflation", "precious metals"}, tags)

	// 用户移除过 gold, 不再出现
	tags = svc.Generate("Gold prices rise amid inflation fears", []string{"gold"})
	assert.Equal(t, []string{"economy", "inflation", "precious metals"}, tags)

	// golden 不是整词命中
	assert.Equal(t, []string{}, svc.Generate("The golden rule", nil))
}

func TestGenerateIdempotent(t *testing.T) {
	svc := newGenerateService(t, goldInflationCSV)

	first := svc.Generate("gold and inflation", []string{"economy"})
	second := svc.Generate("gold and inflation", []string{"economy"})
	assert.Equal(t, first, second)
}

func TestGenerateEmptyInputs(t *testing.T) {
	svc := newGenerateService(t, goldInflationCSV)

	// 空文本永远返回空列表, 不报错
	assert.Equal(t, []string{}, svc.Generate("", nil))
	assert.Equal(t, []string{}, svc.Generate("", []string{"gold"}))

	// 空词典同样降级为空列表
	empty := newGenerateService(t, "keyword,tags\n")
	assert.Equal(t, []string{}, empty.Generate("gold everywhere", nil))
}

func TestGenerateNormalizesRemovedTags(t *testing.T) {
	svc := newGenerateService(t, goldInflationCSV)

	// 移除清单大小写/空白不敏感
	tags := svc.Generate("gold bar", []string{"  GOLD  ", "Precious Metals"})
	assert.Equal(t, []string{}, tags)
}

func TestGenerateFlattensHTML(t *testing.T) {
	svc := newGenerateService(t, goldInflationCSV)

	// 网页粘贴的富文本先展平再匹配
	tags := svc.Generate("<p><b>Gold</b> prices are up</p>", nil)
	assert.Equal(t, []string{"gold", "precious metals"}, tags)

	// 标签属性里的词不算可见文本
	tags = svc.Generate(`<a href="https://inflation.example.com">markets</a>`, nil)
	assert.Equal(t, []string{}, tags)
}

func TestRemoveAutoTagTwice(t *testing.T) {
	svc, repo, _ := setupTaggerWithDB(t, goldInflationCSV)

	created, err := repo.Create(
		&models.QuoteCreate{Text: "gold bar"},
		svc.Generate("gold bar", nil),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"gold", "precious metals"}, created.AutoTags)

	// 第一次移除成功
	quote, err := svc.RemoveAutoTag(created.ID, "Gold")
	require.NoError(t, err)
	assert.Equal(t, []string{"precious metals"}, quote.AutoTags)
	assert.Equal(t, []string{"gold"}, quote.RemovedAutoTags)

	// 第二次移除同一个标签: not found, 最终状态不变
	_, err = svc.RemoveAutoTag(created.ID, "gold")
	assert.ErrorIs(t, err, ErrTagNotFound)

	reloaded, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"precious metals"}, reloaded.AutoTags)
	assert.Equal(t, []string{"gold"}, reloaded.RemovedAutoTags)
}

func TestRemoveAutoTagNeverReappliedOnReprocess(t *testing.T) {
	svc, repo, _ := setupTaggerWithDB(t, goldInflationCSV)

	created, err := repo.Create(
		&models.QuoteCreate{Text: "Gold prices rise amid inflation fears"},
		svc.Generate("Gold prices rise amid inflation fears", nil),
	)
	require.NoError(t, err)

	_, err = svc.RemoveAutoTag(created.ID, "gold")
	require.NoError(t, err)

	// 词典没变, 批量重新打标也不能把移除过的标签加回来
	result, err := svc.ReprocessAll()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	reloaded, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"economy", "inflation", "precious metals"}, reloaded.AutoTags)
	assert.Equal(t, []string{"gold"}, reloaded.RemovedAutoTags)
}

func TestReprocessAllAppliesNewDictionary(t *testing.T) {
	svc, repo, dict := setupTaggerWithDB(t, "keyword,tags\n")

	// 词典为空时创建, 没有自动标签
	created, err := repo.Create(
		&models.QuoteCreate{Text: "gold bar"},
		svc.Generate("gold bar", nil),
	)
	require.NoError(t, err)
	require.Empty(t, created.AutoTags)

	// 补上词典后重新打标
	require.NoError(t, writeCSVTo(t, dict, goldInflationCSV))

	result, err := svc.ReprocessAll()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Succeeded)

	reloaded, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"gold", "precious metals"}, reloaded.AutoTags)
}

// writeCSVTo 覆盖词典对应的 CSV 并重载
func writeCSVTo(t *testing.T, dict *KeywordDictionary, content string) error {
	t.Helper()
	if err := os.WriteFile(dict.csvPath, []byte(content), 0o644); err != nil {
		return err
	}
	_, err := dict.Reload()
	return err
}

func TestStatsIncludesDictionarySize(t *testing.T) {
	svc, repo, _ := setupTaggerWithDB(t, goldInflationCSV)

	_, err := repo.Create(&models.QuoteCreate{Text: "gold bar"}, svc.Generate("gold bar", nil))
	require.NoError(t, err)
	_, err = repo.Create(&models.QuoteCreate{Text: "nothing matches"}, svc.Generate("nothing matches", nil))
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalQuotes)
	assert.Equal(t, 1, stats.QuotesWithAutoTags)
	assert.Equal(t, 50.0, stats.CoveragePercentage)
	assert.Equal(t, 2, stats.TotalKeywordMappings)
}
