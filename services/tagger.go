package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"quote-tagging-service/db"
	"quote-tagging-service/models"
	"quote-tagging-service/utils"
)

// ErrTagNotFound 要移除的标签不在引语当前的自动标签里
var ErrTagNotFound = errors.New("自动标签不存在")

// AutoTagService 自动打标服务: 关键词匹配 -> 标签合成 -> 持久化
type AutoTagService struct {
	dict      *KeywordDictionary
	matcher   Matcher
	quoteRepo *db.QuoteRepository
	pool      *ReprocessPool
}

// NewAutoTagService 创建自动打标服务
func NewAutoTagService(dict *KeywordDictionary, matcher Matcher, quoteRepo *db.QuoteRepository, workerCount int) *AutoTagService {
	return &AutoTagService{
		dict:      dict,
		matcher:   matcher,
		quoteRepo: quoteRepo,
		pool:      NewReprocessPool(workerCount),
	}
}

// Generate 为一段文本生成自动标签
//
// 命中关键词的标签做并集, 去掉 removedTags 中用户显式移除过的标签,
// 返回按字典序排列的去重列表。永远不返回 nil, 空列表是正常结果。
// 整个计算只取一次词典快照, 匹配和标签合成看到同一个映射,
// 对固定的快照和相同入参, 结果是确定的, 可以安全地重复调用
func (s *AutoTagService) Generate(text string, removedTags []string) []string {
	result := []string{}
	if text == "" {
		return result
	}

	mappings := s.dict.Get()
	if len(mappings) == 0 {
		return result
	}

	// 从网页粘贴的引语可能带 HTML 标记, 先展平为可见文本再匹配
	if utils.LooksLikeHTML(text) {
		text = utils.ExtractText(text)
	}

	matched := s.matcher.Match(text, mappings)
	if len(matched) == 0 {
		return result
	}

	candidate := map[string]struct{}{}
	for _, keyword := range matched {
		for _, tag := range mappings[keyword] {
			candidate[tag] = struct{}{}
		}
	}

	removed := map[string]struct{}{}
	for _, tag := range removedTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			removed[tag] = struct{}{}
		}
	}

	for tag := range candidate {
		if _, ok := removed[tag]; !ok {
			result = append(result, tag)
		}
	}

	sort.Strings(result)
	return result
}

// RemoveAutoTag 从指定引语移除一个自动标签, 并把它记入 removed_auto_tags,
// 之后重新打标不会再应用这个标签
//
// 标签不在当前自动标签里时返回 ErrTagNotFound(重复移除同一个标签,
// 第二次就会得到这个错误, 最终状态不变)
func (s *AutoTagService) RemoveAutoTag(quoteID int, tag string) (*models.Quote, error) {
	quote, err := s.quoteRepo.GetByID(quoteID)
	if err != nil {
		return nil, fmt.Errorf("获取引语失败: %w", err)
	}

	normalized := strings.ToLower(strings.TrimSpace(tag))

	// 大小写不敏感地定位要移除的标签
	newAutoTags := []string{}
	found := false
	for _, t := range quote.AutoTags {
		if strings.EqualFold(strings.TrimSpace(t), normalized) {
			found = true
			continue
		}
		newAutoTags = append(newAutoTags, t)
	}
	if !found {
		return nil, ErrTagNotFound
	}

	// 记入移除清单(去重)
	newRemoved := quote.RemovedAutoTags
	alreadyRemoved := false
	for _, t := range newRemoved {
		if strings.EqualFold(strings.TrimSpace(t), normalized) {
			alreadyRemoved = true
			break
		}
	}
	if !alreadyRemoved {
		newRemoved = append(newRemoved, normalized)
	}

	if err := s.quoteRepo.UpdateAutoTags(quoteID, newAutoTags, newRemoved); err != nil {
		return nil, err
	}

	log.Printf("🏷️ 已移除自动标签: quote=%d tag=%s", quoteID, normalized)

	quote.AutoTags = newAutoTags
	quote.RemovedAutoTags = newRemoved
	return quote, nil
}

// ReprocessAll 用当前词典为全部引语重新生成自动标签
//
// 逐条处理, 单条失败只计数不中断(部分失败语义); 每条引语沿用自己已有的
// removed_auto_tags, 用户移除过的标签不会被重新应用
func (s *AutoTagService) ReprocessAll() (*models.ReprocessResult, error) {
	quotes, err := s.quoteRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("加载引语失败: %w", err)
	}

	log.Printf("🔄 开始批量重新打标: %d 条引语, 词典 %d 条", len(quotes), s.dict.Size())

	result := s.pool.Run(quotes, func(q *models.Quote) error {
		autoTags := s.Generate(q.Text, q.RemovedAutoTags)
		return s.quoteRepo.UpdateAutoTags(q.ID, autoTags, q.RemovedAutoTags)
	})

	log.Printf("✅ 批量重新打标完成: 成功 %d, 失败 %d", result.Succeeded, result.Failed)
	return &result, nil
}

// Stats 汇总自动标签统计信息
func (s *AutoTagService) Stats() (*models.TagStatistics, error) {
	quotes, err := s.quoteRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("加载引语失败: %w", err)
	}

	stats := SummarizeTags(quotes)
	stats.TotalKeywordMappings = s.dict.Size()
	return stats, nil
}
