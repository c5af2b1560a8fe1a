package services

import (
	"math"
	"sort"
	"strings"

	"quote-tagging-service/models"
)

// topTagsLimit 统计里最多展示的标签数
const topTagsLimit = 20

// SummarizeTags 汇总一批引语的自动标签使用情况
//
// 纯计算, 不修改入参。空集合返回全零统计(覆盖率 0, top_tags 为空)
func SummarizeTags(quotes []*models.Quote) *models.TagStatistics {
	stats := &models.TagStatistics{
		TotalQuotes:  len(quotes),
		TagFrequency: map[string]int{},
		TopTags:      []models.TagCount{},
	}

	for _, q := range quotes {
		if len(q.AutoTags) == 0 {
			continue
		}
		stats.QuotesWithAutoTags++
		for _, tag := range q.AutoTags {
			stats.TagFrequency[strings.ToLower(tag)]++
		}
	}

	if stats.TotalQuotes > 0 {
		coverage := float64(stats.QuotesWithAutoTags) / float64(stats.TotalQuotes) * 100
		// 保留一位小数
		stats.CoveragePercentage = math.Round(coverage*10) / 10
	}

	stats.TotalUniqueAutoTags = len(stats.TagFrequency)

	for tag, count := range stats.TagFrequency {
		stats.TopTags = append(stats.TopTags, models.TagCount{Tag: tag, Count: count})
	}
	// 次数降序, 同次数按标签名升序
	sort.Slice(stats.TopTags, func(i, j int) bool {
		if stats.TopTags[i].Count != stats.TopTags[j].Count {
			return stats.TopTags[i].Count > stats.TopTags[j].Count
		}
		return stats.TopTags[i].Tag < stats.TopTags[j].Tag
	})
	if len(stats.TopTags) > topTagsLimit {
		stats.TopTags = stats.TopTags[:topTagsLimit]
	}

	return stats
}
