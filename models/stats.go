package models

// TagCount 标签及其出现次数
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagStatistics 自动标签统计信息(管理后台可见)
type TagStatistics struct {
	TotalQuotes          int            `json:"total_quotes"`
	QuotesWithAutoTags   int            `json:"quotes_with_auto_tags"`
	CoveragePercentage   float64        `json:"coverage_percentage"` // 保留一位小数
	TagFrequency         map[string]int `json:"tag_frequency"`
	TopTags              []TagCount     `json:"top_tags"` // 按次数降序, 同次数按名称升序, 最多20个
	TotalUniqueAutoTags  int            `json:"total_unique_auto_tags"`
	TotalKeywordMappings int            `json:"total_keyword_mappings"`
}

// ReprocessResult 批量重新打标结果
type ReprocessResult struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
