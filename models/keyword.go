package models

// KeywordEntry 关键词条目: 一个规范化关键词对应一组规范化标签
// 在 CSV 加载时一次性构造, 不在流水线中携带松散的 map
type KeywordEntry struct {
	Keyword string   `json:"keyword"`
	Tags    []string `json:"tags"` // 非空; 没有标签的关键词在加载时被丢弃
}
