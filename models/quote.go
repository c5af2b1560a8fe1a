package models

import "time"

// Quote 引语数据模型
type Quote struct {
	ID              int       `json:"id"`
	Text            string    `json:"text"`
	Author          string    `json:"author"`
	ManualTags      []string  `json:"manual_tags"`       // 用户手动选择的标签
	AutoTags        []string  `json:"auto_tags"`         // 关键词引擎生成的标签(每次生成整体覆盖)
	RemovedAutoTags []string  `json:"removed_auto_tags"` // 用户显式移除的自动标签(不会被重新应用)
	DateAdded       time.Time `json:"date_added"`
	DateModified    time.Time `json:"date_modified"`
}

// QuoteCreate 创建/更新引语请求
type QuoteCreate struct {
	Text       string   `json:"text"`
	Author     string   `json:"author"`
	ManualTags []string `json:"manual_tags"`
}
