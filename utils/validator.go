package utils

import (
	"fmt"
	"strings"

	"quote-tagging-service/models"
)

// ValidateQuoteCreate 验证引语创建/更新请求
func ValidateQuoteCreate(qc *models.QuoteCreate) error {
	// 验证正文
	qc.Text = strings.TrimSpace(qc.Text)
	if qc.Text == "" {
		return fmt.Errorf("引语内容不能为空")
	}
	if len(qc.Text) > 5000 {
		return fmt.Errorf("引语过长（最多5000字符）")
	}

	// 验证作者
	qc.Author = strings.TrimSpace(qc.Author)
	if len(qc.Author) > 200 {
		return fmt.Errorf("作者名过长（最多200字符）")
	}

	// 验证手动标签
	if len(qc.ManualTags) > 50 {
		return fmt.Errorf("标签过多（最多50个）")
	}

	cleaned := qc.ManualTags[:0]
	for _, tag := range qc.ManualTags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > 100 {
			return fmt.Errorf("标签名过长: %s（最多100字符）", tag)
		}
		cleaned = append(cleaned, tag)
	}
	qc.ManualTags = cleaned

	return nil
}

// Truncate 截断到最多 max 个字符(按 rune 计数), 超长时加省略号
// 日志里展示中文等多字节文本时不会把一个字符截成半个
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
