package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"quote-tagging-service/models"
)

// KeywordDictionary 关键词词典: keyword -> tags 的进程内缓存
// 加载/重载整体替换快照(原子指针交换), 并发读取永远看到完整一致的映射
type KeywordDictionary struct {
	csvPath  string
	mu       sync.Mutex // 序列化加载, 避免并发重载互相覆盖
	snapshot atomic.Pointer[map[string][]string]
}

// NewKeywordDictionary 创建词典(不立即加载)
func NewKeywordDictionary(csvPath string) *KeywordDictionary {
	return &KeywordDictionary{csvPath: csvPath}
}

// Load 从 CSV 加载关键词映射, 返回加载的条目数
//
// CSV 格式(带表头):
//
//	keyword,tags
//	gold,"gold, precious metals"
//	inflation,"inflation, economy"
//
// 关键词和标签统一 trim + 小写; 缺少关键词或标签的行直接跳过;
// 重复关键词后一行覆盖前一行(明确策略: 覆盖而非合并)。
// 文件缺失或不可读时保留上一次成功加载的快照(首次加载则保持为空),
// 自动打标降级为不产生标签, 不影响调用方
func (d *KeywordDictionary) Load() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.Open(d.csvPath)
	if err != nil {
		log.Printf("⚠️ 关键词 CSV 无法读取: %s, 错误: %v", d.csvPath, err)
		log.Printf("⚠️ 自动打标将不产生新标签, 请检查 KEYWORDS_CSV_PATH")
		return 0, fmt.Errorf("读取关键词 CSV 失败: %w", err)
	}
	defer f.Close()

	mappings, err := parseKeywordCSV(f)
	if err != nil {
		log.Printf("⚠️ 关键词 CSV 解析失败: %s, 错误: %v", d.csvPath, err)
		return 0, fmt.Errorf("解析关键词 CSV 失败: %w", err)
	}

	d.snapshot.Store(&mappings)
	log.Printf("✅ 已加载 %d 个关键词映射: %s", len(mappings), d.csvPath)
	return len(mappings), nil
}

// Reload 重载词典(运行时更新 CSV 后无需重启进程)
func (d *KeywordDictionary) Reload() (int, error) {
	return d.Load()
}

// Get 获取当前关键词映射; 从未加载过时先惰性加载一次
// 返回的 map 是只读快照, 调用方不得修改
func (d *KeywordDictionary) Get() map[string][]string {
	if p := d.snapshot.Load(); p != nil {
		return *p
	}

	// 惰性加载; 失败时缓存一个空快照, 避免每次访问都重试打日志
	if _, err := d.Load(); err != nil {
		empty := map[string][]string{}
		d.snapshot.CompareAndSwap(nil, &empty)
	}

	if p := d.snapshot.Load(); p != nil {
		return *p
	}
	return map[string][]string{}
}

// Size 当前词典条目数
func (d *KeywordDictionary) Size() int {
	return len(d.Get())
}

// Entries 按关键词排序导出全部条目(管理界面展示用)
func (d *KeywordDictionary) Entries() []models.KeywordEntry {
	mappings := d.Get()

	entries := make([]models.KeywordEntry, 0, len(mappings))
	for keyword, tags := range mappings {
		entries = append(entries, models.KeywordEntry{Keyword: keyword, Tags: tags})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Keyword < entries[j].Keyword
	})
	return entries
}

// parseKeywordCSV 解析两列表格: keyword, 逗号分隔的 tags
func parseKeywordCSV(r io.Reader) (map[string][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 列数宽松处理, 坏行单独跳过

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return map[string][]string{}, nil
		}
		return nil, err
	}

	// 按表头定位列, 找不到时退回默认列序 keyword,tags
	keywordCol, tagsCol := 0, 1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "keyword":
			keywordCol = i
		case "tags":
			tagsCol = i
		}
	}

	mappings := map[string][]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 坏行跳过, 不算错误
			continue
		}
		if keywordCol >= len(record) || tagsCol >= len(record) {
			continue
		}

		keyword := strings.ToLower(strings.TrimSpace(record[keywordCol]))
		tags := splitTags(record[tagsCol])
		if keyword == "" || len(tags) == 0 {
			continue
		}

		// 重复关键词: 后一行覆盖
		mappings[keyword] = tags
	}

	return mappings, nil
}

// splitTags 拆分逗号分隔的标签串并规范化
func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.ToLower(strings.TrimSpace(p))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
