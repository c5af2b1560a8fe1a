package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"quote-tagging-service/models"
)

// QuoteRepository 引语数据库操作
type QuoteRepository struct {
	db *sql.DB
}

// NewQuoteRepository 创建引语仓库
func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{db: DB}
}

// Create 创建引语; autoTags 由标签引擎在保存前计算好
func (r *QuoteRepository) Create(qc *models.QuoteCreate, autoTags []string) (*models.Quote, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	result, err := r.db.Exec(
		"INSERT INTO quotes (text, author, manual_tags, auto_tags, removed_auto_tags, date_added, date_modified) VALUES (?, ?, ?, ?, ?, ?, ?)",
		qc.Text, qc.Author, marshalTags(qc.ManualTags), marshalTags(autoTags), "[]", now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("插入引语失败: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("获取插入ID失败: %w", err)
	}

	return r.GetByID(int(id))
}

// GetByID 根据 ID 获取引语
func (r *QuoteRepository) GetByID(id int) (*models.Quote, error) {
	row := r.db.QueryRow(
		"SELECT id, text, author, manual_tags, auto_tags, removed_auto_tags, date_added, date_modified FROM quotes WHERE id = ?",
		id,
	)
	return scanQuote(row)
}

// List 分页获取引语列表
func (r *QuoteRepository) List(limit, offset int) ([]*models.Quote, error) {
	rows, err := r.db.Query(
		"SELECT id, text, author, manual_tags, auto_tags, removed_auto_tags, date_added, date_modified FROM quotes ORDER BY date_added DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("查询引语列表失败: %w", err)
	}
	defer rows.Close()

	return collectQuotes(rows), nil
}

// ListAll 获取全部引语(批量重新打标和统计使用)
func (r *QuoteRepository) ListAll() ([]*models.Quote, error) {
	rows, err := r.db.Query(
		"SELECT id, text, author, manual_tags, auto_tags, removed_auto_tags, date_added, date_modified FROM quotes ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("查询全部引语失败: %w", err)
	}
	defer rows.Close()

	return collectQuotes(rows), nil
}

// Count 统计引语总数
func (r *QuoteRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM quotes").Scan(&count); err != nil {
		return 0, fmt.Errorf("统计引语数量失败: %w", err)
	}
	return count, nil
}

// Update 更新引语内容和手动标签; removed_auto_tags 保持不变
func (r *QuoteRepository) Update(id int, qc *models.QuoteCreate, autoTags []string) (*models.Quote, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := r.db.Exec(
		"UPDATE quotes SET text=?, author=?, manual_tags=?, auto_tags=?, date_modified=? WHERE id=?",
		qc.Text, qc.Author, marshalTags(qc.ManualTags), marshalTags(autoTags), now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("更新引语失败: %w", err)
	}

	return r.GetByID(id)
}

// UpdateAutoTags 覆盖写入自动标签和移除清单(移除单个自动标签、批量重新打标使用)
func (r *QuoteRepository) UpdateAutoTags(id int, autoTags, removedAutoTags []string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := r.db.Exec(
		"UPDATE quotes SET auto_tags=?, removed_auto_tags=?, date_modified=? WHERE id=?",
		marshalTags(autoTags), marshalTags(removedAutoTags), now, id,
	)
	if err != nil {
		return fmt.Errorf("更新自动标签失败: %w", err)
	}
	return nil
}

// Delete 删除引语
func (r *QuoteRepository) Delete(id int) error {
	_, err := r.db.Exec("DELETE FROM quotes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("删除引语失败: %w", err)
	}
	return nil
}

// scanner 兼容 *sql.Row 和 *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanQuote 扫描一行引语记录
func scanQuote(row scanner) (*models.Quote, error) {
	var q models.Quote
	var manualJSON, autoJSON, removedJSON string
	var dateAdded, dateModified string

	err := row.Scan(&q.ID, &q.Text, &q.Author, &manualJSON, &autoJSON, &removedJSON, &dateAdded, &dateModified)
	if err != nil {
		return nil, err
	}

	q.ManualTags = unmarshalTags(manualJSON)
	q.AutoTags = unmarshalTags(autoJSON)
	q.RemovedAutoTags = unmarshalTags(removedJSON)
	q.DateAdded, _ = time.Parse(time.RFC3339Nano, dateAdded)
	q.DateModified, _ = time.Parse(time.RFC3339Nano, dateModified)

	return &q, nil
}

// collectQuotes 收集查询结果, 单行扫描失败跳过不中断
func collectQuotes(rows *sql.Rows) []*models.Quote {
	quotes := []*models.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			log.Printf("❌ Scan错误: %v", err)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

// marshalTags 标签列表序列化为 JSON; nil 统一存为空数组
func marshalTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// unmarshalTags JSON 反序列化为标签列表; 脏数据按空列表处理
func unmarshalTags(data string) []string {
	tags := []string{}
	if data == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}
