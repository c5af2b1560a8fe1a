package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"quote-tagging-service/services"
)

var (
	autoTagService *services.AutoTagService
	keywordDict    *services.KeywordDictionary
)

// SetAutoTagService 设置自动打标服务
func SetAutoTagService(s *services.AutoTagService) {
	autoTagService = s
}

// SetKeywordDictionary 设置关键词词典
func SetKeywordDictionary(d *services.KeywordDictionary) {
	keywordDict = d
}

// HandleReloadKeywords 重载关键词词典, 返回加载的条目数
func HandleReloadKeywords(w http.ResponseWriter, r *http.Request) {
	if keywordDict == nil {
		http.Error(w, "关键词词典未初始化", http.StatusInternalServerError)
		return
	}

	count, err := keywordDict.Reload()
	if err != nil {
		log.Printf("❌ 词典重载失败: %v", err)
		http.Error(w, "重载失败, 仍使用之前的词典", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ 词典重载完成: %d 条", count)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"count": count})
}

// HandleReprocessQuotes 用当前词典批量重新打标全部引语
func HandleReprocessQuotes(w http.ResponseWriter, r *http.Request) {
	if autoTagService == nil {
		http.Error(w, "自动打标服务未初始化", http.StatusInternalServerError)
		return
	}

	result, err := autoTagService.ReprocessAll()
	if err != nil {
		log.Printf("❌ 批量重新打标失败: %v", err)
		http.Error(w, "重新打标失败", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleGetTagStats 获取自动标签统计信息
func HandleGetTagStats(w http.ResponseWriter, r *http.Request) {
	if autoTagService == nil {
		http.Error(w, "自动打标服务未初始化", http.StatusInternalServerError)
		return
	}

	stats, err := autoTagService.Stats()
	if err != nil {
		log.Printf("❌ 获取标签统计失败: %v", err)
		http.Error(w, "获取统计失败", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// HandleRemoveAutoTag 从单条引语移除一个自动标签
// 路径: POST /api/quotes/{id}/remove-auto-tag, 请求体 {"tag": "..."}
func HandleRemoveAutoTag(w http.ResponseWriter, r *http.Request) {
	if autoTagService == nil {
		http.Error(w, "自动打标服务未初始化", http.StatusInternalServerError)
		return
	}

	// 提取ID from /api/quotes/{id}/remove-auto-tag
	path := strings.TrimSuffix(r.URL.Path, "/")
	idStr := strings.TrimSuffix(strings.TrimPrefix(path, "/api/quotes/"), "/remove-auto-tag")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "无效的ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Tag) == "" {
		http.Error(w, "缺少tag参数", http.StatusBadRequest)
		return
	}

	quote, err := autoTagService.RemoveAutoTag(id, req.Tag)
	if err != nil {
		if errors.Is(err, services.ErrTagNotFound) {
			// 前置条件不满足: 标签不在当前自动标签里, 调用方不应重试
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"found": false,
				"error": "标签不在当前自动标签里",
			})
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "引语不存在", http.StatusNotFound)
			return
		}
		log.Printf("❌ 移除自动标签失败: %v", err)
		http.Error(w, "移除失败", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"found": true,
		"quote": quote,
	})
}
