package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"quote-tagging-service/api"
	"quote-tagging-service/config"
	"quote-tagging-service/db"
	"quote-tagging-service/mcp"
	"quote-tagging-service/models"
	"quote-tagging-service/services"
	"quote-tagging-service/utils"

	"github.com/mark3labs/mcp-go/server"
)

var (
	cfg            *config.Config
	quoteRepo      *db.QuoteRepository
	keywordDict    *services.KeywordDictionary
	autoTagService *services.AutoTagService
	rateLimiter    *api.RateLimiter
)

func main() {
	// 1. 加载配置
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("❌ 加载配置失败: %v", err)
	}

	// 验证配置
	if err := cfg.Validate(); err != nil {
		log.Printf("⚠️ 配置验证警告: %v", err)
	}

	log.Printf("✅ 配置加载成功")
	log.Printf("📊 关键词CSV: %s", cfg.KeywordsCSVPath)
	log.Printf("📊 CSV监听: %v", cfg.WatchKeywords)
	log.Printf("📊 限流启用: %v", cfg.RateLimitEnabled)

	// 2. 初始化数据库
	if err := db.Init(cfg.DBPath); err != nil {
		log.Fatalf("❌ 数据库初始化失败: %v", err)
	}
	defer db.Close()

	// 3. 初始化仓库
	quoteRepo = db.NewQuoteRepository()

	// 4. 初始化关键词词典(CSV 缺失不致命, 自动打标降级为不产生标签)
	keywordDict = services.NewKeywordDictionary(cfg.KeywordsCSVPath)
	if _, err := keywordDict.Load(); err != nil {
		log.Printf("⚠️ 启动时词典加载失败, 自动打标暂不可用: %v", err)
	}

	// 5. 初始化打标服务
	matcher := services.NewDictionaryMatcher()
	autoTagService = services.NewAutoTagService(keywordDict, matcher, quoteRepo, cfg.ReprocessWorkerCount)

	// 6. CSV 文件监听(可选)
	if cfg.WatchKeywords {
		watcher, err := services.NewKeywordWatcher(keywordDict, cfg.KeywordsCSVPath)
		if err != nil {
			log.Printf("⚠️ CSV 监听启动失败, 仅支持手动重载: %v", err)
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	// 7. 设置 API 处理器依赖
	api.SetAutoTagService(autoTagService)
	api.SetKeywordDictionary(keywordDict)

	// 8. 初始化限流器
	if cfg.RateLimitEnabled {
		rateLimiter = api.NewRateLimiter(cfg.RateLimitPerIP, cfg.RateLimitBurst)
	}

	// 9. 初始化 MCP 服务器
	mcpSrv := mcp.NewMCPServer(quoteRepo, keywordDict, autoTagService)
	httpServer := server.NewStreamableHTTPServer(mcpSrv.Server())
	log.Printf("✅ MCP 服务器初始化成功")

	// 10. 设置路由
	mux := http.NewServeMux()

	// MCP HTTP 端点 - 使用 StreamableHTTPServer
	mux.Handle("/mcp/", http.StripPrefix("/mcp", httpServer))

	// 健康检查端点(不需要认证)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// 系统状态端点
	mux.HandleFunc("/api/system/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		dbStatus := "connected"
		quoteCount, err := quoteRepo.Count()
		if err != nil {
			dbStatus = "error"
		}

		status := map[string]interface{}{
			"status":           "ok",
			"database":         dbStatus,
			"quotes_count":     quoteCount,
			"keyword_mappings": keywordDict.Size(),
		}

		json.NewEncoder(w).Encode(status)
	})

	// 管理端点: 词典重载
	mux.HandleFunc("/api/keywords/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			api.HandleReloadKeywords(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// 管理端点: 标签统计
	mux.HandleFunc("/api/tags/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" {
			api.HandleGetTagStats(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// 引语 API
	mux.HandleFunc("/api/quotes", handleQuotes)
	mux.HandleFunc("/api/quotes/", func(w http.ResponseWriter, r *http.Request) {
		// /api/quotes/ without ID should list all quotes
		if r.URL.Path == "/api/quotes/" {
			handleQuotes(w, r)
			return
		}

		// 管理端点: 批量重新打标
		if r.URL.Path == "/api/quotes/reprocess" || r.URL.Path == "/api/quotes/reprocess/" {
			if r.Method == "POST" {
				api.HandleReprocessQuotes(w, r)
			} else {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// 管理端点: /api/quotes/{id}/remove-auto-tag
		if strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/remove-auto-tag") {
			if r.Method == "POST" {
				api.HandleRemoveAutoTag(w, r)
			} else {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// /api/quotes/{id}
		handleQuoteByID(w, r)
	})

	// 11. 应用中间件
	handler := api.LoggingMiddleware(mux)
	handler = api.AuthMiddleware(func() string { return cfg.APIToken })(handler)
	handler = api.RateLimitMiddleware(rateLimiter)(handler)
	handler = api.CORSMiddleware(handler) // CORS 必须在最外层
	handler = api.RecoveryMiddleware(handler)

	// 12. 启动服务器
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 服务器启动: http://localhost:%s", port)
	log.Printf("📚 REST API: http://localhost:%s/api/quotes", port)
	log.Printf("🔗 MCP 端点: http://localhost:%s/mcp", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("❌ 服务器启动失败: %v", err)
	}
}

// handleQuotes 处理引语列表和创建
func handleQuotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		listQuotes(w, r)
	case "POST":
		createQuote(w, r)
	default:
		http.Error(w, "方法不允许", http.StatusMethodNotAllowed)
	}
}

// listQuotes 分页获取引语列表
func listQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	offset, _ := strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	quotes, err := quoteRepo.List(limit, offset)
	if err != nil {
		log.Printf("❌ 查询引语失败: %v", err)
		http.Error(w, "查询失败", http.StatusInternalServerError)
		return
	}

	count, _ := quoteRepo.Count()

	response := map[string]interface{}{
		"count":   count,
		"results": quotes,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// createQuote 创建引语, 保存前先生成自动标签
func createQuote(w http.ResponseWriter, r *http.Request) {
	var qc models.QuoteCreate
	if err := json.NewDecoder(r.Body).Decode(&qc); err != nil {
		http.Error(w, "无效的JSON数据", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateQuoteCreate(&qc); err != nil {
		log.Printf("⚠️ 验证失败: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 新引语没有移除清单, removed 为空
	autoTags := autoTagService.Generate(qc.Text, nil)
	log.Printf("🏷️ 自动标签 %v <- %s", autoTags, utils.Truncate(qc.Text, 80))

	created, err := quoteRepo.Create(&qc, autoTags)
	if err != nil {
		log.Printf("❌ 创建引语失败: %v", err)
		http.Error(w, "创建失败", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// handleQuoteByID 处理单条引语操作
func handleQuoteByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimSuffix(r.URL.Path[len("/api/quotes/"):], "/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "无效的ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case "GET":
		getQuote(w, r, id)
	case "PATCH", "PUT":
		updateQuote(w, r, id)
	case "DELETE":
		deleteQuote(w, r, id)
	default:
		http.Error(w, "方法不允许", http.StatusMethodNotAllowed)
	}
}

// getQuote 获取单条引语
func getQuote(w http.ResponseWriter, r *http.Request, id int) {
	quote, err := quoteRepo.GetByID(id)
	if err != nil {
		http.Error(w, "引语不存在", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quote)
}

// updateQuote 更新引语; 自动标签按新文本重新生成, 沿用已有的移除清单
func updateQuote(w http.ResponseWriter, r *http.Request, id int) {
	existing, err := quoteRepo.GetByID(id)
	if err != nil {
		http.Error(w, "引语不存在", http.StatusNotFound)
		return
	}

	var qc models.QuoteCreate
	if err := json.NewDecoder(r.Body).Decode(&qc); err != nil {
		http.Error(w, "无效的请求数据", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateQuoteCreate(&qc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 用户移除过的标签即使文本变了也不会被重新应用
	autoTags := autoTagService.Generate(qc.Text, existing.RemovedAutoTags)

	updated, err := quoteRepo.Update(id, &qc, autoTags)
	if err != nil {
		log.Printf("❌ 更新引语失败: %v", err)
		http.Error(w, "更新失败", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// deleteQuote 删除引语
func deleteQuote(w http.ResponseWriter, r *http.Request, id int) {
	if err := quoteRepo.Delete(id); err != nil {
		log.Printf("❌ 删除引语失败: %v", err)
		http.Error(w, "删除失败", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
