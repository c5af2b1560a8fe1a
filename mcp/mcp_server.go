package mcp

import (
	"fmt"
	"strings"

	"quote-tagging-service/db"
	"quote-tagging-service/models"
	"quote-tagging-service/services"

	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server with quote tagging services
type MCPServer struct {
	quoteRepo      *db.QuoteRepository
	keywordDict    *services.KeywordDictionary
	autoTagService *services.AutoTagService
	mcpServer      *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(
	quoteRepo *db.QuoteRepository,
	keywordDict *services.KeywordDictionary,
	autoTagService *services.AutoTagService,
) *MCPServer {
	s := &MCPServer{
		quoteRepo:      quoteRepo,
		keywordDict:    keywordDict,
		autoTagService: autoTagService,
	}

	s.mcpServer = server.NewMCPServer(
		"quote-tagging-service",
		"1.0.0",
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	// Register tools and resources
	s.registerTools()
	s.registerResources()

	return s
}

// Server returns the underlying MCP server
func (s *MCPServer) Server() *server.MCPServer {
	return s.mcpServer
}

// formatQuotes formats quotes as markdown
func formatQuotes(quotes []*models.Quote, title string) string {
	if len(quotes) == 0 {
		return fmt.Sprintf("# %s\n\n没有找到引语。", title)
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("# %s\n\n", title))
	result.WriteString(fmt.Sprintf("共 %d 条引语\n", len(quotes)))

	for _, quote := range quotes {
		result.WriteString(fmt.Sprintf("\n## #%d\n", quote.ID))
		result.WriteString(fmt.Sprintf("> %s\n\n", quote.Text))

		if quote.Author != "" {
			result.WriteString(fmt.Sprintf("- **作者**: %s\n", quote.Author))
		}
		if len(quote.ManualTags) > 0 {
			result.WriteString(fmt.Sprintf("- **手动标签**: %s\n", strings.Join(quote.ManualTags, ", ")))
		}
		if len(quote.AutoTags) > 0 {
			result.WriteString(fmt.Sprintf("- **自动标签**: %s\n", strings.Join(quote.AutoTags, ", ")))
		}
	}

	return result.String()
}

// formatStats formats tag statistics as markdown
func formatStats(stats *models.TagStatistics) string {
	var result strings.Builder
	result.WriteString("# 自动标签统计\n\n")
	result.WriteString(fmt.Sprintf("- **引语总数**: %d\n", stats.TotalQuotes))
	result.WriteString(fmt.Sprintf("- **带自动标签的引语**: %d\n", stats.QuotesWithAutoTags))
	result.WriteString(fmt.Sprintf("- **覆盖率**: %.1f%%\n", stats.CoveragePercentage))
	result.WriteString(fmt.Sprintf("- **自动标签种类**: %d\n", stats.TotalUniqueAutoTags))
	result.WriteString(fmt.Sprintf("- **关键词映射数**: %d\n", stats.TotalKeywordMappings))

	if len(stats.TopTags) > 0 {
		result.WriteString("\n## 热门标签\n\n")
		for _, tc := range stats.TopTags {
			result.WriteString(fmt.Sprintf("- %s: %d\n", tc.Tag, tc.Count))
		}
	}

	return result.String()
}

// formatDictionary formats keyword entries as markdown
func formatDictionary(entries []models.KeywordEntry) string {
	if len(entries) == 0 {
		return "# 关键词词典\n\n词典为空。"
	}

	var result strings.Builder
	result.WriteString("# 关键词词典\n\n")
	result.WriteString(fmt.Sprintf("共 %d 个关键词\n\n", len(entries)))

	for _, entry := range entries {
		result.WriteString(fmt.Sprintf("- **%s** → %s\n", entry.Keyword, strings.Join(entry.Tags, ", ")))
	}

	return result.String()
}
