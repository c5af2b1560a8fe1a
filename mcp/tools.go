package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers all MCP tools
func (s *MCPServer) registerTools() {
	// Tool 1: Preview auto tags
	previewTool := mcp.NewTool("preview_auto_tags",
		mcp.WithDescription("预览一段文本会生成哪些自动标签,不写入任何数据"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("要分析的引语文本"),
		),
		mcp.WithString("removed_tags",
			mcp.Description("逗号分隔的已移除标签,这些标签不会出现在结果里"),
		),
	)
	s.mcpServer.AddTool(previewTool, s.handlePreviewAutoTags)

	// Tool 2: Get tag statistics
	statsTool := mcp.NewTool("get_tag_stats",
		mcp.WithDescription("获取自动标签的覆盖率和使用频率统计"),
	)
	s.mcpServer.AddTool(statsTool, s.handleGetTagStats)

	// Tool 3: Reload keyword dictionary
	reloadTool := mcp.NewTool("reload_keywords",
		mcp.WithDescription("从 CSV 重载关键词词典,返回加载的条目数"),
	)
	s.mcpServer.AddTool(reloadTool, s.handleReloadKeywords)

	// Tool 4: Get quotes by tag
	byTagTool := mcp.NewTool("get_quotes_by_tag",
		mcp.WithDescription("获取带有特定标签(手动或自动)的所有引语"),
		mcp.WithString("tag",
			mcp.Required(),
			mcp.Description("标签名称"),
		),
	)
	s.mcpServer.AddTool(byTagTool, s.handleGetQuotesByTag)
}

func (s *MCPServer) handlePreviewAutoTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("text parameter required"), nil
	}

	var removed []string
	if raw := request.GetString("removed_tags", ""); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				removed = append(removed, p)
			}
		}
	}

	tags := s.autoTagService.Generate(text, removed)
	if len(tags) == 0 {
		return mcp.NewToolResultText("没有命中任何关键词, 不会生成自动标签。"), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("将生成 %d 个自动标签: %s", len(tags), strings.Join(tags, ", "))), nil
}

func (s *MCPServer) handleGetTagStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.autoTagService.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get tag stats: %v", err)), nil
	}

	return mcp.NewToolResultText(formatStats(stats)), nil
}

func (s *MCPServer) handleReloadKeywords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := s.keywordDict.Reload()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to reload keywords: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("词典重载完成, 共 %d 个关键词映射。", count)), nil
}

func (s *MCPServer) handleGetQuotesByTag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := request.GetString("tag", "")
	if tag == "" {
		return mcp.NewToolResultError("tag parameter required"), nil
	}

	quotes, err := s.quoteRepo.ListAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list quotes: %v", err)), nil
	}

	matched := quotes[:0:0]
	for _, q := range quotes {
		if hasTag(q.ManualTags, tag) || hasTag(q.AutoTags, tag) {
			matched = append(matched, q)
		}
	}

	return mcp.NewToolResultText(formatQuotes(matched, fmt.Sprintf("标签: %s", tag))), nil
}

// hasTag 大小写不敏感的标签查找
func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
