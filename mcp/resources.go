package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerResources registers all MCP resources
func (s *MCPServer) registerResources() {
	// Resource 1: Tag statistics
	statsResource := mcp.NewResource("quotes://tags/stats",
		"自动标签统计",
		mcp.WithMIMEType("text/markdown"),
		mcp.WithResourceDescription("自动标签覆盖率和使用频率"),
	)
	s.mcpServer.AddResource(statsResource, s.handleStatsResource)

	// Resource 2: Keyword dictionary
	dictResource := mcp.NewResource("keywords://dictionary",
		"关键词词典",
		mcp.WithMIMEType("text/markdown"),
		mcp.WithResourceDescription("当前加载的 keyword -> tags 映射"),
	)
	s.mcpServer.AddResource(dictResource, s.handleDictionaryResource)
}

func (s *MCPServer) handleStatsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := s.autoTagService.Stats()
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "quotes://tags/stats",
			MIMEType: "text/markdown",
			Text:     formatStats(stats),
		},
	}, nil
}

func (s *MCPServer) handleDictionaryResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries := s.keywordDict.Entries()

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "keywords://dictionary",
			MIMEType: "text/markdown",
			Text:     formatDictionary(entries),
		},
	}, nil
}
