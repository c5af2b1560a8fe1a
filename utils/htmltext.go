package utils

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// htmlTagPattern 粗略判断文本里是否出现 HTML 标签
var htmlTagPattern = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

// LooksLikeHTML 判断文本是否疑似带 HTML 标记
// 只做标签形状的粗判, "1 < 2" 这类普通文本不会误判
func LooksLikeHTML(text string) bool {
	return htmlTagPattern.MatchString(text)
}

// ExtractText 把 HTML 展平为可见纯文本
// 从网页粘贴的内容常带标记, 打标前先取出可见文本; script/style 内容丢弃。
// 解析失败时原样返回
func ExtractText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// 折叠空白
	return strings.Join(strings.Fields(b.String()), " ")
}
