package services

import (
	"sort"
	"strings"
)

// Matcher 关键词匹配器
// 匹配针对调用方传入的词典快照进行, 同一次打标里匹配和标签合成
// 看到的是同一个快照, 重载不会让两者错位。
// 当前实现逐个关键词做子串扫描; 词典规模变大后可以换成 trie/Aho-Corasick
// 多模式匹配而不改变这个契约
type Matcher interface {
	// Match 返回在 text 中以整词形式出现(不区分大小写)的快照关键词
	Match(text string, mappings map[string][]string) []string
}

// DictionaryMatcher 整词匹配实现, 无状态
type DictionaryMatcher struct{}

// NewDictionaryMatcher 创建整词匹配器
func NewDictionaryMatcher() *DictionaryMatcher {
	return &DictionaryMatcher{}
}

// Match 扫描文本, 返回命中的关键词(排序后返回, 结果稳定)
func (m *DictionaryMatcher) Match(text string, mappings map[string][]string) []string {
	matched := []string{}
	if text == "" || len(mappings) == 0 {
		return matched
	}

	lower := strings.ToLower(text)
	for keyword := range mappings {
		if containsWholeWord(lower, keyword) {
			matched = append(matched, keyword)
		}
	}

	sort.Strings(matched)
	return matched
}

// containsWholeWord 整词匹配: 命中位置前后紧邻的字节(若存在)不能是 ASCII 字母,
// 标点/数字/字符串边界都算词边界。例如 "gold" 命中 "gold bar" 和 "gold,",
// 但不命中 "golden"。关键词文本永远按字面量处理, 不解释任何模式语法
func containsWholeWord(text, word string) bool {
	if word == "" {
		return false
	}

	for start := 0; ; {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)

		// UTF-8 多字节序列内不会出现 ASCII 字节, 所以按字节判断边界是安全的
		beforeOK := idx == 0 || !isASCIILetter(text[idx-1])
		afterOK := end == len(text) || !isASCIILetter(text[end])
		if beforeOK && afterOK {
			return true
		}

		start = idx + 1
	}
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
