package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"quote-tagging-service/models"
)

func TestValidateQuoteCreate(t *testing.T) {
	tests := []struct {
		name         string
		quote        *models.QuoteCreate
		shouldError  bool
		expectedText string
		expectedTags []string
	}{
		{
			name: "Valid quote",
			quote: &models.QuoteCreate{
				Text:   "Gold prices rise",
				Author: "Analyst",
			},
			shouldError:  false,
			expectedText: "Gold prices rise",
		},
		{
			name: "Text is trimmed",
			quote: &models.QuoteCreate{
				Text: "  padded text  ",
			},
			shouldError:  false,
			expectedText: "padded text",
		},
		{
			name: "Empty text",
			quote: &models.QuoteCreate{
				Text: "   ",
			},
			shouldError: true,
		},
		{
			name: "Text too long",
			quote: &models.QuoteCreate{
				Text: strings.Repeat("a", 5001),
			},
			shouldError: true,
		},
		{
			name: "Author too long",
			quote: &models.QuoteCreate{
				Text:   "ok",
				Author: strings.Repeat("a", 201),
			},
			shouldError: true,
		},
		{
			name: "Too many tags",
			quote: &models.QuoteCreate{
				Text:       "ok",
				ManualTags: make([]string, 51),
			},
			shouldError: true,
		},
		{
			name: "Tag too long",
			quote: &models.QuoteCreate{
				Text:       "ok",
				ManualTags: []string{strings.Repeat("a", 101)},
			},
			shouldError: true,
		},
		{
			name: "Tags are trimmed and empties dropped",
			quote: &models.QuoteCreate{
				Text:       "ok",
				ManualTags: []string{" tech ", "", "  ", "经济"},
			},
			shouldError:  false,
			expectedText: "ok",
			expectedTags: []string{"tech", "经济"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuoteCreate(tt.quote)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.expectedText != "" && tt.quote.Text != tt.expectedText {
				t.Errorf("Expected text '%s', but got '%s'", tt.expectedText, tt.quote.Text)
			}
			if tt.expectedTags != nil {
				if len(tt.quote.ManualTags) != len(tt.expectedTags) {
					t.Fatalf("Expected tags %v, but got %v", tt.expectedTags, tt.quote.ManualTags)
				}
				for i := range tt.expectedTags {
					if tt.quote.ManualTags[i] != tt.expectedTags[i] {
						t.Errorf("Expected tags %v, but got %v", tt.expectedTags, tt.quote.ManualTags)
					}
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"Shorter than limit", "gold bar", 80, "gold bar"},
		{"Exactly at limit", "abc", 3, "abc"},
		{"ASCII truncated", "abcdef", 3, "abc..."},
		{"CJK truncated on rune boundary", "黄金价格上涨", 3, "黄金价..."},
		{"Zero limit", "gold", 0, ""},
		{"Empty input", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			// 截断结果必须仍是合法 UTF-8, 不能切半个字符
			if !utf8.ValidString(got) {
				t.Errorf("Truncate(%q, %d) produced invalid UTF-8: %q", tt.in, tt.max, got)
			}
		})
	}
}
