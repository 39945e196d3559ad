package assets

import "strings"

// Bilingual keyword lists driving sentiment, impact, and category tagging.
// Sources are a mix of English and Korean outlets, so both languages appear.

var positiveKeywords = []string{
	"surge", "rally", "soar", "gain", "rise", "bullish", "adoption",
	"approval", "partnership", "breakthrough", "record high",
	"상승", "급등", "호재", "채택", "승인", "돌파",
}

var negativeKeywords = []string{
	"crash", "plunge", "drop", "fall", "bearish", "hack", "ban",
	"lawsuit", "fraud", "selloff", "record low",
	"하락", "급락", "악재", "해킹", "금지", "소송",
}

var highImpactKeywords = []string{
	"regulation", "sec", "etf", "ban", "hack", "approval",
	"breakthrough", "halving", "lawsuit",
	"규제", "해킹", "승인", "금지", "반감기",
}

// categoryTable is ordered: the first matching category wins.
var categoryTable = []struct {
	name     string
	keywords []string
}{
	{"market", []string{"price", "market", "trading", "etf", "rally", "crash", "시세", "가격", "거래"}},
	{"technical", []string{"upgrade", "protocol", "network", "mainnet", "fork", "업그레이드", "개발", "네트워크"}},
	{"regulatory", []string{"regulation", "sec", "law", "government", "ban", "규제", "정부", "법"}},
	{"industry", []string{"partnership", "exchange", "adoption", "company", "기업", "파트너십", "거래소"}},
}

// DefaultCategory is used when no category keyword matches.
const DefaultCategory = "other"

func countMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		count += strings.Count(text, kw)
	}
	return count
}

// SentimentCounts returns the number of positive and negative keyword
// occurrences in the text.
func SentimentCounts(text string) (positive, negative int) {
	lowered := strings.ToLower(text)
	return countMatches(lowered, positiveKeywords), countMatches(lowered, negativeKeywords)
}

// HasHighImpactKeyword reports whether any regulatory/hack/breakthrough term
// appears in the text.
func HasHighImpactKeyword(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range highImpactKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Categorize returns the first matching category for the text, or
// DefaultCategory if none match.
func Categorize(text string) string {
	lowered := strings.ToLower(text)
	for _, cat := range categoryTable {
		for _, kw := range cat.keywords {
			if strings.Contains(lowered, kw) {
				return cat.name
			}
		}
	}
	return DefaultCategory
}
