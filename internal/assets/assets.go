package assets

import "strings"

// Asset is one tracked base asset with the keywords that identify it in text.
type Asset struct {
	Symbol     string
	Name       string
	KoreanName string
	Aliases    []string
}

// tracked is the fixed asset universe. Order matters: market enrichment
// attaches the first matching asset's snapshot.
var tracked = []Asset{
	{Symbol: "BTC", Name: "bitcoin", KoreanName: "비트코인", Aliases: []string{"btc"}},
	{Symbol: "ETH", Name: "ethereum", KoreanName: "이더리움", Aliases: []string{"eth"}},
	{Symbol: "XRP", Name: "ripple", KoreanName: "리플", Aliases: []string{"xrp"}},
	{Symbol: "SOL", Name: "solana", KoreanName: "솔라나", Aliases: []string{"sol"}},
	{Symbol: "DOGE", Name: "dogecoin", KoreanName: "도지코인", Aliases: []string{"doge"}},
}

// Tracked returns the asset universe in table order.
func Tracked() []Asset {
	out := make([]Asset, len(tracked))
	copy(out, tracked)
	return out
}

// Pairs returns the upstream trading pairs for the tracked universe.
func Pairs() []string {
	pairs := make([]string, 0, len(tracked))
	for _, a := range tracked {
		pairs = append(pairs, a.Symbol+"-USDT")
	}
	return pairs
}

func (a Asset) keywords() []string {
	kws := append([]string{a.Name, a.KoreanName}, a.Aliases...)
	return kws
}

func (a Asset) mentionedIn(text string) bool {
	for _, kw := range a.keywords() {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Relevant reports whether the text mentions at least one tracked asset.
func Relevant(text string) bool {
	lowered := strings.ToLower(text)
	for _, a := range tracked {
		if a.mentionedIn(lowered) {
			return true
		}
	}
	return false
}

// MatchSymbols returns the symbols of every tracked asset mentioned in the
// text, in table order.
func MatchSymbols(text string) []string {
	lowered := strings.ToLower(text)
	var symbols []string
	for _, a := range tracked {
		if a.mentionedIn(lowered) {
			symbols = append(symbols, a.Symbol)
		}
	}
	return symbols
}
