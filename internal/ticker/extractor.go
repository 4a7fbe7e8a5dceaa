package ticker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"NewswireScanner/internal/domain"
)

// exchangeLabels in priority order. The first label found anywhere in the
// text is the only one consulted: a failed bracket window does not fall
// through to later labels.
var exchangeLabels = []string{
	"Nasdaq", "NASDAQ", "NYSE", "OTC", "Symbol", "OTCQB", "OTCPK", "OTCBB",
	"OTC Pink", "OTC.PK", "OTC PINK", "OTCMKTS", "OTCQX", "OTC BB", "OTC Markets",
}

const (
	openBracketWindow  = 34
	closeBracketWindow = 35
	separatorWindow    = 30
	maxSymbolLen       = 5
)

var symbolRunExpr = regexp.MustCompile(`[^;)\s]+`)

// Extract locates an exchange-listing mention like "(Nasdaq: ACME)" in
// article text and returns the ticker symbol. The boolean reports whether a
// symbol was found; "no ticker present" is never an error. The only error is
// ErrInvalidArticleText for input that is not valid UTF-8 text. Pure function
// of its input.
func Extract(body string) (string, bool, error) {
	if !utf8.ValidString(body) {
		return "", false, domain.ErrInvalidArticleText
	}

	for _, label := range exchangeLabels {
		idx := strings.Index(body, label)
		if idx < 0 {
			continue
		}

		before := body[:idx]
		after := body[idx+len(label):]

		if !openBracketBefore(before) {
			return "", false, nil
		}
		if !closeBracketAfter(after) {
			return "", false, nil
		}

		sep := separatorOffset(after)
		if sep < 0 {
			return "", false, nil
		}

		symbol := strings.TrimSpace(after[sep+1:])
		if runes := []rune(symbol); len(runes) > maxSymbolLen {
			symbol = string(runes[:maxSymbolLen])
		}
		symbol = symbolRunExpr.FindString(symbol)

		if !alphabetic(symbol) {
			return "", false, nil
		}
		return symbol, true, nil
	}

	return "", false, nil
}

// openBracketBefore scans backward through the last openBracketWindow runes.
// A ')' before any '(' means the label is not inside an open bracket pair.
// Running off the start of the text is an absent result, not an error.
func openBracketBefore(before string) bool {
	runes := []rune(before)
	limit := len(runes) - openBracketWindow
	if limit < 0 {
		limit = 0
	}

	for i := len(runes) - 1; i >= limit; i-- {
		switch runes[i] {
		case '(':
			return true
		case ')':
			return false
		}
	}
	return false
}

// closeBracketAfter scans forward up to closeBracketWindow runes for the
// nearest bracket; '(' first means the pair never closes in range.
func closeBracketAfter(after string) bool {
	seen := 0
	for _, r := range after {
		if seen >= closeBracketWindow {
			break
		}
		switch r {
		case ')':
			return true
		case '(':
			return false
		}
		seen++
	}
	return false
}

// separatorOffset returns the byte offset of a ':' within the first
// separatorWindow runes, or -1.
func separatorOffset(after string) int {
	seen := 0
	for i, r := range after {
		if seen >= separatorWindow {
			return -1
		}
		if r == ':' {
			return i
		}
		seen++
	}
	return -1
}

func alphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
