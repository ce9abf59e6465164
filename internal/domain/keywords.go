package domain

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

const (
	minKeywordLen = 3
	maxKeywordLen = 19
)

func isKeywordSeparator(r rune) bool {
	switch r {
	case '-', '_', '|', '/', ',', '·':
		return true
	}
	return unicode.IsSpace(r)
}

// TitleKeywords tokenizes a bookmark title into the lower-cased, de-duplicated
// keyword set used for keyword statistics. Tokens outside [3, 19] runes are
// dropped; order of first appearance is preserved.
func TitleKeywords(title string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(title), isKeywordSeparator)
	seen := make(map[string]bool, len(tokens))
	var keywords []string
	for _, tok := range tokens {
		n := utf8.RuneCountInString(tok)
		if n < minKeywordLen || n > maxKeywordLen || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}

// RegistrableDomain extracts the eTLD+1 of a bookmark URL, e.g.
// "https://docs.github.com/x" → "github.com". Hosts the public suffix list
// cannot split (localhost, bare IPs) fall back to the full host.
func RegistrableDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("url has no host: %q", rawURL)
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host, nil
	}
	return domain, nil
}
