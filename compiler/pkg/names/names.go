// Package names converts definition identifiers into Go identifiers and
// file names.
package names

import (
	"strings"
	"unicode"
)

// KnownAcronyms are common abbreviations that should stay uppercase
var KnownAcronyms = map[string]string{
	"id": "ID", "api": "API", "url": "URL", "uri": "URI",
	"json": "JSON", "rpc": "RPC", "io": "IO", "ip": "IP",
	"xcm": "XCM", "evm": "EVM", "nft": "NFT", "utf8": "UTF8",
}

// Words splits an identifier written in snake, kebab, camel or Pascal case.
func Words(name string) []string {
	runes := []rune(name)
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for i, r := range runes {
		if r == '_' || r == '.' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// "badOrigin" -> bad Origin, "URLPath" -> URL Path
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush()
			}
		}
		current.WriteRune(r)
	}
	flush()
	return words
}

// ExportName converts a definition name to an exported Go identifier
// (PascalCase with acronym normalization).
func ExportName(name string) string {
	words := Words(name)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, "")
}

// UnexportName converts a definition name to an unexported Go identifier.
func UnexportName(name string) string {
	words := Words(name)
	if len(words) == 0 {
		return ""
	}
	words[0] = strings.ToLower(words[0])
	for i := 1; i < len(words); i++ {
		words[i] = titleWord(words[i])
	}
	return strings.Join(words, "")
}

// ToSnakeCase converts a name to snake_case, keeping acronyms together:
// "InsufficientBalance" -> "insufficient_balance", "XCMError" -> "xcm_error".
func ToSnakeCase(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

func titleWord(w string) string {
	lower := strings.ToLower(w)
	if acronym, ok := KnownAcronyms[lower]; ok {
		return acronym
	}
	r := []rune(lower)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
