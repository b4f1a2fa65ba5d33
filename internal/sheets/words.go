package sheets

import (
	"strings"
	"unicode"
)

// SplitWords breaks a title or identifier into lower-case words. Whitespace, '_' and '-'
// separate words, and so do camelCase boundaries ("labTestPanel", "ICDCode").
func SplitWords(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case unicode.IsSpace(r) || r == '_' || r == '-':
			flush()
			continue
		case unicode.IsUpper(r) && len(current) > 0:
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextIsLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// CamelCase joins words as lowerCamelCase
func CamelCase(words []string) string {
	var b strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(upperFirst(strings.ToLower(w)))
	}
	return b.String()
}

// ToCamel converts any title or identifier to lowerCamelCase
func ToCamel(s string) string {
	return CamelCase(SplitWords(s))
}

// Title renders an identifier as a human worksheet title ("patientFieldDefCategory" becomes
// "Patient Field Def Category").
func Title(identifier string) string {
	words := SplitWords(identifier)
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return strings.Join(words, " ")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
