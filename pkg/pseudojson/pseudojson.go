// Package pseudojson decodes the dict-literal strings the recommendation backend
// embeds in restaurant records (good_for_meal, hours).
//
// Those strings use single quotes as string delimiters and may carry the
// literals True, False and None. Normalization is a plain character
// substitution of ' with ". A value that contains an apostrophe ("Joe's")
// is corrupted by that substitution and the whole field fails to parse;
// callers then see an empty mapping. No escaping scheme is attempted.
package pseudojson

import (
	"encoding/json"
	"strings"
)

// Normalize rewrites a single-quoted dict literal into strict JSON text.
func Normalize(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "'", `"`)
	return replaceLiterals(s)
}

// ParseMealAvailability decodes a meal-availability indicator such as
// "{'breakfast': True, 'lunch': False}". A nil or unparseable input yields an
// empty map. Keys with a None value are dropped.
func ParseMealAvailability(raw *string) map[string]bool {
	out := map[string]bool{}
	if raw == nil {
		return out
	}

	var decoded map[string]*bool
	if err := json.Unmarshal([]byte(Normalize(*raw)), &decoded); err != nil {
		return out
	}
	for k, v := range decoded {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

// ParseOperatingHours decodes an hours indicator such as
// "{'Monday': '8:0-17:0'}". A nil or unparseable input yields an empty map.
func ParseOperatingHours(raw *string) map[string]string {
	out := map[string]string{}
	if raw == nil {
		return out
	}

	var decoded map[string]*string
	if err := json.Unmarshal([]byte(Normalize(*raw)), &decoded); err != nil {
		return out
	}
	for k, v := range decoded {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

var pythonLiterals = map[string]string{
	"True":  "true",
	"False": "false",
	"None":  "null",
}

// replaceLiterals swaps Python literals for JSON ones outside of string tokens.
func replaceLiterals(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	for i := 0; i < len(s); {
		c := s[i]
		if inString {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				b.WriteByte(s[i+1])
				i += 2
				continue
			}
			if c == '"' {
				inString = false
			}
			i++
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			i++
			continue
		}

		if isIdentByte(c) {
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			word := s[i:j]
			if repl, ok := pythonLiterals[word]; ok {
				word = repl
			}
			b.WriteString(word)
			i = j
			continue
		}

		b.WriteByte(c)
		i++
	}
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
