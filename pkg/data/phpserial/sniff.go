// Package phpserial reads and writes the PHP serialize() text format that
// older CMS installs used for stored option and meta values.
//
// Only the data subset is supported: null, booleans, integers, floats,
// strings, arrays and plain objects. Object and array references and custom
// serialized payloads are rejected with ErrUnsupported.
package phpserial

import (
	"regexp"
	"strings"
)

var (
	containerPrefix = regexp.MustCompile(`^[aOE]:[0-9]+:`)
	scalarBody      = regexp.MustCompile(`^[bid]:[0-9.E+-]+;$`)
)

// IsSerialized reports whether text looks like a serialized value. The check
// is structural and strict: it inspects the type token, the closing character
// and the length prefix, but does not decode the payload.
func IsSerialized(text string) bool {
	text = strings.TrimSpace(text)
	if text == "N;" {
		return true
	}
	if len(text) < 4 || text[1] != ':' {
		return false
	}

	last := text[len(text)-1]
	if last != ';' && last != '}' {
		return false
	}
	semicolon := strings.Index(text, ";")
	brace := strings.Index(text, "}")
	if semicolon == -1 && brace == -1 {
		return false
	}
	if semicolon != -1 && semicolon < 3 {
		return false
	}
	if brace != -1 && brace < 4 {
		return false
	}

	switch token := text[0]; token {
	case 's':
		if text[len(text)-2] != '"' {
			return false
		}
		return strings.HasPrefix(text, "s:") && len(text) > 2 && isDigits(prefixNumber(text[2:]))
	case 'a', 'O', 'E':
		return containerPrefix.MatchString(text)
	case 'b', 'i', 'd':
		return scalarBody.MatchString(text)
	default:
		return false
	}
}

func prefixNumber(text string) string {
	end := strings.IndexByte(text, ':')
	if end <= 0 {
		return ""
	}
	return text[:end]
}

func isDigits(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}
