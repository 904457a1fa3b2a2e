package community

import (
	"strings"
	"unicode"
)

const maxSlugLen = 255

// GenerateSlug derives the URL key of a community from its name: lowercased,
// whitespace turned into '-', anything outside [a-z0-9-] dropped and repeated
// '-' collapsed. The result is at most 255 bytes.
func GenerateSlug(name string) string {
	out := make([]byte, 0, len(name))
	push := func(c byte) {
		if c == '-' && len(out) > 0 && out[len(out)-1] == '-' {
			return
		}
		out = append(out, c)
	}
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsSpace(r), r == '-':
			push('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			push(byte(r))
		}
	}
	if len(out) > maxSlugLen {
		out = out[:maxSlugLen]
	}
	return string(out)
}
