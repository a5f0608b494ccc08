package server

import (
	"strings"
)

const upperhex = "0123456789ABCDEF"

// contentDisposition builds an attachment header whose filename survives
// non-ASCII names (RFC 5987 ext-value).
func contentDisposition(name string) string {
	return "attachment; filename*=UTF-8''" + encodeExtValue(name)
}

func encodeExtValue(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

// attr-char from RFC 5987 section 3.2.1.
func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
