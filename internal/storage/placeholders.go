package storage

import "strings"

// rewritePlaceholders converts PostgreSQL-style $N parameters to the
// ?N form SQLite accepts. Numbering is preserved so a parameter bound
// more than once keeps its position, and $10 is never mangled by $1.
// Dollar signs inside quoted literals are left alone.
func rewritePlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	inSingle := false
	for i := 0; i < len(query); i++ {
		c := query[i]

		switch {
		case c == '\'':
			inSingle = !inSingle
			b.WriteByte(c)
		case c == '$' && !inSingle && i+1 < len(query) && isDigit(query[i+1]):
			b.WriteByte('?')
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
