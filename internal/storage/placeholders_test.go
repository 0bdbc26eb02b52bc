package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewritePlaceholders(t *testing.T) {
	assert.Equal(t,
		`SELECT * FROM standings WHERE team = ?1`,
		rewritePlaceholders(`SELECT * FROM standings WHERE team = $1`))

	assert.Equal(t,
		`UPDATE standings SET gp = ?1, pts = ?2 WHERE team = ?3`,
		rewritePlaceholders(`UPDATE standings SET gp = $1, pts = $2 WHERE team = $3`))
}

func TestRewritePlaceholdersTwoDigit(t *testing.T) {
	// $10 must not be mangled into ?1 followed by a literal 0.
	assert.Equal(t,
		`INSERT INTO t VALUES (?1, ?10, ?2)`,
		rewritePlaceholders(`INSERT INTO t VALUES ($1, $10, $2)`))
}

func TestRewritePlaceholdersSkipsLiterals(t *testing.T) {
	assert.Equal(t,
		`SELECT '$1' AS label, value FROM config WHERE key = ?1`,
		rewritePlaceholders(`SELECT '$1' AS label, value FROM config WHERE key = $1`))
}

func TestRewritePlaceholdersNoParams(t *testing.T) {
	q := `SELECT MAX(last_updated) FROM standings`
	assert.Equal(t, q, rewritePlaceholders(q))
}
