package postgres

import (
	"strconv"
	"strings"
)

// int64Array renders ids as a Postgres array literal, e.g. "{1,2,3}".
// Bound as text and cast with ::bigint[] so it stays a single parameter.
func int64Array(ids []int64) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte('}')
	return b.String()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
