package db

import "strconv"

// rewritePlaceholders converts '?' placeholders into Postgres-style $1..$n.
// Question marks inside single-quoted literals or double-quoted identifiers
// are left alone.
func rewritePlaceholders(query string) string {
	var b []byte
	n := 0
	inStr, inIdent := false, false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'' && !inIdent:
			inStr = !inStr
		case c == '"' && !inStr:
			inIdent = !inIdent
		case c == '?' && !inStr && !inIdent:
			if b == nil {
				b = make([]byte, 0, len(query)+8)
				b = append(b, query[:i]...)
			}
			n++
			b = append(b, '$')
			b = strconv.AppendInt(b, int64(n), 10)
			continue
		}
		if b != nil {
			b = append(b, c)
		}
	}
	if b == nil {
		return query
	}
	return string(b)
}
