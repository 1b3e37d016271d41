package sqldb

import (
	"fmt"
	"strconv"
	"strings"
)

var PlaceholderPrefixForDBType = map[string]byte{
	"mysql": '?',
	"pgsql": '$',
}

// Placeholders returns n comma-separated placeholders, numbered from start for ordinal dialects
func Placeholders(prefix byte, n int, start int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if prefix == '?' || prefix == 0 {
			b.WriteByte('?')
			continue
		}
		b.WriteByte(prefix)
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}

// ReplaceStaticPlaceholders numbers every `?` for ordinal dialects. `??` is left for ExpandDynamicPlaceholders.
func ReplaceStaticPlaceholders(sql string, prefix byte) string {
	if prefix == '?' || prefix == 0 {
		return sql
	}
	var builder strings.Builder
	builder.Grow(len(sql) + 8)
	cnt := 1
	i := 0
	for i < len(sql) {
		if sql[i] == '?' {
			// Do Not Touch Dynamic Placeholders '??'
			if i+1 < len(sql) && sql[i+1] == '?' {
				builder.WriteString("??")
				i += 2
				continue
			}
			builder.WriteByte(prefix)
			builder.WriteString(strconv.Itoa(cnt))
			cnt++
		} else {
			builder.WriteByte(sql[i])
		}
		i++
	}
	return builder.String()
}

// ExpandDynamicPlaceholders replaces each `??` with counts[i] placeholders.
// Ordinal dialects continue numbering at start.
func ExpandDynamicPlaceholders(sql string, prefix byte, counts []int, start int) (string, error) {
	const symbol = "??"
	var b strings.Builder
	b.Grow(len(sql) + 16*len(counts))

	i := 0
	countIndex := 0
	ord := start
	for {
		j := strings.Index(sql[i:], symbol)
		if j == -1 {
			b.WriteString(sql[i:])
			break
		}
		b.WriteString(sql[i : i+j])
		i += j + len(symbol)

		if countIndex >= len(counts) {
			return "", fmt.Errorf("ExpandDynamicPlaceholders: not enough counts for %q", symbol)
		}
		n := counts[countIndex]
		countIndex++
		b.WriteString(Placeholders(prefix, n, ord))
		ord += n
	}
	if countIndex < len(counts) {
		return "", fmt.Errorf("ExpandDynamicPlaceholders: too many counts for %q", symbol)
	}
	return b.String(), nil
}
