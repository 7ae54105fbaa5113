package google

import (
	"fmt"
	"strings"
)

// quoteTab quotes a tab title for A1 notation. Embedded quotes are doubled.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// columnName converts a 1-based column index to letters: 1 -> A, 27 -> AA.
func columnName(n int) string {
	if n < 1 {
		return "A"
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// fullRange covers every cell of a tab.
func fullRange(tab string) string {
	return quoteTab(tab)
}

// dataRange is the block written for rows, anchored at A1.
func dataRange(tab string, rows [][]any) string {
	cols := 1
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	n := len(rows)
	if n == 0 {
		n = 1
	}
	return fmt.Sprintf("%s!A1:%s%d", quoteTab(tab), columnName(cols), n)
}
