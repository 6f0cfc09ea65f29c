package helper

import "unicode/utf8"

// TruncateHead keeps the first n characters of s.
func TruncateHead(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// TruncateTail keeps the last n characters of s. Process diagnostics put the
// useful part (the final traceback line) at the end.
func TruncateTail(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if n <= 0 || count <= n {
		return s
	}
	skip := count - n
	i := 0
	for pos := range s {
		if i == skip {
			return s[pos:]
		}
		i++
	}
	return s
}
