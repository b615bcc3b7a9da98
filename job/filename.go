package job

import "strings"

// DeriveFileName builds the output filename from a client-supplied name and
// the target format. The stem is whatever follows the last path separator
// and precedes the last dot, so directory components can never leak into the
// artifact store; an empty or all-whitespace stem falls back to "converted".
func DeriveFileName(originalName, format string) string {
	stem := originalName
	if i := strings.LastIndexAny(stem, `/\`); i >= 0 {
		stem = stem[i+1:]
	}
	if i := strings.LastIndex(stem, "."); i >= 0 {
		stem = stem[:i]
	}
	if strings.TrimSpace(stem) == "" {
		stem = "converted"
	}
	return stem + "." + format
}
