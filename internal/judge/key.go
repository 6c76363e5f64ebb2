package judge

import (
	"regexp"
	"strconv"
)

// problemURLPattern matches the two canonical Codeforces problem URL
// shapes: /contest/<digits>/<index> and /problemset/problem/<digits>/<index>,
// where index is a letter optionally followed by digits ("A", "B2").
var problemURLPattern = regexp.MustCompile(`/(?:problemset/problem|contest)/(\d+)/([A-Za-z]\d*)(?:[/?#]|$)`)

// SolvedKey builds the normalized identifier used to match a catalog
// problem against a judge-reported submission: contest id concatenated
// with the problem index, e.g. 1523 + "A" -> "1523A".
func SolvedKey(contestID int, index string) string {
	return strconv.Itoa(contestID) + index
}

// KeyFromURL derives a problem's solved key from its stored URL.
// URLs that match neither pattern yield ok=false and are skipped by the
// caller; a non-matching URL is not an error.
func KeyFromURL(url string) (key string, ok bool) {
	m := problemURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1] + m[2], true
}
