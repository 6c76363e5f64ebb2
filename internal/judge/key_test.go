package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		ok   bool
	}{
		{
			name: "contest url",
			url:  "https://codeforces.com/contest/1523/A",
			key:  "1523A",
			ok:   true,
		},
		{
			name: "problemset url",
			url:  "https://codeforces.com/problemset/problem/1523/A",
			key:  "1523A",
			ok:   true,
		},
		{
			name: "index with digits",
			url:  "https://codeforces.com/problemset/problem/1131/B2",
			key:  "1131B2",
			ok:   true,
		},
		{
			name: "trailing slash",
			url:  "https://codeforces.com/contest/4/A/",
			key:  "4A",
			ok:   true,
		},
		{
			name: "query string",
			url:  "https://codeforces.com/contest/1523/A?locale=en",
			key:  "1523A",
			ok:   true,
		},
		{
			name: "no contest segment",
			url:  "https://codeforces.com/blog/entry/123",
			ok:   false,
		},
		{
			name: "different judge",
			url:  "https://atcoder.jp/contests/abc300/tasks/abc300_a",
			ok:   false,
		},
		{
			name: "empty",
			url:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := KeyFromURL(tt.url)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.key, key)
			}
		})
	}
}

func TestSolvedKey(t *testing.T) {
	assert.Equal(t, "1523A", SolvedKey(1523, "A"))
	assert.Equal(t, "4B2", SolvedKey(4, "B2"))
}
