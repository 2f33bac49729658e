package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := map[string]struct {
		in   []string
		want []string
	}{
		"nil stays nil":         {nil, nil},
		"empty stays empty":     {[]string{}, []string{}},
		"trims tags":            {[]string{" javascript ", "bundler"}, []string{"javascript", "bundler"}},
		"first occurrence wins": {[]string{"webpack", "open source", "webpack", " open source"}, []string{"webpack", "open source"}},
		"drops blanks":          {[]string{"", "   ", "css"}, []string{"css"}},
		"case is significant":   {[]string{"Go", "go"}, []string{"Go", "go"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, DedupeAndTrim(tc.in))
		})
	}
}

func TestAppendIfMissing(t *testing.T) {
	tags := []string{"webpack"}

	got := AppendIfMissing(tags, "open source")
	assert.Equal(t, []string{"webpack", "open source"}, got)
	assert.Equal(t, []string{"webpack"}, tags, "input must not change")

	assert.Equal(t, got, AppendIfMissing(got, "open source"))
	assert.Equal(t, []string{"open source"}, AppendIfMissing(nil, "open source"))
}
