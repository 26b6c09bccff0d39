package regexp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngines(t *testing.T) {
	defer func() { _ = SetEngine("stdlib") }()

	for _, name := range []string{"stdlib", "re2"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, SetEngine(name))
			assert.Equal(t, name, Version())

			re, err := Compile(`(?P<key>\w+)=(\d+)`)
			require.NoError(t, err)
			assert.Equal(t, 2, re.NumSubexp())
			assert.Equal(t, []string{"", "key", ""}, re.SubexpNames())
			assert.True(t, re.MatchString("a=1"))
			assert.Equal(t, [][]int{{0, 3, 0, 1, 2, 3}, {4, 7, 4, 5, 6, 7}}, re.FindAllStringSubmatchIndex("a=1 b=2", -1))
			assert.Equal(t, [][]int{{0, 3}}, re.FindAllStringIndex("a=1", -1))
			assert.Equal(t, []int{2, 5}, re.FindStringIndex("  x=9"))
			assert.Equal(t, "<a=1>", re.ReplaceAllStringFunc("a=1", func(s string) string { return "<" + s + ">" }))

			_, err = Compile(`(`)
			assert.Error(t, err)
		})
	}
}

func TestSetEngine_Unknown(t *testing.T) {
	assert.EqualError(t, SetEngine("pcre"), `unknown regex engine "pcre" (expected stdlib or re2)`)
	assert.Equal(t, "stdlib", Version())
}

func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() { MustCompile(`a+`) })
	assert.Panics(t, func() { MustCompile(`a(`) })
}
