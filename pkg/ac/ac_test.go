package ac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	m, err := NewMatcher([]string{"refund", "人工客服"})
	require.NoError(t, err)

	hit, words := m.Search("I want a REFUND now", false)
	assert.True(t, hit)
	assert.Equal(t, []string{"refund"}, words)

	hit, _ = m.Search("帮我转人工客服", true)
	assert.True(t, hit)

	hit, _ = m.Search("nothing here", false)
	assert.False(t, hit)
}

func TestCount(t *testing.T) {
	m := MustMatcher([]string{"error", "bug"})
	assert.Equal(t, 2, m.Count("an error and a bug"))
	assert.Equal(t, 0, m.Count(""))
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	hit, words := m.Search("anything", false)
	assert.False(t, hit)
	assert.Nil(t, words)
}
