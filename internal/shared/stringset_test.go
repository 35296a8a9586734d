package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringSetBasics(t *testing.T) {
	s := NewStringSet("b", "a", "a")
	require.Len(t, s, 2)
	require.True(t, s.Has("a"))
	require.False(t, s.Has("c"))

	s.Add("c")
	require.True(t, s.Has("c"))
}

func TestStringSetCloneIsIndependent(t *testing.T) {
	s := NewStringSet("a")
	c := s.Clone()
	c.Add("b")
	require.False(t, s.Has("b"))
}

func TestStringSetJSONIsSortedArray(t *testing.T) {
	data, err := json.Marshal(NewStringSet("c", "a", "b"))
	require.NoError(t, err)
	require.Equal(t, `["a","b","c"]`, string(data))

	var s StringSet
	require.NoError(t, json.Unmarshal(data, &s))
	require.True(t, s.Has("b"))
	require.Len(t, s, 3)
}
