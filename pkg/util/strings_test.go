package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAsString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{" Arsenal ", "Arsenal"},
		{2.5, "2.5"},
		{float64(3), "3"},
		{7, "7"},
		{true, "true"},
	}
	for _, tc := range cases {
		got, err := GetAsString(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := GetAsString(nil)
	assert.Error(t, err)
}

func TestGetAsInteger(t *testing.T) {
	for in, want := range map[any]int{float64(3): 3, " 12 ": 12, 4: 4, int64(-2): -2, int64(1) << 40: 1 << 40} {
		got, err := GetAsInteger(in)
		require.NoError(t, err, "%v", in)
		assert.Equal(t, want, got)
	}

	for _, in := range []any{nil, 2.5, "two", []int{1}, 1e300} {
		_, err := GetAsInteger(in)
		assert.Error(t, err, "%v", in)
	}
}

func TestParamHelpers(t *testing.T) {
	params, err := ParamsAsMap(map[string]any{"home_team": " Leeds ", "home_goals": float64(2), "blank": "  ", "null": nil})
	require.NoError(t, err)

	s, err := RequireParamString(params, "home_team")
	require.NoError(t, err)
	assert.Equal(t, "Leeds", s)

	_, err = RequireParamString(params, "blank")
	assert.ErrorContains(t, err, "blank is required")

	s, err = GetParamString(params, "null")
	require.NoError(t, err)
	assert.Empty(t, s)

	i, err := RequireParamInteger(params, "home_goals")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = RequireParamInteger(params, "away_goals")
	assert.ErrorContains(t, err, "away_goals is required")

	empty, err := ParamsAsMap(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParamsAsMap("nope")
	assert.Error(t, err)
}
