package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	Position int
}

func TestUnmarshalJson(t *testing.T) {
	var generic any
	require.NoError(t, Json.Unmarshal([]byte(`{"Position":7}`), &generic))
	got, err := UnmarshalJson[position](generic)
	require.NoError(t, err)
	assert.Equal(t, position{Position: 7}, got)
}

func TestUnmarshalJsonErrors(t *testing.T) {
	_, err := UnmarshalJson[position](nil)
	assert.Error(t, err)

	_, err = UnmarshalJson[position](map[string]any{"Position": "seven"})
	assert.Error(t, err)
}
