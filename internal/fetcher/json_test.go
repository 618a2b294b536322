package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestDecodeJSONArray(t *testing.T) {
	input := `[{"id":1,"name":"alpha"},{"id":2,"name":"beta"},{"id":3,"name":"gamma"}]`

	records, err := DecodeJSONArray[testRecord](context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, "alpha", records[0].Name)
	assert.Equal(t, "gamma", records[2].Name)
}

func TestDecodeJSONArray_Empty(t *testing.T) {
	records, err := DecodeJSONArray[testRecord](context.Background(), strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeJSONArray_NotArray(t *testing.T) {
	_, err := DecodeJSONArray[testRecord](context.Background(), strings.NewReader(`{"id":1}`))
	assert.Error(t, err)
}

func TestDecodeJSONArray_Truncated(t *testing.T) {
	_, err := DecodeJSONArray[testRecord](context.Background(), strings.NewReader(`[{"id":1},{"id":`))
	assert.Error(t, err)
}

func TestDecodeJSONArray_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DecodeJSONArray[testRecord](ctx, strings.NewReader(`[{"id":1}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestDecodeJSONObject(t *testing.T) {
	obj, err := DecodeJSONObject[testRecord](strings.NewReader(`{"id":7,"name":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, 7, obj.ID)

	_, err = DecodeJSONObject[testRecord](strings.NewReader(`nope`))
	assert.Error(t, err)
}
