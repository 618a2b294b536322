package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray decodes a JSON array element by element into a slice.
// Expects input in the form [{...},{...}]. Cancelling ctx stops decoding
// between elements.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) ([]T, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		return nil, eris.Wrap(err, "json: read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, eris.Errorf("json: expected '[', got %v", tok)
	}

	var out []T
	for decoder.More() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "json: context cancelled")
		}
		var item T
		if err := decoder.Decode(&item); err != nil {
			return nil, eris.Wrapf(err, "json: decode element %d", len(out))
		}
		out = append(out, item)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, eris.Wrap(err, "json: read closing token")
	}
	return out, nil
}

// DecodeJSONObject decodes a single JSON object from a reader.
func DecodeJSONObject[T any](r io.Reader) (*T, error) {
	var obj T
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "json: decode object")
	}
	return &obj, nil
}
