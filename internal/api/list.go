package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// page is the envelope of a paginated list endpoint.
type page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// GetList fetches a collection endpoint. The backend answers either with
// a bare JSON array or with a paginated {"count", "results"} envelope,
// depending on the view; both are accepted.
func GetList[T any](
	ctx context.Context,
	c *Client,
	path string,
	query url.Values,
) ([]T, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		return items, nil
	}

	var p page[T]
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("decoding paginated list: %w", err)
	}
	return p.Results, nil
}
