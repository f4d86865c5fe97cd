package raw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/searchgate/internal/db"
)

type bulkMeta struct {
	ID string `json:"_id,omitempty"`
}

type bulkResponse struct {
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Version int64  `json:"_version"`
	Result  string `json:"result"`
	Status  int    `json:"status"`
	Error   *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

var errMissingItem = errors.New("bulk response has no entry for item")

// Bulk assembles the NDJSON body locally and sends POST /{index}/_bulk.
// Documents must already be single-line JSON.
func (s *Store) Bulk(ctx context.Context, index string, items []db.BulkItem, refresh string) ([]db.BulkItemResult, error) {
	results := make([]db.BulkItemResult, len(items))
	for i, it := range items {
		results[i].ID = it.ID
	}
	if len(items) == 0 {
		return results, nil
	}

	body, err := encodeBulk(items)
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}

	data, err := s.do(ctx, db.OpBulk, http.MethodPost, segments(index, "_bulk"), refreshQuery(refresh), body, contentTypeNDJSON)
	if err != nil {
		return failAll(results, err), nil
	}

	var resp bulkResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return failAll(results, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("decode response: %w", err)}), nil
	}

	for i := range results {
		if i >= len(resp.Items) {
			results[i].Err = &db.Error{Op: db.OpBulk, Err: errMissingItem}
			continue
		}
		for _, r := range resp.Items[i] { // exactly one key: the action name
			results[i] = itemResult(results[i].ID, r)
		}
	}
	return results, nil
}

func encodeBulk(items []db.BulkItem) ([]byte, error) {
	var buf bytes.Buffer
	for _, it := range items {
		action := it.Action
		if action == "" {
			action = db.ActionIndex
		}
		meta, err := json.Marshal(map[string]bulkMeta{action: {ID: it.ID}})
		if err != nil {
			return nil, fmt.Errorf("encode bulk meta: %w", err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		if action != db.ActionDelete {
			buf.Write(it.Body)
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

func itemResult(id string, r bulkResponseItem) db.BulkItemResult {
	if r.ID != "" {
		id = r.ID
	}
	res := db.BulkItemResult{ID: id, Status: r.Status, Result: r.Result, Version: r.Version}
	if r.Error != nil || r.Status > 299 {
		se := &db.StatusError{Op: db.OpBulk, StatusCode: r.Status}
		if r.Error != nil {
			se.Type, se.Reason = r.Error.Type, r.Error.Reason
		}
		res.Err = se
	}
	return res
}

func failAll(results []db.BulkItemResult, err error) []db.BulkItemResult {
	for i := range results {
		results[i].Err = err
	}
	return results
}
