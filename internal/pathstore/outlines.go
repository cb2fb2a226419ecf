package pathstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

const outlinePrefix = "outlines"

// OutlineRecord is a persisted outline keyed by the content hash of the
// parsed document text.
type OutlineRecord struct {
	ContentHash string          `json:"content_hash"`
	Filename    string          `json:"filename"`
	Title       string          `json:"title"`
	Pages       int             `json:"pages"`
	Chunks      int             `json:"chunks"`
	CreatedAt   time.Time       `json:"created_at"`
	Result      *outline.Result `json:"result"`
}

// OutlineSummary is the listing form of an OutlineRecord.
type OutlineSummary struct {
	ContentHash string    `json:"content_hash"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Topics      int       `json:"topics"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func outlineKey(hash string) string {
	return outlinePrefix + "/" + hash
}

// PutOutline stores rec under its content hash.
func (c *Client) PutOutline(ctx context.Context, rec OutlineRecord) error {
	if rec.ContentHash == "" {
		return fmt.Errorf("put outline: empty content hash")
	}
	return c.PutNode(ctx, outlineKey(rec.ContentHash), NodeRequest{
		Value:      rec,
		MemoryType: "outline",
		Source:     "docoutline:" + rec.Filename,
	})
}

// GetOutline loads an outline. A missing outline returns (nil, nil).
func (c *Client) GetOutline(ctx context.Context, hash string) (*OutlineRecord, error) {
	node, err := c.GetNode(ctx, outlineKey(hash))
	if err != nil || node == nil {
		return nil, err
	}
	var rec OutlineRecord
	if err := json.Unmarshal(node.Value, &rec); err != nil {
		return nil, fmt.Errorf("decode outline %s: %w", hash, err)
	}
	return &rec, nil
}

// DeleteOutline removes an outline and reports whether it existed.
func (c *Client) DeleteOutline(ctx context.Context, hash string) (bool, error) {
	return c.DeleteNode(ctx, outlineKey(hash), false)
}

// ListOutlines returns up to limit stored outlines. Entries that fail to
// decode are skipped.
func (c *Client) ListOutlines(ctx context.Context, limit int) ([]OutlineSummary, error) {
	nodes, err := c.ListChildren(ctx, outlinePrefix, limit)
	if err != nil {
		return nil, err
	}
	out := make([]OutlineSummary, 0, len(nodes))
	for _, n := range nodes {
		var rec OutlineRecord
		if err := json.Unmarshal(n.Value, &rec); err != nil {
			continue
		}
		if rec.ContentHash == "" {
			rec.ContentHash = lastSegment(n.Key)
		}
		s := OutlineSummary{
			ContentHash: rec.ContentHash,
			Filename:    rec.Filename,
			Title:       rec.Title,
			CreatedAt:   rec.CreatedAt,
		}
		if rec.Result != nil {
			s.Topics = len(rec.Result.Topics)
			s.Status = string(rec.Result.Status)
		}
		out = append(out, s)
	}
	return out, nil
}

// lastSegment handles both "/" and "." separated key paths.
func lastSegment(key string) string {
	if i := strings.LastIndexAny(key, "/."); i >= 0 {
		return key[i+1:]
	}
	return key
}
