package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/rgwnotify/core/event"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

// Indexer stores event documents in one index. It is safe for concurrent use.
type Indexer struct {
	transport opensearchapi.Transport
	index     string
	shards    int
	logger    *slog.Logger
}

type IndexerOption func(*Indexer)

func WithLogger(l *slog.Logger) IndexerOption {
	return func(i *Indexer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithShards sets the shard count used by EnsureIndex.
func WithShards(n int) IndexerOption {
	return func(i *Indexer) { i.shards = n }
}

// NewIndexer binds an indexer to index. transport is usually an *opensearch.Client.
func NewIndexer(transport opensearchapi.Transport, index string, opts ...IndexerOption) (*Indexer, error) {
	if strings.TrimSpace(index) == "" {
		return nil, ErrIndexRequired
	}
	i := &Indexer{
		transport: transport,
		index:     index,
		shards:    5,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = i.logger.With(logger.Component("opensearch"), slog.String("index", index))
	return i, nil
}

// Index returns the index name.
func (i *Indexer) Index() string { return i.index }

// EnsureIndex creates the index with the event mapping unless it exists.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := opensearchapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.transport)
	if err != nil {
		return fmt.Errorf("%w: index exists: %v", ErrRequestFailed, err)
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(indexBody(i.shards))
	if err != nil {
		return fmt.Errorf("%w: encode mapping: %v", ErrRequestFailed, err)
	}
	res, err = opensearchapi.IndicesCreateRequest{Index: i.index, Body: bytes.NewReader(body)}.Do(ctx, i.transport)
	if err != nil {
		return fmt.Errorf("%w: create index: %v", ErrRequestFailed, err)
	}
	defer drain(res)
	if res.IsError() {
		msg := readError(res)
		if strings.Contains(msg, "resource_already_exists_exception") {
			i.logger.WarnContext(ctx, "index already exists")
			return nil
		}
		return fmt.Errorf("%w: create index: %s: %s", ErrRequestFailed, res.Status(), msg)
	}
	i.logger.InfoContext(ctx, "index created", logger.Count("shards", i.shards))
	return nil
}

// Insert stores doc under id, replacing any previous document with that id.
func (i *Indexer) Insert(ctx context.Context, id string, doc []byte) error {
	res, err := opensearchapi.IndexRequest{
		Index:      i.index,
		DocumentID: id,
		Body:       bytes.NewReader(doc),
	}.Do(ctx, i.transport)
	if err != nil {
		return fmt.Errorf("%w: index %s: %v", ErrRequestFailed, id, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("%w: index %s: %s: %s", ErrRequestFailed, id, res.Status(), readError(res))
	}
	i.logger.DebugContext(ctx, "document indexed", logger.Key("document_id", id), logger.StatusCode(res.StatusCode))
	return nil
}

// Delete removes at most one document matching the object's bucket and key.
func (i *Indexer) Delete(ctx context.Context, ref event.ObjectRef) error {
	body, err := json.Marshal(deleteQuery(ref))
	if err != nil {
		return fmt.Errorf("%w: encode query: %v", ErrRequestFailed, err)
	}
	maxDocs := 1
	res, err := opensearchapi.DeleteByQueryRequest{
		Index:     []string{i.index},
		Body:      bytes.NewReader(body),
		MaxDocs:   &maxDocs,
		Conflicts: "proceed",
	}.Do(ctx, i.transport)
	if err != nil {
		return fmt.Errorf("%w: delete %s/%s: %v", ErrRequestFailed, ref.Bucket, ref.Key, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("%w: delete %s/%s: %s: %s", ErrRequestFailed, ref.Bucket, ref.Key, res.Status(), readError(res))
	}
	i.logger.DebugContext(ctx, "document deleted", logger.Bucket(ref.Bucket), logger.ObjectKey(ref.Key))
	return nil
}

func deleteQuery(ref event.ObjectRef) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"bucket.keyword": ref.Bucket}},
					map[string]any{"term": map[string]any{"name.keyword": ref.Key}},
				},
			},
		},
	}
}

func readError(res *opensearchapi.Response) string {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return strings.TrimSpace(string(b))
}

func drain(res *opensearchapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
