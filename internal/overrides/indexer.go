// internal/overrides/indexer.go
package overrides

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"site-composer/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Indexer copies selection records into Elasticsearch for analytics dashboards.
type Indexer struct {
	client *elasticsearch.Client
	index  string
}

func NewIndexer(client *elasticsearch.Client, index string) *Indexer {
	return &Indexer{client: client, index: index}
}

// Index writes record under its own id, so a retried write does not duplicate it.
func (i *Indexer) Index(ctx context.Context, record models.OverrideRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal override record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: record.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index override record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index override record: %s", res.Status())
	}
	return nil
}
