package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sablewing/pocketbook/pkg/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

const (
	esIndex = "pocketbook"
	esFlush = 2048

	envEsAddr = "ELASTICSEARCH_SERVICE_HOST"
	envEsPort = "ELASTICSEARCH_SERVICE_PORT"
)

type ElasticsearchV8 struct {
	addresses []string
}

func NewElasticsearchV8(urls ...string) Sink {
	if len(urls) == 0 {
		address := os.Getenv(envEsAddr)
		port := os.Getenv(envEsPort)
		if port == "" {
			port = "9200" // default port
		}
		if address == "" {
			address = "localhost" // default address
		}
		urls = []string{fmt.Sprintf("http://%s:%s", address, port)}
	}

	return &ElasticsearchV8{addresses: urls}
}

// Write bulk-indexes the snapshot, keyed by server id so re-archiving the
// same transactions overwrites rather than duplicates.
func (e *ElasticsearchV8) Write(txns []*domain.Transaction) error {
	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: e.addresses,

		// Retry on 429 TooManyRequests statuses
		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},

		MaxRetries: 5,
	})
	if err != nil {
		return err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         esIndex,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return err
	}

	_, err = es.Indices.Create(esIndex)
	if err != nil {
		log.Println("attempted to make index", esIndex, err)
	}

	for _, t := range txns {
		data, err := t.JSON()
		if err != nil {
			return err
		}

		err = bi.Add(
			context.Background(),
			esutil.BulkIndexerItem{
				Action:     "index",
				DocumentID: t.ID.String(),
				Body:       bytes.NewReader(data),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						log.Printf("failed to index transactions: %s\n", err)
					} else {
						log.Printf("failed to index transactions %s: %s\n", res.Error.Type, res.Error.Reason)
					}
				},
			},
		)
		if err != nil {
			return err
		}
	}

	err = bi.Close(context.Background())
	if err != nil {
		return err
	}

	biStats := bi.Stats()
	if biStats.NumFailed > 0 {
		return fmt.Errorf("failed indexing %d docs", int64(biStats.NumFailed))
	}
	log.Printf("indexed [%d] documents\n", int64(biStats.NumFlushed))
	return nil
}
