package archive

import (
	"fmt"
	"strings"

	"github.com/sablewing/pocketbook/pkg/domain"
)

// Sink receives the server-confirmed transaction snapshot after each
// successful refresh, for local analysis outside the client.
type Sink interface {
	Write([]*domain.Transaction) error
}

// Open picks a sink from an out spec, [jsonfile:/path/file.json] or
// [es8:http://myelasticsearch:9200].
func Open(out string) (Sink, error) {
	bits := strings.SplitN(out, ":", 2)
	if len(bits) != 2 {
		return nil, fmt.Errorf("invalid archive spec, expected [jsonfile:/path/to/file.json] or [es8:http://elasticsearch:9200]")
	}

	if bits[0] == "es8" {
		return NewElasticsearchV8(bits[1]), nil
	}
	return NewJSONFile(bits[1]), nil
}
