package archive

import (
	"encoding/json"
	"io/ioutil"

	"github.com/sablewing/pocketbook/pkg/domain"
)

type JSONFile struct {
	filename string
}

func NewJSONFile(filename string) Sink {
	return &JSONFile{filename: filename}
}

// Write replaces the file with the given snapshot. Each refresh carries the
// full server view, so replacement keeps the archive consistent.
func (f *JSONFile) Write(txns []*domain.Transaction) error {
	data, err := json.Marshal(txns)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(f.filename, data, 0644)
}
