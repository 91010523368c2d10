package archive

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablewing/pocketbook/pkg/domain"
)

func TestWriteReplacesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	sink := NewJSONFile(path)

	err := sink.Write([]*domain.Transaction{
		{ID: domain.RemoteID(1), Type: domain.Expense, Amount: 50, Category: "Groceries", Date: "2024-03-01", UserID: 1},
		{ID: domain.RemoteID(2), Type: domain.Income, Amount: 200, Category: "Bonus", Date: "2024-03-02", UserID: 1},
	})
	assert.Nil(t, err)

	err = sink.Write([]*domain.Transaction{
		{ID: domain.RemoteID(2), Type: domain.Income, Amount: 200, Category: "Bonus", Date: "2024-03-02", UserID: 1},
	})
	assert.Nil(t, err)

	data, err := ioutil.ReadFile(path)
	require.Nil(t, err)

	got := []*domain.Transaction{}
	require.Nil(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, domain.RemoteID(2), got[0].ID)
}

func TestOpenPicksSinkByScheme(t *testing.T) {
	sink, err := Open("jsonfile:/tmp/archive.json")
	assert.Nil(t, err)
	assert.IsType(t, &JSONFile{}, sink)

	sink, err = Open("es8:http://localhost:9200")
	assert.Nil(t, err)
	assert.IsType(t, &ElasticsearchV8{}, sink)

	_, err = Open("no-scheme-here")
	assert.NotNil(t, err)
}
