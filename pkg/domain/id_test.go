package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteIDRoundTrip(t *testing.T) {
	data, err := json.Marshal(RemoteID(42))
	assert.Nil(t, err)
	assert.Equal(t, "42", string(data))

	var id ID
	assert.Nil(t, json.Unmarshal(data, &id))
	assert.True(t, id.IsRemote())

	n, ok := id.Remote()
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
}

func TestLocalIDNeverRemote(t *testing.T) {
	id := NewLocalID()
	assert.False(t, id.IsRemote())

	_, ok := id.Remote()
	assert.False(t, ok)

	// survives a round trip without gaining remoteness
	data, err := json.Marshal(id)
	assert.Nil(t, err)

	var back ID
	assert.Nil(t, json.Unmarshal(data, &back))
	assert.False(t, back.IsRemote())
	assert.Equal(t, id.String(), back.String())
}

func TestLargeRemoteIDStaysRemote(t *testing.T) {
	// the old numeric-threshold heuristic misread big sequential server
	// ids as placeholders; the tagged form must not
	id := RemoteID(9_000_000_000)
	assert.True(t, id.IsRemote())
}

func TestIDUnmarshalRejectsJunk(t *testing.T) {
	var id ID
	assert.NotNil(t, json.Unmarshal([]byte(`"not-a-prefixed-string"`), &id))
	assert.NotNil(t, json.Unmarshal([]byte(`{"id":1}`), &id))
}

func TestActionTargetsServer(t *testing.T) {
	draft := Draft{Type: Expense, Amount: 50, Category: "Groceries", Date: "2024-03-01", UserID: 1}

	assert.True(t, AddAction(draft).TargetsServer())
	assert.True(t, UpdateAction(*draft.Confirmed(RemoteID(4))).TargetsServer())
	assert.True(t, DeleteAction(RemoteID(4)).TargetsServer())

	assert.False(t, UpdateAction(*draft.Confirmed(NewLocalID())).TargetsServer())
	assert.False(t, DeleteAction(NewLocalID()).TargetsServer())
	assert.False(t, QueuedAction{Kind: "REPLACE"}.TargetsServer())
	assert.False(t, QueuedAction{Kind: ActionDelete}.TargetsServer())
}
