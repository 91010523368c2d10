package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const localPrefix = "local:"

// ID identifies a transaction. The server assigns numeric ids; records shown
// optimistically before the server has confirmed their creation carry a
// client-local uuid instead. Locality is an explicit tag, never inferred
// from the numeric value.
type ID struct {
	remote int64
	local  string
}

// RemoteID wraps a server-assigned id.
func RemoteID(n int64) ID {
	return ID{remote: n}
}

// NewLocalID mints a placeholder id for optimistic rendering. It must never
// be sent to the server in an update or delete.
func NewLocalID() ID {
	return ID{local: uuid.New().String()}
}

// IsRemote reports whether the id is server-confirmed.
func (id ID) IsRemote() bool {
	return id.local == "" && id.remote != 0
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool {
	return id.local == "" && id.remote == 0
}

// Remote returns the server-assigned value, if there is one.
func (id ID) Remote() (int64, bool) {
	if !id.IsRemote() {
		return 0, false
	}
	return id.remote, true
}

func (id ID) String() string {
	if id.local != "" {
		return localPrefix + id.local
	}
	return fmt.Sprintf("%d", id.remote)
}

// MarshalJSON writes remote ids as the bare number the server uses, and
// local ids as a prefixed string so the two can never collide on the wire.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.local != "" {
		return json.Marshal(localPrefix + id.local)
	}
	return json.Marshal(id.remote)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID{remote: n}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("id is neither a number nor a string: %s", string(data))
	}
	if !strings.HasPrefix(s, localPrefix) {
		return fmt.Errorf("string id without %q prefix: %s", localPrefix, s)
	}
	*id = ID{local: strings.TrimPrefix(s, localPrefix)}
	return nil
}
