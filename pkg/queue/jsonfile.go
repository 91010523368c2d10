package queue

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"os"
	"sync"

	"github.com/sablewing/pocketbook/pkg/crypto"
	"github.com/sablewing/pocketbook/pkg/domain"
)

// check it meets the interface
var _ Queue = &JSONFile{}

// JSONFile keeps the pending queue as a JSON array in a single file so it
// survives restarts. A missing, unreadable or malformed file is read as the
// empty queue, never as a fatal error.
//
// Single-writer: one client process owns the file. Two processes sharing a
// queue file can clobber each other, that is a documented limitation.
type JSONFile struct {
	mu       sync.Mutex
	filename string
	sealer   *crypto.Sealer
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{filename: filename}
}

// NewSealedJSONFile is NewJSONFile with the file contents encrypted and
// signed at rest. A file the sealer cannot open reads as empty, same as any
// other corruption.
func NewSealedJSONFile(filename string, sealer *crypto.Sealer) *JSONFile {
	return &JSONFile{filename: filename, sealer: sealer}
}

func (f *JSONFile) Enqueue(a domain.QueuedAction) error {
	if !a.TargetsServer() {
		log.Printf("refusing to queue %s action, target id is not server-confirmed\n", a.Kind)
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	pending := f.load()
	pending = append(pending, a)
	return f.save(pending)
}

func (f *JSONFile) Drain() []domain.QueuedAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *JSONFile) Ack(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending := f.load()
	if n >= len(pending) {
		return f.clearLocked()
	}
	return f.save(pending[n:])
}

func (f *JSONFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clearLocked()
}

func (f *JSONFile) clearLocked() error {
	err := os.Remove(f.filename)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *JSONFile) Len() int {
	return len(f.Drain())
}

// load reads the whole queue, normalising every failure to "empty".
func (f *JSONFile) load() []domain.QueuedAction {
	data, err := ioutil.ReadFile(f.filename)
	if err != nil {
		return nil
	}

	if f.sealer != nil {
		data, err = f.sealer.Open(string(data))
		if err != nil {
			log.Printf("queue file failed to unseal, treating as empty: %v\n", err)
			return nil
		}
	}

	pending := []domain.QueuedAction{}
	if err := json.Unmarshal(data, &pending); err != nil {
		log.Printf("queue file is not valid JSON, treating as empty: %v\n", err)
		return nil
	}

	for _, a := range pending {
		if !a.WellFormed() {
			log.Printf("queue file holds an unknown action shape, treating as empty\n")
			return nil
		}
	}
	return pending
}

func (f *JSONFile) save(pending []domain.QueuedAction) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}

	if f.sealer != nil {
		sealed, err := f.sealer.Seal(data)
		if err != nil {
			return err
		}
		data = []byte(sealed)
	}
	return ioutil.WriteFile(f.filename, data, 0644)
}
