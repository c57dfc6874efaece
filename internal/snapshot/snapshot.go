// Package snapshot supplies entity state to cards. Lookup is the contract a
// host implements; Store is an in-memory implementation that can be filled
// from a state file during development.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/types"
	"github.com/conneroisu/lmscards/internal/validation"
)

// Lookup resolves an entity id to its current state. A missing entity is
// reported with ok == false and is not an error.
type Lookup interface {
	Get(entityID string) (*types.Snapshot, bool)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(entityID string) (*types.Snapshot, bool)

// Get implements Lookup.
func (f LookupFunc) Get(entityID string) (*types.Snapshot, bool) {
	return f(entityID)
}

// Store is a concurrency-safe Lookup backed by a map.
type Store struct {
	states map[string]*types.Snapshot
	mutex  sync.RWMutex
}

// NewStore creates a store holding snaps.
func NewStore(snaps ...*types.Snapshot) *Store {
	s := &Store{states: make(map[string]*types.Snapshot, len(snaps))}
	for _, snap := range snaps {
		s.Set(snap)
	}
	return s
}

// Get implements Lookup.
func (s *Store) Get(entityID string) (*types.Snapshot, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snap, ok := s.states[entityID]
	return snap, ok
}

// Set stores snap under its entity id, replacing any previous state.
func (s *Store) Set(snap *types.Snapshot) {
	if snap == nil || snap.EntityID == "" {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.states[snap.EntityID] = snap
}

// Replace swaps the whole state set for the contents of other.
func (s *Store) Replace(other *Store) {
	other.mutex.RLock()
	states := make(map[string]*types.Snapshot, len(other.states))
	for k, v := range other.states {
		states[k] = v
	}
	other.mutex.RUnlock()

	s.mutex.Lock()
	s.states = states
	s.mutex.Unlock()
}

// EntityIDs returns the stored entity ids in sorted order.
func (s *Store) EntityIDs() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored entities.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.states)
}

// state is one entry of a state file.
type state struct {
	EntityID   string                 `mapstructure:"entity_id"`
	State      string                 `mapstructure:"state"`
	Attributes map[string]interface{} `mapstructure:"attributes"`
}

// Format is a state file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads a JSON or YAML state file. Two layouts are accepted: a
// mapping from entity id to {state, attributes}, or a list of
// {entity_id, state, attributes} records as returned by a host's states
// endpoint.
func LoadFile(path string) (*Store, error) {
	if err := validation.ValidateStateFile(path); err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeSnapshotInvalid, "invalid snapshot path").
			WithContext("path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeSnapshotInvalid, "failed to read snapshot file", err).
			WithContext("path", path)
	}

	store, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, errors.ErrCodeSnapshotInvalid, "failed to parse snapshot file").
			WithContext("path", path)
	}

	return store, nil
}

// Parse decodes state file contents.
func Parse(data []byte, format Format) (*Store, error) {
	var doc interface{}

	switch format {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return NewStore(), nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}

	store := NewStore()

	switch root := doc.(type) {
	case nil:
	case map[string]interface{}:
		for id, entry := range root {
			st, err := decodeState(entry)
			if err != nil {
				return nil, fmt.Errorf("state %s: %w", id, err)
			}
			store.Set(&types.Snapshot{EntityID: id, State: st.State, Attributes: st.Attributes})
		}
	case []interface{}:
		for i, entry := range root {
			st, err := decodeState(entry)
			if err != nil {
				return nil, fmt.Errorf("state #%d: %w", i, err)
			}
			if st.EntityID == "" {
				return nil, fmt.Errorf("state #%d has no entity_id", i)
			}
			store.Set(&types.Snapshot{EntityID: st.EntityID, State: st.State, Attributes: st.Attributes})
		}
	default:
		return nil, fmt.Errorf("state file must be a mapping or a list, got %T", doc)
	}

	return store, nil
}

// decodeState decodes one entry. Scalar states such as counts are
// stringified.
func decodeState(entry interface{}) (state, error) {
	var st state
	if entry == nil {
		return st, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &st,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return st, err
	}
	if err := decoder.Decode(entry); err != nil {
		return st, err
	}
	return st, nil
}
