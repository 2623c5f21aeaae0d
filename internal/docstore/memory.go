package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/qforge/fmea-backend/internal/types"
)

// memoryStore keeps payloads as marshalled JSON under the same keys the redis
// store would use, so prefix probing behaves identically. Used in tests and
// when no redis address is configured.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() Store {
	return &memoryStore{data: map[string][]byte{}}
}

// Seed writes a raw payload under an arbitrary key; tests use it to place
// documents under legacy prefixes.
func Seed(s Store, key string, payload []byte) {
	ms, ok := s.(*memoryStore)
	if !ok {
		return
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data[key] = payload
}

func (s *memoryStore) get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	return raw, ok
}

func (s *memoryStore) set(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
}

func (s *memoryStore) LoadDocument(_ context.Context, analysisID string) (*types.Document, error) {
	for _, prefix := range documentPrefixes {
		raw, ok := s.get(prefix + analysisID)
		if !ok {
			continue
		}
		var doc types.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if !doc.HasStructure() {
			continue
		}
		return &doc, nil
	}
	return nil, nil
}

func (s *memoryStore) SaveDocument(_ context.Context, analysisID string, doc *types.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.set(documentPrefixes[0]+analysisID, raw)
	return nil
}

func (s *memoryStore) LoadConfirmedState(_ context.Context, analysisID string) (*types.ConfirmedSteps, error) {
	raw, ok := s.get(confirmPrefix + analysisID)
	if !ok {
		return nil, nil
	}
	var steps types.ConfirmedSteps
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, err
	}
	return &steps, nil
}

func (s *memoryStore) SaveConfirmedState(_ context.Context, analysisID string, steps *types.ConfirmedSteps) error {
	raw, err := json.Marshal(steps)
	if err != nil {
		return err
	}
	s.set(confirmPrefix+analysisID, raw)
	return nil
}

func (s *memoryStore) LoadControlPlan(_ context.Context, cpNo string) (*types.ControlPlanDocument, error) {
	raw, ok := s.get(controlPlanPrefix + cpNo)
	if !ok {
		return nil, nil
	}
	var doc types.ControlPlanDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *memoryStore) SaveControlPlan(_ context.Context, cpNo string, doc *types.ControlPlanDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.set(controlPlanPrefix+cpNo, raw)
	return nil
}

func (s *memoryStore) ListAnalysisIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var ids []string
	for key := range s.data {
		for _, prefix := range documentPrefixes {
			if len(key) > len(prefix) && key[:len(prefix)] == prefix {
				id := key[len(prefix):]
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
