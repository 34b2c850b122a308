package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/collectionvault/index-engine/internal/shared"
)

// MemoryStore is an in-process Store used by tests that exercise the index
// engine and job pipeline without a running MongoDB instance. It round-trips
// documents through JSON the same way the wire format would, so field-name
// mismatches surface the same way they would against the real driver.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]map[string]interface{}
}

// NewMemoryStore returns an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]map[string]interface{})}
}

func (m *MemoryStore) collection(name string) map[string]map[string]interface{} {
	if m.docs[name] == nil {
		m.docs[name] = make(map[string]map[string]interface{})
	}
	return m.docs[name]
}

func toMap(doc interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(doc map[string]interface{}, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(got, want interface{}) bool {
	gb, _ := json.Marshal(got)
	wb, _ := json.Marshal(want)
	return string(gb) == string(wb)
}

func (m *MemoryStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, doc := range m.collection(collection) {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Find(ctx context.Context, collection string, filter bson.M, sort_ Sort, skip, limit int64, out interface{}) error {
	m.mu.RLock()
	var matched []map[string]interface{}
	for _, doc := range m.collection(collection) {
		if matches(doc, filter) {
			matched = append(matched, doc)
		}
	}
	m.mu.RUnlock()

	if sort_.Field != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := compareValues(matched[i][sort_.Field], matched[j][sort_.Field])
			if sort_.Desc {
				return less > 0
			}
			return less < 0
		})
	}

	if skip > 0 {
		if skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[skip:]
		}
	}
	if limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}

	data, err := json.Marshal(matched)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func compareValues(a, b interface{}) int {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs)
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func toFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func (m *MemoryStore) FindByID(ctx context.Context, collection, id string, out interface{}) error {
	return m.FindOne(ctx, collection, bson.M{"id": id}, out)
}

func (m *MemoryStore) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.collection(collection) {
		if matches(doc, filter) {
			data, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			return json.Unmarshal(data, out)
		}
	}
	return shared.ErrNotFound
}

func (m *MemoryStore) Upsert(ctx context.Context, collection, id string, doc interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	asMap, err := toMap(doc)
	if err != nil {
		return err
	}
	m.collection(collection)[id] = asMap
	return nil
}

func (m *MemoryStore) UpdateByID(ctx context.Context, collection, id string, update bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collection(collection)[id]
	if !ok {
		return shared.ErrNotFound
	}
	for k, v := range update {
		doc[k] = v
	}
	return nil
}

func (m *MemoryStore) EnsureIndexes(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
