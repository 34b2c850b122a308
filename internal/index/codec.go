package index

import (
	"encoding/json"

	"github.com/collectionvault/index-engine/internal/catalog"
)

func encodeSummary(s catalog.CollectionSummary) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSummary(raw string) (catalog.CollectionSummary, error) {
	var s catalog.CollectionSummary
	err := json.Unmarshal([]byte(raw), &s)
	return s, err
}

func encodeState(s catalog.CollectionIndexState) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeState(raw string) (catalog.CollectionIndexState, error) {
	var s catalog.CollectionIndexState
	err := json.Unmarshal([]byte(raw), &s)
	return s, err
}
