package index

import (
	"strings"
	"time"

	"github.com/collectionvault/index-engine/internal/catalog"
)

const ticksPerSecond = 1e7 // 100-ns resolution, matching a .NET-style "ticks" clock

func ticks(t time.Time) float64 {
	return float64(t.UnixNano()) / 100.0
}

// nameScore encodes the first 10 normalized (lowercased, trimmed) code
// points of name into a single prefix-order-preserving double: the
// mapping Sigma codepoint_i * 256^(9-i) over i=0..9. Ties within the
// first 10 characters are broken by collection id at retrieval time, not
// by this score.
func nameScore(name string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(name))
	runes := []rune(normalized)

	var score float64
	for i := 0; i < 10; i++ {
		var cp float64
		if i < len(runes) {
			cp = float64(runes[i])
		}
		weight := 1.0
		for p := 0; p < 9-i; p++ {
			weight *= 256.0
		}
		score += cp * weight
	}
	return score
}

// Score computes the sorted-set score for a collection under the given
// field and direction, per spec 4.1.2.
func Score(c *catalog.Collection, field SortField, dir SortDirection) float64 {
	sign := 1.0
	if dir == Desc {
		sign = -1.0
	}

	switch field {
	case FieldUpdatedAt:
		return ticks(c.UpdatedAt()) * sign
	case FieldCreatedAt:
		return ticks(c.CreatedAt()) * sign
	case FieldImageCount:
		return float64(c.Statistics().TotalItems) * sign
	case FieldTotalSize:
		return float64(c.Statistics().TotalSize) * sign
	case FieldName:
		return nameScore(c.Name()) * sign
	default:
		return 0
	}
}
