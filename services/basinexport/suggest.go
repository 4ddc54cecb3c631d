package basinexport

import (
	"github.com/antzucaro/matchr"
)

// UnknownId is a requested HUC identifier that matched nothing in the
// catalog, along with the closest identifier the catalog does have.
type UnknownId struct {
	Id         string
	Suggestion string
	Similarity float64
}

// MissingIds returns the requested identifiers absent from the
// catalog, preserving request order.
func MissingIds(requested, catalog []string) []string {
	known := make(map[string]bool, len(catalog))
	for _, id := range catalog {
		known[id] = true
	}

	var missing []string
	for _, id := range requested {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// SuggestIds pairs each unknown identifier with its most similar
// catalog identifier. HUC codes are digit strings, so a high
// JaroWinkler score almost always means a single transposed or
// mistyped digit.
func SuggestIds(unknown, catalog []string) []UnknownId {
	var out []UnknownId
	for _, id := range unknown {
		best := UnknownId{Id: id}
		for _, candidate := range catalog {
			similarity := matchr.JaroWinkler(id, candidate, false)
			if similarity > best.Similarity {
				best.Similarity = similarity
				best.Suggestion = candidate
			}
		}
		out = append(out, best)
	}
	return out
}
