// internal/archetype/ageclass_index.go
package archetype

import (
	"context"
	"fmt"

	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/models"
)

// AgeClassEntry pairs an age class with the archetype it selects.
type AgeClassEntry struct {
	AgeClass     models.AgeClass `json:"ageClass"`
	ArchetypeURI string          `json:"archetypeUri"`
}

// AgeClassIndex maps construction years to archetype URIs. It is read-only
// after construction.
type AgeClassIndex struct {
	entries  []AgeClassEntry
	problems []string
}

// NewAgeClassIndex asks the reader for the age class of every archetype.
// Gaps and overlaps are logged at error level but do not fail the index;
// years that match no class or several classes fail at lookup time.
func NewAgeClassIndex(ctx context.Context, reader graphdb.Reader, uris []string, log logger.Logger) (*AgeClassIndex, error) {
	idx := &AgeClassIndex{}
	seen := map[string]string{}
	for _, uri := range uris {
		ac, err := reader.GetAgeClassOfArchetype(ctx, uri)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[ac.Key()]; dup {
			if prev == uri {
				continue
			}
			idx.problems = append(idx.problems, fmt.Sprintf("age class %s is used by %s and %s", ac, prev, uri))
		}
		seen[ac.Key()] = uri
		idx.entries = append(idx.entries, AgeClassEntry{AgeClass: ac, ArchetypeURI: uri})
	}
	idx.sort()

	idx.problems = append(idx.problems, models.AgeClassGaps(idx.classes())...)
	if len(idx.problems) > 0 {
		err := apperrors.NewAgeClassesNotContiguousError(idx.problems)
		log.Error("age classes retrieved from the archetype database are not consecutive, check min/max age so that there are neither gaps nor overlaps", map[string]interface{}{
			"error":    err,
			"problems": idx.problems,
		})
	}
	return idx, nil
}

func (idx *AgeClassIndex) classes() []models.AgeClass {
	out := make([]models.AgeClass, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.AgeClass
	}
	return out
}

func (idx *AgeClassIndex) sort() {
	sorted := models.SortAgeClasses(idx.classes())
	byKey := make(map[string][]AgeClassEntry, len(idx.entries))
	for _, e := range idx.entries {
		byKey[e.AgeClass.Key()] = append(byKey[e.AgeClass.Key()], e)
	}
	out := make([]AgeClassEntry, 0, len(idx.entries))
	for _, ac := range sorted {
		k := ac.Key()
		if len(byKey[k]) == 0 {
			continue
		}
		out = append(out, byKey[k][0])
		byKey[k] = byKey[k][1:]
	}
	idx.entries = out
}

// Lookup returns the single age class containing year and its archetype.
// No match or more than one match is an AGE_CLASS_NOT_FOUND error.
func (idx *AgeClassIndex) Lookup(year int) (AgeClassEntry, error) {
	var matches []AgeClassEntry
	for _, e := range idx.entries {
		if e.AgeClass.Contains(year) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return AgeClassEntry{}, apperrors.NewAgeClassNotFoundError(year, "no age class contains the year")
	default:
		uris := make([]string, len(matches))
		for i, m := range matches {
			uris[i] = m.ArchetypeURI
		}
		return AgeClassEntry{}, apperrors.NewAgeClassNotFoundError(year,
			fmt.Sprintf("year matches %d overlapping age classes", len(matches))).WithMetadata("archetypeUris", uris)
	}
}

// Edge returns the edge of the age class containing year.
func (idx *AgeClassIndex) Edge(year int) (int, error) {
	e, err := idx.Lookup(year)
	if err != nil {
		return 0, err
	}
	edge, err := e.AgeClass.Edge()
	if err != nil {
		return 0, apperrors.NewConfigurationError(fmt.Sprintf("archetype %s: %v", e.ArchetypeURI, err))
	}
	return edge, nil
}

// Entries returns the age classes ordered from oldest to youngest.
func (idx *AgeClassIndex) Entries() []AgeClassEntry {
	return append([]AgeClassEntry(nil), idx.entries...)
}

// Contiguous reports whether the classes have neither gaps nor overlaps.
func (idx *AgeClassIndex) Contiguous() bool { return len(idx.problems) == 0 }

// Problems describes every gap or overlap found.
func (idx *AgeClassIndex) Problems() []string {
	return append([]string(nil), idx.problems...)
}

// YearRange returns the smallest and largest finite bound of all classes,
// used to enumerate the years the index covers.
func (idx *AgeClassIndex) YearRange() (lo, hi int, ok bool) {
	for _, e := range idx.entries {
		for _, b := range []*int{e.AgeClass.MinAge, e.AgeClass.MaxAge} {
			if b == nil {
				continue
			}
			if !ok || *b < lo {
				lo = *b
			}
			if !ok || *b > hi {
				hi = *b
			}
			ok = true
		}
	}
	return lo, hi, ok
}
