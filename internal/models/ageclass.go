// internal/models/ageclass.go
package models

import (
	"fmt"
	"sort"
	"strconv"
)

// AgeClass is a construction-year bracket [MinAge, MaxAge], both bounds
// inclusive. A nil bound is unbounded on that side.
type AgeClass struct {
	MinAge *int `json:"minAge,omitempty" yaml:"min_age,omitempty"`
	MaxAge *int `json:"maxAge,omitempty" yaml:"max_age,omitempty"`
}

// NewAgeClass is a convenience constructor; pass nil for an open bound.
func NewAgeClass(minAge, maxAge *int) AgeClass {
	return AgeClass{MinAge: minAge, MaxAge: maxAge}
}

// Year returns a pointer to y, for building age classes and retrofit records.
func Year(y int) *int { return &y }

// Contains reports whether year falls inside the class.
func (a AgeClass) Contains(year int) bool {
	if a.MinAge != nil && year < *a.MinAge {
		return false
	}
	if a.MaxAge != nil && year > *a.MaxAge {
		return false
	}
	return true
}

// Edge is the value used to order classes and to name retrofit
// constructions: MaxAge when set, otherwise MinAge.
func (a AgeClass) Edge() (int, error) {
	if a.MaxAge != nil {
		return *a.MaxAge, nil
	}
	if a.MinAge != nil {
		return *a.MinAge, nil
	}
	return 0, fmt.Errorf("age class has neither min nor max age")
}

// Key is a stable string form usable as a map key and in logs.
func (a AgeClass) Key() string {
	return a.String()
}

func (a AgeClass) String() string {
	lo, hi := "-inf", "+inf"
	if a.MinAge != nil {
		lo = strconv.Itoa(*a.MinAge)
	}
	if a.MaxAge != nil {
		hi = strconv.Itoa(*a.MaxAge)
	}
	return "[" + lo + "," + hi + "]"
}

// SortAgeClasses orders classes by lower bound, unbounded first.
func SortAgeClasses(classes []AgeClass) []AgeClass {
	out := make([]AgeClass, len(classes))
	copy(out, classes)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].MinAge, out[j].MinAge
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		}
		return *a < *b
	})
	return out
}

// AreAgeClassesConsecutive reports whether the classes, once sorted, leave
// neither gaps nor overlaps. Only the first class may be open below and only
// the last open above.
func AreAgeClassesConsecutive(classes []AgeClass) bool {
	return len(AgeClassGaps(classes)) == 0
}

// AgeClassGaps describes every gap or overlap between neighbouring classes.
// An empty result means the classes are consecutive.
func AgeClassGaps(classes []AgeClass) []string {
	sorted := SortAgeClasses(classes)
	var problems []string
	for i, ac := range sorted {
		if ac.MinAge != nil && ac.MaxAge != nil && *ac.MinAge > *ac.MaxAge {
			problems = append(problems, fmt.Sprintf("%s has min age above max age", ac))
		}
		if i > 0 && ac.MinAge == nil {
			problems = append(problems, fmt.Sprintf("%s is open below but not the oldest class", ac))
		}
		if i < len(sorted)-1 && ac.MaxAge == nil {
			problems = append(problems, fmt.Sprintf("%s is open above but not the youngest class", ac))
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.MaxAge == nil || ac.MinAge == nil {
			continue
		}
		switch {
		case *ac.MinAge > *prev.MaxAge+1:
			problems = append(problems, fmt.Sprintf("gap between %s and %s", prev, ac))
		case *ac.MinAge <= *prev.MaxAge:
			problems = append(problems, fmt.Sprintf("overlap between %s and %s", prev, ac))
		}
	}
	return problems
}

// MatchingAgeClasses returns every class containing year.
func MatchingAgeClasses(year int, classes []AgeClass) []AgeClass {
	var out []AgeClass
	for _, ac := range classes {
		if ac.Contains(year) {
			out = append(out, ac)
		}
	}
	return out
}
