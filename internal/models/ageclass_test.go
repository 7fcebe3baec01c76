package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioAgeClasses() []AgeClass {
	return []AgeClass{
		NewAgeClass(Year(1991), nil),
		NewAgeClass(nil, Year(1918)),
		NewAgeClass(Year(1919), Year(1990)),
	}
}

func TestAgeClass_Contains(t *testing.T) {
	tests := []struct {
		name string
		ac   AgeClass
		year int
		want bool
	}{
		{"open below, inside", NewAgeClass(nil, Year(1918)), 1700, true},
		{"open below, at max", NewAgeClass(nil, Year(1918)), 1918, true},
		{"open below, above max", NewAgeClass(nil, Year(1918)), 1919, false},
		{"closed, at min", NewAgeClass(Year(1919), Year(1990)), 1919, true},
		{"closed, below min", NewAgeClass(Year(1919), Year(1990)), 1918, false},
		{"open above", NewAgeClass(Year(1991), nil), 2050, true},
		{"fully open", NewAgeClass(nil, nil), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ac.Contains(tt.year))
		})
	}
}

func TestAgeClass_Edge(t *testing.T) {
	edge, err := NewAgeClass(Year(1919), Year(1990)).Edge()
	require.NoError(t, err)
	assert.Equal(t, 1990, edge)

	edge, err = NewAgeClass(Year(1991), nil).Edge()
	require.NoError(t, err)
	assert.Equal(t, 1991, edge)

	edge, err = NewAgeClass(nil, Year(1918)).Edge()
	require.NoError(t, err)
	assert.Equal(t, 1918, edge)

	_, err = NewAgeClass(nil, nil).Edge()
	assert.Error(t, err)
}

func TestAreAgeClassesConsecutive(t *testing.T) {
	assert.True(t, AreAgeClassesConsecutive(scenarioAgeClasses()))

	gap := []AgeClass{
		NewAgeClass(nil, Year(1918)),
		NewAgeClass(Year(1920), Year(1990)),
		NewAgeClass(Year(1991), nil),
	}
	assert.False(t, AreAgeClassesConsecutive(gap))
	assert.Contains(t, AgeClassGaps(gap)[0], "gap")

	overlap := []AgeClass{
		NewAgeClass(nil, Year(1918)),
		NewAgeClass(Year(1918), Year(1990)),
		NewAgeClass(Year(1991), nil),
	}
	assert.False(t, AreAgeClassesConsecutive(overlap))
	assert.Contains(t, AgeClassGaps(overlap)[0], "overlap")

	openInside := []AgeClass{
		NewAgeClass(nil, Year(1918)),
		NewAgeClass(Year(1919), nil),
		NewAgeClass(Year(1991), nil),
	}
	assert.False(t, AreAgeClassesConsecutive(openInside))
}

func TestMatchingAgeClasses_Coverage(t *testing.T) {
	classes := scenarioAgeClasses()
	for year := 1800; year <= 2100; year++ {
		assert.Len(t, MatchingAgeClasses(year, classes), 1, "year %d", year)
	}
}

func TestSortAgeClasses(t *testing.T) {
	sorted := SortAgeClasses(scenarioAgeClasses())
	require.Len(t, sorted, 3)
	assert.Nil(t, sorted[0].MinAge)
	assert.Equal(t, 1919, *sorted[1].MinAge)
	assert.Equal(t, 1991, *sorted[2].MinAge)
	assert.Equal(t, "[1991,+inf]", sorted[2].String())
}
