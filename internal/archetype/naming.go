// internal/archetype/naming.go
package archetype

import (
	"fmt"
	"strconv"
	"strings"
)

// retrofitMarker separates the base construction name from the age class
// edge in retrofit construction names. The archetype database must provide
// a construction under every name RetrofitConstructionName can produce for
// the retrofits it is used with.
const retrofitMarker = "_R_"

// RetrofitConstructionName names the construction that replaces base when
// the element was retrofitted in the age class with the given edge, e.g.
// "Wall_1918_A" and 1990 give "Wall_1918_A_R_1990".
func RetrofitConstructionName(base string, edge int) string {
	return fmt.Sprintf("%s%s%d", base, retrofitMarker, edge)
}

// ParseRetrofitConstructionName splits a name produced by
// RetrofitConstructionName. ok is false for any other name.
func ParseRetrofitConstructionName(name string) (base string, edge int, ok bool) {
	i := strings.LastIndex(name, retrofitMarker)
	if i <= 0 {
		return "", 0, false
	}
	edge, err := strconv.Atoi(name[i+len(retrofitMarker):])
	if err != nil {
		return "", 0, false
	}
	return name[:i], edge, true
}
