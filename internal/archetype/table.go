// internal/archetype/table.go
package archetype

import (
	"context"
	"fmt"

	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/lookup"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// YearInfo summarizes the archetype a construction year resolves to.
type YearInfo struct {
	Year             int             `json:"year"`
	ArchetypeURI     string          `json:"archetypeUri"`
	AgeClass         models.AgeClass `json:"ageClass"`
	GlazingRatio     units.Quantity  `json:"glazingRatio"`
	InfiltrationRate units.Quantity  `json:"infiltrationRate"`
	Wall             string          `json:"wall"`
	Window           string          `json:"window"`
}

// AgeClassTable resolves one synthetic building per year in [from, to].
// Years outside every age class are skipped. Only year based strategies
// support the table.
func AgeClassTable(ctx context.Context, r *Resolver, from, to int) ([]YearInfo, error) {
	if r.index == nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("factory %s does not select archetypes by year", r.name))
	}
	if from > to {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid year range %d..%d", from, to))
	}
	var out []YearInfo
	for year := from; year <= to; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := r.index.Lookup(year); err != nil {
			continue
		}
		a, err := r.resolve(ctx, lookup.BuildingInfo{
			ID:                 -year,
			YearOfConstruction: year,
			DHWCarrier:         models.DHWOther,
			HeatingCarrier:     models.HeatingOther,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, YearInfo{
			Year:             year,
			ArchetypeURI:     a.ArchetypeURI,
			AgeClass:         a.AgeClass,
			GlazingRatio:     a.GlazingRatio,
			InfiltrationRate: a.InfiltrationRate,
			Wall:             a.Wall.Default.Name,
			Window:           a.WindowGlass.Default.Name,
		})
	}
	return out, nil
}
