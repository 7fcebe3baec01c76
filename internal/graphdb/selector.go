// internal/graphdb/selector.go
package graphdb

import (
	"fmt"
	"strings"

	"archetype-resolver/internal/common/config"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/models"
)

// DefaultSelector picks the default construction among the options of an
// element. An archetype whose default_construction_specific block is active
// gets the configured construction, every other archetype the first option.
type DefaultSelector struct {
	specific map[string]config.DefaultConstructionSpecific
}

// NewDefaultSelector indexes the configured archetypes by their config key
// and by the short name of their URI, case-insensitively.
func NewDefaultSelector(archetypes map[string]config.ArchetypeConfig) *DefaultSelector {
	s := &DefaultSelector{specific: map[string]config.DefaultConstructionSpecific{}}
	for key, a := range archetypes {
		if !a.DefaultConstructionSpecific.Active {
			continue
		}
		s.specific[strings.ToLower(key)] = a.DefaultConstructionSpecific
		if a.URI != "" {
			s.specific[strings.ToLower(models.ShortName(a.URI))] = a.DefaultConstructionSpecific
		}
	}
	return s
}

// GetDefaultConstruction returns the default of options for the archetype
// named shortName.
func (s *DefaultSelector) GetDefaultConstruction(options []models.Construction, shortName string) (models.Construction, error) {
	if len(options) == 0 {
		return models.Construction{}, apperrors.NewExternalDataError("get_default_construction", shortName,
			fmt.Errorf("archetype has no construction options"))
	}
	pinned, ok := s.specific[strings.ToLower(shortName)]
	if !ok {
		return options[0], nil
	}
	want := configuredName(pinned, options[0].BuildingElement)
	if want == "" {
		return options[0], nil
	}
	for _, c := range options {
		if c.Name == want || c.ShortName() == want {
			return c, nil
		}
	}
	return models.Construction{}, apperrors.NewConfigurationError(fmt.Sprintf(
		"default %s construction %q of archetype %s is not among its options",
		options[0].BuildingElement, want, shortName))
}

func configuredName(pinned config.DefaultConstructionSpecific, elem models.BuildingElement) string {
	switch elem {
	case models.ElementWall:
		return pinned.Wall
	case models.ElementRoof:
		return pinned.Roof
	case models.ElementGroundfloor:
		return pinned.Groundfloor
	case models.ElementWindow:
		return pinned.Window
	case models.ElementInternalCeiling:
		return pinned.InternalCeiling
	}
	return ""
}
