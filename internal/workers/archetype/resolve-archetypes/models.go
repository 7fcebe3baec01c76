// internal/workers/archetype/resolve-archetypes/models.go
package resolvearchetypes

import (
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/report"
)

type Input struct {
	BuildingIDs          []int `json:"buildingIds"`
	IncludeConstructions *bool `json:"includeConstructions,omitempty"`
}

type Output struct {
	RunID             string       `json:"runId"`
	Factory           string       `json:"factory"`
	Archetypes        []report.Row `json:"archetypes"`
	FailedBuildingIDs []int        `json:"failedBuildingIds"`
	ResolvedCount     int          `json:"resolvedCount"`
	// Constructions is keyed by building id and only set on request.
	Constructions map[string]*models.ResolvedArchetype `json:"constructions,omitempty"`
}
