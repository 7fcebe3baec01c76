// Package graphdb defines the graph data source the archetype resolver
// reads constructions from, together with its backends.
package graphdb

import (
	"context"

	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// Reader is the capability consumed by the resolver. Every call is
// synchronous and has no side effect visible to the resolver. Failures are
// returned as EXTERNAL_DATA_FAILED errors.
type Reader interface {
	GetBldgElemConstructionArchetype(ctx context.Context, uri string) (*models.BuildingElementConstructionSet, error)
	GetAgeClassOfArchetype(ctx context.Context, uri string) (models.AgeClass, error)
	GetWindowShadingConstr(ctx context.Context, uri string) (models.WindowShadingConstruction, error)
	GetGlazingRatio(ctx context.Context, uri string) (units.Quantity, error)
	GetInfiltrationRate(ctx context.Context, uri string) (units.Quantity, error)
	GetLayers(ctx context.Context, constructionName string) ([]models.Layer, error)
	GetWindowLayers(ctx context.Context, constructionName string) ([]models.Layer, error)
}

// Operation names used in errors, logs and metrics.
const (
	OpConstructionArchetype = "get_bldg_elem_construction_archetype"
	OpAgeClass              = "get_age_class_of_archetype"
	OpWindowShading         = "get_window_shading_constr"
	OpGlazingRatio          = "get_glazing_ratio"
	OpInfiltrationRate      = "get_infiltration_rate"
	OpLayers                = "get_layers"
	OpWindowLayers          = "get_window_layers"
)
