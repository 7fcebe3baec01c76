// Package postgres serves the archetype database from relational tables.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

var errNotFound = errors.New("not found in archetype database")

const (
	archetypeQuery = `SELECT name, min_age, max_age, glazing_ratio, infiltration_rate, shading_name, shading_available, shading_material FROM archetypes WHERE uri = $1`

	constructionSetQuery = `SELECT ac.element, ac.construction_name, l.layer_name, l.thickness, l.thickness_unit, l.material
FROM archetype_constructions ac
LEFT JOIN construction_layers l ON l.construction_name = ac.construction_name
WHERE ac.archetype_uri = $1
ORDER BY ac.element, ac.position, l.position`

	layersQuery = `SELECT c.element, l.layer_name, l.thickness, l.thickness_unit, l.material
FROM constructions c
LEFT JOIN construction_layers l ON l.construction_name = c.name
WHERE c.name = $1
ORDER BY l.position`
)

// Reader implements graphdb.Reader with one query per call. Put the
// rediscache decorator in front of it to share results between processes.
type Reader struct {
	db  *sql.DB
	sys *units.System
}

var _ graphdb.Reader = (*Reader)(nil)

func NewReader(db *sql.DB, sys *units.System) *Reader {
	return &Reader{db: db, sys: sys}
}

type archetypeRow struct {
	name             string
	minAge, maxAge   sql.NullInt64
	glazingRatio     float64
	infiltrationRate float64
	shadingName      sql.NullString
	shadingAvailable bool
	shadingMaterial  sql.NullString
}

func (r *Reader) loadArchetype(ctx context.Context, op, uri string) (*archetypeRow, error) {
	var row archetypeRow
	err := r.db.QueryRowContext(ctx, archetypeQuery, uri).Scan(
		&row.name,
		&row.minAge,
		&row.maxAge,
		&row.glazingRatio,
		&row.infiltrationRate,
		&row.shadingName,
		&row.shadingAvailable,
		&row.shadingMaterial,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewExternalDataError(op, uri, errNotFound)
	}
	if err != nil {
		return nil, apperrors.NewExternalDataError(op, uri, err)
	}
	return &row, nil
}

func (r *Reader) GetBldgElemConstructionArchetype(ctx context.Context, uri string) (*models.BuildingElementConstructionSet, error) {
	const op = graphdb.OpConstructionArchetype

	row, err := r.loadArchetype(ctx, op, uri)
	if err != nil {
		return nil, err
	}
	shortName := row.name
	if shortName == "" {
		shortName = models.ShortName(uri)
	}
	set := &models.BuildingElementConstructionSet{Name: uri, ShortName: shortName}

	rows, err := r.db.QueryContext(ctx, constructionSetQuery, uri)
	if err != nil {
		return nil, apperrors.NewExternalDataError(op, uri, err)
	}
	defer rows.Close()

	byElement := map[models.BuildingElement][]models.Construction{}
	var current *models.Construction
	flush := func() {
		if current != nil {
			byElement[current.BuildingElement] = append(byElement[current.BuildingElement], *current)
		}
	}
	for rows.Next() {
		var (
			element, name string
			layer         layerColumns
		)
		if err := rows.Scan(&element, &name, &layer.name, &layer.thickness, &layer.unit, &layer.material); err != nil {
			return nil, apperrors.NewExternalDataError(op, uri, err)
		}
		elem, err := models.ParseBuildingElement(element)
		if err != nil {
			return nil, apperrors.NewExternalDataError(op, uri, err)
		}
		if current == nil || current.Name != name || current.BuildingElement != elem {
			flush()
			current = &models.Construction{Name: name, BuildingElement: elem}
		}
		if layer.name.Valid {
			l, err := layer.toLayer(r.sys)
			if err != nil {
				return nil, apperrors.NewExternalDataError(op, name, err)
			}
			current.Layers = append(current.Layers, l)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalDataError(op, uri, err)
	}
	flush()

	set.Walls = byElement[models.ElementWall]
	set.Roofs = byElement[models.ElementRoof]
	set.Grounds = byElement[models.ElementGroundfloor]
	set.Windows = byElement[models.ElementWindow]
	set.InternalCeilings = byElement[models.ElementInternalCeiling]
	return set, nil
}

func (r *Reader) GetAgeClassOfArchetype(ctx context.Context, uri string) (models.AgeClass, error) {
	row, err := r.loadArchetype(ctx, graphdb.OpAgeClass, uri)
	if err != nil {
		return models.AgeClass{}, err
	}
	var ac models.AgeClass
	if row.minAge.Valid {
		ac.MinAge = models.Year(int(row.minAge.Int64))
	}
	if row.maxAge.Valid {
		ac.MaxAge = models.Year(int(row.maxAge.Int64))
	}
	return ac, nil
}

func (r *Reader) GetWindowShadingConstr(ctx context.Context, uri string) (models.WindowShadingConstruction, error) {
	row, err := r.loadArchetype(ctx, graphdb.OpWindowShading, uri)
	if err != nil {
		return models.WindowShadingConstruction{}, err
	}
	return models.WindowShadingConstruction{
		Name:               row.shadingName.String,
		IsShadingAvailable: row.shadingAvailable,
		Material:           row.shadingMaterial.String,
	}, nil
}

func (r *Reader) GetGlazingRatio(ctx context.Context, uri string) (units.Quantity, error) {
	row, err := r.loadArchetype(ctx, graphdb.OpGlazingRatio, uri)
	if err != nil {
		return units.Quantity{}, err
	}
	return r.sys.Quantity(row.glazingRatio, units.Dimensionless)
}

func (r *Reader) GetInfiltrationRate(ctx context.Context, uri string) (units.Quantity, error) {
	row, err := r.loadArchetype(ctx, graphdb.OpInfiltrationRate, uri)
	if err != nil {
		return units.Quantity{}, err
	}
	return r.sys.Quantity(row.infiltrationRate, units.PerHour)
}

func (r *Reader) GetLayers(ctx context.Context, constructionName string) ([]models.Layer, error) {
	_, layers, err := r.layers(ctx, graphdb.OpLayers, constructionName)
	return layers, err
}

func (r *Reader) GetWindowLayers(ctx context.Context, constructionName string) ([]models.Layer, error) {
	elem, layers, err := r.layers(ctx, graphdb.OpWindowLayers, constructionName)
	if err != nil {
		return nil, err
	}
	if elem != models.ElementWindow {
		return nil, apperrors.NewExternalDataError(graphdb.OpWindowLayers, constructionName,
			fmt.Errorf("construction is a %s, not a window", elem))
	}
	return layers, nil
}

func (r *Reader) layers(ctx context.Context, op, name string) (models.BuildingElement, []models.Layer, error) {
	rows, err := r.db.QueryContext(ctx, layersQuery, name)
	if err != nil {
		return "", nil, apperrors.NewExternalDataError(op, name, err)
	}
	defer rows.Close()

	var (
		elem   models.BuildingElement
		layers []models.Layer
		found  bool
	)
	for rows.Next() {
		var (
			element string
			layer   layerColumns
		)
		if err := rows.Scan(&element, &layer.name, &layer.thickness, &layer.unit, &layer.material); err != nil {
			return "", nil, apperrors.NewExternalDataError(op, name, err)
		}
		found = true
		if elem, err = models.ParseBuildingElement(element); err != nil {
			return "", nil, apperrors.NewExternalDataError(op, name, err)
		}
		if !layer.name.Valid {
			continue
		}
		l, err := layer.toLayer(r.sys)
		if err != nil {
			return "", nil, apperrors.NewExternalDataError(op, name, err)
		}
		layers = append(layers, l)
	}
	if err := rows.Err(); err != nil {
		return "", nil, apperrors.NewExternalDataError(op, name, err)
	}
	if !found {
		return "", nil, apperrors.NewExternalDataError(op, name, errNotFound)
	}
	return elem, layers, nil
}

// layerColumns are nullable because constructions are left joined to layers.
type layerColumns struct {
	name      sql.NullString
	thickness sql.NullFloat64
	unit      sql.NullString
	material  sql.NullString
}

func (c layerColumns) toLayer(sys *units.System) (models.Layer, error) {
	layers, err := graphdb.ToLayers(sys, []graphdb.LayerRecord{{
		Name:      c.name.String,
		Thickness: c.thickness.Float64,
		Unit:      c.unit.String,
		Material:  c.material.String,
	}})
	if err != nil {
		return models.Layer{}, err
	}
	return layers[0], nil
}
