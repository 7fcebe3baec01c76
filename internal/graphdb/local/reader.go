// Package local serves the archetype database from a YAML file.
package local

import (
	"context"
	"fmt"
	"os"

	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

var errNotFound = fmt.Errorf("not found in archetype database")

// Reader implements graphdb.Reader over an in-memory Document. It is
// read-only after construction.
type Reader struct {
	sys           *units.System
	archetypes    map[string]graphdb.ArchetypeRecord
	constructions map[string]graphdb.ConstructionRecord
}

var _ graphdb.Reader = (*Reader)(nil)

// Open reads and indexes the YAML database at path.
func Open(path string, sys *units.System) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archetype database %s: %w", path, err)
	}
	doc, err := graphdb.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(doc, sys), nil
}

// New indexes an already parsed document.
func New(doc *graphdb.Document, sys *units.System) *Reader {
	r := &Reader{
		sys:           sys,
		archetypes:    make(map[string]graphdb.ArchetypeRecord, len(doc.Archetypes)),
		constructions: make(map[string]graphdb.ConstructionRecord, len(doc.Constructions)),
	}
	for _, a := range doc.Archetypes {
		r.archetypes[a.URI] = a
	}
	for _, c := range doc.Constructions {
		r.constructions[c.Name] = c
	}
	return r
}

func (r *Reader) archetype(op, uri string) (graphdb.ArchetypeRecord, error) {
	a, ok := r.archetypes[uri]
	if !ok {
		return graphdb.ArchetypeRecord{}, apperrors.NewExternalDataError(op, uri, errNotFound)
	}
	return a, nil
}

func (r *Reader) GetBldgElemConstructionArchetype(ctx context.Context, uri string) (*models.BuildingElementConstructionSet, error) {
	a, err := r.archetype(graphdb.OpConstructionArchetype, uri)
	if err != nil {
		return nil, err
	}
	set := &models.BuildingElementConstructionSet{Name: uri, ShortName: a.ShortName()}
	for key, names := range a.Constructions {
		elem, err := models.ParseBuildingElement(key)
		if err != nil {
			return nil, apperrors.NewExternalDataError(graphdb.OpConstructionArchetype, uri, err)
		}
		constrs := make([]models.Construction, 0, len(names))
		for _, name := range names {
			c, err := r.construction(graphdb.OpConstructionArchetype, name)
			if err != nil {
				return nil, err
			}
			constrs = append(constrs, c)
		}
		switch elem {
		case models.ElementWall:
			set.Walls = constrs
		case models.ElementRoof:
			set.Roofs = constrs
		case models.ElementGroundfloor:
			set.Grounds = constrs
		case models.ElementWindow:
			set.Windows = constrs
		case models.ElementInternalCeiling:
			set.InternalCeilings = constrs
		}
	}
	return set, nil
}

func (r *Reader) construction(op, name string) (models.Construction, error) {
	rec, ok := r.constructions[name]
	if !ok {
		return models.Construction{}, apperrors.NewExternalDataError(op, name, errNotFound)
	}
	elem, err := models.ParseBuildingElement(rec.Element)
	if err != nil {
		return models.Construction{}, apperrors.NewExternalDataError(op, name, err)
	}
	layers, err := graphdb.ToLayers(r.sys, rec.Layers)
	if err != nil {
		return models.Construction{}, apperrors.NewExternalDataError(op, name, err)
	}
	return models.Construction{Name: rec.Name, BuildingElement: elem, Layers: layers}, nil
}

func (r *Reader) GetAgeClassOfArchetype(ctx context.Context, uri string) (models.AgeClass, error) {
	a, err := r.archetype(graphdb.OpAgeClass, uri)
	if err != nil {
		return models.AgeClass{}, err
	}
	return a.AgeClass, nil
}

func (r *Reader) GetWindowShadingConstr(ctx context.Context, uri string) (models.WindowShadingConstruction, error) {
	a, err := r.archetype(graphdb.OpWindowShading, uri)
	if err != nil {
		return models.WindowShadingConstruction{}, err
	}
	return models.WindowShadingConstruction{
		Name:               a.WindowShading.Name,
		IsShadingAvailable: a.WindowShading.IsShadingAvailable,
		Material:           a.WindowShading.Material,
	}, nil
}

func (r *Reader) GetGlazingRatio(ctx context.Context, uri string) (units.Quantity, error) {
	a, err := r.archetype(graphdb.OpGlazingRatio, uri)
	if err != nil {
		return units.Quantity{}, err
	}
	return r.sys.Quantity(a.GlazingRatio, units.Dimensionless)
}

func (r *Reader) GetInfiltrationRate(ctx context.Context, uri string) (units.Quantity, error) {
	a, err := r.archetype(graphdb.OpInfiltrationRate, uri)
	if err != nil {
		return units.Quantity{}, err
	}
	return r.sys.Quantity(a.InfiltrationRate, units.PerHour)
}

func (r *Reader) GetLayers(ctx context.Context, constructionName string) ([]models.Layer, error) {
	c, err := r.construction(graphdb.OpLayers, constructionName)
	if err != nil {
		return nil, err
	}
	return c.Layers, nil
}

func (r *Reader) GetWindowLayers(ctx context.Context, constructionName string) ([]models.Layer, error) {
	c, err := r.construction(graphdb.OpWindowLayers, constructionName)
	if err != nil {
		return nil, err
	}
	if c.BuildingElement != models.ElementWindow {
		return nil, apperrors.NewExternalDataError(graphdb.OpWindowLayers, constructionName,
			fmt.Errorf("construction is a %s, not a window", c.BuildingElement))
	}
	return c.Layers, nil
}
