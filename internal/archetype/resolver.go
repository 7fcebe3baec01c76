// Package archetype resolves buildings to their constructional archetype.
//
// A Resolver is built once per run with the per-building lookup tables and
// asked once per building. It caches the raw construction set of every
// archetype it has seen, so N buildings sharing M archetypes cost exactly M
// construction-set queries. Building-specific values are never cached.
// A Resolver is not safe for concurrent use.
package archetype

import (
	"context"

	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/common/metrics"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/lookup"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// Factory maps a building id to its resolved archetype.
type Factory interface {
	ArchetypeFor(ctx context.Context, buildingID int) (*models.ResolvedArchetype, error)
}

// DefaultConstructionSelector picks the default among construction options.
type DefaultConstructionSelector interface {
	GetDefaultConstruction(options []models.Construction, shortName string) (models.Construction, error)
}

// archetypeSource decides which archetype a building uses.
type archetypeSource interface {
	archetypeOf(ctx context.Context, b lookup.BuildingInfo) (uri string, ageClass models.AgeClass, err error)
}

// Resolver implements Factory for all registered strategies.
type Resolver struct {
	name     string
	reader   graphdb.Reader
	selector DefaultConstructionSelector
	basics   *ConstructionBasics
	logger   logger.Logger

	infiltrationProfile units.Quantity
	buildings           lookup.Buildings
	source              archetypeSource

	// retrofits is nil when overrides are disabled.
	retrofits lookup.RetrofitRecords
	index     *AgeClassIndex

	cache map[string]*models.BuildingElementConstructionSet
}

var _ Factory = (*Resolver)(nil)

// Name is the registry key the resolver was created with.
func (r *Resolver) Name() string { return r.name }

// AgeClasses returns the age-class index, nil for strategies without one.
func (r *Resolver) AgeClasses() *AgeClassIndex { return r.index }

// Buildings returns the building ids known to the resolver, ascending.
func (r *Resolver) Buildings() []int { return r.buildings.IDs() }

// CachedArchetypes returns how many construction sets are cached.
func (r *Resolver) CachedArchetypes() int { return len(r.cache) }

// ArchetypeFor resolves one building. Lookup, configuration and external
// data errors propagate unchanged; isolating failures across a batch is up
// to the caller.
func (r *Resolver) ArchetypeFor(ctx context.Context, buildingID int) (*models.ResolvedArchetype, error) {
	b, err := r.buildings.Get(buildingID)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, b)
}

func (r *Resolver) resolve(ctx context.Context, b lookup.BuildingInfo) (*models.ResolvedArchetype, error) {
	uri, ageClass, err := r.source.archetypeOf(ctx, b)
	if err != nil {
		return nil, err
	}

	resolved, err := r.assemble(ctx, b, uri, ageClass)
	if err != nil {
		return nil, err
	}
	if r.retrofits != nil {
		if err := r.applyRetrofits(ctx, b, resolved); err != nil {
			return nil, err
		}
	}

	r.logger.Info("assigned archetype", map[string]interface{}{
		"archetypeUri": uri,
		"buildingId":   b.ID,
	})
	return resolved, nil
}

// constructionSet returns the raw set of uri, querying the reader only on
// the first request for that uri.
func (r *Resolver) constructionSet(ctx context.Context, uri string) (*models.BuildingElementConstructionSet, error) {
	if set, ok := r.cache[uri]; ok {
		metrics.ConstructionSetCache.WithLabelValues("hit").Inc()
		return set, nil
	}
	metrics.ConstructionSetCache.WithLabelValues("miss").Inc()
	set, err := r.reader.GetBldgElemConstructionArchetype(ctx, uri)
	if err != nil {
		return nil, err
	}
	r.cache[uri] = set
	return set, nil
}

func (r *Resolver) assemble(ctx context.Context, b lookup.BuildingInfo, uri string, ageClass models.AgeClass) (*models.ResolvedArchetype, error) {
	set, err := r.constructionSet(ctx, uri)
	if err != nil {
		return nil, err
	}

	resolved := &models.ResolvedArchetype{
		ArchetypeURI:                     uri,
		AgeClass:                         ageClass,
		WindowFrame:                      r.basics.WindowFrame(),
		InfiltrationFractionProfileValue: r.infiltrationProfile,
		Installations:                    r.basics.Installations(b.DHWCarrier, b.HeatingCarrier),
	}
	for _, elem := range []models.BuildingElement{
		models.ElementWall,
		models.ElementRoof,
		models.ElementGroundfloor,
		models.ElementWindow,
		models.ElementInternalCeiling,
	} {
		options := set.OptionsFor(elem)
		def, err := r.selector.GetDefaultConstruction(options, set.ShortName)
		if err != nil {
			return nil, err
		}
		*resolved.Element(elem) = models.ConstructionOptions{
			Default: def,
			Options: append([]models.Construction(nil), options...),
		}
	}

	if resolved.WindowShading, err = r.reader.GetWindowShadingConstr(ctx, uri); err != nil {
		return nil, err
	}
	if resolved.GlazingRatio, err = r.reader.GetGlazingRatio(ctx, uri); err != nil {
		return nil, err
	}
	if resolved.InfiltrationRate, err = r.reader.GetInfiltrationRate(ctx, uri); err != nil {
		return nil, err
	}
	return resolved, nil
}

// applyRetrofits replaces every element whose retrofit year falls into an
// age class with a larger edge than the construction year's class. The
// replacement is the only option left for that element. A window retrofit
// also takes infiltration rate and shading from the retrofit archetype.
func (r *Resolver) applyRetrofits(ctx context.Context, b lookup.BuildingInfo, resolved *models.ResolvedArchetype) error {
	record := r.retrofits.For(b.ID)
	constructionEdge, err := r.index.Edge(b.YearOfConstruction)
	if err != nil {
		return err
	}

	for _, elem := range models.RetrofittableElements {
		year := record.YearFor(elem)
		if year == nil {
			continue
		}
		retrofitClass, err := r.index.Lookup(*year)
		if err != nil {
			return err
		}
		retrofitEdge, err := r.index.Edge(*year)
		if err != nil {
			return err
		}
		if retrofitEdge <= constructionEdge {
			continue
		}

		current := resolved.Element(elem)
		name := RetrofitConstructionName(current.Default.Name, retrofitEdge)
		var layers []models.Layer
		if elem == models.ElementWindow {
			layers, err = r.reader.GetWindowLayers(ctx, name)
		} else {
			layers, err = r.reader.GetLayers(ctx, name)
		}
		if err != nil {
			return err
		}
		*current = models.Single(models.Construction{Name: name, BuildingElement: elem, Layers: layers})
		resolved.RetrofittedElements = append(resolved.RetrofittedElements, elem)
		metrics.RetrofitOverrides.WithLabelValues(string(elem)).Inc()

		if elem == models.ElementWindow {
			if resolved.InfiltrationRate, err = r.reader.GetInfiltrationRate(ctx, retrofitClass.ArchetypeURI); err != nil {
				return err
			}
			if resolved.WindowShading, err = r.reader.GetWindowShadingConstr(ctx, retrofitClass.ArchetypeURI); err != nil {
				return err
			}
		}
	}
	return nil
}
