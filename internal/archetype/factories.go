// internal/archetype/factories.go
package archetype

import (
	"context"
	"fmt"
	"sort"

	"archetype-resolver/internal/common/config"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/lookup"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// Registry keys of the built-in strategies.
const (
	FactoryAgeClass         = "graphdb_age_class"
	FactoryRetrofit         = config.FactoryRetrofit
	FactoryBuildingSpecific = config.FactoryBuildingSpecific
)

// Inputs carries everything a strategy may need. Tables left nil are read
// from the files named in Config when the strategy needs them.
type Inputs struct {
	Config   *config.Config
	Reader   graphdb.Reader
	Selector DefaultConstructionSelector
	Units    *units.System
	Logger   logger.Logger

	Buildings          lookup.Buildings
	Retrofits          lookup.RetrofitRecords
	BuildingArchetypes lookup.BuildingArchetypes
}

func (in *Inputs) resolver(name string) (*Resolver, error) {
	if in.Config == nil || in.Reader == nil {
		return nil, apperrors.NewConfigurationError("factory inputs need a config and a reader")
	}
	if in.Units == nil {
		in.Units = units.NewSystem()
	}
	if in.Logger == nil {
		in.Logger = logger.NewNoOpLogger()
	}
	if in.Selector == nil {
		in.Selector = graphdb.NewDefaultSelector(in.Config.Archetypes)
	}
	if in.Buildings == nil {
		b, err := lookup.ReadBuildings(in.Config.BuildingInfoFile)
		if err != nil {
			return nil, err
		}
		in.Buildings = b
	}
	profile, err := in.Units.Quantity(in.Config.FixedInfiltrationProfileValue, units.Dimensionless)
	if err != nil {
		return nil, apperrors.NewConfigurationError(err.Error())
	}
	return &Resolver{
		name:                name,
		reader:              in.Reader,
		selector:            in.Selector,
		basics:              NewConstructionBasics(in.Config.ConstructionBasics, in.Units),
		logger:              in.Logger.WithFields(map[string]interface{}{"factory": name}),
		infiltrationProfile: profile,
		buildings:           in.Buildings,
		cache:               map[string]*models.BuildingElementConstructionSet{},
	}, nil
}

// ConfiguredArchetypeURIs returns the URIs of the archetypes block in a
// stable order.
func ConfiguredArchetypeURIs(cfg *config.Config) []string {
	keys := make([]string, 0, len(cfg.Archetypes))
	for k := range cfg.Archetypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	uris := make([]string, 0, len(keys))
	for _, k := range keys {
		uris = append(uris, cfg.Archetypes[k].URI)
	}
	return uris
}

// NewAgeClassFactory selects archetypes by construction year only.
func NewAgeClassFactory(ctx context.Context, in Inputs) (Factory, error) {
	r, err := newYearResolver(ctx, &in, FactoryAgeClass)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewRetrofitFactory selects archetypes by construction year and applies
// the past retrofits of each building.
func NewRetrofitFactory(ctx context.Context, in Inputs) (Factory, error) {
	r, err := newYearResolver(ctx, &in, FactoryRetrofit)
	if err != nil {
		return nil, err
	}
	if in.Retrofits == nil {
		if in.Retrofits, err = lookup.ReadRetrofitRecords(in.Config.RetrofitFile); err != nil {
			return nil, err
		}
	}
	r.retrofits = in.Retrofits
	return r, nil
}

func newYearResolver(ctx context.Context, in *Inputs, name string) (*Resolver, error) {
	r, err := in.resolver(name)
	if err != nil {
		return nil, err
	}
	if r.index, err = NewAgeClassIndex(ctx, in.Reader, ConfiguredArchetypeURIs(in.Config), r.logger); err != nil {
		return nil, err
	}
	r.source = ageClassSource{index: r.index}
	return r, nil
}

// NewBuildingSpecificFactory takes the archetype of each building from the
// building archetype table instead of the construction year.
func NewBuildingSpecificFactory(ctx context.Context, in Inputs) (Factory, error) {
	r, err := in.resolver(FactoryBuildingSpecific)
	if err != nil {
		return nil, err
	}
	if in.BuildingArchetypes == nil {
		if in.BuildingArchetypes, err = lookup.ReadBuildingArchetypes(in.Config.BuildingArchetypeFile); err != nil {
			return nil, err
		}
	}
	r.source = &buildingSpecificSource{
		archetypes: in.BuildingArchetypes,
		reader:     in.Reader,
		ageClasses: map[string]models.AgeClass{},
	}
	return r, nil
}

type ageClassSource struct {
	index *AgeClassIndex
}

func (s ageClassSource) archetypeOf(_ context.Context, b lookup.BuildingInfo) (string, models.AgeClass, error) {
	e, err := s.index.Lookup(b.YearOfConstruction)
	if err != nil {
		return "", models.AgeClass{}, fmt.Errorf("building %d: %w", b.ID, err)
	}
	return e.ArchetypeURI, e.AgeClass, nil
}

type buildingSpecificSource struct {
	archetypes lookup.BuildingArchetypes
	reader     graphdb.Reader
	// age classes per URI, kept next to the construction set cache
	ageClasses map[string]models.AgeClass
}

func (s *buildingSpecificSource) archetypeOf(ctx context.Context, b lookup.BuildingInfo) (string, models.AgeClass, error) {
	uri, err := s.archetypes.Get(b.ID)
	if err != nil {
		return "", models.AgeClass{}, err
	}
	if ac, ok := s.ageClasses[uri]; ok {
		return uri, ac, nil
	}
	ac, err := s.reader.GetAgeClassOfArchetype(ctx, uri)
	if err != nil {
		return "", models.AgeClass{}, err
	}
	s.ageClasses[uri] = ac
	return uri, ac, nil
}
