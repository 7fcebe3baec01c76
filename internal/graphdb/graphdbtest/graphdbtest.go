// Package graphdbtest provides archetype databases and call-counting
// readers for tests.
package graphdbtest

import (
	"context"
	"errors"
	"sync"

	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/graphdb/local"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// URIs of the scenario archetypes.
const (
	URIA1 = "http://uesl_data/sources/archetypes/A1"
	URIA2 = "http://uesl_data/sources/archetypes/A2"
	URIA3 = "http://uesl_data/sources/archetypes/A3"
)

// ScenarioDocument has three contiguous age classes:
// (-inf,1918] -> A1, [1919,1990] -> A2, [1991,+inf) -> A3.
// Retrofit constructions exist for A1 and A2 defaults at the edges of
// the newer classes.
func ScenarioDocument() *graphdb.Document {
	doc := &graphdb.Document{}
	add := func(uri, name string, ac models.AgeClass, glazing, infiltration float64, shading bool) {
		doc.Archetypes = append(doc.Archetypes, graphdb.ArchetypeRecord{
			URI:              uri,
			Name:             name,
			AgeClass:         ac,
			GlazingRatio:     glazing,
			InfiltrationRate: infiltration,
			WindowShading:    graphdb.ShadingRecord{Name: "Shade_" + name, IsShadingAvailable: shading, Material: "fabric"},
			Constructions: map[string][]string{
				"wall":             {"Wall_" + name, "Wall_" + name + "_alt"},
				"roof":             {"Roof_" + name},
				"groundfloor":      {"Ground_" + name},
				"window":           {"Window_" + name},
				"internal_ceiling": {"Ceiling_" + name},
			},
		})
		for _, c := range []struct{ prefix, elem string }{
			{"Wall_", "wall"}, {"Roof_", "roof"}, {"Ground_", "groundfloor"},
			{"Window_", "window"}, {"Ceiling_", "internal_ceiling"},
		} {
			doc.Constructions = append(doc.Constructions, construction(c.prefix+name, c.elem))
		}
		doc.Constructions = append(doc.Constructions, construction("Wall_"+name+"_alt", "wall"))
	}
	add(URIA1, "A1", models.NewAgeClass(nil, models.Year(1918)), 0.15, 0.9, false)
	add(URIA2, "A2", models.NewAgeClass(models.Year(1919), models.Year(1990)), 0.2, 0.6, false)
	add(URIA3, "A3", models.NewAgeClass(models.Year(1991), nil), 0.3, 0.3, true)

	for _, base := range []string{"A1", "A2"} {
		for _, edge := range []string{"1990", "1991"} {
			if base == "A2" && edge == "1990" {
				continue
			}
			doc.Constructions = append(doc.Constructions,
				construction("Wall_"+base+"_R_"+edge, "wall"),
				construction("Roof_"+base+"_R_"+edge, "roof"),
				construction("Ground_"+base+"_R_"+edge, "groundfloor"),
				construction("Window_"+base+"_R_"+edge, "window"),
			)
		}
	}
	return doc
}

func construction(name, elem string) graphdb.ConstructionRecord {
	return graphdb.ConstructionRecord{
		Name:    name,
		Element: elem,
		Layers:  []graphdb.LayerRecord{{Name: name + "_layer", Thickness: 0.2, Material: "Concrete"}},
	}
}

// NewScenarioReader serves ScenarioDocument from memory.
func NewScenarioReader() *local.Reader {
	return local.New(ScenarioDocument(), units.NewSystem())
}

// CountingReader wraps a reader and counts calls per operation. It is safe
// for concurrent use.
type CountingReader struct {
	Next graphdb.Reader
	// Fail makes every call of the named operation return FailErr.
	Fail    map[string]bool
	FailErr error

	mu    sync.Mutex
	calls map[string]int
	args  map[string][]string
}

var _ graphdb.Reader = (*CountingReader)(nil)

func NewCountingReader(next graphdb.Reader) *CountingReader {
	return &CountingReader{Next: next, calls: map[string]int{}, args: map[string][]string{}, Fail: map[string]bool{}}
}

func (c *CountingReader) record(op, arg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
	c.args[op] = append(c.args[op], arg)
	if c.Fail[op] {
		if c.FailErr != nil {
			return c.FailErr
		}
		return errors.New("injected failure")
	}
	return nil
}

// Calls returns how often op was called.
func (c *CountingReader) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// Args returns the arguments op was called with, in call order.
func (c *CountingReader) Args(op string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.args[op]...)
}

func (c *CountingReader) GetBldgElemConstructionArchetype(ctx context.Context, uri string) (*models.BuildingElementConstructionSet, error) {
	if err := c.record(graphdb.OpConstructionArchetype, uri); err != nil {
		return nil, err
	}
	return c.Next.GetBldgElemConstructionArchetype(ctx, uri)
}

func (c *CountingReader) GetAgeClassOfArchetype(ctx context.Context, uri string) (models.AgeClass, error) {
	if err := c.record(graphdb.OpAgeClass, uri); err != nil {
		return models.AgeClass{}, err
	}
	return c.Next.GetAgeClassOfArchetype(ctx, uri)
}

func (c *CountingReader) GetWindowShadingConstr(ctx context.Context, uri string) (models.WindowShadingConstruction, error) {
	if err := c.record(graphdb.OpWindowShading, uri); err != nil {
		return models.WindowShadingConstruction{}, err
	}
	return c.Next.GetWindowShadingConstr(ctx, uri)
}

func (c *CountingReader) GetGlazingRatio(ctx context.Context, uri string) (units.Quantity, error) {
	if err := c.record(graphdb.OpGlazingRatio, uri); err != nil {
		return units.Quantity{}, err
	}
	return c.Next.GetGlazingRatio(ctx, uri)
}

func (c *CountingReader) GetInfiltrationRate(ctx context.Context, uri string) (units.Quantity, error) {
	if err := c.record(graphdb.OpInfiltrationRate, uri); err != nil {
		return units.Quantity{}, err
	}
	return c.Next.GetInfiltrationRate(ctx, uri)
}

func (c *CountingReader) GetLayers(ctx context.Context, constructionName string) ([]models.Layer, error) {
	if err := c.record(graphdb.OpLayers, constructionName); err != nil {
		return nil, err
	}
	return c.Next.GetLayers(ctx, constructionName)
}

func (c *CountingReader) GetWindowLayers(ctx context.Context, constructionName string) ([]models.Layer, error) {
	if err := c.record(graphdb.OpWindowLayers, constructionName); err != nil {
		return nil, err
	}
	return c.Next.GetWindowLayers(ctx, constructionName)
}
