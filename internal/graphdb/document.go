// internal/graphdb/document.go
package graphdb

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// Document is the serialized form of an archetype database. The local
// reader serves it directly and the postgres importer loads it into tables.
type Document struct {
	Archetypes    []ArchetypeRecord    `yaml:"archetypes"`
	Constructions []ConstructionRecord `yaml:"constructions"`
}

type ArchetypeRecord struct {
	URI              string          `yaml:"uri"`
	Name             string          `yaml:"name"`
	AgeClass         models.AgeClass `yaml:"age_class"`
	GlazingRatio     float64         `yaml:"glazing_ratio"`
	InfiltrationRate float64         `yaml:"infiltration_rate"` // 1/h
	WindowShading    ShadingRecord   `yaml:"window_shading"`
	// Constructions lists construction names per element; the first entry
	// is the default unless the configuration pins another one.
	Constructions map[string][]string `yaml:"constructions"`
}

type ShadingRecord struct {
	Name               string `yaml:"name"`
	IsShadingAvailable bool   `yaml:"is_shading_available"`
	Material           string `yaml:"material"`
}

type ConstructionRecord struct {
	Name    string        `yaml:"name"`
	Element string        `yaml:"element"`
	Layers  []LayerRecord `yaml:"layers"`
}

type LayerRecord struct {
	Name      string  `yaml:"name"`
	Thickness float64 `yaml:"thickness"`
	Unit      string  `yaml:"unit"` // defaults to m
	Material  string  `yaml:"material"`
}

// ParseDocument decodes and checks a YAML archetype database.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse archetype database: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	if len(d.Archetypes) == 0 {
		return fmt.Errorf("archetype database lists no archetypes")
	}
	seen := map[string]bool{}
	for i, a := range d.Archetypes {
		if a.URI == "" {
			return fmt.Errorf("archetypes[%d]: uri is required", i)
		}
		if seen[a.URI] {
			return fmt.Errorf("archetype %s is defined twice", a.URI)
		}
		seen[a.URI] = true
		for elem := range a.Constructions {
			if _, err := models.ParseBuildingElement(elem); err != nil {
				return fmt.Errorf("archetype %s: %w", a.URI, err)
			}
		}
	}
	names := map[string]bool{}
	for i, c := range d.Constructions {
		if c.Name == "" {
			return fmt.Errorf("constructions[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("construction %s is defined twice", c.Name)
		}
		names[c.Name] = true
		if _, err := models.ParseBuildingElement(c.Element); err != nil {
			return fmt.Errorf("construction %s: %w", c.Name, err)
		}
	}
	return nil
}

// ShortName is the configured name or, if empty, the last URI segment.
func (a ArchetypeRecord) ShortName() string {
	if a.Name != "" {
		return a.Name
	}
	return models.ShortName(a.URI)
}

// ToLayers converts layer records with the unit system of the run.
func ToLayers(sys *units.System, records []LayerRecord) ([]models.Layer, error) {
	layers := make([]models.Layer, 0, len(records))
	for _, r := range records {
		u := units.Meter
		if r.Unit != "" {
			parsed, err := sys.Parse(r.Unit)
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", r.Name, err)
			}
			u = parsed
		}
		thickness, err := sys.Quantity(r.Thickness, u)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", r.Name, err)
		}
		layers = append(layers, models.Layer{Name: r.Name, Thickness: thickness, Material: r.Material})
	}
	return layers, nil
}
