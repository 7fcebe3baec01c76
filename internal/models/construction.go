// internal/models/construction.go
package models

import (
	"fmt"
	"strings"

	"archetype-resolver/internal/units"
)

// BuildingElement names the part of the envelope a construction belongs to.
type BuildingElement string

const (
	ElementWall            BuildingElement = "wall"
	ElementRoof            BuildingElement = "roof"
	ElementGroundfloor     BuildingElement = "groundfloor"
	ElementWindow          BuildingElement = "window"
	ElementInternalCeiling BuildingElement = "internal_ceiling"
)

// RetrofittableElements are the elements a retrofit record can override,
// in the order they are evaluated.
var RetrofittableElements = []BuildingElement{
	ElementWall,
	ElementRoof,
	ElementGroundfloor,
	ElementWindow,
}

// ParseBuildingElement accepts the element names used in config and csv
// headers, case-insensitively.
func ParseBuildingElement(s string) (BuildingElement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wall", "walls":
		return ElementWall, nil
	case "roof", "roofs":
		return ElementRoof, nil
	case "groundfloor", "ground", "grounds":
		return ElementGroundfloor, nil
	case "window", "windows":
		return ElementWindow, nil
	case "internal_ceiling", "internalceiling", "internal_ceilings":
		return ElementInternalCeiling, nil
	}
	return "", fmt.Errorf("unknown building element %q", s)
}

// Layer is one material layer of a construction, outside to inside.
type Layer struct {
	Name      string         `json:"name" yaml:"name"`
	Thickness units.Quantity `json:"thickness" yaml:"thickness"`
	Material  string         `json:"material" yaml:"material"`
}

// Construction is an ordered stack of layers for one building element.
// Window glass constructions use ElementWindow.
type Construction struct {
	Name            string          `json:"name"`
	BuildingElement BuildingElement `json:"buildingElement"`
	Layers          []Layer         `json:"layers,omitempty"`
}

// ShortName strips any namespace prefix from a URI-style name.
func (c Construction) ShortName() string {
	return ShortName(c.Name)
}

// ShortName returns the part after the last '#' or '/'.
func ShortName(uri string) string {
	if i := strings.LastIndexAny(uri, "#/"); i >= 0 && i < len(uri)-1 {
		return uri[i+1:]
	}
	return uri
}

// ConstructionOptions holds the default construction of an element and the
// alternatives a retrofit or variability step may choose from.
type ConstructionOptions struct {
	Default Construction   `json:"default"`
	Options []Construction `json:"options"`
}

// Single narrows the options to exactly one construction.
func Single(c Construction) ConstructionOptions {
	return ConstructionOptions{Default: c, Options: []Construction{c}}
}

// WindowShadingConstruction describes the shading device of an archetype.
type WindowShadingConstruction struct {
	Name               string `json:"name"`
	IsShadingAvailable bool   `json:"isShadingAvailable"`
	Material           string `json:"material,omitempty"`
}

// WindowFrameConstruction is the fixed frame used for every archetype.
type WindowFrameConstruction struct {
	Name             string         `json:"name"`
	FrameConductance units.Quantity `json:"frameConductance"`
	FrameWidth       units.Quantity `json:"frameWidth"`
}

// BuildingElementConstructionSet is the raw archetype as delivered by the
// graph data source. It carries no building-specific state and is what the
// resolver caches per archetype URI.
type BuildingElementConstructionSet struct {
	Name             string         `json:"name"`
	ShortName        string         `json:"shortName"`
	Walls            []Construction `json:"walls"`
	Roofs            []Construction `json:"roofs"`
	Grounds          []Construction `json:"grounds"`
	Windows          []Construction `json:"windows"`
	InternalCeilings []Construction `json:"internalCeilings"`
}

// OptionsFor returns the construction options of one element.
func (s *BuildingElementConstructionSet) OptionsFor(elem BuildingElement) []Construction {
	switch elem {
	case ElementWall:
		return s.Walls
	case ElementRoof:
		return s.Roofs
	case ElementGroundfloor:
		return s.Grounds
	case ElementWindow:
		return s.Windows
	case ElementInternalCeiling:
		return s.InternalCeilings
	}
	return nil
}
