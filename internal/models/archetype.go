// internal/models/archetype.go
package models

import "archetype-resolver/internal/units"

// RetrofitRecord holds the year each element was last renovated. A nil
// year means the element was never retrofitted.
type RetrofitRecord struct {
	Wall        *int `json:"yearOfWallRetrofit,omitempty"`
	Roof        *int `json:"yearOfRoofRetrofit,omitempty"`
	Groundfloor *int `json:"yearOfGroundfloorRetrofit,omitempty"`
	Window      *int `json:"yearOfWindowRetrofit,omitempty"`
}

// YearFor returns the retrofit year of elem, nil when absent.
func (r RetrofitRecord) YearFor(elem BuildingElement) *int {
	switch elem {
	case ElementWall:
		return r.Wall
	case ElementRoof:
		return r.Roof
	case ElementGroundfloor:
		return r.Groundfloor
	case ElementWindow:
		return r.Window
	}
	return nil
}

// ResolvedArchetype is the construction description of one building. It is
// a value handed to the caller and never retained by the resolver.
type ResolvedArchetype struct {
	ArchetypeURI string   `json:"archetypeUri"`
	AgeClass     AgeClass `json:"ageClass"`

	Wall            ConstructionOptions `json:"wall"`
	Roof            ConstructionOptions `json:"roof"`
	Groundfloor     ConstructionOptions `json:"groundfloor"`
	WindowGlass     ConstructionOptions `json:"windowGlass"`
	InternalCeiling ConstructionOptions `json:"internalCeiling"`

	WindowFrame   WindowFrameConstruction   `json:"windowFrame"`
	WindowShading WindowShadingConstruction `json:"windowShading"`

	GlazingRatio                     units.Quantity `json:"glazingRatio"`
	InfiltrationRate                 units.Quantity `json:"infiltrationRate"`
	InfiltrationFractionProfileValue units.Quantity `json:"infiltrationFractionProfileValue"`

	Installations InstallationsCharacteristics `json:"installations"`

	// RetrofittedElements lists the elements replaced by a retrofit
	// construction, in evaluation order.
	RetrofittedElements []BuildingElement `json:"retrofittedElements,omitempty"`
}

// Element returns a pointer to the options of elem so callers can read or
// replace them uniformly.
func (r *ResolvedArchetype) Element(elem BuildingElement) *ConstructionOptions {
	switch elem {
	case ElementWall:
		return &r.Wall
	case ElementRoof:
		return &r.Roof
	case ElementGroundfloor:
		return &r.Groundfloor
	case ElementWindow:
		return &r.WindowGlass
	case ElementInternalCeiling:
		return &r.InternalCeiling
	}
	return nil
}

// IsRetrofitted reports whether elem was replaced by a retrofit construction.
func (r *ResolvedArchetype) IsRetrofitted(elem BuildingElement) bool {
	for _, e := range r.RetrofittedElements {
		if e == elem {
			return true
		}
	}
	return false
}
