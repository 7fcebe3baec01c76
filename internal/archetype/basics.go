// internal/archetype/basics.go
package archetype

import (
	"strings"

	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// ConstructionBasics holds the values shared by every archetype: the fixed
// window frame and the installation characteristics.
type ConstructionBasics struct {
	cfg config.ConstructionBasicsConfig
	sys *units.System
}

func NewConstructionBasics(cfg config.ConstructionBasicsConfig, sys *units.System) *ConstructionBasics {
	return &ConstructionBasics{cfg: cfg, sys: sys}
}

func (b *ConstructionBasics) WindowFrame() models.WindowFrameConstruction {
	f := b.cfg.WindowFrame
	return models.WindowFrameConstruction{
		Name:             f.Name,
		FrameConductance: b.sys.MustQuantity(f.FrameConductance, units.WattPerM2K),
		FrameWidth:       b.sys.MustQuantity(f.FrameWidth, units.Meter),
	}
}

// Installations returns the installation characteristics for a building
// with the given carriers. The DHW loss fraction may be overridden per
// carrier, keyed by the full carrier name or the bare carrier.
func (b *ConstructionBasics) Installations(dhw, heating models.EnergySource) models.InstallationsCharacteristics {
	inst := b.cfg.Installations
	lost := inst.DHWFractionLost
	for _, key := range []string{string(dhw), strings.TrimPrefix(string(dhw), "DHW_")} {
		if v, ok := inst.DHWFractionLostPerCarrier[strings.ToLower(key)]; ok {
			lost = v
			break
		}
	}
	return models.InstallationsCharacteristics{
		DHWCarrier:                        dhw,
		HeatingCarrier:                    heating,
		ElectricAppliancesFractionRadiant: inst.ElectricAppliancesFractionRadiant,
		LightingFractionRadiant:           inst.LightingFractionRadiant,
		LightingFractionVisible:           inst.LightingFractionVisible,
		LightingReturnAirFraction:         inst.LightingReturnAirFraction,
		DHWFractionLost:                   lost,
	}
}
