// internal/models/energy_source.go
package models

import (
	"fmt"
	"strings"
)

// EnergySource is the energy carrier of a building's heating or domestic
// hot water system.
type EnergySource string

const (
	DHWOil             EnergySource = "DHW_OIL"
	DHWGas             EnergySource = "DHW_GAS"
	DHWElectricity     EnergySource = "DHW_ELECTRICITY"
	DHWHeatPump        EnergySource = "DHW_HEAT_PUMP"
	DHWWood            EnergySource = "DHW_WOOD"
	DHWDistrictHeating EnergySource = "DHW_DISTRICT_HEATING"
	DHWSolar           EnergySource = "DHW_SOLAR"
	DHWOther           EnergySource = "DHW_OTHER"

	HeatingOil             EnergySource = "HEATING_OIL"
	HeatingGas             EnergySource = "HEATING_GAS"
	HeatingElectricity     EnergySource = "HEATING_ELECTRICITY"
	HeatingHeatPump        EnergySource = "HEATING_HEAT_PUMP"
	HeatingWood            EnergySource = "HEATING_WOOD"
	HeatingDistrictHeating EnergySource = "HEATING_DISTRICT_HEATING"
	HeatingSolar           EnergySource = "HEATING_SOLAR"
	HeatingOther           EnergySource = "HEATING_OTHER"
)

var energySources = map[EnergySource]bool{
	DHWOil: true, DHWGas: true, DHWElectricity: true, DHWHeatPump: true,
	DHWWood: true, DHWDistrictHeating: true, DHWSolar: true, DHWOther: true,
	HeatingOil: true, HeatingGas: true, HeatingElectricity: true, HeatingHeatPump: true,
	HeatingWood: true, HeatingDistrictHeating: true, HeatingSolar: true, HeatingOther: true,
}

// IsDHW reports whether the carrier belongs to the hot water family.
func (e EnergySource) IsDHW() bool { return strings.HasPrefix(string(e), "DHW_") }

// IsHeating reports whether the carrier belongs to the heating family.
func (e EnergySource) IsHeating() bool { return strings.HasPrefix(string(e), "HEATING_") }

// ParseEnergySource accepts either the full name ("HEATING_GAS") or a bare
// carrier ("gas") combined with the expected family prefix.
func ParseEnergySource(s, family string) (EnergySource, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "_")
	v = strings.ReplaceAll(v, "-", "_")
	if v == "" {
		return EnergySource(family + "_OTHER"), nil
	}
	if energySources[EnergySource(v)] {
		return EnergySource(v), nil
	}
	if e := EnergySource(family + "_" + v); energySources[e] {
		return e, nil
	}
	return "", fmt.Errorf("unknown %s energy source %q", strings.ToLower(family), s)
}

// InstallationsCharacteristics collects the building-specific installation
// values. They depend on the energy carriers and therefore differ between
// buildings that share an archetype.
type InstallationsCharacteristics struct {
	DHWCarrier                        EnergySource `json:"dhwCarrier"`
	HeatingCarrier                    EnergySource `json:"heatingCarrier"`
	ElectricAppliancesFractionRadiant float64      `json:"electricAppliancesFractionRadiant"`
	LightingFractionRadiant           float64      `json:"lightingFractionRadiant"`
	LightingFractionVisible           float64      `json:"lightingFractionVisible"`
	LightingReturnAirFraction         float64      `json:"lightingReturnAirFraction"`
	DHWFractionLost                   float64      `json:"dhwFractionLost"`
}
