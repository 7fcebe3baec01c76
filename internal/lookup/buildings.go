// internal/lookup/buildings.go
package lookup

import (
	"fmt"
	"io"
	"sort"

	"archetype-resolver/internal/common/config"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/models"
)

// BuildingInfo is what the resolver needs to know about one building.
type BuildingInfo struct {
	ID                 int                 `json:"id"`
	YearOfConstruction int                 `json:"yearOfConstruction"`
	DHWCarrier         models.EnergySource `json:"dhwCarrier"`
	HeatingCarrier     models.EnergySource `json:"heatingCarrier"`
}

// Buildings indexes building info by id.
type Buildings map[int]BuildingInfo

// IDs returns the building ids in ascending order.
func (b Buildings) IDs() []int {
	ids := make([]int, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Get returns the info of id or a BUILDING_NOT_FOUND error.
func (b Buildings) Get(id int) (BuildingInfo, error) {
	info, ok := b[id]
	if !ok {
		return BuildingInfo{}, apperrors.NewBuildingNotFoundError(id, "building info")
	}
	return info, nil
}

// ReadBuildings loads the building info table. Energy carrier columns are
// optional; buildings without them get the OTHER carrier.
func ReadBuildings(cfg config.LookupFileConfig) (Buildings, error) {
	out := Buildings{}
	err := openTable(cfg.Path, cfg,
		[]string{FieldGisFid, FieldYearOfConstruction},
		[]string{FieldDHWCarrier, FieldHeatingCarrier},
		out.add)
	return out, err
}

// ParseBuildings is ReadBuildings for an already opened table.
func ParseBuildings(r io.Reader, cfg config.LookupFileConfig) (Buildings, error) {
	out := Buildings{}
	err := readTable(r, "building info", cfg,
		[]string{FieldGisFid, FieldYearOfConstruction},
		[]string{FieldDHWCarrier, FieldHeatingCarrier},
		out.add)
	return out, err
}

func (b Buildings) add(_ int, values row) error {
	id, err := parseID(values[FieldGisFid])
	if err != nil {
		return err
	}
	if _, dup := b[id]; dup {
		return fmt.Errorf("building %d is listed twice", id)
	}
	year, ok, err := parseOptionalInt(values[FieldYearOfConstruction])
	if err != nil {
		return fmt.Errorf("year of construction: %w", err)
	}
	if !ok {
		return fmt.Errorf("building %d has no year of construction", id)
	}
	dhw, err := models.ParseEnergySource(values[FieldDHWCarrier], "DHW")
	if err != nil {
		return err
	}
	heating, err := models.ParseEnergySource(values[FieldHeatingCarrier], "HEATING")
	if err != nil {
		return err
	}
	b[id] = BuildingInfo{ID: id, YearOfConstruction: year, DHWCarrier: dhw, HeatingCarrier: heating}
	return nil
}
