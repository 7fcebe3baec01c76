// internal/lookup/archetypes.go
package lookup

import (
	"fmt"
	"io"

	"archetype-resolver/internal/common/config"
	apperrors "archetype-resolver/internal/common/errors"
)

// BuildingArchetypes maps building ids to the archetype URI assigned to
// them explicitly.
type BuildingArchetypes map[int]string

// ReadBuildingArchetypes loads the building to archetype table.
func ReadBuildingArchetypes(cfg config.LookupFileConfig) (BuildingArchetypes, error) {
	out := BuildingArchetypes{}
	err := openTable(cfg.Path, cfg, []string{FieldGisFid, FieldConstructionArchetype}, nil, out.add)
	return out, err
}

// ParseBuildingArchetypes is ReadBuildingArchetypes for an already opened table.
func ParseBuildingArchetypes(r io.Reader, cfg config.LookupFileConfig) (BuildingArchetypes, error) {
	out := BuildingArchetypes{}
	err := readTable(r, "building archetypes", cfg, []string{FieldGisFid, FieldConstructionArchetype}, nil, out.add)
	return out, err
}

func (ba BuildingArchetypes) add(_ int, values row) error {
	id, err := parseID(values[FieldGisFid])
	if err != nil {
		return err
	}
	uri := values[FieldConstructionArchetype]
	if uri == "" {
		return fmt.Errorf("building %d has no archetype", id)
	}
	if prev, dup := ba[id]; dup && prev != uri {
		return fmt.Errorf("building %d is assigned to %s and %s", id, prev, uri)
	}
	ba[id] = uri
	return nil
}

// Get returns the archetype URI of id or a BUILDING_NOT_FOUND error.
func (ba BuildingArchetypes) Get(id int) (string, error) {
	uri, ok := ba[id]
	if !ok {
		return "", apperrors.NewBuildingNotFoundError(id, "building archetype table")
	}
	return uri, nil
}
