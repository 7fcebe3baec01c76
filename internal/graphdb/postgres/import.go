// internal/graphdb/postgres/import.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/models"
)

// Schema creates the tables the Reader queries.
const Schema = `CREATE TABLE IF NOT EXISTS archetypes (
	uri               TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	min_age           INTEGER,
	max_age           INTEGER,
	glazing_ratio     DOUBLE PRECISION NOT NULL,
	infiltration_rate DOUBLE PRECISION NOT NULL,
	shading_name      TEXT,
	shading_available BOOLEAN NOT NULL DEFAULT FALSE,
	shading_material  TEXT
);
CREATE TABLE IF NOT EXISTS constructions (
	name    TEXT PRIMARY KEY,
	element TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS construction_layers (
	construction_name TEXT NOT NULL REFERENCES constructions(name) ON DELETE CASCADE,
	position          INTEGER NOT NULL,
	layer_name        TEXT NOT NULL,
	thickness         DOUBLE PRECISION NOT NULL,
	thickness_unit    TEXT NOT NULL DEFAULT 'm',
	material          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (construction_name, position)
);
CREATE TABLE IF NOT EXISTS archetype_constructions (
	archetype_uri     TEXT NOT NULL REFERENCES archetypes(uri) ON DELETE CASCADE,
	element           TEXT NOT NULL,
	position          INTEGER NOT NULL,
	construction_name TEXT NOT NULL REFERENCES constructions(name),
	PRIMARY KEY (archetype_uri, element, position)
)`

const (
	upsertConstruction = `INSERT INTO constructions (name, element) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET element = EXCLUDED.element`
	deleteLayers = `DELETE FROM construction_layers WHERE construction_name = $1`
	insertLayer  = `INSERT INTO construction_layers (construction_name, position, layer_name, thickness, thickness_unit, material) VALUES ($1, $2, $3, $4, $5, $6)`

	upsertArchetype = `INSERT INTO archetypes (uri, name, min_age, max_age, glazing_ratio, infiltration_rate, shading_name, shading_available, shading_material)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (uri) DO UPDATE SET name = EXCLUDED.name, min_age = EXCLUDED.min_age, max_age = EXCLUDED.max_age,
glazing_ratio = EXCLUDED.glazing_ratio, infiltration_rate = EXCLUDED.infiltration_rate,
shading_name = EXCLUDED.shading_name, shading_available = EXCLUDED.shading_available, shading_material = EXCLUDED.shading_material`
	deleteArchetypeConstructions = `DELETE FROM archetype_constructions WHERE archetype_uri = $1`
	insertArchetypeConstruction  = `INSERT INTO archetype_constructions (archetype_uri, element, position, construction_name) VALUES ($1, $2, $3, $4)`
)

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create archetype schema: %w", err)
	}
	return nil
}

// Import writes doc into the tables in one transaction, replacing rows of
// archetypes and constructions that already exist.
func Import(ctx context.Context, db *sql.DB, doc *graphdb.Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, c := range doc.Constructions {
		elem, err := models.ParseBuildingElement(c.Element)
		if err != nil {
			return fmt.Errorf("construction %s: %w", c.Name, err)
		}
		if _, err := tx.ExecContext(ctx, upsertConstruction, c.Name, string(elem)); err != nil {
			return fmt.Errorf("construction %s: %w", c.Name, err)
		}
		if _, err := tx.ExecContext(ctx, deleteLayers, c.Name); err != nil {
			return fmt.Errorf("construction %s: %w", c.Name, err)
		}
		for i, l := range c.Layers {
			unit := l.Unit
			if unit == "" {
				unit = "m"
			}
			if _, err := tx.ExecContext(ctx, insertLayer, c.Name, i, l.Name, l.Thickness, unit, l.Material); err != nil {
				return fmt.Errorf("construction %s layer %d: %w", c.Name, i, err)
			}
		}
	}

	for _, a := range doc.Archetypes {
		if _, err := tx.ExecContext(ctx, upsertArchetype,
			a.URI, a.ShortName(), nullInt(a.AgeClass.MinAge), nullInt(a.AgeClass.MaxAge),
			a.GlazingRatio, a.InfiltrationRate,
			a.WindowShading.Name, a.WindowShading.IsShadingAvailable, a.WindowShading.Material,
		); err != nil {
			return fmt.Errorf("archetype %s: %w", a.URI, err)
		}
		if _, err := tx.ExecContext(ctx, deleteArchetypeConstructions, a.URI); err != nil {
			return fmt.Errorf("archetype %s: %w", a.URI, err)
		}
		for _, key := range sortedKeys(a.Constructions) {
			elem, err := models.ParseBuildingElement(key)
			if err != nil {
				return fmt.Errorf("archetype %s: %w", a.URI, err)
			}
			for i, name := range a.Constructions[key] {
				if _, err := tx.ExecContext(ctx, insertArchetypeConstruction, a.URI, string(elem), i, name); err != nil {
					return fmt.Errorf("archetype %s %s: %w", a.URI, elem, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
