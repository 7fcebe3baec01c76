// internal/lookup/retrofit.go
package lookup

import (
	"fmt"
	"io"

	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/models"
)

var retrofitFields = []string{
	FieldWallRetrofit,
	FieldRoofRetrofit,
	FieldGroundfloorRetrofit,
	FieldWindowRetrofit,
}

// RetrofitRecords holds the past retrofits per building id. A building
// without an entry was never retrofitted.
type RetrofitRecords map[int]models.RetrofitRecord

// ReadRetrofitRecords loads the past-retrofit table. All four year columns
// must exist; empty cells mean the element was never retrofitted.
func ReadRetrofitRecords(cfg config.LookupFileConfig) (RetrofitRecords, error) {
	out := RetrofitRecords{}
	err := openTable(cfg.Path, cfg, append([]string{FieldGisFid}, retrofitFields...), nil, out.add)
	return out, err
}

// ParseRetrofitRecords is ReadRetrofitRecords for an already opened table.
func ParseRetrofitRecords(r io.Reader, cfg config.LookupFileConfig) (RetrofitRecords, error) {
	out := RetrofitRecords{}
	err := readTable(r, "retrofit records", cfg, append([]string{FieldGisFid}, retrofitFields...), nil, out.add)
	return out, err
}

func (rr RetrofitRecords) add(_ int, values row) error {
	id, err := parseID(values[FieldGisFid])
	if err != nil {
		return err
	}
	if _, dup := rr[id]; dup {
		return fmt.Errorf("building %d is listed twice", id)
	}
	var rec models.RetrofitRecord
	targets := []**int{&rec.Wall, &rec.Roof, &rec.Groundfloor, &rec.Window}
	for i, field := range retrofitFields {
		year, ok, err := parseOptionalInt(values[field])
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if ok {
			*targets[i] = models.Year(year)
		}
	}
	rr[id] = rec
	return nil
}

// For returns the record of id; the zero record when there is none.
func (rr RetrofitRecords) For(id int) models.RetrofitRecord {
	return rr[id]
}
