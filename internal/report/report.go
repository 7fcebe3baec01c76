// Package report exports the outcome of a batch run: one row per building
// to csv and elasticsearch, and a summary message to SNS.
package report

import (
	"context"
	"errors"
	"time"

	"archetype-resolver/internal/archetype"
	"archetype-resolver/internal/common/logger"
)

// Row is the flat record of one building in a batch.
type Row struct {
	RunID            string    `json:"runId"`
	Factory          string    `json:"factory"`
	BuildingID       int       `json:"buildingId"`
	Status           string    `json:"status"`
	ErrorCode        string    `json:"errorCode,omitempty"`
	ArchetypeURI     string    `json:"archetypeUri,omitempty"`
	AgeClass         string    `json:"ageClass,omitempty"`
	GlazingRatio     float64   `json:"glazingRatio"`
	InfiltrationRate float64   `json:"infiltrationRate"`
	Wall             string    `json:"wall,omitempty"`
	Roof             string    `json:"roof,omitempty"`
	Groundfloor      string    `json:"groundfloor,omitempty"`
	Window           string    `json:"window,omitempty"`
	InternalCeiling  string    `json:"internalCeiling,omitempty"`
	Retrofitted      []string  `json:"retrofitted,omitempty"`
	Timestamp        time.Time `json:"@timestamp"`
}

const (
	StatusResolved = "resolved"
	StatusFailed   = "failed"
)

// Rows flattens res in processing order.
func Rows(res *archetype.BatchResult) []Row {
	rows := make([]Row, 0, len(res.IDs))
	for _, id := range res.IDs {
		row := Row{RunID: res.RunID, Factory: res.Factory, BuildingID: id, Timestamp: res.StartedAt}
		a, ok := res.Resolved[id]
		if !ok {
			row.Status = StatusFailed
			row.ErrorCode = res.ErrorCode(id)
			rows = append(rows, row)
			continue
		}
		row.Status = StatusResolved
		row.ArchetypeURI = a.ArchetypeURI
		row.AgeClass = a.AgeClass.String()
		row.GlazingRatio = a.GlazingRatio.Value
		row.InfiltrationRate = a.InfiltrationRate.Value
		row.Wall = a.Wall.Default.Name
		row.Roof = a.Roof.Default.Name
		row.Groundfloor = a.Groundfloor.Default.Name
		row.Window = a.WindowGlass.Default.Name
		row.InternalCeiling = a.InternalCeiling.Default.Name
		for _, e := range a.RetrofittedElements {
			row.Retrofitted = append(row.Retrofitted, string(e))
		}
		rows = append(rows, row)
	}
	return rows
}

// Summary is the message published once per batch.
type Summary struct {
	RunID             string         `json:"runId"`
	Factory           string         `json:"factory"`
	StartedAt         time.Time      `json:"startedAt"`
	DurationMs        int64          `json:"durationMs"`
	Total             int            `json:"total"`
	Resolved          int            `json:"resolved"`
	Failed            int            `json:"failed"`
	FailedBuildingIDs []int          `json:"failedBuildingIds"`
	Archetypes        map[string]int `json:"archetypes"`
	Retrofits         map[string]int `json:"retrofits,omitempty"`
}

// Summarize counts buildings per archetype URI and retrofitted element.
func Summarize(res *archetype.BatchResult) Summary {
	s := Summary{
		RunID:             res.RunID,
		Factory:           res.Factory,
		StartedAt:         res.StartedAt,
		DurationMs:        res.Duration.Milliseconds(),
		Total:             len(res.IDs),
		Resolved:          len(res.Resolved),
		Failed:            len(res.Failed),
		FailedBuildingIDs: append([]int{}, res.Failed...),
		Archetypes:        map[string]int{},
	}
	for _, a := range res.Resolved {
		s.Archetypes[a.ArchetypeURI]++
		for _, e := range a.RetrofittedElements {
			if s.Retrofits == nil {
				s.Retrofits = map[string]int{}
			}
			s.Retrofits[string(e)]++
		}
	}
	return s
}

// Exporter writes a batch result somewhere.
type Exporter interface {
	Name() string
	Export(ctx context.Context, res *archetype.BatchResult) error
}

// ExportAll runs every exporter. A failing exporter is logged and does not
// stop the others; the joined error is returned.
func ExportAll(ctx context.Context, res *archetype.BatchResult, log logger.Logger, exporters ...Exporter) error {
	var errs []error
	for _, e := range exporters {
		if err := e.Export(ctx, res); err != nil {
			log.WithError(err).Error("report export failed", map[string]interface{}{
				"sink":  e.Name(),
				"runId": res.RunID,
			})
			errs = append(errs, err)
			continue
		}
		log.Info("report exported", map[string]interface{}{
			"sink":  e.Name(),
			"runId": res.RunID,
		})
	}
	return errors.Join(errs...)
}
