// internal/report/elasticsearch.go
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"archetype-resolver/internal/archetype"
	"archetype-resolver/internal/common/database"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
)

// AssignmentsMapping is the index mapping of assignment rows.
const AssignmentsMapping = `{
  "mappings": {
    "properties": {
      "runId":            {"type": "keyword"},
      "factory":          {"type": "keyword"},
      "buildingId":       {"type": "long"},
      "status":           {"type": "keyword"},
      "errorCode":        {"type": "keyword"},
      "archetypeUri":     {"type": "keyword"},
      "ageClass":         {"type": "keyword"},
      "glazingRatio":     {"type": "double"},
      "infiltrationRate": {"type": "double"},
      "wall":             {"type": "keyword"},
      "roof":             {"type": "keyword"},
      "groundfloor":      {"type": "keyword"},
      "window":           {"type": "keyword"},
      "internalCeiling":  {"type": "keyword"},
      "retrofitted":      {"type": "keyword"},
      "@timestamp":       {"type": "date"}
    }
  }
}`

// ElasticsearchIndexer bulk indexes the rows of a batch. Document ids are
// "<runId>-<buildingId>" so re-exporting a run overwrites its documents.
type ElasticsearchIndexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchIndexer(es *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchIndexer {
	return &ElasticsearchIndexer{es: es, index: index, logger: log}
}

func (x *ElasticsearchIndexer) Name() string { return "elasticsearch" }

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

func (x *ElasticsearchIndexer) Export(ctx context.Context, res *archetype.BatchResult) error {
	if err := database.EnsureIndex(ctx, x.es, x.index, AssignmentsMapping); err != nil {
		return apperrors.NewReportExportError(x.Name(), err)
	}

	rows := Rows(res)
	if len(rows) == 0 {
		return nil
	}
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, r := range rows {
		meta := map[string]map[string]string{
			"index": {"_index": x.index, "_id": r.RunID + "-" + strconv.Itoa(r.BuildingID)},
		}
		if err := enc.Encode(meta); err != nil {
			return apperrors.NewReportExportError(x.Name(), err)
		}
		if err := enc.Encode(r); err != nil {
			return apperrors.NewReportExportError(x.Name(), err)
		}
	}

	req := esapi.BulkRequest{
		Index:   x.index,
		Body:    &body,
		Refresh: "false",
	}
	resp, err := req.Do(ctx, x.es)
	if err != nil {
		return apperrors.NewReportExportError(x.Name(), err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return apperrors.NewReportExportError(x.Name(), fmt.Errorf("bulk request: %s", resp.Status()))
	}

	var br bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return apperrors.NewReportExportError(x.Name(), fmt.Errorf("decode bulk response: %w", err))
	}
	if br.Errors {
		failed := 0
		var first string
		for _, item := range br.Items {
			for _, op := range item {
				if op.Status >= 300 {
					failed++
					if first == "" {
						first = op.Error.Type + ": " + op.Error.Reason
					}
				}
			}
		}
		return apperrors.NewReportExportError(x.Name(), fmt.Errorf("%d of %d documents rejected, first: %s", failed, len(rows), first))
	}

	x.logger.Debug("indexed assignments", map[string]interface{}{
		"index":     x.index,
		"documents": len(rows),
	})
	return nil
}
