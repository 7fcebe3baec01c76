package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archetype-resolver/internal/archetype"
	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/common/database"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/models"
	"archetype-resolver/internal/units"
)

// ==========================
// Fixtures
// ==========================

func sampleResult() *archetype.BatchResult {
	wall := models.Construction{Name: "Wall_A2_R_1991", BuildingElement: models.ElementWall}
	return &archetype.BatchResult{
		RunID:     "run-1",
		Factory:   archetype.FactoryRetrofit,
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		IDs:       []int{7, 8},
		Resolved: map[int]*models.ResolvedArchetype{
			7: {
				ArchetypeURI:        "urn:A2",
				AgeClass:            models.NewAgeClass(models.Year(1919), models.Year(1990)),
				Wall:                models.Single(wall),
				Roof:                models.Single(models.Construction{Name: "Roof_A2"}),
				WindowGlass:         models.Single(models.Construction{Name: "Window_A2"}),
				GlazingRatio:        units.Quantity{Value: 0.2},
				InfiltrationRate:    units.Quantity{Value: 0.6, Unit: units.PerHour},
				RetrofittedElements: []models.BuildingElement{models.ElementWall},
			},
		},
		Failed: []int{8},
		Errors: map[int]error{8: apperrors.NewBuildingNotFoundError(8, "building info")},
	}
}

// ==========================
// Rows and summary
// ==========================

func TestRows(t *testing.T) {
	rows := Rows(sampleResult())
	require.Len(t, rows, 2)

	assert.Equal(t, StatusResolved, rows[0].Status)
	assert.Equal(t, "urn:A2", rows[0].ArchetypeURI)
	assert.Equal(t, "[1919,1990]", rows[0].AgeClass)
	assert.Equal(t, "Wall_A2_R_1991", rows[0].Wall)
	assert.Equal(t, []string{"wall"}, rows[0].Retrofitted)
	assert.Equal(t, 0.6, rows[0].InfiltrationRate)

	assert.Equal(t, StatusFailed, rows[1].Status)
	assert.Equal(t, "BUILDING_NOT_FOUND", rows[1].ErrorCode)
	assert.Empty(t, rows[1].ArchetypeURI)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResult())
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Resolved)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, []int{8}, s.FailedBuildingIDs)
	assert.Equal(t, map[string]int{"urn:A2": 1}, s.Archetypes)
	assert.Equal(t, map[string]int{"wall": 1}, s.Retrofits)
	assert.EqualValues(t, 1500, s.DurationMs)
}

// ==========================
// CSV
// ==========================

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"7", "resolved", "", "urn:A2", "[1919,1990]", "0.2", "0.6",
		"Wall_A2_R_1991", "Roof_A2", "", "Window_A2", "", "wall",
	}, records[1])
	assert.Equal(t, "8", records[2][0])
	assert.Equal(t, "BUILDING_NOT_FOUND", records[2][2])
	assert.Equal(t, "", records[2][5])
}

func TestCSVWriter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.csv")
	require.NoError(t, NewCSVWriter(path).Export(context.Background(), sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ORIG_FID,Status"))

	err = NewCSVWriter(filepath.Join(t.TempDir(), "missing", "x.csv")).Export(context.Background(), sampleResult())
	assert.ErrorIs(t, err, apperrors.ErrReportExportFailed)
}

// ==========================
// Elasticsearch
// ==========================

type fakeES struct {
	mu        sync.Mutex
	bulkLines []string
	reject    bool
}

func (f *fakeES) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bulkLines = strings.Split(strings.TrimSpace(string(body)), "\n")
		f.mu.Unlock()
		if f.reject {
			_, _ = w.Write([]byte(`{"errors":true,"items":[{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad"}}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"errors":false,"items":[]}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func TestElasticsearchIndexer_Export(t *testing.T) {
	tests := []struct {
		name    string
		reject  bool
		wantErr bool
	}{
		{"indexes every row", false, false},
		{"reports rejected documents", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeES{reject: tt.reject}
			srv := httptest.NewServer(http.HandlerFunc(fake.handler))
			defer srv.Close()
			es, err := database.NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
			require.NoError(t, err)

			err = NewElasticsearchIndexer(es, "archetype-assignments", logger.NewTestLogger(t)).
				Export(context.Background(), sampleResult())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "mapper_parsing_exception")
				return
			}
			require.NoError(t, err)

			require.Len(t, fake.bulkLines, 4)
			var meta map[string]map[string]string
			require.NoError(t, json.Unmarshal([]byte(fake.bulkLines[0]), &meta))
			assert.Equal(t, "run-1-7", meta["index"]["_id"])
			var doc Row
			require.NoError(t, json.Unmarshal([]byte(fake.bulkLines[3]), &doc))
			assert.Equal(t, 8, doc.BuildingID)
			assert.Equal(t, StatusFailed, doc.Status)
		})
	}
}

// ==========================
// SNS
// ==========================

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestSNSNotifier_Export(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var s Summary
		if err := json.Unmarshal([]byte(*in.Message), &s); err != nil {
			return false
		}
		return *in.TopicArn == "arn:aws:sns:eu-central-1:123:archetypes" &&
			s.RunID == "run-1" && s.Failed == 1 &&
			*in.MessageAttributes["failed"].StringValue == "1"
	})).Return(&sns.PublishOutput{}, nil).Once()

	n := NewSNSNotifier(pub, "arn:aws:sns:eu-central-1:123:archetypes")
	require.NoError(t, n.Export(context.Background(), sampleResult()))
	pub.AssertExpectations(t)
}

func TestSNSNotifier_PublishError(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := NewSNSNotifier(pub, "arn").Export(context.Background(), sampleResult())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrReportExportFailed)
}

// ==========================
// ExportAll
// ==========================

type failingExporter struct{}

func (failingExporter) Name() string { return "broken" }
func (failingExporter) Export(context.Context, *archetype.BatchResult) error {
	return apperrors.NewReportExportError("broken", errors.New("disk full"))
}

func TestExportAll_ContinuesAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := ExportAll(context.Background(), sampleResult(), logger.NewTestLogger(t), failingExporter{}, NewCSVWriter(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
