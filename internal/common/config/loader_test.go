package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const baseConfig = `
app:
  name: archetype-resolver
graphdb:
  source: local
  local_file: data/archetypes.yaml
factory: graphdb_retrofit
retrofit_file:
  path: data/retrofit.csv
  separator: ";"
archetypes:
  SFH_1948:
    uri: http://example.org/SFH_1948
  SFH_2009:
    uri: http://example.org/SFH_2009
    default_construction_specific:
      active: true
      wall: Wall_2009_B
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, baseConfig)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "graphdb_retrofit", cfg.Factory)
	assert.Len(t, cfg.Archetypes, 2)
	assert.Equal(t, 1.0, cfg.FixedInfiltrationProfileValue)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Metrics.Address)
	assert.Equal(t, "archetype:", cfg.GraphDB.Cache.KeyPrefix)

	assert.Equal(t, ";", cfg.RetrofitFile.Separator)
	assert.Equal(t, "ORIG_FID", cfg.RetrofitFile.Labels["gis_fid"])
	assert.Equal(t, ",", cfg.BuildingInfoFile.Separator)
	assert.Equal(t, "BuildingAge", cfg.BuildingInfoFile.Labels["year_of_construction"])

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "data/archetypes.yaml"), cfg.GraphDB.LocalFile)
	assert.Equal(t, filepath.Join(dir, "data/retrofit.csv"), cfg.RetrofitFile.Path)

	// viper lower-cases map keys
	sfh, ok := cfg.Archetypes["sfh_2009"]
	require.True(t, ok)
	assert.True(t, sfh.DefaultConstructionSpecific.Active)
	assert.Equal(t, "Wall_2009_B", sfh.DefaultConstructionSpecific.Wall)
}

func TestLoadFromFile_ExpandsEnvVars(t *testing.T) {
	t.Setenv("ARCHETYPE_DATA", "/srv/cesar")
	path := writeConfig(t, `
graphdb:
  source: local
  local_file: ${ARCHETYPE_DATA}/archetypes.yaml
archetypes:
  SFH_1948:
    uri: http://example.org/SFH_1948
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/cesar/archetypes.yaml", cfg.GraphDB.LocalFile)
	assert.Equal(t, "graphdb_age_class", cfg.Factory)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "archetype without uri",
			body: `
graphdb: {source: local, local_file: a.yaml}
archetypes:
  SFH_1948: {default_construction_specific: {active: false}}
`,
		},
		{
			name: "no archetypes",
			body: `
graphdb: {source: local, local_file: a.yaml}
`,
		},
		{
			name: "local source without file",
			body: `
graphdb: {source: local}
archetypes:
  SFH_1948: {uri: x}
`,
		},
		{
			name: "unknown source",
			body: `
graphdb: {source: sparql}
archetypes:
  SFH_1948: {uri: x}
`,
		},
		{
			name: "retrofit factory without retrofit file",
			body: `
factory: graphdb_retrofit
graphdb: {source: local, local_file: a.yaml}
archetypes:
  SFH_1948: {uri: x}
`,
		},
		{
			name: "cache without redis",
			body: `
graphdb: {source: local, local_file: a.yaml, cache: {enabled: true}}
archetypes:
  SFH_1948: {uri: x}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"resolve-archetypes": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "resolve-archetypes"))
	assert.True(t, IsWorkerEnabled(cfg, "other"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "resolve-archetypes").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "other").MaxJobsActive)
	assert.Equal(t, int64(1500), GetDuration(1500).Milliseconds())
}
