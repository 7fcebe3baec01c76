// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"archetype-resolver/internal/common/validation"
)

const (
	SourceLocal    = "local"
	SourcePostgres = "postgres"

	// Factory keys that need a lookup file; the registry itself lives in
	// the archetype package.
	FactoryRetrofit         = "graphdb_retrofit"
	FactoryBuildingSpecific = "building_specific"
)

// Load reads configs/config.yaml (or ./config.yaml), merges the
// environment overlay config.<APP_ENVIRONMENT>.yaml and applies defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	base := v.ConfigFileUsed()

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	cfg, err := finish(v)
	if err != nil {
		return nil, err
	}
	if base != "" {
		cfg.resolveRelativePaths(filepath.Dir(base))
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := finish(v)
	if err != nil {
		return nil, err
	}
	cfg.resolveRelativePaths(filepath.Dir(path))
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	if raw, ok := v.Get("archetypes").(map[string]interface{}); ok {
		if err := validation.ValidateArchetypesConfig(raw); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory, so tests and binaries started from subdirectories find it.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials that are commonly only provided
// through the environment.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Report.SNS.TopicARN == "" {
		if val := os.Getenv("REPORT_SNS_TOPIC_ARN"); val != "" {
			cfg.Report.SNS.TopicARN = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "archetype-resolver"
	}
	if cfg.Factory == "" {
		cfg.Factory = "graphdb_age_class"
	}
	if cfg.GraphDB.Source == "" {
		cfg.GraphDB.Source = SourceLocal
	}
	if cfg.GraphDB.Cache.TTL == 0 {
		cfg.GraphDB.Cache.TTL = 3600
	}
	if cfg.GraphDB.Cache.KeyPrefix == "" {
		cfg.GraphDB.Cache.KeyPrefix = "archetype:"
	}
	if cfg.FixedInfiltrationProfileValue == 0 {
		cfg.FixedInfiltrationProfileValue = 1.0
	}

	frame := &cfg.ConstructionBasics.WindowFrame
	if frame.Name == "" {
		frame.Name = "window_frame_fixed_cesar-p"
	}
	if frame.FrameConductance == 0 {
		frame.FrameConductance = 9.5
	}
	if frame.FrameWidth == 0 {
		frame.FrameWidth = 0.05
	}
	inst := &cfg.ConstructionBasics.Installations
	if inst.ElectricAppliancesFractionRadiant == 0 {
		inst.ElectricAppliancesFractionRadiant = 0.75
	}
	if inst.LightingFractionRadiant == 0 {
		inst.LightingFractionRadiant = 0.42
	}
	if inst.LightingFractionVisible == 0 {
		inst.LightingFractionVisible = 0.18
	}

	defaultLookup(&cfg.BuildingInfoFile, map[string]string{
		"gis_fid":              "ORIG_FID",
		"year_of_construction": "BuildingAge",
		"dhw_ecarrier":         "ECarrierDHW",
		"heating_ecarrier":     "ECarrierHeating",
	})
	defaultLookup(&cfg.RetrofitFile, map[string]string{
		"gis_fid":                      "ORIG_FID",
		"year_of_wall_retrofit":        "year_of_wall_retrofit",
		"year_of_roof_retrofit":        "year_of_roof_retrofit",
		"year_of_groundfloor_retrofit": "year_of_groundfloor_retrofit",
		"year_of_window_retrofit":      "year_of_window_retrofit",
	})
	defaultLookup(&cfg.BuildingArchetypeFile, map[string]string{
		"gis_fid":                "ORIG_FID",
		"construction_archetype": "ConstructionArchetype",
	})

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":8080"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func defaultLookup(f *LookupFileConfig, labels map[string]string) {
	if f.Separator == "" {
		f.Separator = ","
	}
	if f.Labels == nil {
		f.Labels = map[string]string{}
	}
	for k, v := range labels {
		if _, ok := f.Labels[k]; !ok {
			f.Labels[k] = v
		}
	}
}

// resolveRelativePaths makes file paths relative to the config file.
func (c *Config) resolveRelativePaths(baseDir string) {
	for _, p := range []*string{
		&c.GraphDB.LocalFile,
		&c.BuildingInfoFile.Path,
		&c.RetrofitFile.Path,
		&c.BuildingArchetypeFile.Path,
		&c.Report.CSVPath,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if len(cfg.Archetypes) == 0 && cfg.Factory != FactoryBuildingSpecific {
		return fmt.Errorf("archetypes must list at least one archetype")
	}
	for name, a := range cfg.Archetypes {
		if a.URI == "" {
			return fmt.Errorf("archetypes.%s.uri is required", name)
		}
	}

	switch cfg.GraphDB.Source {
	case SourceLocal:
		if cfg.GraphDB.LocalFile == "" {
			return fmt.Errorf("graphdb.local_file is required for source %q", SourceLocal)
		}
	case SourcePostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	default:
		return fmt.Errorf("graphdb.source %q is not supported", cfg.GraphDB.Source)
	}

	if cfg.GraphDB.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when graphdb.cache is enabled")
	}

	switch cfg.Factory {
	case FactoryRetrofit:
		if cfg.RetrofitFile.Path == "" {
			return fmt.Errorf("retrofit_file.path is required for factory %q", cfg.Factory)
		}
	case FactoryBuildingSpecific:
		if cfg.BuildingArchetypeFile.Path == "" {
			return fmt.Errorf("building_archetype_file.path is required for factory %q", cfg.Factory)
		}
	}

	if cfg.FixedInfiltrationProfileValue < 0 || cfg.FixedInfiltrationProfileValue > 1 {
		return fmt.Errorf("fixed_infiltration_profile_value must be within [0, 1]")
	}

	if cfg.Report.SNS.Enabled && cfg.Report.SNS.TopicARN == "" {
		return fmt.Errorf("report.sns.topic_arn is required when report.sns is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
