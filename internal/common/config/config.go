// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Camunda  CamundaConfig  `mapstructure:"camunda"`
	Database DatabaseConfig `mapstructure:"database"`
	GraphDB  GraphDBConfig  `mapstructure:"graphdb"`

	// Factory selects the archetype factory from the registry.
	Factory    string                     `mapstructure:"factory"`
	Archetypes map[string]ArchetypeConfig `mapstructure:"archetypes"`

	FixedInfiltrationProfileValue float64                  `mapstructure:"fixed_infiltration_profile_value"`
	ConstructionBasics            ConstructionBasicsConfig `mapstructure:"construction_basics"`

	BuildingInfoFile      LookupFileConfig `mapstructure:"building_info_file"`
	RetrofitFile          LookupFileConfig `mapstructure:"retrofit_file"`
	BuildingArchetypeFile LookupFileConfig `mapstructure:"building_archetype_file"`

	Workers map[string]WorkerConfig `mapstructure:"workers"`
	Metrics MetricsConfig           `mapstructure:"metrics"`
	Report  ReportConfig            `mapstructure:"report"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL, kept for older config files
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Graph data source ---

// GraphDBConfig selects the backend the archetype data is read from.
type GraphDBConfig struct {
	// Source is "local" (YAML file) or "postgres".
	Source    string           `mapstructure:"source"`
	LocalFile string           `mapstructure:"local_file"`
	Cache     GraphCacheConfig `mapstructure:"cache"`
}

// GraphCacheConfig enables the redis read-through cache in front of the
// graph reader, shared by all worker processes.
type GraphCacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TTL       int    `mapstructure:"ttl"` // seconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ArchetypeConfig names one constructional archetype.
type ArchetypeConfig struct {
	URI                         string                      `mapstructure:"uri"`
	DefaultConstructionSpecific DefaultConstructionSpecific `mapstructure:"default_construction_specific"`
}

// DefaultConstructionSpecific pins the default construction per element
// instead of taking the first option delivered by the data source.
type DefaultConstructionSpecific struct {
	Active          bool   `mapstructure:"active"`
	Wall            string `mapstructure:"wall"`
	Roof            string `mapstructure:"roof"`
	Groundfloor     string `mapstructure:"groundfloor"`
	Window          string `mapstructure:"window"`
	InternalCeiling string `mapstructure:"internal_ceiling"`
}

// ConstructionBasicsConfig holds the values that are the same for every
// archetype.
type ConstructionBasicsConfig struct {
	WindowFrame struct {
		Name             string  `mapstructure:"name"`
		FrameConductance float64 `mapstructure:"frame_conductance"` // W/(m2*K)
		FrameWidth       float64 `mapstructure:"frame_width"`       // m
	} `mapstructure:"window_frame"`
	Installations struct {
		ElectricAppliancesFractionRadiant float64 `mapstructure:"electric_appliances_fraction_radiant"`
		LightingFractionRadiant           float64 `mapstructure:"lighting_fraction_radiant"`
		LightingFractionVisible           float64 `mapstructure:"lighting_fraction_visible"`
		LightingReturnAirFraction         float64 `mapstructure:"lighting_return_air_fraction"`
		DHWFractionLost                   float64 `mapstructure:"dhw_fraction_lost"`
		// DHWFractionLostPerCarrier overrides DHWFractionLost for a carrier.
		DHWFractionLostPerCarrier map[string]float64 `mapstructure:"dhw_fraction_lost_per_carrier"`
	} `mapstructure:"installations"`
}

// LookupFileConfig describes a csv lookup table.
type LookupFileConfig struct {
	Path      string `mapstructure:"path"`
	Separator string `mapstructure:"separator"`
	// Labels maps semantic field names to the column names in the file.
	Labels map[string]string `mapstructure:"labels"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// ReportConfig configures where batch outcomes are exported.
type ReportConfig struct {
	CSVPath            string `mapstructure:"csv_path"`
	ElasticsearchIndex string `mapstructure:"elasticsearch_index"`
	SNS                struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
