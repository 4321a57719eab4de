package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents runtime configuration for the service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Volume    VolumeConfig    `yaml:"volume"`
	Assistant AssistantConfig `yaml:"assistant"`
	Redis     RedisConfig     `yaml:"redis"`
}

type ServerConfig struct {
	Address string `yaml:"address"`
}

// WarehouseConfig locates the SQL warehouse and the hosted AI endpoint.
// DataSpace is optional; when set it enables the tabular data chat.
type WarehouseConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Path       string `yaml:"path"`
	Catalog    string `yaml:"catalog"`
	Schema     string `yaml:"schema"`
	AIEndpoint string `yaml:"ai_endpoint"`
	DataSpace  string `yaml:"data_space"`
	Token      string `yaml:"token"`
}

// VolumeConfig addresses the managed blob store for uploaded brochures.
type VolumeConfig struct {
	Path       string `yaml:"path"`
	LocalMount string `yaml:"local_mount"`
	RemoteBase string `yaml:"remote_base"`
}

type AssistantConfig struct {
	// Mode selects the primary transport: "warehouse" routes turns through
	// the warehouse ai_query function, "endpoint" calls the serving
	// endpoint directly.
	Mode string `yaml:"mode"`
}

type RedisConfig struct {
	Addr        string `yaml:"addr"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	SnapshotTTL int    `yaml:"snapshot_ttl_minutes"`
}

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// Load reads configuration from the provided path (defaults to app.yaml),
// applies environment overrides and validates required fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "app.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("WAREHOUSE_HOST"); v != "" {
		c.Warehouse.Host = v
	}
	if v := os.Getenv("WAREHOUSE_PATH"); v != "" {
		c.Warehouse.Path = v
	}
	if v := os.Getenv("WAREHOUSE_AI_ENDPOINT"); v != "" {
		c.Warehouse.AIEndpoint = v
	}
	if v := os.Getenv("WAREHOUSE_DATA_SPACE"); v != "" {
		c.Warehouse.DataSpace = v
	}
	if v := os.Getenv("WAREHOUSE_TOKEN"); v != "" {
		c.Warehouse.Token = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Address = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8090"
	}
	if c.Warehouse.Port == 0 {
		c.Warehouse.Port = 443
	}
	if c.Warehouse.Catalog == "" {
		c.Warehouse.Catalog = "insurance"
	}
	if c.Warehouse.Schema == "" {
		c.Warehouse.Schema = "fa_pricing"
	}
	if c.Assistant.Mode == "" {
		c.Assistant.Mode = "warehouse"
	}
	if c.Redis.SnapshotTTL <= 0 {
		c.Redis.SnapshotTTL = 240
	}
}

func (c *Config) validate() error {
	host := strings.TrimSpace(c.Warehouse.Host)
	if host == "" {
		return fmt.Errorf("warehouse.host must be configured")
	}
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return fmt.Errorf("warehouse.host must be a bare hostname without http:// or https://")
	}
	if strings.TrimSpace(c.Warehouse.Path) == "" {
		return fmt.Errorf("warehouse.path must be configured")
	}
	if strings.TrimSpace(c.Warehouse.AIEndpoint) == "" {
		return fmt.Errorf("warehouse.ai_endpoint must be configured")
	}
	for name, ident := range map[string]string{
		"warehouse.catalog": c.Warehouse.Catalog,
		"warehouse.schema":  c.Warehouse.Schema,
	} {
		if !identPattern.MatchString(ident) {
			return fmt.Errorf("%s %q is not a valid identifier", name, ident)
		}
	}
	if strings.TrimSpace(c.Volume.Path) == "" {
		return fmt.Errorf("volume.path must be configured")
	}
	switch c.Assistant.Mode {
	case "warehouse", "endpoint":
	default:
		return fmt.Errorf("assistant.mode must be warehouse or endpoint, got %q", c.Assistant.Mode)
	}
	return nil
}

// TablePrefix returns the catalog.schema prefix for pipeline tables.
func (c *WarehouseConfig) TablePrefix() string {
	return c.Catalog + "." + c.Schema
}
