// Package config provides Viper-based configuration loading for the arena server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Name identifies this server instance in logs.
	Name string `mapstructure:"name"`
	// Authoritative is true when this process is the sole writer of combat state.
	Authoritative bool `mapstructure:"authoritative"`
}

// DatabaseConfig holds PostgreSQL connection settings for the shot log.
type DatabaseConfig struct {
	// Enabled turns shot logging on. When false no connection is attempted.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameServerConfig holds listener and frame loop settings.
type GameServerConfig struct {
	// GRPCHost is the bind address for the gRPC health service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the gRPC health service.
	GRPCPort int `mapstructure:"grpc_port"`
	// HUDHost is the bind address for the websocket HUD feed.
	HUDHost string `mapstructure:"hud_host"`
	// HUDPort is the TCP port for the websocket HUD feed.
	HUDPort int `mapstructure:"hud_port"`
	// TickIntervalMs is the frame duration in milliseconds.
	TickIntervalMs int `mapstructure:"tick_interval_ms"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (g GameServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.GRPCHost, g.GRPCPort)
}

// HUDAddr returns the "host:port" websocket address.
func (g GameServerConfig) HUDAddr() string {
	return fmt.Sprintf("%s:%d", g.HUDHost, g.HUDPort)
}

// TickInterval returns the frame duration.
func (g GameServerConfig) TickInterval() time.Duration {
	return time.Duration(g.TickIntervalMs) * time.Millisecond
}

// CombatConfig holds character spawn defaults and weapon tuning fallbacks.
// Weapon definitions override the tuning fields they set.
type CombatConfig struct {
	ShotsPerRack int     `mapstructure:"shots_per_rack"`
	AmmoRacks    int     `mapstructure:"ammo_racks"`
	Health       float64 `mapstructure:"health"`
	// ReloadDelay is how long a reload keeps the weapon busy.
	ReloadDelay time.Duration `mapstructure:"reload_delay"`
	// AutoFirePeriod is the interval between automatic shots.
	AutoFirePeriod time.Duration `mapstructure:"auto_fire_period"`
	MaxRange       float64       `mapstructure:"max_range"`
	// MuzzleOffset is the distance along the forward vector the ray starts
	// past the muzzle socket. Must lie in [5, 10].
	MuzzleOffset float64 `mapstructure:"muzzle_offset"`
	Impulse      float64 `mapstructure:"impulse"`
	Damage       float64 `mapstructure:"damage"`
	// TracePersist is how long debug traces stay visible.
	TracePersist time.Duration `mapstructure:"trace_persist"`
	// ModeToggleCancelsAuto stops a running auto-fire timer on mode toggle.
	ModeToggleCancelsAuto bool `mapstructure:"mode_toggle_cancels_auto"`
	// PickupRespawnDelay is how long a spawner waits before replacing a taken pickup.
	// Zero disables replacement.
	PickupRespawnDelay time.Duration `mapstructure:"pickup_respawn_delay"`
}

// PointConfig is a position in world units.
type PointConfig struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	Z float64 `mapstructure:"z"`
}

// SpawnerConfig places a weapon spawner in the arena.
type SpawnerConfig struct {
	ID       string      `mapstructure:"id"`
	Weapon   string      `mapstructure:"weapon"`
	Position PointConfig `mapstructure:"position"`
	// Max is the number of pickups the spawner keeps alive. Zero means one.
	Max int `mapstructure:"max"`
	// RespawnDelay overrides combat.pickup_respawn_delay when positive. A
	// negative value disables replacement for this spawner.
	RespawnDelay time.Duration `mapstructure:"respawn_delay"`
}

// ArenaConfig holds the map layout.
type ArenaConfig struct {
	// SpawnPoints are cycled through as characters join. Empty means the origin.
	SpawnPoints []PointConfig   `mapstructure:"spawn_points"`
	Spawners    []SpawnerConfig `mapstructure:"spawners"`
}

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	GameServer GameServerConfig `mapstructure:"gameserver"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Arena      ArenaConfig      `mapstructure:"arena"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGameServer(c.GameServer); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateArena(c.Arena); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Name == "" {
		return errors.New("server.name must not be empty")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGameServer(g GameServerConfig) error {
	var errs []string
	if g.GRPCHost == "" {
		errs = append(errs, "gameserver.grpc_host must not be empty")
	}
	if g.GRPCPort < 1 || g.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("gameserver.grpc_port must be 1-65535, got %d", g.GRPCPort))
	}
	if g.HUDPort < 1 || g.HUDPort > 65535 {
		errs = append(errs, fmt.Sprintf("gameserver.hud_port must be 1-65535, got %d", g.HUDPort))
	}
	if g.GRPCPort == g.HUDPort && g.GRPCHost == g.HUDHost {
		errs = append(errs, "gameserver.grpc_port and gameserver.hud_port must differ")
	}
	if g.TickIntervalMs < 1 {
		errs = append(errs, fmt.Sprintf("gameserver.tick_interval_ms must be >= 1, got %d", g.TickIntervalMs))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.ShotsPerRack < 1 {
		errs = append(errs, fmt.Sprintf("combat.shots_per_rack must be >= 1, got %d", c.ShotsPerRack))
	}
	if c.AmmoRacks < 0 {
		errs = append(errs, fmt.Sprintf("combat.ammo_racks must be >= 0, got %d", c.AmmoRacks))
	}
	if c.ReloadDelay <= 0 {
		errs = append(errs, "combat.reload_delay must be positive")
	}
	if c.AutoFirePeriod <= 0 {
		errs = append(errs, "combat.auto_fire_period must be positive")
	}
	if c.MaxRange <= 0 {
		errs = append(errs, fmt.Sprintf("combat.max_range must be positive, got %g", c.MaxRange))
	}
	if c.MuzzleOffset < 5 || c.MuzzleOffset > 10 {
		errs = append(errs, fmt.Sprintf("combat.muzzle_offset must be within [5, 10], got %g", c.MuzzleOffset))
	}
	if c.Impulse < 0 {
		errs = append(errs, "combat.impulse must not be negative")
	}
	if c.Damage < 0 {
		errs = append(errs, "combat.damage must not be negative")
	}
	if c.TracePersist < 0 {
		errs = append(errs, "combat.trace_persist must not be negative")
	}
	if c.PickupRespawnDelay < 0 {
		errs = append(errs, "combat.pickup_respawn_delay must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateArena(a ArenaConfig) error {
	var errs []string
	seen := make(map[string]bool, len(a.Spawners))
	for i, sp := range a.Spawners {
		if sp.ID == "" {
			errs = append(errs, fmt.Sprintf("arena.spawners[%d].id must not be empty", i))
		} else if seen[sp.ID] {
			errs = append(errs, fmt.Sprintf("arena.spawners[%d].id %q is duplicated", i, sp.ID))
		}
		seen[sp.ID] = true
		if sp.Weapon == "" {
			errs = append(errs, fmt.Sprintf("arena.spawners[%d].weapon must not be empty", i))
		}
		if sp.Max < 0 {
			errs = append(errs, fmt.Sprintf("arena.spawners[%d].max must be >= 0, got %d", i, sp.Max))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GUNFIRE_ prefix
	v.SetEnvPrefix("GUNFIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by defaults alone.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config: Default: defaults are invalid: %v", err))
	}
	return cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "gunfire")
	v.SetDefault("server.authoritative", true)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gunfire")
	v.SetDefault("database.password", "gunfire")
	v.SetDefault("database.name", "gunfire")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("gameserver.grpc_host", "127.0.0.1")
	v.SetDefault("gameserver.grpc_port", 50051)
	v.SetDefault("gameserver.hud_host", "127.0.0.1")
	v.SetDefault("gameserver.hud_port", 8080)
	v.SetDefault("gameserver.tick_interval_ms", 16)

	v.SetDefault("combat.shots_per_rack", 8)
	v.SetDefault("combat.ammo_racks", 4)
	v.SetDefault("combat.health", 1.0)
	v.SetDefault("combat.reload_delay", "1s")
	v.SetDefault("combat.auto_fire_period", "500ms")
	v.SetDefault("combat.max_range", 1000.0)
	v.SetDefault("combat.muzzle_offset", 10.0)
	v.SetDefault("combat.impulse", 100000.0)
	v.SetDefault("combat.damage", 0.1)
	v.SetDefault("combat.trace_persist", "1s")
	v.SetDefault("combat.mode_toggle_cancels_auto", false)
	v.SetDefault("combat.pickup_respawn_delay", "5s")
}
