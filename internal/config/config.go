package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"conservation-registry/internal/domain/conservation"
)

// Config es la configuración completa del proceso, cargada de un archivo
// TOML. Implementa conservation.ConstraintSource: el motor de reglas la
// consulta en cada validación, sin cachear.
type Config struct {
	Addr string `toml:"addr"`

	Log     LogConfig     `toml:"log"`
	Storage StorageConfig `toml:"storage"`
	Keeper  KeeperConfig  `toml:"keeper"`
	Animals AnimalsConfig `toml:"animals"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StorageConfig struct {
	// Driver: memory (arranca vacío, no persiste), sqlite o postgres.
	Driver string `toml:"driver"`
	Path   string `toml:"path"` // sqlite
	DSN    string `toml:"dsn"`  // postgres
}

type KeeperConfig struct {
	MinCages int `toml:"min_cages"`
	MaxCages int `toml:"max_cages"`
}

type AnimalsConfig struct {
	PredatorShareable bool `toml:"predator_shareable"`
	PreyShareable     bool `toml:"prey_shareable"`
}

// Default es la configuración con la que corre el sistema sin archivo:
// carga de cuidadores 1..4, depredadores solos, presas compartibles.
func Default() Config {
	return Config{
		Addr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Keeper: KeeperConfig{
			MinCages: 1,
			MaxCages: 4,
		},
		Animals: AnimalsConfig{
			PredatorShareable: false,
			PreyShareable:     true,
		},
	}
}

// Load lee el archivo TOML (si path viene vacío devuelve defaults),
// aplica defaults para lo no seteado y valida.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config missing addr")
	}
	if cfg.Keeper.MinCages < 0 {
		return fmt.Errorf("keeper.min_cages cannot be negative")
	}
	if cfg.Keeper.MaxCages < 1 {
		return fmt.Errorf("keeper.max_cages must be at least 1")
	}
	if cfg.Keeper.MinCages > cfg.Keeper.MaxCages {
		return fmt.Errorf("keeper.min_cages (%d) exceeds keeper.max_cages (%d)",
			cfg.Keeper.MinCages, cfg.Keeper.MaxCages)
	}

	switch cfg.Storage.Driver {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(cfg.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}

	return nil
}

func (c Config) KeeperConstraints() conservation.KeeperConstraints {
	return conservation.KeeperConstraints{
		MinCages: c.Keeper.MinCages,
		MaxCages: c.Keeper.MaxCages,
	}
}

func (c Config) AnimalRules() conservation.AnimalRules {
	return conservation.AnimalRules{
		PredatorShareable: c.Animals.PredatorShareable,
		PreyShareable:     c.Animals.PreyShareable,
	}
}
