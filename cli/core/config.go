package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ConfigFileName is looked up in the working directory.
const ConfigFileName = "tabrefresh.toml"

// Environment variables consulted when a flag is not given.
const (
	EnvServer     = "TABLEAU_SERVER"
	EnvTokenName  = "TABLEAU_TOKEN_NAME"
	EnvTokenValue = "TABLEAU_TOKEN_VALUE"
	EnvSiteURL    = "TABLEAU_SITE_URL"
	EnvInsecure   = "TABLEAU_INSECURE"
	EnvCACert     = "TABLEAU_CA_CERT"
)

// Config holds connection defaults read from a TOML file. Object name,
// project and type are always given on the command line.
type Config struct {
	Server     string  `toml:"server"`
	TokenName  string  `toml:"token_name"`
	SiteURL    *string `toml:"site_url"`
	Insecure   bool    `toml:"insecure"`
	CACert     string  `toml:"ca_cert"`
	Timeout    string  `toml:"timeout"`
	APIVersion string  `toml:"api_version"`

	// Path is the file the config was read from, empty when none.
	Path string `toml:"-"`
}

func defaultConfigPaths() []string {
	paths := []string{ConfigFileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".tabrefresh", "config.toml"))
	}
	return paths
}

// LoadConfig reads path, or the first default location that exists when
// path is empty. A missing default file yields an empty Config.
func LoadConfig(path string) (Config, error) {
	if path != "" {
		cfg, err := readConfigToml(path)
		if err != nil {
			return Config{}, NewUsageError(err)
		}
		return cfg, nil
	}
	for _, candidate := range defaultConfigPaths() {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		cfg, err := readConfigToml(candidate)
		if err != nil {
			return Config{}, NewUsageError(err)
		}
		return cfg, nil
	}
	return Config{}, nil
}

func readConfigToml(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		PrintWarning(fmt.Sprintf("Ignoring unknown keys in %s: %s", path, strings.Join(keys, ", ")))
	}
	cfg.Path = path
	Logger().Debug("loaded config file", zap.String("path", path))
	return cfg, nil
}

// loadEnvFiles loads dotenv files into the process environment. Variables
// already set are left untouched.
func loadEnvFiles(files []string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Usagef("env file %s does not exist", file)
			}
			return Usagef("failed to load env file %s: %v", file, err)
		}
	}
	return nil
}
