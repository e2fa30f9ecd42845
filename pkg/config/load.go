package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/psulibraries/rmdlink/pkg/errors"
)

const appName = "rmdlink"

// Environment variables read by [Load].
const (
	EnvAPIURL              = "RMD_API_URL"
	EnvAPIKey              = "RMD_API_KEY"
	EnvCacheTTL            = "RMD_CACHE_TTL"
	EnvPublicationsDisplay = "RMD_PUBLICATIONS_DISPLAY"
	EnvCacheBackend        = "RMD_CACHE_BACKEND"
	EnvRedisURL            = "RMD_REDIS_URL"
	EnvMongoURI            = "RMD_MONGO_URI"
	EnvServerAddr          = "RMD_SERVER_ADDR"
)

// DefaultPath returns $XDG_CONFIG_HOME/rmdlink/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// Load reads the configuration. An empty path reads [DefaultPath] if that
// file exists; an explicit path must exist. A .env file in the working
// directory and the process environment are applied on top.
func Load(path string) (*Config, error) {
	return LoadFrom(path, ".env", os.LookupEnv)
}

// LoadFrom is [Load] with an explicit .env path (empty to skip) and
// environment lookup. Variables from lookupEnv win over the .env file.
func LoadFrom(path, dotenv string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := decodeFile(cfg, path, explicit); err != nil {
			return nil, err
		}
	}

	fileEnv, err := readDotEnv(dotenv)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", path)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Source = path
	return nil
}

// readDotEnv loads a .env file if it exists, without touching the process
// environment.
func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to load %s", path)
	}
	return env, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvAPIURL, &cfg.APIBaseURL)
	str(EnvAPIKey, &cfg.APIKey)
	str(EnvCacheBackend, &cfg.Cache.Backend)
	str(EnvRedisURL, &cfg.Cache.RedisURL)
	str(EnvMongoURI, &cfg.Cache.MongoURI)
	str(EnvServerAddr, &cfg.Server.Addr)

	if v, ok := lookup(EnvCacheTTL); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s must be an integer number of seconds", EnvCacheTTL)
		}
		cfg.CacheTTLSecs = n
	}
	if v, ok := lookup(EnvPublicationsDisplay); ok {
		cfg.Publications = splitList(v)
	}
	return nil
}

// splitList parses a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
