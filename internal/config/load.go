package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a JSON or YAML config file (chosen by extension) on top of
// Default. Keys absent from the file keep their default values; objects
// merge field by field and lists replace the default list.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Decode(b, filepath.Ext(path))
}

// Decode parses b as JSON (".json" or empty ext) or YAML (".yaml", ".yml")
// on top of Default.
func Decode(b []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode yaml config: %w", err)
		}
	case ".json", "":
		if err := clearJSONLists(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode json config: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode json config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config extension %q (want .json, .yaml or .yml)", ext)
	}
	return cfg, nil
}

// clearJSONLists drops default slices the document sets explicitly.
// encoding/json decodes arrays into the existing backing array, which would
// leak default element fields into user-supplied entries.
func clearJSONLists(b []byte, cfg *Config) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return err
	}
	if _, ok := top["years"]; ok {
		cfg.Years = nil
	}
	raw, ok := top["projection"]
	if !ok {
		return nil
	}
	var proj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &proj); err != nil {
		return err
	}
	if _, ok := proj["columns"]; ok {
		cfg.Projection.Columns = nil
	}
	if _, ok := proj["filter"]; ok {
		cfg.Projection.Filter = nil
	}
	return nil
}

// ApplyEnv fills metrics settings from the environment when the config
// leaves them at their defaults: METRICS_BACKEND, PUSHGATEWAY_URL and
// DOGSTATSD_ADDR.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("METRICS_BACKEND"); v != "" && (c.Metrics.Backend == "" || c.Metrics.Backend == "none") {
		c.Metrics.Backend = v
	}
	if v := getenv("PUSHGATEWAY_URL"); v != "" && c.Metrics.PushgatewayURL == "" {
		c.Metrics.PushgatewayURL = v
	}
	if v := getenv("DOGSTATSD_ADDR"); v != "" && c.Metrics.DogStatsDAddr == "" {
		c.Metrics.DogStatsDAddr = v
	}
}
