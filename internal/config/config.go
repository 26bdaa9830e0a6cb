// Package config resolves where the external decompiler lives and how
// to run it. Precedence, highest first: CLI flags (applied by the
// caller), JSON config file, environment (after loading .env), built-in
// defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
)

const (
	DefaultJar  = "cfr.jar"
	DefaultJava = "java"

	// DefaultFile is the config file probed when --config is not given.
	DefaultFile = "jarsrc.json"

	envJar     = "JARSRC_CFR_JAR"
	envJava    = "JARSRC_JAVA"
	envTimeout = "JARSRC_TIMEOUT"
)

type Config struct {
	// CFRJar is the path to the decompiler jar.
	CFRJar string

	// Java is the JVM binary used to run it.
	Java string

	// Timeout bounds one tool invocation; zero means none.
	Timeout time.Duration

	// ExtraArgs are appended to the tool command line.
	ExtraArgs []string
}

// Load resolves the configuration. path selects an explicit config
// file, which must then exist; when empty, DefaultFile is probed and
// silently skipped if absent.
func Load(path string) (Config, error) {
	// Best effort: a .env next to the invocation may carry the JARSRC_*
	// keys. Missing .env is not an error.
	_ = godotenv.Load()

	cfg := Config{CFRJar: DefaultJar, Java: DefaultJava}

	if v := os.Getenv(envJar); v != "" {
		cfg.CFRJar = v
	}
	if v := os.Getenv(envJava); v != "" {
		cfg.Java = v
	}
	if v := os.Getenv(envTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envTimeout, err)
		}
		cfg.Timeout = d
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := applyFile(&cfg, path, raw); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string, raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("config file %s: invalid JSON", path)
	}
	if v := gjson.GetBytes(raw, "cfr_jar"); v.Exists() {
		cfg.CFRJar = v.String()
	}
	if v := gjson.GetBytes(raw, "java"); v.Exists() {
		cfg.Java = v.String()
	}
	if v := gjson.GetBytes(raw, "timeout"); v.Exists() {
		d, err := time.ParseDuration(v.String())
		if err != nil {
			return fmt.Errorf("config file %s: timeout: %w", path, err)
		}
		cfg.Timeout = d
	}
	if v := gjson.GetBytes(raw, "extra_args"); v.Exists() {
		cfg.ExtraArgs = nil
		for _, a := range v.Array() {
			cfg.ExtraArgs = append(cfg.ExtraArgs, a.String())
		}
	}
	return nil
}
