// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	cfgKeyServerURL = "server_url"
	cfgKeyPassword  = "password"

	defaultServerURL = "http://localhost:8080"
	envPrefix        = "VENTUREADMIN"
)

const defaultConfigYAML = `# ventureadmin configuration

# API server of the site
server_url: http://localhost:8080

# Admin password (or set VENTUREADMIN_PASSWORD)
# password:
`

// loadConfig reads the config file with environment overrides. An
// explicitly named file must exist; the default one is created on first
// run.
func loadConfig(file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyServerURL, defaultServerURL)
	v.SetDefault(cfgKeyPassword, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		return v, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return v, nil
	}
	dir := filepath.Join(home, ".ventureadmin")
	if err := ensureDefaultConfig(dir); err != nil {
		return nil, err
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfig writes a commented config.yaml into dir unless one
// exists.
func ensureDefaultConfig(dir string) error {
	path := filepath.Join(dir, "config.yaml")
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o600)
}
