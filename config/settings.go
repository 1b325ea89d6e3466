/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Settings holds every recognized SLAMD configuration key (spec §6).
// A Settings value is immutable once Load returns: changing the backing
// file triggers a fresh Load, not an in-place mutation, so a running
// session never observes a torn read.
type Settings struct {
	ServerAddress string
	ClientPort    int
	StatPort      int

	EnableRealTimeStats bool
	StatReportInterval  int // seconds

	PersistStatistics    bool
	PersistenceDirectory string
	PersistenceInterval  int // seconds

	AuthType        string // "none" or "simple"
	AuthID          string
	AuthCredentials string
	RestrictedMode  bool

	UseCustomClassLoader bool
	ClassPath            string

	UseSSL             bool
	BlindTrust         bool
	SSLKeyStore        string
	SSLKeyStorePass    string
	SSLTrustStore      string
	SSLTrustStorePass  string

	AggregateThreadData bool

	Verbose bool
	Quiet   bool
	LogFile string

	// Supervisor-only keys.
	MaxClients        int
	AutoCreateClients bool
	StartCommand      string
	AutoReconnect     int // seconds
}

func defaults(v *viper.Viper) {
	v.SetDefault("serverAddress", "127.0.0.1")
	v.SetDefault("clientPort", 3000)
	v.SetDefault("statPort", 3003)
	v.SetDefault("enableRealTimeStats", false)
	v.SetDefault("statReportInterval", 10)
	v.SetDefault("persistStatistics", false)
	v.SetDefault("persistenceDirectory", "./stats")
	v.SetDefault("persistenceInterval", 30)
	v.SetDefault("authType", "none")
	v.SetDefault("restrictedMode", false)
	v.SetDefault("useCustomClassLoader", false)
	v.SetDefault("useSSL", false)
	v.SetDefault("blindTrust", false)
	v.SetDefault("aggregateThreadData", false)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("maxClients", 1)
	v.SetDefault("autoCreateClients", false)
	v.SetDefault("autoReconnect", 30)
}

// parseBool recognizes the spec's relaxed boolean vocabulary (spec §6):
// {true, yes, on, 1} / {false, no, off, 0}, case-insensitively.
func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	default:
		return false, false
	}
}

func bindBool(v *viper.Viper, key string) bool {
	if raw := v.GetString(key); raw != "" {
		if b, ok := parseBool(raw); ok {
			return b
		}
	}
	return v.GetBool(key)
}

// expandPath resolves a leading ~ to the current user's home directory.
// Paths that don't start with ~ (including empty ones) pass through unchanged.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

// Load reads path (any format viper supports: yaml, json, toml, ini) into a
// Settings value.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return fromViper(v), nil
}

// Watch reads path once, then starts viper's file watcher, which reloads it
// on every write event and hands the new Settings to onChange. It returns
// as soon as the watcher is started.
func Watch(path string, onChange func(*Settings)) error {
	v := viper.New()
	v.SetConfigFile(path)
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		onChange(fromViper(v))
	})
	v.WatchConfig()
	return nil
}

func fromViper(v *viper.Viper) *Settings {
	return &Settings{
		ServerAddress:         v.GetString("serverAddress"),
		ClientPort:            v.GetInt("clientPort"),
		StatPort:              v.GetInt("statPort"),
		EnableRealTimeStats:   bindBool(v, "enableRealTimeStats"),
		StatReportInterval:    v.GetInt("statReportInterval"),
		PersistStatistics:     bindBool(v, "persistStatistics"),
		PersistenceDirectory:  expandPath(v.GetString("persistenceDirectory")),
		PersistenceInterval:   v.GetInt("persistenceInterval"),
		AuthType:              v.GetString("authType"),
		AuthID:                v.GetString("authID"),
		AuthCredentials:       v.GetString("authCredentials"),
		RestrictedMode:        bindBool(v, "restrictedMode"),
		UseCustomClassLoader:  bindBool(v, "useCustomClassLoader"),
		ClassPath:             expandPath(v.GetString("classPath")),
		UseSSL:                bindBool(v, "useSSL"),
		BlindTrust:            bindBool(v, "blindTrust"),
		SSLKeyStore:           v.GetString("sslKeyStore"),
		SSLKeyStorePass:       v.GetString("sslKeyStorePassword"),
		SSLTrustStore:         v.GetString("sslTrustStore"),
		SSLTrustStorePass:     v.GetString("sslTrustStorePassword"),
		AggregateThreadData:   bindBool(v, "aggregateThreadData"),
		Verbose:               bindBool(v, "verbose"),
		Quiet:                 bindBool(v, "quiet"),
		LogFile:               v.GetString("logFile"),
		MaxClients:            v.GetInt("maxClients"),
		AutoCreateClients:     bindBool(v, "autoCreateClients"),
		StartCommand:          v.GetString("startCommand"),
		AutoReconnect:         v.GetInt("autoReconnect"),
	}
}
