/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */
// Package config loads the plotframe user configuration: a YAML file in the user scope with
// defaults and PFR_* environment overrides on top. The session token lives in the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"plotframe/internal/axis"
	"plotframe/internal/frame"
	"plotframe/internal/projection"
	"plotframe/internal/session"
)

// AppConfig is the user-editable configuration persisted to a YAML file.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Logging       LoggingConfig `yaml:"logging"`
	Session       SessionConfig `yaml:"session"`
	Storage       StorageConfig `yaml:"storage"`
	Frame         FrameConfig   `yaml:"frame"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Source     bool   `yaml:"source"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// SessionConfig describes the remote session that receives zoom requests.
// The bearer token is not stored on disk; it lives in the OS keychain.
type SessionConfig struct {
	Mode      string `yaml:"mode"`      // "offline" | "live"
	Transport string `yaml:"transport"` // "ws" | "http"
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// StorageConfig points at the zoom-state store. An empty DSN selects a sqlite file next to
// the config file; postgres:// DSNs select a server database.
type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

type MarginsConfig struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Top    float64 `yaml:"top"`
}

// AxisConfig holds the attributes of one axis. Ticks: 0 off, 1 normal, 2 both-side ticks,
// 3 both-side labels; unset means normal.
type AxisConfig struct {
	Min        *float64 `yaml:"min,omitempty"`
	Max        *float64 `yaml:"max,omitempty"`
	ZoomMin    *float64 `yaml:"zoom_min,omitempty"`
	ZoomMax    *float64 `yaml:"zoom_max,omitempty"`
	Log        bool     `yaml:"log,omitempty"`
	Symlog     bool     `yaml:"symlog,omitempty"`
	Grid       bool     `yaml:"grid,omitempty"`
	Ticks      *int     `yaml:"ticks,omitempty"`
	SwapSide   bool     `yaml:"swap_side,omitempty"`
	Reverse    bool     `yaml:"reverse,omitempty"`
	LabelsHide bool     `yaml:"labels_hide,omitempty"`
}

type FrameConfig struct {
	Margins    *MarginsConfig        `yaml:"margins,omitempty"`
	DrawAxes   *bool                 `yaml:"draw_axes,omitempty"`
	Rotate     bool                  `yaml:"rotate"`
	Projection string                `yaml:"projection"`
	SwapXY     bool                  `yaml:"swap_xy"`
	Axes       map[string]AxisConfig `yaml:"axes,omitempty"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Session:       SessionConfig{Mode: "offline", Transport: "ws", TimeoutMs: 10000},
		Frame:         FrameConfig{Projection: projection.None.String()},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile       = "PFR_CONFIG"
	EnvSessionMode      = "PFR_SESSION_MODE"
	EnvSessionURL       = "PFR_SESSION_URL"
	EnvSessionTransport = "PFR_SESSION_TRANSPORT"
	EnvSessionTimeoutMs = "PFR_SESSION_TIMEOUT_MS"
	EnvStorageDSN       = "PFR_STORAGE_DSN"
	EnvProjection       = "PFR_PROJECTION"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PFR_LOG_LEVEL"
	EnvLogFormat = "PFR_LOG_FORMAT"
	EnvLogSource = "PFR_LOG_SOURCE"
	EnvLogFile   = "PFR_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "plotframe"
	keyringToken   = "session_token"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore with github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// SetTokenStore replaces the keyring backend and returns the previous one.
func SetTokenStore(ts TokenStore) TokenStore {
	prev := tokenStore
	tokenStore = ts
	return prev
}

// DeleteToken removes the stored session token. A missing token is not an error.
func DeleteToken() error {
	if err := tokenStore.Delete(keyringService, keyringToken); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}

// ConfigPath returns the per-user config file path. PFR_CONFIG replaces it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PlotFrame")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PlotFrame")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "plotframe")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment
// overrides. The session token is read from the keyring and returned separately.
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), "", err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing file yields the defaults; a malformed one
// is an error.
func LoadFile(path string) (AppConfig, string, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, "", fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = filepath.Join(filepath.Dir(path), "state.db")
	}
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return fmt.Errorf("store session token: %w", err)
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Logging.MaxSizeMB > 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxBackups > 0 {
		dst.Logging.MaxBackups = src.Logging.MaxBackups
	}
	// session
	if v := strings.TrimSpace(src.Session.Mode); v != "" {
		dst.Session.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Session.Transport); v != "" {
		dst.Session.Transport = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Session.URL); v != "" {
		dst.Session.URL = v
	}
	if src.Session.TimeoutMs != 0 {
		dst.Session.TimeoutMs = src.Session.TimeoutMs
	}
	if v := strings.TrimSpace(src.Storage.DSN); v != "" {
		dst.Storage.DSN = v
	}
	// frame: the file owns booleans and the axis table
	if src.Frame.Margins != nil {
		m := *src.Frame.Margins
		dst.Frame.Margins = &m
	}
	if src.Frame.DrawAxes != nil {
		v := *src.Frame.DrawAxes
		dst.Frame.DrawAxes = &v
	}
	dst.Frame.Rotate = src.Frame.Rotate
	dst.Frame.SwapXY = src.Frame.SwapXY
	if v := strings.TrimSpace(src.Frame.Projection); v != "" {
		dst.Frame.Projection = strings.ToLower(v)
	}
	if len(src.Frame.Axes) > 0 {
		dst.Frame.Axes = make(map[string]AxisConfig, len(src.Frame.Axes))
		for k, v := range src.Frame.Axes {
			dst.Frame.Axes[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSessionMode)); v != "" {
		cfg.Session.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSessionURL)); v != "" {
		cfg.Session.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSessionTransport)); v != "" {
		cfg.Session.Transport = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSessionTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProjection)); v != "" {
		cfg.Frame.Projection = strings.ToLower(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"session.mode":       EnvSessionMode,
	"session.url":        EnvSessionURL,
	"session.transport":  EnvSessionTransport,
	"session.timeout_ms": EnvSessionTimeoutMs,
	"storage.dsn":        EnvStorageDSN,
	"frame.projection":   EnvProjection,
	"logging.level":      EnvLogLevel,
	"logging.format":     EnvLogFormat,
	"logging.source":     EnvLogSource,
	"logging.file":       EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envByKey[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Timeout returns the session timeout, falling back to the default for non-positive values.
func (s SessionConfig) Timeout() time.Duration {
	ms := s.TimeoutMs
	if ms <= 0 {
		ms = Defaults().Session.TimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// SinkConfig converts the section into the session sink configuration.
func (s SessionConfig) SinkConfig(token string) session.Config {
	return session.Config{
		Mode:      session.ParseMode(s.Mode),
		Transport: s.Transport,
		URL:       s.URL,
		Token:     token,
		Timeout:   s.Timeout(),
	}
}

// Attributes converts the frame section into frame attributes. Unknown axis names and
// projections are reported as errors; the returned attributes are still usable.
func (fc FrameConfig) Attributes() (frame.Attributes, error) {
	a := frame.DefaultAttributes()
	var errs []error
	if fc.Margins != nil {
		a.Margins = frame.Margins{Left: fc.Margins.Left, Right: fc.Margins.Right, Bottom: fc.Margins.Bottom, Top: fc.Margins.Top}
	}
	if fc.DrawAxes != nil {
		a.DrawAxes = *fc.DrawAxes
	}
	a.Rotate = fc.Rotate
	if fc.Projection != "" {
		id, ok := projection.ParseID(fc.Projection)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown projection %q", fc.Projection))
		}
		a.Projection = id
	}
	for key, ac := range fc.Axes {
		n, ok := axis.Parse(key)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown axis %q", key))
			continue
		}
		aa := frame.AxisAttributes{
			Min: ac.Min, Max: ac.Max, ZoomMin: ac.ZoomMin, ZoomMax: ac.ZoomMax,
			Log: ac.Log, Symlog: ac.Symlog, Grid: ac.Grid, Ticks: frame.TicksNormal,
			SwapSide: ac.SwapSide, Reverse: ac.Reverse, LabelsHide: ac.LabelsHide,
		}
		if ac.Ticks != nil {
			t := *ac.Ticks
			if t < int(frame.TicksOff) || t > int(frame.LabelsBothSides) {
				errs = append(errs, fmt.Errorf("axis %s: ticks mode %d out of range", key, t))
			} else {
				aa.Ticks = frame.TicksMode(t)
			}
		}
		a.Axes[n] = aa
	}
	return a, errors.Join(errs...)
}
