package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8050, ShutdownTimeout: time.Second, RequestTimeout: time.Minute},
		Data:    DataConfig{Path: "data.csv"},
		Map:     MapConfig{CenterLat: 39.8283, CenterLng: -98.5795, Zoom: 4, TopN: 5, TileURL: "https://tiles/{z}/{x}/{y}.png"},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8050 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8050)
	}
	if cfg.Map.Zoom != 4 {
		t.Errorf("Map.Zoom = %d, want %d", cfg.Map.Zoom, 4)
	}
	if cfg.Map.CenterLat != 39.8283 || cfg.Map.CenterLng != -98.5795 {
		t.Errorf("Map center = (%v, %v), want (39.8283, -98.5795)", cfg.Map.CenterLat, cfg.Map.CenterLng)
	}
	if cfg.Map.TopN != 5 {
		t.Errorf("Map.TopN = %d, want %d", cfg.Map.TopN, 5)
	}
	if !strings.Contains(cfg.Map.TileURL, "cartocdn") {
		t.Errorf("Map.TileURL = %q, want CARTO default", cfg.Map.TileURL)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATA_PATH", "/srv/eom.csv")
	t.Setenv("MAP_ZOOM", "6")
	t.Setenv("MAP_CENTER_LAT", "40.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Data.Path != "/srv/eom.csv" {
		t.Errorf("Data.Path = %q, want %q", cfg.Data.Path, "/srv/eom.csv")
	}
	if cfg.Map.Zoom != 6 {
		t.Errorf("Map.Zoom = %d, want %d", cfg.Map.Zoom, 6)
	}
	if cfg.Map.CenterLat != 40.5 {
		t.Errorf("Map.CenterLat = %v, want %v", cfg.Map.CenterLat, 40.5)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "7000")
	t.Setenv("DATA_PATH", "")
	t.Setenv("EOM_DATA", "alt.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7000)
	}
	if cfg.Data.Path != "alt.csv" {
		t.Errorf("Data.Path = %q, want %q", cfg.Data.Path, "alt.csv")
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("MAP_ZOOM", "close")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-integer MAP_ZOOM")
	}
	if !strings.Contains(err.Error(), "MAP_ZOOM") {
		t.Errorf("error should mention MAP_ZOOM: %v", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Server.ShutdownTimeout != 90*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eommap.yaml")
	content := `server_port: 9100
data_path: from-file.csv
map_zoom: 5
map_center_lng: -100.25
rate_limit_enabled: false
trusted_proxies:
  - 10.0.0.0/8
  - 127.0.0.1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DATA_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9100)
	}
	if cfg.Data.Path != "from-file.csv" {
		t.Errorf("Data.Path = %q, want %q", cfg.Data.Path, "from-file.csv")
	}
	if cfg.Map.Zoom != 5 {
		t.Errorf("Map.Zoom = %d, want %d", cfg.Map.Zoom, 5)
	}
	if cfg.Map.CenterLng != -100.25 {
		t.Errorf("Map.CenterLng = %v, want %v", cfg.Map.CenterLng, -100.25)
	}
	if cfg.Rate.Enabled {
		t.Error("Rate.Enabled = true, want false from file")
	}
	if len(cfg.Security.TrustedProxies) != 2 || cfg.Security.TrustedProxies[1] != "127.0.0.1" {
		t.Errorf("TrustedProxies = %v, want two entries from file", cfg.Security.TrustedProxies)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eommap.yaml")
	if err := os.WriteFile(path, []byte("map_top_n: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("MAP_TOP_N", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Map.TopN != 8 {
		t.Errorf("Map.TopN = %d, want env value %d", cfg.Map.TopN, 8)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"empty data path", func(c *Config) { c.Data.Path = " " }, "DATA_PATH"},
		{"latitude out of range", func(c *Config) { c.Map.CenterLat = 91 }, "MAP_CENTER_LAT"},
		{"longitude out of range", func(c *Config) { c.Map.CenterLng = -181 }, "MAP_CENTER_LNG"},
		{"zoom too deep", func(c *Config) { c.Map.Zoom = 25 }, "MAP_ZOOM"},
		{"top n zero", func(c *Config) { c.Map.TopN = 0 }, "MAP_TOP_N"},
		{"rate enabled without limit", func(c *Config) { c.Rate.RequestsPerMinute = 0 }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"rate disabled without limit", func(c *Config) { c.Rate.Enabled = false; c.Rate.RequestsPerMinute = 0 }, ""},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "METRICS_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Map.Zoom = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "MAP_ZOOM"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8050, ":8050"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"localhost", 443, "localhost:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString(t *testing.T) {
	str := validConfig().String()
	for _, want := range []string{"Port: 8050", `Path: "data.csv"`, "TopN: 5"} {
		if !strings.Contains(str, want) {
			t.Errorf("String() = %q, missing %q", str, want)
		}
	}
}
