package confloader

import (
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Node struct {
		GossipInterval time.Duration `koanf:"gossip_interval"`
		QueueCapacity  int           `koanf:"queue_capacity"`
	} `koanf:"node"`
	Telemetry struct {
		MetricsAddr string `koanf:"metrics_addr"`
	} `koanf:"telemetry"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/meshnode.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.FilePath() != "/path/to/meshnode.yaml" {
		t.Errorf("FilePath() = %q", l.FilePath())
	}
	if NewLoader().envPrefix != DefaultEnvPrefix {
		t.Errorf("default envPrefix = %q, want %q", NewLoader().envPrefix, DefaultEnvPrefix)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"MESHNODE_NODE__GOSSIP_INTERVAL", "node.gossip_interval"},
		{"MESHNODE_TELEMETRY__METRICS_ADDR", "telemetry.metrics_addr"},
		{"MESHNODE_LOG__LEVEL", "log.level"},
		{"MESHNODE_DEBUG", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := envKey(DefaultEnvPrefix, tt.name); got != tt.want {
				t.Errorf("envKey(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoader_LoadFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshnode.yaml")
	writeFile(t, configPath, `
node:
  gossip_interval: 150ms
  queue_capacity: 32
telemetry:
  metrics_addr: "127.0.0.1:9100"
`)

	l := NewLoader()
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if addr := l.GetString("telemetry.metrics_addr"); addr != "127.0.0.1:9100" {
		t.Errorf("telemetry.metrics_addr = %q", addr)
	}
	if n := l.GetInt("node.queue_capacity"); n != 32 {
		t.Errorf("node.queue_capacity = %d, want 32", n)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	if err := NewLoader().LoadFile("/nonexistent/meshnode.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
	if err := NewLoader().LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("MESHNODE_NODE__QUEUE_CAPACITY", "64")
	t.Setenv("MESHNODE_TELEMETRY__METRICS_ADDR", "127.0.0.1:9200")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if n := l.GetInt("node.queue_capacity"); n != 64 {
		t.Errorf("node.queue_capacity = %d, want 64", n)
	}
	if addr := l.GetString("telemetry.metrics_addr"); addr != "127.0.0.1:9200" {
		t.Errorf("telemetry.metrics_addr = %q", addr)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"log.level": "debug"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if level := l.GetString("log.level"); level != "debug" {
		t.Errorf("log.level = %q, want debug", level)
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshnode.yaml")
	writeFile(t, configPath, `
node:
  gossip_interval: 150ms
  queue_capacity: 32
log:
  level: warn
telemetry:
  metrics_addr: "from-file:9100"
`)
	t.Setenv("MESHNODE_TELEMETRY__METRICS_ADDR", "from-env:9100")
	t.Setenv("MESHNODE_LOG__LEVEL", "error")

	l := NewLoader(
		WithConfigFile(configPath),
		WithOverrides(map[string]any{"log.level": "debug"}),
	)

	var cfg testConfig
	cfg.Node.QueueCapacity = 100
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Node.GossipInterval != 150*time.Millisecond {
		t.Errorf("GossipInterval = %v, want 150ms from file", cfg.Node.GossipInterval)
	}
	if cfg.Node.QueueCapacity != 32 {
		t.Errorf("QueueCapacity = %d, want 32 (file overrides default)", cfg.Node.QueueCapacity)
	}
	if cfg.Telemetry.MetricsAddr != "from-env:9100" {
		t.Errorf("MetricsAddr = %q, want env to override file", cfg.Telemetry.MetricsAddr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want override to win", cfg.Log.Level)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_Load_KeepsDefaults(t *testing.T) {
	var cfg testConfig
	cfg.Node.GossipInterval = 300 * time.Millisecond
	cfg.Log.Level = "info"

	if err := NewLoader(WithEnvPrefix("MESHNODE_TEST_UNSET_")).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Node.GossipInterval != 300*time.Millisecond || cfg.Log.Level != "info" {
		t.Errorf("Load() without sources changed defaults: %+v", cfg)
	}
}

func TestLoader_Reload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshnode.yaml")
	writeFile(t, configPath, "log:\n  level: info\n")

	l := NewLoader(WithConfigFile(configPath), WithEnvPrefix("MESHNODE_TEST_UNSET_"))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Log.Level = %q, want info", cfg.Log.Level)
	}

	writeFile(t, configPath, "log:\n  level: debug\n")
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level after reload = %q, want debug", cfg.Log.Level)
	}
}

func TestMapProvider(t *testing.T) {
	p := mapProvider{"node.queue_capacity": 8}

	if _, err := p.ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v, want ErrReadBytesNotSupported", err)
	}

	m, err := p.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	node, ok := m["node"].(map[string]any)
	if !ok || node["queue_capacity"] != 8 {
		t.Errorf("Read() = %v, want nested node.queue_capacity", m)
	}
}
