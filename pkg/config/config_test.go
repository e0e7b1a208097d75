package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Endpoint != "http://localhost:8000/api/predict" {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}

	if cfg.FieldName != "file" {
		t.Errorf("expected default FieldName='file', got %q", cfg.FieldName)
	}

	if cfg.RequestTimeoutSeconds != 0 {
		t.Errorf("expected no request timeout by default, got %d", cfg.RequestTimeoutSeconds)
	}

	if cfg.MaxFileSizeMB != 10 {
		t.Errorf("expected default MaxFileSizeMB=10, got %d", cfg.MaxFileSizeMB)
	}

	if cfg.TracingEndpoint != "" {
		t.Errorf("expected tracing disabled by default, got %q", cfg.TracingEndpoint)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	// Loading a non-existent file should return default config
	cfg, err := Load("/nonexistent/path/config.yaml")

	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}

	if cfg.PreviewWidth != 32 {
		t.Errorf("expected default PreviewWidth=32, got %d", cfg.PreviewWidth)
	}
}

func TestSave_And_Load(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Endpoint = "https://grassfier.example.com/api/predict"
	cfg.RequestTimeoutSeconds = 15
	cfg.MaxFileSizeMB = 4
	cfg.PickerRoot = "/srv/photos"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loadedCfg.Endpoint != cfg.Endpoint {
		t.Errorf("Endpoint: expected %q, got %q", cfg.Endpoint, loadedCfg.Endpoint)
	}

	if loadedCfg.RequestTimeoutSeconds != 15 {
		t.Errorf("RequestTimeoutSeconds: expected 15, got %d", loadedCfg.RequestTimeoutSeconds)
	}

	if loadedCfg.MaxFileSizeMB != 4 {
		t.Errorf("MaxFileSizeMB: expected 4, got %d", loadedCfg.MaxFileSizeMB)
	}

	if loadedCfg.PickerRoot != "/srv/photos" {
		t.Errorf("PickerRoot: expected /srv/photos, got %q", loadedCfg.PickerRoot)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	// Partial config: only the endpoint is set
	yamlContent := `endpoint: http://10.0.0.5:8000/api/predict
field_name: ""
preview_width: 0
watch_debounce_ms: -1
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Endpoint != "http://10.0.0.5:8000/api/predict" {
		t.Errorf("expected endpoint to be preserved, got %q", cfg.Endpoint)
	}

	if cfg.FieldName != "file" {
		t.Errorf("expected default FieldName for empty value, got %q", cfg.FieldName)
	}

	if cfg.PreviewWidth != 32 {
		t.Errorf("expected default PreviewWidth for zero value, got %d", cfg.PreviewWidth)
	}

	if cfg.WatchDebounceMS != 300 {
		t.Errorf("expected default WatchDebounceMS for negative value, got %d", cfg.WatchDebounceMS)
	}

	if cfg.MaxFileSizeMB != 10 {
		t.Errorf("expected untouched MaxFileSizeMB=10, got %d", cfg.MaxFileSizeMB)
	}
}

func TestLoad_ZeroCeilingIsKept(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("max_file_size_mb: 0\n"), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.MaxFileSize() != 0 {
		t.Errorf("expected ceiling to be disabled, got %d", cfg.MaxFileSize())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `endpoint: http://localhost:8000
field_name: [invalid yaml structure
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected error loading invalid YAML, got nil")
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "dir", "config.yaml")

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GF_ENDPOINT", "http://predict.internal/api/predict")
	t.Setenv("GF_FIELD_NAME", "image")
	t.Setenv("GF_LOG_LEVEL", "debug")
	t.Setenv("GF_TRACING_ENDPOINT", "localhost:4318")
	t.Setenv("GF_REQUEST_TIMEOUT_SECONDS", "20")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Endpoint != "http://predict.internal/api/predict" {
		t.Errorf("unexpected endpoint: %q", cfg.Endpoint)
	}
	if cfg.FieldName != "image" {
		t.Errorf("unexpected field name: %q", cfg.FieldName)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("unexpected log level: %q", cfg.LogLevel)
	}
	if cfg.TracingEndpoint != "localhost:4318" {
		t.Errorf("unexpected tracing endpoint: %q", cfg.TracingEndpoint)
	}
	if cfg.RequestTimeout() != 20*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.RequestTimeout())
	}
}

func TestApplyEnv_IgnoresInvalidTimeout(t *testing.T) {
	t.Setenv("GF_REQUEST_TIMEOUT_SECONDS", "soon")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.RequestTimeoutSeconds != 0 {
		t.Errorf("expected invalid value to be ignored, got %d", cfg.RequestTimeoutSeconds)
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RequestTimeout() != 0 {
		t.Errorf("expected zero timeout, got %v", cfg.RequestTimeout())
	}
	if cfg.MaxFileSize() != 10*1024*1024 {
		t.Errorf("expected 10 MiB ceiling, got %d", cfg.MaxFileSize())
	}
	if cfg.WatchDebounce() != 300*time.Millisecond {
		t.Errorf("expected 300ms debounce, got %v", cfg.WatchDebounce())
	}
}
