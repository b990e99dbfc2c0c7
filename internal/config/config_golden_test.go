package config

import (
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// TestConfigDefaultsGoldenFile tests that our defaults match the golden file
func TestConfigDefaultsGoldenFile(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	goldenData, err := os.ReadFile("testdata/defaults.yaml")
	if err != nil {
		t.Fatalf("Failed to read golden defaults file: %v", err)
	}

	var goldenConfig Config
	if err := yaml.Unmarshal(goldenData, &goldenConfig); err != nil {
		t.Fatalf("Failed to parse golden config: %v", err)
	}

	testConfig := &Config{}
	ApplyDefaults(testConfig)

	if !reflect.DeepEqual(*testConfig, goldenConfig) {
		t.Errorf("Defaults drifted from testdata/defaults.yaml.\ngot:  %+v\nwant: %+v", *testConfig, goldenConfig)
	}
}

// TestConfigConstantsMatch tests that generated constants match actual defaults
func TestConfigConstantsMatch(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Version != DefaultVersion {
		t.Errorf("Version constant mismatch: got %q, want %q", cfg.Version, DefaultVersion)
	}
	if cfg.Site.Name != DefaultSiteName {
		t.Errorf("Site.Name constant mismatch: got %q, want %q", cfg.Site.Name, DefaultSiteName)
	}
	if cfg.Server.Host != DefaultServerHost {
		t.Errorf("Server.Host constant mismatch: got %q, want %q", cfg.Server.Host, DefaultServerHost)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port constant mismatch: got %q, want %q", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Theme.Default != DefaultThemeDefault {
		t.Errorf("Theme.Default constant mismatch: got %q, want %q", cfg.Theme.Default, DefaultThemeDefault)
	}
	if cfg.Theme.AllowSwitching != DefaultThemeAllowSwitching {
		t.Errorf("Theme.AllowSwitching constant mismatch: got %v, want %v",
			cfg.Theme.AllowSwitching, DefaultThemeAllowSwitching)
	}
	if cfg.Editor.Preview != DefaultEditorPreview {
		t.Errorf("Editor.Preview constant mismatch: got %v, want %v", cfg.Editor.Preview, DefaultEditorPreview)
	}
	if cfg.Sink.SQLite.Path != DefaultSQLitePath {
		t.Errorf("Sink.SQLite.Path constant mismatch: got %q, want %q", cfg.Sink.SQLite.Path, DefaultSQLitePath)
	}
	if cfg.Sink.FS.Dir != DefaultFSDir {
		t.Errorf("Sink.FS.Dir constant mismatch: got %q, want %q", cfg.Sink.FS.Dir, DefaultFSDir)
	}
	if cfg.Logging.Level != DefaultLoggingLevel {
		t.Errorf("Logging.Level constant mismatch: got %q, want %q", cfg.Logging.Level, DefaultLoggingLevel)
	}
}

// TestInvalidConfigValidation tests validation using invalid configs from testdata
func TestInvalidConfigValidation(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	testCases := []struct {
		name        string
		filename    string
		expectError bool
		errorText   string
	}{
		{
			name:        "Invalid version",
			filename:    "testdata/invalid_version.yaml",
			expectError: true,
			errorText:   "unsupported configuration version",
		},
		{
			name:        "Unknown sink",
			filename:    "testdata/unknown_sink.yaml",
			expectError: true,
			errorText:   "unknown sink type",
		},
		{
			name:        "S3 sink without bucket",
			filename:    "testdata/s3_without_bucket.yaml",
			expectError: true,
			errorText:   "requires sink.s3.bucket",
		},
		{
			name:        "Valid defaults file",
			filename:    "testdata/defaults.yaml",
			expectError: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			originalAppConfig := AppConfig
			defer func() { AppConfig = originalAppConfig }()

			err := LoadConfig(tc.filename)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tc.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
			if tc.expectError && err != nil && tc.errorText != "" {
				if !strings.Contains(err.Error(), tc.errorText) {
					t.Errorf("Expected error to contain %q, got %q", tc.errorText, err.Error())
				}
			}
			if tc.expectError && AppConfig != originalAppConfig {
				t.Error("AppConfig should not change when loading fails")
			}
		})
	}
}
