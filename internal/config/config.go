package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Version string        `yaml:"version" default:"1"`
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	Theme   ThemeConfig   `yaml:"theme"`
	Editor  EditorConfig  `yaml:"editor"`
	Sink    SinkConfig    `yaml:"sink"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type SiteConfig struct {
	Name    string `yaml:"name" default:"ChurchHelp"`
	Tagline string `yaml:"tagline" default:"Create a New Sermon"`
	Footer  string `yaml:"footer" default:"ChurchHelp. All rights reserved."`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
}

type ThemeConfig struct {
	Default            string       `yaml:"default" default:"light"`
	AllowSwitching     bool         `yaml:"allow_switching" default:"true"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" default:"catppuccin-latte"`
}

type EditorConfig struct {
	Preview     bool `yaml:"preview" default:"true"`
	LivePreview bool `yaml:"live_preview" default:"true"`
	// Minutes a session may sit untouched before its draft is discarded.
	SessionIdleMinutes int `yaml:"session_idle_minutes" default:"120"`
}

func (e EditorConfig) SessionIdle() time.Duration {
	return time.Duration(e.SessionIdleMinutes) * time.Minute
}

type SinkConfig struct {
	// Any of: log, sqlite, fs, s3.
	Types  []string     `yaml:"types" default:"log"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	FS     FSConfig     `yaml:"fs"`
	S3     S3Config     `yaml:"s3"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" default:"./sermons.db"`
}

type FSConfig struct {
	Dir string `yaml:"dir" default:"./sermons"`
}

// S3Config holds the bucket location. Credentials come from
// S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY.
type S3Config struct {
	Bucket   string `yaml:"bucket" default:""`
	Prefix   string `yaml:"prefix" default:"sermons/"`
	Endpoint string `yaml:"endpoint" default:""`
	Region   string `yaml:"region" default:"auto"`
}

var supportedVersions = []string{"1"}

var AppConfig *Config

func init() {
	AppConfig = Defaults()
}

func Defaults() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func LoadConfig(path string) error {
	config := Defaults()

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

func (c *Config) Validate() error {
	supported := false
	for _, v := range supportedVersions {
		if c.Version == v {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported configuration version %q", c.Version)
	}

	for _, t := range c.Sink.Types {
		switch t {
		case SinkLog, SinkSQLite, SinkFS:
		case SinkS3:
			if c.Sink.S3.Bucket == "" {
				return fmt.Errorf("sink %q requires sink.s3.bucket", t)
			}
		default:
			return fmt.Errorf("unknown sink type %q", t)
		}
	}

	if c.Editor.SessionIdleMinutes < 0 {
		return fmt.Errorf("editor.session_idle_minutes must not be negative")
	}
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
