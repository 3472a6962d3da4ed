package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr                 string        `mapstructure:"addr" yaml:"addr"`
	DatabasePath         string        `mapstructure:"database_path" yaml:"database_path"`
	MediaDir             string        `mapstructure:"media_dir" yaml:"media_dir"`
	PublicBaseURL        string        `mapstructure:"public_base_url" yaml:"public_base_url"`
	HistoryLimit         int           `mapstructure:"history_limit" yaml:"history_limit"`
	ClientBufferSize     int           `mapstructure:"client_buffer_size" yaml:"client_buffer_size"`
	MessageRatePerMinute int           `mapstructure:"message_rate_per_minute" yaml:"message_rate_per_minute"`
	ReadHeaderTimeout    time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel             string        `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                 ":3001",
		DatabasePath:         "lovechat.db",
		MediaDir:             "media",
		PublicBaseURL:        "http://localhost:3001",
		HistoryLimit:         50,
		ClientBufferSize:     64,
		MessageRatePerMinute: 60,
		ReadHeaderTimeout:    5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		LogLevel:             "info",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.MediaDir != "" {
		c.MediaDir = other.MediaDir
	}
	if other.PublicBaseURL != "" {
		c.PublicBaseURL = other.PublicBaseURL
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.ClientBufferSize != 0 {
		c.ClientBufferSize = other.ClientBufferSize
	}
	if other.MessageRatePerMinute != 0 {
		c.MessageRatePerMinute = other.MessageRatePerMinute
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
