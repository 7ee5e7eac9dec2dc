// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	Options `yaml:",inline" mapstructure:",squash"`

	// TemplatePath optionally replaces the built-in XMP template. The file
	// must contain the @#pdfaid:part#@ and @#pdfaid:conformance#@ tokens.
	TemplatePath string `json:"template,omitempty" yaml:"template,omitempty" mapstructure:"template"`

	// ICCProfilePath optionally replaces the built-in sRGB ICC profile used
	// for the output intent.
	ICCProfilePath string `json:"icc_profile,omitempty" yaml:"icc_profile,omitempty" mapstructure:"icc_profile"`

	// SyncInfo copies the normalized document information (title, author,
	// subject, keywords, producer) into the XMP packet.
	SyncInfo bool `json:"sync_info" yaml:"sync_info" mapstructure:"sync_info"`
}

// LedgerConfig holds settings for the conversion history database.
type LedgerConfig struct {
	// StateDir is the directory holding ledger.db (default ".pdfa-convert").
	StateDir string `json:"state_dir" yaml:"state_dir" mapstructure:"state_dir"`

	// Disabled turns off history recording and ledger-based skipping.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// ValidatorConfig holds settings for veraPDF validation.
type ValidatorConfig struct {
	// Image is the veraPDF container image (default "verapdf/cli:latest").
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadBytes caps the request body size (default 50 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// APIToken, when set, is required as a bearer token on /api routes.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty" mapstructure:"api_token"`

	// AllowedOrigins lists CORS origins. Empty means same-origin only.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Config groups all settings read from pdfa-convert.yaml.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Ledger     LedgerConfig     `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Validator  ValidatorConfig  `json:"validator" yaml:"validator" mapstructure:"validator"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	LogLevel   string           `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}
