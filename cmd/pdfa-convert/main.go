// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfa-convert CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfa-convert/internal/ledger"
	"github.com/pdiddy/pdfa-convert/internal/secrets"
	"github.com/pdiddy/pdfa-convert/internal/server"
	"github.com/pdiddy/pdfa-convert/internal/validate"
	"github.com/pdiddy/pdfa-convert/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the merged configuration (defaults, config file, env, flags).
	cfg types.Config

	// logger writes diagnostics to stderr at the configured level.
	logger *slog.Logger
)

// rootCmd is the base command for the pdfa-convert CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfa-convert",
	Short: "Convert PDF files to PDF/A",
	Long: `pdfa-convert turns ordinary PDF files into PDF/A archival files. It
normalizes the document information, writes a PDF/A identification XMP
packet, attaches an sRGB output intent and sets the PDF version.

Converted files can be checked with veraPDF (validate), inspected (inspect),
and every conversion is recorded in a local history (history).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		if cfg.Server.APIToken == "" {
			tok, err := secrets.APIToken(secrets.DefaultDir)
			if err != nil {
				return err
			}
			if tok != "" {
				cfg.Server.APIToken = tok
				logger.Debug("loaded API token", "dir", secrets.DefaultDir)
			}
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pdfa-convert.yaml or ~/.config/pdfa-convert/pdfa-convert.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Float64("pdf-version", 0, "PDF version of the output (default 1.4)")
	pf.String("part", "", "PDF/A part: 1, 2, 3 or 4 (default 1)")
	pf.String("conformance", "", "PDF/A conformance level: A, B, U, E or F (default A)")
	pf.String("template", "", "XMP template file with @#pdfaid:part#@ and @#pdfaid:conformance#@ tokens")
	pf.String("icc-profile", "", "ICC profile for the output intent (default: built-in sRGB)")
	pf.Bool("sync-info", false, "copy title, author, subject, keywords and producer into the XMP packet")
	pf.String("state-dir", "", "directory holding the conversion history (default .pdfa-convert)")
	pf.Bool("no-history", false, "do not record or consult the conversion history")

	for key, flag := range map[string]string{
		"log_level":              "log-level",
		"conversion.pdf_version": "pdf-version",
		"conversion.part":        "part",
		"conversion.conformance": "conformance",
		"conversion.template":    "template",
		"conversion.icc_profile": "icc-profile",
		"conversion.sync_info":   "sync-info",
		"ledger.state_dir":       "state-dir",
		"ledger.disabled":        "no-history",
	} {
		viper.BindPFlag(key, pf.Lookup(flag))
	}
}

// setDefaults registers every config key so that environment variables
// reach viper.Unmarshal.
func setDefaults(v *viper.Viper) {
	def := types.DefaultOptions()
	v.SetDefault("log_level", "info")
	v.SetDefault("conversion.pdf_version", def.PDFVersion)
	v.SetDefault("conversion.part", def.Part)
	v.SetDefault("conversion.conformance", def.Conformance)
	v.SetDefault("conversion.template", "")
	v.SetDefault("conversion.icc_profile", "")
	v.SetDefault("conversion.sync_info", false)
	v.SetDefault("ledger.state_dir", ledger.DefaultStateDir)
	v.SetDefault("ledger.disabled", false)
	v.SetDefault("validator.image", validate.DefaultImage)
	v.SetDefault("server.addr", server.DefaultAddr)
	v.SetDefault("server.max_upload_bytes", server.DefaultMaxUploadBytes)
	v.SetDefault("server.api_token", "")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", server.DefaultShutdownTimeout)
}

func initConfig() {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfa-convert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfa-convert"))
		}
	}

	viper.SetEnvPrefix("PDFA_CONVERT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the global viper state into a Config.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("reading configuration: %w", err)
	}
	return c, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
