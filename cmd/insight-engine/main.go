// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the insight-engine CLI and service.
package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/secrets"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built in PersistentPreRunE and shared by every command.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "insight-engine",
	Short: "Answer questions with combined astrology, numerology and palmistry readings",
	Long: `insight-engine classifies a free-text question, runs the matching reading
engines against a text-generation backend and assembles one report.

Personal questions get astrology, numerology and palmistry readings plus a
combined interpretation; questions with a partner add a compatibility score;
technical questions get a direct structured answer. The serve command exposes
the same pipeline over HTTP and delivers reports by email.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		log, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = log

		if viper.ConfigFileUsed() != "" {
			logger.Info("using config file", zap.String("path", viper.ConfigFileUsed()))
		}

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./insight-engine.yaml or ~/.config/insight-engine/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("ai-backend", "", "text generation backend: claude, gemini or mock")
	rootCmd.PersistentFlags().String("model", "", "AI model identifier")

	_ = viper.BindPFlag("ai.backend", rootCmd.PersistentFlags().Lookup("ai-backend"))
	_ = viper.BindPFlag("ai.model", rootCmd.PersistentFlags().Lookup("model"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("insight-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "insight-engine"))
		}
	}

	viper.SetEnvPrefix("INSIGHT_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	_ = viper.ReadInConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)

	v.SetDefault("ai.backend", string(types.AIBackendMock))
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.max_retries", 2)
	v.SetDefault("ai.requests_per_second", 0)

	v.SetDefault("captcha.timeout", 10*time.Second)
	v.SetDefault("captcha.max_retries", 1)

	v.SetDefault("mail.backend", "log")
	v.SetDefault("mail.timeout", 20*time.Second)
	v.SetDefault("mail.max_retries", 2)

	v.SetDefault("pdf.timeout", 30*time.Second)
}

// loadConfig reads the merged configuration from v and fills empty
// credentials from the secrets directory.
func loadConfig(v *viper.Viper) types.Config {
	httpCfg := func(prefix string) types.HTTPConfig {
		return types.HTTPConfig{
			Timeout:    v.GetDuration(prefix + ".timeout"),
			UserAgent:  userAgent(v.GetString(prefix + ".user_agent")),
			MaxRetries: v.GetInt(prefix + ".max_retries"),
		}
	}

	cfg := types.Config{
		Server: types.ServerConfig{
			Addr:          v.GetString("server.addr"),
			AllowedOrigin: v.GetString("server.allowed_origin"),
			ReadTimeout:   v.GetDuration("server.read_timeout"),
			WriteTimeout:  v.GetDuration("server.write_timeout"),
		},
		AI: types.AIConfig{
			HTTPConfig:        httpCfg("ai"),
			Backend:           types.AIBackendName(v.GetString("ai.backend")),
			Model:             v.GetString("ai.model"),
			APIKey:            v.GetString("ai.api_key"),
			MaxTokens:         v.GetInt("ai.max_tokens"),
			RequestsPerSecond: v.GetFloat64("ai.requests_per_second"),
		},
		Captcha: types.CaptchaConfig{
			HTTPConfig: httpCfg("captcha"),
			VerifyURL:  v.GetString("captcha.verify_url"),
			Secret:     v.GetString("captcha.secret"),
			Disabled:   v.GetBool("captcha.disabled"),
		},
		Mail: types.MailConfig{
			HTTPConfig: httpCfg("mail"),
			Backend:    v.GetString("mail.backend"),
			APIKey:     v.GetString("mail.api_key"),
			From:       v.GetString("mail.from"),
			BCC:        v.GetString("mail.bcc"),
		},
		PDF: types.PDFConfig{
			Enabled:    v.GetBool("pdf.enabled"),
			BrowserBin: v.GetString("pdf.browser_bin"),
			ControlURL: v.GetString("pdf.control_url"),
			Timeout:    v.GetDuration("pdf.timeout"),
		},
		Upload: types.UploadConfig{
			MaxBytes:          v.GetInt64("upload.max_bytes"),
			AllowedExtensions: v.GetStringSlice("upload.allowed_extensions"),
		},
	}
	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}

func userAgent(configured string) string {
	if configured != "" {
		return configured
	}
	return "insight-engine/" + version
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
