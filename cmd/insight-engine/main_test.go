// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/insight-engine/internal/secrets"
	"github.com/pdiddy/insight-engine/pkg/types"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := loadConfig(v)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "*", cfg.Server.AllowedOrigin)
	assert.Equal(t, types.AIBackendMock, cfg.AI.Backend)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "insight-engine/"+version, cfg.AI.UserAgent)
	assert.Equal(t, "log", cfg.Mail.Backend)
	assert.False(t, cfg.PDF.Enabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	prev := loadedSecrets
	t.Cleanup(func() { loadedSecrets = prev })
	loadedSecrets = map[string]string{
		secrets.AnthropicAPIKey: "from-secrets",
		secrets.ResendAPIKey:    "re_file",
	}

	v := viper.New()
	setDefaults(v)
	v.Set("ai.backend", "claude")
	v.Set("mail.api_key", "re_config")
	v.Set("upload.allowed_extensions", []string{".png"})
	v.Set("captcha.user_agent", "custom/1.0")

	cfg := loadConfig(v)
	assert.Equal(t, types.AIBackendClaude, cfg.AI.Backend)
	assert.Equal(t, "from-secrets", cfg.AI.APIKey)
	assert.Equal(t, "re_config", cfg.Mail.APIKey)
	assert.Equal(t, []string{".png"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "custom/1.0", cfg.Captcha.UserAgent)
}

func TestDetailsFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addDetailFlags(cmd, "", "requester")
	addDetailFlags(cmd, "partner-", "partner")
	require.NoError(t, cmd.Flags().Parse([]string{"--name", " Ada ", "--birth-date", "1990-05-15"}))

	d := detailsFromFlags(cmd, "")
	require.NotNil(t, d)
	assert.Equal(t, "Ada", d.FullName)
	assert.Equal(t, "1990-05-15", d.BirthDate)
	assert.Nil(t, detailsFromFlags(cmd, "partner-"))
}

func TestWriteValue(t *testing.T) {
	c := types.Classification{Type: types.QuestionPersonal, Confidence: 0.9, Source: types.SourceExternal}

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: "yaml", want: "type: personal\nconfidence: 0.9\nsource: external\n"},
		{format: "", want: "type: personal\nconfidence: 0.9\nsource: external\n"},
		{format: "json", want: "{\n  \"type\": \"personal\",\n  \"confidence\": 0.9,\n  \"source\": \"external\"\n}\n"},
		{format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeValue(&buf, tt.format, c)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
