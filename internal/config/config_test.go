package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpnorm/internal/config"
	"adpnorm/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.QueueBackendPostgres, cfg.Queue.Backend)
	assert.Equal(t, 3, cfg.Queue.Concurrency)
	assert.Equal(t, 30, cfg.DB.MaxLifetimeMins)
	assert.Equal(t, "keepall", cfg.Normalizer.SelectionMode)
	assert.Equal(t, "keepall", cfg.Normalizer.RetentionMode)
	assert.Equal(t, "_ADP", cfg.Normalizer.FieldSuffix)
	assert.Equal(t, "ADPDocType", cfg.Normalizer.DocClassVar)
	assert.True(t, cfg.Normalizer.UseAllPages)
	assert.False(t, cfg.Normalizer.QualityAdjust)
	assert.False(t, cfg.Normalizer.Consolidate)
	assert.Equal(t, 5, cfg.ADP.TimeoutInMinutes)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADPNORM_QUEUE_BACKEND", " Asynq ")
	t.Setenv("ADPNORM_NORMALIZER_SELECTION_MODE", "keepsinglebest")
	t.Setenv("ADPNORM_NORMALIZER_USE_ALL_PAGES", "false")
	t.Setenv("ADPNORM_ADP_PROJECT_ID", "proj-7")
	t.Setenv("PORT", "9090")
	t.Setenv("ADPNORM_DB_MAX_LIFETIME_MINS", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.QueueBackendAsynq, cfg.Queue.Backend)
	assert.Equal(t, "keepsinglebest", cfg.Normalizer.SelectionMode)
	assert.False(t, cfg.Normalizer.UseAllPages)
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Zero(t, cfg.DB.MaxLifetimeMins)
	assert.Equal(t, "/adp/aca/v1/projects/proj-7/analyzers", cfg.ADP.AnalyzeTarget())
}

func TestLoad_UnknownBackendFallsBackToPostgres(t *testing.T) {
	t.Setenv("ADPNORM_QUEUE_BACKEND", "kafka")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.QueueBackendPostgres, cfg.Queue.Backend)
}

func TestADPConnectorConfig_URLs(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.ADPConnectorConfig
		analyze   string
		login     string
		analyzeOK bool
		loginOK   bool
	}{
		{
			name:      "zen wins",
			cfg:       config.ADPConnectorConfig{ZenBaseURL: "https://zen", ACABaseURL: "https://aca", UMSBaseURL: "https://ums"},
			analyze:   "https://zen/p/x",
			login:     "https://zen/login",
			analyzeOK: true,
			loginOK:   true,
		},
		{
			name:      "aca and ums",
			cfg:       config.ADPConnectorConfig{ACABaseURL: "https://aca", UMSBaseURL: "https://ums"},
			analyze:   "https://aca/p/x",
			login:     "https://ums/login",
			analyzeOK: true,
			loginOK:   true,
		},
		{
			name:      "ums only",
			cfg:       config.ADPConnectorConfig{UMSBaseURL: "https://ums"},
			login:     "https://ums/login",
			analyzeOK: false,
			loginOK:   true,
		},
		{
			name: "blank",
			cfg:  config.ADPConnectorConfig{ZenBaseURL: "  "},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.RawAnalyzeTarget = "/p/[[adp_project_id]]"
			tt.cfg.ProjectID = "x"
			tt.cfg.LoginTarget = "/login"

			analyze, err := tt.cfg.AnalyzeURL()
			if tt.analyzeOK {
				require.NoError(t, err)
				assert.Equal(t, tt.analyze, analyze)
			} else {
				assert.ErrorIs(t, err, domain.ErrADPConfiguration)
			}

			login, err := tt.cfg.LoginURL()
			if tt.loginOK {
				require.NoError(t, err)
				assert.Equal(t, tt.login, login)
			} else {
				assert.ErrorIs(t, err, domain.ErrADPConfiguration)
			}
			assert.Equal(t, tt.analyzeOK || tt.loginOK, tt.cfg.Configured())
		})
	}
}

func TestADPConnectorConfig_Timeout(t *testing.T) {
	assert.Equal(t, 5*time.Minute, (&config.ADPConnectorConfig{}).Timeout())
	assert.Equal(t, 2*time.Minute, (&config.ADPConnectorConfig{TimeoutInMinutes: 2}).Timeout())
}

func TestDBConfig_DSN(t *testing.T) {
	d := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", d.DSN())
}
