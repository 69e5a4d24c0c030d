package config

import (
	"fmt"
	"strings"
	"time"

	"adpnorm/internal/domain"
)

const projectIDPlaceholder = "[[adp_project_id]]"

// ADPConnectorConfig describes how the analysis service would be reached. It
// is validated at startup so a deployment without a base URL fails early.
type ADPConnectorConfig struct {
	ZenBaseURL        string `mapstructure:"zen_base_url"`
	UMSBaseURL        string `mapstructure:"ums_base_url"`
	ACABaseURL        string `mapstructure:"aca_base_url"`
	LoginTarget       string `mapstructure:"login_target"`
	VerifyTokenTarget string `mapstructure:"verify_token_target"`
	RawAnalyzeTarget  string `mapstructure:"analyze_target"`
	ProjectID         string `mapstructure:"adp_project_id"`
	ClientID          string `mapstructure:"client_id"`
	ClientSecret      string `mapstructure:"client_secret"`
	TimeoutInMinutes  int    `mapstructure:"timeout_in_minutes"`
}

// AnalyzeTarget returns the analyze path with the first project id
// placeholder replaced.
func (c *ADPConnectorConfig) AnalyzeTarget() string {
	return strings.Replace(c.RawAnalyzeTarget, projectIDPlaceholder, c.ProjectID, 1)
}

// AnalyzeURL prefers the zen base URL, then the aca one.
func (c *ADPConnectorConfig) AnalyzeURL() (string, error) {
	switch {
	case isSet(c.ZenBaseURL):
		return c.ZenBaseURL + c.AnalyzeTarget(), nil
	case isSet(c.ACABaseURL):
		return c.ACABaseURL + c.AnalyzeTarget(), nil
	}
	return "", fmt.Errorf("config.AnalyzeURL: need zen_base_url or aca_base_url: %w", domain.ErrADPConfiguration)
}

// LoginURL prefers the zen base URL, then the ums one.
func (c *ADPConnectorConfig) LoginURL() (string, error) {
	switch {
	case isSet(c.ZenBaseURL):
		return c.ZenBaseURL + c.LoginTarget, nil
	case isSet(c.UMSBaseURL):
		return c.UMSBaseURL + c.LoginTarget, nil
	}
	return "", fmt.Errorf("config.LoginURL: need zen_base_url or ums_base_url: %w", domain.ErrADPConfiguration)
}

// Configured reports whether any base URL is set.
func (c *ADPConnectorConfig) Configured() bool {
	return isSet(c.ZenBaseURL) || isSet(c.UMSBaseURL) || isSet(c.ACABaseURL)
}

// Timeout is the per-document analysis timeout.
func (c *ADPConnectorConfig) Timeout() time.Duration {
	if c.TimeoutInMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TimeoutInMinutes) * time.Minute
}

func isSet(s string) bool {
	return strings.TrimSpace(s) != ""
}
