package spauth

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/koltyakov/gosip"
	"github.com/koltyakov/gosip/auth/azurecert"
	"github.com/koltyakov/gosip/auth/ntlm"
)

// Supported authentication strategies.
const (
	StrategyAzureCert = "azurecert"
	StrategyNTLM      = "ntlm"
)

type Config struct {
	SiteURL  string
	Strategy string
	Timeout  time.Duration

	// azurecert
	TenantID     string
	ClientID     string
	CertPath     string
	CertPassword string

	// ntlm (on-premises Windows authentication)
	Domain   string
	Username string
	Password string
}

func FromEnv() (Config, error) {
	// Environment should already be loaded by main.go
	cfg := Config{
		SiteURL:      os.Getenv("SP_SITE_URL"),
		Strategy:     strings.ToLower(os.Getenv("SP_AUTH_STRATEGY")),
		TenantID:     os.Getenv("SP_TENANT_ID"),
		ClientID:     os.Getenv("SP_CLIENT_ID"),
		CertPath:     os.Getenv("SP_CERT_PATH"),
		CertPassword: os.Getenv("SP_CERT_PASSWORD"),
		Domain:       os.Getenv("SP_DOMAIN"),
		Username:     os.Getenv("SP_USERNAME"),
		Password:     os.Getenv("SP_PASSWORD"),
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyAzureCert
	}
	if v := os.Getenv("SP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid SP_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}
	return cfg, cfg.Validate()
}

// Validate checks that the settings required by the chosen strategy are present.
func (c Config) Validate() error {
	if c.SiteURL == "" {
		return fmt.Errorf("missing required configuration: SP_SITE_URL")
	}
	switch c.Strategy {
	case StrategyAzureCert:
		if c.TenantID == "" || c.ClientID == "" || c.CertPath == "" {
			return fmt.Errorf("missing required configuration: SP_TENANT_ID, SP_CLIENT_ID, SP_CERT_PATH")
		}
	case StrategyNTLM:
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("missing required configuration: SP_USERNAME, SP_PASSWORD")
		}
	default:
		return fmt.Errorf("unsupported SP_AUTH_STRATEGY %q (want %s or %s)", c.Strategy, StrategyAzureCert, StrategyNTLM)
	}
	return nil
}

func NewClient(cfg Config) (*gosip.SPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var auth gosip.AuthCnfg
	switch cfg.Strategy {
	case StrategyNTLM:
		auth = &ntlm.AuthCnfg{
			SiteURL:  cfg.SiteURL,
			Domain:   cfg.Domain,
			Username: cfg.Username,
			Password: cfg.Password,
		}
	default:
		auth = &azurecert.AuthCnfg{
			SiteURL:  cfg.SiteURL,
			TenantID: cfg.TenantID,
			ClientID: cfg.ClientID,
			CertPath: cfg.CertPath,
			CertPass: cfg.CertPassword,
		}
	}

	client := &gosip.SPClient{AuthCnfg: auth}
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	return client, nil
}
