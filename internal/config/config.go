package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/glovebenefits/ichracalc/internal/domain"
)

// BenefitCode is a canonical service identifier used by the comparator.
// The RBIS cost-share table stores free-text benefit names; each code
// maps to the set of label variants seen in a data vintage, validated
// at load time so an unmapped label fails loudly instead of silently
// matching nothing.
type BenefitCode string

const (
	BenefitPrimaryCare BenefitCode = "primary_care"
	BenefitSpecialist  BenefitCode = "specialist"
	BenefitGenericRx   BenefitCode = "generic_rx"
)

// requiredBenefitCodes must all be mapped for the comparator's copay
// basket to be computable.
var requiredBenefitCodes = []BenefitCode{
	BenefitPrimaryCare, BenefitSpecialist, BenefitGenericRx,
}

// Config is the engine's plan-year configuration, loaded from YAML with
// environment overrides for deployment-specific values.
type Config struct {
	PlanYear          int       `yaml:"plan_year"`
	RateEffectiveDate time.Time `yaml:"rate_effective_date"`

	// AffordabilityThresholds maps plan year to the IRS safe-harbor
	// percentage (e.g. 0.0996 for 2026). The IRS updates this annually,
	// so it is configuration, never a hard-coded constant.
	AffordabilityThresholds map[int]decimal.Decimal `yaml:"affordability_thresholds"`

	// FamilyTierStates use a flat household premium instead of
	// per-member age-banded rates (NY and VT in current vintages).
	FamilyTierStates []string `yaml:"family_tier_states"`

	// SingleRatingAreaStates use whole-state rating: ZIP resolution
	// bypasses county granularity and resolves from the state code.
	SingleRatingAreaStates []string `yaml:"single_rating_area_states"`

	// BenefitLabels maps canonical benefit codes to the free-text label
	// variants found in the cost-share table for this data vintage.
	BenefitLabels map[BenefitCode][]string `yaml:"benefit_labels"`

	Database DatabaseConfig `yaml:"database"`
	Batch    BatchConfig    `yaml:"batch"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig holds connection settings for the rates store. The DSN
// comes from the environment (DATABASE_URL), never the YAML file.
type DatabaseConfig struct {
	DSN      string `yaml:"-"`
	MaxConns int32  `yaml:"max_conns"`
}

// BatchConfig bounds the census worker pool. Zero workers means "match
// the store's connection pool size".
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// ServerConfig holds the HTTP API listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads and validates the YAML configuration at path, applying
// environment overrides. A .env file is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{MaxConns: 8},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// Validate enforces the startup invariants. Violations are
// ConfigurationErrors: fatal before any calculation runs.
func (c *Config) Validate() error {
	if c.PlanYear == 0 {
		return &domain.ConfigurationError{Field: "plan_year", Detail: "plan year is required"}
	}
	if c.RateEffectiveDate.IsZero() {
		return &domain.ConfigurationError{Field: "rate_effective_date", Detail: "rate effective date is required"}
	}
	if c.RateEffectiveDate.Year() != c.PlanYear {
		return &domain.ConfigurationError{
			Field:  "rate_effective_date",
			Detail: fmt.Sprintf("effective date %s is outside plan year %d", c.RateEffectiveDate.Format("2006-01-02"), c.PlanYear),
		}
	}

	threshold, ok := c.AffordabilityThresholds[c.PlanYear]
	if !ok {
		return &domain.ConfigurationError{
			Field:  "affordability_thresholds",
			Detail: fmt.Sprintf("no affordability threshold configured for plan year %d", c.PlanYear),
		}
	}
	if threshold.LessThanOrEqual(decimal.Zero) || threshold.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return &domain.ConfigurationError{
			Field:  "affordability_thresholds",
			Detail: fmt.Sprintf("threshold %s for year %d must be a fraction between 0 and 1", threshold, c.PlanYear),
		}
	}

	for _, code := range requiredBenefitCodes {
		if len(c.BenefitLabels[code]) == 0 {
			return &domain.ConfigurationError{
				Field:  "benefit_labels",
				Detail: fmt.Sprintf("no label variants mapped for benefit code %q", code),
			}
		}
	}

	for _, st := range append(append([]string{}, c.FamilyTierStates...), c.SingleRatingAreaStates...) {
		if len(st) != 2 {
			return &domain.ConfigurationError{
				Field:  "states",
				Detail: fmt.Sprintf("state code %q must be two letters", st),
			}
		}
	}
	return nil
}

// Threshold returns the affordability threshold for the configured plan
// year. Validate guarantees it exists.
func (c *Config) Threshold() decimal.Decimal {
	return c.AffordabilityThresholds[c.PlanYear]
}

// IsFamilyTierState reports whether the state uses family-tier rating.
func (c *Config) IsFamilyTierState(stateCode string) bool {
	for _, st := range c.FamilyTierStates {
		if st == stateCode {
			return true
		}
	}
	return false
}

// IsSingleRatingAreaState reports whether the state uses whole-state rating.
func (c *Config) IsSingleRatingAreaState(stateCode string) bool {
	for _, st := range c.SingleRatingAreaStates {
		if st == stateCode {
			return true
		}
	}
	return false
}

// Workers returns the effective census worker-pool size.
func (c *Config) Workers() int {
	if c.Batch.Workers > 0 {
		return c.Batch.Workers
	}
	return int(c.Database.MaxConns)
}
