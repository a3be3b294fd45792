package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/payrecon-dev/payrecon/internal/model"
	"github.com/payrecon-dev/payrecon/internal/schema"
	"github.com/payrecon-dev/payrecon/internal/section"
	"github.com/payrecon-dev/payrecon/internal/settle"
)

// FileName is the config file looked up in the working directory.
const FileName = "payrecon.yaml"

// EnvConfig names the environment variable that overrides the config path.
const EnvConfig = "PAYRECON_CONFIG"

// Config represents the top-level payrecon.yaml configuration.
type Config struct {
	Payout     PayoutConfig     `yaml:"payout"`
	Settlement SettlementConfig `yaml:"settlement"`
	Output     OutputConfig     `yaml:"output"`
}

// PayoutConfig holds the tokens used to classify ledger rows.
type PayoutConfig struct {
	StatusToken  string   `yaml:"status_token"`
	FuturesToken string   `yaml:"futures_token"`
	EmailMethods []string `yaml:"email_methods"`
	IDMethods    []string `yaml:"id_methods"`
}

// SettlementConfig holds the settlement feeds and the revenue rules shared by
// all of them.
type SettlementConfig struct {
	RevenueShift time.Duration `yaml:"revenue_shift"`
	FuturesToken string        `yaml:"futures_token"`
	FuturesLabel string        `yaml:"futures_label"`
	CFDLabel     string        `yaml:"cfd_label"`
	CatchAll     string        `yaml:"catch_all"`
	Feeds        []Feed        `yaml:"feeds"`
}

// Feed describes one payment provider export and how it pairs with the order
// list.
type Feed struct {
	Name            string                `yaml:"name"`
	Gateway         string                `yaml:"gateway,omitempty"`
	GatewayRequired bool                  `yaml:"gateway_required,omitempty"`
	PSP             PSPColumns            `yaml:"psp"`
	OrderID         string                `yaml:"order_id,omitempty"`
	Filters         []Filter              `yaml:"filters,omitempty"`
	MaxAmount       decimal.Decimal       `yaml:"max_amount,omitempty"`
	Duplicates      model.DuplicatePolicy `yaml:"duplicates"`
	BlankIDCategory string                `yaml:"blank_id_category,omitempty"`
	PSPWindow       Offsets               `yaml:"psp_window"`
	OrderWindow     Offsets               `yaml:"order_window"`
}

// PSPColumns names the provider export columns.
type PSPColumns struct {
	ID     string `yaml:"id"`
	Amount string `yaml:"amount"`
	Rate   string `yaml:"rate,omitempty"`
	Time   string `yaml:"time"`
}

// Filter keeps provider rows whose column equals value, ignoring case, or
// differs from it when negate is set.
type Filter struct {
	Column string `yaml:"column"`
	Value  string `yaml:"value"`
	Negate bool   `yaml:"negate,omitempty"`
}

// Offsets shift the start and end days of a window, e.g. 18h and 17h59m59s.
type Offsets struct {
	Start time.Duration `yaml:"start"`
	End   time.Duration `yaml:"end"`
}

// OutputConfig controls where reports are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoadEnv reads .env from the working directory when present.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Resolve returns the config path: the flag value, then $PAYRECON_CONFIG,
// then payrecon.yaml.
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return FileName
}

// Load reads a payrecon.yaml file from disk. Settings the file leaves out
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the feeds.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, f := range c.Settlement.Feeds {
		name := strings.ToLower(f.Name)
		switch {
		case name == "":
			return fmt.Errorf("feed %d: missing name", i+1)
		case seen[name]:
			return fmt.Errorf("feed %q: duplicate name", f.Name)
		case f.PSP.ID == "" || f.PSP.Amount == "" || f.PSP.Time == "":
			return fmt.Errorf("feed %q: psp id, amount and time columns are required", f.Name)
		}
		switch f.Duplicates {
		case "", model.DuplicateDropAll, model.DuplicateRetainFlag:
		default:
			return fmt.Errorf("feed %q: unknown duplicates policy %q", f.Name, f.Duplicates)
		}
		seen[name] = true
	}
	return nil
}

// Rules returns the ledger classification rules.
func (p PayoutConfig) Rules() section.Rules {
	return section.Rules{
		FuturesToken: p.FuturesToken,
		StatusToken:  p.StatusToken,
		EmailTokens:  p.EmailMethods,
		IDTokens:     p.IDMethods,
	}
}

// Feed returns the feed called name, ignoring case.
func (s SettlementConfig) Feed(name string) (Feed, error) {
	var names []string
	for _, f := range s.Feeds {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
		names = append(names, f.Name)
	}
	return Feed{}, fmt.Errorf("unknown feed %q (have %s)", name, strings.Join(names, ", "))
}

// Options builds the run options of feed for the days start through end.
func (s SettlementConfig) Options(f Feed, start, end time.Time) settle.Options {
	rules := make([]settle.Rule, 0, len(f.Filters))
	for _, flt := range f.Filters {
		rules = append(rules, settle.Rule{Column: flt.Column, Value: flt.Value, Negate: flt.Negate})
	}
	return settle.Options{
		PSPWindow:       settle.Span(start, end, f.PSPWindow.Start, f.PSPWindow.End),
		OrderWindow:     settle.Span(start, end, f.OrderWindow.Start, f.OrderWindow.End),
		Rules:           rules,
		MaxAmount:       f.MaxAmount,
		Duplicates:      f.Duplicates,
		BlankIDCategory: f.BlankIDCategory,
		CatchAll:        s.CatchAll,
		FuturesToken:    s.FuturesToken,
		FuturesLabel:    s.FuturesLabel,
		CFDLabel:        s.CFDLabel,
		RevenueShift:    s.RevenueShift,
	}
}

// PSPLayout returns the schema layout of the provider export.
func (f Feed) PSPLayout() schema.PSPLayout {
	var extra []string
	for _, flt := range f.Filters {
		extra = append(extra, flt.Column)
	}
	return schema.PSPLayout{
		ID:              f.PSP.ID,
		Amount:          f.PSP.Amount,
		Rate:            f.PSP.Rate,
		Time:            f.PSP.Time,
		Gateway:         f.Gateway,
		GatewayRequired: f.GatewayRequired,
		Extra:           extra,
	}
}

// OrderLayout returns the schema layout of the feed's order lists.
func (f Feed) OrderLayout() schema.OrderLayout {
	return schema.OrderLayout{ID: f.OrderID, Gateway: f.Gateway}
}

// Default returns a Config with the built-in payout tokens and feeds.
func Default() *Config {
	const endOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second
	return &Config{
		Payout: PayoutConfig{
			StatusToken:  "disbursed",
			FuturesToken: "futures",
			EmailMethods: []string{"riseworks"},
			IDMethods:    []string{"usdc", "usdt"},
		},
		Settlement: SettlementConfig{
			RevenueShift: settle.DefaultRevenueShift,
			FuturesToken: settle.DefaultFuturesToken,
			FuturesLabel: settle.DefaultFuturesLabel,
			CFDLabel:     settle.DefaultCFDLabel,
			CatchAll:     settle.DefaultCatchAll,
			Feeds: []Feed{
				{
					Name:            "zen",
					Gateway:         "Zen Pay",
					GatewayRequired: true,
					PSP:             PSPColumns{ID: "merchant_transaction_id", Amount: "transaction_amount", Time: "accepted_at"},
					Filters: []Filter{
						{Column: "payment_channel", Value: "card", Negate: true},
						{Column: "transaction_type", Value: "purchase"},
						{Column: "transaction_currency", Value: "USD"},
					},
					Duplicates:  model.DuplicateDropAll,
					PSPWindow:   Offsets{Start: 18 * time.Hour, End: endOfDay - 6*time.Hour},
					OrderWindow: Offsets{Start: 21 * time.Hour, End: endOfDay - 3*time.Hour},
				},
				{
					Name:            "bridgerpay",
					Gateway:         "Bridger Pay",
					GatewayRequired: true,
					PSP:             PSPColumns{ID: "merchantOrderId", Amount: "amount", Time: "processing_date"},
					Filters: []Filter{
						{Column: "status", Value: "approved"},
						{Column: "type", Value: "payment"},
						{Column: "currency", Value: "USD"},
					},
					Duplicates:  model.DuplicateDropAll,
					PSPWindow:   Offsets{End: endOfDay},
					OrderWindow: Offsets{End: endOfDay},
				},
				{
					Name:            "coinsbuy",
					PSP:             PSPColumns{ID: "Tracking ID", Amount: "Amount", Rate: "Rate", Time: "Created"},
					OrderID:         "Tracking ID",
					MaxAmount:       decimal.NewFromInt(2500),
					Duplicates:      model.DuplicateRetainFlag,
					BlankIDCategory: "CFD (Blank Tracking ID)",
					PSPWindow:       Offsets{End: endOfDay},
					OrderWindow:     Offsets{End: endOfDay},
				},
			},
		},
		Output: OutputConfig{Dir: "."},
	}
}
