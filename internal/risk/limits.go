// Package risk validates orders against configurable per-symbol limits
// before they reach the exchange, and persists the two risk files: a
// read-only set of hard limits and an operator-editable set of advisory
// limits.
package risk

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// SymbolLimits is a complete, fully-resolved set of limits for one
// symbol, after merging any override with the configured defaults.
type SymbolLimits struct {
	MaxOrderQty          decimal.Decimal `json:"max_order_qty"`
	MaxNotionalValue     decimal.Decimal `json:"max_notional_value"`
	ConfirmAboveNotional decimal.Decimal `json:"confirm_above_notional"`
	MaxTradesPerDay      int             `json:"max_trades_per_day"`
	MaxTradesPerWeek     int             `json:"max_trades_per_week"`
	MaxTradesPerMonth    int             `json:"max_trades_per_month"`
}

// SymbolOverrides carries only the fields an operator chose to override
// for one symbol; nil fields inherit from Defaults.
type SymbolOverrides struct {
	MaxOrderQty          *decimal.Decimal `json:"max_order_qty,omitempty"`
	MaxNotionalValue     *decimal.Decimal `json:"max_notional_value,omitempty"`
	ConfirmAboveNotional *decimal.Decimal `json:"confirm_above_notional,omitempty"`
	MaxTradesPerDay      *int             `json:"max_trades_per_day,omitempty"`
	MaxTradesPerWeek     *int             `json:"max_trades_per_week,omitempty"`
	MaxTradesPerMonth    *int             `json:"max_trades_per_month,omitempty"`
}

// Config is the shape shared by both risk files: a set of defaults plus
// any number of per-symbol overrides.
type Config struct {
	Defaults SymbolLimits               `json:"defaults"`
	Symbols  map[string]SymbolOverrides `json:"symbols"`
}

// LimitsFor returns the fully-resolved limits for symbol, merging any
// override on top of the defaults.
func (c Config) LimitsFor(symbol string) SymbolLimits {
	limits := c.Defaults
	override, ok := c.Symbols[symbol]
	if !ok {
		return limits
	}
	if override.MaxOrderQty != nil {
		limits.MaxOrderQty = *override.MaxOrderQty
	}
	if override.MaxNotionalValue != nil {
		limits.MaxNotionalValue = *override.MaxNotionalValue
	}
	if override.ConfirmAboveNotional != nil {
		limits.ConfirmAboveNotional = *override.ConfirmAboveNotional
	}
	if override.MaxTradesPerDay != nil {
		limits.MaxTradesPerDay = *override.MaxTradesPerDay
	}
	if override.MaxTradesPerWeek != nil {
		limits.MaxTradesPerWeek = *override.MaxTradesPerWeek
	}
	if override.MaxTradesPerMonth != nil {
		limits.MaxTradesPerMonth = *override.MaxTradesPerMonth
	}
	return limits
}

// Clone returns a copy of c with its own Symbols map, so an operator edit
// can be applied to the copy and swapped in atomically via
// Guard.SetConfig without racing a concurrent reader of the original.
// The override pointers are shared with c; SetOverrideField replaces
// them rather than writing through them.
func (c Config) Clone() Config {
	clone := Config{Defaults: c.Defaults, Symbols: make(map[string]SymbolOverrides, len(c.Symbols))}
	for symbol, override := range c.Symbols {
		clone.Symbols[symbol] = override
	}
	return clone
}

// SetOverrideField parses value and stores it as the named override
// field for symbol, leaving every other field of that symbol's overrides
// untouched. field is one of the SymbolOverrides JSON tags.
func (c *Config) SetOverrideField(symbol, field, value string) error {
	if c.Symbols == nil {
		c.Symbols = make(map[string]SymbolOverrides)
	}
	override := c.Symbols[symbol]

	switch field {
	case "max_order_qty":
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("risk: invalid max_order_qty %q: %w", value, err)
		}
		override.MaxOrderQty = &d
	case "max_notional_value":
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("risk: invalid max_notional_value %q: %w", value, err)
		}
		override.MaxNotionalValue = &d
	case "confirm_above_notional":
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("risk: invalid confirm_above_notional %q: %w", value, err)
		}
		override.ConfirmAboveNotional = &d
	case "max_trades_per_day":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("risk: invalid max_trades_per_day %q: %w", value, err)
		}
		override.MaxTradesPerDay = &n
	case "max_trades_per_week":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("risk: invalid max_trades_per_week %q: %w", value, err)
		}
		override.MaxTradesPerWeek = &n
	case "max_trades_per_month":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("risk: invalid max_trades_per_month %q: %w", value, err)
		}
		override.MaxTradesPerMonth = &n
	default:
		return fmt.Errorf("risk: unknown risk field %q", field)
	}

	c.Symbols[symbol] = override
	return nil
}
