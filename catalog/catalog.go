// catalog/catalog.go
package catalog

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/accesskit/grantd/config"
	grantd_errors "github.com/accesskit/grantd/errors"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
)

// defaultOptions is the built-in access-time table, used when no override
// is configured.
var defaultOptions = map[string]string{
	"43200":                "12 Hours",
	"432000":               "5 Days",
	"1209600":              "Two Weeks",
	"2592000":              "30 Days",
	"7776000":              "90 Days",
	model.OptionIndefinite: "Indefinite",
	model.OptionCustom:     "Custom",
}

const defaultOptionKey = "1209600"

// Catalog resolves access-time option keys to lifetime policies. It is
// built once at startup from configuration and read-only afterwards.
type Catalog struct {
	options    map[string]model.AccessTimeOption
	defaultKey string
}

// New builds the catalog from the loaded configuration, falling back to
// the built-in table when no override is supplied.
func New() *Catalog {
	raw := config.GetStringMapString("accessTime.options")
	defaultKey := config.GetString("accessTime.defaultOption")
	return NewWithTable(raw, defaultKey)
}

// NewWithTable builds the catalog from an explicit option table. An empty
// table selects the built-in defaults.
func NewWithTable(raw map[string]string, defaultKey string) *Catalog {
	if len(raw) == 0 {
		raw = defaultOptions
	}
	if defaultKey == "" {
		defaultKey = defaultOptionKey
	}

	c := &Catalog{
		options:    make(map[string]model.AccessTimeOption, len(raw)),
		defaultKey: defaultKey,
	}
	for key, label := range raw {
		opt := model.AccessTimeOption{Key: key, Label: label}
		switch key {
		case model.OptionIndefinite:
			opt.Indefinite = true
		case model.OptionCustom:
			opt.Custom = true
		default:
			seconds, err := strconv.ParseInt(key, 10, 64)
			if err != nil || seconds <= 0 {
				logger.Warn("Skipping malformed access-time option",
					zap.String("key", key),
					zap.String("label", label))
				continue
			}
			opt.Seconds = seconds
		}
		c.options[key] = opt
	}

	if _, ok := c.options[c.defaultKey]; !ok {
		logger.Warn("Default access-time option not in catalog, falling back",
			zap.String("defaultOption", c.defaultKey))
		c.defaultKey = defaultOptionKey
	}

	return c
}

// Resolve maps an option key (empty means the configured default) to a
// lifetime policy. Custom options require a strictly positive
// customSeconds value.
func (c *Catalog) Resolve(optionKey string, customSeconds int64) (model.LifetimePolicy, error) {
	if optionKey == "" {
		optionKey = c.defaultKey
	}

	opt, ok := c.options[optionKey]
	if !ok {
		return model.LifetimePolicy{}, grantd_errors.ErrInvalidDurationOption
	}

	switch {
	case opt.Indefinite:
		return model.LifetimePolicy{Indefinite: true}, nil
	case opt.Custom:
		if customSeconds <= 0 {
			return model.LifetimePolicy{}, grantd_errors.ErrInvalidCustomDuration
		}
		return model.LifetimePolicy{Seconds: customSeconds}, nil
	default:
		return model.LifetimePolicy{Seconds: opt.Seconds}, nil
	}
}

// DefaultKey returns the option key used when a request names none
func (c *Catalog) DefaultKey() string {
	return c.defaultKey
}

// Options returns the catalog entries, numeric durations ascending and
// the two sentinel entries last. The slice is a copy.
func (c *Catalog) Options() []model.AccessTimeOption {
	opts := make([]model.AccessTimeOption, 0, len(c.options))
	for _, opt := range c.options {
		opts = append(opts, opt)
	}
	sort.Slice(opts, func(i, j int) bool {
		a, b := opts[i], opts[j]
		if a.Seconds != 0 && b.Seconds != 0 {
			return a.Seconds < b.Seconds
		}
		if (a.Seconds != 0) != (b.Seconds != 0) {
			return a.Seconds != 0
		}
		// Both sentinels: indefinite before custom
		return a.Indefinite && !b.Indefinite
	})
	return opts
}
