// catalog/catalog_test.go
package catalog_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/accesskit/grantd/catalog"
	grantd_errors "github.com/accesskit/grantd/errors"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "catalog-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)
	logger.InitLogger(dir)
	defer logger.Sync()
	os.Exit(m.Run())
}

func TestResolve_BuiltinDefaults(t *testing.T) {
	c := catalog.NewWithTable(nil, "")

	cases := map[string]int64{
		"43200":   43200,
		"432000":  432000,
		"1209600": 1209600,
		"2592000": 2592000,
		"7776000": 7776000,
	}
	for key, seconds := range cases {
		policy, err := c.Resolve(key, 0)
		assert.NoError(t, err, key)
		assert.True(t, policy.Finite(), key)
		assert.Equal(t, seconds, policy.Seconds, key)
		assert.Equal(t, time.Duration(seconds)*time.Second, policy.Duration(), key)
	}
}

func TestResolve_EmptyKeyUsesDefault(t *testing.T) {
	c := catalog.NewWithTable(nil, "")

	policy, err := c.Resolve("", 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1209600), policy.Seconds)
	assert.Equal(t, "1209600", c.DefaultKey())
}

func TestResolve_Indefinite(t *testing.T) {
	c := catalog.NewWithTable(nil, "")

	policy, err := c.Resolve(model.OptionIndefinite, 0)
	assert.NoError(t, err)
	assert.True(t, policy.Indefinite)
	assert.False(t, policy.Finite())
	assert.Zero(t, policy.Duration())
}

func TestResolve_Custom(t *testing.T) {
	c := catalog.NewWithTable(nil, "")

	policy, err := c.Resolve(model.OptionCustom, 3600)
	assert.NoError(t, err)
	assert.Equal(t, int64(3600), policy.Seconds)

	_, err = c.Resolve(model.OptionCustom, 0)
	assert.ErrorIs(t, err, grantd_errors.ErrInvalidCustomDuration)

	_, err = c.Resolve(model.OptionCustom, -60)
	assert.ErrorIs(t, err, grantd_errors.ErrInvalidCustomDuration)
}

func TestResolve_UnknownKey(t *testing.T) {
	c := catalog.NewWithTable(nil, "")

	_, err := c.Resolve("99999", 0)
	assert.ErrorIs(t, err, grantd_errors.ErrInvalidDurationOption)

	_, err = c.Resolve("forever", 0)
	assert.ErrorIs(t, err, grantd_errors.ErrInvalidDurationOption)
}

func TestResolve_OverrideTable(t *testing.T) {
	c := catalog.NewWithTable(map[string]string{
		"43200":                "12 Hours",
		"432000":               "5 Days",
		"1209600":              "Two Weeks",
		model.OptionIndefinite: "Indefinite",
		model.OptionCustom:     "Custom",
	}, "1209600")

	// Options from the built-in table that the override dropped are gone
	_, err := c.Resolve("2592000", 0)
	assert.ErrorIs(t, err, grantd_errors.ErrInvalidDurationOption)

	policy, err := c.Resolve("", 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1209600), policy.Seconds)
}

func TestNewWithTable_SkipsMalformedEntries(t *testing.T) {
	c := catalog.NewWithTable(map[string]string{
		"3600":    "1 Hour",
		"-100":    "Bogus",
		"abc":     "Bogus",
		"1209600": "Two Weeks",
	}, "")

	_, err := c.Resolve("-100", 0)
	assert.ErrorIs(t, err, grantd_errors.ErrInvalidDurationOption)
	_, err = c.Resolve("abc", 0)
	assert.ErrorIs(t, err, grantd_errors.ErrInvalidDurationOption)

	policy, err := c.Resolve("3600", 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(3600), policy.Seconds)
}

func TestNewWithTable_DefaultNotInCatalogFallsBack(t *testing.T) {
	c := catalog.NewWithTable(nil, "54321")
	assert.Equal(t, "1209600", c.DefaultKey())
}

func TestOptions_Ordering(t *testing.T) {
	c := catalog.NewWithTable(nil, "")

	opts := c.Options()
	assert.Len(t, opts, 7)

	var lastSeconds int64
	for i, opt := range opts[:5] {
		assert.Greater(t, opt.Seconds, lastSeconds, "option %d out of order", i)
		lastSeconds = opt.Seconds
	}
	assert.True(t, opts[5].Indefinite)
	assert.True(t, opts[6].Custom)
}
