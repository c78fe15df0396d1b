package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyAllowedSchemes = "validation.allowed_schemes"
	keyAllowLocalhost = "validation.allow_localhost"
	keyAllowIPs       = "validation.allow_ip_addresses"
	keyAllowInternal  = "validation.allow_internal_domains"
	keyMaxFileSizeMB  = "limits.max_file_size_mb"
	keyMaxRows        = "limits.max_rows"
	keyMaxColumns     = "limits.max_columns"
	keyMaxInvalid     = "limits.max_invalid_records"
	keyTimeout        = "limits.timeout"
	keyProgressMin    = "progress.min_interval"
	keyProgressMax    = "progress.max_interval"
	keyHistoryEnabled = "history.enabled"
	keyHistoryKeep    = "history.keep"
)

// bytesPerMB converts limits.max_file_size_mb to bytes.
const bytesPerMB = 1024 * 1024

// settingKeys lists the recognised keys in display order.
var settingKeys = []string{
	keyAllowedSchemes,
	keyAllowLocalhost,
	keyAllowIPs,
	keyAllowInternal,
	keyMaxFileSizeMB,
	keyMaxRows,
	keyMaxColumns,
	keyMaxInvalid,
	keyTimeout,
	keyProgressMin,
	keyProgressMax,
	keyHistoryEnabled,
	keyHistoryKeep,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling unset keys with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Policy: domain.ValidationPolicy{
			AllowedSchemes:       s.getStringSlice(keyAllowedSchemes, defaults.Policy.AllowedSchemes),
			AllowLocalhost:       s.getBool(keyAllowLocalhost, defaults.Policy.AllowLocalhost),
			AllowIPLiterals:      s.getBool(keyAllowIPs, defaults.Policy.AllowIPLiterals),
			AllowInternalDomains: s.getBool(keyAllowInternal, defaults.Policy.AllowInternalDomains),
		},
		Limits: domain.Limits{
			MaxFileSize:       int64(s.getInt(keyMaxFileSizeMB, int(defaults.Limits.MaxFileSize/bytesPerMB))) * bytesPerMB,
			MaxRows:           s.getInt(keyMaxRows, defaults.Limits.MaxRows),
			MaxColumns:        s.getInt(keyMaxColumns, defaults.Limits.MaxColumns),
			MaxInvalidRecords: s.getInt(keyMaxInvalid, defaults.Limits.MaxInvalidRecords),
			Timeout:           s.getDuration(keyTimeout, defaults.Limits.Timeout),
		},
		Progress: domain.ProgressSettings{
			MinInterval: s.getDuration(keyProgressMin, defaults.Progress.MinInterval),
			MaxInterval: s.getDuration(keyProgressMax, defaults.Progress.MaxInterval),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistoryEnabled, defaults.History.Enabled),
			Keep:    s.getInt(keyHistoryKeep, defaults.History.Keep),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.savePolicy(settings.Policy); err != nil {
		return err
	}
	if err := s.saveLimits(settings.Limits); err != nil {
		return err
	}

	// Save progress settings
	if err := s.configStore.Set(keyProgressMin, settings.Progress.MinInterval.String()); err != nil {
		return fmt.Errorf("save progress min interval: %w", err)
	}
	if err := s.configStore.Set(keyProgressMax, settings.Progress.MaxInterval.String()); err != nil {
		return fmt.Errorf("save progress max interval: %w", err)
	}

	// Save history settings
	if err := s.configStore.Set(keyHistoryEnabled, settings.History.Enabled); err != nil {
		return fmt.Errorf("save history enabled: %w", err)
	}
	if err := s.configStore.Set(keyHistoryKeep, settings.History.Keep); err != nil {
		return fmt.Errorf("save history keep: %w", err)
	}

	return nil
}

func (s *SettingsService) savePolicy(policy domain.ValidationPolicy) error {
	if err := s.configStore.Set(keyAllowedSchemes, normaliseSchemes(policy.AllowedSchemes)); err != nil {
		return fmt.Errorf("save allowed schemes: %w", err)
	}
	if err := s.configStore.Set(keyAllowLocalhost, policy.AllowLocalhost); err != nil {
		return fmt.Errorf("save allow localhost: %w", err)
	}
	if err := s.configStore.Set(keyAllowIPs, policy.AllowIPLiterals); err != nil {
		return fmt.Errorf("save allow ip addresses: %w", err)
	}
	if err := s.configStore.Set(keyAllowInternal, policy.AllowInternalDomains); err != nil {
		return fmt.Errorf("save allow internal domains: %w", err)
	}
	return nil
}

func (s *SettingsService) saveLimits(limits domain.Limits) error {
	if err := s.configStore.Set(keyMaxFileSizeMB, int(limits.MaxFileSize/bytesPerMB)); err != nil {
		return fmt.Errorf("save max file size: %w", err)
	}
	if err := s.configStore.Set(keyMaxRows, limits.MaxRows); err != nil {
		return fmt.Errorf("save max rows: %w", err)
	}
	if err := s.configStore.Set(keyMaxColumns, limits.MaxColumns); err != nil {
		return fmt.Errorf("save max columns: %w", err)
	}
	if err := s.configStore.Set(keyMaxInvalid, limits.MaxInvalidRecords); err != nil {
		return fmt.Errorf("save max invalid records: %w", err)
	}
	if err := s.configStore.Set(keyTimeout, limits.Timeout.String()); err != nil {
		return fmt.Errorf("save timeout: %w", err)
	}
	return nil
}

// SetPolicy updates the validation policy.
func (s *SettingsService) SetPolicy(policy domain.ValidationPolicy) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Policy = policy
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.savePolicy(policy)
}

// SetLimits updates the resource ceilings.
func (s *SettingsService) SetLimits(limits domain.Limits) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Limits = limits
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.saveLimits(limits)
}

// Set parses value for key and stores it. The resulting settings must validate.
//
//nolint:gocyclo // One case per setting key
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)

	var stored any
	switch key {
	case keyAllowedSchemes:
		schemes := normaliseSchemes(strings.Split(value, ","))
		settings.Policy.AllowedSchemes = schemes
		stored = schemes
	case keyAllowLocalhost:
		stored, err = parseBool(key, value, &settings.Policy.AllowLocalhost)
	case keyAllowIPs:
		stored, err = parseBool(key, value, &settings.Policy.AllowIPLiterals)
	case keyAllowInternal:
		stored, err = parseBool(key, value, &settings.Policy.AllowInternalDomains)
	case keyHistoryEnabled:
		stored, err = parseBool(key, value, &settings.History.Enabled)
	case keyMaxFileSizeMB:
		var mb int
		stored, err = parseInt(key, value, &mb)
		settings.Limits.MaxFileSize = int64(mb) * bytesPerMB
	case keyMaxRows:
		stored, err = parseInt(key, value, &settings.Limits.MaxRows)
	case keyMaxColumns:
		stored, err = parseInt(key, value, &settings.Limits.MaxColumns)
	case keyMaxInvalid:
		stored, err = parseInt(key, value, &settings.Limits.MaxInvalidRecords)
	case keyHistoryKeep:
		stored, err = parseInt(key, value, &settings.History.Keep)
	case keyTimeout:
		stored, err = parseDuration(key, value, &settings.Limits.Timeout)
	case keyProgressMin:
		stored, err = parseDuration(key, value, &settings.Progress.MinInterval)
	case keyProgressMax:
		stored, err = parseDuration(key, value, &settings.Progress.MaxInterval)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return err
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised setting keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	copy(keys, settingKeys)
	return keys
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return append([]string(nil), defaultVal...)
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

// Parsers for Set. Each stores into dst and returns the value to persist.

func parseBool(key, value string, dst *bool) (any, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s expects true or false, got %q", domain.ErrInvalidInput, key, value)
	}
	*dst = b
	return b, nil
}

func parseInt(key, value string, dst *int) (any, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s expects a whole number, got %q", domain.ErrInvalidInput, key, value)
	}
	*dst = n
	return n, nil
}

func parseDuration(key, value string, dst *time.Duration) (any, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s expects a duration such as 5m or 100ms, got %q", domain.ErrInvalidInput, key, value)
	}
	*dst = d
	return d.String(), nil
}

func normaliseSchemes(schemes []string) []string {
	out := make([]string, 0, len(schemes))
	seen := make(map[string]bool, len(schemes))
	for _, scheme := range schemes {
		scheme = strings.ToLower(strings.TrimSpace(scheme))
		if scheme == "" || seen[scheme] {
			continue
		}
		seen[scheme] = true
		out = append(out, scheme)
	}
	return out
}
