package domain

import (
	"fmt"
	"strings"
)

// DefaultHistoryKeep is how many finished runs are kept by default.
const DefaultHistoryKeep = 100

// HistorySettings controls run history persistence.
type HistorySettings struct {
	// Enabled stores finished runs in the run store.
	Enabled bool

	// Keep is the number of most recent runs retained.
	Keep int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Policy holds URL acceptance rules.
	Policy ValidationPolicy

	// Limits holds per-run resource ceilings.
	Limits Limits

	// Progress holds progress event pacing.
	Progress ProgressSettings

	// History holds run history settings.
	History HistorySettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Policy:   DefaultValidationPolicy(),
		Limits:   DefaultLimits(),
		Progress: DefaultProgressSettings(),
		History: HistorySettings{
			Enabled: true,
			Keep:    DefaultHistoryKeep,
		},
	}
}

// Validate checks the settings for values no run could honour.
func (s AppSettings) Validate() error {
	if len(s.Policy.AllowedSchemes) == 0 {
		return fmt.Errorf("%w: at least one allowed scheme is required", ErrInvalidInput)
	}
	for _, scheme := range s.Policy.AllowedSchemes {
		if strings.TrimSpace(scheme) == "" {
			return fmt.Errorf("%w: empty scheme in allowed schemes", ErrInvalidInput)
		}
	}
	if s.Limits.MaxFileSize < 0 || s.Limits.MaxRows < 0 || s.Limits.MaxColumns < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidInput)
	}
	if s.Limits.MaxInvalidRecords < 0 {
		return fmt.Errorf("%w: max invalid records must not be negative", ErrInvalidInput)
	}
	if s.Limits.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidInput)
	}
	if s.Progress.MinInterval < 0 || s.Progress.MaxInterval <= 0 {
		return fmt.Errorf("%w: progress intervals must be positive", ErrInvalidInput)
	}
	if s.Progress.MinInterval > s.Progress.MaxInterval {
		return fmt.Errorf("%w: progress min interval exceeds max interval", ErrInvalidInput)
	}
	if s.History.Keep < 0 {
		return fmt.Errorf("%w: history keep must not be negative", ErrInvalidInput)
	}
	return nil
}
