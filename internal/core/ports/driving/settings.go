package driving

import "github.com/custodia-labs/linkcheck/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetPolicy updates the validation policy.
	SetPolicy(policy domain.ValidationPolicy) error

	// SetLimits updates the resource ceilings.
	SetLimits(limits domain.Limits) error

	// Set updates a single setting by key, parsing value to the key's type.
	Set(key, value string) error

	// Keys returns the recognised setting keys.
	Keys() []string

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
