// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// ValidationService runs each submitted source on its own goroutine and
// reports through a RunHandle. SettingsService maps config keys to
// domain.AppSettings.
package services
