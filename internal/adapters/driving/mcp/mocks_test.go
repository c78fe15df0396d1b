package mcp

import (
	"context"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
)

// mockValidationService is a mock implementation of driving.ValidationService.
type mockValidationService struct {
	runs      []domain.RunResult
	run       *domain.RunResult
	err       error
	policies  []domain.ValidationPolicy
	submitted []driving.SubmitRequest
}

func (m *mockValidationService) Submit(_ context.Context, req driving.SubmitRequest) (driving.RunHandle, error) {
	m.submitted = append(m.submitted, req)
	return nil, m.err
}

func (m *mockValidationService) ValidateURL(raw string, policy domain.ValidationPolicy) domain.ClassifiedRecord {
	m.policies = append(m.policies, policy)
	c := domain.Candidate{Raw: raw}
	if raw == "bad" {
		return domain.Invalid(c, domain.ReasonMissingScheme)
	}
	return domain.Valid(c, raw)
}

func (m *mockValidationService) Status(_ context.Context, _ string) (*domain.RunState, error) {
	return nil, m.err
}

func (m *mockValidationService) Cancel(_ context.Context, _ string) error {
	return m.err
}

func (m *mockValidationService) GetRun(_ context.Context, _ string) (*domain.RunResult, error) {
	return m.run, m.err
}

func (m *mockValidationService) History(_ context.Context, _ int) ([]domain.RunResult, error) {
	return m.runs, m.err
}

func (m *mockValidationService) ClearHistory(_ context.Context) (int, error) {
	return len(m.runs), m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error          { return nil }
func (m *mockSettingsService) SetPolicy(_ domain.ValidationPolicy) error { return nil }
func (m *mockSettingsService) SetLimits(_ domain.Limits) error           { return nil }
func (m *mockSettingsService) Set(_, _ string) error                     { return nil }
func (m *mockSettingsService) Keys() []string                            { return nil }
func (m *mockSettingsService) Validate() error                           { return nil }
func (m *mockSettingsService) GetDefaults() domain.AppSettings           { return domain.DefaultAppSettings() }
