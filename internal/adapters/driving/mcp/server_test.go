package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil validation service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingValidationService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Validation: &mockValidationService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil validation service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingValidationService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Validation: &mockValidationService{},
			Settings:   &mockSettingsService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_BaseSettings(t *testing.T) {
	t.Run("defaults without settings", func(t *testing.T) {
		server, err := NewServer(&Ports{Validation: &mockValidationService{}})
		require.NoError(t, err)

		assert.Equal(t, domain.DefaultValidationPolicy(), server.basePolicy())
		assert.Equal(t, domain.DefaultLimits(), server.baseLimits())
	})

	t.Run("settings take precedence", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Policy.AllowedSchemes = []string{"ftp"}
		settings.Limits.MaxRows = 9

		server, err := NewServer(&Ports{
			Validation: &mockValidationService{},
			Settings:   &mockSettingsService{settings: settings},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"ftp"}, server.basePolicy().AllowedSchemes)
		assert.Equal(t, 9, server.baseLimits().MaxRows)
	})
}
