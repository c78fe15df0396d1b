package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// policyFlags holds per-command overrides of the configured policy.
type policyFlags struct {
	schemes       string
	allowLocal    bool
	allowIP       bool
	allowInternal bool
}

func (p *policyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.schemes, "schemes", "", "comma-separated accepted schemes (default from settings)")
	cmd.Flags().BoolVar(&p.allowLocal, "allow-localhost", true, "accept localhost hosts")
	cmd.Flags().BoolVar(&p.allowIP, "allow-ip", true, "accept IPv4 and IPv6 literal hosts")
	cmd.Flags().BoolVar(&p.allowInternal, "allow-internal", true, "accept single-label hosts such as intranet")
}

// resolve applies the flags the user set on top of base.
func (p *policyFlags) resolve(cmd *cobra.Command, base domain.ValidationPolicy) (domain.ValidationPolicy, error) {
	policy := base.Clone()
	flags := cmd.Flags()

	if flags.Changed("schemes") {
		var schemes []string
		for _, s := range strings.Split(p.schemes, ",") {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				schemes = append(schemes, s)
			}
		}
		if len(schemes) == 0 {
			return policy, fmt.Errorf("%w: --schemes needs at least one scheme", domain.ErrInvalidInput)
		}
		policy.AllowedSchemes = schemes
	}
	if flags.Changed("allow-localhost") {
		policy.AllowLocalhost = p.allowLocal
	}
	if flags.Changed("allow-ip") {
		policy.AllowIPLiterals = p.allowIP
	}
	if flags.Changed("allow-internal") {
		policy.AllowInternalDomains = p.allowInternal
	}
	return policy, nil
}

// currentSettings returns the stored settings, or the defaults when no
// settings service is configured.
func currentSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		defaults := domain.DefaultAppSettings()
		return &defaults, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}
