package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var validatePolicy policyFlags

var validateCmd = &cobra.Command{
	Use:   "validate [url...]",
	Short: "Validate URLs given on the command line",
	Long: `Classifies each argument as a valid or invalid URL under the configured
policy and prints the normalised form of the valid ones.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validatePolicy.register(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validationService == nil {
		return errors.New("validation service not configured")
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	policy, err := validatePolicy.resolve(cmd, settings.Policy)
	if err != nil {
		return err
	}

	invalid := 0
	for _, raw := range args {
		rec := validationService.ValidateURL(raw, policy)
		if rec.IsValid() {
			cmd.Printf("valid    %s\n", rec.Normalized)
			continue
		}
		invalid++
		cmd.Printf("invalid  %s  [%s] %s\n", raw, rec.Reason, rec.Reason.Description())
	}

	if invalid > 0 {
		return ErrInvalidLinks
	}
	return nil
}
