package config

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the answers collected by RunWizard.
type WizardResult struct {
	Account       string
	Region        string
	DevCIDR       string
	EMRCIDR       string
	MaxAZs        int
	AdminRoleName string
	Policy        CapacityPolicy
	StrictTrust   bool
}

// RunWizard asks for the handful of values that differ between deployments.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		Region:  DefaultRegion,
		DevCIDR: DefaultDevCIDR,
		EMRCIDR: DefaultEMRCIDR,
		MaxAZs:  DefaultMaxAZs,
		Policy:  CapacityPolicyNodePool,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Account ID").
				Description("12-digit account the topology is declared for").
				Placeholder("123456789012").
				Value(&result.Account).
				Validate(validateAccount),
			huh.NewInput().
				Title("Region").
				Value(&result.Region),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Dev network CIDR").
				Description("Hosts the remote-debugging bastion").
				Value(&result.DevCIDR).
				Validate(validateCIDR),
			huh.NewInput().
				Title("EMR network CIDR").
				Description("Hosts the cluster and the serverless application; must not overlap the dev network").
				Value(&result.EMRCIDR).
				Validate(func(s string) error {
					if err := validateCIDR(s); err != nil {
						return err
					}
					return CheckNoOverlap(result.DevCIDR, s)
				}),
			huh.NewSelect[int]().
				Title("Availability zones").
				Options(
					huh.NewOption("2 zones", 2),
					huh.NewOption("3 zones", 3),
				).
				Value(&result.MaxAZs),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Cluster admin role (optional)").
				Description("Existing role mapped to system:masters. Leave empty to skip.").
				Value(&result.AdminRoleName),
			huh.NewSelect[CapacityPolicy]().
				Title("Capacity policy").
				Options(
					huh.NewOption(CapacityPolicyNodePool.String(), CapacityPolicyNodePool),
					huh.NewOption(CapacityPolicySpot.String(), CapacityPolicySpot),
				).
				Value(&result.Policy),
			huh.NewConfirm().
				Title("Strict job-role trust?").
				Description("Require subject and audience in a single statement").
				Value(&result.StrictTrust),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard answers into a defaulted Config.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Account: r.Account,
		Region:  r.Region,
		Network: NetworkConfig{
			Dev:    VPCConfig{CIDR: r.DevCIDR},
			EMR:    VPCConfig{CIDR: r.EMRCIDR},
			MaxAZs: r.MaxAZs,
		},
		Cluster:    ClusterConfig{AdminRoleName: r.AdminRoleName},
		Capacity:   CapacityConfig{Policy: r.Policy},
		Containers: ContainersConfig{StrictTrust: r.StrictTrust},
	}
	cfg.ApplyDefaults()
	return cfg
}

func validateAccount(s string) error {
	if !accountRegex.MatchString(s) {
		return fmt.Errorf("account id must be 12 digits")
	}
	return nil
}

func validateCIDR(s string) error {
	if s == "" {
		return fmt.Errorf("CIDR is required")
	}
	_, err := ParseIPv4CIDR(s)
	return err
}
