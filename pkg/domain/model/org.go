package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// AbsencePolicy defines one absence type and its annual allowance in days.
// A zero allowance means the type is unlimited (e.g. sick leave).
type AbsencePolicy struct {
	Type       types.AbsenceType
	Name       string
	AnnualDays float64
}

func (p *AbsencePolicy) Validate() error {
	if err := p.Type.Validate(); err != nil {
		return goerr.Wrap(err, "invalid absence policy type")
	}
	if p.Name == "" {
		return goerr.New("absence policy name is required", goerr.V("type", p.Type))
	}
	if p.AnnualDays < 0 {
		return goerr.New("annual days must not be negative",
			goerr.V("type", p.Type),
			goerr.V("annual_days", p.AnnualDays),
		)
	}
	return nil
}

// Unlimited reports whether the policy carries no annual cap.
func (p *AbsencePolicy) Unlimited() bool {
	return p.AnnualDays == 0
}

// OrgConfig carries organization-level scheduling policy loaded at startup.
type OrgConfig struct {
	Policies []AbsencePolicy
}

func (c *OrgConfig) Validate() error {
	seen := map[types.AbsenceType]struct{}{}
	for i := range c.Policies {
		if err := c.Policies[i].Validate(); err != nil {
			return err
		}
		if _, ok := seen[c.Policies[i].Type]; ok {
			return goerr.New("duplicate absence policy type",
				goerr.V("type", c.Policies[i].Type),
			)
		}
		seen[c.Policies[i].Type] = struct{}{}
	}
	return nil
}

// Policy looks up the policy for an absence type. Returns nil when the
// type is not configured.
func (c *OrgConfig) Policy(typ types.AbsenceType) *AbsencePolicy {
	for i := range c.Policies {
		if c.Policies[i].Type == typ {
			return &c.Policies[i]
		}
	}
	return nil
}
