package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Org holds the CLI flag for the organization configuration file
type Org struct {
	path string
}

// Flags returns CLI flags for organization configuration
func (o *Org) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "org-config",
			Usage:       "Path to organization configuration TOML (teams, employees, absence types)",
			Sources:     cli.EnvVars("SLOTLINE_ORG_CONFIG"),
			Destination: &o.path,
		},
	}
}

// Configured reports whether a config path was provided
func (o *Org) Configured() bool {
	return o.path != ""
}

// OrgConfig represents the organization configuration file
type OrgConfig struct {
	Teams        []Team        `toml:"team"`
	Employees    []Employee    `toml:"employee"`
	AbsenceTypes []AbsenceType `toml:"absence_type"`
}

// Team represents a team configuration
type Team struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Validate checks if the Team is valid
func (t *Team) Validate() error {
	id := types.TeamID(t.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid team ID")
	}
	if t.Name == "" {
		return goerr.New("team name is required", goerr.V("id", t.ID))
	}
	return nil
}

// Employee represents an employee configuration
type Employee struct {
	ID      string   `toml:"id"`
	Name    string   `toml:"name"`
	Email   string   `toml:"email"`
	Role    string   `toml:"role"`
	Team    string   `toml:"team"`
	Manages []string `toml:"manages"`
}

// Validate checks if the Employee is valid
func (e *Employee) Validate() error {
	id := types.EmployeeID(e.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid employee ID")
	}
	if e.Name == "" {
		return goerr.New("employee name is required", goerr.V("id", e.ID))
	}
	role := types.Role(e.Role).Normalize()
	if !role.IsValid() {
		return goerr.New("invalid employee role", goerr.V("id", e.ID), goerr.V("role", e.Role))
	}
	if err := types.TeamID(e.Team).Validate(); err != nil {
		return goerr.Wrap(err, "invalid employee team", goerr.V("id", e.ID))
	}
	if len(e.Manages) > 0 && role != types.RoleManager {
		return goerr.New("only managers may list managed teams", goerr.V("id", e.ID), goerr.V("role", e.Role))
	}
	return nil
}

// AbsenceType represents an absence type configuration
type AbsenceType struct {
	ID         string  `toml:"id"`
	Name       string  `toml:"name"`
	AnnualDays float64 `toml:"annual_days"`
}

// Validate checks if the AbsenceType is valid
func (a *AbsenceType) Validate() error {
	id := types.AbsenceType(a.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid absence type ID")
	}
	if a.Name == "" {
		return goerr.New("absence type name is required", goerr.V("id", a.ID))
	}
	if a.AnnualDays < 0 {
		return goerr.New("annual days must not be negative", goerr.V("id", a.ID), goerr.V("annual_days", a.AnnualDays))
	}
	return nil
}

// Validate checks if the OrgConfig is valid: every entry well formed,
// no duplicate IDs, every employee's team and managed teams defined.
func (c *OrgConfig) Validate() error {
	teamIDs := make(map[string]bool)
	for _, t := range c.Teams {
		if err := t.Validate(); err != nil {
			return goerr.Wrap(err, "invalid team")
		}
		if teamIDs[t.ID] {
			return goerr.New("duplicate team ID", goerr.V("id", t.ID))
		}
		teamIDs[t.ID] = true
	}

	employeeIDs := make(map[string]bool)
	for _, e := range c.Employees {
		if err := e.Validate(); err != nil {
			return goerr.Wrap(err, "invalid employee")
		}
		if employeeIDs[e.ID] {
			return goerr.New("duplicate employee ID", goerr.V("id", e.ID))
		}
		employeeIDs[e.ID] = true
		if !teamIDs[e.Team] {
			return goerr.New("employee references undefined team", goerr.V("id", e.ID), goerr.V("team", e.Team))
		}
		for _, managed := range e.Manages {
			if !teamIDs[managed] {
				return goerr.New("employee manages undefined team", goerr.V("id", e.ID), goerr.V("team", managed))
			}
		}
	}

	typeIDs := make(map[string]bool)
	for _, a := range c.AbsenceTypes {
		if err := a.Validate(); err != nil {
			return goerr.Wrap(err, "invalid absence type")
		}
		if typeIDs[a.ID] {
			return goerr.New("duplicate absence type ID", goerr.V("id", a.ID))
		}
		typeIDs[a.ID] = true
	}

	return nil
}

// LoadOrgConfiguration loads and validates the organization
// configuration from a TOML file
func LoadOrgConfiguration(path string) (*OrgConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var config OrgConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}

// Configure loads the configuration file named by the flag
func (o *Org) Configure() (*OrgConfig, error) {
	if o.path == "" {
		return &OrgConfig{}, nil
	}
	return LoadOrgConfiguration(o.path)
}

// ToDomainOrgConfig converts the absence type policies to the domain
// configuration consumed by the engine
func (c *OrgConfig) ToDomainOrgConfig() *model.OrgConfig {
	policies := make([]model.AbsencePolicy, len(c.AbsenceTypes))
	for i, a := range c.AbsenceTypes {
		policies[i] = model.AbsencePolicy{
			Type:       types.AbsenceType(a.ID),
			Name:       a.Name,
			AnnualDays: a.AnnualDays,
		}
	}
	return &model.OrgConfig{Policies: policies}
}

// Seed writes the configured teams, employees and manager relations into
// the directory. Existing rows with the same IDs are overwritten; rows
// not named in the config are left alone.
func (c *OrgConfig) Seed(ctx context.Context, repo interfaces.Repository) error {
	for _, t := range c.Teams {
		team := &model.Team{
			ID:   types.TeamID(t.ID),
			Name: t.Name,
		}
		if err := repo.Directory().PutTeam(ctx, team); err != nil {
			return goerr.Wrap(err, "failed to seed team", goerr.V("id", t.ID))
		}
	}
	for _, e := range c.Employees {
		employee := &model.Employee{
			ID:     types.EmployeeID(e.ID),
			Name:   e.Name,
			Email:  e.Email,
			Role:   types.Role(e.Role).Normalize(),
			TeamID: types.TeamID(e.Team),
			Active: true,
		}
		if err := repo.Directory().PutEmployee(ctx, employee); err != nil {
			return goerr.Wrap(err, "failed to seed employee", goerr.V("id", e.ID))
		}
		if len(e.Manages) > 0 {
			teamIDs := make([]types.TeamID, len(e.Manages))
			for i, id := range e.Manages {
				teamIDs[i] = types.TeamID(id)
			}
			if err := repo.Directory().SetManagedTeams(ctx, employee.ID, teamIDs); err != nil {
				return goerr.Wrap(err, "failed to seed managed teams", goerr.V("id", e.ID))
			}
		}
	}
	return nil
}
