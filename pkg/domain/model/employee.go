package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// Employee represents a member of the organization. Employees are owned by
// the directory; the engine reads them and never mutates them.
type Employee struct {
	ID     types.EmployeeID
	Name   string
	Email  string `masq:"secret"`
	Role   types.Role
	TeamID types.TeamID
	Active bool
}

// Validate checks if the Employee is valid
func (e *Employee) Validate() error {
	if err := e.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid employee ID")
	}
	if e.Name == "" {
		return goerr.New("employee name is required", goerr.V("id", e.ID))
	}
	if !e.Role.Normalize().IsValid() {
		return goerr.New("invalid employee role", goerr.V("id", e.ID), goerr.V("role", e.Role))
	}
	return nil
}

// Team represents a group of employees working under one manager
type Team struct {
	ID   types.TeamID
	Name string
}

// Validate checks if the Team is valid
func (t *Team) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid team ID")
	}
	if t.Name == "" {
		return goerr.New("team name is required", goerr.V("id", t.ID))
	}
	return nil
}
