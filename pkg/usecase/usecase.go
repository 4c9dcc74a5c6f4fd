// Package usecase implements the scheduling engine: placement of
// assignments onto calendar slots, absence lifecycle, calendar views,
// availability matrices and capacity reports. All operations take a
// RoleScope resolved from the calling user and never return data
// outside that scope.
package usecase

import (
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
)

type UseCases struct {
	repo interfaces.Repository
	org  *model.OrgConfig
}

type Option func(*UseCases)

// WithOrgConfig installs organization scheduling policy (absence types
// and allowances). Without it, absence requests accept any valid type
// and enforce no allowance.
func WithOrgConfig(org *model.OrgConfig) Option {
	return func(uc *UseCases) {
		uc.org = org
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		org:  &model.OrgConfig{},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCases) Repository() interfaces.Repository {
	return uc.repo
}
