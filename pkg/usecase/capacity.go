package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/metrics"
)

// GetCapacityReport aggregates active-assignment counts over [start,
// end] for the caller's scope. Workloads maps employee -> business day
// -> assignment count; Utilization maps each business day to the
// percentage of maximum capacity used across the scoped employees
// (denominator: scoped active employees x MaxDailyCapacity). An empty
// scope yields an empty report rather than a division by zero.
func (uc *UseCases) GetCapacityReport(ctx context.Context, scope *RoleScope, start, end types.Date) (*model.CapacityReport, error) {
	if err := start.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "invalid range start", goerr.V(DateKey, start))
	}
	if err := end.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "invalid range end", goerr.V(DateKey, end))
	}
	if end < start {
		return nil, goerr.Wrap(ErrInvalidDate, "range end precedes start",
			goerr.V("start", start),
			goerr.V("end", end),
		)
	}

	report := &model.CapacityReport{
		StartDate:   start,
		EndDate:     end,
		Workloads:   map[types.EmployeeID]map[types.Date]int{},
		Utilization: map[types.Date]float64{},
	}

	employees, err := uc.visibleEmployees(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return report, nil
	}

	employeeIDs := make([]types.EmployeeID, len(employees))
	for i, e := range employees {
		employeeIDs[i] = e.ID
		report.Workloads[e.ID] = map[types.Date]int{}
	}

	assignments, err := uc.repo.Assignment().ListRange(ctx, employeeIDs, start, end)
	if err != nil {
		return nil, goerr.Wrap(ErrEngineUnavailable, "failed to load assignments", goerr.V("cause", err.Error()))
	}

	for d := start; d <= end; d = d.AddDays(1) {
		if !d.IsBusinessDay() {
			continue
		}
		for _, e := range employees {
			report.Workloads[e.ID][d] = 0
		}
		report.Utilization[d] = 0
	}
	for _, a := range assignments {
		if days, ok := report.Workloads[a.EmployeeID]; ok {
			if _, ok := days[a.Date]; ok {
				days[a.Date]++
			}
		}
	}

	denominator := float64(len(employees) * types.MaxDailyCapacity)
	var total, count float64
	for d := range report.Utilization {
		var used int
		for _, e := range employees {
			used += report.Workloads[e.ID][d]
		}
		pct := float64(used) / denominator * 100
		report.Utilization[d] = pct
		total += pct
		count++
	}
	if count > 0 {
		metrics.UtilizationPercent.Set(total / count)
	}
	return report, nil
}

// GetDailyWorkload returns only the per-employee workload map of the
// capacity report.
func (uc *UseCases) GetDailyWorkload(ctx context.Context, scope *RoleScope, start, end types.Date) (map[types.EmployeeID]map[types.Date]int, error) {
	report, err := uc.GetCapacityReport(ctx, scope, start, end)
	if err != nil {
		return nil, err
	}
	return report.Workloads, nil
}
