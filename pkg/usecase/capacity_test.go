package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/usecase"
)

func TestGetAvailabilityMatrix(t *testing.T) {
	weekEnd := types.Date("2025-09-26")

	t.Run("place_new reflects occupancy and cap", func(t *testing.T) {
		uc, _ := setup(t)
		admin := scopeOf(t, uc, "ada")
		ctx := context.Background()

		for i := 0; i < types.MaxSlotOccupancy; i++ {
			_, err := uc.CreateAssignment(ctx, admin, place("alice", types.TaskID("task-"+string(rune('a'+i))), monday, types.SlotMorning))
			gt.NoError(t, err).Required()
		}

		matrix, err := uc.GetAvailabilityMatrix(ctx, admin, "alice", monday, weekEnd, types.IntentPlaceNew)
		gt.NoError(t, err).Required()

		gt.Array(t, mapKeys(matrix.Days)).Length(5)
		gt.Bool(t, matrix.Days[monday][types.SlotMorning]).False()
		gt.Bool(t, matrix.Days[monday][types.SlotAfternoon]).True()
		gt.Bool(t, matrix.Days["2025-09-23"][types.SlotMorning]).True()
	})

	t.Run("approved full-day absence blocks both slots", func(t *testing.T) {
		uc, repo := setup(t)
		admin := scopeOf(t, uc, "ada")
		ctx := context.Background()

		now := time.Now().UTC()
		_, err := repo.Absence().Create(ctx, &model.AbsenceRecord{
			ID: types.NewAbsenceID(), EmployeeID: "alice", Date: monday,
			Span: types.AbsenceSpanFullDay, Status: types.AbsenceStatusApproved,
			Type: "vacation", CreatedAt: now, UpdatedAt: now,
		})
		gt.NoError(t, err).Required()

		_, err = uc.CreateAssignment(ctx, admin, place("alice", "task-a", monday, types.SlotMorning))
		gt.Bool(t, errors.Is(err, usecase.ErrAbsenceConflict)).True()

		matrix, err := uc.GetAvailabilityMatrix(ctx, admin, "alice", monday, monday, types.IntentPlaceNew)
		gt.NoError(t, err).Required()
		gt.Bool(t, matrix.Days[monday][types.SlotMorning]).False()
		gt.Bool(t, matrix.Days[monday][types.SlotAfternoon]).False()
	})

	t.Run("morning absence blocks only the morning", func(t *testing.T) {
		uc, repo := setup(t)
		admin := scopeOf(t, uc, "ada")
		ctx := context.Background()

		now := time.Now().UTC()
		_, err := repo.Absence().Create(ctx, &model.AbsenceRecord{
			ID: types.NewAbsenceID(), EmployeeID: "alice", Date: monday,
			Span: types.AbsenceSpanMorning, Status: types.AbsenceStatusPending,
			Type: "sick", CreatedAt: now, UpdatedAt: now,
		})
		gt.NoError(t, err).Required()

		matrix, err := uc.GetAvailabilityMatrix(ctx, admin, "alice", monday, monday, types.IntentPlaceNew)
		gt.NoError(t, err).Required()
		gt.Bool(t, matrix.Days[monday][types.SlotMorning]).False()
		gt.Bool(t, matrix.Days[monday][types.SlotAfternoon]).True()
	})

	t.Run("occupied intent marks slots with work", func(t *testing.T) {
		uc, _ := setup(t)
		admin := scopeOf(t, uc, "ada")
		ctx := context.Background()

		_, err := uc.CreateAssignment(ctx, admin, place("alice", "task-a", monday, types.SlotAfternoon))
		gt.NoError(t, err).Required()

		matrix, err := uc.GetAvailabilityMatrix(ctx, admin, "alice", monday, monday, types.IntentOccupied)
		gt.NoError(t, err).Required()
		gt.Bool(t, matrix.Days[monday][types.SlotMorning]).False()
		gt.Bool(t, matrix.Days[monday][types.SlotAfternoon]).True()
	})

	t.Run("deactivated employee cannot take new work", func(t *testing.T) {
		uc, _ := setup(t)
		admin := scopeOf(t, uc, "ada")

		matrix, err := uc.GetAvailabilityMatrix(context.Background(), admin, "ivan", monday, weekEnd, types.IntentPlaceNew)
		gt.NoError(t, err).Required()
		gt.Array(t, mapKeys(matrix.Days)).Length(0)
	})

	t.Run("member cannot query a peer", func(t *testing.T) {
		uc, _ := setup(t)
		alice := scopeOf(t, uc, "alice")

		_, err := uc.GetAvailabilityMatrix(context.Background(), alice, "bob", monday, weekEnd, types.IntentPlaceNew)
		gt.Bool(t, errors.Is(err, usecase.ErrForbidden)).True()
	})

	t.Run("repeated builds are identical", func(t *testing.T) {
		uc, _ := setup(t)
		admin := scopeOf(t, uc, "ada")
		ctx := context.Background()

		_, err := uc.CreateAssignment(ctx, admin, place("alice", "task-a", monday, types.SlotMorning))
		gt.NoError(t, err).Required()

		first, err := uc.GetAvailabilityMatrix(ctx, admin, "alice", monday, weekEnd, types.IntentPlaceNew)
		gt.NoError(t, err).Required()
		second, err := uc.GetAvailabilityMatrix(ctx, admin, "alice", monday, weekEnd, types.IntentPlaceNew)
		gt.NoError(t, err).Required()

		for d, slots := range first.Days {
			for s, ok := range slots {
				gt.Value(t, second.Days[d][s]).Equal(ok)
			}
		}
	})

	t.Run("reversed range is rejected", func(t *testing.T) {
		uc, _ := setup(t)
		admin := scopeOf(t, uc, "ada")

		_, err := uc.GetAvailabilityMatrix(context.Background(), admin, "alice", weekEnd, monday, types.IntentPlaceNew)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidDate)).True()
	})
}

func TestGetCapacityReport(t *testing.T) {
	t.Run("utilization arithmetic", func(t *testing.T) {
		uc, _ := setup(t)
		mira := scopeOf(t, uc, "mira")
		ctx := context.Background()

		// platform actives under mira: ada, alice, bob, mira (4 employees)
		_, err := uc.CreateAssignment(ctx, mira, place("alice", "task-a", monday, types.SlotMorning))
		gt.NoError(t, err).Required()
		_, err = uc.CreateAssignment(ctx, mira, place("alice", "task-b", monday, types.SlotAfternoon))
		gt.NoError(t, err).Required()
		_, err = uc.CreateAssignment(ctx, mira, place("bob", "task-c", monday, types.SlotMorning))
		gt.NoError(t, err).Required()

		report, err := uc.GetCapacityReport(ctx, mira, monday, monday)
		gt.NoError(t, err).Required()

		gt.Number(t, report.Workloads["alice"][monday]).Equal(2)
		gt.Number(t, report.Workloads["bob"][monday]).Equal(1)
		gt.Number(t, report.Workloads["mira"][monday]).Equal(0)

		// 3 assignments / (4 employees x 8 daily capacity) = 9.375%
		gt.Number(t, report.Utilization[monday]).Equal(3.0 / (4 * float64(types.MaxDailyCapacity)) * 100)
	})

	t.Run("weekends are excluded from the report", func(t *testing.T) {
		uc, _ := setup(t)
		admin := scopeOf(t, uc, "ada")

		report, err := uc.GetCapacityReport(context.Background(), admin, "2025-09-22", "2025-09-28")
		gt.NoError(t, err).Required()
		gt.Array(t, mapKeys(report.Utilization)).Length(5)
		gt.Array(t, mapKeys(report.Workloads["alice"])).Length(5)
	})

	t.Run("empty scope yields empty report", func(t *testing.T) {
		uc, _ := setup(t)
		nomad := scopeOf(t, uc, "nomad")

		report, err := uc.GetCapacityReport(context.Background(), nomad, monday, monday)
		gt.NoError(t, err).Required()
		gt.Array(t, mapKeys(report.Workloads)).Length(0)
		gt.Array(t, mapKeys(report.Utilization)).Length(0)
	})
}

func TestGetDailyWorkload(t *testing.T) {
	uc, _ := setup(t)
	admin := scopeOf(t, uc, "ada")
	ctx := context.Background()

	_, err := uc.CreateAssignment(ctx, admin, place("carol", "task-a", monday, types.SlotMorning))
	gt.NoError(t, err).Required()

	workloads, err := uc.GetDailyWorkload(ctx, admin, monday, monday)
	gt.NoError(t, err).Required()
	gt.Number(t, workloads["carol"][monday]).Equal(1)
	gt.Number(t, workloads["alice"][monday]).Equal(0)
}

func mapKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
