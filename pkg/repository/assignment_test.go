package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/repository/firestore"
	"github.com/slotline-io/slotline/pkg/repository/memory"
)

func newAssignment(employeeID types.EmployeeID, taskID types.TaskID, date types.Date, slot types.Slot) *model.Assignment {
	return model.NewAssignment(&model.Placement{
		EmployeeID: employeeID,
		TaskID:     taskID,
		Date:       date,
		Slot:       slot,
	}, time.Now())
}

func runAssignmentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const monday = types.Date("2026-03-02")

	t.Run("Insert assigns dense slot orders", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			taskID := types.TaskID(fmt.Sprintf("task-%d", i))
			created, err := repo.Assignment().Insert(ctx, newAssignment("alice", taskID, monday, types.SlotMorning))
			gt.NoError(t, err).Required()
			gt.Number(t, created.SlotOrder).Equal(i)
			gt.Bool(t, created.Active).True()
		}

		listed, err := repo.Assignment().ListSlot(ctx, "alice", monday, types.SlotMorning)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(3)
		for i, a := range listed {
			gt.Number(t, a.SlotOrder).Equal(i)
		}
	})

	t.Run("Insert refuses a full slot", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < types.MaxSlotOccupancy; i++ {
			taskID := types.TaskID(fmt.Sprintf("task-%d", i))
			_, err := repo.Assignment().Insert(ctx, newAssignment("alice", taskID, monday, types.SlotMorning))
			gt.NoError(t, err).Required()
		}

		_, err := repo.Assignment().Insert(ctx, newAssignment("alice", "task-over", monday, types.SlotMorning))
		gt.Bool(t, errors.Is(err, interfaces.ErrSlotFull)).True()

		// Other slots of the same day are unaffected
		_, err = repo.Assignment().Insert(ctx, newAssignment("alice", "task-over", monday, types.SlotAfternoon))
		gt.NoError(t, err).Required()
	})

	t.Run("Get returns active assignment only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Assignment().Insert(ctx, newAssignment("alice", "task-a", monday, types.SlotMorning))
		gt.NoError(t, err).Required()

		got, err := repo.Assignment().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.TaskID).Equal(types.TaskID("task-a"))

		gt.NoError(t, repo.Assignment().Deactivate(ctx, created.ID)).Required()

		_, err = repo.Assignment().Get(ctx, created.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Assignment().Get(ctx, types.NewAssignmentID())
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Deactivate renumbers remaining assignments", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var created []*model.Assignment
		for i := 0; i < 3; i++ {
			taskID := types.TaskID(fmt.Sprintf("task-%d", i))
			a, err := repo.Assignment().Insert(ctx, newAssignment("alice", taskID, monday, types.SlotMorning))
			gt.NoError(t, err).Required()
			created = append(created, a)
		}

		// Remove the middle one; orders must close the gap
		gt.NoError(t, repo.Assignment().Deactivate(ctx, created[1].ID)).Required()

		listed, err := repo.Assignment().ListSlot(ctx, "alice", monday, types.SlotMorning)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(2)
		gt.Value(t, listed[0].TaskID).Equal(types.TaskID("task-0"))
		gt.Number(t, listed[0].SlotOrder).Equal(0)
		gt.Value(t, listed[1].TaskID).Equal(types.TaskID("task-2"))
		gt.Number(t, listed[1].SlotOrder).Equal(1)
	})

	t.Run("Deactivate twice returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Assignment().Insert(ctx, newAssignment("alice", "task-a", monday, types.SlotMorning))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Assignment().Deactivate(ctx, created.ID)).Required()
		err = repo.Assignment().Deactivate(ctx, created.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Move relocates and renumbers both slots", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var created []*model.Assignment
		for i := 0; i < 2; i++ {
			taskID := types.TaskID(fmt.Sprintf("task-%d", i))
			a, err := repo.Assignment().Insert(ctx, newAssignment("alice", taskID, monday, types.SlotMorning))
			gt.NoError(t, err).Required()
			created = append(created, a)
		}

		moved, err := repo.Assignment().Move(ctx, created[0].ID, "bob", monday, types.SlotAfternoon)
		gt.NoError(t, err).Required()
		gt.Value(t, moved.EmployeeID).Equal(types.EmployeeID("bob"))
		gt.Value(t, moved.Slot).Equal(types.SlotAfternoon)
		gt.Number(t, moved.SlotOrder).Equal(0)

		// Source slot closes the gap
		source, err := repo.Assignment().ListSlot(ctx, "alice", monday, types.SlotMorning)
		gt.NoError(t, err).Required()
		gt.Array(t, source).Length(1)
		gt.Number(t, source[0].SlotOrder).Equal(0)
	})

	t.Run("Move to a full slot fails and keeps origin", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		victim, err := repo.Assignment().Insert(ctx, newAssignment("alice", "task-v", monday, types.SlotMorning))
		gt.NoError(t, err).Required()

		for i := 0; i < types.MaxSlotOccupancy; i++ {
			taskID := types.TaskID(fmt.Sprintf("task-%d", i))
			_, err := repo.Assignment().Insert(ctx, newAssignment("bob", taskID, monday, types.SlotAfternoon))
			gt.NoError(t, err).Required()
		}

		_, err = repo.Assignment().Move(ctx, victim.ID, "bob", monday, types.SlotAfternoon)
		gt.Bool(t, errors.Is(err, interfaces.ErrSlotFull)).True()

		// Original position is untouched
		got, err := repo.Assignment().Get(ctx, victim.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.EmployeeID).Equal(types.EmployeeID("alice"))
		gt.Value(t, got.Slot).Equal(types.SlotMorning)
	})

	t.Run("Move within a full slot is allowed", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var created []*model.Assignment
		for i := 0; i < types.MaxSlotOccupancy; i++ {
			taskID := types.TaskID(fmt.Sprintf("task-%d", i))
			a, err := repo.Assignment().Insert(ctx, newAssignment("alice", taskID, monday, types.SlotMorning))
			gt.NoError(t, err).Required()
			created = append(created, a)
		}

		// The assignment never counts against its own destination
		moved, err := repo.Assignment().Move(ctx, created[0].ID, "alice", monday, types.SlotMorning)
		gt.NoError(t, err).Required()
		gt.Value(t, moved.EmployeeID).Equal(types.EmployeeID("alice"))
	})

	t.Run("InsertBatch commits all or nothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		batch := []*model.Assignment{
			newAssignment("alice", "task-a", monday, types.SlotMorning),
			newAssignment("alice", "task-b", monday, types.SlotAfternoon),
			newAssignment("bob", "task-c", monday, types.SlotMorning),
		}
		inserted, err := repo.Assignment().InsertBatch(ctx, batch)
		gt.NoError(t, err).Required()
		gt.Array(t, inserted).Length(3)

		// Overflowing batch: 5 placements into one empty slot
		var overflow []*model.Assignment
		for i := 0; i < types.MaxSlotOccupancy+1; i++ {
			taskID := types.TaskID(fmt.Sprintf("bulk-%d", i))
			overflow = append(overflow, newAssignment("carol", taskID, monday, types.SlotMorning))
		}
		_, err = repo.Assignment().InsertBatch(ctx, overflow)
		gt.Bool(t, errors.Is(err, interfaces.ErrSlotFull)).True()

		// Nothing from the failed batch is stored
		listed, err := repo.Assignment().ListSlot(ctx, "carol", monday, types.SlotMorning)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(0)
	})

	t.Run("InsertBatch counts existing rows against the cap", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			taskID := types.TaskID(fmt.Sprintf("task-%d", i))
			_, err := repo.Assignment().Insert(ctx, newAssignment("alice", taskID, monday, types.SlotMorning))
			gt.NoError(t, err).Required()
		}

		// 3 existing + 2 new exceeds the cap of 4
		batch := []*model.Assignment{
			newAssignment("alice", "bulk-a", monday, types.SlotMorning),
			newAssignment("alice", "bulk-b", monday, types.SlotMorning),
		}
		_, err := repo.Assignment().InsertBatch(ctx, batch)
		gt.Bool(t, errors.Is(err, interfaces.ErrSlotFull)).True()

		listed, err := repo.Assignment().ListSlot(ctx, "alice", monday, types.SlotMorning)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(3)
	})

	t.Run("ListRange filters by employees and dates", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		week := []types.Date{"2026-03-02", "2026-03-03", "2026-03-04"}
		for _, d := range week {
			_, err := repo.Assignment().Insert(ctx, newAssignment("alice", "task-a", d, types.SlotMorning))
			gt.NoError(t, err).Required()
			_, err = repo.Assignment().Insert(ctx, newAssignment("bob", "task-b", d, types.SlotAfternoon))
			gt.NoError(t, err).Required()
		}

		listed, err := repo.Assignment().ListRange(ctx, []types.EmployeeID{"alice"}, "2026-03-02", "2026-03-03")
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(2)
		for _, a := range listed {
			gt.Value(t, a.EmployeeID).Equal(types.EmployeeID("alice"))
		}

		both, err := repo.Assignment().ListRange(ctx, []types.EmployeeID{"alice", "bob"}, "2026-03-02", "2026-03-04")
		gt.NoError(t, err).Required()
		gt.Array(t, both).Length(6)
	})

	t.Run("Concurrent inserts never exceed the cap", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const writers = 8
		var wg sync.WaitGroup
		results := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				taskID := types.TaskID(fmt.Sprintf("race-%d", i))
				_, err := repo.Assignment().Insert(ctx, newAssignment("alice", taskID, monday, types.SlotMorning))
				results[i] = err
			}(i)
		}
		wg.Wait()

		var succeeded, full int
		for _, err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, interfaces.ErrSlotFull):
				full++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		gt.Number(t, succeeded).Equal(types.MaxSlotOccupancy)
		gt.Number(t, full).Equal(writers - types.MaxSlotOccupancy)

		listed, err := repo.Assignment().ListSlot(ctx, "alice", monday, types.SlotMorning)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(types.MaxSlotOccupancy)
	})
}

func TestAssignmentRepository_Memory(t *testing.T) {
	runAssignmentRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestAssignmentRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runAssignmentRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		prefix := fmt.Sprintf("test-%d-", time.Now().UnixNano())
		repo, err := firestore.New(context.Background(), projectID, "", firestore.WithCollectionPrefix(prefix))
		gt.NoError(t, err).Required()
		return repo
	})
}
