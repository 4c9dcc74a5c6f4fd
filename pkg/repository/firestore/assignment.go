package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
	"github.com/slotline-io/slotline/pkg/domain/model"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type assignmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssignmentRepository(client *firestore.Client) *assignmentRepository {
	return &assignmentRepository{client: client}
}

func (r *assignmentRepository) collection() string {
	return prefixed(r.collectionPrefix, "assignments")
}

func (r *assignmentRepository) slotQuery(employeeID types.EmployeeID, date types.Date, slot types.Slot) firestore.Query {
	return r.client.Collection(r.collection()).
		Where("EmployeeID", "==", string(employeeID)).
		Where("Date", "==", string(date)).
		Where("Slot", "==", string(slot)).
		Where("Active", "==", true)
}

// activeInSlotTx reads the active assignments of one slot inside a
// transaction, ordered by SlotOrder.
func (r *assignmentRepository) activeInSlotTx(tx *firestore.Transaction, employeeID types.EmployeeID, date types.Date, slot types.Slot) ([]*model.Assignment, error) {
	docs, err := tx.Documents(r.slotQuery(employeeID, date, slot)).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query slot assignments",
			goerr.V("employee_id", employeeID),
			goerr.V("date", date),
			goerr.V("slot", slot))
	}

	result := make([]*model.Assignment, 0, len(docs))
	for _, docSnap := range docs {
		var a model.Assignment
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode assignment", goerr.V("doc_id", docSnap.Ref.ID))
		}
		result = append(result, &a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SlotOrder < result[j].SlotOrder
	})
	return result, nil
}

// renumberTx writes dense SlotOrder values 0..N-1 for the given
// assignments, skipping any listed in exclude.
func (r *assignmentRepository) renumberTx(tx *firestore.Transaction, assignments []*model.Assignment, exclude map[types.AssignmentID]struct{}, now time.Time) error {
	order := 0
	for _, a := range assignments {
		if _, skip := exclude[a.ID]; skip {
			continue
		}
		if a.SlotOrder != order {
			ref := r.client.Collection(r.collection()).Doc(string(a.ID))
			if err := tx.Update(ref, []firestore.Update{
				{Path: "SlotOrder", Value: order},
				{Path: "UpdatedAt", Value: now},
			}); err != nil {
				return goerr.Wrap(err, "failed to renumber assignment", goerr.V("id", a.ID))
			}
		}
		order++
	}
	return nil
}

func (r *assignmentRepository) Get(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get assignment", goerr.V("id", id))
	}

	var a model.Assignment
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode assignment", goerr.V("id", id))
	}
	if !a.Active {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
	}

	return &a, nil
}

func (r *assignmentRepository) ListSlot(ctx context.Context, employeeID types.EmployeeID, date types.Date, slot types.Slot) ([]*model.Assignment, error) {
	iter := r.slotQuery(employeeID, date, slot).Documents(ctx)
	defer iter.Stop()

	result := []*model.Assignment{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate slot assignments",
				goerr.V("employee_id", employeeID),
				goerr.V("date", date),
				goerr.V("slot", slot))
		}

		var a model.Assignment
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode assignment", goerr.V("doc_id", docSnap.Ref.ID))
		}
		result = append(result, &a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SlotOrder < result[j].SlotOrder
	})
	return result, nil
}

func (r *assignmentRepository) ListRange(ctx context.Context, employeeIDs []types.EmployeeID, start, end types.Date) ([]*model.Assignment, error) {
	result := []*model.Assignment{}

	for i := 0; i < len(employeeIDs); i += inQueryBatchSize {
		batchEnd := i + inQueryBatchSize
		if batchEnd > len(employeeIDs) {
			batchEnd = len(employeeIDs)
		}
		batch := make([]string, 0, batchEnd-i)
		for _, id := range employeeIDs[i:batchEnd] {
			batch = append(batch, string(id))
		}

		query := r.client.Collection(r.collection()).
			Where("EmployeeID", "in", batch).
			Where("Date", ">=", string(start)).
			Where("Date", "<=", string(end)).
			Where("Active", "==", true)

		iter := query.Documents(ctx)
		for {
			docSnap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to iterate assignments",
					goerr.V("start", start),
					goerr.V("end", end))
			}

			var a model.Assignment
			if err := docSnap.DataTo(&a); err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to decode assignment", goerr.V("doc_id", docSnap.Ref.ID))
			}
			result = append(result, &a)
		}
		iter.Stop()
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		if result[i].Slot != result[j].Slot {
			return result[i].Slot < result[j].Slot
		}
		return result[i].SlotOrder < result[j].SlotOrder
	})

	return result, nil
}

func (r *assignmentRepository) Insert(ctx context.Context, a *model.Assignment) (*model.Assignment, error) {
	created := *a
	if created.ID == "" {
		created.ID = types.NewAssignmentID()
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := r.activeInSlotTx(tx, a.EmployeeID, a.Date, a.Slot)
		if err != nil {
			return err
		}
		if len(existing) >= types.MaxSlotOccupancy {
			return goerr.Wrap(interfaces.ErrSlotFull, "slot is full",
				goerr.V("employee_id", a.EmployeeID),
				goerr.V("date", a.Date),
				goerr.V("slot", a.Slot),
				goerr.V("count", len(existing)))
		}

		now := time.Now().UTC()
		created.SlotOrder = len(existing)
		created.Active = true
		created.CreatedAt = now
		created.UpdatedAt = now

		ref := r.client.Collection(r.collection()).Doc(string(created.ID))
		return tx.Set(ref, &created)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *assignmentRepository) InsertBatch(ctx context.Context, as []*model.Assignment) ([]*model.Assignment, error) {
	created := make([]*model.Assignment, len(as))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// All reads must precede writes in a Firestore transaction: fetch
		// the current count of every distinct slot first.
		type slotKey struct {
			employeeID types.EmployeeID
			date       types.Date
			slot       types.Slot
		}
		counts := make(map[slotKey]int)
		for _, a := range as {
			key := slotKey{a.EmployeeID, a.Date, a.Slot}
			if _, ok := counts[key]; ok {
				continue
			}
			existing, err := r.activeInSlotTx(tx, a.EmployeeID, a.Date, a.Slot)
			if err != nil {
				return err
			}
			counts[key] = len(existing)
		}

		// Validate with cumulative in-batch counting
		pending := make(map[slotKey]int)
		for i, a := range as {
			key := slotKey{a.EmployeeID, a.Date, a.Slot}
			count := counts[key] + pending[key]
			if count >= types.MaxSlotOccupancy {
				return goerr.Wrap(interfaces.ErrSlotFull, "slot is full",
					goerr.V("index", i),
					goerr.V("employee_id", a.EmployeeID),
					goerr.V("date", a.Date),
					goerr.V("slot", a.Slot),
					goerr.V("count", count))
			}
			pending[key]++
		}

		now := time.Now().UTC()
		orders := make(map[slotKey]int)
		for i, a := range as {
			key := slotKey{a.EmployeeID, a.Date, a.Slot}
			if _, ok := orders[key]; !ok {
				orders[key] = counts[key]
			}

			c := *a
			if c.ID == "" {
				c.ID = types.NewAssignmentID()
			}
			c.SlotOrder = orders[key]
			c.Active = true
			c.CreatedAt = now
			c.UpdatedAt = now
			orders[key]++

			ref := r.client.Collection(r.collection()).Doc(string(c.ID))
			if err := tx.Set(ref, &c); err != nil {
				return goerr.Wrap(err, "failed to insert assignment", goerr.V("index", i))
			}
			created[i] = &c
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *assignmentRepository) Move(ctx context.Context, id types.AssignmentID, employeeID types.EmployeeID, date types.Date, slot types.Slot) (*model.Assignment, error) {
	var moved model.Assignment

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.client.Collection(r.collection()).Doc(string(id))
		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get assignment", goerr.V("id", id))
		}

		var a model.Assignment
		if err := docSnap.DataTo(&a); err != nil {
			return goerr.Wrap(err, "failed to decode assignment", goerr.V("id", id))
		}
		if !a.Active {
			return goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
		}

		source, err := r.activeInSlotTx(tx, a.EmployeeID, a.Date, a.Slot)
		if err != nil {
			return err
		}
		dest, err := r.activeInSlotTx(tx, employeeID, date, slot)
		if err != nil {
			return err
		}

		// The moved assignment must not count against its own destination
		destCount := 0
		for _, other := range dest {
			if other.ID != id {
				destCount++
			}
		}
		if destCount >= types.MaxSlotOccupancy {
			return goerr.Wrap(interfaces.ErrSlotFull, "destination slot is full",
				goerr.V("id", id),
				goerr.V("employee_id", employeeID),
				goerr.V("date", date),
				goerr.V("slot", slot),
				goerr.V("count", destCount))
		}

		now := time.Now().UTC()
		moved = a
		moved.EmployeeID = employeeID
		moved.Date = date
		moved.Slot = slot
		moved.SlotOrder = destCount
		moved.UpdatedAt = now

		if err := tx.Set(ref, &moved); err != nil {
			return goerr.Wrap(err, "failed to update assignment", goerr.V("id", id))
		}

		// Close the gap left in the source slot
		exclude := map[types.AssignmentID]struct{}{id: {}}
		return r.renumberTx(tx, source, exclude, now)
	})
	if err != nil {
		return nil, err
	}

	return &moved, nil
}

func (r *assignmentRepository) Deactivate(ctx context.Context, id types.AssignmentID) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.client.Collection(r.collection()).Doc(string(id))
		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get assignment", goerr.V("id", id))
		}

		var a model.Assignment
		if err := docSnap.DataTo(&a); err != nil {
			return goerr.Wrap(err, "failed to decode assignment", goerr.V("id", id))
		}
		if !a.Active {
			return goerr.Wrap(interfaces.ErrNotFound, "assignment not found", goerr.V("id", id))
		}

		slotMates, err := r.activeInSlotTx(tx, a.EmployeeID, a.Date, a.Slot)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Update(ref, []firestore.Update{
			{Path: "Active", Value: false},
			{Path: "UpdatedAt", Value: now},
		}); err != nil {
			return goerr.Wrap(err, "failed to deactivate assignment", goerr.V("id", id))
		}

		exclude := map[types.AssignmentID]struct{}{id: {}}
		return r.renumberTx(tx, slotMates, exclude, now)
	})
}
