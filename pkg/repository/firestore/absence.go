package firestore

import (
	"context"
	"fmt"
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

type absenceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAbsenceRepository(client *firestore.Client) *absenceRepository {
	return &absenceRepository{client: client}
}

func (r *absenceRepository) collection() string {
	return prefixed(r.collectionPrefix, "absences")
}

func (r *absenceRepository) allocationsCollection() string {
	return prefixed(r.collectionPrefix, "absence_allocations")
}

func allocationDocID(employeeID types.EmployeeID, year int, typ types.AbsenceType) string {
	return fmt.Sprintf("%s_%d_%s", employeeID, year, typ)
}

func (r *absenceRepository) Create(ctx context.Context, rec *model.AbsenceRecord) (*model.AbsenceRecord, error) {
	now := time.Now().UTC()
	created := *rec
	if created.ID == "" {
		created.ID = types.NewAbsenceID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.client.Collection(r.collection()).Doc(string(created.ID)).Set(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create absence record", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *absenceRepository) Get(ctx context.Context, id types.AbsenceID) (*model.AbsenceRecord, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "absence record not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get absence record", goerr.V("id", id))
	}

	var rec model.AbsenceRecord
	if err := docSnap.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode absence record", goerr.V("id", id))
	}

	return &rec, nil
}

func (r *absenceRepository) UpdateStatus(ctx context.Context, id types.AbsenceID, statusValue types.AbsenceStatus) (*model.AbsenceRecord, error) {
	var updated model.AbsenceRecord

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.client.Collection(r.collection()).Doc(string(id))
		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "absence record not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get absence record", goerr.V("id", id))
		}

		if err := docSnap.DataTo(&updated); err != nil {
			return goerr.Wrap(err, "failed to decode absence record", goerr.V("id", id))
		}

		updated.Status = statusValue
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(ref, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *absenceRepository) ListByEmployeeRange(ctx context.Context, employeeID types.EmployeeID, start, end types.Date) ([]*model.AbsenceRecord, error) {
	return r.ListRange(ctx, []types.EmployeeID{employeeID}, start, end)
}

func (r *absenceRepository) ListRange(ctx context.Context, employeeIDs []types.EmployeeID, start, end types.Date) ([]*model.AbsenceRecord, error) {
	result := []*model.AbsenceRecord{}

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
			Where("Date", "<=", string(end))

		iter := query.Documents(ctx)
		for {
			docSnap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to iterate absence records",
					goerr.V("start", start),
					goerr.V("end", end))
			}

			var rec model.AbsenceRecord
			if err := docSnap.DataTo(&rec); err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to decode absence record", goerr.V("doc_id", docSnap.Ref.ID))
			}
			result = append(result, &rec)
		}
		iter.Stop()
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})

	return result, nil
}

func (r *absenceRepository) GetAllocation(ctx context.Context, employeeID types.EmployeeID, year int, typ types.AbsenceType) (*model.AbsenceAllocation, error) {
	docID := allocationDocID(employeeID, year, typ)
	docSnap, err := r.client.Collection(r.allocationsCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "absence allocation not found",
				goerr.V("employee_id", employeeID),
				goerr.V("year", year),
				goerr.V("type", typ))
		}
		return nil, goerr.Wrap(err, "failed to get absence allocation", goerr.V("doc_id", docID))
	}

	var alloc model.AbsenceAllocation
	if err := docSnap.DataTo(&alloc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode absence allocation", goerr.V("doc_id", docID))
	}

	return &alloc, nil
}

func (r *absenceRepository) PutAllocation(ctx context.Context, alloc *model.AbsenceAllocation) error {
	docID := allocationDocID(alloc.EmployeeID, alloc.Year, alloc.Type)
	_, err := r.client.Collection(r.allocationsCollection()).Doc(docID).Set(ctx, alloc)
	if err != nil {
		return goerr.Wrap(err, "failed to put absence allocation", goerr.V("doc_id", docID))
	}
	return nil
}
