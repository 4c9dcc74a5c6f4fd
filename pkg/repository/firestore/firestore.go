// Package firestore provides the Firestore-backed repository. Occupancy
// invariants are enforced with RunTransaction so concurrent writers to the
// same slot serialize at the storage layer.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
)

// inQueryBatchSize is the Firestore limit for "in" query operands
const inQueryBatchSize = 30

type Firestore struct {
	client     *firestore.Client
	assignment *assignmentRepository
	absence    *absenceRepository
	directory  *directoryRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.assignment.collectionPrefix = prefix
		f.absence.collectionPrefix = prefix
		f.directory.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		assignment: newAssignmentRepository(client),
		absence:    newAbsenceRepository(client),
		directory:  newDirectoryRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Assignment() interfaces.AssignmentRepository {
	return f.assignment
}

func (f *Firestore) Absence() interfaces.AbsenceRepository {
	return f.absence
}

func (f *Firestore) Directory() interfaces.DirectoryRepository {
	return f.directory
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// prefixed joins an optional collection prefix with a base name
func prefixed(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
