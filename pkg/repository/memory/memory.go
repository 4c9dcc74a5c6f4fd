// Package memory provides an in-memory repository backend. It is the
// development and test backend; all maps are guarded by per-repository
// mutexes and every record is deep-copied on the way in and out so callers
// can never mutate stored state through a shared pointer.
package memory

import (
	"github.com/slotline-io/slotline/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	assignment *assignmentRepository
	absence    *absenceRepository
	directory  *directoryRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		assignment: newAssignmentRepository(),
		absence:    newAbsenceRepository(),
		directory:  newDirectoryRepository(),
	}
}

func (m *Memory) Assignment() interfaces.AssignmentRepository {
	return m.assignment
}

func (m *Memory) Absence() interfaces.AbsenceRepository {
	return m.absence
}

func (m *Memory) Directory() interfaces.DirectoryRepository {
	return m.directory
}

func (m *Memory) Close() error {
	return nil
}
