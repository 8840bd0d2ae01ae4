package memory

import (
	"context"

	"github.com/fuelrats/ratboard/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = interfaces.ErrNotFound

// Memory is an in-process repository used for development and tests
type Memory struct {
	caseRepo *caseRepository
	factRepo *factRepository
}

var _ interfaces.Repository = &Memory{}

// New creates a new in-memory repository
func New() *Memory {
	return &Memory{
		caseRepo: newCaseRepository(),
		factRepo: newFactRepository(),
	}
}

func (m *Memory) Case() interfaces.CaseRepository {
	return m.caseRepo
}

func (m *Memory) Fact() interfaces.FactRepository {
	return m.factRepo
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
