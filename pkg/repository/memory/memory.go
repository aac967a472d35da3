package memory

import (
	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	job      *jobRepository
	document *documentRepository
	fragment *fragmentRepository
	ledger   *ledgerRepository
	lease    *leaseRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		job:      newJobRepository(),
		document: newDocumentRepository(),
		fragment: newFragmentRepository(),
		ledger:   newLedgerRepository(),
		lease:    newLeaseRepository(),
	}
}

func (m *Memory) Job() interfaces.JobRepository {
	return m.job
}

func (m *Memory) Document() interfaces.DocumentRepository {
	return m.document
}

func (m *Memory) Fragment() interfaces.FragmentRepository {
	return m.fragment
}

func (m *Memory) Ledger() interfaces.LedgerRepository {
	return m.ledger
}

func (m *Memory) Lease() interfaces.LeaseRepository {
	return m.lease
}

func (m *Memory) Close() error {
	return nil
}
