package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Job() JobRepository
	Document() DocumentRepository
	Fragment() FragmentRepository
	Ledger() LedgerRepository
	Lease() LeaseRepository

	Close() error
}
