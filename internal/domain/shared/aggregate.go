package shared

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	StoredVersion() int
	MarkStored()
}

// BaseAggregateRoot provides common fields for aggregate roots.
// Version is bumped on every mutation.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`

	// version last read from or written to storage; 0 until stored
	storedVersion int
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number and touches UpdatedAt
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}

// StoredVersion returns the version the storage row carried when the
// aggregate was loaded or last saved. Repositories use it as the optimistic
// lock condition; zero means the aggregate has never been stored.
func (a *BaseAggregateRoot) StoredVersion() int {
	return a.storedVersion
}

// IsStored reports whether the aggregate was loaded from or saved to storage
func (a *BaseAggregateRoot) IsStored() bool {
	return a.storedVersion > 0
}

// MarkStored records the current version as the stored one
func (a *BaseAggregateRoot) MarkStored() {
	a.storedVersion = a.Version
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
