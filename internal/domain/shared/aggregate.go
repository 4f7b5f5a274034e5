package shared

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// ParticipantAggregateRoot extends BaseAggregateRoot with the owning
// third-party provider. Every command-driven entity in the open finance
// surface is scoped to the TPP that created it.
type ParticipantAggregateRoot struct {
	BaseAggregateRoot
	ParticipantID string `gorm:"type:varchar(50);not null;index"`
}

// NewParticipantAggregateRoot creates a new participant-scoped aggregate root
func NewParticipantAggregateRoot(participantID string) ParticipantAggregateRoot {
	return ParticipantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		ParticipantID:     participantID,
	}
}

// GetParticipantID returns the owning TPP identifier
func (p *ParticipantAggregateRoot) GetParticipantID() string {
	return p.ParticipantID
}
