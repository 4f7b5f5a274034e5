package payment

import "time"

// Status represents the lifecycle state of a payment transaction
type Status string

const (
	StatusPending             Status = "PENDING"                        // Future-dated, awaiting execution date
	StatusAcceptedSettlement  Status = "ACCEPTED_SETTLEMENT_IN_PROCESS" // Funds reserved, settling
	StatusSettled             Status = "SETTLED"                        // Settlement completed
	StatusRejected            Status = "REJECTED"                       // Declined by risk assessment
)

// IsValid checks if the status is a valid payment Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAcceptedSettlement, StatusSettled, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the payment is in a terminal state
func (s Status) IsTerminal() bool {
	return s == StatusSettled || s == StatusRejected
}

// RequiresFundsReservation returns true if entering this status must reserve
// funds on the debtor account
func (s Status) RequiresFundsReservation() bool {
	return s == StatusAcceptedSettlement
}

// RiskDecision is the outcome of the risk assessment collaborator
type RiskDecision string

const (
	RiskPass   RiskDecision = "PASS"
	RiskReject RiskDecision = "REJECT"
)

// StatusPolicy decides the initial status of a payment. Pure function of its
// inputs: no I/O, fully deterministic.
type StatusPolicy struct{}

// Initial maps the risk decision and requested execution date onto the
// payment's first status. A rejected risk decision wins over timing; a
// future-dated payment parks as PENDING without reserving funds; everything
// else settles now.
func (StatusPolicy) Initial(now time.Time, executionDate *time.Time, decision RiskDecision) Status {
	if decision == RiskReject {
		return StatusRejected
	}
	if executionDate != nil && executionDate.After(truncateToDay(now)) {
		return StatusPending
	}
	return StatusAcceptedSettlement
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
