package models

import "time"

// RetryStageCount is the number of timed recovery stages before escalation.
const RetryStageCount = 3

// RetryState is the persisted recovery record for one guest's pending
// booking transaction. It is the only durable state in the subsystem:
// any worker may claim it, and claiming is an atomic read-and-clear.
type RetryState struct {
	GuestID       string             `json:"guestId" bson:"guestId"`
	Transaction   BookingTransaction `json:"transaction" bson:"transaction"`
	Stage         int                `json:"stage" bson:"stage"`
	StageAttempts []int              `json:"stageAttempts" bson:"stageAttempts"`
	LastError     string             `json:"lastError" bson:"lastError"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	NextAttemptAt time.Time          `json:"nextAttemptAt" bson:"nextAttemptAt"`
}

// NewRetryState builds a fresh stage-1 state for a pending transaction.
func NewRetryState(tx BookingTransaction) RetryState {
	return RetryState{
		GuestID:       tx.GuestID,
		Transaction:   tx,
		Stage:         1,
		StageAttempts: make([]int, RetryStageCount),
		CreatedAt:     time.Now(),
	}
}

// EscalationRecord is written when the recovery machine exhausts all
// stages; it is the handoff point for human follow-up.
type EscalationRecord struct {
	ID          string             `json:"id" bson:"id"`
	GuestID     string             `json:"guestId" bson:"guestId"`
	Transaction BookingTransaction `json:"transaction" bson:"transaction"`
	Reason      string             `json:"reason" bson:"reason"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}
