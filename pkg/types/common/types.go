// Package common holds the small shared vocabulary of the PolicyLens
// services: entity identifiers, the API envelope, pagination, health
// reporting, and the domain event contract.
package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID identifies an entity.  The string form is a UUID v4.
type ID string

// NewID generates a new random ID.
func NewID() ID { return ID(uuid.New().String()) }

// Validate rejects empty and non-UUID identifiers.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid ID format: %w", err)
	}
	return nil
}

// Pagination carries page selection on requests and, when set, the total
// row count on responses.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// APIResponse is the envelope every HTTP endpoint returns.  Exactly one of
// Data and Error is populated.
type APIResponse[T any] struct {
	Success    bool         `json:"success"`
	Data       T            `json:"data,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	RequestID  string       `json:"request_id"`
	Timestamp  time.Time    `json:"timestamp"`
}

// ErrorDetail is the error half of the envelope.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the reported state of one dependency.
type HealthStatus string

const (
	HealthUp   HealthStatus = "up"
	HealthDown HealthStatus = "down"
)

// ComponentHealth is one dependency's entry in a readiness response.
type ComponentHealth struct {
	Name    string        `json:"name"`
	Status  HealthStatus  `json:"status"`
	Latency time.Duration `json:"latency"`
	Message string        `json:"message,omitempty"`
}

// DomainEvent is implemented by everything published to the event bus.
type DomainEvent interface {
	EventID() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent supplies the DomainEvent fields; concrete events embed it.
type BaseEvent struct {
	ID        string    `json:"event_id"`
	Timestamp time.Time `json:"occurred_at"`
	AggID     string    `json:"aggregate_id"`
}

// NewBaseEvent stamps a fresh event ID and the current UTC time for the
// given aggregate.
func NewBaseEvent(aggID string) BaseEvent {
	return BaseEvent{ID: uuid.New().String(), Timestamp: time.Now().UTC(), AggID: aggID}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggID }
