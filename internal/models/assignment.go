package models

import (
	"fmt"
	"time"
)

// Assignment represents a published piece of coursework owned by one tutor.
// Publication status is never stored; it is derived from PublishedAt against
// the query-time clock.
type Assignment struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Description string    `db:"description" json:"description"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
}

// PublicationStatus is the derived publication state of an assignment.
type PublicationStatus string

const (
	PublicationScheduled PublicationStatus = "SCHEDULED"
	PublicationOngoing   PublicationStatus = "ONGOING"
)

// PublicationStatusAt derives the publication status at the given instant.
func (a Assignment) PublicationStatusAt(now time.Time) PublicationStatus {
	if a.PublishedAt.After(now) {
		return PublicationScheduled
	}
	return PublicationOngoing
}

// IsPastDue reports whether the deadline has already passed at the given
// reference instant.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.Deadline.Before(reference)
}

// PublicationFilter selects assignments by derived publication status.
type PublicationFilter string

const (
	PublicationFilterAll       PublicationFilter = "ALL"
	PublicationFilterScheduled PublicationFilter = "SCHEDULED"
	PublicationFilterOngoing   PublicationFilter = "ONGOING"
)

// ParsePublicationFilter validates a raw filter value. An empty value means
// ALL; anything outside the enumeration is rejected before any query runs.
func ParsePublicationFilter(raw string) (PublicationFilter, error) {
	switch PublicationFilter(raw) {
	case "":
		return PublicationFilterAll, nil
	case PublicationFilterAll, PublicationFilterScheduled, PublicationFilterOngoing:
		return PublicationFilter(raw), nil
	default:
		return "", fmt.Errorf("invalid published_status filter %q", raw)
	}
}
