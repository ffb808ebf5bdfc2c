package booking

import (
	"fmt"
	"time"

	"github.com/lendshare/service-lending/internal/platform/domain"
)

// QueryState is the closed set of listing filters callers may request.
// CURRENT/PAST/FUTURE classify bookings against a single moment in
// time; WAITING/REJECTED match on status; ALL matches everything.
type QueryState string

const (
	QueryAll      QueryState = "ALL"
	QueryCurrent  QueryState = "CURRENT"
	QueryPast     QueryState = "PAST"
	QueryFuture   QueryState = "FUTURE"
	QueryWaiting  QueryState = "WAITING"
	QueryRejected QueryState = "REJECTED"
)

// ParseQueryState converts a raw state literal into a QueryState. The
// error message echoes the offending input.
func ParseQueryState(raw string) (QueryState, error) {
	switch QueryState(raw) {
	case QueryAll, QueryCurrent, QueryPast, QueryFuture, QueryWaiting, QueryRejected:
		return QueryState(raw), nil
	default:
		return "", domain.NewValidationError(fmt.Sprintf("Unknown state: %s", raw))
	}
}

// Matches evaluates the state predicate against a booking, using now as
// the single classification snapshot.
func (q QueryState) Matches(b *Booking, now time.Time) bool {
	switch q {
	case QueryAll:
		return true
	case QueryCurrent:
		return b.SpansMoment(now)
	case QueryPast:
		return b.FinishedBefore(now)
	case QueryFuture:
		return b.StartsAfter(now)
	case QueryWaiting:
		return b.Status() == StatusWaiting
	case QueryRejected:
		return b.Status() == StatusRejected
	default:
		return false
	}
}
