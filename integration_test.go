//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendshare/service-lending/internal/application"
	bookingDomain "github.com/lendshare/service-lending/internal/domain/booking"
	"github.com/lendshare/service-lending/internal/events"
)

// TestBookingLifecycle_CreateApprovePublish walks a booking from
// creation through owner approval against real PostgreSQL and Kafka,
// asserting the published events along the way.
func TestBookingLifecycle_CreateApprovePublish(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupLendingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()

	owner, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{
		Name: "owner", Email: "owner@example.com",
	})
	require.NoError(t, err)
	booker, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{
		Name: "booker", Email: "booker@example.com",
	})
	require.NoError(t, err)

	available := true
	item, err := stack.Items.CreateItem(ctx, owner.ID, application.CreateItemRequest{
		Name:        "drill",
		Description: "cordless drill",
		Available:   &available,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	created, err := stack.Bookings.CreateBooking(ctx, booker.ID, application.CreateBookingRequest{
		ItemID: item.ID,
		Start:  now.Add(time.Hour),
		End:    now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "WAITING", created.Status)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingRequested, 15*time.Second)
	var requested events.BookingRequestedEvent
	require.NoError(t, ce.ParseData(&requested))
	assert.Equal(t, created.ID, requested.BookingID)
	assert.Equal(t, owner.ID, requested.OwnerID)

	approved, err := stack.Bookings.UpdateBooking(ctx, created.ID, true, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)

	ce = consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingApproved, 15*time.Second)
	var resolved events.BookingResolvedEvent
	require.NoError(t, ce.ParseData(&resolved))
	assert.Equal(t, created.ID, resolved.BookingID)
	assert.Equal(t, "APPROVED", resolved.Status)

	// A second decision is rejected against the stored status.
	_, err = stack.Bookings.UpdateBooking(ctx, created.ID, false, owner.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APPROVED")
}

// TestCompareAndSetStatus_SingleWinner verifies the conditional status
// write lets exactly one of two racing decisions through.
func TestCompareAndSetStatus_SingleWinner(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupLendingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()

	owner, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{
		Name: "owner", Email: "owner@example.com",
	})
	require.NoError(t, err)
	booker, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{
		Name: "booker", Email: "booker@example.com",
	})
	require.NoError(t, err)

	available := true
	item, err := stack.Items.CreateItem(ctx, owner.ID, application.CreateItemRequest{
		Name:        "ladder",
		Description: "5m aluminium",
		Available:   &available,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	created, err := stack.Bookings.CreateBooking(ctx, booker.ID, application.CreateBookingRequest{
		ItemID: item.ID,
		Start:  now.Add(time.Hour),
		End:    now.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	approve, err := stack.BookingRepo.CompareAndSetStatus(ctx, created.ID,
		bookingDomain.StatusWaiting, bookingDomain.StatusApproved)
	require.NoError(t, err)
	reject, err := stack.BookingRepo.CompareAndSetStatus(ctx, created.ID,
		bookingDomain.StatusWaiting, bookingDomain.StatusRejected)
	require.NoError(t, err)

	assert.True(t, approve)
	assert.False(t, reject)

	stored, err := stack.BookingRepo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusApproved, stored.Status())
	assert.Equal(t, int64(2), stored.Version())
}
