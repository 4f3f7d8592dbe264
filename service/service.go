package service

import (
	"context"

	"schallwerk/model"
	"schallwerk/notify"
)

// ObjectStore is the slice of the R2 storage layer the services need.
// storage.R2 satisfies it; tests substitute fakes.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key, downloadName string) (string, error)
	StatObject(ctx context.Context, key string) (int64, error)
}

// Notifier enqueues fire-and-forget notifications. notify.Outbox satisfies
// it; a failed enqueue never surfaces to the caller.
type Notifier interface {
	Enqueue(ctx context.Context, msg *notify.Message)
}

// OrderSource lists the shop orders the task pipeline aggregates.
// shopify.Client satisfies it.
type OrderSource interface {
	ListOrdersForEvents(ctx context.Context, limit int) ([]*model.ShopifyOrder, error)
}

// BookingSource reads bookings from the booking system. simplybook.Client
// satisfies it.
type BookingSource interface {
	ListUpcomingBookings(ctx context.Context) ([]*model.Booking, error)
	GetBookingDetails(ctx context.Context, bookingID string) (*model.Booking, error)
}

// nopNotifier drops everything; used where notifications are optional.
type nopNotifier struct{}

func (nopNotifier) Enqueue(context.Context, *notify.Message) {}

// NopNotifier returns a Notifier that discards all messages.
func NopNotifier() Notifier {
	return nopNotifier{}
}
