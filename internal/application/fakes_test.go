package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/lendshare/service-lending/internal/domain/booking"
	itemDomain "github.com/lendshare/service-lending/internal/domain/item"
	requestDomain "github.com/lendshare/service-lending/internal/domain/request"
	userDomain "github.com/lendshare/service-lending/internal/domain/user"
	"github.com/lendshare/service-lending/internal/platform/domain"
	"github.com/lendshare/service-lending/internal/platform/kafka"
)

// In-memory repository fakes for service tests. They mirror the storage
// contracts including ordering and pagination.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*userDomain.User{}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("user", email)
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*userDomain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *userDomain.User) error {
	return r.Save(ctx, u)
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*itemDomain.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[uuid.UUID]*itemDomain.Item{}}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("item", id.String())
	}
	return item, nil
}

func (r *fakeItemRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*itemDomain.Item{}
	for _, item := range r.items {
		if item.OwnerID() == ownerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *fakeItemRepo) FindByRequestID(_ context.Context, requestID uuid.UUID) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*itemDomain.Item{}
	for _, item := range r.items {
		if item.RequestID() != nil && *item.RequestID() == requestID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) SearchAvailable(_ context.Context, text string) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(text)
	out := []*itemDomain.Item{}
	for _, item := range r.items {
		if !item.Available() {
			continue
		}
		if strings.Contains(strings.ToLower(item.Name()), needle) ||
			strings.Contains(strings.ToLower(item.Description()), needle) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *itemDomain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID()] = item
	return nil
}

func (r *fakeItemRepo) Update(ctx context.Context, item *itemDomain.Item) error {
	return r.Save(ctx, item)
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []*itemDomain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) FindByItemID(_ context.Context, itemID uuid.UUID) ([]*itemDomain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*itemDomain.Comment{}
	for _, c := range r.comments {
		if c.ItemID() == itemID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Save(_ context.Context, c *itemDomain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, c)
	return nil
}

// fakeBookingRepo resolves owner scope through the item repo, the same
// join the real store performs.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	items    *fakeItemRepo
}

func newFakeBookingRepo(items *fakeItemRepo) *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*bookingDomain.Booking{}, items: items}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return b, nil
}

func (r *fakeBookingRepo) Search(ctx context.Context, q bookingDomain.SearchQuery) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	all := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		all = append(all, b)
	}
	r.mu.Unlock()

	matched := []*bookingDomain.Booking{}
	for _, b := range all {
		switch q.Scope {
		case bookingDomain.ScopeBooker:
			if b.BookerID() != q.UserID {
				continue
			}
		case bookingDomain.ScopeOwner:
			item, err := r.items.FindByID(ctx, b.ItemID())
			if err != nil || !item.IsOwnedBy(q.UserID) {
				continue
			}
		}
		if q.State.Matches(b, q.Now) {
			matched = append(matched, b)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Start().After(matched[j].Start()) })

	if q.Page.From >= len(matched) {
		return []*bookingDomain.Booking{}, nil
	}
	end := q.Page.From + q.Page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.Page.From:end], nil
}

func (r *fakeBookingRepo) FindLastFinished(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *bookingDomain.Booking
	for _, b := range r.bookings {
		if b.ItemID() != itemID || !b.FinishedBefore(now) {
			continue
		}
		if best == nil || b.End().After(best.End()) {
			best = b
		}
	}
	return best, nil
}

func (r *fakeBookingRepo) FindNextUpcoming(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *bookingDomain.Booking
	for _, b := range r.bookings {
		if b.ItemID() != itemID || !b.StartsAfter(now) {
			continue
		}
		if best == nil || b.Start().Before(best.Start()) {
			best = b
		}
	}
	return best, nil
}

func (r *fakeBookingRepo) HasFinishedApproved(_ context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookerID() == bookerID && b.ItemID() == itemID &&
			b.Status() == bookingDomain.StatusApproved && b.FinishedBefore(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) CompareAndSetStatus(_ context.Context, id uuid.UUID, expected, target bookingDomain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status() != expected {
		return false, nil
	}
	r.bookings[id] = bookingDomain.Reconstruct(
		b.ID(), b.ItemID(), b.BookerID(),
		b.Start(), b.End(),
		target, b.Version()+1,
		b.CreatedAt(), time.Now().UTC(),
	)
	return true, nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests []*requestDomain.ItemRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{}
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.ID() == id {
			return req, nil
		}
	}
	return nil, domain.NewNotFoundError("item request", id.String())
}

func (r *fakeRequestRepo) FindByRequesterID(_ context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*requestDomain.ItemRequest{}
	for _, req := range r.requests {
		if req.RequesterID() == requesterID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (r *fakeRequestRepo) FindOthers(_ context.Context, requesterID uuid.UUID, page domain.Page) ([]*requestDomain.ItemRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*requestDomain.ItemRequest{}
	for _, req := range r.requests {
		if req.RequesterID() != requesterID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	if page.From >= len(out) {
		return []*requestDomain.ItemRequest{}, nil
	}
	end := page.From + page.Size
	if end > len(out) {
		end = len(out)
	}
	return out[page.From:end], nil
}

func (r *fakeRequestRepo) Save(_ context.Context, req *requestDomain.ItemRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return nil
}

// fakePublisher records published events for assertions.
type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{}
}

func (p *fakePublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) published() []kafka.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]kafka.CloudEvent, len(p.events))
	copy(out, p.events)
	return out
}
