package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"schallwerk/apperr"
	"schallwerk/model"
	"schallwerk/notify"
)

// In-memory repository fakes. They implement just enough of the Airtable
// repositories for the service tests; every store is guarded by a mutex so
// the fire-and-forget paths can run under -race.

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*model.Event
	codes  map[string]string // teacher code -> event ID
}

func newFakeEventRepo(events ...*model.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: map[string]*model.Event{}, codes: map[string]string{}}
	for _, e := range events {
		r.events[e.ID] = e
	}
	return r
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		clone := *e
		return &clone, nil
	}
	return nil, apperr.E(apperr.KindNotFound, "Event not found")
}

func (r *fakeEventRepo) GetBySimplybookID(_ context.Context, simplybookID string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.SimplybookID == simplybookID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Event not found")
}

func (r *fakeEventRepo) List(_ context.Context) ([]*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Event, 0, len(r.events))
	for _, e := range r.events {
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeEventRepo) ListForStaff(ctx context.Context, staffID string) ([]*model.Event, error) {
	all, _ := r.List(ctx)
	out := make([]*model.Event, 0, len(all))
	for _, e := range all {
		for _, id := range e.StaffIDs {
			if id == staffID {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListForEngineer(ctx context.Context, engineerID string) ([]*model.Event, error) {
	all, _ := r.List(ctx)
	out := make([]*model.Event, 0, len(all))
	for _, e := range all {
		for _, id := range e.EngineerIDs {
			if id == engineerID {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Create(_ context.Context, event *model.Event, teacherCode string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *event
	clone.ID = fmt.Sprintf("evt%d", len(r.events)+1)
	clone.PipelineStage = model.StagePending
	clone.PortalStatus = model.PortalPendingSetup
	clone.Status = model.EventUpcoming
	r.events[clone.ID] = &clone
	r.codes[teacherCode] = clone.ID
	result := clone
	return &result, nil
}

func (r *fakeEventRepo) UpdatePipelineStage(_ context.Context, id string, stage model.PipelineStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return apperr.E(apperr.KindNotFound, "Event not found")
	}
	e.PipelineStage = stage
	return nil
}

func (r *fakeEventRepo) UpdatePortalStatus(_ context.Context, id string, status model.PortalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return apperr.E(apperr.KindNotFound, "Event not found")
	}
	e.PortalStatus = status
	return nil
}

func (r *fakeEventRepo) SetPublished(_ context.Context, id string, published bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return apperr.E(apperr.KindNotFound, "Event not found")
	}
	e.Published = published
	return nil
}

func (r *fakeEventRepo) GetByTeacherCode(ctx context.Context, code string) (*model.Event, error) {
	r.mu.Lock()
	id, ok := r.codes[code]
	r.mu.Unlock()
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, "Event not found")
	}
	return r.GetByID(ctx, id)
}

type fakeClassRepo struct {
	mu      sync.Mutex
	classes map[string]*model.Class
}

func newFakeClassRepo(classes ...*model.Class) *fakeClassRepo {
	r := &fakeClassRepo{classes: map[string]*model.Class{}}
	for _, c := range classes {
		r.classes[c.ID] = c
	}
	return r
}

func (r *fakeClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.classes[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, apperr.E(apperr.KindNotFound, "Class not found")
}

func (r *fakeClassRepo) ListByEvent(_ context.Context, eventID string) ([]*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Class{}
	for _, c := range r.classes {
		if c.EventID == eventID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeClassRepo) Create(_ context.Context, class *model.Class) (*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *class
	clone.ID = fmt.Sprintf("cls%d", len(r.classes)+1)
	r.classes[clone.ID] = &clone
	result := clone
	return &result, nil
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	groups []*model.Group
}

func (r *fakeGroupRepo) Create(_ context.Context, group *model.Group) (*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *group
	clone.ID = fmt.Sprintf("grp%d", len(r.groups)+1)
	r.groups = append(r.groups, &clone)
	result := clone
	return &result, nil
}

func (r *fakeGroupRepo) ListByEvent(_ context.Context, eventID string) ([]*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Group{}
	for _, g := range r.groups {
		if g.EventID == eventID {
			clone := *g
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeSongRepo struct {
	mu    sync.Mutex
	songs map[string]*model.Song
}

func newFakeSongRepo(songs ...*model.Song) *fakeSongRepo {
	r := &fakeSongRepo{songs: map[string]*model.Song{}}
	for _, s := range songs {
		r.songs[s.ID] = s
	}
	return r
}

func (r *fakeSongRepo) GetByID(_ context.Context, id string) (*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.songs[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, apperr.E(apperr.KindNotFound, "Song not found")
}

func (r *fakeSongRepo) ListByEvent(_ context.Context, eventID string) ([]*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Song{}
	for _, s := range r.songs {
		if s.EventID == eventID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeSongRepo) ListByClass(_ context.Context, classID string) ([]*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Song{}
	for _, s := range r.songs {
		if s.ClassID == classID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeSongRepo) GetSchulsong(_ context.Context, eventID string) (*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.songs {
		if s.EventID == eventID && s.IsSchulsong {
			clone := *s
			return &clone, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Schulsong not found")
}

func (r *fakeSongRepo) Create(_ context.Context, song *model.Song) (*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *song
	clone.ID = fmt.Sprintf("sng%d", len(r.songs)+1)
	r.songs[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeSongRepo) SetFileKey(_ context.Context, id string, fileType model.AudioFileType, key string, wav bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.songs[id]
	if !ok {
		return apperr.E(apperr.KindNotFound, "Song not found")
	}
	switch fileType {
	case model.AudioPreview:
		s.PreviewKey = key
	case model.AudioFinal:
		if wav {
			s.FinalWAVKey = key
		} else {
			s.FinalMP3Key = key
		}
	}
	return nil
}

func (r *fakeSongRepo) SetEngineer(_ context.Context, id, engineerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.songs[id]
	if !ok {
		return apperr.E(apperr.KindNotFound, "Song not found")
	}
	s.EngineerID = engineerID
	return nil
}

func (r *fakeSongRepo) SetApproval(_ context.Context, id string, status model.ApprovalStatus, approvedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.songs[id]
	if !ok {
		return apperr.E(apperr.KindNotFound, "Song not found")
	}
	s.ApprovalStatus = status
	s.ApprovedAt = approvedAt
	return nil
}

func (r *fakeSongRepo) SetAdminApproved(_ context.Context, id string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.songs[id]
	if !ok {
		return apperr.E(apperr.KindNotFound, "Song not found")
	}
	s.AdminApproved = approved
	return nil
}

type fakeFileRepo struct {
	mu    sync.Mutex
	files []*model.AudioFile
}

func (r *fakeFileRepo) Create(_ context.Context, file *model.AudioFile) (*model.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *file
	clone.ID = fmt.Sprintf("fil%d", len(r.files)+1)
	r.files = append(r.files, &clone)
	result := clone
	return &result, nil
}

func (r *fakeFileRepo) ListByEvent(_ context.Context, eventID string) ([]*model.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.AudioFile{}
	for _, f := range r.files {
		if f.EventID == eventID {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) ListByClass(_ context.Context, classID string) ([]*model.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.AudioFile{}
	for _, f := range r.files {
		if f.ClassID == classID {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) CountByEventAndType(_ context.Context, eventID string, fileType model.AudioFileType) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, f := range r.files {
		if f.EventID == eventID && f.Type == fileType {
			count++
		}
	}
	return count, nil
}

func (r *fakeFileRepo) GetByStorageKey(_ context.Context, key string) (*model.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.StorageKey == key {
			clone := *f
			return &clone, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "File not found")
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	sizes  map[string]map[string]int // eventID -> size -> qty
	orders map[string]*model.ClothingOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		sizes:  map[string]map[string]int{},
		orders: map[string]*model.ClothingOrder{},
	}
}

func (r *fakeOrderRepo) AggregateSizes(_ context.Context, eventID string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for size, qty := range r.sizes[eventID] {
		out[size] = qty
	}
	return out, nil
}

func (r *fakeOrderRepo) GetByEvent(_ context.Context, eventID string) (*model.ClothingOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[eventID]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, apperr.E(apperr.KindNotFound, "Order not found")
}

func (r *fakeOrderRepo) Upsert(_ context.Context, order *model.ClothingOrder) (*model.ClothingOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *order
	if existing, ok := r.orders[order.EventID]; ok {
		clone.ID = existing.ID
		clone.GoID = existing.GoID
	} else {
		clone.ID = fmt.Sprintf("ord%d", len(r.orders)+1)
	}
	total := 0
	for _, qty := range clone.Sizes {
		total += qty
	}
	clone.Total = total
	r.orders[order.EventID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeOrderRepo) SetGoID(_ context.Context, orderID, goID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == orderID {
			o.GoID = goID
			return nil
		}
	}
	return apperr.E(apperr.KindNotFound, "Order not found")
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*model.Task{}}
}

func (r *fakeTaskRepo) ListOpen(_ context.Context) ([]*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Task{}
	for _, t := range r.tasks {
		if !t.Done {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, apperr.E(apperr.KindNotFound, "Task not found")
}

func (r *fakeTaskRepo) Create(_ context.Context, task *model.Task) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *task
	clone.ID = fmt.Sprintf("tsk%d", len(r.tasks)+1)
	r.tasks[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeTaskRepo) Complete(_ context.Context, id, goID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return apperr.E(apperr.KindNotFound, "Task not found")
	}
	t.Done = true
	t.GoID = goID
	return nil
}

type fakeAccountRepo struct {
	accounts []*model.Account
}

func (r *fakeAccountRepo) GetByEmailAndRole(_ context.Context, email string, role model.Role) (*model.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email && a.Role == role {
			clone := *a
			return &clone, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Account not found")
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*model.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			clone := *a
			return &clone, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Account not found")
}

type fakeParentRepo struct {
	mu      sync.Mutex
	parents []*model.Parent
}

func (r *fakeParentRepo) Create(_ context.Context, parent *model.Parent) (*model.Parent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *parent
	clone.ID = fmt.Sprintf("par%d", len(r.parents)+1)
	r.parents = append(r.parents, &clone)
	result := clone
	return &result, nil
}

func (r *fakeParentRepo) GetByEmailAndEvent(_ context.Context, email, eventID string) (*model.Parent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parents {
		if p.Email == email && p.EventID == eventID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Parent not found")
}

// fakeStore pretends uploaded objects exist once Put was presigned for them.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]int64{}}
}

func (s *fakeStore) put(key string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = size
}

func (s *fakeStore) PresignPut(_ context.Context, key string) (string, error) {
	return "https://r2.test/put/" + key, nil
}

func (s *fakeStore) PresignGet(_ context.Context, key, _ string) (string, error) {
	return "https://r2.test/get/" + key, nil
}

func (s *fakeStore) StatObject(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if size, ok := s.objects[key]; ok {
		return size, nil
	}
	return 0, apperr.E(apperr.KindNotFound, "Object not found")
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []*notify.Message
}

func (n *fakeNotifier) Enqueue(_ context.Context, msg *notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *fakeNotifier) sent() []*notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*notify.Message(nil), n.messages...)
}

type fakeBookings struct {
	bookings map[string]*model.Booking
}

func (b *fakeBookings) ListUpcomingBookings(_ context.Context) ([]*model.Booking, error) {
	out := make([]*model.Booking, 0, len(b.bookings))
	for _, bk := range b.bookings {
		clone := *bk
		out = append(out, &clone)
	}
	return out, nil
}

func (b *fakeBookings) GetBookingDetails(_ context.Context, bookingID string) (*model.Booking, error) {
	if bk, ok := b.bookings[bookingID]; ok {
		clone := *bk
		return &clone, nil
	}
	return nil, apperr.E(apperr.KindNotFound, "Booking not found")
}

type fakeShop struct {
	orders []*model.ShopifyOrder
}

func (s *fakeShop) ListOrdersForEvents(_ context.Context, _ int) ([]*model.ShopifyOrder, error) {
	return append([]*model.ShopifyOrder(nil), s.orders...), nil
}
