package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"github.com/Freeeeeet/advisory_service/internal/notify"
	"github.com/Freeeeeet/advisory_service/internal/repository"
)

// memDB транзакционное хранилище в памяти: WithTx сериализует транзакции
// и восстанавливает снимок при ошибке
type memDB struct {
	mu         sync.Mutex
	users      map[int64]*model.User
	slots      map[int64]model.Slot
	advisories map[int64]model.Advisory
	reminded   map[int64]bool
	nextID     int64

	failAdvisoryCreate error
	failRelease        error
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[int64]*model.User{},
		slots:      map[int64]model.Slot{},
		advisories: map[int64]model.Advisory{},
		reminded:   map[int64]bool{},
	}
}

func (db *memDB) addUser(name string, role model.Role) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID++
	u := &model.User{
		ID:    db.nextID,
		Name:  name,
		Email: strings.ToLower(name) + "@mail.io",
		Role:  role,
	}
	db.users[u.ID] = u
	return u
}

func (db *memDB) slot(id int64) model.Slot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.slots[id]
}

func (db *memDB) advisoryCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.advisories)
}

// checkSlotInvariant: слот BOOKED тогда и только тогда, когда на него ссылается
// ровно одна неотклонённая заявка
func (db *memDB) checkSlotInvariant() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	active := map[int64]int{}
	for _, a := range db.advisories {
		if a.SlotID != nil && a.Status != model.AdvisoryStatusRejected {
			active[*a.SlotID]++
		}
	}
	for id, s := range db.slots {
		booked := s.Status == model.SlotStatusBooked
		if booked != (active[id] == 1) || active[id] > 1 {
			return fmt.Errorf("slot %d status %s with %d active advisories", id, s.Status, active[id])
		}
	}
	return nil
}

func (db *memDB) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	slots := make(map[int64]model.Slot, len(db.slots))
	for k, v := range db.slots {
		slots[k] = v
	}
	advisories := make(map[int64]model.Advisory, len(db.advisories))
	for k, v := range db.advisories {
		advisories[k] = v
	}
	nextID := db.nextID

	err := fn(ctx, repository.TxRepositories{Slots: memSlots{db}, Advisories: memAdvisories{db}})
	if err != nil {
		db.slots, db.advisories, db.nextID = slots, advisories, nextID
	}
	return err
}

// memUsers каталог пользователей
type memUsers struct{ db *memDB }

func (u memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	if user, ok := u.db.users[id]; ok {
		c := *user
		return &c, nil
	}
	return nil, nil
}

func (u memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	for _, user := range u.db.users {
		if strings.EqualFold(user.Email, email) {
			c := *user
			return &c, nil
		}
	}
	return nil, nil
}

// memSlots работает без блокировки: вызывается внутри WithTx или через lockedSlots
type memSlots struct{ db *memDB }

func (r memSlots) Create(_ context.Context, slot *model.Slot) error {
	r.db.nextID++
	slot.ID = r.db.nextID
	slot.CreatedAt = time.Now()
	r.db.slots[slot.ID] = *slot
	return nil
}

func (r memSlots) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	s, ok := r.db.slots[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memSlots) ListAvailableByProgrammer(_ context.Context, programmerID int64) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, s := range r.db.slots {
		if s.ProgrammerID == programmerID && s.Status == model.SlotStatusAvailable {
			c := s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSlots) ListAll(_ context.Context) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, s := range r.db.slots {
		c := s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSlots) Book(_ context.Context, id int64) error {
	s, ok := r.db.slots[id]
	if !ok || s.Status != model.SlotStatusAvailable {
		return repository.ErrSlotUnavailable
	}
	s.Status = model.SlotStatusBooked
	r.db.slots[id] = s
	return nil
}

func (r memSlots) Release(_ context.Context, id int64) error {
	if r.db.failRelease != nil {
		return r.db.failRelease
	}
	if s, ok := r.db.slots[id]; ok {
		s.Status = model.SlotStatusAvailable
		r.db.slots[id] = s
	}
	return nil
}

func (r memSlots) DeleteAvailable(_ context.Context, id int64) error {
	s, ok := r.db.slots[id]
	if !ok || s.Status != model.SlotStatusAvailable {
		return repository.ErrSlotUnavailable
	}
	delete(r.db.slots, id)
	for aid, a := range r.db.advisories {
		if a.SlotID != nil && *a.SlotID == id {
			a.SlotID = nil
			r.db.advisories[aid] = a
		}
	}
	return nil
}

type lockedSlots struct{ db *memDB }

func (r lockedSlots) Create(ctx context.Context, slot *model.Slot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memSlots(r).Create(ctx, slot)
}

func (r lockedSlots) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memSlots(r).GetByID(ctx, id)
}

func (r lockedSlots) ListAvailableByProgrammer(ctx context.Context, programmerID int64) ([]*model.Slot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memSlots(r).ListAvailableByProgrammer(ctx, programmerID)
}

func (r lockedSlots) ListAll(ctx context.Context) ([]*model.Slot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memSlots(r).ListAll(ctx)
}

func (r lockedSlots) Book(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memSlots(r).Book(ctx, id)
}

func (r lockedSlots) Release(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memSlots(r).Release(ctx, id)
}

func (r lockedSlots) DeleteAvailable(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memSlots(r).DeleteAvailable(ctx, id)
}

type memAdvisories struct{ db *memDB }

func (r memAdvisories) withNames(a model.Advisory) *model.Advisory {
	if p, ok := r.db.users[a.ProgrammerID]; ok {
		a.ProgrammerName = p.Name
	}
	if u, ok := r.db.users[a.UserID]; ok {
		a.UserName = u.Name
	}
	return &a
}

func (r memAdvisories) Create(_ context.Context, advisory *model.Advisory) error {
	if r.db.failAdvisoryCreate != nil {
		return r.db.failAdvisoryCreate
	}
	r.db.nextID++
	advisory.ID = r.db.nextID
	advisory.CreatedAt = time.Now()
	advisory.UpdatedAt = advisory.CreatedAt
	r.db.advisories[advisory.ID] = *advisory
	return nil
}

func (r memAdvisories) GetByID(_ context.Context, id int64) (*model.Advisory, error) {
	a, ok := r.db.advisories[id]
	if !ok {
		return nil, nil
	}
	return r.withNames(a), nil
}

func (r memAdvisories) list(match func(model.Advisory) bool) []*model.Advisory {
	var out []*model.Advisory
	for _, a := range r.db.advisories {
		if match(a) {
			out = append(out, r.withNames(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memAdvisories) ListByProgrammer(_ context.Context, programmerID int64) ([]*model.Advisory, error) {
	return r.list(func(a model.Advisory) bool { return a.ProgrammerID == programmerID }), nil
}

func (r memAdvisories) ListByUser(_ context.Context, userID int64) ([]*model.Advisory, error) {
	return r.list(func(a model.Advisory) bool { return a.UserID == userID }), nil
}

func (r memAdvisories) ListAll(_ context.Context) ([]*model.Advisory, error) {
	return r.list(func(model.Advisory) bool { return true }), nil
}

// ListAcceptedOn не отсеивает напомненные заявки: повтор отсекает ClaimReminder
func (r memAdvisories) ListAcceptedOn(_ context.Context, date time.Time) ([]*model.Advisory, error) {
	return r.list(func(a model.Advisory) bool {
		return a.Status == model.AdvisoryStatusAccepted && a.Date.Equal(date)
	}), nil
}

func (r memAdvisories) UpdateStatus(_ context.Context, id int64, from, to model.AdvisoryStatus, responseMessage *string) error {
	a, ok := r.db.advisories[id]
	if !ok || a.Status != from {
		return repository.ErrStatusChanged
	}
	a.Status = to
	a.ResponseMessage = responseMessage
	a.UpdatedAt = time.Now()
	r.db.advisories[id] = a
	return nil
}

func (r memAdvisories) ClaimReminder(_ context.Context, id int64) (bool, error) {
	if _, ok := r.db.advisories[id]; !ok || r.db.reminded[id] {
		return false, nil
	}
	r.db.reminded[id] = true
	return true, nil
}

func (r memAdvisories) Delete(_ context.Context, id int64) error {
	if _, ok := r.db.advisories[id]; !ok {
		return repository.ErrAdvisoryNotFound
	}
	delete(r.db.advisories, id)
	return nil
}

type lockedAdvisories struct{ db *memDB }

func (r lockedAdvisories) Create(ctx context.Context, advisory *model.Advisory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).Create(ctx, advisory)
}

func (r lockedAdvisories) GetByID(ctx context.Context, id int64) (*model.Advisory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).GetByID(ctx, id)
}

func (r lockedAdvisories) ListByProgrammer(ctx context.Context, programmerID int64) ([]*model.Advisory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).ListByProgrammer(ctx, programmerID)
}

func (r lockedAdvisories) ListByUser(ctx context.Context, userID int64) ([]*model.Advisory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).ListByUser(ctx, userID)
}

func (r lockedAdvisories) ListAll(ctx context.Context) ([]*model.Advisory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).ListAll(ctx)
}

func (r lockedAdvisories) ListAcceptedOn(ctx context.Context, date time.Time) ([]*model.Advisory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).ListAcceptedOn(ctx, date)
}

func (r lockedAdvisories) UpdateStatus(ctx context.Context, id int64, from, to model.AdvisoryStatus, responseMessage *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).UpdateStatus(ctx, id, from, to, responseMessage)
}

func (r lockedAdvisories) ClaimReminder(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).ClaimReminder(ctx, id)
}

func (r lockedAdvisories) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdvisories(r).Delete(ctx, id)
}

type recordingDispatcher struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (d *recordingDispatcher) Dispatch(_ context.Context, msg notify.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
}

func (d *recordingDispatcher) Messages() []notify.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Message(nil), d.messages...)
}
