package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"github.com/Freeeeeet/advisory_service/migrations"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDB подключается к TEST_DB_DSN и накатывает миграции; без DSN тест пропускается
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, goose.SetDialect("postgres"))
	goose.SetBaseFS(migrations.FS)
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	require.NoError(t, goose.UpContext(ctx, db, "."))

	_, err = pool.Exec(ctx, `TRUNCATE advisories, schedules, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool
}

func createUser(t *testing.T, repo *UserRepository, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Name:  name,
		Email: strings.ToLower(name) + "-" + uuid.NewString()[:8] + "@Mail.io",
		Role:  role,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func createSlot(t *testing.T, repo *SlotRepository, programmerID int64) *model.Slot {
	t.Helper()
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	slot := &model.Slot{
		ProgrammerID: programmerID,
		Date:         date,
		StartTime:    "10:00",
		EndTime:      "11:00",
		DayOfWeek:    date.Weekday(),
		Modality:     model.ModalityVirtual,
		Status:       model.SlotStatusAvailable,
	}
	require.NoError(t, repo.Create(context.Background(), slot))
	return slot
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	pool := setupDB(t)
	users := NewUserRepository(pool)
	ctx := context.Background()

	created := createUser(t, users, "Pedro", model.RoleProgrammer)

	found, err := users.GetByEmail(ctx, strings.ToUpper(created.Email))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, model.RoleProgrammer, found.Role)

	missing, err := users.GetByEmail(ctx, "nobody@mail.io")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = users.GetByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSlotRepositoryRoundTrip(t *testing.T) {
	pool := setupDB(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	ctx := context.Background()

	programmer := createUser(t, users, "Pedro", model.RoleProgrammer)
	created := createSlot(t, slots, programmer.ID)

	got, err := slots.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "10:00", got.StartTime)
	assert.Equal(t, "11:00", got.EndTime)
	assert.Equal(t, time.Monday, got.DayOfWeek)
	assert.Equal(t, "Pedro", got.ProgrammerName)
	assert.Equal(t, "2026-11-02", got.Date.Format(time.DateOnly))
}

func TestSlotBookIsCompareAndSwap(t *testing.T) {
	pool := setupDB(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	ctx := context.Background()

	programmer := createUser(t, users, "Pedro", model.RoleProgrammer)
	slot := createSlot(t, slots, programmer.ID)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := slots.Book(ctx, slot.ID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, ErrSlotUnavailable), "unexpected error: %v", err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)

	available, err := slots.ListAvailableByProgrammer(ctx, programmer.ID)
	require.NoError(t, err)
	assert.Empty(t, available)

	assert.ErrorIs(t, slots.Book(ctx, 999999), ErrSlotUnavailable)

	require.NoError(t, slots.Release(ctx, slot.ID))
	require.NoError(t, slots.Release(ctx, slot.ID))
	require.NoError(t, slots.Book(ctx, slot.ID))
}

func TestTxManagerRollsBackBooking(t *testing.T) {
	pool := setupDB(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	tx := NewPostgresTxManager(pool)
	ctx := context.Background()

	programmer := createUser(t, users, "Pedro", model.RoleProgrammer)
	slot := createSlot(t, slots, programmer.ID)

	boom := errors.New("boom")
	err := tx.WithTx(ctx, func(ctx context.Context, repos TxRepositories) error {
		require.NoError(t, repos.Slots.Book(ctx, slot.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, got.Status)
}

func TestAdvisoryRepositoryLifecycle(t *testing.T) {
	pool := setupDB(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	advisories := NewAdvisoryRepository(pool)
	ctx := context.Background()

	programmer := createUser(t, users, "Pedro", model.RoleProgrammer)
	user := createUser(t, users, "Ursula", model.RoleUser)
	slot := createSlot(t, slots, programmer.ID)

	newAdvisory := func() *model.Advisory {
		return &model.Advisory{
			ProgrammerID: programmer.ID,
			UserID:       user.ID,
			SlotID:       &slot.ID,
			Status:       model.AdvisoryStatusPending,
			Message:      "help",
			Date:         slot.Date,
			Time:         slot.StartTime,
			Modality:     slot.Modality,
		}
	}

	first := newAdvisory()
	require.NoError(t, advisories.Create(ctx, first))

	// второй активной заявки на слот быть не может
	assert.ErrorIs(t, advisories.Create(ctx, newAdvisory()), ErrSlotUnavailable)

	assert.ErrorIs(t,
		advisories.UpdateStatus(ctx, first.ID, model.AdvisoryStatusAccepted, model.AdvisoryStatusCompleted, nil),
		ErrStatusChanged)

	response := "sorry"
	require.NoError(t, advisories.UpdateStatus(ctx, first.ID, model.AdvisoryStatusPending, model.AdvisoryStatusRejected, &response))

	got, err := advisories.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AdvisoryStatusRejected, got.Status)
	require.NotNil(t, got.ResponseMessage)
	assert.Equal(t, "sorry", *got.ResponseMessage)
	assert.Equal(t, "Ursula", got.UserName)

	// после отклонения слот снова доступен для новой заявки
	second := newAdvisory()
	require.NoError(t, advisories.Create(ctx, second))

	list, err := advisories.ListByProgrammer(ctx, programmer.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, advisories.UpdateStatus(ctx, second.ID, model.AdvisoryStatusPending, model.AdvisoryStatusAccepted, nil))
	accepted, err := advisories.ListAcceptedOn(ctx, slot.Date)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, second.ID, accepted[0].ID)
}

func TestSlotDeletePolicy(t *testing.T) {
	pool := setupDB(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	advisories := NewAdvisoryRepository(pool)
	ctx := context.Background()

	programmer := createUser(t, users, "Pedro", model.RoleProgrammer)
	user := createUser(t, users, "Ursula", model.RoleUser)
	slot := createSlot(t, slots, programmer.ID)

	rejected := &model.Advisory{
		ProgrammerID: programmer.ID,
		UserID:       user.ID,
		SlotID:       &slot.ID,
		Status:       model.AdvisoryStatusRejected,
		Date:         slot.Date,
		Time:         slot.StartTime,
		Modality:     slot.Modality,
	}
	require.NoError(t, advisories.Create(ctx, rejected))

	require.NoError(t, slots.Book(ctx, slot.ID))
	assert.ErrorIs(t, slots.DeleteAvailable(ctx, slot.ID), ErrSlotUnavailable)

	require.NoError(t, slots.Release(ctx, slot.ID))
	require.NoError(t, slots.DeleteAvailable(ctx, slot.ID))

	gone, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := advisories.GetByID(ctx, rejected.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Nil(t, kept.SlotID)
}

func TestAdvisoryReminderClaimedOnce(t *testing.T) {
	pool := setupDB(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	advisories := NewAdvisoryRepository(pool)
	ctx := context.Background()

	programmer := createUser(t, users, "Pedro", model.RoleProgrammer)
	user := createUser(t, users, "Ursula", model.RoleUser)
	slot := createSlot(t, slots, programmer.ID)

	advisory := &model.Advisory{
		ProgrammerID: programmer.ID,
		UserID:       user.ID,
		SlotID:       &slot.ID,
		Status:       model.AdvisoryStatusAccepted,
		Date:         slot.Date,
		Time:         slot.StartTime,
		Modality:     slot.Modality,
	}
	require.NoError(t, advisories.Create(ctx, advisory))

	claimed, err := advisories.ClaimReminder(ctx, advisory.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = advisories.ClaimReminder(ctx, advisory.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	// уже напомненные заявки в выборку не попадают
	accepted, err := advisories.ListAcceptedOn(ctx, slot.Date)
	require.NoError(t, err)
	assert.Empty(t, accepted)
}

func TestAdvisoryRepositoryDelete(t *testing.T) {
	pool := setupDB(t)
	users := NewUserRepository(pool)
	slots := NewSlotRepository(pool)
	advisories := NewAdvisoryRepository(pool)
	ctx := context.Background()

	programmer := createUser(t, users, "Pedro", model.RoleProgrammer)
	user := createUser(t, users, "Ursula", model.RoleUser)
	slot := createSlot(t, slots, programmer.ID)

	advisory := &model.Advisory{
		ProgrammerID: programmer.ID,
		UserID:       user.ID,
		SlotID:       &slot.ID,
		Status:       model.AdvisoryStatusPending,
		Date:         slot.Date,
		Time:         slot.StartTime,
		Modality:     slot.Modality,
	}
	require.NoError(t, advisories.Create(ctx, advisory))

	require.NoError(t, advisories.Delete(ctx, advisory.ID))
	assert.ErrorIs(t, advisories.Delete(ctx, advisory.ID), ErrAdvisoryNotFound)

	gone, err := advisories.GetByID(ctx, advisory.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
