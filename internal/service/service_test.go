package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/duedate"
	"github.com/lalith-99/kosboard/internal/events"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/observ"
	"github.com/lalith-99/kosboard/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	wib    = time.FixedZone("WIB", 7*60*60)
	admin  = Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	tenant = Actor{UserID: uuid.New(), Role: models.RoleTenant}
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc     *Service
	store   *memory.Store
	events  *recorder
	metrics *observ.Metrics
	now     time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store:   memory.New(),
		events:  &recorder{},
		metrics: observ.NewMetrics(),
		now:     time.Date(2026, 2, 20, 10, 0, 0, 0, wib),
	}
	base := []Option{
		WithClock(func() time.Time { return f.now }),
		WithLocation(wib),
		WithEvents(f.events),
		WithMetrics(f.metrics),
	}
	f.svc = New(Repos{
		Rooms:     f.store.Rooms(),
		Users:     f.store.Users(),
		Tenancies: f.store.Tenancies(),
		Payments:  f.store.Payments(),
	}, zap.NewNop(), append(base, opts...)...)
	return f
}

func (f *fixture) room(t *testing.T, number, price string) *models.Room {
	t.Helper()
	room, err := f.svc.CreateRoom(context.Background(), admin, RoomInput{RoomNumber: number, Price: price})
	require.NoError(t, err)
	return room
}

func (f *fixture) checkIn(t *testing.T, roomID uuid.UUID, email string, dueDay int) *TenancyView {
	t.Helper()
	v, err := f.svc.CheckIn(context.Background(), admin, CheckInInput{
		Profile:   &TenantProfile{Name: "Budi", Email: email, Phone: "0812"},
		RoomID:    roomID,
		StartDate: "2026-02-01",
		DueDay:    dueDay,
	})
	require.NoError(t, err)
	return v
}

// assertOccupancy checks that a room is occupied exactly when one active
// tenancy points at it.
func (f *fixture) assertOccupancy(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	rooms, err := f.store.Rooms().List(ctx, "")
	require.NoError(t, err)
	active, err := f.store.Tenancies().List(ctx, models.TenancyActive)
	require.NoError(t, err)

	refs := make(map[uuid.UUID]int)
	for _, tn := range active {
		if tn.RoomID != nil {
			refs[*tn.RoomID]++
		}
	}
	for _, r := range rooms {
		if r.Status == models.RoomOccupied {
			assert.Equal(t, 1, refs[r.ID], "room %s", r.RoomNumber)
		} else {
			assert.Equal(t, 0, refs[r.ID], "room %s", r.RoomNumber)
		}
	}
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se), "got %T: %v", err, err)
	require.Equal(t, kind, se.Kind, se.Error())
	return se
}

func TestRooms_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRoom(ctx, admin, RoomInput{RoomNumber: " ", Price: "abc", Status: models.RoomOccupied})
	se := requireKind(t, err, KindValidation)
	assert.Contains(t, se.Fields, "room_number")
	assert.Contains(t, se.Fields, "price")
	assert.Contains(t, se.Fields, "status")

	_, err = f.svc.CreateRoom(ctx, admin, RoomInput{RoomNumber: "A-101", Price: "-1"})
	se = requireKind(t, err, KindValidation)
	assert.Equal(t, "must not be negative", se.Fields["price"])
}

func TestRooms_PriceMustFitColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for price, problem := range map[string]string{
		"1500000.5":      "must be a whole number",
		"99999999999999": "must be less than 1000000000000",
		"1000000000000":  "must be less than 1000000000000",
	} {
		_, err := f.svc.CreateRoom(ctx, admin, RoomInput{RoomNumber: "A-101", Price: price})
		se := requireKind(t, err, KindValidation)
		assert.Equal(t, problem, se.Fields["price"], price)
	}

	room, err := f.svc.CreateRoom(ctx, admin, RoomInput{RoomNumber: "A-101", Price: "999999999999"})
	require.NoError(t, err)
	assert.Equal(t, "999999999999", room.Price.String())

	// Trailing zero decimals are still whole rupiah.
	room, err = f.svc.CreateRoom(ctx, admin, RoomInput{RoomNumber: "A-102", Price: "1500000.00"})
	require.NoError(t, err)
	assert.Equal(t, "1500000", room.Price.String())

	huge := "10000000000000"
	_, err = f.svc.UpdateRoom(ctx, admin, room.ID, RoomUpdate{Price: &huge})
	se := requireKind(t, err, KindValidation)
	assert.Contains(t, se.Fields, "price")
}

func TestRooms_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room := f.room(t, "A-101", "1500000")
	assert.Equal(t, models.RoomAvailable, room.Status)
	assert.True(t, room.Price.Equal(mustDecimal("1500000")))

	_, err := f.svc.CreateRoom(ctx, admin, RoomInput{RoomNumber: "A-101", Price: "1"})
	requireKind(t, err, KindConflict)

	got, err := f.svc.GetRoom(ctx, tenant, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-101", got.RoomNumber)

	_, err = f.svc.GetRoom(ctx, tenant, uuid.New())
	requireKind(t, err, KindNotFound)

	maintenance := models.RoomMaintenance
	newNumber := "A-102"
	updated, err := f.svc.UpdateRoom(ctx, admin, room.ID, RoomUpdate{Status: &maintenance, RoomNumber: &newNumber})
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, updated.Status)
	assert.Equal(t, "A-102", updated.RoomNumber)

	// Renaming to its own number is not a duplicate.
	_, err = f.svc.UpdateRoom(ctx, admin, room.ID, RoomUpdate{RoomNumber: &newNumber})
	require.NoError(t, err)

	other := f.room(t, "B-201", "1000000")
	_, err = f.svc.UpdateRoom(ctx, admin, other.ID, RoomUpdate{RoomNumber: &newNumber})
	requireKind(t, err, KindConflict)

	occupied := models.RoomOccupied
	_, err = f.svc.UpdateRoom(ctx, admin, other.ID, RoomUpdate{Status: &occupied})
	requireKind(t, err, KindConflict)

	rooms, err := f.svc.ListRooms(ctx, "")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "A-102", rooms[0].RoomNumber)

	rooms, err = f.svc.ListRooms(ctx, models.RoomAvailable)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "B-201", rooms[0].RoomNumber)

	_, err = f.svc.ListRooms(ctx, "empty")
	requireKind(t, err, KindValidation)

	require.NoError(t, f.svc.DeleteRoom(ctx, admin, room.ID))
	requireKind(t, f.svc.DeleteRoom(ctx, admin, room.ID), KindNotFound)
}

func TestRooms_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRoom(ctx, tenant, RoomInput{RoomNumber: "A-101", Price: "1"})
	requireKind(t, err, KindForbidden)

	_, err = f.svc.CreateRoom(ctx, Actor{}, RoomInput{RoomNumber: "A-101", Price: "1"})
	requireKind(t, err, KindUnauthorized)

	_, err = f.svc.GetRoom(ctx, Actor{}, uuid.New())
	requireKind(t, err, KindUnauthorized)

	// Listing is public.
	_, err = f.svc.ListRooms(ctx, "")
	require.NoError(t, err)
}

func TestCheckIn_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "A-101", "1500000")

	v := f.checkIn(t, room.ID, "budi@kos.test", 5)
	assert.Equal(t, models.TenancyActive, v.Status)
	assert.Equal(t, "Budi", v.TenantName)
	require.NotNil(t, v.RoomNumber)
	assert.Equal(t, "A-101", *v.RoomNumber)
	require.NotNil(t, v.Due)
	assert.Equal(t, 13, v.Due.DaysLeft)
	assert.Equal(t, "2026-03-05", v.Due.NextDueDate.Format(dateLayout))

	got, err := f.svc.GetRoom(ctx, admin, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, got.Status)
	f.assertOccupancy(t)

	// Occupied rooms can neither be toggled nor deleted.
	available := models.RoomAvailable
	_, err = f.svc.UpdateRoom(ctx, admin, room.ID, RoomUpdate{Status: &available})
	requireKind(t, err, KindConflict)
	requireKind(t, f.svc.DeleteRoom(ctx, admin, room.ID), KindConflict)

	// Non-status edits of an occupied room are fine.
	floor := "2"
	_, err = f.svc.UpdateRoom(ctx, admin, room.ID, RoomUpdate{Floor: &floor})
	require.NoError(t, err)

	out, err := f.svc.CheckOut(ctx, admin, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenancyHistory, out.Status)
	require.NotNil(t, out.EndDate)
	assert.Equal(t, "2026-02-20", out.EndDate.Format(dateLayout))

	got, err = f.svc.GetRoom(ctx, admin, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, got.Status)
	f.assertOccupancy(t)

	active, err := f.svc.ListTenancies(ctx, admin, models.TenancyActive)
	require.NoError(t, err)
	assert.Empty(t, active)

	history, err := f.svc.ListTenancies(ctx, admin, models.TenancyHistory)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].Due)

	_, err = f.svc.CheckOut(ctx, admin, v.ID)
	requireKind(t, err, KindNotFound)

	assert.Equal(t, []string{events.TenantCheckedIn, events.TenantCheckedOut}, f.events.types())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CheckIns.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CheckOuts))
}

func TestCheckIn_RoomNotAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room := f.room(t, "A-101", "1500000")
	f.checkIn(t, room.ID, "first@kos.test", 5)

	_, err := f.svc.CheckIn(ctx, admin, CheckInInput{
		Profile:   &TenantProfile{Name: "Sari", Email: "second@kos.test"},
		RoomID:    room.ID,
		StartDate: "2026-02-01",
		DueDay:    5,
	})
	requireKind(t, err, KindConflict)

	maint, err := f.svc.CreateRoom(ctx, admin, RoomInput{RoomNumber: "A-102", Price: "1", Status: models.RoomMaintenance})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, admin, CheckInInput{
		Profile:   &TenantProfile{Name: "Sari", Email: "second@kos.test"},
		RoomID:    maint.ID,
		StartDate: "2026-02-01",
		DueDay:    5,
	})
	requireKind(t, err, KindConflict)

	all, err := f.svc.ListTenancies(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// A failed check-in creates no user either.
	u, err := f.store.Users().GetByEmail(ctx, "second@kos.test")
	require.NoError(t, err)
	assert.Nil(t, u)

	f.assertOccupancy(t)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.CheckIns.WithLabelValues(string(KindConflict))))
}

func TestCheckIn_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "A-101", "1500000")
	uid := uuid.New()

	tests := []struct {
		name  string
		in    CheckInInput
		field string
	}{
		{"due day zero", CheckInInput{Profile: &TenantProfile{Name: "a", Email: "a@b.c"}, RoomID: room.ID, StartDate: "2026-02-01", DueDay: 0}, "due_day"},
		{"due day 32", CheckInInput{Profile: &TenantProfile{Name: "a", Email: "a@b.c"}, RoomID: room.ID, StartDate: "2026-02-01", DueDay: 32}, "due_day"},
		{"bad start date", CheckInInput{Profile: &TenantProfile{Name: "a", Email: "a@b.c"}, RoomID: room.ID, StartDate: "01/02/2026", DueDay: 5}, "start_date"},
		{"bad email", CheckInInput{Profile: &TenantProfile{Name: "a", Email: "nope"}, RoomID: room.ID, StartDate: "2026-02-01", DueDay: 5}, "email"},
		{"no name", CheckInInput{Profile: &TenantProfile{Email: "a@b.c"}, RoomID: room.ID, StartDate: "2026-02-01", DueDay: 5}, "name"},
		{"no identity", CheckInInput{RoomID: room.ID, StartDate: "2026-02-01", DueDay: 5}, "user_id"},
		{"both identities", CheckInInput{UserID: &uid, Profile: &TenantProfile{Name: "a", Email: "a@b.c"}, RoomID: room.ID, StartDate: "2026-02-01", DueDay: 5}, "user_id"},
		{"no room", CheckInInput{Profile: &TenantProfile{Name: "a", Email: "a@b.c"}, StartDate: "2026-02-01", DueDay: 5}, "room_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CheckIn(ctx, admin, tt.in)
			se := requireKind(t, err, KindValidation)
			assert.Contains(t, se.Fields, tt.field)
		})
	}

	got, err := f.svc.GetRoom(ctx, admin, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, got.Status)
}

func TestCheckIn_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "A-101", "1500000")
	missing := uuid.New()

	_, err := f.svc.CheckIn(ctx, admin, CheckInInput{UserID: &missing, RoomID: room.ID, StartDate: "2026-02-01", DueDay: 5})
	requireKind(t, err, KindNotFound)

	_, err = f.svc.CheckIn(ctx, admin, CheckInInput{
		Profile:   &TenantProfile{Name: "a", Email: "a@b.c"},
		RoomID:    uuid.New(),
		StartDate: "2026-02-01",
		DueDay:    5,
	})
	requireKind(t, err, KindNotFound)

	_, err = f.svc.CheckOut(ctx, admin, uuid.New())
	requireKind(t, err, KindNotFound)
}

func TestCheckIn_ReusesUserByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.room(t, "A-101", "1500000")
	b := f.room(t, "A-102", "1500000")

	first := f.checkIn(t, a.ID, "budi@kos.test", 5)
	second := f.checkIn(t, b.ID, "  BUDI@kos.test ", 10)
	assert.Equal(t, first.UserID, second.UserID)

	user, err := f.store.Users().GetByID(ctx, first.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTenant, user.Role)
	assert.NotEmpty(t, user.PasswordHash)

	byID, err := f.svc.CheckIn(ctx, admin, CheckInInput{
		UserID:    &first.UserID,
		RoomID:    f.room(t, "A-103", "1").ID,
		StartDate: "2026-02-01",
		DueDay:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, first.UserID, byID.UserID)
	f.assertOccupancy(t)
}

func TestCheckIn_ConcurrentSameRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "A-101", "1500000")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CheckIn(ctx, admin, CheckInInput{
				Profile:   &TenantProfile{Name: "t", Email: uuid.NewString() + "@kos.test"},
				RoomID:    room.ID,
				StartDate: "2026-02-01",
				DueDay:    5,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, KindConflict, KindOf(err))
	}
	assert.Equal(t, 1, ok)

	active, err := f.svc.ListTenancies(ctx, admin, models.TenancyActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	f.assertOccupancy(t)
}

func TestCheckOutThenCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "A-101", "1500000")

	v := f.checkIn(t, room.ID, "a@kos.test", 5)
	_, err := f.svc.CheckOut(ctx, admin, v.ID)
	require.NoError(t, err)
	f.assertOccupancy(t)

	f.checkIn(t, room.ID, "b@kos.test", 5)
	f.assertOccupancy(t)

	// The old tenancy keeps its history after the room is deleted.
	second, err := f.svc.ListTenancies(ctx, admin, models.TenancyActive)
	require.NoError(t, err)
	_, err = f.svc.CheckOut(ctx, admin, second[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteRoom(ctx, admin, room.ID))

	history, err := f.svc.ListTenancies(ctx, admin, models.TenancyHistory)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, h := range history {
		assert.Nil(t, h.RoomID)
		assert.Nil(t, h.RoomNumber)
	}
}

func TestTenancies_DuePolicy(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		policy string
		days   int
		text   string
	}{
		{"advance", 23, "Due in 23 day(s)"},
		{"overdue", -5, "Overdue by 5 day(s)"},
	} {
		t.Run(tc.policy, func(t *testing.T) {
			f := newFixture(t, WithDuePolicy(duedate.Policy(tc.policy), 7))
			f.now = time.Date(2026, 2, 10, 9, 0, 0, 0, wib)
			room := f.room(t, "A-101", "1500000")
			v := f.checkIn(t, room.ID, "a@kos.test", 5)

			got, err := f.svc.GetTenancy(ctx, admin, v.ID)
			require.NoError(t, err)
			require.NotNil(t, got.Due)
			assert.Equal(t, tc.days, got.Due.DaysLeft)
			assert.Equal(t, tc.text, got.Due.StatusText)
		})
	}
}

func TestGetTenancy_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetTenancy(context.Background(), admin, uuid.New())
	requireKind(t, err, KindNotFound)

	_, err = f.svc.ListTenancies(context.Background(), admin, "gone")
	requireKind(t, err, KindValidation)
}

func TestCreateAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAdmin(ctx, tenant, AdminInput{Name: "X", Email: "x@kos.id", Password: "longenough"})
	requireKind(t, err, KindForbidden)

	e := requireKind(t, func() error {
		_, err := f.svc.CreateAdmin(ctx, Operator, AdminInput{Email: "nope", Password: "short"})
		return err
	}(), KindValidation)
	assert.Contains(t, e.Fields, "name")
	assert.Contains(t, e.Fields, "email")
	assert.Contains(t, e.Fields, "password")

	user, err := f.svc.CreateAdmin(ctx, Operator, AdminInput{Name: "Ibu Kos", Email: "owner@kos.id", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NotEqual(t, "rahasia123", user.PasswordHash)

	_, err = f.svc.CreateAdmin(ctx, Operator, AdminInput{Name: "Again", Email: "owner@kos.id", Password: "rahasia123"})
	requireKind(t, err, KindConflict)
}
