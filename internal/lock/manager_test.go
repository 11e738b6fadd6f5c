package lock

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/salonkit/booking-engine/internal/org"
	"github.com/salonkit/booking-engine/internal/schedule"
)

type fakeLockRepo struct {
	locks map[uuid.UUID]*SlotLock

	deleteErr map[uuid.UUID]error
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: make(map[uuid.UUID]*SlotLock)}
}

func (f *fakeLockRepo) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeLockRepo) Insert(ctx context.Context, l *SlotLock) error {
	cp := *l
	f.locks[l.ID] = &cp
	return nil
}

func (f *fakeLockRepo) Get(ctx context.Context, id uuid.UUID) (*SlotLock, error) {
	l, ok := f.locks[id]
	if !ok {
		return nil, ErrLockNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := f.locks[id]; !ok {
		return ErrLockNotFound
	}
	delete(f.locks, id)
	return nil
}

func (f *fakeLockRepo) DeleteBySession(ctx context.Context, orgID uuid.UUID, sessionID string) error {
	for id, l := range f.locks {
		if l.OrgID == orgID && l.SessionID == sessionID {
			delete(f.locks, id)
		}
	}
	return nil
}

func (f *fakeLockRepo) ListActive(ctx context.Context, staffID uuid.UUID, date string, now time.Time) ([]SlotLock, error) {
	var out []SlotLock
	for _, l := range f.locks {
		if l.StaffID == staffID && l.Date == date && l.Active(now) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLockRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]SlotLock, error) {
	var out []SlotLock
	for _, l := range f.locks {
		if !l.Active(now) {
			out = append(out, *l)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeAppointments struct {
	booked []schedule.Window
}

func (f *fakeAppointments) ListActiveIntervals(ctx context.Context, staffID uuid.UUID, date string) ([]schedule.Window, error) {
	return f.booked, nil
}

type fakeStaffDir struct {
	staff map[uuid.UUID]*org.Staff
}

func (f *fakeStaffDir) GetStaff(ctx context.Context, id uuid.UUID) (*org.Staff, error) {
	s, ok := f.staff[id]
	if !ok {
		return nil, org.ErrStaffNotFound
	}
	return s, nil
}

// fakeMutex runs the critical section inline and records the keys it was
// asked to guard.
type fakeMutex struct {
	keys []string
}

func (f *fakeMutex) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	f.keys = append(f.keys, key)
	return fn(ctx)
}

type managerFixture struct {
	mgr     *Manager
	repo    *fakeLockRepo
	appts   *fakeAppointments
	mutex   *fakeMutex
	orgID   uuid.UUID
	staffID uuid.UUID
	now     time.Time
}

func newManagerFixture() *managerFixture {
	orgID := uuid.New()
	staffID := uuid.New()

	repo := newFakeLockRepo()
	appts := &fakeAppointments{}
	mutex := &fakeMutex{}
	staff := &fakeStaffDir{staff: map[uuid.UUID]*org.Staff{
		staffID: {ID: staffID, OrgID: orgID, Name: "Dana", Active: true},
	}}

	mgr := NewManager(repo, appts, staff, mutex, DefaultTTL)
	now := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return now }

	return &managerFixture{mgr: mgr, repo: repo, appts: appts, mutex: mutex, orgID: orgID, staffID: staffID, now: now}
}

func (fx *managerFixture) acquire(session string, startMin, endMin int) (*SlotLock, error) {
	return fx.mgr.Acquire(context.Background(), fx.orgID, fx.staffID, "2026-09-14", startMin, endMin, session)
}

func TestAcquire(t *testing.T) {
	fx := newManagerFixture()

	l, err := fx.acquire("sess-a", 600, 645)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !l.ExpiresAt.Equal(fx.now.Add(DefaultTTL)) {
		t.Errorf("ExpiresAt = %v, want %v", l.ExpiresAt, fx.now.Add(DefaultTTL))
	}
	if len(fx.mutex.keys) != 1 || fx.mutex.keys[0] != fmt.Sprintf("slot:%s:2026-09-14", fx.staffID) {
		t.Errorf("mutex keys = %v, want one per-staff-per-date key", fx.mutex.keys)
	}
}

func TestAcquireOverlapRejected(t *testing.T) {
	fx := newManagerFixture()
	if _, err := fx.acquire("sess-a", 600, 645); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	tests := []struct {
		name     string
		startMin int
		endMin   int
		wantErr  error
	}{
		{"same range", 600, 645, ErrSlotHeld},
		{"partial overlap", 630, 675, ErrSlotHeld},
		{"adjacent after", 645, 690, nil},
		{"adjacent before", 555, 600, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.acquire("sess-"+tt.name, tt.startMin, tt.endMin)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Acquire %d-%d: err = %v, want %v", tt.startMin, tt.endMin, err, tt.wantErr)
			}
		})
	}
}

func TestAcquireSupersedesOwnLock(t *testing.T) {
	fx := newManagerFixture()
	first, err := fx.acquire("sess-a", 600, 645)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	// Same session picks a different time; the old hold is replaced, not
	// stacked.
	second, err := fx.acquire("sess-a", 720, 765)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if len(fx.repo.locks) != 1 {
		t.Fatalf("session holds %d locks, want 1", len(fx.repo.locks))
	}
	if _, ok := fx.repo.locks[first.ID]; ok {
		t.Error("superseded lock still present")
	}
	if _, ok := fx.repo.locks[second.ID]; !ok {
		t.Error("new lock missing")
	}

	// The freed range is immediately available to others.
	if _, err := fx.acquire("sess-b", 600, 645); err != nil {
		t.Errorf("re-acquire of freed range: %v", err)
	}
}

func TestAcquireOverBookedRange(t *testing.T) {
	fx := newManagerFixture()
	fx.appts.booked = []schedule.Window{{Start: 600, End: 645}}

	if _, err := fx.acquire("sess-a", 630, 675); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("err = %v, want %v", err, ErrSlotTaken)
	}
}

func TestAcquireExpiredLockDoesNotBlock(t *testing.T) {
	fx := newManagerFixture()
	if _, err := fx.acquire("sess-a", 600, 645); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Past the TTL the abandoned hold no longer counts, even before the
	// sweep has removed the row.
	later := fx.now.Add(DefaultTTL + time.Second)
	fx.mgr.now = func() time.Time { return later }

	if _, err := fx.acquire("sess-b", 600, 645); err != nil {
		t.Fatalf("Acquire after expiry: %v", err)
	}
}

func TestAcquireValidation(t *testing.T) {
	fx := newManagerFixture()

	tests := []struct {
		name string
		call func() error
	}{
		{"end before start", func() error {
			_, err := fx.acquire("s", 645, 600)
			return err
		}},
		{"zero length", func() error {
			_, err := fx.acquire("s", 600, 600)
			return err
		}},
		{"past midnight", func() error {
			_, err := fx.acquire("s", 1400, 1500)
			return err
		}},
		{"bad date", func() error {
			_, err := fx.mgr.Acquire(context.Background(), fx.orgID, fx.staffID, "14/09/2026", 600, 645, "s")
			return err
		}},
		{"missing session", func() error {
			_, err := fx.acquire("", 600, 645)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !IsInvalidRange(err) {
				t.Errorf("err = %v, want an invalid range error", err)
			}
		})
	}
}

func TestAcquireCrossOrgStaff(t *testing.T) {
	fx := newManagerFixture()

	_, err := fx.mgr.Acquire(context.Background(), uuid.New(), fx.staffID, "2026-09-14", 600, 645, "sess-a")
	if !errors.Is(err, org.ErrStaffNotFound) {
		t.Errorf("err = %v, want %v", err, org.ErrStaffNotFound)
	}
}

func TestReleaseOwnership(t *testing.T) {
	fx := newManagerFixture()
	l, err := fx.acquire("sess-a", 600, 645)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if err := fx.mgr.Release(context.Background(), l.ID, "sess-b"); !errors.Is(err, ErrLockNotFound) {
		t.Errorf("foreign release: err = %v, want %v", err, ErrLockNotFound)
	}
	if _, ok := fx.repo.locks[l.ID]; !ok {
		t.Fatal("lock removed by a non-owning session")
	}

	if err := fx.mgr.Release(context.Background(), l.ID, "sess-a"); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if len(fx.repo.locks) != 0 {
		t.Error("lock still present after release")
	}
}

func TestPurgeExpired(t *testing.T) {
	fx := newManagerFixture()
	if _, err := fx.acquire("sess-a", 600, 645); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := fx.acquire("sess-b", 700, 745); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Nothing has expired yet.
	n, err := fx.mgr.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 0 {
		t.Errorf("purged %d, want 0", n)
	}

	later := fx.now.Add(DefaultTTL + time.Second)
	fx.mgr.now = func() time.Time { return later }

	n, err = fx.mgr.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("purged %d, want 2", n)
	}
	if len(fx.repo.locks) != 0 {
		t.Errorf("%d locks remain after purge", len(fx.repo.locks))
	}
}

func TestPurgeExpiredSkipsFailures(t *testing.T) {
	fx := newManagerFixture()
	a, err := fx.acquire("sess-a", 600, 645)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := fx.acquire("sess-b", 700, 745); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	fx.repo.deleteErr = map[uuid.UUID]error{a.ID: errors.New("deadlock")}

	later := fx.now.Add(DefaultTTL + time.Second)
	fx.mgr.now = func() time.Time { return later }

	n, err := fx.mgr.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1 (one delete failed)", n)
	}
}
