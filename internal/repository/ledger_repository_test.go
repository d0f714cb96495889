package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/umarovdev/konkurs-backend/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Single connection keeps the in-memory database alive and serializes
	// writers the way the production MySQL pool serializes row locks.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&model.User{},
		&model.Channel{},
		&model.ContestEpoch{},
		&model.ChannelAward{},
		&model.ReferralAward{},
		&model.Gift{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func mustUser(t *testing.T, r LedgerRepository, id int64, name string, referrerID *int64) {
	t.Helper()
	if _, err := r.UpsertUser(context.Background(), id, "", name, referrerID); err != nil {
		t.Fatalf("upsert user %d: %v", id, err)
	}
}

func userPoints(t *testing.T, r LedgerRepository, id int64) (int, int) {
	t.Helper()
	u, err := r.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %d: %v", id, err)
	}
	return u.Points, u.Referrals
}

func TestUpsertUser(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	ctx := context.Background()

	ref := int64(99)
	created, err := r.UpsertUser(ctx, 1, "alisher", "Alisher N", &ref)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true on first contact")
	}

	created, err = r.UpsertUser(ctx, 1, "alisher_new", "Alisher Navoiy", nil)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatalf("expected created=false for existing user")
	}

	u, err := r.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Username != "alisher_new" || u.FullName != "Alisher Navoiy" {
		t.Fatalf("identity refresh not applied: %+v", u)
	}
	if u.ReferrerID == nil || *u.ReferrerID != 99 {
		t.Fatalf("referrer must survive later upserts, got %v", u.ReferrerID)
	}

	// A later upsert claiming a different referrer must not rewrite it.
	other := int64(55)
	if _, err := r.UpsertUser(ctx, 1, "alisher_new", "Alisher Navoiy", &other); err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	u, _ = r.GetUser(ctx, 1)
	if u.ReferrerID == nil || *u.ReferrerID != 99 {
		t.Fatalf("referrer was rewritten to %v", u.ReferrerID)
	}
}

func TestUpsertUserSelfReferrerIgnored(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	ctx := context.Background()

	self := int64(7)
	if _, err := r.UpsertUser(ctx, 7, "u7", "User Seven", &self); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	u, err := r.GetUser(ctx, 7)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.ReferrerID != nil {
		t.Fatalf("self-referrer must be dropped at creation, got %v", *u.ReferrerID)
	}
}

func TestActiveEpochLazyCreate(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	ctx := context.Background()

	first, err := r.ActiveEpochID(ctx)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first == 0 {
		t.Fatalf("expected a created epoch id")
	}
	second, err := r.ActiveEpochID(ctx)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first != second {
		t.Fatalf("lazy creation must be idempotent: %d != %d", first, second)
	}
}

func TestTryRecordChannelAwardIdempotent(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	ctx := context.Background()
	mustUser(t, r, 1, "User One", nil)

	epochID, err := r.ActiveEpochID(ctx)
	if err != nil {
		t.Fatalf("active epoch: %v", err)
	}

	credited, err := r.TryRecordChannelAward(ctx, 1, "-100200", epochID, 10)
	if err != nil {
		t.Fatalf("first award: %v", err)
	}
	if !credited {
		t.Fatalf("first award must credit")
	}
	credited, err = r.TryRecordChannelAward(ctx, 1, "-100200", epochID, 10)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if credited {
		t.Fatalf("second award for same (user, channel, epoch) must be rejected")
	}
	if pts, _ := userPoints(t, r, 1); pts != 10 {
		t.Fatalf("balance must be exactly 10, got %d", pts)
	}

	// A different channel credits independently.
	credited, err = r.TryRecordChannelAward(ctx, 1, "-100300", epochID, 10)
	if err != nil || !credited {
		t.Fatalf("different channel: credited=%v err=%v", credited, err)
	}
	if pts, _ := userPoints(t, r, 1); pts != 20 {
		t.Fatalf("balance must be 20, got %d", pts)
	}
}

func TestTryRecordChannelAwardConcurrent(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	ctx := context.Background()
	mustUser(t, r, 1, "User One", nil)
	epochID, err := r.ActiveEpochID(ctx)
	if err != nil {
		t.Fatalf("active epoch: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]bool, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.TryRecordChannelAward(ctx, 1, "-100200", epochID, 10)
		}(i)
	}
	wg.Wait()

	creditCount := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("call %d failed: %v", i, errs[i])
		}
		if results[i] {
			creditCount++
		}
	}
	if creditCount != 1 {
		t.Fatalf("exactly one concurrent call must credit, got %d", creditCount)
	}
	if pts, _ := userPoints(t, r, 1); pts != 10 {
		t.Fatalf("balance must increase exactly once, got %d", pts)
	}
}

func TestTryRecordReferralAward(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	ctx := context.Background()
	mustUser(t, r, 1, "Referrer", nil)
	mustUser(t, r, 2, "Referred", nil)

	credited, err := r.TryRecordReferralAward(ctx, 1, 2, 10)
	if err != nil {
		t.Fatalf("first referral: %v", err)
	}
	if !credited {
		t.Fatalf("first referral must credit")
	}
	credited, err = r.TryRecordReferralAward(ctx, 1, 2, 10)
	if err != nil {
		t.Fatalf("second referral: %v", err)
	}
	if credited {
		t.Fatalf("duplicate (referrer, referred) pair must be rejected")
	}
	pts, refs := userPoints(t, r, 1)
	if pts != 10 || refs != 1 {
		t.Fatalf("referrer must have 10 points and 1 referral, got %d/%d", pts, refs)
	}
}

func TestStartNewEpoch(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	ctx := context.Background()
	mustUser(t, r, 1, "User One", nil)
	mustUser(t, r, 2, "User Two", nil)

	oldEpoch, err := r.ActiveEpochID(ctx)
	if err != nil {
		t.Fatalf("active epoch: %v", err)
	}
	if _, err := r.TryRecordChannelAward(ctx, 1, "-100200", oldEpoch, 10); err != nil {
		t.Fatalf("seed channel award: %v", err)
	}
	if _, err := r.TryRecordReferralAward(ctx, 1, 2, 10); err != nil {
		t.Fatalf("seed referral award: %v", err)
	}

	newEpoch, err := r.StartNewEpoch(ctx)
	if err != nil {
		t.Fatalf("start new epoch: %v", err)
	}
	if newEpoch == oldEpoch {
		t.Fatalf("new epoch must differ from the old one")
	}
	activeID, err := r.ActiveEpochID(ctx)
	if err != nil {
		t.Fatalf("active epoch after switch: %v", err)
	}
	if activeID != newEpoch {
		t.Fatalf("active epoch must be the new one: %d != %d", activeID, newEpoch)
	}

	pts, refs := userPoints(t, r, 1)
	if pts != 0 || refs != 0 {
		t.Fatalf("balances must be zeroed, got %d/%d", pts, refs)
	}

	// Channel awards are purged: the same join re-credits in the new epoch.
	credited, err := r.TryRecordChannelAward(ctx, 1, "-100200", newEpoch, 10)
	if err != nil || !credited {
		t.Fatalf("channel award must be re-creditable after epoch switch: credited=%v err=%v", credited, err)
	}

	// Referral awards survive the switch and still block duplicates.
	credited, err = r.TryRecordReferralAward(ctx, 1, 2, 10)
	if err != nil {
		t.Fatalf("referral after switch: %v", err)
	}
	if credited {
		t.Fatalf("referral pair must remain blocked across epochs")
	}
}

func TestResetAll(t *testing.T) {
	db := newTestDB(t)
	r := NewLedgerRepository(db)
	ctx := context.Background()
	mustUser(t, r, 1, "User One", nil)
	mustUser(t, r, 2, "User Two", nil)

	epochID, err := r.ActiveEpochID(ctx)
	if err != nil {
		t.Fatalf("active epoch: %v", err)
	}
	if _, err := r.TryRecordChannelAward(ctx, 1, "-100200", epochID, 10); err != nil {
		t.Fatalf("seed channel award: %v", err)
	}
	if _, err := r.TryRecordReferralAward(ctx, 1, 2, 10); err != nil {
		t.Fatalf("seed referral award: %v", err)
	}
	if err := db.Create(&model.Channel{ChatID: "-100200", Name: "Test"}).Error; err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	if err := db.Create(&model.Gift{Name: "Telefon", PointsRequired: 1000}).Error; err != nil {
		t.Fatalf("seed gift: %v", err)
	}

	counts, err := r.ResetAll(ctx)
	if err != nil {
		t.Fatalf("reset all: %v", err)
	}
	if counts.UsersBefore != 2 || counts.UsersAfter != 2 {
		t.Fatalf("user rows must be preserved: %+v", counts)
	}

	pts, refs := userPoints(t, r, 1)
	if pts != 0 || refs != 0 {
		t.Fatalf("balances must be zeroed, got %d/%d", pts, refs)
	}

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"channel_awards", &model.ChannelAward{}},
		{"referral_awards", &model.ReferralAward{}},
		{"channels", &model.Channel{}},
		{"gifts", &model.Gift{}},
	} {
		var cnt int64
		if err := db.Model(check.model).Count(&cnt).Error; err != nil {
			t.Fatalf("count %s: %v", check.name, err)
		}
		if cnt != 0 {
			t.Fatalf("%s must be empty after reset, got %d rows", check.name, cnt)
		}
	}

	// Exactly one fresh active epoch remains.
	var epochs []model.ContestEpoch
	if err := db.Find(&epochs).Error; err != nil {
		t.Fatalf("list epochs: %v", err)
	}
	if len(epochs) != 1 || !epochs[0].IsActive() {
		t.Fatalf("expected one fresh active epoch, got %+v", epochs)
	}

	// Referral history is gone, the pair credits again.
	credited, err := r.TryRecordReferralAward(ctx, 1, 2, 10)
	if err != nil || !credited {
		t.Fatalf("referral must be creditable after full reset: credited=%v err=%v", credited, err)
	}
}

func TestListTopAndRank(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	ctx := context.Background()

	epochID, err := r.ActiveEpochID(ctx)
	if err != nil {
		t.Fatalf("active epoch: %v", err)
	}
	mustUser(t, r, 1, "First", nil)
	mustUser(t, r, 2, "Second", nil)
	mustUser(t, r, 3, "Third", nil)

	// First: 20 points, Second: 10, Third: 10 (tied with Second but later).
	for _, award := range []struct {
		user    int64
		channel string
	}{
		{1, "-100200"},
		{1, "-100300"},
		{2, "-100200"},
		{3, "-100200"},
	} {
		if _, err := r.TryRecordChannelAward(ctx, award.user, award.channel, epochID, 10); err != nil {
			t.Fatalf("seed award: %v", err)
		}
	}

	top, err := r.ListTop(ctx, 10)
	if err != nil {
		t.Fatalf("list top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	if top[0].TelegramID != 1 || top[0].Points != 20 {
		t.Fatalf("unexpected leader: %+v", top[0])
	}
	if top[1].TelegramID != 2 || top[2].TelegramID != 3 {
		t.Fatalf("ties must keep insertion order: %+v", top[1:])
	}

	tests := []struct {
		name string
		user int64
		want int64
	}{
		{"leader", 1, 1},
		{"tied second", 2, 2},
		{"tied third shares rank", 3, 2},
		{"unknown user ranks below scorers", 42, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Rank(ctx, tt.user)
			if err != nil {
				t.Fatalf("rank: %v", err)
			}
			if got != tt.want {
				t.Fatalf("rank=%d want=%d", got, tt.want)
			}
		})
	}
}
