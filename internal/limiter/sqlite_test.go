package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/taskhive/internal/repository/sqlite/sqlitetest"
)

func newSQLiteLimiter(t *testing.T, p Policy) (*SQLite, *time.Time) {
	t.Helper()
	db := sqlitetest.Open(t)
	clock := time.Now()
	l := NewSQLite(db.X, p)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestSQLite_BlocksAfterMaxFails(t *testing.T) {
	ctx := context.Background()
	l, clock := newSQLiteLimiter(t, Policy{Window: time.Minute, MaxFails: 3, BlockFor: 10 * time.Minute})
	ip := HashIP("10.0.0.1")

	ok, _, err := l.Allow(ctx, "alice", ip)
	if err != nil || !ok {
		t.Fatalf("fresh Allow: ok=%v err=%v", ok, err)
	}
	for i := 0; i < 2; i++ {
		blocked, _, err := l.Failure(ctx, "alice", ip)
		if err != nil || blocked {
			t.Fatalf("failure %d: blocked=%v err=%v", i, blocked, err)
		}
	}
	blocked, dur, err := l.Failure(ctx, "alice", ip)
	if err != nil || !blocked || dur != 10*time.Minute {
		t.Fatalf("third failure: blocked=%v dur=%v err=%v", blocked, dur, err)
	}

	ok, retry, err := l.Allow(ctx, "alice", ip)
	if err != nil || ok || retry != 10*time.Minute {
		t.Fatalf("blocked Allow: ok=%v retry=%v err=%v", ok, retry, err)
	}

	// Other ip is unaffected.
	ok, _, err = l.Allow(ctx, "alice", HashIP("10.0.0.2"))
	if err != nil || !ok {
		t.Fatalf("other ip: ok=%v err=%v", ok, err)
	}

	*clock = clock.Add(11 * time.Minute)
	ok, _, err = l.Allow(ctx, "alice", ip)
	if err != nil || !ok {
		t.Fatalf("after block: ok=%v err=%v", ok, err)
	}
}

func TestSQLite_WindowResetsCount(t *testing.T) {
	ctx := context.Background()
	l, clock := newSQLiteLimiter(t, Policy{Window: time.Minute, MaxFails: 2, BlockFor: time.Minute})
	ip := HashIP("10.0.0.1")

	if blocked, _, err := l.Failure(ctx, "bob", ip); err != nil || blocked {
		t.Fatalf("first failure: blocked=%v err=%v", blocked, err)
	}
	*clock = clock.Add(2 * time.Minute)
	if blocked, _, err := l.Failure(ctx, "bob", ip); err != nil || blocked {
		t.Fatalf("failure after window must restart count: blocked=%v err=%v", blocked, err)
	}
}

func TestSQLite_SuccessResets(t *testing.T) {
	ctx := context.Background()
	l, _ := newSQLiteLimiter(t, Policy{Window: time.Minute, MaxFails: 2, BlockFor: time.Minute})
	ip := HashIP("10.0.0.1")

	if _, _, err := l.Failure(ctx, "carol", ip); err != nil {
		t.Fatal(err)
	}
	if err := l.Success(ctx, "carol", ip); err != nil {
		t.Fatal(err)
	}
	if blocked, _, err := l.Failure(ctx, "carol", ip); err != nil || blocked {
		t.Fatalf("count must restart after success: blocked=%v err=%v", blocked, err)
	}
}
