package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryCounter(t *testing.T) {
	counter := NewMemoryCounter()
	ctx := context.Background()
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	usage, errUsage := counter.Usage(ctx, 1, "crystal_identification", now)
	if errUsage != nil {
		t.Fatalf("usage: %v", errUsage)
	}
	if usage != 0 {
		t.Fatalf("expected 0, got %d", usage)
	}

	for i := 1; i <= 3; i++ {
		count, errIncr := counter.Increment(ctx, 1, "crystal_identification", now)
		if errIncr != nil {
			t.Fatalf("increment: %v", errIncr)
		}
		if count != i {
			t.Fatalf("expected count=%d, got %d", i, count)
		}
	}

	// Other users and features are isolated.
	if count, _ := counter.Usage(ctx, 2, "crystal_identification", now); count != 0 {
		t.Fatalf("expected isolation by user, got %d", count)
	}
	if count, _ := counter.Usage(ctx, 1, "guidance", now); count != 0 {
		t.Fatalf("expected isolation by feature, got %d", count)
	}

	// A new day starts a fresh window.
	nextDay := now.AddDate(0, 0, 1)
	if count, _ := counter.Usage(ctx, 1, "crystal_identification", nextDay); count != 0 {
		t.Fatalf("expected fresh window, got %d", count)
	}
}

func TestRedisCounter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := NewRedisCounter(client, "grimoire")

	ctx := context.Background()
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	if count, errUsage := counter.Usage(ctx, 7, "crystal_identification", now); errUsage != nil || count != 0 {
		t.Fatalf("expected empty counter, got %d err=%v", count, errUsage)
	}

	for i := 1; i <= 5; i++ {
		count, errIncr := counter.Increment(ctx, 7, "crystal_identification", now)
		if errIncr != nil {
			t.Fatalf("increment: %v", errIncr)
		}
		if count != i {
			t.Fatalf("expected count=%d, got %d", i, count)
		}
	}

	count, errUsage := counter.Usage(ctx, 7, "crystal_identification", now)
	if errUsage != nil {
		t.Fatalf("usage: %v", errUsage)
	}
	if count != 5 {
		t.Fatalf("expected 5, got %d", count)
	}

	// The day key carries a TTL so stale windows expire on their own.
	mr.FastForward(48 * time.Hour)
	if count, _ := counter.Usage(ctx, 7, "crystal_identification", now); count != 0 {
		t.Fatalf("expected expired window, got %d", count)
	}
}
