package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/useragent"
)

func TestNewPool_EmptyDSN(t *testing.T) {
	if _, err := NewPool(context.Background(), ""); err == nil {
		t.Error("expected error for empty dsn")
	}
}

func TestNewPool_InvalidDSN(t *testing.T) {
	if _, err := NewPool(context.Background(), "postgres://%zz"); err == nil {
		t.Error("expected error for malformed dsn")
	}
}

func TestNullString(t *testing.T) {
	if nullString("") != nil {
		t.Error("empty string should map to NULL")
	}
	if got := nullString("x"); got == nil || *got != "x" {
		t.Errorf("expected x, got %v", got)
	}
}

func TestRepos_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("schema: %v", err)
	}

	session := "repo-test-" + time.Now().Format("150405.000000")

	uas := NewUserAgentRepo(pool)
	if _, err := uas.Get(ctx, session); !errors.Is(err, useragent.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := uas.Save(ctx, session, "ua-1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := uas.Save(ctx, session, "ua-2"); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if ua, err := uas.Get(ctx, session); err != nil || ua != "ua-2" {
		t.Fatalf("expected ua-2, got %q (%v)", ua, err)
	}

	cycles := NewCycleRepo(pool)
	c := domain.NewCycle(session, 1, time.Now().UTC())
	c.SetBalance(120)
	c.MarkFailed(time.Now().UTC(), "boom")
	if err := cycles.RecordCycle(ctx, c); err != nil {
		t.Fatalf("record: %v", err)
	}

	latest, err := cycles.LatestPerSession(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	var found bool
	for _, l := range latest {
		if l.Session == session {
			found = true
			if l.Status != domain.CycleStatusFailed || l.Error != "boom" || l.Balance == nil || *l.Balance != 120 {
				t.Errorf("unexpected cycle %+v", l)
			}
		}
	}
	if !found {
		t.Error("recorded cycle not returned")
	}
}
