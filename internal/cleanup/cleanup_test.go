package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/usmanghani/chatbot-api/internal/domain"
)

type fakeResetRepo struct {
	purgeDeadFn func(ctx context.Context, cutoff time.Time) (int, error)
}

func (f *fakeResetRepo) Create(context.Context, string, string, time.Time) error {
	return nil
}

func (f *fakeResetRepo) Consume(context.Context, string) (*domain.PasswordResetToken, error) {
	return nil, domain.ErrTokenInvalid
}

func (f *fakeResetRepo) PurgeDead(ctx context.Context, cutoff time.Time) (int, error) {
	return f.purgeDeadFn(ctx, cutoff)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPurge_CutoffKeepsRecentTokens(t *testing.T) {
	var gotCutoff time.Time
	repo := &fakeResetRepo{
		purgeDeadFn: func(_ context.Context, cutoff time.Time) (int, error) {
			gotCutoff = cutoff
			return 2, nil
		},
	}

	p := NewPurger(repo, "@hourly", testLogger())
	p.purge(context.Background())

	wantAround := time.Now().Add(-retention)
	if gotCutoff.Before(wantAround.Add(-time.Minute)) || gotCutoff.After(wantAround.Add(time.Minute)) {
		t.Errorf("cutoff = %v, want about %v", gotCutoff, wantAround)
	}
}

func TestPurge_RepoErrorDoesNotPanic(t *testing.T) {
	repo := &fakeResetRepo{
		purgeDeadFn: func(context.Context, time.Time) (int, error) {
			return 0, errors.New("db down")
		},
	}

	NewPurger(repo, "@hourly", testLogger()).purge(context.Background())
}

func TestStart_InvalidScheduleReturns(t *testing.T) {
	repo := &fakeResetRepo{
		purgeDeadFn: func(context.Context, time.Time) (int, error) { return 0, nil },
	}

	done := make(chan struct{})
	go func() {
		NewPurger(repo, "not a schedule", testLogger()).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return on invalid schedule")
	}
}
