package ledger

import (
	"context"
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Deps are the collaborators shared by the ledger services
type Deps struct {
	UoW     UnitOfWork
	Hooks   PostCommitHooks
	Metrics MetricsRecorder
	Logger  *zap.Logger
	// Now returns the farm's clock, in any zone; tests pin it
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Metrics == nil {
		d.Metrics = NoopMetrics{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// today is the farm's wall-clock time labelled UTC, the convention every
// stored ledger date follows
func (d Deps) today() time.Time {
	return ledger.WallTime(d.Now())
}

// mutate runs fn in a unit of work and hands the events it returns to the
// post-commit hooks. Hooks run detached from ctx cancellation so a client
// that disconnects after commit cannot leave derived state stale. Hook
// failures are logged; the committed mutation stands.
func (d Deps) mutate(ctx context.Context, fn func(repos Repositories) ([]shared.DomainEvent, error)) error {
	var events []shared.DomainEvent
	err := d.UoW.Execute(ctx, func(repos Repositories) error {
		var err error
		events, err = fn(repos)
		return err
	})
	if err != nil {
		return err
	}
	if err := d.Hooks.Run(context.WithoutCancel(ctx), events); err != nil {
		d.Logger.Error("post-commit hooks failed",
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
	return nil
}
