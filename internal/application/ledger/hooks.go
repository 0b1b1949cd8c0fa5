package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmledger/backend/internal/domain/shared"
)

// PostCommitHook reacts to the domain events of a committed mutation.
// Hooks run outside the mutation's database transaction.
type PostCommitHook interface {
	Name() string
	AfterCommit(ctx context.Context, events []shared.DomainEvent) error
}

// PostCommitHooks is an ordered list of hooks
type PostCommitHooks []PostCommitHook

// Run invokes every hook in order. A failing hook does not stop the ones
// after it; all failures are returned joined.
func (h PostCommitHooks) Run(ctx context.Context, events []shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	var errs []error
	for _, hook := range h {
		if err := hook.AfterCommit(ctx, events); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.Name(), err))
		}
	}
	return errors.Join(errs...)
}
