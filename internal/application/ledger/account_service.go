package ledger

import (
	"context"
	"fmt"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/farmledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService manages a farmer's money stores
type AccountService struct {
	deps Deps
}

// NewAccountService creates a new AccountService
func NewAccountService(deps Deps) *AccountService {
	return &AccountService{deps: deps.withDefaults()}
}

// CreateAccount opens an account with its opening balance
func (s *AccountService) CreateAccount(ctx context.Context, ownerID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	opening := valueobject.Zero()
	if req.OpeningBalance != nil {
		opening = valueobject.NewMoney(*req.OpeningBalance)
	}

	account, err := ledger.NewAccount(ownerID, req.AccountName, ledger.AccountType(req.AccountType), opening)
	if err != nil {
		return nil, err
	}
	if err := account.SetBankDetails(req.AccountNumber, req.BankName); err != nil {
		return nil, err
	}

	if err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		return nil, repos.Accounts().Save(ctx, account)
	}); err != nil {
		return nil, err
	}

	resp := toAccountResponse(account)
	return &resp, nil
}

// UpdateAccount renames an account or changes its bank details
func (s *AccountService) UpdateAccount(ctx context.Context, ownerID, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	var account *ledger.Account
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		var err error
		account, err = repos.Accounts().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if err := account.Update(req.AccountName, req.AccountNumber, req.BankName); err != nil {
			return nil, err
		}
		return nil, repos.Accounts().SaveWithLock(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	resp := toAccountResponse(account)
	return &resp, nil
}

// DeactivateAccount soft-deletes an account. Its transactions stay in the ledger.
func (s *AccountService) DeactivateAccount(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		account, err := repos.Accounts().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if !account.IsActive {
			return nil, nil
		}
		account.Deactivate()
		return nil, repos.Accounts().SaveWithLock(ctx, account)
	})
}

// GetAccount returns one account of the farmer
func (s *AccountService) GetAccount(ctx context.Context, ownerID, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.deps.UoW.Read().Accounts().FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

// ListAccounts returns the farmer's accounts, active ones only unless asked otherwise
func (s *AccountService) ListAccounts(ctx context.Context, ownerID uuid.UUID, filter AccountListFilter) ([]AccountResponse, error) {
	f := ledger.AccountFilter{
		Filter:          shared.Filter{All: true, OrderBy: "account_name", OrderDir: "asc"},
		IncludeInactive: filter.IncludeInactive,
	}
	if filter.AccountType != "" {
		t := ledger.AccountType(filter.AccountType)
		if !t.IsValid() {
			return nil, shared.NewValidationError("account_type", "account type is not valid")
		}
		f.Type = &t
	}

	accounts, err := s.deps.UoW.Read().Accounts().FindAllForOwner(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = toAccountResponse(&accounts[i])
	}
	return out, nil
}

// TotalBalance sums the balances of the farmer's active accounts
func (s *AccountService) TotalBalance(ctx context.Context, ownerID uuid.UUID) (*TotalBalanceResponse, error) {
	total, err := s.deps.UoW.Read().Accounts().SumActiveBalances(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &TotalBalanceResponse{TotalBalance: total, Currency: valueobject.Currency}, nil
}

// VerifyBalance recomputes an account's balance from the transaction log.
// A drift beyond the rounding tolerance is returned as a consistency error.
func (s *AccountService) VerifyBalance(ctx context.Context, ownerID, id uuid.UUID) (*BalanceVerificationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "verify_balance")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrAccountID, id.String())

	repos := s.deps.UoW.Read()
	account, err := repos.Accounts().FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	snapshots, err := repos.Transactions().SnapshotsForAccount(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load ledger for account %s: %w", id, err)
	}

	net := ledger.NetEffectOn(id, snapshots)
	computed := account.OpeningBalance.Add(net)
	resp := &BalanceVerificationResponse{
		AccountID:       id,
		StoredBalance:   account.CurrentBalance,
		ComputedBalance: computed,
		Difference:      account.CurrentBalance.Sub(computed),
		Consistent:      true,
	}

	if err := account.VerifyBalance(net); err != nil {
		resp.Consistent = false
		s.deps.Metrics.ConsistencyFailure(ctx)
		s.deps.Logger.Error("account balance disagrees with ledger",
			zap.String("account_id", id.String()),
			zap.String("stored", account.CurrentBalance.StringFixed(2)),
			zap.String("computed", computed.StringFixed(2)),
			zap.Int("transactions", len(snapshots)),
		)
		telemetry.RecordError(span, err)
		return resp, err
	}
	return resp, nil
}
