package ledger

import (
	"context"
	"strings"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/farmledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// DefaultTransferDescription is used when a transfer request carries none
const DefaultTransferDescription = "Account transfer"

// TransferService moves money between two accounts of the same farmer
type TransferService struct {
	deps Deps
}

// NewTransferService creates a new TransferService
func NewTransferService(deps Deps) *TransferService {
	return &TransferService{deps: deps.withDefaults()}
}

// Transfer records one TRANSFER transaction and both balance changes
// atomically. The source balance is checked on the locked row.
func (s *TransferService) Transfer(ctx context.Context, ownerID uuid.UUID, req TransferRequest) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "execute")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, req.FromAccountID.String(),
		telemetry.SpanAttrToAccountID, req.ToAccountID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = DefaultTransferDescription
	}
	date := s.deps.today()
	if req.TransactionDate != nil {
		date = ledger.WallTime(*req.TransactionDate)
	}
	to := req.ToAccountID
	in := ledger.TransactionInput{
		AccountID:       req.FromAccountID,
		Type:            ledger.TransactionTypeTransfer,
		Amount:          valueobject.NewMoney(req.Amount),
		Description:     description,
		ToAccountID:     &to,
		TransactionDate: date,
	}

	var resp *TransferResponse
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		txn, locked, err := recordTransaction(ctx, repos, ownerID, in)
		if err != nil {
			return nil, err
		}
		resp = &TransferResponse{
			TransactionID: txn.ID,
			Amount:        txn.Amount,
			FromAccount:   AccountBalance{AccountID: req.FromAccountID, Balance: locked[req.FromAccountID].CurrentBalance},
			ToAccount:     AccountBalance{AccountID: req.ToAccountID, Balance: locked[req.ToAccountID].CurrentBalance},
		}
		return txn.GetDomainEvents(), nil
	})
	if err != nil {
		if shared.IsInsufficientFunds(err) {
			s.deps.Metrics.InsufficientFunds(ctx)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.deps.Metrics.TransactionRecorded(ctx, ledger.TransactionTypeTransfer, resp.Amount)
	s.deps.Metrics.TransferCompleted(ctx, resp.Amount)
	telemetry.SetAttributes(span, telemetry.SpanAttrTransactionID, resp.TransactionID.String())
	return resp, nil
}
