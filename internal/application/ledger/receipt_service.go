package ledger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ObjectStorage issues presigned URLs for receipt objects
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string) (url string, expiresAt time.Time, err error)
	PresignGet(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
}

// ReceiptService attaches receipt images to transactions. The image bytes
// go straight to object storage; the ledger only stores the object key.
type ReceiptService struct {
	deps    Deps
	storage ObjectStorage
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(deps Deps, storage ObjectStorage) *ReceiptService {
	return &ReceiptService{deps: deps.withDefaults(), storage: storage}
}

func receiptKey(ownerID, txnID uuid.UUID) string {
	return fmt.Sprintf("receipts/%s/%s/%s", ownerID, txnID, uuid.New())
}

// AttachReceipt reserves a new object key on the transaction and returns an upload URL for it
func (s *ReceiptService) AttachReceipt(ctx context.Context, ownerID, txnID uuid.UUID, req ReceiptUploadRequest) (*ReceiptURLResponse, error) {
	key := receiptKey(ownerID, txnID)
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		txn, err := repos.Transactions().FindByIDForUpdate(ctx, ownerID, txnID)
		if err != nil {
			return nil, err
		}
		txn.AttachReceipt(key)
		return nil, repos.Transactions().SaveWithLock(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("presign receipt upload: %w", err)
	}
	return &ReceiptURLResponse{
		TransactionID: txnID,
		Key:           key,
		URL:           url,
		Method:        http.MethodPut,
		ExpiresAt:     expiresAt,
	}, nil
}

// ReceiptDownloadURL returns a download URL for the transaction's receipt
func (s *ReceiptService) ReceiptDownloadURL(ctx context.Context, ownerID, txnID uuid.UUID) (*ReceiptURLResponse, error) {
	txn, err := s.deps.UoW.Read().Transactions().FindByIDForOwner(ctx, ownerID, txnID)
	if err != nil {
		return nil, err
	}
	if txn.ReceiptKey == "" {
		return nil, shared.NewNotFoundError("receipt", txnID)
	}

	url, expiresAt, err := s.storage.PresignGet(ctx, txn.ReceiptKey)
	if err != nil {
		return nil, fmt.Errorf("presign receipt download: %w", err)
	}
	return &ReceiptURLResponse{
		TransactionID: txnID,
		Key:           txn.ReceiptKey,
		URL:           url,
		Method:        http.MethodGet,
		ExpiresAt:     expiresAt,
	}, nil
}
