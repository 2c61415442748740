package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vesmirov/fundhub/internal/types"
)

var _ TransactionService = (*TransactionServiceImpl)(nil)

// TransactionService defines the business logic contract for transactions.
type TransactionService interface {
	ListTransactions(ctx context.Context, userID, fundID uuid.UUID) ([]types.Transaction, error)
	CreateTransaction(ctx context.Context, userID, fundID uuid.UUID, params types.CreateTransactionParams) (*types.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*types.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error
}

type TransactionServiceImpl struct {
	logger *slog.Logger
	repo   TransactionRepo
}

func NewTransactionService(repo TransactionRepo, logger *slog.Logger) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, userID, fundID uuid.UUID) ([]types.Transaction, error) {
	transactions, err := s.repo.ListTransactions(ctx, userID, fundID)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return transactions, nil
}

func (s *TransactionServiceImpl) CreateTransaction(ctx context.Context, userID, fundID uuid.UUID, params types.CreateTransactionParams) (*types.Transaction, error) {
	ctx, span := otel.Tracer("TransactionService").Start(ctx, "CreateTransaction", trace.WithAttributes(
		attribute.String("fund.id", fundID.String()),
		attribute.String("transaction.type", string(params.Type)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateTransaction"), slog.String("fundID", fundID.String()))

	if ve := params.Validate(); ve != nil {
		l.WarnContext(ctx, "Transaction validation failed", slog.Any("fields", ve.Fields))
		span.SetStatus(codes.Error, "validation failed")
		return nil, ve
	}

	created, err := s.repo.CreateTransaction(ctx, userID, fundID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to create transaction", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	l.InfoContext(ctx, "Transaction recorded",
		slog.String("transactionID", created.ID.String()),
		slog.String("type", string(created.Type)),
	)
	span.SetStatus(codes.Ok, "transaction recorded")
	return created, nil
}

func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*types.Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("error fetching transaction: %w", err)
	}
	return t, nil
}

func (s *TransactionServiceImpl) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteTransaction"), slog.String("transactionID", transactionID.String()))

	if err := s.repo.DeleteTransaction(ctx, userID, transactionID); err != nil {
		l.WarnContext(ctx, "Failed to delete transaction", slog.Any("error", err))
		return err
	}
	return nil
}
