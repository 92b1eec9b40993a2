package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/query"
	"expensetracker/internal/storage"
)

// ErrCategoryInUse is returned when deleting a category that transactions
// still reference.
var ErrCategoryInUse = errors.New("category has transactions and cannot be deleted")

// TransactionStore is the storage surface for transactions and the
// categories they reference.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	GetTransaction(ctx context.Context, id, ownerID string) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id, ownerID string) error
	ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)

	CreateCategory(ctx context.Context, c core.Category) error
	GetCategory(ctx context.Context, id, ownerID string) (core.Category, error)
	ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id, ownerID string) error
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)
}

// ExportPublisher pushes backup work onto the queue.
type ExportPublisher interface {
	PublishExport(ctx context.Context, transactionID, action string) error
}

// ReportInvalidator drops cached reports after a write.
type ReportInvalidator interface {
	Invalidate(ownerID string)
}

// TransactionService orchestrates transaction and category operations across
// SQLite and AMQP.
type TransactionService struct {
	store       TransactionStore
	publisher   ExportPublisher
	invalidator ReportInvalidator
	now         func() time.Time
}

func NewTransactionService(store TransactionStore, publisher ExportPublisher, invalidator ReportInvalidator) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		now:         time.Now,
	}
}

type TransactionParams struct {
	Amount      core.Money
	Description string
	Notes       string
	Date        time.Time
	Kind        core.Kind
	Currency    string
	CategoryID  string
}

// Create validates and saves a transaction, then publishes a backup message.
// Save happens first; a publish failure never fails the request.
func (s *TransactionService) Create(ctx context.Context, ownerID string, p TransactionParams) (core.Transaction, error) {
	category, err := s.store.GetCategory(ctx, p.CategoryID, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Transaction{}, core.ErrMissingCategory
		}
		return core.Transaction{}, fmt.Errorf("resolve category: %w", err)
	}

	now := s.now().UTC()
	t := core.Transaction{
		ID:           uuid.NewString(),
		Amount:       p.Amount,
		Description:  strings.TrimSpace(p.Description),
		Notes:        p.Notes,
		Date:         p.Date,
		Kind:         p.Kind,
		Currency:     strings.ToUpper(p.Currency),
		CategoryID:   category.ID,
		CategoryName: category.Name,
		OwnerID:      ownerID,
		CreatedAt:    now,
	}
	if err := t.Validate(now); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.afterWrite(ctx, t.ID, amqp.ActionSync, ownerID)
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, id, ownerID string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id, ownerID)
}

// Update replaces the mutable fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, id, ownerID string, p TransactionParams) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id, ownerID)
	if err != nil {
		return core.Transaction{}, err
	}

	category, err := s.store.GetCategory(ctx, p.CategoryID, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Transaction{}, core.ErrMissingCategory
		}
		return core.Transaction{}, fmt.Errorf("resolve category: %w", err)
	}

	t := existing
	t.Amount = p.Amount
	t.Description = strings.TrimSpace(p.Description)
	t.Notes = p.Notes
	t.Date = p.Date
	t.Kind = p.Kind
	t.Currency = strings.ToUpper(p.Currency)
	t.CategoryID = category.ID
	t.CategoryName = category.Name

	if err := t.Validate(s.now().UTC()); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.afterWrite(ctx, t.ID, amqp.ActionSync, ownerID)
	return t, nil
}

// Delete removes the transaction and queues removal from the backup.
func (s *TransactionService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteTransaction(ctx, id, ownerID); err != nil {
		return err
	}

	s.afterWrite(ctx, id, amqp.ActionDelete, ownerID)
	return nil
}

// List runs the filter, sort and pagination stages over the owner's
// transactions. Zero page values fall back to the first page at the default
// size; negative values are rejected downstream.
func (s *TransactionService) List(ctx context.Context, ownerID string, filter query.FilterSpec, sortSpec query.SortSpec, page query.PageSpec) (query.PaginatedResult[core.Transaction], error) {
	records, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return query.PaginatedResult[core.Transaction]{}, fmt.Errorf("list transactions: %w", err)
	}

	matched := query.Filter(records, filter)
	query.Sort(matched, sortSpec)

	if page.Number == 0 {
		page.Number = 1
	}
	if page.Size == 0 {
		page.Size = query.DefaultPageSize
	}

	return query.Paginate(matched, len(matched), page.Number, page.Size)
}

func (s *TransactionService) afterWrite(ctx context.Context, transactionID, action, ownerID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ownerID)
	}
	if s.publisher == nil {
		slog.WarnContext(ctx, "Export publisher not available, skipping message", "transaction_id", transactionID)
		return
	}
	if err := s.publisher.PublishExport(ctx, transactionID, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"transaction_id", transactionID, "action", action, "error", err)
	}
}

// --- categories ---

func (s *TransactionService) CreateCategory(ctx context.Context, ownerID, name, description string) (core.Category, error) {
	c := core.Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		CreatedAt:   s.now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *TransactionService) GetCategory(ctx context.Context, id, ownerID string) (core.Category, error) {
	return s.store.GetCategory(ctx, id, ownerID)
}

func (s *TransactionService) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	return s.store.ListCategories(ctx, ownerID)
}

func (s *TransactionService) UpdateCategory(ctx context.Context, id, ownerID, name, description string) (core.Category, error) {
	existing, err := s.store.GetCategory(ctx, id, ownerID)
	if err != nil {
		return core.Category{}, err
	}

	existing.Name = strings.TrimSpace(name)
	existing.Description = strings.TrimSpace(description)
	if err := existing.Validate(); err != nil {
		return core.Category{}, err
	}

	if err := s.store.UpdateCategory(ctx, existing); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return existing, nil
}

// DeleteCategory refuses to delete a category that transactions still
// reference, so history keeps resolving to a name.
func (s *TransactionService) DeleteCategory(ctx context.Context, id, ownerID string) error {
	if _, err := s.store.GetCategory(ctx, id, ownerID); err != nil {
		return err
	}

	count, err := s.store.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count category transactions: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	return s.store.DeleteCategory(ctx, id, ownerID)
}
