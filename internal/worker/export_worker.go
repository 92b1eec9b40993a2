// Package worker moves transactions from SQLite to the backup spreadsheet.
// AMQP messages drive the normal path; a periodic pending scan recovers
// anything a lost message left behind.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
	"expensetracker/internal/storage"
)

// ExportStore is the storage surface the worker needs.
type ExportStore interface {
	GetTransactionByID(ctx context.Context, id string) (core.Transaction, error)
	GetPendingExportTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// ExportWorker applies export messages against the backup spreadsheet.
type ExportWorker struct {
	store     ExportStore
	exporter  sheets.Exporter
	batchSize int
}

func NewExportWorker(store ExportStore, exporter sheets.Exporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches one export message by action.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	switch msg.Action {
	case amqp.ActionSync:
		return w.handleSync(ctx, msg.TransactionID)
	case amqp.ActionDelete:
		return w.handleDelete(ctx, msg.TransactionID)
	default:
		// Unknown actions are dropped rather than requeued forever.
		slog.WarnContext(ctx, "Unknown export action, dropping message",
			"transaction_id", msg.TransactionID, "action", msg.Action)
		return nil
	}
}

func (w *ExportWorker) handleSync(ctx context.Context, id string) error {
	t, err := w.store.GetTransactionByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the message was consumed.
		slog.WarnContext(ctx, "Transaction gone before export, skipping", "transaction_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	return w.export(ctx, t)
}

func (w *ExportWorker) handleDelete(ctx context.Context, id string) error {
	if err := w.exporter.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove from backup: %w", err)
	}

	slog.InfoContext(ctx, "Transaction removed from backup", "transaction_id", id)
	return nil
}

func (w *ExportWorker) export(ctx context.Context, t core.Transaction) error {
	ref, err := w.exporter.Append(ctx, t)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "transaction_id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to backup: %w", err)
	}

	if err := w.store.MarkExported(ctx, t.ID); err != nil {
		// The export itself worked; the pending scan will retry the mark.
		slog.ErrorContext(ctx, "Failed to mark as exported", "transaction_id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", t.ID,
		"backup_ref", ref,
		"amount_cents", t.Amount.Cents)
	return nil
}

// ProcessPending exports transactions still marked pending. This is the
// backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.GetPendingExportTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, t := range pending {
		if err := w.export(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"transaction_id", t.ID, "error", err)
		}
	}

	return nil
}

// StartupCheck drains a larger pending batch once at worker startup to
// recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingExportTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, t := range pending {
		if err := w.export(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export during startup",
				"transaction_id", t.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}
