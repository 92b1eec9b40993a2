package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for outbound backup adapters.
type (
	// TransactionAppender writes one transaction row to the backup.
	TransactionAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionRemover removes the row for a deleted transaction.
	TransactionRemover interface {
		Remove(ctx context.Context, transactionID string) error
	}

	// Exporter is the full backup surface the worker depends on.
	Exporter interface {
		TransactionAppender
		TransactionRemover
	}
)
