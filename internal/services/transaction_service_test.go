package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/query"
	"expensetracker/internal/storage"
)

type fakeTxStore struct {
	transactions map[string]core.Transaction
	categories   map[string]core.Category
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{
		transactions: make(map[string]core.Transaction),
		categories:   make(map[string]core.Category),
	}
}

func (f *fakeTxStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	f.transactions[t.ID] = t
	return nil
}

func (f *fakeTxStore) GetTransaction(_ context.Context, id, ownerID string) (core.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeTxStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if _, ok := f.transactions[t.ID]; !ok {
		return storage.ErrNotFound
	}
	f.transactions[t.ID] = t
	return nil
}

func (f *fakeTxStore) DeleteTransaction(_ context.Context, id, ownerID string) error {
	t, ok := f.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(f.transactions, id)
	return nil
}

func (f *fakeTxStore) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTxStore) CreateCategory(_ context.Context, c core.Category) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeTxStore) GetCategory(_ context.Context, id, ownerID string) (core.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.Category{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeTxStore) ListCategories(_ context.Context, ownerID string) ([]core.Category, error) {
	var out []core.Category
	for _, c := range f.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeTxStore) UpdateCategory(_ context.Context, c core.Category) error {
	if _, ok := f.categories[c.ID]; !ok {
		return storage.ErrNotFound
	}
	f.categories[c.ID] = c
	return nil
}

func (f *fakeTxStore) DeleteCategory(_ context.Context, id, ownerID string) error {
	c, ok := f.categories[id]
	if !ok || c.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeTxStore) CountTransactionsByCategory(_ context.Context, categoryID string) (int, error) {
	count := 0
	for _, t := range f.transactions {
		if t.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

type publishedMessage struct {
	transactionID string
	action        string
}

type fakePublisher struct {
	published []publishedMessage
	err       error
}

func (f *fakePublisher) PublishExport(_ context.Context, transactionID, action string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{transactionID, action})
	return nil
}

type fakeInvalidator struct {
	owners []string
}

func (f *fakeInvalidator) Invalidate(ownerID string) {
	f.owners = append(f.owners, ownerID)
}

func seedCategory(store *fakeTxStore, id, ownerID, name string) {
	store.categories[id] = core.Category{ID: id, Name: name, OwnerID: ownerID}
}

func validParams() TransactionParams {
	return TransactionParams{
		Amount:      core.Money{Cents: 1500},
		Description: "Lunch",
		Date:        time.Now().Add(-time.Hour),
		Kind:        core.Expense,
		Currency:    "eur",
		CategoryID:  "cat-1",
	}
}

func TestTransactionService_Create(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	publisher := &fakePublisher{}
	invalidator := &fakeInvalidator{}
	svc := NewTransactionService(store, publisher, invalidator)

	tx, err := svc.Create(context.Background(), "user-1", validParams())
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "EUR", tx.Currency)
	assert.Equal(t, "Groceries", tx.CategoryName)
	assert.Equal(t, "user-1", tx.OwnerID)

	// Saved, then published, then cache dropped.
	_, ok := store.transactions[tx.ID]
	assert.True(t, ok)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, publishedMessage{tx.ID, amqp.ActionSync}, publisher.published[0])
	assert.Equal(t, []string{"user-1"}, invalidator.owners)
}

func TestTransactionService_Create_CategoryNotOwned(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "someone-else", "Groceries")
	svc := NewTransactionService(store, &fakePublisher{}, nil)

	_, err := svc.Create(context.Background(), "user-1", validParams())
	assert.ErrorIs(t, err, core.ErrMissingCategory)
	assert.Empty(t, store.transactions)
}

func TestTransactionService_Create_ValidationFailure(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	publisher := &fakePublisher{}
	svc := NewTransactionService(store, publisher, nil)

	p := validParams()
	p.Date = time.Now().Add(48 * time.Hour)

	_, err := svc.Create(context.Background(), "user-1", p)
	assert.ErrorIs(t, err, core.ErrFutureDate)
	assert.Empty(t, store.transactions)
	assert.Empty(t, publisher.published)
}

func TestTransactionService_Create_PublishFailureDoesNotFail(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, publisher, nil)

	tx, err := svc.Create(context.Background(), "user-1", validParams())
	require.NoError(t, err)

	_, ok := store.transactions[tx.ID]
	assert.True(t, ok, "transaction must be saved even when publishing fails")
}

func TestTransactionService_Create_NilPublisher(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	svc := NewTransactionService(store, nil, nil)

	_, err := svc.Create(context.Background(), "user-1", validParams())
	assert.NoError(t, err)
}

func TestTransactionService_Update(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	seedCategory(store, "cat-2", "user-1", "Entertainment")
	publisher := &fakePublisher{}
	svc := NewTransactionService(store, publisher, nil)

	tx, err := svc.Create(context.Background(), "user-1", validParams())
	require.NoError(t, err)

	p := validParams()
	p.Description = "Cinema"
	p.CategoryID = "cat-2"

	updated, err := svc.Update(context.Background(), tx.ID, "user-1", p)
	require.NoError(t, err)
	assert.Equal(t, "Cinema", updated.Description)
	assert.Equal(t, "Entertainment", updated.CategoryName)
	assert.Equal(t, tx.CreatedAt, updated.CreatedAt)

	// Create and update each publish a sync.
	require.Len(t, publisher.published, 2)
	assert.Equal(t, amqp.ActionSync, publisher.published[1].action)
}

func TestTransactionService_Update_NotFound(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	svc := NewTransactionService(store, nil, nil)

	_, err := svc.Update(context.Background(), "missing", "user-1", validParams())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransactionService_Delete(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	publisher := &fakePublisher{}
	invalidator := &fakeInvalidator{}
	svc := NewTransactionService(store, publisher, invalidator)

	tx, err := svc.Create(context.Background(), "user-1", validParams())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), tx.ID, "user-1"))
	assert.Empty(t, store.transactions)

	require.Len(t, publisher.published, 2)
	assert.Equal(t, publishedMessage{tx.ID, amqp.ActionDelete}, publisher.published[1])
	assert.Equal(t, []string{"user-1", "user-1"}, invalidator.owners)
}

func TestTransactionService_Delete_OtherOwner(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	svc := NewTransactionService(store, nil, nil)

	tx, err := svc.Create(context.Background(), "user-1", validParams())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), tx.ID, "intruder")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Len(t, store.transactions, 1)
}

func TestTransactionService_List(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	svc := NewTransactionService(store, nil, nil)

	base := time.Now().Add(-30 * 24 * time.Hour)
	amounts := []int64{500, 1500, 2500, 3500, 4500}
	for i, cents := range amounts {
		p := validParams()
		p.Amount = core.Money{Cents: cents}
		p.Date = base.Add(time.Duration(i) * 24 * time.Hour)
		_, err := svc.Create(context.Background(), "user-1", p)
		require.NoError(t, err)
	}

	min := int64(1500)
	result, err := svc.List(context.Background(), "user-1",
		query.FilterSpec{MinAmount: &min},
		query.SortSpec{Field: "amount", Direction: "asc"},
		query.PageSpec{Number: 1, Size: 3},
	)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Items, 3)
	assert.Equal(t, int64(1500), result.Items[0].Amount.Cents)
	assert.Equal(t, int64(3500), result.Items[2].Amount.Cents)
}

func TestTransactionService_List_Defaults(t *testing.T) {
	store := newFakeTxStore()
	svc := NewTransactionService(store, nil, nil)

	result, err := svc.List(context.Background(), "user-1",
		query.FilterSpec{}, query.SortSpec{}, query.PageSpec{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.PageNumber)
	assert.Equal(t, query.DefaultPageSize, result.PageSize)
}

func TestTransactionService_List_InvalidPage(t *testing.T) {
	store := newFakeTxStore()
	svc := NewTransactionService(store, nil, nil)

	_, err := svc.List(context.Background(), "user-1",
		query.FilterSpec{}, query.SortSpec{}, query.PageSpec{Number: -1, Size: 10})
	assert.ErrorIs(t, err, query.ErrInvalidPage)
}

func TestTransactionService_Categories(t *testing.T) {
	store := newFakeTxStore()
	svc := NewTransactionService(store, nil, nil)

	created, err := svc.CreateCategory(context.Background(), "user-1", "  Groceries  ", "food shopping")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", created.Name)

	fetched, err := svc.GetCategory(context.Background(), created.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", fetched.Name)

	_, err = svc.GetCategory(context.Background(), created.ID, "someone-else")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	cats, err := svc.ListCategories(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	updated, err := svc.UpdateCategory(context.Background(), created.ID, "user-1", "Food", "")
	require.NoError(t, err)
	assert.Equal(t, "Food", updated.Name)

	require.NoError(t, svc.DeleteCategory(context.Background(), created.ID, "user-1"))
	cats, err = svc.ListCategories(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestTransactionService_CreateCategory_Invalid(t *testing.T) {
	svc := NewTransactionService(newFakeTxStore(), nil, nil)

	_, err := svc.CreateCategory(context.Background(), "user-1", "   ", "")
	assert.ErrorIs(t, err, core.ErrInvalidName)
}

func TestTransactionService_DeleteCategory_InUse(t *testing.T) {
	store := newFakeTxStore()
	seedCategory(store, "cat-1", "user-1", "Groceries")
	svc := NewTransactionService(store, nil, nil)

	_, err := svc.Create(context.Background(), "user-1", validParams())
	require.NoError(t, err)

	err = svc.DeleteCategory(context.Background(), "cat-1", "user-1")
	assert.ErrorIs(t, err, ErrCategoryInUse)

	_, ok := store.categories["cat-1"]
	assert.True(t, ok, "category must survive a refused delete")
}
