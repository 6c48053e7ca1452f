package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	financeapp "github.com/grocer/backend/internal/application/finance"
	orderapp "github.com/grocer/backend/internal/application/order"
	"github.com/grocer/backend/internal/domain/finance"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) deliverOrder(t *testing.T, f fixture, id uuid.UUID) *orderapp.OrderResponse {
	t.Helper()
	ctx := context.Background()
	var resp *orderapp.OrderResponse
	for _, step := range []func(context.Context, orderapp.Viewer, uuid.UUID) (*orderapp.OrderResponse, error){
		e.orders.Confirm, e.orders.Pack, e.orders.Dispatch, e.orders.Deliver,
	} {
		var err error
		resp, err = step(ctx, f.adminViewer(), id)
		require.NoError(t, err)
	}
	return resp
}

func TestOrder_ConcurrentCancelRestocksOnce(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t, 10)
	ctx := context.Background()

	e.fillCart(t, f, 2)
	placed, err := e.orders.Checkout(ctx, f.customer, f.checkout(""))
	require.NoError(t, err)
	require.Equal(t, 8, e.stockOf(t, f.productID))

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.orders.Cancel(ctx, f.adminViewer(), placed.ID, orderapp.CancelOrderRequest{Reason: "Store closed early"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, shared.ErrConcurrencyConflict) {
				assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 10, e.stockOf(t, f.productID), "stock is put back exactly once")
}

func TestCreditNote_ConcurrentDraftsRespectGrandTotal(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t, 10)
	ctx := context.Background()
	scope := financeapp.Scope{UserID: f.admin}

	e.fillCart(t, f, 2)
	placed, err := e.orders.Checkout(ctx, f.customer, f.checkout(""))
	require.NoError(t, err)
	delivered := e.deliverOrder(t, f, placed.ID)

	// each draft is more than half the order, so only one fits
	amount := delivered.GrandTotal.Div(decimal.NewFromInt(2)).Add(decimal.NewFromInt(1)).Round(2)

	const attempts = 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		drafted int
		codes   []string
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.creditNotes.Create(ctx, scope, financeapp.CreateCreditNoteRequest{
				OrderID: placed.ID,
				Amount:  amount,
				Reason:  "Items missing",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				drafted++
				return
			}
			codes = append(codes, shared.ErrorCode(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, drafted)
	for _, code := range codes {
		assert.Equal(t, "CREDIT_EXCEEDS_ORDER", code)
	}
}

func TestGSTSummary_PostsDeliveredOrdersMissingFromLedger(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t, 10)
	ctx := context.Background()
	scope := financeapp.Scope{UserID: f.admin}

	e.fillCart(t, f, 1)
	placed, err := e.orders.Checkout(ctx, f.customer, f.checkout(""))
	require.NoError(t, err)
	delivered := e.deliverOrder(t, f, placed.ID)
	require.NotNil(t, delivered.DeliveredAt)

	// drop what the delivery handler posted, as if it had failed
	require.NoError(t, e.db.DB.
		Where("source_type = ? AND source_id = ?", finance.LedgerSourceSale, placed.ID).
		Delete(&finance.GSTLedgerEntry{}).Error)

	period := finance.PeriodOf(delivered.DeliveredAt.UTC())
	summary, err := e.summaries.Generate(ctx, scope, financeapp.GenerateSummaryRequest{StoreID: f.storeID, Period: period})
	require.NoError(t, err)
	assert.Positive(t, summary.SaleEntries)
	assert.True(t, summary.TotalTax.IsPositive())

	storeID := f.storeID
	sales, err := e.ledger.List(ctx, scope, financeapp.LedgerListFilter{StoreID: &storeID, SourceType: "SALE"})
	require.NoError(t, err)
	require.NotEmpty(t, sales.Items)
	assert.Equal(t, placed.ID, sales.Items[0].SourceID)
}
