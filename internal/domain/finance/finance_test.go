package finance

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func deliveredOrder(t *testing.T) *order.Order {
	t.Helper()
	lines := []order.LineInput{
		{ProductID: uuid.New(), Name: "Shampoo", Quantity: 2, UnitPrice: dec("59"), GSTRate: dec("18"), HSNCode: "3305"},
		{ProductID: uuid.New(), Name: "Tea", Quantity: 1, UnitPrice: dec("105"), GSTRate: dec("5"), HSNCode: "0902"},
	}
	addr := order.DeliveryAddress{Line: "12 MG Road", City: "Bengaluru", StateCode: "29", Pincode: "560001"}
	o, err := order.NewOrder(uuid.New(), uuid.New(), uuid.New(), lines, addr, order.PaymentMethodCOD)
	require.NoError(t, err)
	require.NoError(t, o.ApplyCharges("SAVE10", dec("22.30"), dec("20")))
	require.NoError(t, o.Confirm())
	require.NoError(t, o.Pack())
	require.NoError(t, o.Dispatch())
	require.NoError(t, o.Deliver())
	return o
}

func noteOrder(o *order.Order, credited string) CreditNoteOrder {
	return CreditNoteOrder{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		StoreID:         o.StoreID,
		CustomerID:      o.CustomerID,
		GrandTotal:      o.GrandTotal,
		AlreadyCredited: dec(credited),
	}
}

func TestGenerateCreditNoteNumber(t *testing.T) {
	n := GenerateCreditNoteNumber(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^CN-202607-[0-9A-F]{6}$`), n)
}

func TestNewCreditNote(t *testing.T) {
	o := deliveredOrder(t)

	cn, err := NewCreditNote(noteOrder(o, "0"), dec("50"), "Damaged tea pack")
	require.NoError(t, err)
	assert.Equal(t, CreditNoteStatusDraft, cn.Status)
	assert.Equal(t, o.StoreID, cn.StoreID)
	assert.Equal(t, o.OrderNumber, cn.OrderNumber)

	_, err = NewCreditNote(noteOrder(o, "200"), dec("50"), "again")
	require.Error(t, err)
	assert.Equal(t, "CREDIT_EXCEEDS_ORDER", shared.ErrorCode(err))

	_, err = NewCreditNote(noteOrder(o, "0"), dec("0"), "zero")
	assert.Error(t, err)
	_, err = NewCreditNote(noteOrder(o, "0"), dec("1.005"), "fraction")
	assert.Error(t, err)
	_, err = NewCreditNote(noteOrder(o, "0"), dec("10"), " ")
	assert.Error(t, err)

	// exactly the remaining balance is allowed
	_, err = NewCreditNote(noteOrder(o, "200.70"), dec("20"), "fee refund")
	assert.NoError(t, err)
}

func TestCreditNote_Lifecycle(t *testing.T) {
	o := deliveredOrder(t)
	cn, err := NewCreditNote(noteOrder(o, "0"), dec("50"), "Damaged")
	require.NoError(t, err)

	assert.Error(t, cn.Apply("REF-1"))
	require.NoError(t, cn.Approve(uuid.New()))
	assert.NotNil(t, cn.ApprovedAt)
	assert.Error(t, cn.Approve(uuid.New()))
	require.NoError(t, cn.Apply("UPI-123"))
	assert.Equal(t, CreditNoteStatusApplied, cn.Status)
	assert.Equal(t, "UPI-123", cn.AppliedReference)
	assert.Error(t, cn.Cancel("late"))

	other, err := NewCreditNote(noteOrder(o, "50"), dec("10"), "Missing item")
	require.NoError(t, err)
	assert.Error(t, other.Cancel(""))
	require.NoError(t, other.Cancel("raised by mistake"))
	assert.Equal(t, CreditNoteStatusCancelled, other.Status)
}

func TestSupplyTypeFor(t *testing.T) {
	assert.Equal(t, SupplyIntraState, SupplyTypeFor("29", "29"))
	assert.Equal(t, SupplyInterState, SupplyTypeFor("29", "27"))
	assert.Equal(t, SupplyIntraState, SupplyTypeFor("", "27"))
}

func TestBuildSaleEntries_IntraState(t *testing.T) {
	o := deliveredOrder(t)
	entries := BuildSaleEntries(o, "29", time.UTC)
	require.Len(t, entries, 2)

	five := entries[0]
	assert.Equal(t, LedgerSourceSale, five.SourceType)
	assert.Equal(t, o.ID, five.SourceID)
	assert.Equal(t, o.OrderNumber, five.InvoiceNumber)
	assert.Equal(t, PeriodOf(o.DeliveredAt.In(time.UTC)), five.Period)
	assert.Equal(t, "0902", five.HSNCode)
	assert.True(t, five.TaxableValue.Equal(dec("90")))
	assert.True(t, five.CGST.Equal(dec("2.25")))
	assert.True(t, five.SGST.Equal(dec("2.25")))
	assert.True(t, five.IGST.IsZero())

	eighteen := entries[1]
	assert.True(t, eighteen.TotalTax.Equal(dec("16.2")))
	assert.True(t, eighteen.CGST.Add(eighteen.SGST).Equal(eighteen.TotalTax))
}

func TestBuildSaleEntries_InterState(t *testing.T) {
	o := deliveredOrder(t)
	entries := BuildSaleEntries(o, "27", time.UTC)
	for _, e := range entries {
		assert.Equal(t, SupplyInterState, e.SupplyType)
		assert.True(t, e.CGST.IsZero())
		assert.True(t, e.IGST.Equal(e.TotalTax))
	}
}

func TestBuildCreditNoteEntries(t *testing.T) {
	o := deliveredOrder(t)
	cn, err := NewCreditNote(noteOrder(o, "0"), dec("50"), "Damaged")
	require.NoError(t, err)
	require.NoError(t, cn.Approve(uuid.New()))
	require.NoError(t, cn.Apply("REF"))

	entries := BuildCreditNoteEntries(cn, o, "29", time.UTC)
	require.Len(t, entries, 2)

	gross := decimal.Zero
	for _, e := range entries {
		assert.Equal(t, LedgerSourceCreditNote, e.SourceType)
		assert.Equal(t, cn.ID, e.SourceID)
		assert.True(t, e.TotalTax.IsNegative())
		assert.True(t, e.CGST.Add(e.SGST).Equal(e.TotalTax))
		gross = gross.Add(e.TaxableValue).Add(e.TotalTax)
	}
	assert.True(t, gross.Equal(dec("-50")), gross.String())
	assert.True(t, entries[0].TotalTax.Equal(dec("-1.12")), entries[0].TotalTax.String())
}

func TestBuildCreditNoteEntries_CapsAtGoodsValue(t *testing.T) {
	o := deliveredOrder(t)
	cn, err := NewCreditNote(noteOrder(o, "0"), o.GrandTotal, "Full refund")
	require.NoError(t, err)

	gross := decimal.Zero
	for _, e := range BuildCreditNoteEntries(cn, o, "29", time.UTC) {
		gross = gross.Add(e.TaxableValue).Add(e.TotalTax)
	}
	assert.True(t, gross.Equal(dec("-200.7")), gross.String())
}

func TestGSTSummary(t *testing.T) {
	o := deliveredOrder(t)
	sale := BuildSaleEntries(o, "29", time.UTC)
	period := sale[0].Period

	s, err := NewGSTSummary(o.StoreID, period)
	require.NoError(t, err)

	foreign := sale[0]
	foreign.StoreID = uuid.New()
	require.NoError(t, s.Recompute(append(sale, foreign)))
	assert.Equal(t, 2, s.SaleEntries)
	assert.True(t, s.TaxableValue.Equal(dec("180")))
	assert.True(t, s.TotalTax.Equal(dec("20.7")))
	assert.True(t, s.CGST.Add(s.SGST).Equal(s.TotalTax))

	require.NoError(t, s.File(uuid.New()))
	assert.Equal(t, GSTSummaryStatusFiled, s.Status)
	err = s.Recompute(sale)
	require.Error(t, err)
	assert.Equal(t, "SUMMARY_FILED", shared.ErrorCode(err))
	assert.Error(t, s.File(uuid.New()))

	_, err = NewGSTSummary(o.StoreID, "2026-13")
	assert.Error(t, err)
}
