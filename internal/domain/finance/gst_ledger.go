package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerSourceType identifies the document behind a ledger entry
type LedgerSourceType string

const (
	LedgerSourceSale       LedgerSourceType = "SALE"
	LedgerSourceCreditNote LedgerSourceType = "CREDIT_NOTE"
)

// SupplyType decides how GST is split
type SupplyType string

const (
	SupplyIntraState SupplyType = "INTRA_STATE"
	SupplyInterState SupplyType = "INTER_STATE"
)

// PeriodLayout is the reference layout of a GST return period
const PeriodLayout = "2006-01"

// PeriodOf returns the YYYY-MM period containing t
func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ValidatePeriod checks the YYYY-MM format
func ValidatePeriod(period string) bool {
	_, err := time.Parse(PeriodLayout, period)
	return err == nil
}

// GSTLedgerEntry is one rate bucket of a taxable document.
// Credit note entries carry negative amounts.
type GSTLedgerEntry struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	StoreID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_gst_ledger_store_period,priority:1"`
	Period          string           `gorm:"type:varchar(7);not null;index:idx_gst_ledger_store_period,priority:2"`
	SourceType      LedgerSourceType `gorm:"type:varchar(20);not null;uniqueIndex:idx_gst_ledger_source,priority:1"`
	SourceID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_gst_ledger_source,priority:2"`
	GSTRate         decimal.Decimal  `gorm:"column:gst_rate;type:decimal(5,2);not null;uniqueIndex:idx_gst_ledger_source,priority:3"`
	InvoiceNumber   string           `gorm:"type:varchar(32);not null"`
	TransactionDate time.Time        `gorm:"not null"`
	SupplyType      SupplyType       `gorm:"type:varchar(20);not null"`
	HSNCode         string           `gorm:"column:hsn_code;type:varchar(8)"`
	TaxableValue    decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	CGST            decimal.Decimal  `gorm:"column:cgst;type:decimal(14,2);not null;default:0"`
	SGST            decimal.Decimal  `gorm:"column:sgst;type:decimal(14,2);not null;default:0"`
	IGST            decimal.Decimal  `gorm:"column:igst;type:decimal(14,2);not null;default:0"`
	TotalTax        decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	CreatedAt       time.Time
}

// TableName returns the table name for GORM
func (GSTLedgerEntry) TableName() string {
	return "gst_ledger_entries"
}

// SupplyTypeFor compares the store and delivery state codes.
// Unknown state codes are treated as intra-state.
func SupplyTypeFor(storeStateCode, deliveryStateCode string) SupplyType {
	if storeStateCode != "" && deliveryStateCode != "" && storeStateCode != deliveryStateCode {
		return SupplyInterState
	}
	return SupplyIntraState
}

func newLedgerEntry(storeID uuid.UUID, source LedgerSourceType, sourceID uuid.UUID, invoice string, at time.Time, supply SupplyType, b order.TaxBucket) GSTLedgerEntry {
	e := GSTLedgerEntry{
		ID:              uuid.New(),
		StoreID:         storeID,
		Period:          PeriodOf(at),
		SourceType:      source,
		SourceID:        sourceID,
		GSTRate:         b.GSTRate,
		InvoiceNumber:   invoice,
		TransactionDate: at,
		SupplyType:      supply,
		HSNCode:         b.HSNCode,
		TaxableValue:    valueobject.RoundMoney(b.TaxableValue),
		CGST:            decimal.Zero,
		SGST:            decimal.Zero,
		IGST:            decimal.Zero,
		TotalTax:        valueobject.RoundMoney(b.Tax),
		CreatedAt:       time.Now(),
	}
	if supply == SupplyInterState {
		e.IGST = e.TotalTax
	} else {
		e.CGST = e.TotalTax.Div(decimal.NewFromInt(2)).Round(2)
		e.SGST = e.TotalTax.Sub(e.CGST)
	}
	return e
}

// BuildSaleEntries turns a delivered order into ledger entries, one per GST rate.
// The transaction date is the delivery time in loc.
func BuildSaleEntries(o *order.Order, storeStateCode string, loc *time.Location) []GSTLedgerEntry {
	at := o.UpdatedAt
	if o.DeliveredAt != nil {
		at = *o.DeliveredAt
	}
	at = at.In(loc)
	supply := SupplyTypeFor(storeStateCode, o.DeliveryAddress.StateCode)

	buckets := o.TaxBuckets()
	entries := make([]GSTLedgerEntry, 0, len(buckets))
	for _, b := range buckets {
		entries = append(entries, newLedgerEntry(o.StoreID, LedgerSourceSale, o.ID, o.OrderNumber, at, supply, b))
	}
	return entries
}

// BuildCreditNoteEntries reverses tax for an applied credit note. The note amount
// is spread over the order's rate buckets in proportion to their gross value.
func BuildCreditNoteEntries(cn *CreditNote, o *order.Order, storeStateCode string, loc *time.Location) []GSTLedgerEntry {
	at := cn.UpdatedAt
	if cn.AppliedAt != nil {
		at = *cn.AppliedAt
	}
	at = at.In(loc)
	supply := SupplyTypeFor(storeStateCode, o.DeliveryAddress.StateCode)

	buckets := o.TaxBuckets()
	grossTotal := decimal.Zero
	for _, b := range buckets {
		grossTotal = grossTotal.Add(b.Gross())
	}
	if !grossTotal.IsPositive() {
		return nil
	}

	// credit beyond the goods value (e.g. a refunded delivery fee) carries no GST
	goodsCredit := valueobject.MinDecimal(cn.Amount, grossTotal)

	entries := make([]GSTLedgerEntry, 0, len(buckets))
	remaining := goodsCredit
	for i, b := range buckets {
		share := valueobject.RoundMoney(goodsCredit.Mul(b.Gross()).Div(grossTotal))
		if i == len(buckets)-1 {
			share = remaining
		}
		remaining = remaining.Sub(share)

		tax := valueobject.RoundMoney(valueobject.InclusiveTax(share, b.GSTRate))
		reversed := order.TaxBucket{
			GSTRate:      b.GSTRate,
			HSNCode:      b.HSNCode,
			TaxableValue: share.Sub(tax).Neg(),
			Tax:          tax.Neg(),
		}
		entries = append(entries, newLedgerEntry(cn.StoreID, LedgerSourceCreditNote, cn.ID, cn.NoteNumber, at, supply, reversed))
	}
	return entries
}
