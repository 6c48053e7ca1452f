package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GSTSummaryStatus is the filing state of a period summary
type GSTSummaryStatus string

const (
	GSTSummaryStatusDraft GSTSummaryStatus = "DRAFT"
	GSTSummaryStatusFiled GSTSummaryStatus = "FILED"
)

// GSTSummary totals a store's ledger for one return period
type GSTSummary struct {
	shared.BaseAggregateRoot
	StoreID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_gst_summary_store_period,priority:1"`
	Period            string           `gorm:"type:varchar(7);not null;uniqueIndex:idx_gst_summary_store_period,priority:2"`
	TaxableValue      decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	CGST              decimal.Decimal  `gorm:"column:cgst;type:decimal(14,2);not null;default:0"`
	SGST              decimal.Decimal  `gorm:"column:sgst;type:decimal(14,2);not null;default:0"`
	IGST              decimal.Decimal  `gorm:"column:igst;type:decimal(14,2);not null;default:0"`
	TotalTax          decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	SaleEntries       int              `gorm:"not null;default:0"`
	CreditNoteEntries int              `gorm:"not null;default:0"`
	Status            GSTSummaryStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	GeneratedAt       time.Time        `gorm:"not null"`
	FiledAt           *time.Time
	FiledBy           *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (GSTSummary) TableName() string {
	return "gst_summaries"
}

// NewGSTSummary creates an empty draft summary
func NewGSTSummary(storeID uuid.UUID, period string) (*GSTSummary, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if !ValidatePeriod(period) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period must be in YYYY-MM format")
	}
	return &GSTSummary{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StoreID:           storeID,
		Period:            period,
		TaxableValue:      decimal.Zero,
		CGST:              decimal.Zero,
		SGST:              decimal.Zero,
		IGST:              decimal.Zero,
		TotalTax:          decimal.Zero,
		Status:            GSTSummaryStatusDraft,
	}, nil
}

// Recompute replaces the totals with those of the given entries
func (s *GSTSummary) Recompute(entries []GSTLedgerEntry) error {
	if s.Status == GSTSummaryStatusFiled {
		return shared.NewDomainError("SUMMARY_FILED", "A filed GST summary cannot be regenerated")
	}
	s.TaxableValue = decimal.Zero
	s.CGST = decimal.Zero
	s.SGST = decimal.Zero
	s.IGST = decimal.Zero
	s.TotalTax = decimal.Zero
	s.SaleEntries = 0
	s.CreditNoteEntries = 0

	for _, e := range entries {
		if e.StoreID != s.StoreID || e.Period != s.Period {
			continue
		}
		s.TaxableValue = s.TaxableValue.Add(e.TaxableValue)
		s.CGST = s.CGST.Add(e.CGST)
		s.SGST = s.SGST.Add(e.SGST)
		s.IGST = s.IGST.Add(e.IGST)
		s.TotalTax = s.TotalTax.Add(e.TotalTax)
		switch e.SourceType {
		case LedgerSourceSale:
			s.SaleEntries++
		case LedgerSourceCreditNote:
			s.CreditNoteEntries++
		}
	}

	now := time.Now()
	s.GeneratedAt = now
	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewGSTSummaryGeneratedEvent(s))
	return nil
}

// File locks the summary
func (s *GSTSummary) File(userID uuid.UUID) error {
	if s.Status == GSTSummaryStatusFiled {
		return shared.NewDomainError("SUMMARY_FILED", "GST summary is already filed")
	}
	now := time.Now()
	s.Status = GSTSummaryStatusFiled
	s.FiledAt = &now
	s.FiledBy = &userID
	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewGSTSummaryFiledEvent(s))
	return nil
}
