package order

import (
	"sort"

	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TaxBucket groups order lines that share a GST rate
type TaxBucket struct {
	GSTRate decimal.Decimal
	// HSNCode is set when every line in the bucket has the same code
	HSNCode      string
	TaxableValue decimal.Decimal
	Tax          decimal.Decimal
}

// Gross is the GST-inclusive value of the bucket
func (b TaxBucket) Gross() decimal.Decimal {
	return b.TaxableValue.Add(b.Tax)
}

// TaxBuckets splits the goods value of the order by GST rate, net of discount.
// Buckets are ordered by ascending rate.
func (o *Order) TaxBuckets() []TaxBucket {
	goodsDiscount := valueobject.MinDecimal(o.DiscountAmount, o.Subtotal)
	byRate := make(map[string]*TaxBucket)
	var keys []string

	for _, it := range o.Items {
		net := it.LineTotal
		if o.Subtotal.IsPositive() && goodsDiscount.IsPositive() {
			net = net.Sub(goodsDiscount.Mul(it.LineTotal).Div(o.Subtotal))
		}
		key := it.GSTRate.String()
		b, ok := byRate[key]
		if !ok {
			b = &TaxBucket{GSTRate: it.GSTRate, HSNCode: it.HSNCode}
			byRate[key] = b
			keys = append(keys, key)
		} else if b.HSNCode != it.HSNCode {
			b.HSNCode = ""
		}
		b.TaxableValue = b.TaxableValue.Add(net.Sub(it.TaxAmount))
		b.Tax = b.Tax.Add(it.TaxAmount)
	}

	buckets := make([]TaxBucket, 0, len(keys))
	for _, k := range keys {
		b := byRate[k]
		b.TaxableValue = valueobject.RoundMoney(b.TaxableValue)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].GSTRate.LessThan(buckets[j].GSTRate)
	})
	return buckets
}
