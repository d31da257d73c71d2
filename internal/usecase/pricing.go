package usecase

import "math"

const (
	taxRate         = 0.08
	shippingFee     = 9.99
	freeShippingMin = 50.00

	//1明細あたりの数量上限
	maxLineQuantity = 10
)

// セント境界で四捨五入（half-up）。金額は確定前に各項目を独立に丸める。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// subtotalから税・送料・合計を確定する。4つとも独立に丸めてから合算する。
func computeTotals(subtotal float64) (sub, tax, shipping, total float64) {
	sub = round2(subtotal)
	tax = round2(sub * taxRate)
	if sub >= freeShippingMin {
		shipping = 0
	} else {
		shipping = shippingFee
	}
	total = round2(sub + tax + shipping)
	return sub, tax, shipping, total
}
