// Package pricing содержит расчёт стоимости заказа и комиссий.
package pricing

import "math"

// Quote содержит разбивку стоимости заказа.
// Базовая комиссия равна цене товара, комиссия за доставку — 10% цены:
// действующая тарифная политика, перенесена без изменений.
type Quote struct {
	Subtotal    float64 `json:"subtotal"`
	BaseFee     float64 `json:"baseFee"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
}

// NewQuote рассчитывает стоимость заказа для указанной цены и количества.
func NewQuote(unitPrice float64, quantity int) Quote {
	subtotal := unitPrice * float64(quantity)
	baseFee := unitPrice
	deliveryFee := unitPrice * 0.1

	return Quote{
		Subtotal:    subtotal,
		BaseFee:     baseFee,
		DeliveryFee: deliveryFee,
		Total:       subtotal + baseFee + deliveryFee,
	}
}

// AmountCents возвращает итоговую сумму в минимальных денежных единицах.
// Платёжный сервис принимает только целочисленные суммы в центах.
func (q Quote) AmountCents() int64 {
	return int64(math.Round(q.Total * 100))
}

// ClampQuantity приводит количество товара к диапазону [1, stock].
func ClampQuantity(quantity, stock int) int {
	if stock < 1 {
		stock = 1
	}
	if quantity < 1 {
		return 1
	}
	if quantity > stock {
		return stock
	}
	return quantity
}
