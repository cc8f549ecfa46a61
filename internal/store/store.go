// Package store содержит хранилище черновика оформления заказа в памяти.
package store

import (
	"sync"

	"github.com/mmeshcher/checkout-system/internal/model"
)

// CheckoutStore хранит черновик оформления заказа одной сессии.
// Каждая мутация увеличивает счётчик версии: мост персистентности сравнивает
// версии вместо глубокого сравнения состояния.
type CheckoutStore struct {
	mu      sync.Mutex
	state   model.CheckoutState
	version uint64
}

// NewCheckoutStore создаёт хранилище с состоянием по умолчанию.
func NewCheckoutStore() *CheckoutStore {
	return &CheckoutStore{
		state: model.DefaultCheckoutState(),
	}
}

// State возвращает копию текущего состояния.
func (s *CheckoutStore) State() model.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version возвращает номер версии, увеличиваемый при каждой мутации.
func (s *CheckoutStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// SetCard заменяет данные карты в черновике.
func (s *CheckoutStore) SetCard(card model.CardData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CardData = card
	s.version++
}

// SetDelivery заменяет данные доставки в черновике.
func (s *CheckoutStore) SetDelivery(delivery model.DeliveryData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DeliveryData = delivery
	s.version++
}

// SetInstallments устанавливает количество платежей рассрочки.
func (s *CheckoutStore) SetInstallments(installments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Installments = installments
	s.version++
}

// SetQuantity устанавливает количество товара.
func (s *CheckoutStore) SetQuantity(quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Quantity = quantity
	s.version++
}

// Reset возвращает черновик к состоянию по умолчанию.
func (s *CheckoutStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.DefaultCheckoutState()
	s.version++
}

// Initialize полностью заменяет состояние черновика.
// Используется только при восстановлении из долговременного хранилища.
func (s *CheckoutStore) Initialize(state model.CheckoutState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.version++
}
