// Package wizard реализует пошаговую машину состояний оформления заказа.
package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/persistence"
	"github.com/mmeshcher/checkout-system/internal/pricing"
	"github.com/mmeshcher/checkout-system/internal/store"
	"github.com/mmeshcher/checkout-system/internal/transaction"
	"github.com/mmeshcher/checkout-system/internal/validation"
)

// Step обозначает шаг мастера оформления заказа.
type Step string

const (
	StepMethod   Step = "method"
	StepCard     Step = "card"
	StepDelivery Step = "delivery"
	StepSummary  Step = "summary"
	StepResult   Step = "result"
	StepClosed   Step = "closed"
)

// ErrInvalidStep возвращается, если операция недопустима на текущем шаге.
var (
	ErrInvalidStep = errors.New("operation not allowed at current step")
	// ErrProcessing возвращается при попытке подтвердить оплату во время обработки транзакции.
	ErrProcessing = errors.New("transaction already in progress")
	// ErrInvalidInstallments возвращается для недопустимого количества платежей рассрочки.
	ErrInvalidInstallments = errors.New("invalid installments value")
)

var allowedInstallments = map[int]bool{1: true, 2: true, 3: true, 6: true, 12: true}

// TransactionClient описывает контракт платёжного сервиса, используемый мастером.
type TransactionClient interface {
	CreateTransaction(ctx context.Context, req transaction.Request) (*transaction.Response, error)
}

// Session ведёт одно оформление заказа: шаги, черновик и итог транзакции.
// Черновик сбрасывается через мост персистентности после каждой мутации.
type Session struct {
	mu sync.Mutex

	id      string
	product model.Product

	step       Step
	processing bool
	result     *model.TransactionResult

	store    *store.CheckoutStore
	bridge   *persistence.Bridge
	txClient TransactionClient

	onSuccess func(sessionID string, product model.Product)
	touchedAt time.Time
}

// Snapshot содержит наблюдаемое состояние сессии для HTTP-слоя.
type Snapshot struct {
	Step       Step                     `json:"step"`
	Processing bool                     `json:"processing"`
	Product    model.Product            `json:"product"`
	State      model.CheckoutState      `json:"state"`
	Quote      pricing.Quote            `json:"quote"`
	Result     *model.TransactionResult `json:"result,omitempty"`
}

// Snapshot возвращает срез текущего состояния сессии.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.State()

	return Snapshot{
		Step:       s.step,
		Processing: s.processing,
		Product:    s.product,
		State:      state,
		Quote:      pricing.NewQuote(s.product.Price, state.Quantity),
		Result:     s.result,
	}
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) touch() {
	s.touchedAt = time.Now()
}

// SelectMethod подтверждает выбор способа оплаты и открывает шаг ввода карты.
func (s *Session) SelectMethod() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step != StepMethod {
		return ErrInvalidStep
	}
	s.step = StepCard
	return nil
}

// UpdateCard сохраняет данные карты в черновик без валидации.
// Платёжная система пересчитывается при каждом изменении номера,
// черновик с нераспознанной системой допустим.
func (s *Session) UpdateCard(ctx context.Context, card model.CardData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step == StepClosed {
		return ErrInvalidStep
	}

	card.CardholderName = validation.NormalizeCardHolder(card.CardholderName)
	card.CardType = validation.DetectCardNetwork(card.CardNumber)

	s.store.SetCard(card)
	s.bridge.Flush(ctx)
	return nil
}

// SubmitCard проверяет данные карты и переходит к шагу доставки.
// При ошибках валидации шаг не меняется, возвращается карта ошибок по полям.
func (s *Session) SubmitCard(ctx context.Context, card model.CardData) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step != StepCard {
		return nil, ErrInvalidStep
	}

	card.CardholderName = validation.NormalizeCardHolder(card.CardholderName)
	card.CardType = validation.DetectCardNetwork(card.CardNumber)

	if errs := validation.ValidateCard(card, time.Now()); len(errs) > 0 {
		return errs, nil
	}

	s.store.SetCard(card)
	s.bridge.Flush(ctx)
	s.step = StepDelivery
	return nil, nil
}

// UpdateDelivery сохраняет данные доставки в черновик без валидации.
func (s *Session) UpdateDelivery(ctx context.Context, delivery model.DeliveryData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step == StepClosed {
		return ErrInvalidStep
	}

	s.store.SetDelivery(delivery)
	s.bridge.Flush(ctx)
	return nil
}

// SubmitDelivery проверяет данные доставки и переходит к шагу подтверждения.
func (s *Session) SubmitDelivery(ctx context.Context, delivery model.DeliveryData) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step != StepDelivery {
		return nil, ErrInvalidStep
	}

	if errs := validation.ValidateDelivery(delivery); len(errs) > 0 {
		return errs, nil
	}

	s.store.SetDelivery(delivery)
	s.bridge.Flush(ctx)
	s.step = StepSummary
	return nil, nil
}

// Back возвращает мастер на предыдущий шаг.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch s.step {
	case StepCard:
		s.step = StepMethod
	case StepDelivery:
		s.step = StepCard
	case StepSummary:
		if s.processing {
			return ErrProcessing
		}
		s.step = StepDelivery
	default:
		return ErrInvalidStep
	}
	return nil
}

// SetQuantity устанавливает количество товара, приводя его к диапазону склада.
func (s *Session) SetQuantity(ctx context.Context, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step == StepClosed {
		return ErrInvalidStep
	}

	s.store.SetQuantity(pricing.ClampQuantity(quantity, s.product.Stock))
	s.bridge.Flush(ctx)
	return nil
}

// SetInstallments устанавливает количество платежей рассрочки.
func (s *Session) SetInstallments(ctx context.Context, installments int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step == StepClosed {
		return ErrInvalidStep
	}
	if !allowedInstallments[installments] {
		return ErrInvalidInstallments
	}

	s.store.SetInstallments(installments)
	s.bridge.Flush(ctx)
	return nil
}

// Confirm отправляет транзакцию платёжному сервису и переходит к шагу результата.
// Пока транзакция в обработке, повторное подтверждение и возврат назад заблокированы.
// Ответ сервиса копируется в результат без изменений, включая DECLINED;
// сбой запроса превращается в результат со статусом ERROR.
func (s *Session) Confirm(ctx context.Context) (*model.TransactionResult, error) {
	s.mu.Lock()
	if s.step != StepSummary {
		s.mu.Unlock()
		return nil, ErrInvalidStep
	}
	if s.processing {
		s.mu.Unlock()
		return nil, ErrProcessing
	}
	s.processing = true
	s.touch()
	req := s.buildRequest()
	s.mu.Unlock()

	resp, err := func() (*transaction.Response, error) {
		defer func() {
			s.mu.Lock()
			s.processing = false
			s.mu.Unlock()
		}()
		return s.txClient.CreateTransaction(ctx, req)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var result model.TransactionResult
	if err != nil {
		message := err.Error()
		if message == "" {
			message = transaction.DefaultErrorMessage
		}
		result = model.TransactionResult{
			Status:  model.TransactionStatusError,
			Message: message,
		}
	} else {
		result = model.TransactionResult{
			Status:  model.TransactionStatus(resp.Status),
			Message: resp.StatusMessage,
		}
	}

	s.result = &result
	s.step = StepResult
	return &result, nil
}

func (s *Session) buildRequest() transaction.Request {
	state := s.store.State()

	expMonth := state.CardData.ExpiryDate
	expYear := ""
	if idx := strings.Index(state.CardData.ExpiryDate, "/"); idx >= 0 {
		expMonth = state.CardData.ExpiryDate[:idx]
		expYear = state.CardData.ExpiryDate[idx+1:]
	}

	return transaction.Request{
		InfoCard: transaction.InfoCard{
			CardNumber: validation.NormalizeCardNumber(state.CardData.CardNumber),
			CVC:        state.CardData.CVV,
			ExpMonth:   expMonth,
			ExpYear:    expYear,
			CardHolder: state.CardData.CardholderName,
		},
		PaymentMethod: transaction.PaymentMethod{
			Type:         "CARD",
			Installments: state.Installments,
		},
		Amount:    pricing.NewQuote(s.product.Price, state.Quantity).AmountCents(),
		Reference: s.product.Name,
		ProductID: s.product.ID,
		Quantity:  state.Quantity,
	}
}

// Retry возвращает мастер с шага результата на шаг подтверждения.
// Черновик при этом сохраняется без изменений.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step != StepResult {
		return ErrInvalidStep
	}
	if s.result != nil && s.result.Status == model.TransactionStatusApproved {
		return ErrInvalidStep
	}

	s.step = StepSummary
	return nil
}

// Finalize завершает успешное оформление: уведомляет подписчика, очищает
// черновик и долговременное хранилище и закрывает сессию. Данные карты
// не должны переживать завершённую покупку.
func (s *Session) Finalize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepResult {
		return ErrInvalidStep
	}
	if s.result == nil || s.result.Status != model.TransactionStatusApproved {
		return ErrInvalidStep
	}

	if s.onSuccess != nil {
		s.onSuccess(s.id, s.product)
	}

	s.store.Reset()
	s.bridge.Clear(ctx)
	s.step = StepClosed
	return nil
}

// Cancel закрывает мастер на любом шаге. Черновик остаётся в хранилище.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepClosed {
		return ErrInvalidStep
	}
	if s.processing {
		return ErrProcessing
	}

	s.step = StepClosed
	return nil
}

// Reset возвращает черновик к значениям по умолчанию и удаляет его из хранилища.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.step == StepClosed {
		return ErrInvalidStep
	}

	s.store.Reset()
	s.bridge.Clear(ctx)
	s.step = StepMethod
	s.result = nil
	return nil
}
