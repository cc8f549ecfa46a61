// Package handler содержит HTTP-обработчики API сервиса оформления заказа.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/checkout-system/internal/catalog"
	"github.com/mmeshcher/checkout-system/internal/middleware"
	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/wizard"
)

// Catalog определяет контракт каталога товаров, используемый HTTP-обработчиками.
type Catalog interface {
	GetProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

// Handler реализует HTTP-обработчики API сервиса оформления заказа.
type Handler struct {
	manager           *wizard.Manager
	catalog           Catalog
	logger            *zap.Logger
	sessionMiddleware *middleware.SessionMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(manager *wizard.Manager, cat Catalog, logger *zap.Logger, session *middleware.SessionMiddleware) *Handler {
	return &Handler{
		manager:           manager,
		catalog:           cat,
		logger:            logger,
		sessionMiddleware: session,
	}
}

type openCheckoutRequest struct {
	ProductID string `json:"product_id"`
}

type validationErrorsResponse struct {
	Errors map[string]string `json:"errors"`
}

// OpenCheckout открывает сессию оформления заказа для указанного товара.
// Идентификатор из существующего cookie переиспользуется, чтобы черновик
// пережил перезагрузку страницы.
func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	var req openCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("resolve product error", zap.Error(err), zap.String("productID", req.ProductID))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	sessionID, ok := h.sessionMiddleware.SessionIDFromCookie(r)
	if !ok {
		sessionID = wizard.NewSessionID()
	}

	session := h.manager.Open(r.Context(), sessionID, *product)

	h.sessionMiddleware.SetSessionCookie(w, sessionID)
	h.writeSnapshot(w, session, http.StatusCreated)
}

// GetCheckout возвращает текущее состояние сессии оформления заказа.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// ResetCheckout сбрасывает черновик к значениям по умолчанию и удаляет его из хранилища.
func (h *Handler) ResetCheckout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Reset(r.Context()); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// SelectMethod подтверждает выбор способа оплаты.
func (h *Handler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.SelectMethod(); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// UpdateCard сохраняет черновик данных карты без валидации.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var card model.CardData
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := session.UpdateCard(r.Context(), card); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// SubmitCard проверяет данные карты и переводит мастер на шаг доставки.
func (h *Handler) SubmitCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var card model.CardData
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	errs, err := session.SubmitCard(r.Context(), card)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	if len(errs) > 0 {
		h.writeValidationErrors(w, errs)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// UpdateDelivery сохраняет черновик данных доставки без валидации.
func (h *Handler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var delivery model.DeliveryData
	if err := json.NewDecoder(r.Body).Decode(&delivery); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := session.UpdateDelivery(r.Context(), delivery); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// SubmitDelivery проверяет данные доставки и переводит мастер на шаг подтверждения.
func (h *Handler) SubmitDelivery(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var delivery model.DeliveryData
	if err := json.NewDecoder(r.Body).Decode(&delivery); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	errs, err := session.SubmitDelivery(r.Context(), delivery)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	if len(errs) > 0 {
		h.writeValidationErrors(w, errs)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetQuantity устанавливает количество товара с приведением к остатку на складе.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := session.SetQuantity(r.Context(), req.Quantity); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

type installmentsRequest struct {
	Installments int `json:"installments"`
}

// SetInstallments устанавливает количество платежей рассрочки.
func (h *Handler) SetInstallments(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req installmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := session.SetInstallments(r.Context(), req.Installments); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// Back возвращает мастер на предыдущий шаг.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Back(); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// Confirm отправляет транзакцию платёжному сервису и возвращает её итог.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if _, err := session.Confirm(r.Context()); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// Retry возвращает мастер с шага результата на шаг подтверждения.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Retry(); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// Finalize завершает успешное оформление и закрывает сессию.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Finalize(r.Context()); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// Cancel закрывает мастер без завершения оформления.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Cancel(); err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, session, http.StatusOK)
}

// GetProducts возвращает список товаров каталога.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetProducts(r.Context())
	if err != nil {
		h.logger.Error("get products error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}

	session, ok := h.manager.Get(sessionID)
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return nil, false
	}

	return session, true
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, session *wizard.Session, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(session.Snapshot()); err != nil {
		h.logger.Error("encode snapshot error", zap.Error(err))
	}
}

func (h *Handler) writeValidationErrors(w http.ResponseWriter, errs map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(validationErrorsResponse{Errors: errs}); err != nil {
		h.logger.Error("encode validation errors", zap.Error(err))
	}
}

func (h *Handler) writeWizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wizard.ErrInvalidStep), errors.Is(err, wizard.ErrProcessing):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, wizard.ErrInvalidInstallments):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("wizard error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
