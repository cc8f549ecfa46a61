// Package model содержит доменные сущности сервиса оформления заказа.
package model

// CardNetwork обозначает платёжную систему банковской карты.
type CardNetwork string

const (
	CardNetworkVisa       CardNetwork = "visa"
	CardNetworkMastercard CardNetwork = "mastercard"
	CardNetworkUnknown    CardNetwork = "unknown"
)

// CardData содержит данные банковской карты, введённые покупателем.
type CardData struct {
	CardNumber     string      `json:"cardNumber"`
	CardholderName string      `json:"cardholderName"`
	ExpiryDate     string      `json:"expiryDate"`
	CVV            string      `json:"cvv"`
	CardType       CardNetwork `json:"cardType"`
}

// DeliveryData содержит адрес и контакты для доставки заказа.
type DeliveryData struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CheckoutState описывает черновик оформления заказа одной сессии.
type CheckoutState struct {
	CardData     CardData     `json:"cardData"`
	DeliveryData DeliveryData `json:"deliveryData"`
	Installments int          `json:"installments"`
	Quantity     int          `json:"quantity"`
}

// DefaultCheckoutState возвращает состояние оформления заказа по умолчанию.
func DefaultCheckoutState() CheckoutState {
	return CheckoutState{
		CardData: CardData{
			CardType: CardNetworkUnknown,
		},
		Installments: 1,
		Quantity:     1,
	}
}

// TransactionStatus описывает статус транзакции платёжного сервиса.
// Нераспознанные значения передаются дальше без изменений.
type TransactionStatus string

const (
	TransactionStatusApproved TransactionStatus = "APPROVED"
	TransactionStatusDeclined TransactionStatus = "DECLINED"
	TransactionStatusVoided   TransactionStatus = "VOIDED"
	TransactionStatusError    TransactionStatus = "ERROR"
	TransactionStatusPending  TransactionStatus = "PENDING"
)

// TransactionResult содержит итог платёжной операции для шага результата.
type TransactionResult struct {
	Status  TransactionStatus `json:"status"`
	Message string            `json:"message"`
}

// Product описывает товар каталога.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Image       string   `json:"image"`
	Brand       string   `json:"brand"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Colors      []string `json:"colors,omitempty"`
}
