package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/mmeshcher/checkout-system/internal/model"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail проверяет адрес электронной почты по шаблону local@domain.tld.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPhone проверяет, что номер телефона содержит не менее десяти цифр.
func IsValidPhone(phone string) bool {
	return len(onlyDigits(phone)) >= 10
}

// ValidateCard проверяет данные карты и возвращает сообщения об ошибках по полям.
// Пустой результат означает, что переход к следующему шагу разрешён.
func ValidateCard(card model.CardData, now time.Time) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(card.CardNumber) == "" {
		errs["cardNumber"] = "card number is required"
	} else if !IsValidCardNumber(card.CardNumber) {
		errs["cardNumber"] = "invalid card number"
	}

	if strings.TrimSpace(card.CardholderName) == "" {
		errs["cardholderName"] = "cardholder name is required"
	}

	if strings.TrimSpace(card.ExpiryDate) == "" {
		errs["expiryDate"] = "expiry date is required"
	} else if !IsValidExpiryAt(card.ExpiryDate, now) {
		errs["expiryDate"] = "invalid expiry date: month must be 01-12 and not in the past"
	}

	if strings.TrimSpace(card.CVV) == "" {
		errs["cvv"] = "cvv is required"
	} else if !IsValidCVV(card.CVV) {
		errs["cvv"] = "invalid cvv"
	}

	return errs
}

// ValidateDelivery проверяет данные доставки и возвращает сообщения об ошибках по полям.
func ValidateDelivery(delivery model.DeliveryData) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(delivery.FullName) == "" {
		errs["fullName"] = "full name is required"
	}

	if strings.TrimSpace(delivery.Email) == "" {
		errs["email"] = "email is required"
	} else if !IsValidEmail(delivery.Email) {
		errs["email"] = "invalid email"
	}

	if strings.TrimSpace(delivery.Phone) == "" {
		errs["phone"] = "phone is required"
	} else if !IsValidPhone(delivery.Phone) {
		errs["phone"] = "invalid phone"
	}

	if strings.TrimSpace(delivery.Address) == "" {
		errs["address"] = "address is required"
	}

	if strings.TrimSpace(delivery.City) == "" {
		errs["city"] = "city is required"
	}

	if strings.TrimSpace(delivery.PostalCode) == "" {
		errs["postalCode"] = "postal code is required"
	}

	if strings.TrimSpace(delivery.Country) == "" {
		errs["country"] = "country is required"
	}

	return errs
}
