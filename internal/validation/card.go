// Package validation содержит функции валидации и нормализации данных оформления заказа.
package validation

import (
	"strings"
	"time"
	"unicode"

	"github.com/mmeshcher/checkout-system/internal/model"
)

// NormalizeCardNumber удаляет пробелы из номера карты.
func NormalizeCardNumber(number string) string {
	return strings.ReplaceAll(number, " ", "")
}

// IsValidCardNumber проверяет номер карты по длине и алгоритму Луна.
func IsValidCardNumber(number string) bool {
	number = NormalizeCardNumber(number)
	if len(number) < 13 || len(number) > 19 {
		return false
	}

	sum := 0
	double := false

	for i := len(number) - 1; i >= 0; i-- {
		ch := rune(number[i])
		if !unicode.IsDigit(ch) {
			return false
		}
		digit := int(ch - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}

// FormatCardNumber оставляет только цифры (не более 19) и группирует их по четыре.
func FormatCardNumber(raw string) string {
	digits := onlyDigits(raw)
	if len(digits) > 19 {
		digits = digits[:19]
	}

	var b strings.Builder
	for i, ch := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// DetectCardNetwork определяет платёжную систему по префиксу и длине номера.
// Распознаются только Visa и MasterCard, остальные номера считаются неизвестными.
func DetectCardNetwork(number string) model.CardNetwork {
	number = NormalizeCardNumber(number)
	if !allDigits(number) {
		return model.CardNetworkUnknown
	}

	switch {
	case (len(number) == 13 || len(number) == 16) && number[0] == '4':
		return model.CardNetworkVisa
	case len(number) == 16 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return model.CardNetworkMastercard
	default:
		return model.CardNetworkUnknown
	}
}

// IsValidExpiry проверяет срок действия карты в формате MM/YY относительно текущей даты.
func IsValidExpiry(expiry string) bool {
	return IsValidExpiryAt(expiry, time.Now())
}

// IsValidExpiryAt проверяет срок действия карты относительно указанного момента времени.
// Год сравнивается по двум последним цифрам, без определения века.
func IsValidExpiryAt(expiry string, now time.Time) bool {
	if len(expiry) != 5 || expiry[2] != '/' {
		return false
	}
	if !allDigits(expiry[:2]) || !allDigits(expiry[3:]) {
		return false
	}

	month := int(expiry[0]-'0')*10 + int(expiry[1]-'0')
	year := int(expiry[3]-'0')*10 + int(expiry[4]-'0')

	if month < 1 || month > 12 {
		return false
	}

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())

	if year < currentYear {
		return false
	}
	if year == currentYear && month < currentMonth {
		return false
	}

	return true
}

// FormatExpiry оставляет только цифры (не более четырёх) и вставляет разделитель после месяца.
func FormatExpiry(raw string) string {
	digits := onlyDigits(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// IsValidCVV проверяет, что код безопасности состоит из трёх или четырёх цифр.
func IsValidCVV(cvv string) bool {
	if len(cvv) < 3 || len(cvv) > 4 {
		return false
	}
	return allDigits(cvv)
}

// NormalizeCardHolder приводит имя держателя к заглавным латинским буквам и пробелам.
func NormalizeCardHolder(raw string) string {
	upper := strings.ToUpper(raw)

	var b strings.Builder
	for _, ch := range upper {
		if (ch >= 'A' && ch <= 'Z') || ch == ' ' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
