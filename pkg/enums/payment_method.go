package enums

import "fmt"

// PaymentMethod describes how a customer intends to settle an order. Anything
// other than CASH goes through the hosted payment invoice flow.
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodQRIS       PaymentMethod = "QRIS"
	PaymentMethodEWallet    PaymentMethod = "E_WALLET"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodQRIS,
	PaymentMethodEWallet,
	PaymentMethodCreditCard,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresInvoice reports whether the method settles through the hosted
// payment gateway page.
func (p PaymentMethod) RequiresInvoice() bool {
	return p != PaymentMethodCash
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
