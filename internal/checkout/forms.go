package checkout

import (
	"strings"
	"unicode"

	"github.com/fjod/go_pizza/internal/domain"
)

// Locations are the restaurants an order can be placed at or picked up from.
var Locations = []string{"Manhattan", "Brooklyn", "Oslo", "Los Angeles"}

type DeliveryForm struct {
	Method    domain.DeliveryMethod `json:"deliveryMethod"`
	FirstName string                `json:"firstName"`
	LastName  string                `json:"lastName"`
	Phone     string                `json:"phone"`
	Email     string                `json:"email"`
	Address   string                `json:"address"`
	Location  string                `json:"location"`
}

// PaymentForm holds the simulated card fields. Values are only masked, never verified.
type PaymentForm struct {
	CardholderName string `json:"cardholderName"`
	CardNumber     string `json:"cardNumber"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
}

func (f PaymentForm) masked() PaymentForm {
	return PaymentForm{
		CardholderName: strings.TrimSpace(f.CardholderName),
		CardNumber:     FormatCardNumber(f.CardNumber),
		ExpiryDate:     FormatExpiry(f.ExpiryDate),
		CVV:            FormatCVV(f.CVV),
	}
}

func validLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

func digits(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == max {
			break
		}
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber keeps up to 16 digits and groups them by four.
func FormatCardNumber(s string) string {
	d := digits(s, 16)
	var groups []string
	for len(d) > 4 {
		groups = append(groups, d[:4])
		d = d[4:]
	}
	if d != "" {
		groups = append(groups, d)
	}
	return strings.Join(groups, " ")
}

// FormatExpiry keeps up to four digits as MM/YY, inserting the slash once two digits are typed.
func FormatExpiry(s string) string {
	d := digits(s, 4)
	if len(d) >= 2 {
		return d[:2] + "/" + d[2:]
	}
	return d
}

func FormatCVV(s string) string {
	return digits(s, 3)
}
