package validation

import "strings"

// DefaultCountry is applied when the checkout form leaves country blank.
const DefaultCountry = "United States"

// AddItemRequest is the payload for POST /cart/items. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
	Quantity  int `json:"quantity,omitempty" validate:"omitempty,min=1,max=10"`
}

// Count returns how many times the product should be added.
func (r AddItemRequest) Count() int {
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}

// SetQuantityRequest is the payload for PUT /cart/items/:id. Zero or negative removes the line,
// so only presence is required.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CheckoutRequest is the checkout form: contact, shipping address and payment card.
type CheckoutRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,max=32"`

	Address string `json:"address" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	ZipCode string `json:"zipCode" validate:"required,max=20"`
	Country string `json:"country" validate:"max=100"`

	CardNumber string `json:"cardNumber" validate:"required,credit_card"`
	CardExpiry string `json:"cardExpiry" validate:"required,card_expiry"`
	CardCVC    string `json:"cardCVC" validate:"required,numeric,min=3,max=4"`
}

// Normalize trims input, strips card number spacing and fills in the default country.
// Call it before validating.
func (r *CheckoutRequest) Normalize() {
	fields := []*string{
		&r.FirstName, &r.LastName, &r.Email, &r.Phone,
		&r.Address, &r.City, &r.State, &r.ZipCode, &r.Country,
		&r.CardExpiry, &r.CardCVC,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	r.CardNumber = strings.Map(func(c rune) rune {
		if c == ' ' || c == '-' {
			return -1
		}
		return c
	}, r.CardNumber)
	if r.Country == "" {
		r.Country = DefaultCountry
	}
}

// CardLast4 returns the last four digits of the card number.
func (r CheckoutRequest) CardLast4() string {
	if len(r.CardNumber) <= 4 {
		return r.CardNumber
	}
	return r.CardNumber[len(r.CardNumber)-4:]
}

// ContactRequest is the payload for POST /contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}
