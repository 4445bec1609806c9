package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

var cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)

// nowFunc is swapped in tests to pin the expiry check.
var nowFunc = time.Now

// New returns a configured validator: field errors are reported under their json names and the
// checkout card checks are registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// format only; whether the card has expired is a struct-level check
	_ = v.RegisterValidation("card_expiry", func(fl validatorv10.FieldLevel) bool {
		return cardExpiryPattern.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})

	return v
}

// checkoutStructValidation rejects cards whose MM/YY expiry month has already passed.
func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)

	m := cardExpiryPattern.FindStringSubmatch(req.CardExpiry)
	if m == nil {
		return
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	// valid through the last day of the expiry month
	expires := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !nowFunc().UTC().Before(expires) {
		sl.ReportError(req.CardExpiry, "cardExpiry", "CardExpiry", "card_not_expired", "")
	}
}
