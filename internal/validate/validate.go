package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"marketflow/internal/domain"
)

// MaxQuantity caps a single cart line set through the API.
const MaxQuantity = 99

var (
	// US ZIP: 5 digits or ZIP+4
	reZIP   = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'&\-]{1,50}$`)
	reSlug  = regexp.MustCompile(`^[a-z0-9&\-]{1,64}$`)
	reCard  = regexp.MustCompile(`^[0-9]{12,19}$`)
	reExp   = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	reCVV   = regexp.MustCompile(`^[0-9]{3,4}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

func ZIP(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reZIP.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length.
// An empty query is valid and searches for nothing.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID parses a positive integer identifier (product, category, bundle).
func ID(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// OrderID parses an order id, which is a millisecond timestamp.
func OrderID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Slug validates a category slug as produced by domain.Slugify.
func Slug(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reSlug.MatchString(s)
}

// Quantity accepts any integer up to MaxQuantity. Zero and negatives are valid:
// the cart treats them as removal.
func Quantity(n int) (int, error) {
	if n > MaxQuantity {
		return 0, fmt.Errorf("%w: %d exceeds %d", domain.ErrInvalidQuantity, n, MaxQuantity)
	}
	return n, nil
}

// Price parses an optional non-negative price filter. Empty and "0" mean no bound.
func Price(s string) (decimal.NullDecimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, false
	}
	if d.IsZero() {
		return decimal.NullDecimal{}, true
	}
	return decimal.NewNullDecimal(d), true
}

// CardNumber strips spaces and dashes and checks the digit count.
func CardNumber(s string) (string, bool) {
	s = strings.NewReplacer(" ", "", "-", "").Replace(s)
	return s, reCard.MatchString(s)
}

// Expiry checks an MM/YY card expiry.
func Expiry(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reExp.MatchString(s)
}

func CVV(s string) bool { return reCVV.MatchString(strings.TrimSpace(s)) }

// Field pairs a form field name with its submitted value.
type Field struct {
	Name  string
	Value string
}

// Missing lists, in order, the fields whose value is blank.
func Missing(fields ...Field) []string {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			out = append(out, f.Name)
		}
	}
	return out
}
