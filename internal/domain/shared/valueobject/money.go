package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rentbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	BRL Currency = "BRL" // Brazilian Real (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = BRL

// IsValid checks if the currency is a supported code
func (c Currency) IsValid() bool {
	switch c {
	case BRL, USD, EUR:
		return true
	}
	return false
}

// Money is a value object representing monetary amounts as integer minor
// units (cents). It is immutable - all operations return new Money instances.
// No operation ever round-trips through an IEEE-754 floating point number.
type Money struct {
	minorUnits int64
	currency   Currency
}

// decimalPattern matches a canonical decimal amount with at most two
// fractional digits, e.g. "1234", "1234.5", "-1234.56".
var decimalPattern = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)

// NewMoney creates Money from integer minor units (cents for BRL)
func NewMoney(minorUnits int64, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, shared.NewParseError(fmt.Sprintf("unsupported currency: %q", currency))
	}
	return Money{minorUnits: minorUnits, currency: currency}, nil
}

// NewMoneyBRL creates Money in BRL from integer minor units
func NewMoneyBRL(minorUnits int64) Money {
	return Money{minorUnits: minorUnits, currency: BRL}
}

// ParseMoney is the canonical parser for monetary input. It accepts both the
// plain decimal form "1234.56" and the localized form "1.234,56" and returns
// a PARSE_ERROR domain error for anything else. Every construction path from
// textual input funnels through here so that identical logical values always
// produce identical representations.
func ParseMoney(value string, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, shared.NewParseError(fmt.Sprintf("unsupported currency: %q", currency))
	}

	s := strings.TrimSpace(value)
	if s == "" {
		return Money{}, shared.NewParseError("amount cannot be empty")
	}

	// Localized form: "." groups thousands, "," separates cents.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	if !decimalPattern.MatchString(s) {
		return Money{}, shared.NewParseError(fmt.Sprintf("malformed amount: %q", value))
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart := s
	centPart := "00"
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		centPart = s[i+1:]
		if len(centPart) == 1 {
			centPart += "0"
		}
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, shared.NewParseError(fmt.Sprintf("amount out of range: %q", value))
	}
	cents, err := strconv.ParseInt(centPart, 10, 64)
	if err != nil {
		return Money{}, shared.NewParseError(fmt.Sprintf("malformed amount: %q", value))
	}

	// ParseInt accepted the integer part, but the shift to minor units can
	// still exceed int64.
	if units > (math.MaxInt64-cents)/100 {
		return Money{}, shared.NewParseError(fmt.Sprintf("amount out of range: %q", value))
	}

	minor := units*100 + cents
	if negative {
		minor = -minor
	}
	return Money{minorUnits: minor, currency: currency}, nil
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{minorUnits: 0, currency: currency}
}

// ZeroBRL returns a zero-value Money in BRL
func ZeroBRL() Money {
	return Zero(BRL)
}

// MinorUnits returns the amount in integer minor units
func (m Money) MinorUnits() int64 {
	return m.minorUnits
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.minorUnits == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.minorUnits > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.minorUnits < 0
}

// Add returns a new Money with the sum of both amounts
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	sum := m.minorUnits + other.minorUnits
	if (other.minorUnits > 0 && sum < m.minorUnits) || (other.minorUnits < 0 && sum > m.minorUnits) {
		return Money{}, fmt.Errorf("money addition overflows int64 minor units")
	}
	return Money{minorUnits: sum, currency: m.currency}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns a new Money with the difference
// Returns error if currencies don't match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	diff := m.minorUnits - other.minorUnits
	if (other.minorUnits < 0 && diff < m.minorUnits) || (other.minorUnits > 0 && diff > m.minorUnits) {
		return Money{}, fmt.Errorf("money subtraction overflows int64 minor units")
	}
	return Money{minorUnits: diff, currency: m.currency}, nil
}

// MultiplyByInt returns a new Money multiplied by an integer factor
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{minorUnits: m.minorUnits * factor, currency: m.currency}
}

// Divide splits the amount into count equal parts using integer division.
// It returns the per-part quotient and the leftover remainder in minor
// units (0 <= remainder < count for non-negative amounts). The caller
// decides who absorbs the remainder.
func (m Money) Divide(count int) (Money, int64, error) {
	if count <= 0 {
		return Money{}, 0, shared.NewValidationError("divisor must be positive")
	}
	n := int64(count)
	quotient := m.minorUnits / n
	remainder := m.minorUnits % n
	if remainder < 0 {
		quotient--
		remainder += n
	}
	return Money{minorUnits: quotient, currency: m.currency}, remainder, nil
}

// Percent returns the given percentage of the amount, rounded half-up to
// the nearest minor unit. The computation stays in exact decimal space.
func (m Money) Percent(percent decimal.Decimal) Money {
	amount := decimal.NewFromInt(m.minorUnits).
		Mul(percent).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return Money{minorUnits: amount.IntPart(), currency: m.currency}
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{minorUnits: -m.minorUnits, currency: m.currency}
}

// Abs returns a new Money with the absolute value
func (m Money) Abs() Money {
	if m.minorUnits < 0 {
		return m.Negate()
	}
	return m
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.minorUnits == other.minorUnits
}

// Compare returns -1, 0 or 1 if m is less than, equal to or greater than
// other. Returns error if currencies don't match.
func (m Money) Compare(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	switch {
	case m.minorUnits < other.minorUnits:
		return -1, nil
	case m.minorUnits > other.minorUnits:
		return 1, nil
	}
	return 0, nil
}

// DecimalString returns the canonical decimal representation, e.g. "1234.56"
func (m Money) DecimalString() string {
	minor := m.minorUnits
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// LocalizedString returns the pt-BR representation, e.g. "1.234,56"
func (m Money) LocalizedString() string {
	minor := m.minorUnits
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	units := strconv.FormatInt(minor/100, 10)

	var b strings.Builder
	b.WriteString(sign)
	lead := len(units) % 3
	if lead > 0 {
		b.WriteString(units[:lead])
	}
	for i := lead; i < len(units); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte('.')
		}
		b.WriteString(units[i : i+3])
	}
	fmt.Fprintf(&b, ",%02d", minor%100)
	return b.String()
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.DecimalString(), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.DecimalString(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler. It routes the amount through
// the canonical parser so that deserialized values are indistinguishable
// from directly constructed ones.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseMoney(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores the amount as integer minor units.
func (m Money) Value() (driver.Value, error) {
	return m.minorUnits, nil
}

// Scan implements sql.Scanner for database retrieval. It scans only the
// minor units; currency defaults to DefaultCurrency if not already set.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.minorUnits = 0
		if m.currency == "" {
			m.currency = DefaultCurrency
		}
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.minorUnits = v
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid minor unit value: %w", err)
		}
		m.minorUnits = n
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
