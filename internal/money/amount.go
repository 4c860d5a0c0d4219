package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is the display prefix used for every price on the storefront.
const Symbol = "₹"

var ErrInvalidPrice = errors.New("invalid price")

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// Amount is a price in whole rupees.
type Amount int64

func (a Amount) String() string {
	return Symbol + strconv.FormatInt(int64(a), 10)
}

// Upcharge renders an amount as an add-on label, e.g. "+₹100".
func (a Amount) Upcharge() string {
	return "+" + a.String()
}

// Parse reads display text such as "₹199" or "₹ 199.00". Fractional rupees
// are truncated.
func Parse(text string) (Amount, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, Symbol)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}
	return fromDecimal(d, text)
}

// fromDecimal truncates d to whole rupees, refusing values an Amount cannot
// hold.
func fromDecimal(d decimal.Decimal, text string) (Amount, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %q", ErrInvalidPrice, text)
	}
	d = d.Truncate(0)
	if d.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: amount %q out of range", ErrInvalidPrice, text)
	}
	return Amount(d.IntPart()), nil
}

// Sum adds amounts together.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(a), 10)), nil
}

// UnmarshalJSON accepts a number or display text ("₹199"). Negative,
// out-of-range and unparseable values fail with ErrInvalidPrice.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPrice, err)
		}
		v, err := Parse(text)
		if err != nil {
			return err
		}
		*a = v
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	v, err := fromDecimal(d, n.String())
	if err != nil {
		return err
	}
	*a = v
	return nil
}
