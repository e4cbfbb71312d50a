package plan

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/auditcase/internal/calendar"
)

// Money is an amount in cents rendered as a two-decimal JSON number.
type Money int64

func (m Money) Cents() int64 {
	return int64(m)
}

func (m Money) String() string {
	return decimal.New(int64(m), -2).StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	d, err := decimal.NewFromString(string(bytes.Trim(b, `"`)))
	if err != nil {
		return fmt.Errorf("parsing money %s: %w", b, err)
	}

	*m = Money(d.Shift(2).Round(0).IntPart())

	return nil
}

// Date is a calendar date rendered as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: calendar.Day(t)}
}

func (d Date) String() string {
	return d.Format(calendar.Layout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("parsing date %s: %w", b, err)
	}

	t, err := calendar.Parse(s)
	if err != nil {
		return fmt.Errorf("parsing date %s: %w", b, err)
	}

	d.Time = t

	return nil
}

// Ratio is a decimal fraction rendered as a JSON number.
type Ratio struct {
	decimal.Decimal
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	d, err := decimal.NewFromString(string(bytes.Trim(b, `"`)))
	if err != nil {
		return fmt.Errorf("parsing ratio %s: %w", b, err)
	}

	r.Decimal = d

	return nil
}
