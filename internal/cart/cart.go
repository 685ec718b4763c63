package cart

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrUnknownLine        = errors.New("no line item for barcode")
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
)

// PaymentMode is the settlement method recorded on the bill.
type PaymentMode string

const (
	PayCash PaymentMode = "CASH"
	PayUPI  PaymentMode = "UPI"
	PayCard PaymentMode = "CARD"
)

func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(strings.ToUpper(strings.TrimSpace(s))) {
	case PayCash:
		return PayCash, nil
	case PayUPI:
		return PayUPI, nil
	case PayCard:
		return PayCard, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMode, s)
	}
}

// Product is a resolved barcode lookup, priced in minor currency units.
type Product struct {
	Barcode   string
	Name      string
	UnitPrice int64
}

// LineItem is one distinct product in the cart. Quantity never drops below 1;
// the unit price is frozen at first scan and later price changes on the
// server do not touch existing lines.
type LineItem struct {
	Barcode   string
	Name      string
	UnitPrice int64
	Quantity  int
}

func (l LineItem) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart holds the line items of one in-progress bill, in insertion order, with
// at most one line per barcode.
type Cart struct {
	billNo string
	mode   PaymentMode
	items  []LineItem
}

func New() *Cart {
	return &Cart{
		billNo: NewBillNo(),
		mode:   PayCash,
	}
}

// NewBillNo generates a bill identifier for one checkout session.
func NewBillNo() string {
	return fmt.Sprintf("BILL-%d", time.Now().UnixMilli())
}

func (c *Cart) BillNo() string { return c.billNo }

func (c *Cart) PaymentMode() PaymentMode { return c.mode }

func (c *Cart) SetPaymentMode(mode PaymentMode) error {
	parsed, err := ParsePaymentMode(string(mode))
	if err != nil {
		return err
	}
	c.mode = parsed
	return nil
}

func (c *Cart) Empty() bool { return len(c.items) == 0 }

func (c *Cart) Size() int { return len(c.items) }

// ApplyScan merges a resolved product into the cart: an existing line for the
// barcode gets a quantity increment, otherwise a new line is appended with
// quantity 1 at the product's current price. Increments commute, so two
// lookups resolving out of order still land on the same final quantity.
func (c *Cart) ApplyScan(p Product) LineItem {
	for i := range c.items {
		if c.items[i].Barcode == p.Barcode {
			c.items[i].Quantity++
			return c.items[i]
		}
	}

	line := LineItem{
		Barcode:   p.Barcode,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  1,
	}
	c.items = append(c.items, line)
	return line
}

// SetQuantity clamps qty to a minimum of 1. Dropping a line happens only
// through RemoveLine, never by decrementing to zero.
func (c *Cart) SetQuantity(barcode string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	for i := range c.items {
		if c.items[i].Barcode == barcode {
			c.items[i].Quantity = qty
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownLine, barcode)
}

func (c *Cart) RemoveLine(barcode string) error {
	for i := range c.items {
		if c.items[i].Barcode == barcode {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownLine, barcode)
}

// Line returns the item at a 1-based position, for the register's numbered
// list commands.
func (c *Cart) Line(pos int) (LineItem, bool) {
	if pos < 1 || pos > len(c.items) {
		return LineItem{}, false
	}
	return c.items[pos-1], true
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Total is recomputed from the lines on every call, so it always equals
// the exact sum of unit price times quantity.
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// Reset empties the cart and starts a fresh bill. Called only after a
// confirmed successful submit.
func (c *Cart) Reset() {
	c.items = nil
	c.billNo = NewBillNo()
}

// PriceFromRupees converts a wire price (rupees as a JSON number) into minor
// units once, at the client boundary.
func PriceFromRupees(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

// FormatPrice renders minor units with the currency symbol, dropping the
// fraction when it is zero (thermal receipts print whole rupees as "₹40").
func FormatPrice(symbol string, paise int64) string {
	// Integer division truncates toward zero, so the sign is pulled out
	// first; otherwise -950 would render as "-9.-50".
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	if paise%100 == 0 {
		return fmt.Sprintf("%s%s%d", sign, symbol, paise/100)
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, paise/100, paise%100)
}
