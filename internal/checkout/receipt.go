package checkout

import (
	"fmt"
	"strings"
	"time"

	"shopterm/internal/cart"
)

// receiptWidth fits a 58mm thermal roll.
const receiptWidth = 32

// Receipt is the human-readable record of one completed sale, built from the
// cart snapshot taken at submit time.
type Receipt struct {
	Store       string
	BillNo      string
	Time        time.Time
	Lines       []cart.LineItem
	Total       int64
	PaymentMode cart.PaymentMode
	currency    string
}

func NewReceipt(store, currency string, c *cart.Cart, at time.Time) Receipt {
	return Receipt{
		Store:       store,
		BillNo:      c.BillNo(),
		Time:        at,
		Lines:       c.Items(),
		Total:       c.Total(),
		PaymentMode: c.PaymentMode(),
		currency:    currency,
	}
}

// Render lays the receipt out for a narrow thermal printer: centered header,
// dashed rules, one name line and one qty x price line per item.
func (r Receipt) Render() string {
	var b strings.Builder

	writeCentered(&b, r.Store)
	writeCentered(&b, "Bill: "+r.BillNo)
	writeCentered(&b, r.Time.Format("02 Jan 2006 15:04:05"))
	writeRule(&b)

	for _, line := range r.Lines {
		b.WriteString(line.Name)
		b.WriteByte('\n')
		fmt.Fprintf(&b, "  %d x %s = %s\n",
			line.Quantity,
			cart.FormatPrice(r.currency, line.UnitPrice),
			cart.FormatPrice(r.currency, line.Subtotal()),
		)
	}

	writeRule(&b)
	writeRight(&b, "Total: "+cart.FormatPrice(r.currency, r.Total))
	writeRight(&b, "Payment: "+string(r.PaymentMode))
	writeRule(&b)
	writeCentered(&b, "Thank You! Visit Again")

	return b.String()
}

func writeRule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", receiptWidth))
	b.WriteByte('\n')
}

func writeCentered(b *strings.Builder, text string) {
	pad := (receiptWidth - len([]rune(text))) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(text)
	b.WriteByte('\n')
}

func writeRight(b *strings.Builder, text string) {
	pad := receiptWidth - len([]rune(text))
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(text)
	b.WriteByte('\n')
}
