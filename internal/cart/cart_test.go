package cart

import (
	"errors"
	"strings"
	"testing"
)

var (
	soap  = Product{Barcode: "8901030123456", Name: "Soap", UnitPrice: 4000}
	bread = Product{Barcode: "8901719101010", Name: "Bread", UnitPrice: 3500}
)

func TestApplyScanMergesByBarcode(t *testing.T) {
	c := New()

	c.ApplyScan(soap)
	line := c.ApplyScan(soap)

	if c.Size() != 1 {
		t.Fatalf("expected 1 line, got %d", c.Size())
	}
	if line.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", line.Quantity)
	}
	if got := c.Total(); got != 8000 {
		t.Errorf("expected total 8000, got %d", got)
	}
}

func TestApplyScanKeepsFrozenPrice(t *testing.T) {
	c := New()
	c.ApplyScan(soap)

	repriced := soap
	repriced.UnitPrice = 4500
	line := c.ApplyScan(repriced)

	if line.UnitPrice != 4000 {
		t.Errorf("expected frozen price 4000, got %d", line.UnitPrice)
	}
	if got := c.Total(); got != 8000 {
		t.Errorf("expected total 8000, got %d", got)
	}
}

func TestApplyScanPreservesInsertionOrder(t *testing.T) {
	c := New()
	c.ApplyScan(soap)
	c.ApplyScan(bread)
	c.ApplyScan(soap)

	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].Barcode != soap.Barcode || items[1].Barcode != bread.Barcode {
		t.Errorf("unexpected order: %s, %s", items[0].Barcode, items[1].Barcode)
	}
}

func TestSetQuantity(t *testing.T) {
	tests := []struct {
		name    string
		qty     int
		want    int
		barcode string
		wantErr error
	}{
		{name: "increase", qty: 5, want: 5, barcode: soap.Barcode},
		{name: "clamped to one", qty: 0, want: 1, barcode: soap.Barcode},
		{name: "negative clamped", qty: -3, want: 1, barcode: soap.Barcode},
		{name: "unknown barcode", qty: 2, barcode: "0000000000000", wantErr: ErrUnknownLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.ApplyScan(soap)

			err := c.SetQuantity(tt.barcode, tt.qty)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			line, _ := c.Line(1)
			if line.Quantity != tt.want {
				t.Errorf("expected quantity %d, got %d", tt.want, line.Quantity)
			}
		})
	}
}

func TestRemoveLine(t *testing.T) {
	c := New()
	c.ApplyScan(soap)
	c.ApplyScan(bread)

	if err := c.RemoveLine(soap.Barcode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 line, got %d", c.Size())
	}
	if line, _ := c.Line(1); line.Barcode != bread.Barcode {
		t.Errorf("expected remaining line %s, got %s", bread.Barcode, line.Barcode)
	}

	if err := c.RemoveLine("0000000000000"); !errors.Is(err, ErrUnknownLine) {
		t.Errorf("expected ErrUnknownLine, got %v", err)
	}
}

func TestTotalIsExact(t *testing.T) {
	c := New()
	chips := Product{Barcode: "8901491101010", Name: "Chips", UnitPrice: 1050}
	for i := 0; i < 3; i++ {
		c.ApplyScan(chips)
	}
	c.ApplyScan(bread)

	if got := c.Total(); got != 3*1050+3500 {
		t.Errorf("expected total %d, got %d", 3*1050+3500, got)
	}
}

func TestResetStartsFreshBill(t *testing.T) {
	c := New()
	c.ApplyScan(soap)

	c.Reset()

	if !c.Empty() {
		t.Errorf("expected empty cart after reset")
	}
	if c.Total() != 0 {
		t.Errorf("expected zero total after reset, got %d", c.Total())
	}
	if !strings.HasPrefix(c.BillNo(), "BILL-") {
		t.Errorf("unexpected bill number %q", c.BillNo())
	}
}

func TestParsePaymentMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PaymentMode
		wantErr bool
	}{
		{in: "cash", want: PayCash},
		{in: "UPI", want: PayUPI},
		{in: " Card ", want: PayCard},
		{in: "credit", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePaymentMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPaymentMode) {
				t.Errorf("ParsePaymentMode(%q): expected ErrInvalidPaymentMode, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePaymentMode(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePaymentMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPriceFromRupees(t *testing.T) {
	tests := []struct {
		rupees float64
		want   int64
	}{
		{rupees: 40, want: 4000},
		{rupees: 10.5, want: 1050},
		{rupees: 99.99, want: 9999},
		{rupees: 0.1, want: 10},
	}

	for _, tt := range tests {
		if got := PriceFromRupees(tt.rupees); got != tt.want {
			t.Errorf("PriceFromRupees(%v) = %d, want %d", tt.rupees, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		paise int64
		want  string
	}{
		{paise: 4000, want: "₹40"},
		{paise: 1050, want: "₹10.50"},
		{paise: 9, want: "₹0.09"},
		{paise: 0, want: "₹0"},
		{paise: -4000, want: "-₹40"},
		{paise: -950, want: "-₹9.50"},
		{paise: -9, want: "-₹0.09"},
	}

	for _, tt := range tests {
		if got := FormatPrice("₹", tt.paise); got != tt.want {
			t.Errorf("FormatPrice(%d) = %q, want %q", tt.paise, got, tt.want)
		}
	}
}
