package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"shopterm/internal/cart"
	"shopterm/internal/shop"

	"go.uber.org/zap"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []shop.SaleRequest
	err   error
	block chan struct{}
}

func (f *fakeSubmitter) SubmitSale(ctx context.Context, sale shop.SaleRequest) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls = append(f.calls, sale)
	f.mu.Unlock()
	return f.err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memPrinter struct {
	printed []Receipt
	err     error
}

func (p *memPrinter) Print(r Receipt) error {
	p.printed = append(p.printed, r)
	return p.err
}

func sampleCart() *cart.Cart {
	c := cart.New()
	c.ApplyScan(cart.Product{Barcode: "8901030123456", Name: "Soap", UnitPrice: 4000})
	c.ApplyScan(cart.Product{Barcode: "8901030123456", Name: "Soap", UnitPrice: 4000})
	c.ApplyScan(cart.Product{Barcode: "8901719101010", Name: "Ghee 1L", UnitPrice: 15000})
	return c
}

func TestSubmitEmptyCart(t *testing.T) {
	api := &fakeSubmitter{}
	f := NewFinalizer(api, &memPrinter{}, "MY POS SHOP", "₹", zap.NewNop())

	_, err := f.Submit(context.Background(), cart.New())
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if api.callCount() != 0 {
		t.Errorf("expected no network call for an empty cart")
	}
}

func TestSubmitSuccessResetsCart(t *testing.T) {
	api := &fakeSubmitter{}
	printer := &memPrinter{}
	f := NewFinalizer(api, printer, "MY POS SHOP", "₹", zap.NewNop())

	c := sampleCart()
	billNo := c.BillNo()

	receipt, err := f.Submit(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receipt.BillNo != billNo {
		t.Errorf("expected receipt bill %s, got %s", billNo, receipt.BillNo)
	}
	if receipt.Total != 23000 {
		t.Errorf("expected receipt total 23000, got %d", receipt.Total)
	}
	if len(receipt.Lines) != 2 {
		t.Errorf("expected 2 receipt lines, got %d", len(receipt.Lines))
	}
	if !c.Empty() {
		t.Errorf("expected cart reset after confirmed submit")
	}
	if len(printer.printed) != 1 {
		t.Errorf("expected one receipt printed, got %d", len(printer.printed))
	}

	if api.callCount() != 1 {
		t.Fatalf("expected one submission, got %d", api.callCount())
	}
	sale := api.calls[0]
	if sale.BillNo != billNo {
		t.Errorf("expected sale bill %s, got %s", billNo, sale.BillNo)
	}
	if sale.ClientTxnID == "" {
		t.Errorf("expected a client transaction id on the sale")
	}
	if len(sale.Items) != 2 || sale.Items[0].Qty != 2 || sale.Items[1].Qty != 1 {
		t.Errorf("unexpected sale items: %+v", sale.Items)
	}
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	api := &fakeSubmitter{err: shop.ErrRateLimited}
	f := NewFinalizer(api, &memPrinter{}, "MY POS SHOP", "₹", zap.NewNop())

	c := sampleCart()
	billNo := c.BillNo()

	_, err := f.Submit(context.Background(), c)
	if !errors.Is(err, shop.ErrRateLimited) {
		t.Fatalf("expected wrapped API error, got %v", err)
	}

	if c.Size() != 2 {
		t.Errorf("expected cart untouched after failure, got %d lines", c.Size())
	}
	if c.BillNo() != billNo {
		t.Errorf("expected bill number unchanged after failure")
	}
	if got := c.Total(); got != 23000 {
		t.Errorf("expected total preserved, got %d", got)
	}
}

func TestSubmitRejectsConcurrentSubmit(t *testing.T) {
	api := &fakeSubmitter{block: make(chan struct{})}
	f := NewFinalizer(api, &memPrinter{}, "MY POS SHOP", "₹", zap.NewNop())

	c := sampleCart()

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), c)
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for !f.InFlight() {
		if time.Now().After(deadline) {
			t.Fatal("first submit never became in-flight")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := f.Submit(context.Background(), sampleCart())
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(api.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if f.InFlight() {
		t.Errorf("expected in-flight cleared after completion")
	}
}

func TestSubmitPrinterFailureDoesNotFailSale(t *testing.T) {
	api := &fakeSubmitter{}
	printer := &memPrinter{err: errors.New("spooler offline")}
	f := NewFinalizer(api, printer, "MY POS SHOP", "₹", zap.NewNop())

	c := sampleCart()
	if _, err := f.Submit(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Empty() {
		t.Errorf("expected cart reset despite printer failure")
	}
}

func TestReceiptRender(t *testing.T) {
	c := sampleCart()
	at := time.Date(2025, time.March, 14, 18, 30, 0, 0, time.UTC)
	r := NewReceipt("MY POS SHOP", "₹", c, at)

	out := r.Render()

	for _, want := range []string{
		"MY POS SHOP",
		"Bill: " + c.BillNo(),
		"14 Mar 2025 18:30:00",
		"Soap",
		"2 x ₹40 = ₹80",
		"Ghee 1L",
		"1 x ₹150 = ₹150",
		"Total: ₹230",
		"Payment: CASH",
		"Thank You! Visit Again",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("receipt missing %q:\n%s", want, out)
		}
	}
}
