package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"shopterm/internal/cart"
	"shopterm/internal/shop"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEmptyCart is a local validation failure; no network call is made.
	ErrEmptyCart = errors.New("no items added")

	// ErrSubmitInFlight rejects a second submit while one is outstanding.
	ErrSubmitInFlight = errors.New("sale submission already in progress")
)

// Submitter is the slice of the shop API the finalizer needs.
type Submitter interface {
	SubmitSale(ctx context.Context, sale shop.SaleRequest) error
}

// Finalizer validates a completed cart, submits it, and produces the
// printable receipt. The receipt is rendered from the client's own snapshot;
// the server remains the source of truth for settlement prices.
type Finalizer struct {
	api       Submitter
	printer   Printer
	storeName string
	currency  string
	logger    *zap.Logger

	inFlight atomic.Bool
	now      func() time.Time
}

func NewFinalizer(api Submitter, printer Printer, storeName, currency string, logger *zap.Logger) *Finalizer {
	return &Finalizer{
		api:       api,
		printer:   printer,
		storeName: storeName,
		currency:  currency,
		logger:    logger.Named("checkout"),
		now:       time.Now,
	}
}

// Submit runs the full finalization: local validation, network submit, and
// only on confirmed success the receipt print and cart reset. A failed
// submit leaves the cart intact so the sale can be retried.
func (f *Finalizer) Submit(ctx context.Context, c *cart.Cart) (Receipt, error) {
	if c.Empty() {
		return Receipt{}, ErrEmptyCart
	}
	if !f.inFlight.CompareAndSwap(false, true) {
		return Receipt{}, ErrSubmitInFlight
	}
	defer f.inFlight.Store(false)

	items := c.Items()
	saleItems := make([]shop.SaleItem, 0, len(items))
	for _, item := range items {
		saleItems = append(saleItems, shop.SaleItem{Barcode: item.Barcode, Qty: item.Quantity})
	}

	sale := shop.SaleRequest{
		BillNo:      c.BillNo(),
		PaymentMode: string(c.PaymentMode()),
		ClientTxnID: uuid.NewString(),
		Items:       saleItems,
	}

	if err := f.api.SubmitSale(ctx, sale); err != nil {
		f.logger.Error("sale submission failed",
			zap.String("bill_no", sale.BillNo),
			zap.Int("lines", len(saleItems)),
			zap.Error(err),
		)
		return Receipt{}, fmt.Errorf("submit sale: %w", err)
	}

	receipt := NewReceipt(f.storeName, f.currency, c, f.now())
	if f.printer != nil {
		if err := f.printer.Print(receipt); err != nil {
			// The sale is already recorded; a printer problem must not
			// roll the register back.
			f.logger.Warn("receipt print failed", zap.String("bill_no", receipt.BillNo), zap.Error(err))
		}
	}

	f.logger.Info("sale completed",
		zap.String("bill_no", receipt.BillNo),
		zap.String("payment_mode", string(receipt.PaymentMode)),
		zap.Int64("total", receipt.Total),
	)

	c.Reset()
	return receipt, nil
}

// InFlight reports whether a submission is outstanding. The register uses it
// to refuse scans and edits while in the Submitting state.
func (f *Finalizer) InFlight() bool {
	return f.inFlight.Load()
}
