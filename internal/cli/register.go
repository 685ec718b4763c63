package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"shopterm/internal/cart"
	"shopterm/internal/checkout"
	"shopterm/internal/scanner"
	"shopterm/internal/shop"

	"go.uber.org/zap"
)

// registerMode is the register's UI mode. The modes are mutually exclusive
// by construction; there are no independent flags to drift apart.
type registerMode int

const (
	modeIdle registerMode = iota
	modeDeviceScanning
	modeSubmitting
)

type submitResult struct {
	receipt checkout.Receipt
	err     error
}

// register runs one checkout session after another: scans and line commands
// mutate the cart, "done" finalizes, and a successful sale starts the next
// bill on a fresh cart.
type register struct {
	runner   *Runner
	out      io.Writer
	announce scanner.Announcer
	logger   *zap.Logger

	cart *cart.Cart
	mode registerMode

	keySource    func(ctx context.Context) <-chan scanner.KeyEvent
	dispatch     scanner.Dispatch
	deviceDone   chan error
	deviceCancel context.CancelFunc
}

const registerHelp = `Scan a barcode, or type one and press Enter.
Commands:
  + N / - N     increment / decrement quantity of line N
  qty N Q       set quantity of line N to Q
  rm N          remove line N
  pay MODE      set payment mode (CASH, UPI, CARD)
  scan          read one code from the scan device
  stop          close the scan device
  done          complete the sale and print the receipt
  abort         discard the cart and start a new bill
  exit          leave the register
`

func (r *Runner) runSell(ctx context.Context, args []string) error {
	var payMode string

	fs := flag.NewFlagSet("sell", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&payMode, "pay", string(cart.PayCash), "Initial payment mode (CASH, UPI, CARD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := r.requireSession(); err != nil {
		return err
	}

	reg := &register{
		runner:    r,
		out:       os.Stdout,
		announce:  scanner.NewTerminalAnnouncer(os.Stdout, r.cfg.SpeechCmd, r.logger),
		logger:    r.logger.Named("register"),
		cart:      cart.New(),
		keySource: newStdinReader().keyEvents,
	}
	if err := reg.cart.SetPaymentMode(cart.PaymentMode(payMode)); err != nil {
		return err
	}

	fmt.Fprintf(reg.out, "Register open. Bill: %s (type 'help' for commands)\n", reg.cart.BillNo())
	return reg.loop(ctx)
}

func (reg *register) loop(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scans := make(chan string, 8)
	reg.dispatch = func(code string) {
		select {
		case scans <- code:
		default:
			reg.logger.Warn("scan dropped, dispatch queue full", zap.String("code", code))
		}
	}
	reg.deviceDone = make(chan error, 1)

	disamb := scanner.NewDisambiguator(reg.runner.cfg.ScanIdleGap, reg.runner.cfg.ScanMinLength, reg.dispatch, reg.logger)
	defer disamb.Stop()

	keys := reg.keySource(ctx)
	submitDone := make(chan submitResult, 1)

	var lineBuf strings.Builder

	for {
		select {
		case <-ctx.Done():
			reg.closeDevice()
			return nil

		case ev, ok := <-keys:
			if !ok {
				reg.closeDevice()
				return nil
			}
			if ev.Rune == '\n' || ev.Rune == '\r' {
				line := strings.TrimSpace(lineBuf.String())
				lineBuf.Reset()
				if reg.isCommand(line) {
					// Command text is not a scan; drop whatever the
					// disambiguator buffered from these keystrokes.
					disamb.Stop()
					quit, err := reg.execCommand(ctx, line, submitDone)
					if err != nil {
						return err
					}
					if quit {
						reg.closeDevice()
						return nil
					}
					continue
				}
				disamb.Key(ev)
				continue
			}
			lineBuf.WriteRune(ev.Rune)
			disamb.Key(ev)

		case code := <-scans:
			// A headless scan (no trailing Enter) leaves its keystrokes in
			// the line buffer; once the disambiguator dispatched them they
			// must not prefix the operator's next command.
			if strings.HasSuffix(lineBuf.String(), code) {
				lineBuf.Reset()
			}
			if err := reg.handleScan(ctx, code); err != nil {
				return err
			}

		case err := <-reg.deviceDone:
			reg.closeDevice()
			if reg.mode == modeDeviceScanning {
				reg.mode = modeIdle
			}
			switch {
			case err == nil:
				// Decoded one symbol; the code is already on its way
				// through the dispatch path.
			case errors.Is(err, context.Canceled):
				reg.status("Scan device closed")
			case errors.Is(err, scanner.ErrDeviceUnavailable):
				reg.status("Scan device unavailable, use the keyboard: " + err.Error())
			default:
				reg.status("Scan device error: " + err.Error())
			}

		case result := <-submitDone:
			reg.mode = modeIdle
			if result.err != nil {
				reg.announce.Say("Sale failed")
				reg.status("SALE NOT SAVED: " + result.err.Error())
				reg.status("Items kept, fix the problem and type 'done' to retry")
				if errors.Is(result.err, shop.ErrUnauthorized) {
					return reg.runner.apiError(result.err)
				}
				continue
			}
			reg.announce.Say("Sale completed")
			fmt.Fprintf(reg.out, "Sale completed. Total %s, bill %s\n",
				cart.FormatPrice(reg.runner.cfg.Currency, result.receipt.Total), result.receipt.BillNo)
			fmt.Fprintf(reg.out, "Next bill: %s\n", reg.cart.BillNo())
		}
	}
}

// handleScan resolves one dispatched barcode and applies it to the cart.
// While a submit is in flight the cart is frozen and scans are refused.
func (reg *register) handleScan(ctx context.Context, code string) error {
	if reg.mode == modeSubmitting {
		reg.status("Submitting, scan ignored: " + code)
		return nil
	}

	product, err := reg.runner.api.ProductByBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, shop.ErrUnauthorized) {
			return reg.runner.apiError(err)
		}
		if errors.Is(err, shop.ErrNotFound) {
			reg.announce.Say("Product not found")
			reg.status("Product not found: " + code)
			return nil
		}
		reg.status("Lookup failed: " + err.Error())
		return nil
	}

	line := reg.cart.ApplyScan(cart.Product{
		Barcode:   product.Barcode,
		Name:      product.Name,
		UnitPrice: cart.PriceFromRupees(product.SellingPrice),
	})
	reg.announce.Beep()
	reg.announce.Say(product.Name)
	reg.status(fmt.Sprintf("Added: %s (x%d)", line.Name, line.Quantity))
	reg.renderCart()
	return nil
}

func (reg *register) isCommand(line string) bool {
	if line == "" {
		return false
	}
	switch strings.Fields(line)[0] {
	case "+", "-", "qty", "rm", "pay", "scan", "stop", "done", "checkout", "abort", "help", "exit", "quit":
		return true
	default:
		return false
	}
}

func (reg *register) execCommand(ctx context.Context, line string, submitDone chan<- submitResult) (quit bool, err error) {
	fields := strings.Fields(line)
	verb := fields[0]

	if reg.mode == modeSubmitting && verb != "help" {
		reg.status("Submitting, please wait")
		return false, nil
	}

	switch verb {
	case "help":
		fmt.Fprint(reg.out, registerHelp)
	case "exit", "quit":
		if !reg.cart.Empty() {
			reg.status(fmt.Sprintf("Leaving register, %d line(s) discarded", reg.cart.Size()))
		}
		return true, nil
	case "abort":
		reg.cart.Reset()
		reg.status("Cart discarded. New bill: " + reg.cart.BillNo())
	case "pay":
		if len(fields) < 2 {
			reg.status("Usage: pay CASH|UPI|CARD")
			break
		}
		if err := reg.cart.SetPaymentMode(cart.PaymentMode(fields[1])); err != nil {
			reg.status(err.Error())
			break
		}
		reg.status("Payment mode: " + string(reg.cart.PaymentMode()))
	case "+", "-":
		reg.adjustQuantity(fields, verb == "+")
	case "qty":
		if len(fields) < 3 {
			reg.status("Usage: qty LINE QUANTITY")
			break
		}
		pos, err1 := strconv.Atoi(fields[1])
		qty, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			reg.status("Usage: qty LINE QUANTITY")
			break
		}
		item, ok := reg.cart.Line(pos)
		if !ok {
			reg.status("No such line: " + fields[1])
			break
		}
		if setErr := reg.cart.SetQuantity(item.Barcode, qty); setErr != nil {
			reg.status(setErr.Error())
			break
		}
		reg.renderCart()
	case "rm":
		if len(fields) < 2 {
			reg.status("Usage: rm LINE")
			break
		}
		pos, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			reg.status("Usage: rm LINE")
			break
		}
		item, ok := reg.cart.Line(pos)
		if !ok {
			reg.status("No such line: " + fields[1])
			break
		}
		if rmErr := reg.cart.RemoveLine(item.Barcode); rmErr != nil {
			reg.status(rmErr.Error())
			break
		}
		reg.renderCart()
	case "scan":
		reg.startDevice(ctx)
	case "stop":
		reg.closeDevice()
	case "done", "checkout":
		reg.submit(ctx, submitDone)
	}
	return false, nil
}

func (reg *register) adjustQuantity(fields []string, up bool) {
	if len(fields) < 2 {
		reg.status("Usage: + LINE  or  - LINE")
		return
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		reg.status("Usage: + LINE  or  - LINE")
		return
	}
	item, ok := reg.cart.Line(pos)
	if !ok {
		reg.status("No such line: " + fields[1])
		return
	}
	qty := item.Quantity + 1
	if !up {
		qty = item.Quantity - 1
	}
	// SetQuantity clamps at 1; decrementing never drops the line.
	if err := reg.cart.SetQuantity(item.Barcode, qty); err != nil {
		reg.status(err.Error())
		return
	}
	reg.renderCart()
}

// submit moves the register into the non-interruptible Submitting mode and
// finalizes in the background so the loop can keep refusing input politely.
func (reg *register) submit(ctx context.Context, submitDone chan<- submitResult) {
	if reg.cart.Empty() {
		reg.status(checkout.ErrEmptyCart.Error())
		return
	}
	reg.closeDevice()
	reg.mode = modeSubmitting
	reg.status("Submitting sale " + reg.cart.BillNo() + "...")

	go func() {
		receipt, err := reg.runner.finalizer.Submit(ctx, reg.cart)
		submitDone <- submitResult{receipt: receipt, err: err}
	}()
}

func (reg *register) startDevice(ctx context.Context) {
	if reg.mode == modeDeviceScanning {
		reg.status("Scan device already open")
		return
	}
	reg.status("Opening scan device...")
	reg.mode = modeDeviceScanning

	deviceCtx, cancel := context.WithCancel(ctx)
	reg.deviceCancel = cancel

	source := scanner.NewDeviceSource(reg.runner.cfg.ScannerDevice, reg.dispatch, reg.logger)
	go func() {
		reg.deviceDone <- source.Run(deviceCtx)
	}()
}

func (reg *register) closeDevice() {
	if reg.deviceCancel != nil {
		reg.deviceCancel()
		reg.deviceCancel = nil
	}
}

func (reg *register) status(message string) {
	fmt.Fprintln(reg.out, message)
}

func (reg *register) renderCart() {
	if reg.cart.Empty() {
		fmt.Fprintf(reg.out, "Cart empty. Bill: %s\n", reg.cart.BillNo())
		return
	}

	currency := reg.runner.cfg.Currency
	fmt.Fprintf(reg.out, "Bill %s (%s)\n", reg.cart.BillNo(), reg.cart.PaymentMode())
	for i, item := range reg.cart.Items() {
		fmt.Fprintf(reg.out, "%2d) %-24s %3d x %8s = %8s\n",
			i+1, item.Name, item.Quantity,
			cart.FormatPrice(currency, item.UnitPrice),
			cart.FormatPrice(currency, item.Subtotal()),
		)
	}
	fmt.Fprintf(reg.out, "    Total: %s\n", cart.FormatPrice(currency, reg.cart.Total()))
}
