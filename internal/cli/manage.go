package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"shopterm/internal/shop"
)

// purchaseItemsFlag collects repeated -item flags. Each value is
// PRODUCT_ID:QTY:PRICE, one per delivered line.
type purchaseItemsFlag []shop.PurchaseItem

func (f *purchaseItemsFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, item := range *f {
		parts = append(parts, fmt.Sprintf("%s:%d:%g", item.ProductID, item.Qty, item.Price))
	}
	return strings.Join(parts, ",")
}

func (f *purchaseItemsFlag) Set(value string) error {
	fields := strings.Split(value, ":")
	if len(fields) != 3 {
		return errors.New("expected PRODUCT_ID:QTY:PRICE")
	}
	qty, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("bad quantity %q", fields[1])
	}
	price, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return fmt.Errorf("bad price %q", fields[2])
	}
	*f = append(*f, shop.PurchaseItem{ProductID: fields[0], Qty: qty, Price: price})
	return nil
}

func (r *Runner) runPurchases(ctx context.Context, args []string) error {
	var invoice, supplier, show, remove string
	var add bool
	var items purchaseItemsFlag

	fs := flag.NewFlagSet("purchases", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.BoolVar(&add, "add", false, "Record a new purchase")
	fs.StringVar(&invoice, "invoice", "", "Supplier invoice number (with -add)")
	fs.StringVar(&supplier, "supplier", "", "Supplier name (with -add)")
	fs.Var(&items, "item", "Purchase line PRODUCT_ID:QTY:PRICE (with -add, repeatable)")
	fs.StringVar(&show, "show", "", "Show one purchase with its items")
	fs.StringVar(&remove, "rm", "", "Delete a purchase by id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	switch {
	case add:
		purchase := shop.Purchase{
			InvoiceNo:    invoice,
			SupplierName: supplier,
			Items:        items,
		}
		if err := r.api.AddPurchase(ctx, purchase); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Recorded purchase %s from %s (%d item line(s))\n", invoice, supplier, len(items))
		return nil

	case show != "":
		purchase, err := r.api.Purchase(ctx, show)
		if err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Invoice %s from %s\n", purchase.InvoiceNo, purchase.SupplierName)
		for _, item := range purchase.Items {
			fmt.Fprintf(os.Stdout, "  %-24s %4d x %s%.2f\n", item.ProductID, item.Qty, r.cfg.Currency, item.Price)
		}
		return nil

	case remove != "":
		if err := r.api.DeletePurchase(ctx, remove); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintln(os.Stdout, "Purchase deleted")
		return nil
	}

	purchases, err := r.api.ListPurchases(ctx)
	if err != nil {
		return r.apiError(err)
	}
	fmt.Fprintf(os.Stdout, "%-24s %-16s %-20s %12s %s\n", "ID", "INVOICE", "SUPPLIER", "TOTAL", "DATE")
	for _, p := range purchases {
		fmt.Fprintf(os.Stdout, "%-24s %-16s %-20s %s%11.2f %s\n",
			p.ID, p.InvoiceNo, p.SupplierName, r.cfg.Currency, p.TotalAmount, p.CreatedAt)
	}
	fmt.Fprintf(os.Stdout, "%d purchase(s)\n", len(purchases))
	return nil
}

func (r *Runner) runStaff(ctx context.Context, args []string) error {
	var username, email, password, update, remove string
	var add bool

	fs := flag.NewFlagSet("staff", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.BoolVar(&add, "add", false, "Create a staff account")
	fs.StringVar(&update, "update", "", "Update the staff account with this id")
	fs.StringVar(&username, "user", "", "Username (with -add or -update)")
	fs.StringVar(&email, "email", "", "Email (with -add or -update)")
	fs.StringVar(&password, "password", "", "Password (required with -add, optional with -update)")
	fs.StringVar(&remove, "rm", "", "Delete a staff account by id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	switch {
	case add:
		member := shop.StaffMember{Username: username, Email: email, Password: password}
		if err := r.api.CreateStaff(ctx, member); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Staff account %s created\n", username)
		return nil

	case update != "":
		member := shop.StaffMember{Username: username, Email: email, Password: password}
		if err := r.api.UpdateStaff(ctx, update, member); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Staff account %s updated\n", username)
		return nil

	case remove != "":
		if err := r.api.DeleteStaff(ctx, remove); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintln(os.Stdout, "Staff account deleted")
		return nil
	}

	staff, err := r.api.ListStaff(ctx)
	if err != nil {
		return r.apiError(err)
	}
	fmt.Fprintf(os.Stdout, "%-24s %-20s %s\n", "ID", "USERNAME", "EMAIL")
	for _, s := range staff {
		fmt.Fprintf(os.Stdout, "%-24s %-20s %s\n", s.ID, s.Username, s.Email)
	}
	fmt.Fprintf(os.Stdout, "%d account(s)\n", len(staff))
	return nil
}

func (r *Runner) runCategories(ctx context.Context, args []string) error {
	var add, rename, name, remove string

	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&add, "add", "", "Create a category with this name")
	fs.StringVar(&rename, "rename", "", "Rename the category with this id")
	fs.StringVar(&name, "name", "", "New name (with -rename)")
	fs.StringVar(&remove, "rm", "", "Delete a category by id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	switch {
	case add != "":
		if err := r.api.AddCategory(ctx, add); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Category %s created\n", add)
		return nil

	case rename != "":
		if err := r.api.UpdateCategory(ctx, rename, name); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Category renamed to %s\n", name)
		return nil

	case remove != "":
		if err := r.api.DeleteCategory(ctx, remove); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintln(os.Stdout, "Category deleted")
		return nil
	}

	categories, err := r.api.ListCategories(ctx)
	if err != nil {
		return r.apiError(err)
	}
	fmt.Fprintf(os.Stdout, "%-24s %s\n", "ID", "NAME")
	for _, c := range categories {
		fmt.Fprintf(os.Stdout, "%-24s %s\n", c.ID, c.Name)
	}
	fmt.Fprintf(os.Stdout, "%d categor(ies)\n", len(categories))
	return nil
}
