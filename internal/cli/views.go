package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"shopterm/internal/export"
	"shopterm/internal/shop"
)

func (r *Runner) runProducts(ctx context.Context, args []string) error {
	var search, category string

	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&search, "search", "", "Filter by name substring")
	fs.StringVar(&category, "category", "", "Filter by category name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	products, err := r.api.ListProducts(ctx)
	if err != nil {
		return r.apiError(err)
	}

	search = strings.ToLower(strings.TrimSpace(search))
	shown := 0
	fmt.Fprintf(os.Stdout, "%-28s %-16s %-14s %10s %6s\n", "NAME", "BARCODE", "CATEGORY", "PRICE", "STOCK")
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		fmt.Fprintf(os.Stdout, "%-28s %-16s %-14s %s%9.2f %6d\n",
			p.Name, p.Barcode, p.Category, r.cfg.Currency, p.SellingPrice, p.StockQty)
		shown++
	}
	fmt.Fprintf(os.Stdout, "%d product(s)\n", shown)
	return nil
}

func (r *Runner) runStock(ctx context.Context, args []string) error {
	var threshold, slowDays int
	var lowOnly bool

	fs := flag.NewFlagSet("stock", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.IntVar(&threshold, "threshold", 10, "Low-stock threshold")
	fs.BoolVar(&lowOnly, "low", false, "Show only low-stock products")
	fs.IntVar(&slowDays, "slow-days", 0, "Also list products unsold for this many days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	if lowOnly {
		items, err := r.api.LowStock(ctx, threshold)
		if err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Low stock (threshold %d):\n", threshold)
		printStockItems(items)
	} else {
		items, err := r.api.StockSummary(ctx)
		if err != nil {
			return r.apiError(err)
		}
		printStockItems(items)
	}

	if slowDays > 0 {
		items, err := r.api.SlowMoving(ctx, slowDays)
		if err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "\nSlow moving (last %d days):\n", slowDays)
		printStockItems(items)
	}
	return nil
}

func (r *Runner) runDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	summary, err := r.api.DashboardSummary(ctx)
	if err != nil {
		return r.apiError(err)
	}
	analysis, err := r.api.SalesAnalysis(ctx)
	if err != nil {
		return r.apiError(err)
	}
	top, err := r.api.TopProducts(ctx)
	if err != nil {
		return r.apiError(err)
	}

	cur := r.cfg.Currency
	fmt.Fprintln(os.Stdout, "Shop summary:")
	fmt.Fprintf(os.Stdout, "  products: %d  categories: %d  staff: %d  admins: %d\n",
		summary.Products, summary.Categories, summary.Staff, summary.Admins)
	fmt.Fprintf(os.Stdout, "  purchased qty: %d  sales: %d  revenue: %s%.2f\n",
		summary.PurchaseQty, summary.TotalSales, cur, summary.TotalRevenue)

	fmt.Fprintln(os.Stdout, "\nSales:")
	fmt.Fprintf(os.Stdout, "  today: %s%.2f  this week: %s%.2f  this month: %s%.2f\n",
		cur, analysis.DailySales, cur, analysis.WeeklySales, cur, analysis.MonthlySales)

	fmt.Fprintln(os.Stdout, "\nTop products:")
	for i, p := range top {
		fmt.Fprintf(os.Stdout, "  %d) %-28s sold %d\n", i+1, p.Name, p.SoldQty)
	}
	return nil
}

func (r *Runner) runProfit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	report, err := r.api.ProductWiseProfit(ctx)
	if err != nil {
		return r.apiError(err)
	}

	fmt.Fprintf(os.Stdout, "%-28s %8s %12s\n", "PRODUCT", "SOLD", "PROFIT")
	for _, p := range report.ProductWiseProfit {
		fmt.Fprintf(os.Stdout, "%-28s %8d %s%11.2f\n", p.ProductName, p.SoldQty, r.cfg.Currency, p.Profit)
	}
	fmt.Fprintf(os.Stdout, "\nTotal profit: %s%.2f\n", r.cfg.Currency, report.TotalProfit)
	return nil
}

func (r *Runner) runExpenses(ctx context.Context, args []string) error {
	var addCategory, addDescription, addDate string
	var addAmount float64

	fs := flag.NewFlagSet("expenses", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&addCategory, "add", "", "Record a new expense in this category")
	fs.Float64Var(&addAmount, "amount", 0, "Expense amount (with -add)")
	fs.StringVar(&addDescription, "desc", "", "Expense description (with -add)")
	fs.StringVar(&addDate, "date", time.Now().Format("2006-01-02"), "Expense date (with -add)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	if addCategory != "" {
		expense := shop.Expense{
			Date:        addDate,
			Category:    addCategory,
			Amount:      addAmount,
			Description: addDescription,
		}
		if err := r.api.AddExpense(ctx, expense); err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Recorded %s%.2f under %s\n", r.cfg.Currency, addAmount, addCategory)
		return nil
	}

	expenses, err := r.api.ListExpenses(ctx)
	if err != nil {
		return r.apiError(err)
	}

	var total float64
	fmt.Fprintf(os.Stdout, "%-12s %-16s %12s  %s\n", "DATE", "CATEGORY", "AMOUNT", "DESCRIPTION")
	for _, e := range expenses {
		fmt.Fprintf(os.Stdout, "%-12s %-16s %s%11.2f  %s\n", e.Date, e.Category, r.cfg.Currency, e.Amount, e.Description)
		total += e.Amount
	}
	fmt.Fprintf(os.Stdout, "\nTotal: %s%.2f\n", r.cfg.Currency, total)
	return nil
}

func (r *Runner) runSuggest(ctx context.Context, args []string) error {
	var generate, stats bool

	fs := flag.NewFlagSet("suggest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.BoolVar(&generate, "generate", false, "Ask the backend to generate fresh suggestions")
	fs.BoolVar(&stats, "stats", false, "Show suggestion statistics")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	if stats {
		s, err := r.api.SuggestionStats(ctx)
		if err != nil {
			return r.apiError(err)
		}
		fmt.Fprintf(os.Stdout, "Total suggestions: %d\n", s.Total)
		for status, count := range s.ByStatus {
			fmt.Fprintf(os.Stdout, "  status %-12s %d\n", status, count)
		}
		for priority, count := range s.ByPriority {
			fmt.Fprintf(os.Stdout, "  priority %-10s %d\n", priority, count)
		}
		return nil
	}

	var suggestions []shop.Suggestion
	var err error
	if generate {
		suggestions, err = r.api.GenerateSuggestions(ctx)
	} else {
		suggestions, err = r.api.TodaySuggestions(ctx)
	}
	if err != nil {
		return r.apiError(err)
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(os.Stdout, "No suggestions for today. Run 'shopterm suggest -generate'.")
		return nil
	}
	for _, s := range suggestions {
		fmt.Fprintf(os.Stdout, "[%s] %s\n", s.Priority, s.Title)
		fmt.Fprintf(os.Stdout, "    %s\n", s.Description)
	}
	return nil
}

func (r *Runner) runExport(ctx context.Context, args []string) error {
	var output string

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&output, "o", "", "Output file (default: barcode-list-<date>.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := r.requireSession(); err != nil {
		return err
	}

	products, err := r.api.BarcodeList(ctx)
	if err != nil {
		return r.apiError(err)
	}

	path, err := export.WriteBarcodeListFile(output, products)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported %d product(s) to %s\n", len(products), path)
	return nil
}

func printStockItems(items []shop.StockItem) {
	if len(items) == 0 {
		fmt.Fprintln(os.Stdout, "  (none)")
		return
	}
	fmt.Fprintf(os.Stdout, "%-28s %8s\n", "PRODUCT", "STOCK")
	for _, item := range items {
		fmt.Fprintf(os.Stdout, "%-28s %8d\n", item.Name, item.StockQty)
	}
}
