package shop

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Username    string `json:"username"`
}

type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Barcode       string  `json:"barcode,omitempty"`
	Category      string  `json:"category,omitempty"`
	CategoryID    string  `json:"category_id,omitempty"`
	PurchasePrice float64 `json:"purchase_price,omitempty"`
	SellingPrice  float64 `json:"selling_price"`
	StockQty      int     `json:"stock_qty"`
}

type BarcodeProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Barcode  string `json:"barcode"`
	StockQty int    `json:"stock_qty"`
}

type SaleItem struct {
	Barcode string `json:"barcode"`
	Qty     int    `json:"qty"`
}

type SaleRequest struct {
	BillNo      string     `json:"bill_no"`
	PaymentMode string     `json:"payment_mode"`
	ClientTxnID string     `json:"client_txn_id,omitempty"`
	Items       []SaleItem `json:"items"`
}

type StockItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	StockQty  int    `json:"stock_qty"`
}

type ProductProfit struct {
	ProductName string  `json:"product_name"`
	SoldQty     int     `json:"sold_qty"`
	Profit      float64 `json:"profit"`
}

type ProfitReport struct {
	ProductWiseProfit []ProductProfit `json:"product_wise_profit"`
	TotalProfit       float64         `json:"total_profit"`
}

type DashboardSummary struct {
	Admins       int     `json:"admins"`
	Staff        int     `json:"staff"`
	Categories   int     `json:"categories"`
	Products     int     `json:"products"`
	PurchaseQty  int     `json:"purchase_qty"`
	TotalSales   int     `json:"total_sales"`
	TotalRevenue float64 `json:"total_revenue"`
}

type SalesAnalysis struct {
	DailySales   float64 `json:"daily_sales"`
	WeeklySales  float64 `json:"weekly_sales"`
	MonthlySales float64 `json:"monthly_sales"`
}

type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SoldQty   int    `json:"sold_qty"`
}

type PurchaseItem struct {
	ProductID string  `json:"product_id"`
	Qty       int     `json:"qty"`
	Price     float64 `json:"price"`
}

type Purchase struct {
	ID           string         `json:"_id,omitempty"`
	InvoiceNo    string         `json:"invoice_no"`
	SupplierName string         `json:"supplier_name"`
	Items        []PurchaseItem `json:"items,omitempty"`
	TotalAmount  float64        `json:"total_amount,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

type StaffMember struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type Category struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active,omitempty"`
}

type Expense struct {
	ID          string  `json:"_id,omitempty"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

type Suggestion struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"created_at"`
}

type suggestionList struct {
	Suggestions []Suggestion `json:"suggestions"`
}

type SuggestionStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status,omitempty"`
	ByPriority map[string]int `json:"by_priority,omitempty"`
}
