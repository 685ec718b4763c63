package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopterm/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrMissingToken  = errors.New("shop api token is required")
	ErrUnauthorized  = errors.New("shop api unauthorized")
	ErrForbidden     = errors.New("shop api forbidden")
	ErrRateLimited   = errors.New("shop api rate limited")
	ErrNotFound      = errors.New("not found")
	ErrEmptyBarcode  = errors.New("barcode is empty")
	ErrLoginRejected = errors.New("login rejected")
)

type APIError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("shop api error: %s", e.Status)
	}
	return fmt.Sprintf("shop api error: %s: %s", e.Status, e.Detail)
}

// Client talks to the retail backend. All business logic (pricing, stock
// decrement, profit, suggestion generation) lives behind these endpoints;
// the client only moves JSON.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(1).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode() == http.StatusTooManyRequests
		})

	return &Client{
		http:   httpClient,
		logger: logger.Named("shop"),
	}
}

// SetToken installs the bearer token for all subsequent calls. The session
// store owns the token lifecycle; the client just carries it.
func (c *Client) SetToken(token string) {
	c.http.SetAuthScheme("Bearer")
	c.http.SetAuthToken(token)
}

// Login exchanges operator credentials for a bearer token. It is the only
// call that runs without a token installed.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var result LoginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(LoginRequest{Username: username, Password: password}).
		SetResult(&result).
		Post("/auth/login")
	if err != nil {
		return LoginResponse{}, fmt.Errorf("shop request: %w", err)
	}
	if resp.IsError() {
		apiErr := apiErrorFromResponse(resp)
		return LoginResponse{}, fmt.Errorf("%w: %s", ErrLoginRejected, apiErr.Error())
	}
	if strings.TrimSpace(result.AccessToken) == "" {
		return LoginResponse{}, fmt.Errorf("%w: empty access token in response", ErrLoginRejected)
	}
	return result, nil
}

// ProductByBarcode resolves one scanned code. Results are never cached: a
// repeated scan of an unknown barcode repeats the lookup.
func (c *Client) ProductByBarcode(ctx context.Context, code string) (Product, error) {
	if !c.hasToken() {
		return Product{}, ErrMissingToken
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return Product{}, ErrEmptyBarcode
	}

	var product Product
	if err := c.doGet(ctx, "/products/by-barcode/"+url.PathEscape(code), nil, &product); err != nil {
		return Product{}, err
	}
	if product.Barcode == "" {
		product.Barcode = code
	}
	return product, nil
}

// SubmitSale posts a completed cart. The server is the source of truth for
// price and name at settlement; only barcode and quantity are sent per line.
func (c *Client) SubmitSale(ctx context.Context, sale SaleRequest) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if len(sale.Items) == 0 {
		return errors.New("sale has no items")
	}
	return c.doPost(ctx, "/sales/add", sale, nil)
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var products []Product
	if err := c.doGet(ctx, "/products/list", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) BarcodeList(ctx context.Context) ([]BarcodeProduct, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var products []BarcodeProduct
	if err := c.doGet(ctx, "/products/barcode-list", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) StockSummary(ctx context.Context) ([]StockItem, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var items []StockItem
	if err := c.doGet(ctx, "/stock/summary", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) LowStock(ctx context.Context, threshold int) ([]StockItem, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var items []StockItem
	query := map[string]string{"threshold": strconv.Itoa(threshold)}
	if err := c.doGet(ctx, "/stock/low-stock", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) SlowMoving(ctx context.Context, days int) ([]StockItem, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var items []StockItem
	query := map[string]string{"days": strconv.Itoa(days)}
	if err := c.doGet(ctx, "/analytics/slow-moving", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ProductWiseProfit(ctx context.Context) (ProfitReport, error) {
	if !c.hasToken() {
		return ProfitReport{}, ErrMissingToken
	}
	var report ProfitReport
	if err := c.doGet(ctx, "/profit/product-wise", nil, &report); err != nil {
		return ProfitReport{}, err
	}
	return report, nil
}

func (c *Client) DashboardSummary(ctx context.Context) (DashboardSummary, error) {
	if !c.hasToken() {
		return DashboardSummary{}, ErrMissingToken
	}
	var summary DashboardSummary
	if err := c.doGet(ctx, "/dashboard/summary", nil, &summary); err != nil {
		return DashboardSummary{}, err
	}
	return summary, nil
}

func (c *Client) SalesAnalysis(ctx context.Context) (SalesAnalysis, error) {
	if !c.hasToken() {
		return SalesAnalysis{}, ErrMissingToken
	}
	var analysis SalesAnalysis
	if err := c.doGet(ctx, "/dashboard/sales-analysis", nil, &analysis); err != nil {
		return SalesAnalysis{}, err
	}
	return analysis, nil
}

func (c *Client) TopProducts(ctx context.Context) ([]TopProduct, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var products []TopProduct
	if err := c.doGet(ctx, "/dashboard/top-products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ListPurchases(ctx context.Context) ([]Purchase, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var purchases []Purchase
	if err := c.doGet(ctx, "/purchases/list", nil, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (c *Client) Purchase(ctx context.Context, id string) (Purchase, error) {
	if !c.hasToken() {
		return Purchase{}, ErrMissingToken
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Purchase{}, errors.New("purchase id is empty")
	}
	var purchase Purchase
	if err := c.doGet(ctx, "/purchases/"+url.PathEscape(id), nil, &purchase); err != nil {
		return Purchase{}, err
	}
	return purchase, nil
}

// AddPurchase records an inventory delivery. Stock increments happen
// server-side when the purchase is accepted.
func (c *Client) AddPurchase(ctx context.Context, purchase Purchase) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if err := validatePurchase(purchase); err != nil {
		return err
	}
	return c.doPost(ctx, "/purchases/add", purchase, nil)
}

func (c *Client) UpdatePurchase(ctx context.Context, id string, purchase Purchase) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("purchase id is empty")
	}
	if err := validatePurchase(purchase); err != nil {
		return err
	}
	return c.doPut(ctx, "/purchases/update/"+url.PathEscape(id), purchase, nil)
}

func (c *Client) DeletePurchase(ctx context.Context, id string) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("purchase id is empty")
	}
	return c.doDelete(ctx, "/purchases/delete/"+url.PathEscape(id))
}

func validatePurchase(purchase Purchase) error {
	if len(purchase.Items) == 0 {
		return errors.New("purchase has no items")
	}
	for _, item := range purchase.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("purchase item needs a product id")
		}
		if item.Qty <= 0 || item.Price <= 0 {
			return errors.New("purchase item quantity and price must be positive")
		}
	}
	return nil
}

func (c *Client) ListStaff(ctx context.Context) ([]StaffMember, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var staff []StaffMember
	if err := c.doGet(ctx, "/staff/list", nil, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// CreateStaff provisions a cashier account. The backend restricts staff
// management to the admin role; non-admins get a 403 back.
func (c *Client) CreateStaff(ctx context.Context, member StaffMember) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if strings.TrimSpace(member.Username) == "" || strings.TrimSpace(member.Password) == "" {
		return errors.New("staff account needs a username and a password")
	}
	return c.doPost(ctx, "/staff/create", member, nil)
}

func (c *Client) UpdateStaff(ctx context.Context, id string, member StaffMember) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("staff id is empty")
	}
	if strings.TrimSpace(member.Username) == "" {
		return errors.New("staff account needs a username")
	}
	// Password omitted means keep the current one.
	return c.doPut(ctx, "/staff/update/"+url.PathEscape(id), member, nil)
}

func (c *Client) DeleteStaff(ctx context.Context, id string) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("staff id is empty")
	}
	return c.doDelete(ctx, "/staff/delete/"+url.PathEscape(id))
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var categories []Category
	if err := c.doGet(ctx, "/categories/list", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) AddCategory(ctx context.Context, name string) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("category name is empty")
	}
	return c.doPost(ctx, "/categories/add", Category{Name: name}, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, id, name string) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("category id is empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("category name is empty")
	}
	return c.doPut(ctx, "/categories/update/"+url.PathEscape(id), Category{Name: name, IsActive: true}, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("category id is empty")
	}
	return c.doDelete(ctx, "/categories/delete/"+url.PathEscape(id))
}

func (c *Client) ListExpenses(ctx context.Context) ([]Expense, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var expenses []Expense
	if err := c.doGet(ctx, "/expenses/list", nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (c *Client) AddExpense(ctx context.Context, expense Expense) error {
	if !c.hasToken() {
		return ErrMissingToken
	}
	if strings.TrimSpace(expense.Category) == "" || expense.Amount <= 0 {
		return errors.New("expense needs a category and a positive amount")
	}
	return c.doPost(ctx, "/expenses/add", expense, nil)
}

func (c *Client) TodaySuggestions(ctx context.Context) ([]Suggestion, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var list suggestionList
	if err := c.doGet(ctx, "/ai-suggestions/today", nil, &list); err != nil {
		return nil, err
	}
	return list.Suggestions, nil
}

// GenerateSuggestions asks the backend AI engine to analyze the latest
// sales, stock and expense data. Generation happens server-side.
func (c *Client) GenerateSuggestions(ctx context.Context) ([]Suggestion, error) {
	if !c.hasToken() {
		return nil, ErrMissingToken
	}
	var list suggestionList
	if err := c.doPost(ctx, "/ai-suggestions/generate", nil, &list); err != nil {
		return nil, err
	}
	return list.Suggestions, nil
}

func (c *Client) SuggestionStats(ctx context.Context) (SuggestionStats, error) {
	if !c.hasToken() {
		return SuggestionStats{}, ErrMissingToken
	}
	var stats SuggestionStats
	if err := c.doGet(ctx, "/ai-suggestions/stats", nil, &stats); err != nil {
		return SuggestionStats{}, err
	}
	return stats, nil
}

func (c *Client) doGet(ctx context.Context, path string, query map[string]string, result any) error {
	req := c.http.R().SetContext(ctx).SetResult(result)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("shop request: %w", err)
	}
	if resp.IsError() {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *Client) doPost(ctx context.Context, path string, body, result any) error {
	req := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("shop request: %w", err)
	}
	if resp.IsError() {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *Client) doPut(ctx context.Context, path string, body, result any) error {
	req := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Put(path)
	if err != nil {
		return fmt.Errorf("shop request: %w", err)
	}
	if resp.IsError() {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *Client) doDelete(ctx context.Context, path string) error {
	resp, err := c.http.R().SetContext(ctx).Delete(path)
	if err != nil {
		return fmt.Errorf("shop request: %w", err)
	}
	if resp.IsError() {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *Client) hasToken() bool {
	return strings.TrimSpace(c.http.Token) != ""
}

func errorFromResponse(resp *resty.Response) error {
	apiErr := apiErrorFromResponse(resp)

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error())
	case http.StatusForbidden:
		// The session is still valid, the role just lacks the permission.
		return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Error())
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error())
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Error())
	default:
		return apiErr
	}
}

func apiErrorFromResponse(resp *resty.Response) *APIError {
	detail := strings.TrimSpace(resp.String())
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		if body.Detail != "" {
			detail = body.Detail
		} else if body.Message != "" {
			detail = body.Message
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Detail:     detail,
	}
}
