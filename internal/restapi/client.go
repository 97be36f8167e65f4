package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/Developer-Chandan-Dev/first-sass-app-sub000/apperrors"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/contextutil"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/records"
)

const dateParamLayout = "2006-01-02"

// Client talks to the ledger REST endpoints. It implements the gateway
// interfaces of the records, budgets, stats and reconcile packages.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given base URL. An empty baseURL falls
// back to the LEDGER_API_URL environment variable.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("LEDGER_API_URL")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	traceID := contextutil.TraceIDFromContext(ctx)
	if traceID == "unknown-trace-id" {
		traceID = uuid.New().String()
	}
	req.Header.Set("X-Trace-Id", traceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ListRecords implements records.Loader.
func (c *Client) ListRecords(ctx context.Context, domain ledger.Domain, filters records.Filters, page, pageSize int) (records.LoadResult, error) {
	query := url.Values{}
	query.Set("domain", string(domain))
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))
	if filters.Category != "" {
		query.Set("category", filters.Category)
	}
	if !filters.From.IsZero() {
		query.Set("from", filters.From.Format(dateParamLayout))
	}
	if !filters.To.IsZero() {
		query.Set("to", filters.To.Format(dateParamLayout))
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}

	var resp ListRecordsResponse
	if err := c.do(ctx, http.MethodGet, "/api/records", query, nil, &resp); err != nil {
		return records.LoadResult{}, fmt.Errorf("%w: %v", appErrors.ErrFetch, err)
	}
	return records.LoadResult{
		Items:      resp.Items,
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
		TotalCount: resp.TotalCount,
	}, nil
}

func (c *Client) CreateRecord(ctx context.Context, record ledger.Record) (ledger.Record, error) {
	// The server issues the id; never leak the provisional one.
	record.ID = ""

	var created ledger.Record
	if err := c.do(ctx, http.MethodPost, "/api/records", nil, record, &created); err != nil {
		return ledger.Record{}, err
	}
	return created, nil
}

func (c *Client) UpdateRecord(ctx context.Context, id string, patch records.FieldPatch) (ledger.Record, error) {
	var updated ledger.Record
	if err := c.do(ctx, http.MethodPut, "/api/records/"+url.PathEscape(id), nil, PatchToWire(patch), &updated); err != nil {
		return ledger.Record{}, err
	}
	return updated, nil
}

func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/records/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) DeleteRecords(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodDelete, "/api/records/bulk", nil, BulkDeleteRequest{IDs: ids}, nil)
}

// ListBudgets implements budgets.Gateway; the server pre-joins the
// spent/remaining/percentage aggregates.
func (c *Client) ListBudgets(ctx context.Context, activeOnly bool) ([]ledger.Budget, error) {
	query := url.Values{}
	if activeOnly {
		query.Set("active", "true")
	}

	var resp ListBudgetsResponse
	if err := c.do(ctx, http.MethodGet, "/api/budgets", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrFetch, err)
	}
	return resp.Items, nil
}

func (c *Client) CreateBudget(ctx context.Context, budget ledger.Budget) (ledger.Budget, error) {
	budget.ID = ""

	var created ledger.Budget
	if err := c.do(ctx, http.MethodPost, "/api/budgets", nil, budget, &created); err != nil {
		return ledger.Budget{}, err
	}
	return created, nil
}

func (c *Client) UpdateBudget(ctx context.Context, budget ledger.Budget) (ledger.Budget, error) {
	var updated ledger.Budget
	if err := c.do(ctx, http.MethodPut, "/api/budgets/"+url.PathEscape(budget.ID), nil, budget, &updated); err != nil {
		return ledger.Budget{}, err
	}
	return updated, nil
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/budgets/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) UpdateBudgetStatus(ctx context.Context, id string, status ledger.BudgetStatus) error {
	return c.do(ctx, http.MethodPut, "/api/budgets/"+url.PathEscape(id)+"/status", nil, StatusUpdateRequest{Status: status}, nil)
}

// FetchStats implements stats.Gateway.
func (c *Client) FetchStats(ctx context.Context, domain ledger.Domain) (ledger.StatsSnapshot, error) {
	query := url.Values{}
	query.Set("domain", string(domain))

	var snapshot ledger.StatsSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/stats", query, nil, &snapshot); err != nil {
		return ledger.StatsSnapshot{}, fmt.Errorf("%w: %v", appErrors.ErrFetch, err)
	}
	return snapshot, nil
}
