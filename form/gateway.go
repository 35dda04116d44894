package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kmathenge/gasflow-app/ledger"
)

// TransactionRequest is the create/update payload. Only raw breakdowns
// and the payment travel over the wire; the server derives everything
// else.
type TransactionRequest struct {
	CustomerID        uint                     `json:"customer_id"`
	LoadBreakdown     ledger.SizeBreakdown     `json:"load_breakdown"`
	ReturnsBreakdown  ledger.ReturnsBreakdown  `json:"returns_breakdown"`
	OutrightBreakdown ledger.OutrightBreakdown `json:"outright_breakdown"`
	TotalLoad         int                      `json:"total_load"`
	AmountPaid        float64                  `json:"amount_paid"`
	PaymentMethod     string                   `json:"payment_method"`
	Notes             string                   `json:"notes"`
}

// TransactionRecord mirrors the server's transaction resource. Breakdown
// fields are pointers so rows predating the breakdown model decode as nil.
type TransactionRecord struct {
	ID                uint                      `json:"id"`
	TransactionNumber string                    `json:"transaction_number"`
	CustomerID        uint                      `json:"customer_id"`
	LoadBreakdown     *ledger.SizeBreakdown     `json:"load_breakdown"`
	ReturnsBreakdown  *ledger.ReturnsBreakdown  `json:"returns_breakdown"`
	OutrightBreakdown *ledger.OutrightBreakdown `json:"outright_breakdown"`
	TotalBill         float64                   `json:"total_bill"`
	AmountPaid        float64                   `json:"amount_paid"`
	FinancialBalance  float64                   `json:"financial_balance"`
	CylinderBalance   int                       `json:"cylinder_balance"`
	PaymentMethod     string                    `json:"payment_method"`
	Notes             string                    `json:"notes"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// Gateway is the persistence surface the form needs.
type Gateway interface {
	CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionRecord, error)
	UpdateTransaction(ctx context.Context, id uint, req TransactionRequest) (*TransactionRecord, error)
	ListTransactions(ctx context.Context, customerID uint) ([]TransactionRecord, error)
}

// ErrServerAsleep is returned when a request runs out the full client
// timeout, which on the hosted tier usually means a cold instance.
var ErrServerAsleep = errors.New("request timed out, the server may be waking up, try again in a moment")

const requestTimeout = 30 * time.Second

// Client talks to the transaction API. Requests carry the bearer token
// when one is set; there are no automatic retries, the operator retries
// from the form.
type Client struct {
	BaseURL string
	Token   string

	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// envelope matches the server's {status, message, data} response shape.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionRecord, error) {
	var record TransactionRecord
	if err := c.do(ctx, http.MethodPost, "/api/transactions", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id uint, req TransactionRequest) (*TransactionRecord, error) {
	var record TransactionRecord
	path := fmt.Sprintf("/api/transactions/%d", id)
	if err := c.do(ctx, http.MethodPut, path, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) ListTransactions(ctx context.Context, customerID uint) ([]TransactionRecord, error) {
	var payload struct {
		Transactions []TransactionRecord `json:"transactions"`
	}
	path := fmt.Sprintf("/api/transactions?customer_id=%d", customerID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Transactions, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	} else {
		c.logger.Warnf("Gateway request %s %s without auth token", method, path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return ErrServerAsleep
		}
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unexpected response from server (status %d)", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if env.Message != "" {
			return errors.New(env.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
