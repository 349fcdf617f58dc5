package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/linescout/linescout-backend/pkg/config"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/logger"
)

var (
	errSecretKeyRequired = errors.New("paystack secret key is required")
	errLoggerRequired    = errors.New("paystack logger is required")
)

// Client wraps the Paystack REST API with centralized auth, logging, and error mapping.
type Client struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
	logger     *logger.Logger
}

// VerifyResponse is the subset of the transaction verify payload we consume.
type VerifyResponse struct {
	Status     string         `json:"status"`
	Reference  string         `json:"reference"`
	AmountKobo int64          `json:"amount"`
	Currency   string         `json:"currency"`
	PaidAt     string         `json:"paid_at"`
	Metadata   map[string]any `json:"metadata"`
	Customer   CustomerRef    `json:"customer"`
}

// CustomerRef carries the customer identity attached to a transaction.
type CustomerRef struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type verifyEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    *VerifyResponse `json:"data"`
}

// NewClient initializes the Paystack wrapper and validates the credentials.
func NewClient(cfg config.PaystackConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.paystack.co"
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		secretKey:  secret,
		baseURL:    base,
		logger:     logg,
	}, nil
}

// VerifyTransaction calls GET /transaction/verify/:reference and returns the
// decoded transaction when Paystack reports success.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResponse, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building paystack request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paystack verify call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading paystack response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction reference not found").WithDetails(map[string]any{
			"reference": reference,
		})
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paystack verify returned an error").WithDetails(map[string]any{
			"status_code": resp.StatusCode,
		})
	}

	var envelope verifyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding paystack response")
	}
	if !envelope.Status || envelope.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paystack rejected the verify request").WithDetails(map[string]any{
			"message": envelope.Message,
		})
	}

	if c.logger != nil {
		logCtx := c.logger.WithFields(ctx, map[string]any{
			"reference": reference,
			"tx_status": envelope.Data.Status,
		})
		c.logger.Info(logCtx, "paystack transaction verified")
	}

	return envelope.Data, nil
}

// IsSuccessful reports whether the verified transaction settled.
func (v *VerifyResponse) IsSuccessful() bool {
	return v != nil && strings.EqualFold(v.Status, "success")
}
