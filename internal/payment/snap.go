package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cafepos/internal/model"
	"cafepos/pkg/config"

	"go.uber.org/zap"
)

// SnapClient talks to the Snap-style payment gateway over HTTP. The server
// key authenticates via basic auth with an empty password.
type SnapClient struct {
	BaseURL    string
	ServerKey  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewSnapClient creates a gateway client from configuration
func NewSnapClient(cfg *config.GatewayConfig, logger *zap.Logger) *SnapClient {
	return &SnapClient{
		BaseURL:    cfg.BaseURL,
		ServerKey:  cfg.ServerKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
	}
}

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapCustomerDetails struct {
	FirstName string `json:"first_name"`
}

type snapItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type snapRequest struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	CustomerDetails    snapCustomerDetails    `json:"customer_details"`
	ItemDetails        []snapItemDetail       `json:"item_details"`
}

type snapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CreateTransaction registers the order with the gateway and returns the
// snap token for client-side payment completion
func (c *SnapClient) CreateTransaction(ctx context.Context, order *model.Order, items []LineItem) (string, error) {
	customerName := order.CustomerName
	if customerName == "" {
		customerName = "Guest"
	}

	reqBody := snapRequest{
		TransactionDetails: snapTransactionDetails{
			OrderID:     order.UUID,
			GrossAmount: order.TotalAmount.IntPart(),
		},
		CustomerDetails: snapCustomerDetails{FirstName: customerName},
		ItemDetails:     make([]snapItemDetail, 0, len(items)),
	}
	for _, it := range items {
		name := it.Name
		if len(name) > 50 {
			name = name[:50]
		}
		reqBody.ItemDetails = append(reqBody.ItemDetails, snapItemDetail{
			ID:       it.ID,
			Price:    it.Price.IntPart(),
			Quantity: it.Quantity,
			Name:     name,
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/snap/v1/transactions", c.BaseURL), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.ServerKey, "")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Snap transaction request failed",
			zap.String("order_uuid", order.UUID),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.Logger.Error("Snap transaction rejected",
			zap.String("order_uuid", order.UUID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)))
		return "", fmt.Errorf("%w: status %d", model.ErrGatewayUnavailable, resp.StatusCode)
	}

	var snap snapResponse
	if err := json.Unmarshal(body, &snap); err != nil {
		return "", fmt.Errorf("%w: invalid response: %v", model.ErrGatewayUnavailable, err)
	}
	if snap.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", model.ErrGatewayUnavailable)
	}

	c.Logger.Info("Snap token issued", zap.String("order_uuid", order.UUID))
	return snap.Token, nil
}
