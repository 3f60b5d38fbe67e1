package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"

	"cafepos/internal/model"
)

// Gateway-side transaction statuses carried by webhook notifications.
const (
	TxStatusCapture    = "capture"
	TxStatusSettlement = "settlement"
	TxStatusPending    = "pending"
	TxStatusDeny       = "deny"
	TxStatusExpire     = "expire"
	TxStatusCancel     = "cancel"

	PaymentTypeCreditCard = "credit_card"
	FraudStatusChallenge  = "challenge"
)

// Notification is the parsed gateway webhook payload. OrderID carries the
// order UUID the token was issued for.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

// ParseNotification decodes a raw webhook payload
func ParseNotification(payload []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, model.Validationf("malformed notification payload: %v", err)
	}
	if n.OrderID == "" || n.TransactionStatus == "" {
		return nil, model.Validationf("notification missing order_id or transaction_status")
	}
	return &n, nil
}

// VerifySignature checks the gateway signature:
// sha512(order_id + status_code + gross_amount + server_key)
func (n *Notification) VerifySignature(serverKey string) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}
