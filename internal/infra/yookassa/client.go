package yookassa

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rvinnie/yookassa-sdk-go/yookassa"
	yoocommon "github.com/rvinnie/yookassa-sdk-go/yookassa/common"
	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"
)

// Client wraps the YooKassa SDK client
type Client struct {
	client    *yookassa.Client
	logger    *slog.Logger
	returnURL string
}

// NewClient creates a new YooKassa client wrapper
func NewClient(shopID, secretKey, returnURL string, logger *slog.Logger) (*Client, error) {
	client := yookassa.NewClient(shopID, secretKey)

	return &Client{
		client:    client,
		logger:    logger,
		returnURL: returnURL,
	}, nil
}

// CreatePayment creates a payment in YooKassa and returns it with the
// provider-assigned id and confirmation URL.
func (c *Client) CreatePayment(ctx context.Context, amount float64, currency, description string, metadata map[string]string) (*yoopayment.Payment, error) {
	c.logger.Info("Creating payment in YooKassa", "amount", amount, "currency", currency)

	// Ключ идемпотентности для повторной отправки того же запроса
	idempotenceKey := fmt.Sprintf("%s_%d", uuid.New().String(), time.Now().Unix())

	payment := &yoopayment.Payment{
		Amount: &yoocommon.Amount{
			Value:    fmt.Sprintf("%.2f", amount),
			Currency: currency,
		},
		Confirmation: &yoopayment.Redirect{
			Type:      yoopayment.TypeRedirect,
			ReturnURL: c.returnURL,
		},
		Description: description,
		Metadata:    metadata,
		Capture:     true,
	}

	paymentHandler := yookassa.NewPaymentHandler(c.client).WithIdempotencyKey(idempotenceKey)
	result, err := paymentHandler.CreatePayment(payment)
	if err != nil {
		c.logger.Error("Failed to create payment in YooKassa", "error", err)
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	c.logger.Info("Payment created in YooKassa", "payment_id", result.ID, "status", result.Status)
	return result, nil
}

// GetPaymentStatus gets payment status from YooKassa
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*yoopayment.Payment, error) {
	paymentHandler := yookassa.NewPaymentHandler(c.client)
	result, err := paymentHandler.FindPayment(paymentID)
	if err != nil {
		c.logger.Error("Failed to get payment status", "error", err, "payment_id", paymentID)
		return nil, fmt.Errorf("failed to get payment status: %w", err)
	}

	return result, nil
}

// ConfirmationURL извлекает ссылку на оплату из confirmation объекта.
func ConfirmationURL(payment *yoopayment.Payment) string {
	if payment.Confirmation == nil {
		return ""
	}

	// SDK использует interface{} для Confirmation, нужен type assertion
	if redirect, ok := payment.Confirmation.(*yoopayment.Redirect); ok {
		return redirect.ConfirmationURL
	}

	// SDK иногда возвращает map вместо типизированного объекта
	if confMap, ok := payment.Confirmation.(map[string]interface{}); ok {
		if url, exists := confMap["confirmation_url"].(string); exists {
			return url
		}
	}

	return ""
}
