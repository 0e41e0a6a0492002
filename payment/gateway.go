package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/razorpay/razorpay-go"
)

// Order is the gateway's view of a payment order.
type Order struct {
	ID       string `json:"id" example:"order_9A33XWu170gUtm"`
	Amount   int64  `json:"amount" example:"5000"`
	Currency string `json:"currency" example:"INR"`
	Receipt  string `json:"receipt" example:"11"`
	Status   string `json:"status" example:"created"`
}

// Gateway creates and looks up payment orders. Amounts are in minor units.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (Order, error)
	FetchOrder(ctx context.Context, orderID string) (Order, error)
}

// orderAPI is the razorpay-go orders resource.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	orders orderAPI
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order}
}

// GatewayFromConfig returns nil when Razorpay keys are not configured.
func GatewayFromConfig(cfg *config.Config) Gateway {
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		return nil
	}
	return NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
}

// ToMinor converts a fee such as 49.5 into 4950.
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	body, err := g.orders.Create(map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return Order{}, fmt.Errorf("create razorpay order: %w", err)
	}
	return parseOrder(body)
}

func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	body, err := g.orders.Fetch(orderID, nil, nil)
	if err != nil {
		return Order{}, fmt.Errorf("fetch razorpay order: %w", err)
	}
	return parseOrder(body)
}

func parseOrder(body map[string]interface{}) (Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return Order{}, fmt.Errorf("razorpay response without order id")
	}
	o := Order{ID: id}
	o.Currency, _ = body["currency"].(string)
	o.Receipt, _ = body["receipt"].(string)
	o.Status, _ = body["status"].(string)
	switch v := body["amount"].(type) {
	case float64:
		o.Amount = int64(v)
	case int64:
		o.Amount = v
	case int:
		o.Amount = int64(v)
	}
	return o, nil
}
