package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
)

// XenditInvoice fetches the hosted payment page URL for an order. A failure
// here means payment could not be started; the order itself stays created.
func (c *Client) XenditInvoice(ctx context.Context, orderID int64) (*XenditInvoice, error) {
	query := url.Values{"orderId": []string{strconv.FormatInt(orderID, 10)}}
	var invoice XenditInvoice
	if err := c.do(ctx, http.MethodGet, "/api/payments/xendit-invoice", query, nil, &invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePaymentInit, err, "failed to initialize payment gateway")
	}
	if invoice.InvoiceURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodePaymentInit, "payment gateway returned no invoice url")
	}
	return &invoice, nil
}

// ProcessPayment drives the legacy direct payment path, superseded by the
// hosted invoice flow but still served by the backend.
func (c *Client) ProcessPayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/api/payments", nil, req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
