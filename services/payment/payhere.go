// Package payment wraps the PayHere checkout flow: payload construction,
// signature generation, and notify-callback verification. PayHere is a
// plain form-post gateway, so the boundary stays thin.
package payment

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Sem-Five-Project/edimy/models"
)

// PayHere status codes posted to the notify URL.
const (
	StatusReceived    = "2"
	StatusCancelled   = "-1"
	StatusFailed      = "-2"
	StatusChargedback = "-3"
)

// PayHereClient signs checkout payloads and verifies notifications.
type PayHereClient struct {
	MerchantID string
	Secret     string
	Currency   string
	ReturnURL  string
	CancelURL  string
	NotifyURL  string
}

// NewPayHereClient constructs a client for one merchant account.
func NewPayHereClient(merchantID, secret, currency, returnURL, cancelURL, notifyURL string) *PayHereClient {
	if currency == "" {
		currency = "LKR"
	}
	return &PayHereClient{
		MerchantID: merchantID,
		Secret:     secret,
		Currency:   currency,
		ReturnURL:  returnURL,
		CancelURL:  cancelURL,
		NotifyURL:  notifyURL,
	}
}

// BuildCheckout prepares the signed payload the client posts to PayHere for
// a pending booking. The booking id doubles as the order id, which the
// notify callback echoes back.
func (c *PayHereClient) BuildCheckout(booking *models.Booking, studentName, studentEmail string) *models.PayHereCheckout {
	amount := fmt.Sprintf("%.2f", booking.TotalPrice)
	return &models.PayHereCheckout{
		MerchantID: c.MerchantID,
		OrderID:    booking.ID,
		Items:      fmt.Sprintf("%s class (%s)", booking.Subject, booking.ClassType),
		Amount:     amount,
		Currency:   c.Currency,
		Hash:       c.checkoutHash(booking.ID, amount),
		ReturnURL:  c.ReturnURL,
		CancelURL:  c.CancelURL,
		NotifyURL:  c.NotifyURL,
		FirstName:  studentName,
		Email:      studentEmail,
	}
}

// VerifyNotification checks the md5sig on a notify callback.
func (c *PayHereClient) VerifyNotification(n *models.PayHereNotification) bool {
	expected := upperMD5(
		c.MerchantID + n.OrderID + n.PayHereAmount + n.PayHereCurrency + n.StatusCode + upperMD5(c.Secret),
	)
	return n.MerchantID == c.MerchantID && strings.EqualFold(n.MD5Sig, expected)
}

// BookingStatusFor maps a PayHere status code to the booking status it
// implies. Unknown codes map to FAILED.
func BookingStatusFor(statusCode string) string {
	switch statusCode {
	case StatusReceived:
		return models.BookingStatusConfirmed
	case StatusCancelled:
		return models.BookingStatusCancelled
	case StatusChargedback:
		return models.BookingStatusRefunded
	default:
		return models.BookingStatusFailed
	}
}

func (c *PayHereClient) checkoutHash(orderID, amount string) string {
	return upperMD5(c.MerchantID + orderID + amount + c.Currency + upperMD5(c.Secret))
}

func upperMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
