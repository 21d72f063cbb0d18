package models

// PayHereCheckout is the payload handed to the PayHere checkout form for a
// pending booking. Hash signs merchant id, order id, amount and currency.
type PayHereCheckout struct {
	MerchantID string `json:"merchant_id"`
	OrderID    string `json:"order_id"`
	Items      string `json:"items"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	FirstName  string `json:"first_name,omitempty"`
	Email      string `json:"email,omitempty"`
}

// PayHereNotification is the server-to-server callback PayHere posts after a
// payment attempt. StatusCode 2 means received; -1 cancelled; -2 failed;
// -3 chargedback (refunded).
type PayHereNotification struct {
	MerchantID      string `form:"merchant_id"`
	OrderID         string `form:"order_id"`
	PaymentID       string `form:"payment_id"`
	PayHereAmount   string `form:"payhere_amount"`
	PayHereCurrency string `form:"payhere_currency"`
	StatusCode      string `form:"status_code"`
	MD5Sig          string `form:"md5sig"`
}

// ZoomMeeting is the subset of Zoom's meeting object the service keeps.
type ZoomMeeting struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url"`
	Topic    string `json:"topic"`
}
