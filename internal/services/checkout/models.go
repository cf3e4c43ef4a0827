package checkout

import (
	json "github.com/json-iterator/go"
)

// Link is a provider hyperlink wrapper. It unmarshals the `{"href": ...}`
// object and keeps only the target, which the normalizer unwraps to a plain
// string.
type Link string

func (l Link) Href() string { return string(l) }

func (l *Link) UnmarshalJSON(b []byte) error {
	var raw struct {
		Href string `json:"href"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*l = Link(raw.Href)
	return nil
}

type Address struct {
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	Zip          string `json:"zip,omitempty"`
	Country      string `json:"country,omitempty"`
}

type Customer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type PaymentSource struct {
	Type           string   `json:"type,omitempty"`
	ID             string   `json:"id,omitempty"`
	Scheme         string   `json:"scheme,omitempty"`
	Last4          string   `json:"last4,omitempty"`
	Fingerprint    string   `json:"fingerprint,omitempty"`
	Bin            string   `json:"bin,omitempty"`
	CardType       string   `json:"card_type,omitempty"`
	IssuerCountry  string   `json:"issuer_country,omitempty"`
	ExpiryMonth    int      `json:"expiry_month,omitempty"`
	ExpiryYear     int      `json:"expiry_year,omitempty"`
	BillingAddress *Address `json:"billing_address,omitempty"`
}

type Balances struct {
	TotalAuthorized int64 `json:"total_authorized"`
	TotalCaptured   int64 `json:"total_captured"`
	TotalRefunded   int64 `json:"total_refunded"`
	TotalVoided     int64 `json:"total_voided"`
	Available       int64 `json:"available_to_capture"`
}

// PaymentDetails is the provider's GET /payments/{id} answer. It is a typed
// object graph on purpose: handlers run it through the normalizer before
// returning it, the same way every provider response object is flattened.
type PaymentDetails struct {
	ID              string          `json:"id"`
	RequestedOn     string          `json:"requested_on,omitempty"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentType     string          `json:"payment_type,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Status          string          `json:"status"`
	Approved        bool            `json:"approved"`
	ResponseCode    string          `json:"response_code,omitempty"`
	ResponseSummary string          `json:"response_summary,omitempty"`
	Source          *PaymentSource  `json:"source,omitempty"`
	Customer        *Customer       `json:"customer,omitempty"`
	Balances        *Balances       `json:"balances,omitempty"`
	Links           map[string]Link `json:"_links,omitempty"`
}

// WalletToken is the answer to a wallet token exchange (POST /tokens).
type WalletToken struct {
	Type        string `json:"type"`
	Token       string `json:"token"`
	ExpiresOn   string `json:"expires_on,omitempty"`
	ExpiryMonth int    `json:"expiry_month,omitempty"`
	ExpiryYear  int    `json:"expiry_year,omitempty"`
	Scheme      string `json:"scheme,omitempty"`
	Last4       string `json:"last4,omitempty"`
	Bin         string `json:"bin,omitempty"`
}
