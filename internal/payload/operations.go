package payload

import (
	"fmt"
	"strings"
)

// Defaults carries the process-wide fallback constants applied when the
// frontend leaves a field out. Read-only after startup.
type Defaults struct {
	ProcessingChannelID string
	SuccessURL          string
	FailureURL          string
	Locale              string
	DisplayName         string
}

// ForPaymentSession prepares a create-payment-session body. Loose top-level
// email/country fields are lifted into the nested customer/billing shape the
// provider expects before the required-field check runs.
func ForPaymentSession(in Payload, d Defaults) (Payload, error) {
	p := in.Clone()

	customer := p.Child("customer")
	if childString(customer, "email") == "" && p.String("email") != "" {
		customer["email"] = p.String("email")
		delete(p, "email")
	}
	// billing.address sits two levels deep, past what Clone copies, so it
	// is re-copied before any write.
	billing := p.Child("billing")
	address := make(map[string]any)
	if existing, ok := billing["address"].(map[string]any); ok {
		for k, v := range existing {
			address[k] = v
		}
	}
	billing["address"] = address
	if childString(address, "country") == "" && p.String("country") != "" {
		address["country"] = p.String("country")
		delete(p, "country")
	}

	var missing []string
	amount, hasAmount := p.Number("amount")
	if !hasAmount || amount <= 0 {
		missing = append(missing, "amount")
	}
	if !p.Has("currency") {
		missing = append(missing, "currency")
	}
	email := childString(customer, "email")
	if email == "" {
		missing = append(missing, "customer.email")
	}
	if childString(address, "country") == "" {
		missing = append(missing, "billing.address.country")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Operation: "create-payment-session", Missing: missing}
	}

	if !p.Has("reference") {
		p["reference"] = sessionReference(email, p.String("currency"), amount, childString(address, "country"))
	}
	p.SetDefault("processing_channel_id", d.ProcessingChannelID)
	p.SetDefault("success_url", d.SuccessURL)
	p.SetDefault("failure_url", d.FailureURL)
	p.SetDefault("locale", d.Locale)
	p.SetDefault("display_name", d.DisplayName)
	p.SetDefault("capture", true)
	return p, nil
}

// ForPaymentContext prepares a create-payment-context body for wallet-style
// flows.
func ForPaymentContext(in Payload, d Defaults) (Payload, error) {
	p := in.Clone()

	customer := p.Child("customer")
	if childString(customer, "email") == "" && p.String("email") != "" {
		customer["email"] = p.String("email")
		delete(p, "email")
	}
	p.SetDefault("processing_channel_id", d.ProcessingChannelID)
	p.SetDefault("success_url", d.SuccessURL)
	p.SetDefault("failure_url", d.FailureURL)

	var missing []string
	amount, hasAmount := p.Number("amount")
	if !hasAmount || amount <= 0 {
		missing = append(missing, "amount")
	}
	if !p.Has("currency") {
		missing = append(missing, "currency")
	}
	if childString(customer, "email") == "" {
		missing = append(missing, "customer.email")
	}
	if !p.Has("processing_channel_id") {
		missing = append(missing, "processing_channel_id")
	}
	if !p.Has("success_url") {
		missing = append(missing, "success_url")
	}
	if !p.Has("failure_url") {
		missing = append(missing, "failure_url")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Operation: "create-payment-context", Missing: missing}
	}

	p.SetDefault("reference", "cko-context-"+randomSuffix())
	p.SetDefault("capture", true)
	p.SetDefault("payment_type", "Regular")
	source := p.Child("source")
	setChildDefault(source, "type", "paypal")
	processing := p.Child("processing")
	setChildDefault(processing, "invoice_id", "inv-"+randomSuffix())
	setChildDefault(processing, "user_action", "continue")
	setChildDefault(processing, "shipping_preference", "set_provided_address")
	if !p.Has("items") {
		p["items"] = []any{map[string]any{
			"name":         "Storefront order",
			"quantity":     1,
			"unit_price":   amount,
			"total_amount": amount,
		}}
	}
	return p, nil
}

// ForPayment prepares a request-payment body. Exactly one source shape is
// accepted: a payment context id from an approved wallet flow, or full card
// fields. Everything else passes through untouched.
func ForPayment(in Payload) (Payload, error) {
	p := in.Clone()

	// Loose card fields from older frontend revisions are lifted into the
	// nested source object.
	if p.Has("card_number") {
		source := p.Child("source")
		setChildDefault(source, "type", "card")
		setChildDefault(source, "number", p.String("card_number"))
		setChildDefault(source, "expiry_month", p["expiry_month"])
		setChildDefault(source, "expiry_year", p["expiry_year"])
		setChildDefault(source, "cvv", p.String("cvv"))
		delete(p, "card_number")
		delete(p, "expiry_month")
		delete(p, "expiry_year")
		delete(p, "cvv")
	}

	hasContext := p.Has("payment_context_id")
	source, _ := p["source"].(map[string]any)
	hasCard := source != nil && childString(source, "type") == "card"

	switch {
	case hasContext && hasCard:
		return nil, &ValidationError{
			Operation: "request-payment",
			Reason:    "payment_context_id and a card source are mutually exclusive",
		}
	case hasContext:
		return p, nil
	case hasCard:
		var missing []string
		for _, field := range []string{"number", "expiry_month", "expiry_year", "cvv"} {
			if v, ok := source[field]; !ok || isFalsy(v) {
				missing = append(missing, "source."+field)
			}
		}
		if len(missing) > 0 {
			return nil, &ValidationError{Operation: "request-payment", Missing: missing}
		}
		return p, nil
	}
	return nil, &ValidationError{
		Operation: "request-payment",
		Missing:   []string{"payment_context_id", "source"},
		Reason:    "either payment_context_id or a card source is required",
	}
}

// ForFlowSubmit prepares the body for submitting a collected flow session.
// The caller's threeDsEnabled flag is folded into the 3ds block the submit
// endpoint expects.
func ForFlowSubmit(in Payload) (string, Payload, error) {
	p := in.Clone()

	var missing []string
	if !p.Has("session_data") {
		missing = append(missing, "session_data")
	}
	sessionID := p.String("payment_session_id")
	if sessionID == "" {
		missing = append(missing, "payment_session_id")
	}
	amount, hasAmount := p.Number("amount")
	if !hasAmount || amount <= 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return "", nil, &ValidationError{Operation: "submit-flow-session-payment", Missing: missing}
	}

	rawFlag, hadFlag := p["threeDsEnabled"]
	delete(p, "threeDsEnabled")
	delete(p, "payment_session_id")

	p.SetDefault("reference", fmt.Sprintf("SUBMIT-ORD-%s-%s", sessionID, randomSuffix()))
	threeDs := p.Child("3ds")
	if hadFlag {
		enabled, _ := rawFlag.(bool)
		threeDs["enabled"] = enabled
	} else if _, ok := threeDs["enabled"]; !ok {
		threeDs["enabled"] = false
	}
	setChildDefault(threeDs, "challenge_indicator", "no_preference")
	return sessionID, p, nil
}

func sessionReference(email, currency string, amount float64, country string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	return fmt.Sprintf("ord-%s-%s-%d-%s-%s",
		strings.ToLower(local),
		strings.ToLower(currency),
		int64(amount),
		strings.ToLower(country),
		randomSuffix())
}
