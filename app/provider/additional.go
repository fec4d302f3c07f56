package provider

const (
	MinExpireIn = 1800
	MaxExpireIn = 3888000
)

// Wage is one shared-pay share settled to a separate account.
type Wage struct {
	Amount      int64  `json:"Amount"`
	Description string `json:"Description"`
}

// AdditionalData is the optional extra payload of PaymentRequestWithExtra.
type AdditionalData struct {
	Wages    map[string]Wage `json:"Wages,omitempty"`
	ExpireIn *int            `json:"expireIn,omitempty"`
}

// HasExtra reports whether any extra field is set.
func (d AdditionalData) HasExtra() bool {
	return len(d.Wages) > 0 || d.ExpireIn != nil
}

// Method returns the authority creation method matching the payload shape.
func (d AdditionalData) Method() Method {
	if d.HasExtra() {
		return MethodPaymentRequestWithExtra
	}
	return MethodPaymentRequest
}

// ValidExpireIn reports whether seconds is within the lifetime Zarinpal accepts.
func ValidExpireIn(seconds int) bool {
	return seconds >= MinExpireIn && seconds <= MaxExpireIn
}
