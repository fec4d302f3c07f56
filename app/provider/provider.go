package provider

import (
	"fmt"
	"strings"
	"time"
)

// Method is a Zarinpal WebGate remote method name.
type Method string

const (
	MethodPaymentRequest          Method = "PaymentRequest"
	MethodPaymentRequestWithExtra Method = "PaymentRequestWithExtra"
	MethodPaymentVerification     Method = "PaymentVerification"
	MethodRefreshAuthority        Method = "RefreshAuthority"
	MethodUnverifiedTransactions  Method = "UnverifiedTransactions"
)

// Endpoints holds the API URL template (one %s for the method name) and the
// StartPay base URL of one Zarinpal environment.
type Endpoints struct {
	APIURL      string
	RedirectURL string
}

var (
	DefaultProductionEndpoints = Endpoints{
		APIURL:      "https://www.zarinpal.com/pg/rest/WebGate/%s.json",
		RedirectURL: "https://www.zarinpal.com/pg/StartPay/",
	}
	DefaultSandboxEndpoints = Endpoints{
		APIURL:      "https://sandbox.zarinpal.com/pg/rest/WebGate/%s.json",
		RedirectURL: "https://sandbox.zarinpal.com/pg/StartPay/",
	}
)

// ZarinGateSuffix is appended to production redirect URLs when ZarinGate is enabled.
const ZarinGateSuffix = "/ZarinGate"

func (e Endpoints) methodURL(method Method) string {
	return fmt.Sprintf(e.APIURL, method)
}

func (e Endpoints) isZero() bool {
	return strings.TrimSpace(e.APIURL) == "" && strings.TrimSpace(e.RedirectURL) == ""
}

type ZarinpalConfig struct {
	MerchantID  string
	Sandbox     bool
	ZarinGate   bool
	HTTPTimeout time.Duration

	// Zero values fall back to the public Zarinpal URLs.
	ProductionEndpoints Endpoints
	SandboxEndpoints    Endpoints
}

func (c ZarinpalConfig) withDefaults() ZarinpalConfig {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.ProductionEndpoints.isZero() {
		c.ProductionEndpoints = DefaultProductionEndpoints
	}
	if c.SandboxEndpoints.isZero() {
		c.SandboxEndpoints = DefaultSandboxEndpoints
	}
	return c
}
