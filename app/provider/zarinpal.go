package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// MissingAuthority is sent when verification is attempted without an
// authority; Zarinpal rejects it.
const MissingAuthority = "xxx"

var ErrNoAuthority = errors.New("no authority to redirect to")

// maxResponseBytes caps how much of a WebGate response is read. A longer body
// is cut off, fails to decode and is reported as a connection error.
const maxResponseBytes = 256 << 10

type paymentRequestPayload struct {
	MerchantID     string          `json:"MerchantID"`
	Amount         int64           `json:"Amount"`
	Description    string          `json:"Description"`
	Email          string          `json:"Email,omitempty"`
	Mobile         string          `json:"Mobile,omitempty"`
	CallbackURL    string          `json:"CallbackURL"`
	AdditionalData *AdditionalData `json:"AdditionalData,omitempty"`
}

type verificationPayload struct {
	MerchantID string `json:"MerchantID"`
	Amount     int64  `json:"Amount"`
	Authority  string `json:"Authority"`
}

type refreshAuthorityPayload struct {
	MerchantID string `json:"MerchantID"`
	Authority  string `json:"Authority"`
	ExpireIn   int    `json:"ExpireIn"`
}

type unverifiedPayload struct {
	MerchantID string `json:"MerchantID"`
}

// ZarinpalClient talks to the Zarinpal WebGate REST API. A client collects
// the parameters of one checkout and remembers the last response; it is not
// safe for concurrent use.
type ZarinpalClient struct {
	cfg    ZarinpalConfig
	client *http.Client

	amount      int64
	description string
	email       string
	mobile      string
	callbackURL string
	additional  AdditionalData

	last *Response
}

func NewZarinpalClient(cfg ZarinpalConfig) *ZarinpalClient {
	cfg = cfg.withDefaults()
	return &ZarinpalClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (c *ZarinpalClient) SetAmount(amount int64) {
	c.amount = amount
}

func (c *ZarinpalClient) SetDescription(description string) {
	c.description = description
}

func (c *ZarinpalClient) SetEmail(email string) {
	c.email = email
}

func (c *ZarinpalClient) SetMobile(mobile string) {
	c.mobile = mobile
}

func (c *ZarinpalClient) SetCallbackURL(url string) {
	c.callbackURL = url
}

// EnableZarinGate switches redirects to the ZarinGate flow. It needs to be
// activated for the merchant on Zarinpal's side.
func (c *ZarinpalClient) EnableZarinGate() {
	c.cfg.ZarinGate = true
}

func (c *ZarinpalClient) EnableSandbox() {
	c.cfg.Sandbox = true
}

// AddSharedPay adds a shared-pay share for account, replacing any earlier
// share of the same account.
func (c *ZarinpalClient) AddSharedPay(account string, amount int64, description string) {
	if c.additional.Wages == nil {
		c.additional.Wages = make(map[string]Wage)
	}
	c.additional.Wages[account] = Wage{Amount: amount, Description: description}
}

// SetExpiry sets a custom authority lifetime. Zarinpal accepts values in
// [MinExpireIn, MaxExpireIn]; the value is not checked here.
func (c *ZarinpalClient) SetExpiry(seconds int) {
	c.additional.ExpireIn = &seconds
}

func (c *ZarinpalClient) AdditionalData() AdditionalData {
	return c.additional
}

// Request asks Zarinpal for a new authority.
func (c *ZarinpalClient) Request(ctx context.Context) *Response {
	payload := paymentRequestPayload{
		MerchantID:  c.cfg.MerchantID,
		Amount:      c.amount,
		Description: c.description,
		Email:       c.email,
		Mobile:      c.mobile,
		CallbackURL: c.callbackURL,
	}
	method := c.additional.Method()
	if method == MethodPaymentRequestWithExtra {
		additional := c.additional
		payload.AdditionalData = &additional
	}

	c.last = c.post(ctx, method, payload, c.cfg.Sandbox)
	return c.last
}

// Verify confirms the payment identified by authority for the configured amount.
func (c *ZarinpalClient) Verify(ctx context.Context, authority string) *Response {
	if authority == "" {
		authority = MissingAuthority
	}
	c.last = c.post(ctx, MethodPaymentVerification, verificationPayload{
		MerchantID: c.cfg.MerchantID,
		Amount:     c.amount,
		Authority:  authority,
	}, c.cfg.Sandbox)
	return c.last
}

func (c *ZarinpalClient) RefreshAuthority(ctx context.Context, authority string, expireIn int) *Response {
	c.last = c.post(ctx, MethodRefreshAuthority, refreshAuthorityPayload{
		MerchantID: c.cfg.MerchantID,
		Authority:  authority,
		ExpireIn:   expireIn,
	}, c.cfg.Sandbox)
	return c.last
}

// UnverifiedTransactions lists paid but unverified transactions. Zarinpal
// only serves this method in production.
func (c *ZarinpalClient) UnverifiedTransactions(ctx context.Context) *Response {
	c.last = c.post(ctx, MethodUnverifiedTransactions, unverifiedPayload{
		MerchantID: c.cfg.MerchantID,
	}, false)
	return c.last
}

func (c *ZarinpalClient) LastResponse() *Response {
	return c.last
}

// Authority returns the authority of the last response if it was successful.
func (c *ZarinpalClient) Authority() (string, bool) {
	if c.last == nil || !c.last.OK {
		return "", false
	}
	return c.last.AuthorityField(), true
}

// RedirectURL returns the StartPay URL for the last successful response.
func (c *ZarinpalClient) RedirectURL() (string, bool) {
	authority, ok := c.Authority()
	if !ok {
		return "", false
	}

	if c.cfg.Sandbox {
		return c.cfg.SandboxEndpoints.RedirectURL + authority, true
	}
	suffix := ""
	if c.cfg.ZarinGate {
		suffix = ZarinGateSuffix
	}
	return c.cfg.ProductionEndpoints.RedirectURL + authority + suffix, true
}

// Redirect sends the user agent to the payment page.
func (c *ZarinpalClient) Redirect(ctx echo.Context) error {
	target, ok := c.RedirectURL()
	if !ok {
		return ErrNoAuthority
	}
	return ctx.Redirect(http.StatusFound, target)
}

func (c *ZarinpalClient) endpoints(sandbox bool) Endpoints {
	if sandbox {
		return c.cfg.SandboxEndpoints
	}
	return c.cfg.ProductionEndpoints
}

func (c *ZarinpalClient) post(ctx context.Context, method Method, payload any, sandbox bool) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return newLocalResponse(method, StatusLocalError)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints(sandbox).methodURL(method), bytes.NewReader(body))
	if err != nil {
		return newLocalResponse(method, StatusLocalError)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return newLocalResponse(method, StatusConnectionError)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newLocalResponse(method, StatusConnectionError)
	}

	return NewResponse(method, raw)
}
