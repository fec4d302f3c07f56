package types

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-zarinpal/app/provider"
)

type Wage struct {
	Account     string `json:"account"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type CreatePaymentRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Email       string `json:"email,omitempty"`
	Mobile      string `json:"mobile,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
	ZarinGate   bool   `json:"zarin_gate,omitempty"`
	ExpireIn    int    `json:"expire_in,omitempty"`
	Wages       []Wage `json:"wages,omitempty"`
}

type VerifyPaymentRequest struct {
	Authority string `json:"authority"`
	Amount    int64  `json:"amount"`
}

type RefreshAuthorityRequest struct {
	Authority string `json:"authority"`
	ExpireIn  int    `json:"expire_in"`
}

type ListUnverifiedRequest struct{}

// CallbackRequest carries the query parameters Zarinpal appends to the
// callback URL, plus the amount the callback URL was issued with.
type CallbackRequest struct {
	Authority string `json:"authority"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

type HealthRequest struct{}

type HealthResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type UnverifiedAuthority struct {
	Authority   string `json:"authority"`
	Amount      int64  `json:"amount"`
	Channel     string `json:"channel,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
	Referer     string `json:"referer,omitempty"`
	Email       string `json:"email,omitempty"`
	CellPhone   string `json:"cell_phone,omitempty"`
	Date        string `json:"date,omitempty"`
}

type GatewayResponse struct {
	OK          bool                  `json:"ok"`
	Status      int                   `json:"status"`
	Message     string                `json:"message"`
	Method      string                `json:"method,omitempty"`
	Authority   string                `json:"authority,omitempty"`
	RedirectURL string                `json:"redirect_url,omitempty"`
	RefID       int64                 `json:"ref_id,omitempty"`
	ExtraDetail json.RawMessage       `json:"extra_detail,omitempty"`
	Authorities []UnverifiedAuthority `json:"authorities,omitempty"`
}

func NewCreatePaymentRequestFromContext(ctx echo.Context) (*CreatePaymentRequest, error) {
	var body CreatePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Normalize()
	return &body, nil
}

// NewStartPaymentRequestFromContext reads a checkout from query parameters,
// for flows where the user agent is sent straight to the payment page. The
// route is public, so the callback URL is never taken from the query.
func NewStartPaymentRequestFromContext(ctx echo.Context) (*CreatePaymentRequest, error) {
	req := &CreatePaymentRequest{
		Description: ctx.QueryParam("description"),
		Email:       ctx.QueryParam("email"),
		Mobile:      ctx.QueryParam("mobile"),
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(ctx.QueryParam("amount")), 10, 64)
	if err != nil {
		return nil, err
	}
	req.Amount = amount

	if raw := strings.TrimSpace(ctx.QueryParam("zarin_gate")); raw != "" {
		zarinGate, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		req.ZarinGate = zarinGate
	}

	req.Normalize()
	return req, nil
}

func (r *CreatePaymentRequest) Normalize() {
	r.Description = strings.TrimSpace(r.Description)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Mobile = strings.TrimSpace(r.Mobile)
	r.CallbackURL = strings.TrimSpace(r.CallbackURL)
	for i := range r.Wages {
		r.Wages[i].Account = strings.TrimSpace(r.Wages[i].Account)
		r.Wages[i].Description = strings.TrimSpace(r.Wages[i].Description)
	}
}

func (r *CreatePaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if r.Description == "" {
		return errors.New("description is required")
	}
	if r.CallbackURL != "" && !isAbsoluteURL(r.CallbackURL) {
		return errors.New("callback_url must be an absolute URL")
	}
	if r.ExpireIn != 0 && !provider.ValidExpireIn(r.ExpireIn) {
		return errors.New("expire_in must be between 1800 and 3888000 seconds")
	}
	for _, wage := range r.Wages {
		if wage.Account == "" {
			return errors.New("wage account is required")
		}
		if wage.Amount <= 0 {
			return errors.New("wage amount must be > 0")
		}
	}
	return nil
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) (*VerifyPaymentRequest, error) {
	var body VerifyPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Normalize()
	return &body, nil
}

func (r *VerifyPaymentRequest) Normalize() {
	r.Authority = strings.TrimSpace(r.Authority)
}

// Validate leaves the authority optional: an empty one is sent as a
// placeholder and rejected by Zarinpal.
func (r *VerifyPaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	return nil
}

func NewRefreshAuthorityRequestFromContext(ctx echo.Context) (*RefreshAuthorityRequest, error) {
	var body RefreshAuthorityRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Normalize()
	return &body, nil
}

func (r *RefreshAuthorityRequest) Normalize() {
	r.Authority = strings.TrimSpace(r.Authority)
}

func (r *RefreshAuthorityRequest) Validate() error {
	if r.Authority == "" {
		return errors.New("authority is required")
	}
	if !provider.ValidExpireIn(r.ExpireIn) {
		return errors.New("expire_in must be between 1800 and 3888000 seconds")
	}
	return nil
}

func NewCallbackRequestFromContext(ctx echo.Context) (*CallbackRequest, error) {
	req := &CallbackRequest{
		Authority: ctx.QueryParam("Authority"),
		Status:    ctx.QueryParam("Status"),
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(ctx.QueryParam("amount")), 10, 64)
	if err != nil {
		return nil, err
	}
	req.Amount = amount
	req.Normalize()
	return req, nil
}

func (r *CallbackRequest) Normalize() {
	r.Authority = strings.TrimSpace(r.Authority)
	r.Status = strings.TrimSpace(r.Status)
}

func (r *CallbackRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if r.Status == "" {
		return errors.New("status is required")
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}
