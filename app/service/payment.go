package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-zarinpal/app/factory"
	"github.com/vibast-solutions/ms-go-zarinpal/app/metrics"
	"github.com/vibast-solutions/ms-go-zarinpal/app/provider"
	"github.com/vibast-solutions/ms-go-zarinpal/app/types"
)

// PaymentService runs checkout operations against Zarinpal. Every call gets
// its own client, so the service is safe for concurrent use.
type PaymentService struct {
	zarinpalCfg provider.ZarinpalConfig
	callbackURL string
	logger      logrus.FieldLogger
}

func NewPaymentService(zarinpalCfg provider.ZarinpalConfig, callbackURL string) *PaymentService {
	return &PaymentService{
		zarinpalCfg: zarinpalCfg,
		callbackURL: strings.TrimSpace(callbackURL),
		logger:      factory.NewModuleLogger("payment-service"),
	}
}

func (s *PaymentService) newClient() *provider.ZarinpalClient {
	return provider.NewZarinpalClient(s.zarinpalCfg)
}

// CreatePayment requests a new authority. The returned client holds the
// response and builds the redirect URL from it.
func (s *PaymentService) CreatePayment(ctx context.Context, req *types.CreatePaymentRequest) (*provider.ZarinpalClient, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	callbackURL, err := s.resolveCallbackURL(req)
	if err != nil {
		return nil, err
	}

	client := s.newClient()
	client.SetAmount(req.Amount)
	client.SetDescription(req.Description)
	client.SetEmail(req.Email)
	client.SetMobile(req.Mobile)
	client.SetCallbackURL(callbackURL)
	if req.ZarinGate {
		client.EnableZarinGate()
	}
	for _, wage := range req.Wages {
		client.AddSharedPay(wage.Account, wage.Amount, wage.Description)
	}
	if req.ExpireIn > 0 {
		client.SetExpiry(req.ExpireIn)
	}

	s.call(ctx, func() *provider.Response { return client.Request(ctx) })
	return client, nil
}

func (s *PaymentService) VerifyPayment(ctx context.Context, req *types.VerifyPaymentRequest) (*provider.Response, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	client := s.newClient()
	client.SetAmount(req.Amount)
	return s.call(ctx, func() *provider.Response { return client.Verify(ctx, req.Authority) }), nil
}

func (s *PaymentService) RefreshAuthority(ctx context.Context, req *types.RefreshAuthorityRequest) (*provider.Response, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	client := s.newClient()
	return s.call(ctx, func() *provider.Response {
		return client.RefreshAuthority(ctx, req.Authority, req.ExpireIn)
	}), nil
}

func (s *PaymentService) ListUnverified(ctx context.Context) (*provider.Response, error) {
	client := s.newClient()
	return s.call(ctx, func() *provider.Response { return client.UnverifiedTransactions(ctx) }), nil
}

// HandleCallback verifies the payment Zarinpal redirected the user back for.
// Payments the user abandoned (Status other than OK) are not verified.
func (s *PaymentService) HandleCallback(ctx context.Context, req *types.CallbackRequest) (*provider.Response, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	l := factory.LoggerFromContext(s.logger, ctx).WithField("authority", req.Authority)
	if !strings.EqualFold(req.Status, "OK") {
		metrics.IncCallback("canceled")
		l.WithField("callback_status", req.Status).Info("Payment canceled on gateway")
		return nil, ErrPaymentCanceled
	}

	resp, err := s.VerifyPayment(ctx, &types.VerifyPaymentRequest{Authority: req.Authority, Amount: req.Amount})
	if err != nil {
		return nil, err
	}
	if resp.OK {
		metrics.IncCallback("verified")
	} else {
		metrics.IncCallback("failed")
	}
	return resp, nil
}

// RunUnverifiedReport logs every paid transaction that was never verified.
func (s *PaymentService) RunUnverifiedReport(ctx context.Context) error {
	resp, err := s.ListUnverified(ctx)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%w: status=%d message=%s", ErrGatewayFailure, resp.Status, resp.Message)
	}

	items, err := resp.UnverifiedAuthorities()
	if err != nil {
		return err
	}

	l := factory.LoggerFromContext(s.logger, ctx)
	for _, item := range items {
		l.WithFields(logrus.Fields{
			"authority": item.Authority,
			"amount":    item.Amount,
			"channel":   item.Channel,
			"date":      item.Date,
		}).Warn("unverified_transaction")
	}
	l.WithField("count", len(items)).Info("unverified_report_completed")
	return nil
}

func (s *PaymentService) call(ctx context.Context, fn func() *provider.Response) *provider.Response {
	start := time.Now()
	resp := fn()
	elapsed := time.Since(start)

	metrics.ObserveGatewayCall(string(resp.Method), resp.OK, resp.Status, elapsed)

	entry := factory.LoggerFromContext(s.logger, ctx).WithFields(logrus.Fields{
		"method":  resp.Method,
		"status":  resp.Status,
		"ok":      resp.OK,
		"latency": elapsed.String(),
	})
	switch {
	case resp.OK:
		entry.Debug("gateway_call")
	case provider.IsLocalStatus(resp.Status):
		entry.WithField("message", resp.Message).Error("gateway_call_failed")
	default:
		entry.WithField("message", resp.Message).Warn("gateway_call_rejected")
	}
	return resp
}

// resolveCallbackURL falls back to the configured callback URL, tagged with
// the amount so the callback can verify without stored state.
func (s *PaymentService) resolveCallbackURL(req *types.CreatePaymentRequest) (string, error) {
	if strings.TrimSpace(req.CallbackURL) != "" {
		return strings.TrimSpace(req.CallbackURL), nil
	}
	if s.callbackURL == "" {
		return "", fmt.Errorf("%w: callback url is not configured", ErrInvalidRequest)
	}

	u, err := url.Parse(s.callbackURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid configured callback url", ErrInvalidRequest)
	}
	q := u.Query()
	q.Set("amount", strconv.FormatInt(req.Amount, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
