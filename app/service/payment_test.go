package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-zarinpal/app/provider"
	"github.com/vibast-solutions/ms-go-zarinpal/app/types"
)

const testMerchantID = "1344b5d4-0048-11e8-94db-005056a205be"

type gatewayRequest struct {
	method string
	body   map[string]any
}

type fakeZarinpal struct {
	mu        sync.Mutex
	requests  []gatewayRequest
	responses map[string]string
}

func (f *fakeZarinpal) last(t *testing.T) gatewayRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("expected a gateway request")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeZarinpal) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newFakeZarinpal(t *testing.T, responses map[string]string) (*fakeZarinpal, provider.ZarinpalConfig) {
	t.Helper()
	fake := &fakeZarinpal{responses: responses}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		method := strings.TrimSuffix(path.Base(r.URL.Path), ".json")

		fake.mu.Lock()
		fake.requests = append(fake.requests, gatewayRequest{method: method, body: body})
		fake.mu.Unlock()

		_, _ = io.WriteString(w, fake.responses[method])
	}))
	t.Cleanup(srv.Close)

	endpoints := provider.Endpoints{
		APIURL:      srv.URL + "/pg/rest/WebGate/%s.json",
		RedirectURL: "https://www.zarinpal.com/pg/StartPay/",
	}
	return fake, provider.ZarinpalConfig{
		MerchantID:          testMerchantID,
		HTTPTimeout:         2 * time.Second,
		ProductionEndpoints: endpoints,
		SandboxEndpoints:    endpoints,
	}
}

func TestCreatePaymentAppliesRequest(t *testing.T) {
	fake, cfg := newFakeZarinpal(t, map[string]string{
		"PaymentRequestWithExtra": `{"Status":100,"Authority":"A0000000000000000000000000000000042"}`,
	})
	svc := NewPaymentService(cfg, "")

	client, err := svc.CreatePayment(context.Background(), &types.CreatePaymentRequest{
		Amount:      12000,
		Description: "Pro plan",
		Email:       "buyer@example.com",
		CallbackURL: "https://shop.example/cb",
		ZarinGate:   true,
		ExpireIn:    1800,
		Wages:       []types.Wage{{Account: "zp.1.1", Amount: 2000, Description: "partner"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !client.LastResponse().OK {
		t.Fatalf("expected ok response, got %+v", client.LastResponse())
	}

	redirectURL, ok := client.RedirectURL()
	if !ok || redirectURL != "https://www.zarinpal.com/pg/StartPay/A0000000000000000000000000000000042/ZarinGate" {
		t.Fatalf("unexpected redirect url: %q ok=%v", redirectURL, ok)
	}

	req := fake.last(t)
	if req.method != "PaymentRequestWithExtra" {
		t.Fatalf("expected extra request method, got %s", req.method)
	}
	if req.body["MerchantID"] != testMerchantID || req.body["CallbackURL"] != "https://shop.example/cb" {
		t.Fatalf("unexpected payload: %v", req.body)
	}
	additional := req.body["AdditionalData"].(map[string]any)
	if additional["expireIn"] != float64(1800) {
		t.Fatalf("unexpected additional data: %v", additional)
	}
}

func TestCreatePaymentUsesConfiguredCallbackWithAmount(t *testing.T) {
	fake, cfg := newFakeZarinpal(t, map[string]string{
		"PaymentRequest": `{"Status":100,"Authority":"A1"}`,
	})
	svc := NewPaymentService(cfg, "https://pay.example/callbacks/zarinpal?source=web")

	if _, err := svc.CreatePayment(context.Background(), &types.CreatePaymentRequest{Amount: 5000, Description: "order"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	callbackURL, err := url.Parse(fake.last(t).body["CallbackURL"].(string))
	if err != nil {
		t.Fatalf("invalid callback url: %v", err)
	}
	if callbackURL.Query().Get("amount") != "5000" || callbackURL.Query().Get("source") != "web" {
		t.Fatalf("unexpected callback query: %s", callbackURL.RawQuery)
	}
}

func TestCreatePaymentRequiresCallback(t *testing.T) {
	fake, cfg := newFakeZarinpal(t, map[string]string{})
	svc := NewPaymentService(cfg, "")

	_, err := svc.CreatePayment(context.Background(), &types.CreatePaymentRequest{Amount: 5000, Description: "order"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if fake.count() != 0 {
		t.Fatal("expected no gateway call")
	}
}

func TestCreatePaymentProviderFailure(t *testing.T) {
	_, cfg := newFakeZarinpal(t, map[string]string{
		"PaymentRequest": `{"Status":-3}`,
	})
	svc := NewPaymentService(cfg, "https://pay.example/cb")

	client, err := svc.CreatePayment(context.Background(), &types.CreatePaymentRequest{Amount: 10, Description: "order"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp := client.LastResponse()
	if resp.OK || resp.Status != -3 || resp.Message != "Amount should be above 100 Toman" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if _, ok := client.RedirectURL(); ok {
		t.Fatal("expected no redirect url")
	}
}

func TestVerifyPayment(t *testing.T) {
	fake, cfg := newFakeZarinpal(t, map[string]string{
		"PaymentVerification": `{"Status":100,"RefID":1234567}`,
	})
	svc := NewPaymentService(cfg, "")

	resp, err := svc.VerifyPayment(context.Background(), &types.VerifyPaymentRequest{Authority: "A1", Amount: 5000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK || resp.RefID() != 1234567 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if body := fake.last(t).body; body["Amount"] != float64(5000) || body["Authority"] != "A1" {
		t.Fatalf("unexpected payload: %v", body)
	}
}

func TestRefreshAuthority(t *testing.T) {
	fake, cfg := newFakeZarinpal(t, map[string]string{
		"RefreshAuthority": `{"Status":100}`,
	})
	svc := NewPaymentService(cfg, "")

	resp, err := svc.RefreshAuthority(context.Background(), &types.RefreshAuthorityRequest{Authority: "A1", ExpireIn: 7200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if body := fake.last(t).body; body["ExpireIn"] != float64(7200) {
		t.Fatalf("unexpected payload: %v", body)
	}
}

func TestHandleCallbackCanceled(t *testing.T) {
	fake, cfg := newFakeZarinpal(t, map[string]string{})
	svc := NewPaymentService(cfg, "")

	_, err := svc.HandleCallback(context.Background(), &types.CallbackRequest{Authority: "A1", Status: "NOK", Amount: 1000})
	if !errors.Is(err, ErrPaymentCanceled) {
		t.Fatalf("expected ErrPaymentCanceled, got %v", err)
	}
	if fake.count() != 0 {
		t.Fatal("expected no gateway call for canceled payment")
	}
}

func TestHandleCallbackVerifies(t *testing.T) {
	fake, cfg := newFakeZarinpal(t, map[string]string{
		"PaymentVerification": `{"Status":101,"RefID":99}`,
	})
	svc := NewPaymentService(cfg, "")

	resp, err := svc.HandleCallback(context.Background(), &types.CallbackRequest{Authority: "A1", Status: "OK", Amount: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.OK || resp.Status != provider.StatusAlreadyVerified {
		t.Fatalf("expected already-verified failure, got %+v", resp)
	}
	if fake.last(t).method != "PaymentVerification" {
		t.Fatalf("unexpected method: %s", fake.last(t).method)
	}
}

func TestRunUnverifiedReport(t *testing.T) {
	_, cfg := newFakeZarinpal(t, map[string]string{
		"UnverifiedTransactions": `{"Status":100,"Authorities":[{"Authority":"A1","Amount":1000},{"Authority":"A2","Amount":2000}]}`,
	})
	svc := NewPaymentService(cfg, "")

	if err := svc.RunUnverifiedReport(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunUnverifiedReportGatewayFailure(t *testing.T) {
	_, cfg := newFakeZarinpal(t, map[string]string{
		"UnverifiedTransactions": `{"Status":-40}`,
	})
	svc := NewPaymentService(cfg, "")

	err := svc.RunUnverifiedReport(context.Background())
	if !errors.Is(err, ErrGatewayFailure) {
		t.Fatalf("expected ErrGatewayFailure, got %v", err)
	}
}

func TestNilRequestsAreInvalid(t *testing.T) {
	svc := NewPaymentService(provider.ZarinpalConfig{MerchantID: testMerchantID}, "")
	ctx := context.Background()

	if _, err := svc.CreatePayment(ctx, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.VerifyPayment(ctx, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.RefreshAuthority(ctx, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.HandleCallback(ctx, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
