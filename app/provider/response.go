package provider

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Response is the normalized result of one gateway call.
type Response struct {
	Method  Method
	OK      bool
	Status  int
	Message string
	Body    json.RawMessage
}

// UnverifiedAuthority is one entry of the UnverifiedTransactions listing.
type UnverifiedAuthority struct {
	Authority   string `json:"Authority"`
	Amount      int64  `json:"Amount"`
	Channel     string `json:"Channel"`
	CallbackURL string `json:"CallbackURL"`
	Referer     string `json:"Referer"`
	Email       string `json:"Email"`
	CellPhone   string `json:"CellPhone"`
	Date        string `json:"Date"`
}

// NewResponse builds the envelope for a raw response body. An empty or
// undecodable body is treated as a connection error.
func NewResponse(method Method, raw []byte) *Response {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return newLocalResponse(method, StatusConnectionError)
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return newLocalResponse(method, StatusConnectionError)
	}

	statusField := parsed.Get("Status")
	status := int(statusField.Int())
	message := providerMessage(parsed)
	if message == "" {
		message = StatusMessage(status)
	}

	return &Response{
		Method:  method,
		OK:      statusField.Type == gjson.Number && statusField.Num == StatusSuccess,
		Status:  status,
		Message: message,
		Body:    json.RawMessage(raw),
	}
}

func newLocalResponse(method Method, status int) *Response {
	return &Response{
		Method:  method,
		OK:      false,
		Status:  status,
		Message: StatusMessage(status),
	}
}

// providerMessage returns the first element of the first entry of the
// errors field, in document order.
func providerMessage(parsed gjson.Result) string {
	errs := parsed.Get("errors")
	if !errs.Exists() || errs.Type == gjson.Null {
		return ""
	}
	if !errs.IsObject() && !errs.IsArray() {
		return strings.TrimSpace(errs.String())
	}

	var message string
	errs.ForEach(func(_, entry gjson.Result) bool {
		if entry.IsArray() {
			if items := entry.Array(); len(items) > 0 {
				message = items[0].String()
			}
		} else {
			message = entry.String()
		}
		return false
	})
	return strings.TrimSpace(message)
}

// Field looks up a path in the raw body.
func (r *Response) Field(path string) gjson.Result {
	if r == nil || len(r.Body) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Body, path)
}

func (r *Response) AuthorityField() string {
	return r.Field("Authority").String()
}

func (r *Response) RefID() int64 {
	return r.Field("RefID").Int()
}

// ExtraDetail returns the ExtraDetail object of a verification, which carries
// details such as the masked card number.
func (r *Response) ExtraDetail() json.RawMessage {
	detail := r.Field("ExtraDetail")
	if !detail.Exists() || detail.Type == gjson.Null {
		return nil
	}
	return json.RawMessage(detail.Raw)
}

// UnverifiedAuthorities decodes the Authorities list returned by
// UnverifiedTransactions.
func (r *Response) UnverifiedAuthorities() ([]UnverifiedAuthority, error) {
	list := r.Field("Authorities")
	if !list.IsArray() {
		return []UnverifiedAuthority{}, nil
	}
	items := make([]UnverifiedAuthority, 0, len(list.Array()))
	if err := json.Unmarshal([]byte(list.Raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}
