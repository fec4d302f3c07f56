package mapper

import (
	"github.com/vibast-solutions/ms-go-zarinpal/app/provider"
	"github.com/vibast-solutions/ms-go-zarinpal/app/types"
)

func ResponseToType(resp *provider.Response) *types.GatewayResponse {
	if resp == nil {
		return nil
	}

	out := &types.GatewayResponse{
		OK:      resp.OK,
		Status:  resp.Status,
		Message: resp.Message,
		Method:  string(resp.Method),
	}
	if !resp.OK {
		return out
	}

	switch resp.Method {
	case provider.MethodPaymentRequest, provider.MethodPaymentRequestWithExtra:
		out.Authority = resp.AuthorityField()
	case provider.MethodPaymentVerification:
		out.RefID = resp.RefID()
		out.ExtraDetail = resp.ExtraDetail()
	case provider.MethodUnverifiedTransactions:
		items, err := resp.UnverifiedAuthorities()
		if err == nil {
			out.Authorities = UnverifiedToType(items)
		}
	}
	return out
}

// CheckoutToType maps the last response of a checkout client, adding the
// redirect URL when an authority was issued.
func CheckoutToType(client *provider.ZarinpalClient) *types.GatewayResponse {
	if client == nil {
		return nil
	}

	out := ResponseToType(client.LastResponse())
	if out == nil {
		return nil
	}
	if redirectURL, ok := client.RedirectURL(); ok {
		out.RedirectURL = redirectURL
	}
	return out
}

func UnverifiedToType(items []provider.UnverifiedAuthority) []types.UnverifiedAuthority {
	result := make([]types.UnverifiedAuthority, 0, len(items))
	for _, item := range items {
		result = append(result, types.UnverifiedAuthority{
			Authority:   item.Authority,
			Amount:      item.Amount,
			Channel:     item.Channel,
			CallbackURL: item.CallbackURL,
			Referer:     item.Referer,
			Email:       item.Email,
			CellPhone:   item.CellPhone,
			Date:        item.Date,
		})
	}
	return result
}
