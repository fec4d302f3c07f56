package provider

const (
	StatusSuccess         = 100
	StatusAlreadyVerified = 101

	// Local statuses, never sent by Zarinpal.
	StatusConnectionError = -998
	StatusLocalError      = -999
)

// UnknownStatusMessage is used when a status is neither in statusMessages nor
// explained by the provider's errors field.
const UnknownStatusMessage = "Unknown provider status"

var statusMessages = map[int]string{
	-1:   "Information submitted is incomplete",
	-2:   "Merchant ID or Acceptor IP is not correct",
	-3:   "Amount should be above 100 Toman",
	-4:   "Approved level of Acceptor is Lower than the silver",
	-11:  "Request Not found",
	-12:  "Request is not editable",
	-21:  "Financial operations for this transaction was not found",
	-22:  "Transaction is unsuccessful",
	-33:  "Transaction amount does not match the paid amount",
	-34:  "Limit the number of transactions or number has crossed the divide",
	-40:  "There is no access to the method",
	-41:  "Additional Data related to information submitted is invalid",
	-42:  "The life span length of the payment ID must be between 30 minutes and 45 days",
	-54:  "Request archived",
	-998: "Connection Error: Can't connect to API (WebService returns null)",
	-999: "Local Library Error",
	100:  "Operation was successful",
	101:  "Operation was successful but PaymentVerification operation on this transaction have already been done.",
}

// StatusMessage resolves a status code against the static table.
func StatusMessage(status int) string {
	if message, ok := statusMessages[status]; ok {
		return message
	}
	return UnknownStatusMessage
}

// IsLocalStatus reports whether the status was produced by this library
// rather than by the provider.
func IsLocalStatus(status int) bool {
	return status == StatusConnectionError || status == StatusLocalError
}
