package payfast

// Config carries the merchant credentials and the environment-selected
// gateway endpoints. It is passed in at construction; nothing in this
// package reads the process environment.
type Config struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string // optional shared secret appended to the signing string
	ProcessURL  string // payer redirect target
	ValidateURL string // server-to-server ITN confirmation endpoint
}
