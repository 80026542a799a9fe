package payfast

import (
	"fmt"
	"net/url"
	"strings"
)

// Field is one (key, value) pair of a gateway payload. Canonical signing
// order is the insertion order of the pairs, so payloads are modeled as an
// ordered list rather than a map.
type Field struct {
	Key   string
	Value string
}

type Fields []Field

func (f *Fields) Set(key, value string) {
	*f = append(*f, Field{Key: key, Value: value})
}

func (f Fields) Get(key string) string {
	for _, p := range f {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Encode renders the full field set as an application/x-www-form-urlencoded
// body, preserving wire order. Empty values are kept; only signing skips them.
func (f Fields) Encode() string {
	var b strings.Builder
	for i, p := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// ITN is a parsed Instant Transaction Notification: the field set in wire
// order with the signature field stripped out.
type ITN struct {
	Fields    Fields
	Signature string
}

// Well-known ITN field names.
const (
	FieldSignature     = "signature"
	FieldPaymentStatus = "payment_status"
	FieldPFPaymentID   = "pf_payment_id"
	FieldMPaymentID    = "m_payment_id"
	FieldAmountGross   = "amount_gross"
	FieldCustomInt1    = "custom_int1" // business id
	FieldCustomStr1    = "custom_str1" // payment type
	FieldCustomStr2    = "custom_str2" // plan
)

// StatusComplete is the gateway's literal for a successful payment.
const StatusComplete = "COMPLETE"

// ParseITN parses a form-encoded notification body, preserving the order the
// gateway sent the fields in. url.ParseQuery is deliberately not used here:
// it returns a map and loses the order the signature was computed over.
func ParseITN(body []byte) (ITN, error) {
	var itn ITN
	s := string(body)
	if strings.TrimSpace(s) == "" {
		return ITN{}, fmt.Errorf("payfast: empty notification body")
	}

	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		key, rawVal, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return ITN{}, fmt.Errorf("payfast: bad field name %q: %w", key, err)
		}
		v, err := url.QueryUnescape(rawVal)
		if err != nil {
			return ITN{}, fmt.Errorf("payfast: bad value for %q: %w", k, err)
		}
		if k == FieldSignature {
			itn.Signature = v
			continue
		}
		itn.Fields.Set(k, v)
	}

	if itn.Signature == "" {
		return ITN{}, fmt.Errorf("payfast: notification has no signature")
	}
	return itn, nil
}
