package payfast

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"strings"
)

// Sign computes the gateway signature over an ordered field set:
// empty values are skipped, each value is form-encoded (space as '+'),
// pairs are joined with '&' in insertion order, and the passphrase is
// appended the same way when configured. The digest is hex MD5.
func Sign(fields Fields, passphrase string) string {
	var b strings.Builder
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(encodeValue(f.Value))
	}
	if passphrase != "" {
		b.WriteString("&passphrase=")
		b.WriteString(encodeValue(passphrase))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifySignature recomputes the digest over the received fields (signature
// already stripped by ParseITN) and compares in constant time.
func VerifySignature(itn ITN, passphrase string) bool {
	want := Sign(itn.Fields, passphrase)
	return subtle.ConstantTimeCompare([]byte(want), []byte(itn.Signature)) == 1
}

func encodeValue(v string) string {
	// form-encoding convention: space becomes '+', not '%20'
	return url.QueryEscape(strings.TrimSpace(v))
}
