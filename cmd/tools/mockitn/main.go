package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"westcoastdigital.co.za/app/internal/modules/payfast"
)

// Posts a signed ITN to a local server, standing in for the PayFast
// sandbox during development.
func main() {
	url := flag.String("url", "http://localhost:8080/api/payments/notify", "Notify URL")
	passphrase := flag.String("passphrase", os.Getenv("PAYFAST_PASSPHRASE"), "Signing passphrase")
	merchantRef := flag.String("merchant-ref", "", "Our m_payment_id (required)")
	gatewayRef := flag.String("gateway-ref", "1089250", "PayFast pf_payment_id")
	status := flag.String("status", payfast.StatusComplete, "payment_status (COMPLETE, FAILED, CANCELLED)")
	amount := flag.String("amount", "199.00", "amount_gross")
	businessID := flag.String("business-id", "", "custom_int1 (business id)")
	paymentType := flag.String("type", "subscription", "custom_str1 (subscription or boost)")
	plan := flag.String("plan", "Bronze", "custom_str2")
	breakSig := flag.Bool("break-signature", false, "Send a deliberately wrong signature")
	dryRun := flag.Bool("dry-run", false, "Only print the body, don't send")

	flag.Parse()

	if *merchantRef == "" {
		fmt.Fprintln(os.Stderr, "Error: -merchant-ref is required")
		os.Exit(1)
	}

	var f payfast.Fields
	f.Set(payfast.FieldMPaymentID, *merchantRef)
	f.Set(payfast.FieldPFPaymentID, *gatewayRef)
	f.Set(payfast.FieldPaymentStatus, *status)
	f.Set(payfast.FieldAmountGross, *amount)
	if *businessID != "" {
		f.Set(payfast.FieldCustomInt1, *businessID)
	}
	f.Set(payfast.FieldCustomStr1, *paymentType)
	f.Set(payfast.FieldCustomStr2, *plan)

	sig := payfast.Sign(f, *passphrase)
	if *breakSig {
		sig = strings.Repeat("0", len(sig))
	}
	body := f.Encode() + "&" + payfast.FieldSignature + "=" + sig

	fmt.Printf("Body: %s\n", body)
	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	resp, err := http.Post(*url, "application/x-www-form-urlencoded", strings.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	fmt.Printf("Status: %d\nResponse: %s\n", resp.StatusCode, string(respBody))
}
