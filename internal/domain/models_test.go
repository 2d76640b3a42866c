package domain

import (
	"strings"
	"testing"
	"time"
)

func TestPaymentStatus(t *testing.T) {
	cases := []struct {
		paid  int64
		total int64
		want  string
	}{
		{0, 1000, PaymentStatusUnpaid},
		{500, 1000, PaymentStatusPartial},
		{1000, 1000, PaymentStatusPaid},
		{1500, 1000, PaymentStatusPaid},
		{0, 0, PaymentStatusPaid},
	}
	for _, tc := range cases {
		if got := PaymentStatus(tc.paid, tc.total); got != tc.want {
			t.Fatalf("PaymentStatus(%d, %d) = %s, want %s", tc.paid, tc.total, got, tc.want)
		}
	}
}

func TestInvoiceNumberFormat(t *testing.T) {
	at := time.Date(2026, 8, 30, 10, 15, 42, 123_000_000, time.UTC)
	invoice := InvoiceNumber(at)

	if !strings.HasPrefix(invoice, "INV-20260830-") {
		t.Fatalf("unexpected invoice prefix: %s", invoice)
	}
	suffix := strings.TrimPrefix(invoice, "INV-20260830-")
	if len(suffix) != 6 {
		t.Fatalf("expected 6 digit suffix, got %q", suffix)
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			t.Fatalf("suffix must be numeric, got %q", suffix)
		}
	}
}

func TestInvoiceNumberVariesByMillisecond(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 15, 42, 0, time.UTC)
	first := InvoiceNumber(base)
	second := InvoiceNumber(base.Add(time.Millisecond))
	if first == second {
		t.Fatalf("expected different invoices one millisecond apart, both %s", first)
	}
}
