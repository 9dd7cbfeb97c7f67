package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("wallet row vanished")
	err := Wrap(CodeInsufficientPoints, cause, "balance check failed")

	if err.Code() != CodeInsufficientPoints {
		t.Fatalf("code = %q, want %q", err.Code(), CodeInsufficientPoints)
	}
	if err.Unwrap() != cause {
		t.Fatalf("unwrap did not return cause")
	}

	typed := As(fmt.Errorf("checkout: %w", err))
	if typed == nil || typed.Code() != CodeInsufficientPoints {
		t.Fatalf("As failed to locate typed error in chain")
	}
}

func TestCheckoutCodesAreDistinguishable(t *testing.T) {
	t.Parallel()

	codes := []Code{
		CodeEmptyCart,
		CodeInvalidCartItem,
		CodeMissingTableNumber,
		CodeInsufficientPoints,
		CodePaymentDeclined,
	}
	seen := map[string]Code{}
	for _, code := range codes {
		meta := MetadataFor(code)
		if meta.PublicMessage == "" {
			t.Fatalf("%s has no public message", code)
		}
		if prev, dup := seen[meta.PublicMessage]; dup {
			t.Fatalf("%s and %s share public message %q", code, prev, meta.PublicMessage)
		}
		seen[meta.PublicMessage] = code
	}

	if MetadataFor(CodePaymentDeclined).HTTPStatus != http.StatusPaymentRequired {
		t.Fatalf("payment declined should map to 402")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code status = %d, want 500", meta.HTTPStatus)
	}
}

func TestIs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", New(CodeEmptyCart, "nothing payable"))
	if !Is(err, CodeEmptyCart) {
		t.Fatalf("Is should match wrapped code")
	}
	if Is(err, CodePaymentDeclined) {
		t.Fatalf("Is matched the wrong code")
	}
	if Is(nil, CodeEmptyCart) {
		t.Fatalf("Is(nil) should be false")
	}
}
