package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
		{code: CodeStorageUnavailable, status: http.StatusServiceUnavailable, publicMsg: "storage unavailable", retryable: true},
		{code: CodeRemoteSync, status: http.StatusBadGateway, publicMsg: "remote sync failed", retryable: true},
		{code: CodeStockExceeded, status: http.StatusConflict, publicMsg: "requested quantity exceeds available stock", detailsOK: true},
		{code: CodeCouponInvalid, status: http.StatusUnprocessableEntity, publicMsg: "coupon is not valid", detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
	if IsKnown("SOMETHING_UNKNOWN") {
		t.Fatalf("unknown code reported as known")
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestIsWalksTypedChain(t *testing.T) {
	inner := New(CodeStorageUnavailable, "quota exceeded")
	outer := Wrap(CodeRemoteSync, fmt.Errorf("merge: %w", inner), "sync cart")

	if !Is(outer, CodeRemoteSync) || !Is(outer, CodeStorageUnavailable) {
		t.Fatalf("expected both codes in chain")
	}
	if Is(outer, CodeCouponInvalid) {
		t.Fatalf("unexpected coupon code in chain")
	}
	if CodeOf(outer) != CodeRemoteSync {
		t.Fatalf("expected outermost code, got %s", CodeOf(outer))
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("untyped errors classify as internal")
	}
}

func TestStockExceededCarriesAvailable(t *testing.T) {
	err := StockExceeded(uuid.New(), 10, 4)
	available, ok := AvailableStock(fmt.Errorf("add: %w", err))
	if !ok || available != 4 {
		t.Fatalf("expected available=4 got %d ok=%v", available, ok)
	}
	if _, ok := AvailableStock(New(CodeValidation, "x")); ok {
		t.Fatalf("non-stock errors must not report stock")
	}
}

func TestCouponInvalidKeepsServerMessage(t *testing.T) {
	err := CouponInvalid("SAVE10", "coupon expired")
	if err.Code() != CodeCouponInvalid || err.Message() != "coupon expired" {
		t.Fatalf("unexpected coupon error %v", err)
	}
	if fallback := CouponInvalid("X", ""); fallback.Message() == "" {
		t.Fatalf("expected fallback message")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestKindOfClassifiesCommerceCodes(t *testing.T) {
	cases := map[Code]Kind{
		CodeStorageUnavailable: KindStorageUnavailable,
		CodeRemoteSync:         KindRemoteSync,
		CodeStockExceeded:      KindStockExceeded,
		CodeCouponInvalid:      KindCouponInvalid,
		CodePricingInput:       KindPricingInput,
		CodeUnauthorized:       KindOther,
	}
	for code, want := range cases {
		if got := KindOf(New(code, "x")); got != want {
			t.Fatalf("KindOf(%s) = %s, want %s", code, got, want)
		}
	}
	if KindOf(nil) != KindNone {
		t.Fatal("nil error should classify as none")
	}
	if !KindStockExceeded.UserFacing() || KindRemoteSync.UserFacing() {
		t.Fatal("unexpected user-facing classification")
	}
}

func TestDumpCarriesCodeKindAndChain(t *testing.T) {
	base := stdErrors.New("dial tcp: refused")
	err := fmt.Errorf("sync cart: %w", Wrap(CodeRemoteSync, base, "merge cart"))

	dump := Dump(err)
	if dump.Code != CodeRemoteSync {
		t.Fatalf("expected remote sync code, got %s", dump.Code)
	}
	if dump.Kind != KindRemoteSync.String() {
		t.Fatalf("expected kind %s, got %s", KindRemoteSync, dump.Kind)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected wrapped chain, got %v", dump.Chain)
	}
	if dump.PGCode != "" {
		t.Fatalf("unexpected pg code %q", dump.PGCode)
	}
	if got := Dump(nil); got.TopMessage != "" || got.Kind != "" {
		t.Fatalf("expected empty dump for nil error, got %+v", got)
	}
}
