package errors

// Kind is the closed set of commerce failure kinds. Every error the commerce
// engine can observe classifies into exactly one of them.
type Kind int

const (
	KindNone Kind = iota
	KindStorageUnavailable
	KindRemoteSync
	KindStockExceeded
	KindCouponInvalid
	KindPricingInput
	// KindOther covers transport, auth and validation failures from collaborators.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindRemoteSync:
		return "remote_sync_failed"
	case KindStockExceeded:
		return "stock_exceeded"
	case KindCouponInvalid:
		return "coupon_invalid"
	case KindPricingInput:
		return "pricing_input_invalid"
	default:
		return "other"
	}
}

// UserFacing reports whether the kind is surfaced to the shopper. Storage and
// sync failures are absorbed where they happen.
func (k Kind) UserFacing() bool {
	return k == KindStockExceeded || k == KindCouponInvalid
}

// KindOf classifies err.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	switch CodeOf(err) {
	case CodeStorageUnavailable:
		return KindStorageUnavailable
	case CodeRemoteSync:
		return KindRemoteSync
	case CodeStockExceeded:
		return KindStockExceeded
	case CodeCouponInvalid:
		return KindCouponInvalid
	case CodePricingInput:
		return KindPricingInput
	default:
		return KindOther
	}
}
