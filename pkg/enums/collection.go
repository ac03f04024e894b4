package enums

import "fmt"

// Collection names one of the two managed collections.
type Collection string

const (
	CollectionCart     Collection = "cart"
	CollectionWishlist Collection = "wishlist"
)

var validCollections = []Collection{
	CollectionCart,
	CollectionWishlist,
}

// String implements fmt.Stringer.
func (c Collection) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Collection.
func (c Collection) IsValid() bool {
	for _, candidate := range validCollections {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCollection converts raw input into a Collection.
func ParseCollection(value string) (Collection, error) {
	for _, candidate := range validCollections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid collection %q", value)
}
