package enums

import (
	"fmt"
	"strings"
)

// ProductType represents the two product families the cafe sells. Food
// carries a vegetarian flag, drinks carry temperature and size.
type ProductType string

const (
	ProductTypeFood  ProductType = "FOOD"
	ProductTypeDrink ProductType = "DRINK"
)

var validProductTypes = []ProductType{
	ProductTypeFood,
	ProductTypeDrink,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType. Matching is
// case-insensitive because catalog filters arrive lowercased.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if strings.EqualFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
