package barcode

import (
	itemdomain "github.com/smallbiznis/stocktake/internal/item/domain"
)

// Resolve looks a scanned code up against the items in scope. Matching is an
// exact, case-sensitive comparison of the barcode field; there is no fuzzy or
// partial matching and no lookup outside the given set. A miss is an ordinary
// outcome for the operator to handle, not a fault.
func Resolve(code string, items []itemdomain.Response) (*itemdomain.Response, bool) {
	if code == "" {
		return nil, false
	}
	for i := range items {
		if items[i].Barcode != nil && *items[i].Barcode == code {
			return &items[i], true
		}
	}
	return nil, false
}
