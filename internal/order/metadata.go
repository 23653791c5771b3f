package order

import (
	"encoding/json"
	"fmt"

	"github.com/antonminaichev/storefront-orders/internal/types/order"
)

// Metadata keys shared with the checkout flow.
const (
	MetadataCustomerKey = "customerInfo"
	MetadataItemsKey    = "items"
)

// decodeMetadata extracts and validates the two serialized blobs the checkout
// flow smuggles through the provider's session metadata.
func decodeMetadata(meta map[string]string) (*order.CustomerInfo, []order.CartItem, error) {
	rawCustomer, ok := meta[MetadataCustomerKey]
	if !ok || rawCustomer == "" {
		return nil, nil, fmt.Errorf("metadata: customerInfo missing")
	}
	rawItems, ok := meta[MetadataItemsKey]
	if !ok || rawItems == "" {
		return nil, nil, fmt.Errorf("metadata: items missing")
	}

	var customer order.CustomerInfo
	if err := json.Unmarshal([]byte(rawCustomer), &customer); err != nil {
		return nil, nil, fmt.Errorf("metadata: decode customerInfo: %w", err)
	}
	if err := customer.Validate(); err != nil {
		return nil, nil, fmt.Errorf("metadata: %w", err)
	}

	var items []order.CartItem
	if err := json.Unmarshal([]byte(rawItems), &items); err != nil {
		return nil, nil, fmt.Errorf("metadata: decode items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("metadata: items empty")
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, nil, fmt.Errorf("metadata: %w", err)
		}
	}
	return &customer, items, nil
}
