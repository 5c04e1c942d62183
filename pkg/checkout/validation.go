package checkout

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
)

// Bound names the quantity rule a cart or order line violated.
type Bound string

const (
	BoundPositive Bound = "quantity"
	BoundMin      Bound = "min_order_quantity"
	BoundMax      Bound = "max_order_quantity"
	BoundStock    Bound = "stock_quantity"
)

// QuantityInput describes the data required to verify a line quantity
// against the product state at mutation time.
type QuantityInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Min         int
	Max         *int
	Stock       int
}

// QuantityViolation exposes the data returned to callers when a validation fails.
type QuantityViolation struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	Bound        Bound     `json:"bound"`
	Limit        int       `json:"limit"`
	RequestedQty int       `json:"requested_qty"`
}

func (v QuantityViolation) message() string {
	switch v.Bound {
	case BoundPositive:
		return "quantity must be greater than zero"
	case BoundMin:
		return fmt.Sprintf("quantity %d is below the minimum order quantity of %d", v.RequestedQty, v.Limit)
	case BoundMax:
		return fmt.Sprintf("quantity %d exceeds the maximum order quantity of %d", v.RequestedQty, v.Limit)
	default:
		return fmt.Sprintf("quantity %d exceeds available stock of %d", v.RequestedQty, v.Limit)
	}
}

// CheckQuantity returns the first violated bound, checked in the order
// positive, minimum, maximum, stock. It returns nil when the quantity fits.
func CheckQuantity(in QuantityInput) *QuantityViolation {
	violation := func(bound Bound, limit int) *QuantityViolation {
		return &QuantityViolation{
			ProductID:    in.ProductID,
			ProductName:  in.ProductName,
			Bound:        bound,
			Limit:        limit,
			RequestedQty: in.Quantity,
		}
	}

	switch {
	case in.Quantity <= 0:
		return violation(BoundPositive, 1)
	case in.Min > 0 && in.Quantity < in.Min:
		return violation(BoundMin, in.Min)
	case in.Max != nil && in.Quantity > *in.Max:
		return violation(BoundMax, *in.Max)
	case in.Quantity > in.Stock:
		return violation(BoundStock, in.Stock)
	}
	return nil
}

// ValidateQuantity wraps CheckQuantity into a validation error naming the bound.
func ValidateQuantity(in QuantityInput) error {
	v := CheckQuantity(in)
	if v == nil {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, v.message()).WithDetails(map[string]any{
		"bound":         v.Bound,
		"limit":         v.Limit,
		"requested_qty": v.RequestedQty,
		"product_id":    v.ProductID,
	})
}

// ValidateLines ensures every provided line satisfies its product bounds.
func ValidateLines(items []QuantityInput) error {
	var violations []QuantityViolation
	for _, item := range items {
		if v := CheckQuantity(item); v != nil {
			violations = append(violations, *v)
		}
	}
	if len(violations) == 0 {
		return nil
	}
	if len(violations) == 1 {
		return ValidateQuantity(items[indexOf(items, violations[0].ProductID)])
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity bounds not met for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

func indexOf(items []QuantityInput, productID uuid.UUID) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return 0
}
