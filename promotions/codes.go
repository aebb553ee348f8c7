package promotions

import (
	"context"
	"fmt"
	"strings"

	"grabbi-engine/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RejectionReason explains why a discount code cannot be applied. Wrong codes
// are expected user input, so they are reported as values, not errors.
type RejectionReason string

const (
	ReasonNotFound            RejectionReason = "not_found"
	ReasonInactive            RejectionReason = "inactive"
	ReasonUsageLimitReached   RejectionReason = "usage_limit_reached"
	ReasonNotStarted          RejectionReason = "not_started"
	ReasonExpired             RejectionReason = "expired"
	ReasonBelowMinimum        RejectionReason = "below_minimum"
	ReasonLocationNotAllowed  RejectionReason = "location_not_allowed"
	ReasonOrderTypeNotAllowed RejectionReason = "order_type_not_allowed"
)

var reasonMessages = map[RejectionReason]string{
	ReasonNotFound:            "Discount code not found",
	ReasonInactive:            "Discount code is no longer active",
	ReasonUsageLimitReached:   "Discount code has reached its usage limit",
	ReasonNotStarted:          "Discount code is not valid yet",
	ReasonExpired:             "Discount code has expired",
	ReasonBelowMinimum:        "Order does not reach the minimum value for this code",
	ReasonLocationNotAllowed:  "Discount code is not valid at this location",
	ReasonOrderTypeNotAllowed: "Discount code is not valid for this order type",
}

func (r RejectionReason) Message() string {
	return reasonMessages[r]
}

type CodeQuery struct {
	Code       string
	BrandID    uuid.UUID
	LocationID uuid.UUID
	Subtotal   decimal.Decimal
	OrderType  models.OrderType
}

// CodeResult carries either the matched code or the reason it was rejected.
type CodeResult struct {
	Code    *models.DiscountCode
	Reason  RejectionReason
	Message string
}

func (r CodeResult) Valid() bool {
	return r.Reason == "" && r.Code != nil
}

func rejected(reason RejectionReason) CodeResult {
	return CodeResult{Reason: reason, Message: reason.Message()}
}

// ValidateCode runs the code checks in order and stops at the first failure.
// An empty location or order type list on the code means no restriction.
func (m *Matcher) ValidateCode(ctx context.Context, q CodeQuery) (CodeResult, error) {
	code, err := m.Rules.FindDiscountCode(ctx, q.BrandID, strings.TrimSpace(q.Code))
	if err != nil {
		return CodeResult{}, err
	}
	if code == nil {
		return rejected(ReasonNotFound), nil
	}
	if !code.IsActive {
		return rejected(ReasonInactive), nil
	}
	if code.UsageLimit > 0 && code.UsedCount >= code.UsageLimit {
		return rejected(ReasonUsageLimitReached), nil
	}

	today := m.Predicate.LocalDate(m.now())
	if code.StartDate != nil && today.Before(m.Predicate.LocalDate(*code.StartDate)) {
		return rejected(ReasonNotStarted), nil
	}
	if code.EndDate != nil && today.After(m.Predicate.LocalDate(*code.EndDate)) {
		return rejected(ReasonExpired), nil
	}
	if q.Subtotal.LessThan(code.MinOrderValue) {
		res := rejected(ReasonBelowMinimum)
		res.Message = fmt.Sprintf("Minimum order value of %s not reached", code.MinOrderValue.StringFixed(2))
		return res, nil
	}
	if len(code.LocationIDs) > 0 && !containsID(code.LocationIDs, q.LocationID) {
		return rejected(ReasonLocationNotAllowed), nil
	}
	if len(code.OrderTypes) > 0 && q.OrderType != "" && !containsOrderType(code.OrderTypes, q.OrderType) {
		return rejected(ReasonOrderTypeNotAllowed), nil
	}

	return CodeResult{Code: code}, nil
}

// RedeemCode records one use of a code once the order is placed.
func (m *Matcher) RedeemCode(ctx context.Context, codeID uuid.UUID) error {
	return m.Rules.RedeemDiscountCode(ctx, codeID)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsOrderType(types []models.OrderType, t models.OrderType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}
