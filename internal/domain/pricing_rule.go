package domain

import "github.com/shopspring/decimal"

type RuleCondition string

const (
	ConditionPeakHours RuleCondition = "peak_hours"
	ConditionLowStock  RuleCondition = "low_stock"
)

// Default peak window when a rule carries no explicit hours.
const (
	DefaultPeakStartHour = 12
	DefaultPeakEndHour   = 18
)

// PricingRule is a multiplier applied on top of a product's base price.
// Rules are read-only inputs to price evaluation; multipliers compose
// multiplicatively, so evaluation order does not matter.
type PricingRule struct {
	ID         uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID  uint64          `json:"productId" gorm:"not null;index"`
	Condition  RuleCondition   `json:"condition" gorm:"type:varchar(32);not null"`
	Multiplier decimal.Decimal `json:"multiplier" gorm:"type:decimal(5,2);not null"`
	Threshold  *int64          `json:"threshold,omitempty"`
	StartHour  *int            `json:"startHour,omitempty"`
	EndHour    *int            `json:"endHour,omitempty"`
}

// Window returns the rule's peak-hour bounds, falling back to the
// default 12:00-18:00 window. Both ends are inclusive.
func (r *PricingRule) Window() (start, end int) {
	start, end = DefaultPeakStartHour, DefaultPeakEndHour
	if r.StartHour != nil && r.EndHour != nil {
		start, end = *r.StartHour, *r.EndHour
	}
	return start, end
}
