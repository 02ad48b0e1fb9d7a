package domain

// PlanType identifies a promotion tier. MAIN_SLIDER and CATEGORY_SLIDER are
// capacity-limited; STANDARD is the unlimited baseline tier and never expires.
type PlanType string

const (
	PlanStandard       PlanType = "STANDARD"
	PlanCategorySlider PlanType = "CATEGORY_SLIDER"
	PlanMainSlider     PlanType = "MAIN_SLIDER"
)

func (p PlanType) Valid() bool {
	switch p {
	case PlanStandard, PlanCategorySlider, PlanMainSlider:
		return true
	}
	return false
}

// CapacityLimited reports whether the plan competes for a finite number of slots.
func (p PlanType) CapacityLimited() bool {
	return p == PlanCategorySlider || p == PlanMainSlider
}

// RequiresCategory reports whether slot checks for the plan are scoped to a category.
func (p PlanType) RequiresCategory() bool {
	return p == PlanCategorySlider
}
