package enums

import "fmt"

// SubscriptionPlan is the dealer's billing tier; it caps team size.
type SubscriptionPlan string

const (
	SubscriptionPlanStarter    SubscriptionPlan = "starter"
	SubscriptionPlanPro        SubscriptionPlan = "pro"
	SubscriptionPlanBusiness   SubscriptionPlan = "business"
	SubscriptionPlanEnterprise SubscriptionPlan = "enterprise"
)

// planUserLimits maps each plan to its seat limit; -1 means unlimited.
var planUserLimits = map[SubscriptionPlan]int{
	SubscriptionPlanStarter:    1,
	SubscriptionPlanPro:        3,
	SubscriptionPlanBusiness:   10,
	SubscriptionPlanEnterprise: -1,
}

func (p SubscriptionPlan) IsValid() bool {
	_, ok := planUserLimits[p]
	return ok
}

// UserLimit returns the seat limit for the plan. Unknown plans get the starter limit.
func (p SubscriptionPlan) UserLimit() int {
	if limit, ok := planUserLimits[p]; ok {
		return limit
	}
	return planUserLimits[SubscriptionPlanStarter]
}

func ParseSubscriptionPlan(value string) (SubscriptionPlan, error) {
	plan := SubscriptionPlan(value)
	if !plan.IsValid() {
		return "", fmt.Errorf("invalid subscription plan %q", value)
	}
	return plan, nil
}

// ImpersonationAction labels rows in the impersonation audit trail.
type ImpersonationAction string

const (
	ImpersonationActionStart ImpersonationAction = "start"
	ImpersonationActionStop  ImpersonationAction = "stop"
)
