package models

// CommissionStatus is the settlement state of a commission record.
type CommissionStatus string

const (
	CommissionPaid   CommissionStatus = "paid"
	CommissionUnpaid CommissionStatus = "unpaid"
)

// CommissionRecord holds one employee's commission for a
// (company, month, package, mode) batch.
type CommissionRecord struct {
	EmployeeID   string `json:"employee_id" validate:"required"`
	EmployeeName string `json:"employee_name,omitempty"`

	// fixed_daily / fixed_monthly
	DailyAmount float64 `json:"daily_amount" validate:"gte=0"`
	Days        float64 `json:"days" validate:"gte=0"`
	Total       float64 `json:"total"`

	// percentage
	Percentage float64 `json:"percentage" validate:"gte=0"`
	Revenue    float64 `json:"revenue" validate:"gte=0"`
	Commission float64 `json:"commission"`
	Remaining  float64 `json:"remaining"`

	Bonus     float64 `json:"bonus" validate:"gte=0"`
	Deduction float64 `json:"deduction" validate:"gte=0"`

	Selected bool             `json:"selected"`
	Status   CommissionStatus `json:"status" validate:"omitempty,oneof=paid unpaid"`
}
