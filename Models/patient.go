package Models

import (
	"gorm.io/gorm"
)

type Patient struct {
	gorm.Model
	Name             string            `json:"name"`
	Phone            string            `json:"phone"`
	Email            string            `json:"email"`
	Gender           string            `json:"gender"`
	Age              int               `json:"age"`
	Notes            string            `json:"notes"`
	History          []Appointment     `json:"history"`
	Treatments       []Treatment       `json:"treatments"`
	InstallmentPlans []InstallmentPlan `json:"installment_plans"`
	Budgets          []Budget          `json:"budgets"`
}

// PatientExists validates a patient reference before it is attached to an
// appointment, treatment or plan.
func PatientExists(id uint) (bool, error) {
	var count int64
	err := DB.Model(&Patient{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
