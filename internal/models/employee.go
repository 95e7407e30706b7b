package models

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

func (s EmployeeStatus) Label() string {
	if s == EmployeeActive {
		return "활동"
	}
	return "휴직"
}

type Employee struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Role      string         `json:"role"`
	Phone     string         `json:"phone"`
	Status    EmployeeStatus `json:"status"`
	JoinDate  string         `json:"join_date"`
	CreatedAt Timestamp      `json:"created_at"`
	UpdatedAt Timestamp      `json:"updated_at"`
}

// EmployeeForm is what the add and edit dialogs collect.
type EmployeeForm struct {
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type EmployeeCreate struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	JoinDate string `json:"join_date"`
}

type EmployeeUpdate struct {
	Name   *string         `json:"name,omitempty"`
	Role   *string         `json:"role,omitempty"`
	Phone  *string         `json:"phone,omitempty"`
	Status *EmployeeStatus `json:"status,omitempty"`
}

func (e Employee) Form() EmployeeForm {
	return EmployeeForm{Name: e.Name, Role: e.Role, Phone: e.Phone}
}
