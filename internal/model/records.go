package model

type Employee struct {
	EmployeeID       int    `json:"employee_id" validate:"gte=0"`
	OrgID            int    `json:"org_id" validate:"gte=0"`
	ClientID         int    `json:"client_id" validate:"gte=0"`
	Name             string `json:"name" validate:"required,max=120"`
	Email            string `json:"email" validate:"required,email"`
	Role             string `json:"role" validate:"required"`
	EmployeeType     string `json:"employee_type" validate:"omitempty,max=40"`
	Experience       Number `json:"experience" validate:"gte=0"`
	LPA              Number `json:"lpa" validate:"gte=0"`
	HourlyRate       Number `json:"hourly_rate" validate:"gte=0"`
	ProjectID        int    `json:"project_id"`
	ProjectHistory   []int  `json:"project_history,omitempty"`
	ProjectManagerID int    `json:"project_manager_id"`
}

type Client struct {
	ClientID int    `json:"clientId" validate:"gte=0"`
	OrgID    string `json:"orgId"`
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// Invoice is one finance transaction.
type Invoice struct {
	TransactionID int    `json:"transaction_id" validate:"gte=0"`
	ProjectID     int    `json:"project_id" validate:"gte=0"`
	ClientID      int    `json:"client_id" validate:"gte=0"`
	FinanceUserID int    `json:"finance_user_id" validate:"gte=0"`
	InvoiceNumber string `json:"invoice_number" validate:"required"`
	Amount        Number `json:"amount" validate:"gte=0"`
	Status        string `json:"status" validate:"required"`
	Date          string `json:"transaction_date"`
	BankName      string `json:"bank_name"`
	BankAccountNo string `json:"bank_account_no" validate:"omitempty,numeric"`
	BankPayeeName string `json:"bank_payee_name"`
	BankIFSC      string `json:"bank_ifsc" validate:"omitempty,alphanum,len=11"`
}

type Project struct {
	ProjectID          int    `json:"project_id" validate:"gte=0"`
	OrgID              int    `json:"org_id" validate:"gte=0"`
	ClientID           int    `json:"client_id" validate:"gte=0"`
	Name               string `json:"project_name" validate:"required"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	Status             string `json:"status"`
	TotalBudget        Number `json:"total_budget" validate:"gte=0"`
	AllocatedBudget    Number `json:"allocated_budget" validate:"gte=0"`
	RemainingBudget    Number `json:"remaining_budget"`
	EmployeeBudget     Number `json:"employee_budget" validate:"gte=0"`
	TechnicalBudget    Number `json:"technical_budget" validate:"gte=0"`
	AdditionalBudget   Number `json:"additional_budget" validate:"gte=0"`
	EmployeeExpenses   Number `json:"employee_expenses" validate:"gte=0"`
	TechnicalExpenses  Number `json:"technical_expenses" validate:"gte=0"`
	AdditionalExpenses Number `json:"additional_expenses" validate:"gte=0"`
	EmployeesList      []int  `json:"employees_list,omitempty"`
}

// User is an account of the organization as listed by the auth service.
// Email is its identifier.
type User struct {
	Email    string `json:"email" validate:"required,email"`
	OrgID    int    `json:"org_id" validate:"gte=0"`
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password,omitempty"`
}

// Organisation is a tenant registered with the employee service.
type Organisation struct {
	OrgID       int    `json:"org_id" validate:"gte=0"`
	Name        string `json:"name" validate:"required,max=120"`
	Type        string `json:"type" validate:"omitempty,max=60"`
	Address     string `json:"address"`
	ContactInfo string `json:"contact_info"`
}
