package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Employee is one HR record, scoped to a store.
type Employee struct {
	ID        int             `json:"id"`
	StoreID   int             `json:"store_id"`
	Name      string          `json:"name"`
	Role      string          `json:"role"` // job title, free text
	CPF       string          `json:"cpf"`
	HireDate  string          `json:"hire_date"` // YYYY-MM-DD
	Salary    decimal.Decimal `json:"salary"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`

	Documents []EmployeeDocument `json:"documents,omitempty"`
}

// EmployeeDocument is a reference to an externally stored file (contract,
// ID scan...). The URL comes from the upload webhook and is opaque here.
type EmployeeDocument struct {
	ID         int       `json:"id"`
	EmployeeID int       `json:"employee_id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// EmployeeInput holds the writable fields of an employee record.
type EmployeeInput struct {
	Name     string
	Role     string
	CPF      string
	HireDate string
	Salary   decimal.Decimal
}

// EmployeeService manages HR records and their document references.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, storeID int, input EmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, storeID, employeeID int, input EmployeeInput) (*Employee, error)

	// DeactivateEmployee soft-deletes: the record stays for payroll history.
	DeactivateEmployee(ctx context.Context, storeID, employeeID int) error

	// GetEmployee returns one employee including document references.
	GetEmployee(ctx context.Context, storeID, employeeID int) (*Employee, error)

	// ListEmployees returns the store's employees; activeOnly filters out
	// deactivated records.
	ListEmployees(ctx context.Context, storeID int, activeOnly bool) ([]Employee, error)

	// AttachDocument stores a document reference on an employee.
	AttachDocument(ctx context.Context, storeID, employeeID int, name, url string) (*EmployeeDocument, error)
}
