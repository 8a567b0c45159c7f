package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type employeeService struct {
	pool *pgxpool.Pool
}

// NewEmployeeService constructs an EmployeeService backed by PostgreSQL.
func NewEmployeeService(pool *pgxpool.Pool) EmployeeService {
	return &employeeService{pool: pool}
}

func validateEmployeeInput(input *EmployeeInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.CPF = strings.TrimSpace(input.CPF)
	if input.Name == "" {
		return fmt.Errorf("employee name is required")
	}
	if input.Salary.IsNegative() {
		return fmt.Errorf("salary cannot be negative")
	}
	if input.HireDate == "" {
		input.HireDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", input.HireDate); err != nil {
		return fmt.Errorf("invalid hire date %q: %w", input.HireDate, err)
	}
	return nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, storeID int, input EmployeeInput) (*Employee, error) {
	if err := validateEmployeeInput(&input); err != nil {
		return nil, err
	}

	var id int
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO employees (store_id, name, role, cpf, hire_date, salary, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id`,
		storeID, input.Name, input.Role, input.CPF, input.HireDate, input.Salary,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return s.GetEmployee(ctx, storeID, id)
}

func (s *employeeService) UpdateEmployee(ctx context.Context, storeID, employeeID int, input EmployeeInput) (*Employee, error) {
	if err := validateEmployeeInput(&input); err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE employees
		SET name = $1, role = $2, cpf = $3, hire_date = $4, salary = $5
		WHERE id = $6 AND store_id = $7`,
		input.Name, input.Role, input.CPF, input.HireDate, input.Salary, employeeID, storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("update employee %d: %w", employeeID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &NotFoundError{Kind: "employee", Ref: strconv.Itoa(employeeID)}
	}
	return s.GetEmployee(ctx, storeID, employeeID)
}

func (s *employeeService) DeactivateEmployee(ctx context.Context, storeID, employeeID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE employees SET is_active = false WHERE id = $1 AND store_id = $2",
		employeeID, storeID,
	)
	if err != nil {
		return fmt.Errorf("deactivate employee %d: %w", employeeID, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Kind: "employee", Ref: strconv.Itoa(employeeID)}
	}
	return nil
}

func (s *employeeService) GetEmployee(ctx context.Context, storeID, employeeID int) (*Employee, error) {
	e := &Employee{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, store_id, name, role, cpf, hire_date::text, salary, is_active, created_at
		FROM employees
		WHERE id = $1 AND store_id = $2`,
		employeeID, storeID,
	).Scan(&e.ID, &e.StoreID, &e.Name, &e.Role, &e.CPF, &e.HireDate, &e.Salary, &e.IsActive, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "employee", Ref: strconv.Itoa(employeeID)}
		}
		return nil, fmt.Errorf("get employee %d: %w", employeeID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_id, name, url, uploaded_at
		FROM employee_documents
		WHERE employee_id = $1
		ORDER BY uploaded_at DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch employee documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d EmployeeDocument
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Name, &d.URL, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan employee document: %w", err)
		}
		e.Documents = append(e.Documents, d)
	}
	return e, rows.Err()
}

func (s *employeeService) ListEmployees(ctx context.Context, storeID int, activeOnly bool) ([]Employee, error) {
	query := `
		SELECT id, store_id, name, role, cpf, hire_date::text, salary, is_active, created_at
		FROM employees
		WHERE store_id = $1`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.StoreID, &e.Name, &e.Role, &e.CPF, &e.HireDate, &e.Salary, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *employeeService) AttachDocument(ctx context.Context, storeID, employeeID int, name, url string) (*EmployeeDocument, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" || url == "" {
		return nil, fmt.Errorf("document name and url are required")
	}

	// Ownership check keeps one store from attaching to another's employee.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND store_id = $2)",
		employeeID, storeID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("employee ownership check: %w", err)
	}
	if !exists {
		return nil, &NotFoundError{Kind: "employee", Ref: strconv.Itoa(employeeID)}
	}

	d := &EmployeeDocument{}
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO employee_documents (employee_id, name, url)
		VALUES ($1, $2, $3)
		RETURNING id, employee_id, name, url, uploaded_at`,
		employeeID, name, url,
	).Scan(&d.ID, &d.EmployeeID, &d.Name, &d.URL, &d.UploadedAt); err != nil {
		return nil, fmt.Errorf("insert employee document: %w", err)
	}
	return d, nil
}
