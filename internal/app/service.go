package app

import (
	"context"

	"varejo-backoffice/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic; implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns a user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)

	// ListStores returns all active stores.
	ListStores(ctx context.Context) ([]core.Store, error)

	// CreateStore registers a new store in the chain (admin only).
	CreateStore(ctx context.Context, req CreateStoreRequest) (*core.Store, error)

	// CreateOrder ingests a pasted or uploaded order text blob.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// GetOrder returns one order with its parsed line-item preview.
	GetOrder(ctx context.Context, storeID, orderID int) (*OrderResult, error)

	// ListOrders returns a store's orders, optionally filtered by status.
	ListOrders(ctx context.Context, storeID int, status core.OrderStatus) ([]core.Order, error)

	// DeleteOrder removes an order together with its reconciliation rows.
	DeleteOrder(ctx context.Context, storeID, orderID int) error

	// OpenReconciliation loads a reconciliation session for an order: fresh
	// for a never-reconciled order, seeded from stored pendencies otherwise.
	OpenReconciliation(ctx context.Context, storeID, orderID int) (*ReconciliationSessionResult, error)

	// SaveReconciliation applies the submitted quantities/reasons and persists
	// the reconciliation summary plus the fresh pendency set.
	SaveReconciliation(ctx context.Context, req SaveReconciliationRequest) (*core.SaveSummary, error)

	// ListPendencies returns every outstanding shortfall across the store.
	ListPendencies(ctx context.Context, storeID int) ([]core.PendencyRecord, error)

	// UpsertStockItem creates or re-parameterizes a tracked stock item.
	UpsertStockItem(ctx context.Context, req UpsertStockItemRequest) (*core.StockItem, error)

	// ListStock returns stock items; lowOnly keeps only items at or below
	// their minimum level.
	ListStock(ctx context.Context, storeID int, lowOnly bool) ([]core.StockItem, error)

	// RecordStockMovement applies an IN/OUT/ADJUST movement.
	RecordStockMovement(ctx context.Context, req StockMovementRequest) (*core.StockMovement, error)

	// ListStockMovements returns an item's movement history.
	ListStockMovements(ctx context.Context, storeID, itemID int) ([]core.StockMovement, error)

	// OpenRegister opens a cash register session with an opening float.
	OpenRegister(ctx context.Context, req OpenRegisterRequest) (*core.RegisterSession, error)

	// RecordRegisterMovement logs a SALE/WITHDRAWAL/DEPOSIT on an open session.
	RecordRegisterMovement(ctx context.Context, req RegisterMovementRequest) (*core.RegisterMovement, error)

	// CloseRegister counts the drawer and closes the session.
	CloseRegister(ctx context.Context, req CloseRegisterRequest) (*core.RegisterSession, error)

	// GetRegisterSession returns a session including its movements.
	GetRegisterSession(ctx context.Context, storeID, sessionID int) (*core.RegisterSession, error)

	// ListRegisterSessions returns the store's register sessions.
	ListRegisterSessions(ctx context.Context, storeID int) ([]core.RegisterSession, error)

	// CreateEmployee / UpdateEmployee / DeactivateEmployee manage HR records.
	CreateEmployee(ctx context.Context, req EmployeeRequest) (*core.Employee, error)
	UpdateEmployee(ctx context.Context, storeID, employeeID int, req EmployeeRequest) (*core.Employee, error)
	DeactivateEmployee(ctx context.Context, storeID, employeeID int) error

	// GetEmployee returns one employee with document references.
	GetEmployee(ctx context.Context, storeID, employeeID int) (*core.Employee, error)

	// ListEmployees returns the store's employees.
	ListEmployees(ctx context.Context, storeID int, activeOnly bool) ([]core.Employee, error)

	// AttachEmployeeDocument records an external document link.
	AttachEmployeeDocument(ctx context.Context, req AttachDocumentRequest) (*core.EmployeeDocument, error)

	// MonthlyBenchmark compares revenue across stores for one month.
	MonthlyBenchmark(ctx context.Context, year, month int) (*core.BenchmarkReport, error)

	// StoreRevenueHistory returns a store's month-by-month revenue for a year.
	StoreRevenueHistory(ctx context.Context, storeID, year int) ([]core.MonthRevenue, error)

	// ExportMonthlyBenchmark renders the benchmark as an .xlsx workbook.
	ExportMonthlyBenchmark(ctx context.Context, year, month int) ([]byte, error)
}
