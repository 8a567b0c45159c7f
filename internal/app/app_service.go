package app

import (
	"context"
	"fmt"

	"varejo-backoffice/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// applicationService wires the core services behind the ApplicationService
// interface. It owns request validation and the translation between transport
// shapes and core types; all business rules live below it in core.
type applicationService struct {
	stores         core.StoreService
	users          core.UserService
	orders         core.OrderService
	reconciliation *core.ReconciliationEngine
	pendencies     core.ReconciliationStore
	inventory      core.InventoryService
	registers      core.RegisterService
	employees      core.EmployeeService
	benchmark      core.BenchmarkService

	validate *validator.Validate
}

// NewApplicationService assembles the application facade from the core
// services.
func NewApplicationService(
	stores core.StoreService,
	users core.UserService,
	orders core.OrderService,
	reconciliation *core.ReconciliationEngine,
	pendencies core.ReconciliationStore,
	inventory core.InventoryService,
	registers core.RegisterService,
	employees core.EmployeeService,
	benchmark core.BenchmarkService,
) ApplicationService {
	return &applicationService{
		stores:         stores,
		users:          users,
		orders:         orders,
		reconciliation: reconciliation,
		pendencies:     pendencies,
		inventory:      inventory,
		registers:      registers,
		employees:      employees,
		benchmark:      benchmark,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *applicationService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{
		UserID:   user.ID,
		StoreID:  user.StoreID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *applicationService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{
		ID:       user.ID,
		StoreID:  user.StoreID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

func (s *applicationService) ListStores(ctx context.Context) ([]core.Store, error) {
	return s.stores.ListStores(ctx, true)
}

func (s *applicationService) CreateStore(ctx context.Context, req CreateStoreRequest) (*core.Store, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.stores.CreateStore(ctx, req.Code, req.Name, req.City)
}

func (s *applicationService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	if len(req.RawUpload) > 0 {
		req.RawContent = core.DecodeOrderUpload(req.RawUpload)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	order, err := s.orders.CreateOrder(ctx, req.StoreID, req.Supplier, req.OrderDate, req.RawContent)
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

func (s *applicationService) GetOrder(ctx context.Context, storeID, orderID int) (*OrderResult, error) {
	order, err := s.orders.GetOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

// orderResult attaches the parsed line-item preview to an order.
func orderResult(order *core.Order) *OrderResult {
	parsed := core.ParseOrderText(order.RawContent)
	res := &OrderResult{Order: *order, SkippedLines: parsed.SkippedLines}
	for _, item := range parsed.Items {
		res.Items = append(res.Items, OrderItemView{
			Product:         item.Name,
			QuantityOrdered: item.QuantityOrdered,
		})
	}
	return res
}

func (s *applicationService) ListOrders(ctx context.Context, storeID int, status core.OrderStatus) ([]core.Order, error) {
	return s.orders.ListOrders(ctx, storeID, status)
}

func (s *applicationService) DeleteOrder(ctx context.Context, storeID, orderID int) error {
	return s.orders.DeleteOrder(ctx, storeID, orderID)
}

func (s *applicationService) OpenReconciliation(ctx context.Context, storeID, orderID int) (*ReconciliationSessionResult, error) {
	sess, err := s.reconciliation.LoadSession(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	return sessionResult(sess), nil
}

func sessionResult(sess *core.Session) *ReconciliationSessionResult {
	res := &ReconciliationSessionResult{
		OrderID:     sess.OrderID,
		OrderNumber: sess.OrderNumber,
		Revisit:     sess.Revisit,
	}
	for i := range sess.Items {
		item := &sess.Items[i]
		res.Items = append(res.Items, ReconciliationItemView{
			Product:          item.Name,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: item.QuantityReceived,
			QuantityShort:    item.Short(),
			ShortfallReason:  item.ShortfallReason,
		})
		res.TotalOrdered += item.QuantityOrdered
	}
	if sess.SkippedLines > 0 {
		res.Warning = fmt.Sprintf("%d line(s) of the order text could not be read and were skipped", sess.SkippedLines)
	}
	return res
}

// SaveReconciliation rebuilds the session server-side and replays the
// submitted rows onto it. The session is never trusted from the client: the
// ordered quantities and the revisit seed always come from storage, so the
// clamp and completeness rules cannot be bypassed by a crafted payload.
func (s *applicationService) SaveReconciliation(ctx context.Context, req SaveReconciliationRequest) (*core.SaveSummary, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	sess, err := s.reconciliation.LoadSession(ctx, req.StoreID, req.OrderID)
	if err != nil {
		return nil, err
	}

	for _, in := range req.Items {
		switch {
		case in.Clear:
			err = sess.ClearReceived(in.Product)
		case in.AddReceived != nil:
			err = sess.AddReceived(in.Product, *in.AddReceived)
		case in.QuantityReceived != nil:
			err = sess.SetReceived(in.Product, *in.QuantityReceived)
		}
		if err != nil {
			return nil, err
		}
		if in.ShortfallReason != "" {
			if err := sess.SetReason(in.Product, in.ShortfallReason); err != nil {
				return nil, err
			}
		}
	}

	return s.reconciliation.Save(ctx, sess, req.ResponsibleParty)
}

func (s *applicationService) ListPendencies(ctx context.Context, storeID int) ([]core.PendencyRecord, error) {
	return s.pendencies.PendenciesByStore(ctx, storeID)
}

func (s *applicationService) UpsertStockItem(ctx context.Context, req UpsertStockItemRequest) (*core.StockItem, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.inventory.UpsertItem(ctx, req.StoreID, req.Product, req.Unit, req.MinimumLevel)
}

func (s *applicationService) ListStock(ctx context.Context, storeID int, lowOnly bool) ([]core.StockItem, error) {
	if lowOnly {
		return s.inventory.LowStock(ctx, storeID)
	}
	return s.inventory.ListItems(ctx, storeID)
}

func (s *applicationService) RecordStockMovement(ctx context.Context, req StockMovementRequest) (*core.StockMovement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.inventory.RecordMovement(ctx, req.StoreID, req.ItemID,
		core.MovementType(req.Type), req.Quantity, req.Reason, req.CreatedBy)
}

func (s *applicationService) ListStockMovements(ctx context.Context, storeID, itemID int) ([]core.StockMovement, error) {
	return s.inventory.ListMovements(ctx, storeID, itemID)
}

func (s *applicationService) OpenRegister(ctx context.Context, req OpenRegisterRequest) (*core.RegisterSession, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.registers.OpenSession(ctx, req.StoreID, req.RegisterCode, req.OpenedBy, req.OpeningFloat)
}

func (s *applicationService) RecordRegisterMovement(ctx context.Context, req RegisterMovementRequest) (*core.RegisterMovement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.registers.RecordMovement(ctx, req.StoreID, req.SessionID,
		core.RegisterMovementType(req.Type), req.Amount, req.Description)
}

func (s *applicationService) CloseRegister(ctx context.Context, req CloseRegisterRequest) (*core.RegisterSession, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.registers.CloseSession(ctx, req.StoreID, req.SessionID, req.ClosedBy, req.CountedAmount)
}

func (s *applicationService) GetRegisterSession(ctx context.Context, storeID, sessionID int) (*core.RegisterSession, error) {
	return s.registers.GetSession(ctx, storeID, sessionID)
}

func (s *applicationService) ListRegisterSessions(ctx context.Context, storeID int) ([]core.RegisterSession, error) {
	return s.registers.ListSessions(ctx, storeID)
}

func (s *applicationService) CreateEmployee(ctx context.Context, req EmployeeRequest) (*core.Employee, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.employees.CreateEmployee(ctx, req.StoreID, employeeInput(req))
}

func (s *applicationService) UpdateEmployee(ctx context.Context, storeID, employeeID int, req EmployeeRequest) (*core.Employee, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.employees.UpdateEmployee(ctx, storeID, employeeID, employeeInput(req))
}

func employeeInput(req EmployeeRequest) core.EmployeeInput {
	return core.EmployeeInput{
		Name:     req.Name,
		Role:     req.Role,
		CPF:      req.CPF,
		HireDate: req.HireDate,
		Salary:   req.Salary,
	}
}

func (s *applicationService) DeactivateEmployee(ctx context.Context, storeID, employeeID int) error {
	return s.employees.DeactivateEmployee(ctx, storeID, employeeID)
}

func (s *applicationService) GetEmployee(ctx context.Context, storeID, employeeID int) (*core.Employee, error) {
	return s.employees.GetEmployee(ctx, storeID, employeeID)
}

func (s *applicationService) ListEmployees(ctx context.Context, storeID int, activeOnly bool) ([]core.Employee, error) {
	return s.employees.ListEmployees(ctx, storeID, activeOnly)
}

func (s *applicationService) AttachEmployeeDocument(ctx context.Context, req AttachDocumentRequest) (*core.EmployeeDocument, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.employees.AttachDocument(ctx, req.StoreID, req.EmployeeID, req.Name, req.URL)
}

func (s *applicationService) MonthlyBenchmark(ctx context.Context, year, month int) (*core.BenchmarkReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d outside [1, 12]", month)
	}
	return s.benchmark.MonthlyBenchmark(ctx, year, month)
}

func (s *applicationService) StoreRevenueHistory(ctx context.Context, storeID, year int) ([]core.MonthRevenue, error) {
	return s.benchmark.StoreRevenueHistory(ctx, storeID, year)
}

// ExportMonthlyBenchmark renders the benchmark report as an .xlsx workbook
// with one row per store plus a chain total.
func (s *applicationService) ExportMonthlyBenchmark(ctx context.Context, year, month int) ([]byte, error) {
	report, err := s.MonthlyBenchmark(ctx, year, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Benchmark"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create benchmark sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Store Code", "Store Name", "Revenue", "Share %"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header %q: %w", h, err)
		}
	}

	row := 2
	for _, r := range report.Rows {
		revenue, _ := r.Revenue.Float64()
		share, _ := r.Share.Float64()
		values := []any{r.StoreCode, r.StoreName, revenue, share}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write benchmark row %d: %w", row, err)
			}
		}
		row++
	}

	total, _ := report.TotalRevenue.Float64()
	totalLabelCell, _ := excelize.CoordinatesToCellName(2, row)
	totalValueCell, _ := excelize.CoordinatesToCellName(3, row)
	if err := f.SetCellValue(sheet, totalLabelCell, "Total"); err != nil {
		return nil, fmt.Errorf("write total label: %w", err)
	}
	if err := f.SetCellValue(sheet, totalValueCell, total); err != nil {
		return nil, fmt.Errorf("write total value: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
