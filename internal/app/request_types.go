package app

import "github.com/shopspring/decimal"

// Request types carry validated input from the web adapter into the
// application service. Validation tags are enforced centrally in
// applicationService before any business logic runs.

type CreateStoreRequest struct {
	Code string `json:"code" validate:"required,min=2,max=20"`
	Name string `json:"name" validate:"required,min=2,max=120"`
	City string `json:"city" validate:"max=120"`
}

type CreateOrderRequest struct {
	StoreID    int    `json:"-"`
	Supplier   string `json:"supplier" validate:"required,min=2,max=160"`
	OrderDate  string `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
	RawContent string `json:"raw_content" validate:"required"`

	// RawUpload holds the undecoded bytes of a file upload; when set it takes
	// precedence over RawContent and is charset-sniffed before parsing.
	RawUpload []byte `json:"-"`
}

// ReconciliationItemInput is one submitted row of a reconciliation form.
// Exactly one of QuantityReceived (absolute) or AddReceived (delta) should be
// set; Clear drops a previously entered quantity.
type ReconciliationItemInput struct {
	Product          string `json:"product" validate:"required"`
	QuantityReceived *int   `json:"quantity_received"`
	AddReceived      *int   `json:"add_received"`
	Clear            bool   `json:"clear"`
	ShortfallReason  string `json:"shortfall_reason" validate:"max=500"`
}

type SaveReconciliationRequest struct {
	StoreID          int                       `json:"-"`
	OrderID          int                       `json:"-"`
	ResponsibleParty string                    `json:"responsible_party" validate:"max=160"`
	Items            []ReconciliationItemInput `json:"items" validate:"required,min=1,dive"`
}

type UpsertStockItemRequest struct {
	StoreID      int             `json:"-"`
	Product      string          `json:"product" validate:"required,min=2,max=160"`
	Unit         string          `json:"unit" validate:"max=10"`
	MinimumLevel decimal.Decimal `json:"minimum_level"`
}

type StockMovementRequest struct {
	StoreID   int             `json:"-"`
	ItemID    int             `json:"-"`
	Type      string          `json:"type" validate:"required,oneof=IN OUT ADJUST"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	Reason    string          `json:"reason" validate:"max=500"`
	CreatedBy string          `json:"-"`
}

type OpenRegisterRequest struct {
	StoreID      int             `json:"-"`
	RegisterCode string          `json:"register_code" validate:"required,min=1,max=20"`
	OpenedBy     string          `json:"-"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

type RegisterMovementRequest struct {
	StoreID     int             `json:"-"`
	SessionID   int             `json:"-"`
	Type        string          `json:"type" validate:"required,oneof=SALE WITHDRAWAL DEPOSIT"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
}

type CloseRegisterRequest struct {
	StoreID       int             `json:"-"`
	SessionID     int             `json:"-"`
	ClosedBy      string          `json:"-"`
	CountedAmount decimal.Decimal `json:"counted_amount"`
}

type EmployeeRequest struct {
	StoreID  int             `json:"-"`
	Name     string          `json:"name" validate:"required,min=2,max=160"`
	Role     string          `json:"role" validate:"required,min=2,max=80"`
	CPF      string          `json:"cpf" validate:"required,len=11,numeric"`
	HireDate string          `json:"hire_date" validate:"required,datetime=2006-01-02"`
	Salary   decimal.Decimal `json:"salary"`
}

type AttachDocumentRequest struct {
	StoreID    int    `json:"-"`
	EmployeeID int    `json:"-"`
	Name       string `json:"name" validate:"required,min=2,max=160"`
	URL        string `json:"url" validate:"required,url"`
}
