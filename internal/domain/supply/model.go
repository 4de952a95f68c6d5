package supply

import "time"

// Supply is one inventory item. CurrentStockLevel only changes through
// stock transactions; the plain update path covers the descriptive fields.
type Supply struct {
	ID                int64     `db:"supply_id" json:"supply_id"`
	CategoryID        int64     `db:"category_id" json:"category_id"`
	ItemName          string    `db:"item_name" json:"item_name"`
	Description       *string   `db:"description" json:"description,omitempty"`
	CurrentStockLevel int       `db:"current_stock_level" json:"current_stock_level"`
	UnitOfMeasure     *string   `db:"unit_of_measure" json:"unit_of_measure,omitempty"`
	ReorderLevel      int       `db:"reorder_level" json:"reorder_level"`
	Status            *string   `db:"status" json:"status,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`

	CategoryName string `json:"category_name,omitempty"`
}

// Category groups supplies.
type Category struct {
	ID        int64     `db:"category_id" json:"category_id"`
	Name      string    `db:"category_name" json:"category_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TransactionType is reference data naming a kind of stock movement.
type TransactionType struct {
	ID   int64  `db:"transaction_type_id" json:"transaction_type_id"`
	Name string `db:"type_name" json:"type_name"`
}

// Transaction is one signed stock movement against a supply.
type Transaction struct {
	ID                int64     `db:"transaction_id" json:"transaction_id"`
	SupplyID          int64     `db:"supply_id" json:"supply_id"`
	TransactionTypeID int64     `db:"transaction_type_id" json:"transaction_type_id"`
	Quantity          int       `db:"quantity" json:"quantity"`
	RecordedBy        int64     `db:"recorded_by_user_id" json:"recorded_by_user_id"`
	Notes             *string   `db:"notes" json:"notes,omitempty"`
	TransactionDate   time.Time `db:"transaction_date" json:"transaction_date"`

	TypeName       string `json:"type_name,omitempty"`
	RecordedByName string `json:"recorded_by,omitempty"`
}

// Input carries supply create/update fields.
type Input struct {
	CategoryID        *int64  `json:"category_id,omitempty"`
	ItemName          *string `json:"item_name,omitempty"`
	Description       *string `json:"description,omitempty"`
	CurrentStockLevel *int    `json:"current_stock_level,omitempty"`
	UnitOfMeasure     *string `json:"unit_of_measure,omitempty"`
	ReorderLevel      *int    `json:"reorder_level,omitempty"`
	Status            *string `json:"status,omitempty"`
}

// Empty reports whether no field is set.
func (in Input) Empty() bool {
	return in.CategoryID == nil && in.ItemName == nil && in.Description == nil &&
		in.CurrentStockLevel == nil && in.UnitOfMeasure == nil &&
		in.ReorderLevel == nil && in.Status == nil
}

// StockInput is the body of a stock adjustment. Quantity is signed:
// positive receives stock, negative issues it.
type StockInput struct {
	Quantity        int     `json:"quantity"`
	TransactionType string  `json:"transaction_type"`
	Notes           *string `json:"notes,omitempty"`
}

// StockChange is the audit snapshot for a stock adjustment; old and new
// images share the shape, with only the relevant fields set on each side.
type StockChange struct {
	OldStock        *int   `json:"old_stock,omitempty"`
	NewStock        *int   `json:"new_stock,omitempty"`
	Quantity        *int   `json:"quantity,omitempty"`
	TransactionType string `json:"transaction_type,omitempty"`
}

// ListFilter narrows supply listings.
type ListFilter struct {
	Category string
	Status   string
	LowStock bool
}
