package common

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether money left or entered the account. Amounts are
// always stored as non-negative magnitudes; the sign lives here.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// ColumnHint describes which statement column an amount string came from.
// Statements with separate withdrawal/deposit columns carry the direction
// in the column, not in the number itself.
type ColumnHint int

const (
	ColumnUnknown ColumnHint = iota
	ColumnWithdrawal
	ColumnDeposit
)

// Category is the fixed expense taxonomy used by the categorizer.
type Category string

const (
	CategoryGroceries     Category = "groceries"
	CategoryDining        Category = "dining"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryHousing       Category = "housing"
	CategoryUtilities     Category = "utilities"
	CategorySubscription  Category = "subscription"
	CategoryHealthcare    Category = "healthcare"
	CategoryEntertainment Category = "entertainment"
	CategoryTravel        Category = "travel"
	CategoryTransfer      Category = "transfer"
	CategoryIncome        Category = "income"
	CategoryFee           Category = "fee"
	CategoryTax           Category = "tax"
	CategoryUnknown       Category = "unknown"
)

// Categories lists every valid category, in the order presented to the model.
var Categories = []Category{
	CategoryGroceries, CategoryDining, CategoryTransport, CategoryShopping,
	CategoryHousing, CategoryUtilities, CategorySubscription,
	CategoryHealthcare, CategoryEntertainment, CategoryTravel,
	CategoryTransfer, CategoryIncome, CategoryFee, CategoryTax,
	CategoryUnknown,
}

// CategoryFromString maps a free-form model answer onto the taxonomy.
// Unrecognised values map to CategoryUnknown.
func CategoryFromString(s string) Category {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == normalized {
			return c
		}
	}
	return CategoryUnknown
}

// Transaction is one normalized statement row.
type Transaction struct {
	Sequence    int              `json:"sequence"`
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Direction   Direction        `json:"direction"`
	Currency    string           `json:"currency"`
	Merchant    string           `json:"merchant,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Category    Category         `json:"category"`
}
