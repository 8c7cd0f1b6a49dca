package model

import (
	"strings"
	"time"
)

// Transaction types as stored in v_TransactionType.
const (
	TransactionPurchase = "Purchase"
	TransactionReload   = "Reload"
	TransactionIncome   = "Income"
)

// Field names of tbl_Transactions records.
const (
	FieldTxStudentID = "v_StudentId"
	FieldTxTimestamp = "v_Timestamp"
	FieldTxTotal     = "v_Total"
	FieldTxAmount    = "v_TransactionAmount"
	FieldTxOrderID   = "v_OrderId"
	FieldTxItems     = "v_Items"
	FieldTxType      = "v_TransactionType"
	FieldTxItemName  = "v_Name"
)

// Transaction is one row of a student's history.
type Transaction struct {
	ID        string
	Title     string
	Amount    float64
	Type      string
	Timestamp time.Time
	OrderID   string
	Items     []string
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool {
	return t.Type == TransactionReload || t.Type == TransactionIncome
}

// TransactionFromDocument maps a stored record to a Transaction.
// Orders are purchases titled by their item names; otherwise the stored type names both type and title.
func TransactionFromDocument(doc Document) Transaction {
	f := doc.Fields
	tx := Transaction{
		ID:        doc.ID,
		Title:     "Transaction",
		Type:      TransactionPurchase,
		Timestamp: f.Time(FieldTxTimestamp),
		OrderID:   f.String(FieldTxOrderID),
	}

	tx.Amount = f.Float(FieldTxTotal)
	if tx.Amount == 0 {
		tx.Amount = f.Float(FieldTxAmount)
	}

	if items, ok := f[FieldTxItems].([]any); ok {
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				if name := Fields(m).String(FieldTxItemName); name != "" {
					tx.Items = append(tx.Items, name)
				}
			}
		}
	}

	switch {
	case tx.OrderID != "":
		tx.Type = TransactionPurchase
		tx.Title = "Order"
		if len(tx.Items) > 0 {
			tx.Title = strings.Join(tx.Items, ", ")
		}
	case f.String(FieldTxType) != "":
		tx.Type = f.String(FieldTxType)
		tx.Title = tx.Type
	}
	return tx
}
