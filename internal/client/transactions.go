package client

import (
	"context"
	"fmt"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
	"go.uber.org/zap"
)

// Filter selects a subset of the history.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPurchases Filter = "purchases"
	FilterReloads   Filter = "reloads"
)

// ParseFilter accepts all, purchases or reloads; empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPurchases, FilterReloads:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown filter %q", errs.ErrValidation, s)
	}
}

func (f Filter) match(tx model.Transaction) bool {
	switch f {
	case FilterPurchases:
		return tx.Type == model.TransactionPurchase
	case FilterReloads:
		return tx.IsIncome()
	default:
		return true
	}
}

// History is a student's transactions, newest first.
type History struct {
	Transactions []model.Transaction
}

// Totals summarizes a History.
type Totals struct {
	Spent     float64
	Reloaded  float64
	All       int
	Purchases int
	Reloads   int
}

// Filter returns the matching transactions in order.
func (h History) Filter(f Filter) []model.Transaction {
	out := make([]model.Transaction, 0, len(h.Transactions))
	for _, tx := range h.Transactions {
		if f.match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Totals sums purchases and reloads and counts each filter.
func (h History) Totals() Totals {
	t := Totals{All: len(h.Transactions)}
	for _, tx := range h.Transactions {
		switch {
		case tx.Type == model.TransactionPurchase:
			t.Spent += tx.Amount
			t.Purchases++
		case tx.IsIncome():
			t.Reloaded += tx.Amount
			t.Reloads++
		}
	}
	return t
}

func historyQuery(studentID string) model.Query {
	return model.Query{
		Collection: model.CollectionTransactions,
		Field:      model.FieldTxStudentID,
		Value:      studentID,
		OrderBy:    model.FieldTxTimestamp,
		Descending: true,
	}
}

func historyOf(docs []model.Document) History {
	h := History{Transactions: make([]model.Transaction, 0, len(docs))}
	for _, d := range docs {
		h.Transactions = append(h.Transactions, model.TransactionFromDocument(d))
	}
	return h
}

// Transactions reads the history once. A missing student id or a failed
// read yields an empty history.
func (c *Client) Transactions(ctx context.Context, studentID string) History {
	if studentID == "" {
		return History{}
	}
	docs, err := c.docs.Query(ctx, historyQuery(studentID))
	if err != nil {
		c.log.Warn("transactions query failed", zap.Error(err))
		return History{}
	}
	return historyOf(docs)
}

// WatchTransactions calls onUpdate with the full history after every change
// until stop is called. Failures are reported as an empty history.
func (c *Client) WatchTransactions(ctx context.Context, studentID string, onUpdate func(History)) (stop func()) {
	if studentID == "" {
		onUpdate(History{})
		return func() {}
	}
	stop, err := c.docs.WatchQuery(ctx, historyQuery(studentID),
		func(docs []model.Document) { onUpdate(historyOf(docs)) },
		func(err error) {
			c.log.Warn("transactions feed failed", zap.Error(err))
			onUpdate(History{})
		})
	if err != nil {
		c.log.Warn("transactions feed failed", zap.Error(err))
		onUpdate(History{})
		return func() {}
	}
	return stop
}
