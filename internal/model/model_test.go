package model

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func TestFields_Accessors(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	f := Fields{
		"s":    "x",
		"n":    12.5,
		"i":    int64(3),
		"ns":   "7.25",
		"bad":  "seven",
		"b":    true,
		"bs":   "true",
		"t":    ts.Format(time.RFC3339),
		"tt":   ts,
		"null": nil,
	}

	require.Equal(t, "x", f.String("s"))
	require.Equal(t, "12.5", f.String("n"))
	require.Equal(t, "", f.String("null"))
	require.Equal(t, "", f.String("missing"))

	require.Equal(t, 12.5, f.Float("n"))
	require.Equal(t, 3.0, f.Float("i"))
	require.Equal(t, 7.25, f.Float("ns"))
	require.Equal(t, 0.0, f.Float("bad"))
	require.Equal(t, 0.0, f.Float("missing"))

	require.True(t, f.Bool("b"))
	require.False(t, f.Bool("bs"))
	require.False(t, f.Bool("null"))

	require.True(t, ts.Equal(f.Time("t")))
	require.True(t, ts.Equal(f.Time("tt")))
	require.True(t, f.Time("s").IsZero())

	c := f.Clone()
	c["s"] = "y"
	require.Equal(t, "x", f.String("s"))
	require.Nil(t, Fields(nil).Clone())
}

func TestProfileRecordFromFields_Completeness(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		val  any
		set  bool
		want bool
	}{
		"absent":      {set: false, want: false},
		"null":        {val: nil, set: true, want: false},
		"false":       {val: false, set: true, want: false},
		"string true": {val: "true", set: true, want: false},
		"one":         {val: 1.0, set: true, want: false},
		"true":        {val: true, set: true, want: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := Fields{FieldFirstName: "Ana"}
			if tc.set {
				f[FieldProfileComplete] = tc.val
			}
			rec := ProfileRecordFromFields("u1", f)
			require.Equal(t, tc.want, rec.ProfileComplete)
			require.Equal(t, tc.want, Profile{ProfileRecord: rec}.Complete())
		})
	}
}

func TestProfileRecord_Deactivated(t *testing.T) {
	t.Parallel()

	rec := ProfileRecordFromFields("u1", Fields{FieldStatus: "deactivated", FieldBalance: 120.0})
	require.True(t, rec.Deactivated())
	require.Equal(t, 120.0, rec.Balance)

	rec = ProfileRecordFromFields("u1", Fields{FieldStatus: "active"})
	require.False(t, rec.Deactivated())
}

func TestTransactionFromDocument(t *testing.T) {
	t.Parallel()

	order := TransactionFromDocument(Document{ID: "t1", Fields: Fields{
		FieldTxOrderID: "ORD-1",
		FieldTxTotal:   55.0,
		FieldTxItems:   []any{map[string]any{"v_Name": "Rice"}, map[string]any{"v_Name": "Tea"}},
	}})
	require.Equal(t, TransactionPurchase, order.Type)
	require.Equal(t, "Rice, Tea", order.Title)
	require.Equal(t, 55.0, order.Amount)
	require.False(t, order.IsIncome())

	emptyOrder := TransactionFromDocument(Document{ID: "t2", Fields: Fields{FieldTxOrderID: "ORD-2"}})
	require.Equal(t, "Order", emptyOrder.Title)

	reload := TransactionFromDocument(Document{ID: "t3", Fields: Fields{
		FieldTxType:   TransactionReload,
		FieldTxAmount: 200.0,
	}})
	require.Equal(t, TransactionReload, reload.Type)
	require.Equal(t, TransactionReload, reload.Title)
	require.Equal(t, 200.0, reload.Amount)
	require.True(t, reload.IsIncome())

	bare := TransactionFromDocument(Document{ID: "t4", Fields: Fields{}})
	require.Equal(t, TransactionPurchase, bare.Type)
	require.Equal(t, "Transaction", bare.Title)
	require.Equal(t, 0.0, bare.Amount)
}

func TestAccount_Identity(t *testing.T) {
	t.Parallel()

	id := uuid.Must(uuid.NewV4())
	got := Account{ID: id, Email: "a@b.edu", EmailVerified: true}.Identity()
	require.Equal(t, Identity{UserID: id.String(), Email: "a@b.edu", EmailVerified: true}, got)
}

func TestSupportRequest_Fields(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f := SupportRequest{UserID: "u", Subject: "s", Status: SupportStatusPending, Timestamp: ts}.Fields()
	require.Equal(t, "N/A", f["v_SelectedOrder"])
	require.Equal(t, "pending", f["v_Status"])
	require.Equal(t, ts.Format(time.RFC3339Nano), f["v_Timestamp"])
}
