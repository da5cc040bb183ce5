package fees

import "testing"

func TestRecord_ApplyPayment(t *testing.T) {
	rec := NewRecord(45000, "2026-06-01")

	rec = rec.ApplyPayment(Payment{ID: "P1", Amount: 15000, Date: "2026-01-10", Mode: ModeOnline})
	if rec.Summary.Paid != 15000 || rec.Summary.Due != 30000 {
		t.Errorf("summary = %+v; want paid 15000 due 30000", rec.Summary)
	}

	rec = rec.ApplyPayment(Payment{ID: "P2", Amount: 30000, Date: "2026-02-10", Mode: ModeCash})
	if rec.Summary.Paid != 45000 || rec.Summary.Due != 0 {
		t.Errorf("summary = %+v; want paid 45000 due 0", rec.Summary)
	}
	if len(rec.PaymentHistory) != 2 {
		t.Errorf("len(history) = %d; want 2", len(rec.PaymentHistory))
	}

	t.Run("due stays total minus paid", func(t *testing.T) {
		if rec.Summary.Due != rec.Summary.Total-rec.Summary.Paid {
			t.Errorf("due = %d; want %d", rec.Summary.Due, rec.Summary.Total-rec.Summary.Paid)
		}
	})

	t.Run("missing date defaults to today", func(t *testing.T) {
		r := NewRecord(100, "").ApplyPayment(Payment{ID: "P3", Amount: 10, Mode: ModeCash})
		if r.PaymentHistory[0].Date == "" {
			t.Error("expected a stamped date")
		}
	})

	t.Run("input record untouched", func(t *testing.T) {
		orig := NewRecord(100, "")
		_ = orig.ApplyPayment(Payment{ID: "P4", Amount: 10, Mode: ModeCash})
		if orig.Summary.Paid != 0 || len(orig.PaymentHistory) != 0 {
			t.Error("ApplyPayment() mutated its receiver")
		}
	})
}

func TestTable_TotalDue(t *testing.T) {
	table := Table{
		"S1": NewRecord(45000, "").ApplyPayment(Payment{Amount: 15000}),
		"S2": NewRecord(38000, ""),
	}
	if got := table.TotalDue(); got != 68000 {
		t.Errorf("TotalDue() = %d; want 68000", got)
	}

	// recomputed from current state, never cached
	table["S2"] = table["S2"].ApplyPayment(Payment{Amount: 38000})
	if got := table.TotalDue(); got != 30000 {
		t.Errorf("TotalDue() = %d; want 30000", got)
	}

	if got := (Table{}).TotalDue(); got != 0 {
		t.Errorf("TotalDue() = %d; want 0", got)
	}
}

func TestTable_Clone(t *testing.T) {
	table := Table{"S1": NewRecord(100, "")}
	clone := table.Clone()
	clone["S1"] = clone["S1"].ApplyPayment(Payment{Amount: 10})

	if table["S1"].Summary.Paid != 0 {
		t.Error("Clone() shares records with the source")
	}
}
