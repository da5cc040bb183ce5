package fees

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// Payment modes
const (
	ModeCash   = "cash"
	ModeCheque = "cheque"
	ModeOnline = "online"
)

var ErrRecordNotFound = errors.New("fee record not found")

type (
	Payment struct {
		ID     string      `json:"id"`
		Amount int         `json:"amount"`
		Date   string      `json:"date"` // YYYY-MM-DD
		Mode   string      `json:"mode"`
		Note   null.String `json:"note,omitempty"`
	}

	// Summary keeps the running totals for one student.
	// Invariant: Due = Total - Paid, maintained on every payment write.
	Summary struct {
		Total   int    `json:"total"`
		Paid    int    `json:"paid"`
		Due     int    `json:"due"`
		DueDate string `json:"dueDate,omitempty"`
	}

	Record struct {
		Summary        Summary   `json:"summary"`
		PaymentHistory []Payment `json:"paymentHistory"`
	}

	// Table maps student ID -> fee record.
	Table map[string]Record
)

// NewRecord opens a fee record for a student with the given annual total.
func NewRecord(totalAnnual int, dueDate string) Record {
	return Record{
		Summary: Summary{Total: totalAnnual, Paid: 0, Due: totalAnnual, DueDate: dueDate},
	}
}

// ApplyPayment appends a payment and rebalances the summary.
func (r Record) ApplyPayment(p Payment) Record {
	if p.Date == "" {
		p.Date = time.Now().Format("2006-01-02")
	}
	r.PaymentHistory = append(append([]Payment{}, r.PaymentHistory...), p)
	r.Summary.Paid += p.Amount
	r.Summary.Due = r.Summary.Total - r.Summary.Paid
	return r
}

// Clone copies the table one level deep, enough to swap a record without
// touching the shared snapshot.
func (t Table) Clone() Table {
	clone := make(Table, len(t))
	for id, rec := range t {
		clone[id] = rec
	}
	return clone
}

// TotalDue sums the outstanding dues across all students. It is recomputed
// from current state on every call, never cached.
func (t Table) TotalDue() int {
	var due int
	for _, rec := range t {
		due += rec.Summary.Due
	}
	return due
}

// NewPayment carries a payment submission.
type NewPayment struct {
	StudentID string `json:"student_id" validate:"required"`
	Amount    int    `json:"amount" validate:"required,gt=0"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Mode      string `json:"mode" validate:"required,oneof=cash cheque online"`
	Note      string `json:"note"`
}
