package date

import "fmt"

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range of the given period containing d.
func NewRange(d Date, period Period) Range { return period.Range(d) }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns every day of the range.
func (r Range) Days() int {
	return int(r.To.time().Sub(r.From.time()).Hours()/24) + 1
}

// Identifier computes a short, unique name for the range.
func (r Range) Identifier() string {
	switch {
	case r.From == r.To:
		return r.From.String()
	case r.From == r.From.StartOf(Monthly) && r.To == r.From.EndOf(Monthly):
		return r.From.Format("2006-01")
	case r.From == r.From.StartOf(Quarterly) && r.To == r.From.EndOf(Quarterly):
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case r.From == r.From.StartOf(Yearly) && r.To == r.From.EndOf(Yearly):
		return r.From.Format("2006")
	default:
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}
}

func (r Range) String() string { return fmt.Sprintf("[%s, %s]", r.From, r.To) }
