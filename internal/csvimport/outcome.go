package csvimport

// Status classifies a row outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

const skipDetail = "SKIP already exists"

// Outcome is the result of one data row. Row is the row's id cell (or its
// first field when the line could not be split into columns).
type Outcome struct {
	Row    string
	Status Status
	Detail string
}

func ok(row string) Outcome      { return Outcome{Row: row, Status: StatusOK, Detail: "OK"} }
func skipped(row string) Outcome { return Outcome{Row: row, Status: StatusSkipped, Detail: skipDetail} }
func failed(row, detail string) Outcome {
	return Outcome{Row: row, Status: StatusFailed, Detail: detail}
}

// String renders the outcome line, e.g. "1: OK" or
// "7: City Springfield was not found in database".
func (o Outcome) String() string { return o.Row + ": " + o.Detail }

// Report collects outcomes in file order together with per-status counts.
type Report struct {
	Outcomes []Outcome
	Total    int
	OK       int
	Skipped  int
	Failed   int
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Total++
	switch o.Status {
	case StatusOK:
		r.OK++
	case StatusSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Lines returns every outcome rendered with String.
func (r *Report) Lines() []string {
	out := make([]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.String()
	}
	return out
}
