package validation

// Reporter receives problems in the order rules raise them.
type Reporter interface {
	Report(Problem)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Problem)

func (f ReporterFunc) Report(p Problem) { f(p) }

// Collector keeps every reported problem. It is not safe for concurrent use;
// give each file its own.
type Collector struct {
	problems []Problem
}

func (c *Collector) Report(p Problem) {
	c.problems = append(c.problems, p)
}

func (c *Collector) Problems() []Problem {
	return c.problems
}

// Tee forwards each problem to every reporter in order. Nil entries are
// skipped.
type Tee []Reporter

func (t Tee) Report(p Problem) {
	for _, r := range t {
		if r != nil {
			r.Report(p)
		}
	}
}

// Filter drops problems whose code is ignored.
type Filter struct {
	next   Reporter
	ignore map[string]bool
}

func NewFilter(next Reporter, ignoredCodes []string) *Filter {
	f := &Filter{next: next, ignore: make(map[string]bool, len(ignoredCodes))}
	for _, c := range ignoredCodes {
		f.ignore[c] = true
	}
	return f
}

func (f *Filter) Report(p Problem) {
	if f.ignore[p.Code] {
		return
	}
	f.next.Report(p)
}
