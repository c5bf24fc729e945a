package model

// Item is the domain model for a todo entry. The title doubles as the
// identifier: the backend keeps titles unique, so there is no separate id.
type Item struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// DoneFilter selects which items a list request should return.
// Pure view state; never persisted.
type DoneFilter int

const (
	FilterAll DoneFilter = iota
	FilterDone
	FilterNotDone
)

// Param returns the value of the `done` query parameter for this filter.
// FilterAll omits the parameter entirely (ok == false).
func (f DoneFilter) Param() (value string, ok bool) {
	switch f {
	case FilterDone:
		return "true", true
	case FilterNotDone:
		return "false", true
	}
	return "", false
}

// Next cycles all -> done -> pending -> all.
func (f DoneFilter) Next() DoneFilter {
	switch f {
	case FilterAll:
		return FilterDone
	case FilterDone:
		return FilterNotDone
	}
	return FilterAll
}

func (f DoneFilter) String() string {
	switch f {
	case FilterDone:
		return "done"
	case FilterNotDone:
		return "pending"
	}
	return "all"
}
