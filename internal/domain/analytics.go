package domain

// CounterEntry is one row of an analytics ranking.
type CounterEntry struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type CategoryClickRequest struct {
	Category string `json:"category" binding:"required"`
}
