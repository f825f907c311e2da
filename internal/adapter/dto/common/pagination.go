package common

// ListQuery carries pagination parameters
type ListQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// Normalize applies the default page size
func (q *ListQuery) Normalize() {
	if q.Limit == 0 {
		q.Limit = 50
	}
}
