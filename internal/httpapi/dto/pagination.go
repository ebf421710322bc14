package dto

// Page is the common paginated envelope.
type Page struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  any   `json:"results"`
}

func NewPage(results any, count int64, page, pageSize int) *Page {
	return &Page{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  results,
	}
}
