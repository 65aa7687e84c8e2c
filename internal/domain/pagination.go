package domain

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	TotalRecords int64 `json:"total_records"`
	TotalPages   int   `json:"total_pages"`
	HasNext      bool  `json:"has_next"`
	HasPrevious  bool  `json:"has_previous"`
}

func NewPageMeta(page, pageSize int, totalRecords int64) PageMeta {
	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))
	return PageMeta{
		Page:         page,
		PageSize:     pageSize,
		TotalRecords: totalRecords,
		TotalPages:   totalPages,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1 && totalRecords > 0,
	}
}
