package api

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100,lowercase"`
	Description string `json:"description" validate:"max=500"`
}

type CategoryResponse struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}
