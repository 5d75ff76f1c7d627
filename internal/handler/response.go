package handler

import "github.com/clinicore/records-api/internal/model"

// Response is the envelope every endpoint returns.
type Response struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Pagination *model.PageMeta `json:"pagination,omitempty"`
}

func NewSuccessResponse(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func NewPagedResponse(data interface{}, total int64, p model.Pagination) Response {
	return Response{
		Success: true,
		Data:    data,
		Pagination: &model.PageMeta{
			Total: total,
			Page:  p.Page,
			Limit: p.Limit,
		},
	}
}

func NewErrorResponse(message string) Response {
	return Response{Success: false, Message: message}
}
