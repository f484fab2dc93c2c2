package handlers

import (
	"encoding/json"
	"net/http"

	"retail-admin/utils"
)

// ResponseHandler writes the success envelope. Errors go through
// utils.ErrorHandler so both share status/message at the top level.
type ResponseHandler struct{}

// Response is the success envelope.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ListData is the data of a list endpoint.
type ListData struct {
	Items      interface{} `json:"items"`
	TotalCount int         `json:"totalCount"`
}

// PageMeta describes the page that was served.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type pageResponse struct {
	Response
	Meta PageMeta `json:"meta"`
}

func NewResponseHandler() *ResponseHandler {
	return &ResponseHandler{}
}

// JSON marshals payload before touching the writer so a failed encode can
// still become a 500.
func (h *ResponseHandler) JSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		utils.NewErrorHandler().HandleInternalError(w, "Error processing response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

func (h *ResponseHandler) envelope(w http.ResponseWriter, code int, message string, data interface{}) {
	h.JSON(w, code, Response{Status: code, Message: message, Data: data})
}

// Success replies 200 with data.
func (h *ResponseHandler) Success(w http.ResponseWriter, message string, data interface{}) {
	h.envelope(w, http.StatusOK, message, data)
}

// Created replies 201 with the new record.
func (h *ResponseHandler) Created(w http.ResponseWriter, message string, data interface{}) {
	h.envelope(w, http.StatusCreated, message, data)
}

// Paginated replies with data {items, totalCount} and page metadata. A nil
// items value is sent as [].
func (h *ResponseHandler) Paginated(w http.ResponseWriter, message string, items interface{}, page, limit, total int) {
	if items == nil {
		items = []struct{}{}
	}
	meta := PageMeta{Page: page, Limit: limit}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	h.JSON(w, http.StatusOK, pageResponse{
		Response: Response{
			Status:  http.StatusOK,
			Message: message,
			Data:    ListData{Items: items, TotalCount: total},
		},
		Meta: meta,
	})
}
