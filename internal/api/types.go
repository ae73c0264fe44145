package api

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"task-tracker/internal/config"
	"task-tracker/internal/domain"
	"task-tracker/internal/validation"
)

// NonFieldErrors is the key for errors that do not belong to one field.
const NonFieldErrors = "non_field_errors"

// TaskResponse is the wire form of a task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	Owner       int64      `json:"owner"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsOverdue   bool       `json:"is_overdue"`
}

// PageResponse is the list envelope.
type PageResponse struct {
	Count    int64          `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []TaskResponse `json:"results"`
}

// RecalculateResponse reports how many tasks a sweep newly flagged.
type RecalculateResponse struct {
	Updated int64 `json:"updated"`
}

func toTaskResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
		Owner:       t.OwnerID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		IsOverdue:   t.IsOverdue,
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		resp.DueDate = &due
	}
	return resp
}

// decodeTaskInput reads a JSON object body into a TaskInput. Keys outside
// the writable allow-list are dropped without complaint.
func (s *Server) decodeTaskInput(body []byte, op domain.Operation) (domain.TaskInput, error) {
	var in domain.TaskInput

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return in, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		ve := validation.NewValidationError()
		ve.AddError(NonFieldErrors, validation.ErrorTypeInvalidFormat, "Invalid data. Expected a JSON object.", nil)
		return in, ve
	}

	ve := validation.NewValidationError()
	for key, value := range raw {
		if !domain.IsWritable(op, key) {
			continue
		}

		switch key {
		case validation.FieldTitle:
			if str, ok := decodeString(ve, key, value); ok {
				in.Title = &str
			}
		case "description":
			if str, ok := decodeString(ve, key, value); ok {
				in.Description = &str
			}
		case validation.FieldStatus:
			if str, ok := decodeString(ve, key, value); ok {
				status := domain.Status(str)
				in.Status = &status
			}
		case validation.FieldDueDate:
			if isNull(value) {
				in.DueDate = domain.OptionalTime{Set: true}
				continue
			}
			str, ok := decodeString(ve, key, value)
			if !ok {
				continue
			}
			due, err := s.validator.ParseDueDate(key, str)
			if err != nil {
				ve.Merge(err)
				continue
			}
			in.DueDate = domain.OptionalTime{Set: true, Value: &due}
		}
	}

	if ve.HasErrors() {
		return domain.TaskInput{}, ve
	}
	return in, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func decodeString(ve *validation.ValidationError, field string, value json.RawMessage) (string, bool) {
	if isNull(value) {
		ve.AddError(field, validation.ErrorTypeInvalidValue, "This field may not be null.", nil)
		return "", false
	}
	var str string
	if err := json.Unmarshal(value, &str); err != nil {
		ve.AddError(field, validation.ErrorTypeInvalidFormat, "Not a valid string.", string(value))
		return "", false
	}
	return str, true
}

// pageRequest reads page and size from the query string. A page that is
// not a positive integer is reported with ok false.
func pageRequest(c *fiber.Ctx, paging config.PaginationConfig) (domain.PageRequest, bool) {
	req := domain.PageRequest{Page: 1, Size: paging.DefaultSize}

	if raw := c.Query("size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			req.Size = min(size, paging.MaxSize)
		}
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return req, false
		}
		req.Page = page
	}
	return req, true
}

// pageLink returns the absolute URL of the current listing at page,
// keeping every other query parameter. Page 1 drops the parameter.
func pageLink(c *fiber.Ctx, page int) *string {
	values := url.Values{}
	for k, v := range c.Queries() {
		values.Set(k, v)
	}
	if page <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(page))
	}

	link := c.BaseURL() + c.Path()
	if encoded := values.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return &link
}

func toPageResponse(c *fiber.Ctx, page *domain.TaskPage) PageResponse {
	resp := PageResponse{
		Count:   page.Count,
		Results: make([]TaskResponse, 0, len(page.Results)),
	}
	for _, t := range page.Results {
		resp.Results = append(resp.Results, toTaskResponse(t))
	}
	if page.HasNext() {
		resp.Next = pageLink(c, page.Page+1)
	}
	if page.HasPrevious() {
		resp.Previous = pageLink(c, page.Page-1)
	}
	return resp
}
