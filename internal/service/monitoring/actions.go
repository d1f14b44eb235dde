package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	apperrors "github.com/privacyops/gdpr-compliance-backend/internal/domain/errors"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

// CreateActionItemInput carries the caller-supplied fields of a new
// remediation task.
type CreateActionItemInput struct {
	Title            string     `json:"title" validate:"required"`
	Description      string     `json:"description" validate:"required"`
	Priority         string     `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Category         string     `json:"category"`
	AssignedTo       string     `json:"assigned_to"`
	DueDate          *time.Time `json:"due_date"`
	RelatedCheckType string     `json:"related_check_type"`
}

// ActionItemFilters narrows GetActionItems. The zero value returns open items
// newest-first.
type ActionItemFilters struct {
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	AssignedTo string `json:"assigned_to"`
	Limit      int    `json:"limit"`
}

// CreateActionItem validates the input and persists a new open action item.
// Validation failures are returned before any persistence attempt.
func (s *Service) CreateActionItem(ctx context.Context, input CreateActionItemInput) (*compliance.ActionItem, error) {
	if err := s.validate.Struct(input); err != nil {
		appErr := apperrors.NewValidationError("INVALID_ACTION_ITEM", "title and description are required")
		if verrs, ok := err.(validator.ValidationErrors); ok {
			details := make(map[string]interface{}, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			appErr = appErr.WithDetails(details)
		}
		return nil, appErr.WithCause(err)
	}

	item := compliance.NewActionItem(input.Title, input.Description,
		compliance.Priority(input.Priority), s.clock().UTC())
	item.Category = input.Category
	item.AssignedTo = input.AssignedTo
	item.DueDate = input.DueDate
	item.RelatedCheckType = compliance.CheckType(input.RelatedCheckType)

	doc, err := toDocument(item)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode action item").WithCause(err)
	}
	if _, err := s.store.Add(ctx, documentstore.CollectionActionItems, doc); err != nil {
		return nil, apperrors.NewInternalError("failed to persist action item").WithCause(err)
	}

	return item, nil
}

// UpdateActionItemStatus moves an existing item to a new lifecycle status.
// Items are never hard-deleted; closing one is the terminal transition.
func (s *Service) UpdateActionItemStatus(ctx context.Context, id string, status compliance.ActionItemStatus) error {
	switch status {
	case compliance.ActionItemOpen, compliance.ActionItemInProgress, compliance.ActionItemClosed:
	default:
		return apperrors.NewValidationError("INVALID_ACTION_ITEM_STATUS",
			"status must be open, in_progress, or closed")
	}

	if _, err := s.store.Get(ctx, documentstore.CollectionActionItems, id); err != nil {
		if errors.Is(err, documentstore.ErrNotFound) {
			return apperrors.ErrActionItemNotFound
		}
		return apperrors.NewInternalError("failed to load action item").WithCause(err)
	}

	partial := documentstore.Document{
		"status":     string(status),
		"updated_at": s.clock().UTC(),
	}
	if err := s.store.Update(ctx, documentstore.CollectionActionItems, id, partial); err != nil {
		return apperrors.NewInternalError("failed to update action item").WithCause(err)
	}
	return nil
}

// GetActionItems lists action items newest-first. Status defaults to open;
// priority, assignee, and limit filters are optional.
func (s *Service) GetActionItems(ctx context.Context, filters ActionItemFilters) ([]compliance.ActionItem, error) {
	status := filters.Status
	if status == "" {
		status = string(compliance.ActionItemOpen)
	}

	query := []documentstore.Filter{documentstore.Eq("status", status)}
	if filters.Priority != "" {
		query = append(query, documentstore.Eq("priority", filters.Priority))
	}
	if filters.AssignedTo != "" {
		query = append(query, documentstore.Eq("assigned_to", filters.AssignedTo))
	}

	docs, err := s.store.Query(ctx, documentstore.CollectionActionItems, documentstore.QueryOptions{
		Filters: query,
		OrderBy: &documentstore.Sort{Field: "created_at", Desc: true},
		Limit:   filters.Limit,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list action items").WithCause(err)
	}

	items := make([]compliance.ActionItem, 0, len(docs))
	for _, doc := range docs {
		var item compliance.ActionItem
		if err := compliance.DecodeDocument(doc, &item); err != nil {
			return nil, apperrors.NewInternalError("failed to decode action item").WithCause(err)
		}
		items = append(items, item)
	}
	return items, nil
}
