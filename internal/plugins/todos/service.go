package todos

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/taskbox-app/taskbox/internal/apperror"
)

// TodoService defines the business logic contract for todos. Handlers call
// these methods with the authenticated user id from the session guard —
// never with a client-supplied owner.
type TodoService interface {
	List(ctx context.Context, userID string, filter Filter, sortBy SortBy) ([]Todo, error)
	GetByID(ctx context.Context, id, userID string) (*Todo, error)
	Create(ctx context.Context, userID string, req CreateTodoRequest) (*Todo, error)
	Update(ctx context.Context, id, userID string, req UpdateTodoRequest) (*Todo, error)
	Toggle(ctx context.Context, id, userID string) (*Todo, error)

	// Delete returns the deleted todo's prior snapshot for confirmation
	// messaging.
	Delete(ctx context.Context, id, userID string) (*Todo, error)

	Stats(ctx context.Context, userID string) (*Stats, error)
}

// todoService implements TodoService.
type todoService struct {
	repo TodoRepository
}

// NewTodoService creates a new todo service.
func NewTodoService(repo TodoRepository) TodoService {
	return &todoService{repo: repo}
}

// List returns the user's todos filtered and sorted. Priority ordering is a
// deliberate two-phase algorithm: the repository fetches candidate rows in
// a stable base order (created_at descending), then this layer stably
// re-sorts by priority rank. Rank is not a natural store sort key, and the
// stable re-sort preserves the newest-first order within each rank.
func (s *todoService) List(ctx context.Context, userID string, filter Filter, sortBy SortBy) ([]Todo, error) {
	items, err := s.repo.List(ctx, userID, filter, sortBy)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	if sortBy == SortByPriority {
		sortByPriorityRank(items)
	}
	return items, nil
}

// sortByPriorityRank stably re-orders todos high → medium → low. Ties keep
// the base order (most recently created first).
func sortByPriorityRank(items []Todo) {
	sort.SliceStable(items, func(i, j int) bool {
		return priorityRank[items[i].Priority] < priorityRank[items[j].Priority]
	})
}

// GetByID retrieves a single owned todo.
func (s *todoService) GetByID(ctx context.Context, id, userID string) (*Todo, error) {
	return s.wrapStorage(s.repo.FindByID(ctx, id, userID))
}

// Create validates and persists a new todo. The owner is always the
// authenticated user, regardless of anything in the request body.
func (s *todoService) Create(ctx context.Context, userID string, req CreateTodoRequest) (*Todo, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.NewBadRequest("Title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.NewBadRequest("title must be 200 characters or less")
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return nil, apperror.NewBadRequest("priority must be low, medium or high")
	}

	todo := &Todo{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		Completed:   false,
		Priority:    priority,
		DueDate:     req.DueDate,
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, apperror.NewInternal(err)
	}

	// Re-read so the caller sees the store-assigned timestamps.
	return s.wrapStorage(s.repo.FindByID(ctx, todo.ID, userID))
}

// Update applies a partial update to an owned todo. Changed fields are
// re-validated against the same constraints as creation.
func (s *todoService) Update(ctx context.Context, id, userID string, req UpdateTodoRequest) (*Todo, error) {
	todo, err := s.wrapStorage(s.repo.FindByID(ctx, id, userID))
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.NewBadRequest("Title is required")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.NewBadRequest("title must be 200 characters or less")
		}
		todo.Title = title
	}
	if req.Description != nil {
		todo.Description = req.Description
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	if req.Priority != nil {
		if !ValidPriority(*req.Priority) {
			return nil, apperror.NewBadRequest("priority must be low, medium or high")
		}
		todo.Priority = *req.Priority
	}
	if req.DueDate != nil {
		todo.DueDate = req.DueDate
	}

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, s.storageErr(err)
	}
	return s.wrapStorage(s.repo.FindByID(ctx, id, userID))
}

// Toggle flips the completion flag of an owned todo and returns the new
// state. Two toggles in a row restore the original value.
func (s *todoService) Toggle(ctx context.Context, id, userID string) (*Todo, error) {
	if err := s.repo.Toggle(ctx, id, userID); err != nil {
		return nil, s.storageErr(err)
	}
	return s.wrapStorage(s.repo.FindByID(ctx, id, userID))
}

// Delete removes an owned todo and returns its prior snapshot.
func (s *todoService) Delete(ctx context.Context, id, userID string) (*Todo, error) {
	todo, err := s.wrapStorage(s.repo.FindByID(ctx, id, userID))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return nil, s.storageErr(err)
	}
	return todo, nil
}

// Stats computes the aggregate counts for a user. The three stored counts
// are independent read-only queries, so they run concurrently; active is
// derived from the other two instead of a fourth query.
func (s *todoService) Stats(ctx context.Context, userID string) (*Stats, error) {
	var total, completed, highPriority int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.CountAll(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.repo.CountCompleted(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		highPriority, err = s.repo.CountHighPriorityActive(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &Stats{
		Total:        total,
		Completed:    completed,
		Active:       total - completed,
		HighPriority: highPriority,
	}, nil
}

// wrapStorage passes through AppErrors (not-found keeps its 404) and wraps
// anything else as an internal storage failure.
func (s *todoService) wrapStorage(todo *Todo, err error) (*Todo, error) {
	if err != nil {
		return nil, s.storageErr(err)
	}
	return todo, nil
}

// storageErr classifies a repository error: domain errors pass through,
// infrastructure errors become generic 500s with the cause preserved for
// logging.
func (s *todoService) storageErr(err error) error {
	var appErr *apperror.AppError
	if ok := errorAs(err, &appErr); ok {
		return appErr
	}
	return apperror.NewInternal(err)
}

// errorAs is a thin wrapper around errors.As for AppError.
func errorAs(err error, target **apperror.AppError) bool {
	if err == nil {
		return false
	}
	if ae, ok := err.(*apperror.AppError); ok {
		*target = ae
		return true
	}
	return false
}
