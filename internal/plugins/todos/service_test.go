package todos

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskbox-app/taskbox/internal/apperror"
)

// mockTodoRepo implements TodoRepository with overridable function fields.
// Unset methods panic so a test immediately surfaces an unexpected call.
type mockTodoRepo struct {
	ListFn                    func(ctx context.Context, userID string, filter Filter, sortBy SortBy) ([]Todo, error)
	FindByIDFn                func(ctx context.Context, id, userID string) (*Todo, error)
	CreateFn                  func(ctx context.Context, todo *Todo) error
	UpdateFn                  func(ctx context.Context, todo *Todo) error
	ToggleFn                  func(ctx context.Context, id, userID string) error
	DeleteFn                  func(ctx context.Context, id, userID string) error
	CountAllFn                func(ctx context.Context, userID string) (int, error)
	CountCompletedFn          func(ctx context.Context, userID string) (int, error)
	CountHighPriorityActiveFn func(ctx context.Context, userID string) (int, error)
}

func (m *mockTodoRepo) List(ctx context.Context, userID string, filter Filter, sortBy SortBy) ([]Todo, error) {
	if m.ListFn == nil {
		panic("unexpected call to List")
	}
	return m.ListFn(ctx, userID, filter, sortBy)
}

func (m *mockTodoRepo) FindByID(ctx context.Context, id, userID string) (*Todo, error) {
	if m.FindByIDFn == nil {
		panic("unexpected call to FindByID")
	}
	return m.FindByIDFn(ctx, id, userID)
}

func (m *mockTodoRepo) Create(ctx context.Context, todo *Todo) error {
	if m.CreateFn == nil {
		panic("unexpected call to Create")
	}
	return m.CreateFn(ctx, todo)
}

func (m *mockTodoRepo) Update(ctx context.Context, todo *Todo) error {
	if m.UpdateFn == nil {
		panic("unexpected call to Update")
	}
	return m.UpdateFn(ctx, todo)
}

func (m *mockTodoRepo) Toggle(ctx context.Context, id, userID string) error {
	if m.ToggleFn == nil {
		panic("unexpected call to Toggle")
	}
	return m.ToggleFn(ctx, id, userID)
}

func (m *mockTodoRepo) Delete(ctx context.Context, id, userID string) error {
	if m.DeleteFn == nil {
		panic("unexpected call to Delete")
	}
	return m.DeleteFn(ctx, id, userID)
}

func (m *mockTodoRepo) CountAll(ctx context.Context, userID string) (int, error) {
	if m.CountAllFn == nil {
		panic("unexpected call to CountAll")
	}
	return m.CountAllFn(ctx, userID)
}

func (m *mockTodoRepo) CountCompleted(ctx context.Context, userID string) (int, error) {
	if m.CountCompletedFn == nil {
		panic("unexpected call to CountCompleted")
	}
	return m.CountCompletedFn(ctx, userID)
}

func (m *mockTodoRepo) CountHighPriorityActive(ctx context.Context, userID string) (int, error) {
	if m.CountHighPriorityActiveFn == nil {
		panic("unexpected call to CountHighPriorityActive")
	}
	return m.CountHighPriorityActiveFn(ctx, userID)
}

// assertAppError fails the test unless err is an AppError with the given code.
func assertAppError(t *testing.T, err error, wantCode int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok, "expected *apperror.AppError, got %T: %v", err, err)
	assert.Equal(t, wantCode, appErr.Code)
	return appErr
}

const testUser = "user-1"

// --- List ---

// Priority sorting is two-phase: the repository hands back rows newest
// first; the service stably re-sorts high before medium before low, so
// within each priority the newest item still comes first.
func TestList_PrioritySort(t *testing.T) {
	base := []Todo{
		{ID: "m-new", Priority: PriorityMedium},
		{ID: "l-new", Priority: PriorityLow},
		{ID: "h-new", Priority: PriorityHigh},
		{ID: "m-old", Priority: PriorityMedium},
		{ID: "h-old", Priority: PriorityHigh},
		{ID: "l-old", Priority: PriorityLow},
	}
	repo := &mockTodoRepo{
		ListFn: func(_ context.Context, userID string, filter Filter, sortBy SortBy) ([]Todo, error) {
			assert.Equal(t, testUser, userID)
			assert.Equal(t, SortByPriority, sortBy)
			return base, nil
		},
	}

	items, err := NewTodoService(repo).List(context.Background(), testUser, FilterAll, SortByPriority)
	require.NoError(t, err)

	var order []string
	for _, item := range items {
		order = append(order, item.ID)
	}
	assert.Equal(t, []string{"h-new", "h-old", "m-new", "m-old", "l-new", "l-old"}, order)
}

func TestList_CreatedAtOrderUntouched(t *testing.T) {
	base := []Todo{
		{ID: "newest", Priority: PriorityLow},
		{ID: "middle", Priority: PriorityHigh},
		{ID: "oldest", Priority: PriorityMedium},
	}
	repo := &mockTodoRepo{
		ListFn: func(_ context.Context, _ string, _ Filter, _ SortBy) ([]Todo, error) {
			return base, nil
		},
	}

	items, err := NewTodoService(repo).List(context.Background(), testUser, FilterAll, SortByCreatedAt)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "newest", items[0].ID)
	assert.Equal(t, "middle", items[1].ID)
	assert.Equal(t, "oldest", items[2].ID)
}

func TestList_FilterPassedThrough(t *testing.T) {
	var gotFilter Filter
	repo := &mockTodoRepo{
		ListFn: func(_ context.Context, _ string, filter Filter, _ SortBy) ([]Todo, error) {
			gotFilter = filter
			return nil, nil
		},
	}

	_, err := NewTodoService(repo).List(context.Background(), testUser, FilterCompleted, SortByCreatedAt)
	require.NoError(t, err)
	assert.Equal(t, FilterCompleted, gotFilter)
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	var created *Todo
	repo := &mockTodoRepo{
		CreateFn: func(_ context.Context, todo *Todo) error {
			created = todo
			return nil
		},
		FindByIDFn: func(_ context.Context, id, userID string) (*Todo, error) {
			require.NotNil(t, created)
			assert.Equal(t, created.ID, id)
			stored := *created
			stored.CreatedAt = time.Now()
			stored.UpdatedAt = stored.CreatedAt
			return &stored, nil
		},
	}

	todo, err := NewTodoService(repo).Create(context.Background(), testUser, CreateTodoRequest{
		Title:    "  Buy milk  ",
		Priority: PriorityHigh,
	})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, PriorityHigh, todo.Priority)
	assert.False(t, todo.Completed)
	assert.NotEmpty(t, todo.ID)
	// Owner comes from the session, never the request body.
	assert.Equal(t, testUser, todo.UserID)
}

func TestCreate_DefaultsPriorityToMedium(t *testing.T) {
	repo := &mockTodoRepo{
		CreateFn: func(_ context.Context, todo *Todo) error { return nil },
		FindByIDFn: func(_ context.Context, id, userID string) (*Todo, error) {
			return &Todo{ID: id, UserID: userID, Priority: PriorityMedium}, nil
		},
	}

	todo, err := NewTodoService(repo).Create(context.Background(), testUser, CreateTodoRequest{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, todo.Priority)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateTodoRequest
	}{
		{"empty title", CreateTodoRequest{}},
		{"whitespace title", CreateTodoRequest{Title: "   "}},
		{"overlong title", CreateTodoRequest{Title: strings.Repeat("a", MaxTitleLength+1)}},
		{"unknown priority", CreateTodoRequest{Title: "x", Priority: "urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTodoService(&mockTodoRepo{}).Create(context.Background(), testUser, tt.req)
			assertAppError(t, err, http.StatusBadRequest)
		})
	}
}

// --- GetByID ---

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockTodoRepo{
		FindByIDFn: func(_ context.Context, _, _ string) (*Todo, error) {
			return nil, apperror.NewNotFound("Todo not found")
		},
	}

	_, err := NewTodoService(repo).GetByID(context.Background(), "todo-1", testUser)
	appErr := assertAppError(t, err, http.StatusNotFound)
	assert.Equal(t, "Todo not found", appErr.Message)
}

// --- Update ---

func TestUpdate_PartialFields(t *testing.T) {
	stored := Todo{
		ID:       "todo-1",
		UserID:   testUser,
		Title:    "Original title",
		Priority: PriorityLow,
	}
	var saved *Todo
	repo := &mockTodoRepo{
		FindByIDFn: func(_ context.Context, id, userID string) (*Todo, error) {
			if saved != nil {
				return saved, nil
			}
			s := stored
			return &s, nil
		},
		UpdateFn: func(_ context.Context, todo *Todo) error {
			saved = todo
			return nil
		},
	}

	completed := true
	todo, err := NewTodoService(repo).Update(context.Background(), "todo-1", testUser, UpdateTodoRequest{
		Completed: &completed,
	})
	require.NoError(t, err)

	// Only the named field changes.
	assert.True(t, todo.Completed)
	assert.Equal(t, "Original title", todo.Title)
	assert.Equal(t, PriorityLow, todo.Priority)
}

func TestUpdate_RejectsInvalidChanges(t *testing.T) {
	repo := &mockTodoRepo{
		FindByIDFn: func(_ context.Context, id, userID string) (*Todo, error) {
			return &Todo{ID: id, UserID: userID, Title: "x"}, nil
		},
	}
	svc := NewTodoService(repo)

	empty := "   "
	_, err := svc.Update(context.Background(), "todo-1", testUser, UpdateTodoRequest{Title: &empty})
	assertAppError(t, err, http.StatusBadRequest)

	bad := "urgent"
	_, err = svc.Update(context.Background(), "todo-1", testUser, UpdateTodoRequest{Priority: &bad})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockTodoRepo{
		FindByIDFn: func(_ context.Context, _, _ string) (*Todo, error) {
			return nil, apperror.NewNotFound("Todo not found")
		},
	}

	title := "new"
	_, err := NewTodoService(repo).Update(context.Background(), "gone", testUser, UpdateTodoRequest{Title: &title})
	assertAppError(t, err, http.StatusNotFound)
}

// --- Toggle ---

func TestToggle_ReturnsNewState(t *testing.T) {
	completed := false
	repo := &mockTodoRepo{
		ToggleFn: func(_ context.Context, id, userID string) error {
			assert.Equal(t, "todo-1", id)
			assert.Equal(t, testUser, userID)
			completed = !completed
			return nil
		},
		FindByIDFn: func(_ context.Context, id, userID string) (*Todo, error) {
			return &Todo{ID: id, UserID: userID, Completed: completed}, nil
		},
	}
	svc := NewTodoService(repo)

	todo, err := svc.Toggle(context.Background(), "todo-1", testUser)
	require.NoError(t, err)
	assert.True(t, todo.Completed)

	// A second toggle restores the original state.
	todo, err = svc.Toggle(context.Background(), "todo-1", testUser)
	require.NoError(t, err)
	assert.False(t, todo.Completed)
}

func TestToggle_NotFound(t *testing.T) {
	repo := &mockTodoRepo{
		ToggleFn: func(_ context.Context, _, _ string) error {
			return apperror.NewNotFound("Todo not found")
		},
	}

	_, err := NewTodoService(repo).Toggle(context.Background(), "gone", testUser)
	assertAppError(t, err, http.StatusNotFound)
}

// --- Delete ---

func TestDelete_ReturnsPriorSnapshot(t *testing.T) {
	deleted := false
	repo := &mockTodoRepo{
		FindByIDFn: func(_ context.Context, id, userID string) (*Todo, error) {
			return &Todo{ID: id, UserID: userID, Title: "Doomed"}, nil
		},
		DeleteFn: func(_ context.Context, id, userID string) error {
			deleted = true
			return nil
		},
	}

	todo, err := NewTodoService(repo).Delete(context.Background(), "todo-1", testUser)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "Doomed", todo.Title)
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockTodoRepo{
		FindByIDFn: func(_ context.Context, _, _ string) (*Todo, error) {
			return nil, apperror.NewNotFound("Todo not found")
		},
	}

	_, err := NewTodoService(repo).Delete(context.Background(), "gone", testUser)
	assertAppError(t, err, http.StatusNotFound)
}

// --- Stats ---

func TestStats(t *testing.T) {
	repo := &mockTodoRepo{
		CountAllFn: func(_ context.Context, userID string) (int, error) {
			assert.Equal(t, testUser, userID)
			return 10, nil
		},
		CountCompletedFn: func(_ context.Context, _ string) (int, error) {
			return 4, nil
		},
		CountHighPriorityActiveFn: func(_ context.Context, _ string) (int, error) {
			return 2, nil
		},
	}

	stats, err := NewTodoService(repo).Stats(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 4, stats.Completed)
	// Active is derived, not queried.
	assert.Equal(t, 6, stats.Active)
	assert.Equal(t, 2, stats.HighPriority)
}

func TestStats_CountFailure(t *testing.T) {
	repo := &mockTodoRepo{
		CountAllFn: func(_ context.Context, _ string) (int, error) {
			return 0, assert.AnError
		},
		CountCompletedFn: func(_ context.Context, _ string) (int, error) {
			return 0, nil
		},
		CountHighPriorityActiveFn: func(_ context.Context, _ string) (int, error) {
			return 0, nil
		},
	}

	_, err := NewTodoService(repo).Stats(context.Background(), testUser)
	assertAppError(t, err, http.StatusInternalServerError)
}
