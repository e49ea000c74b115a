package prompts_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/outreach/internal/prompts"
	"github.com/JaimeStill/outreach/pkg/pagination"
	"github.com/JaimeStill/outreach/pkg/routes"
)

// fakeSystem keeps prompts in memory. Only one prompt per stage may be active.
type fakeSystem struct {
	byID     map[uuid.UUID]*prompts.Prompt
	lastPage pagination.PageRequest
	lastFilt prompts.Filters
}

func newFake(ps ...prompts.Prompt) *fakeSystem {
	f := &fakeSystem{byID: map[uuid.UUID]*prompts.Prompt{}}
	for _, p := range ps {
		f.byID[p.ID] = &p
	}
	return f
}

func (f *fakeSystem) Handler() *prompts.Handler {
	return prompts.NewHandler(
		f,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func (f *fakeSystem) List(_ context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
	f.lastPage, f.lastFilt = page, filters
	var out []prompts.Prompt
	for _, p := range f.byID {
		out = append(out, *p)
	}
	res := pagination.NewPageResult(out, len(out), page.Page, page.PageSize)
	return &res, nil
}

func (f *fakeSystem) Find(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, prompts.ErrNotFound
}

func (f *fakeSystem) Create(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	for _, p := range f.byID {
		if p.Name == cmd.Name {
			return nil, prompts.ErrDuplicate
		}
	}
	p := &prompts.Prompt{ID: uuid.New(), Name: cmd.Name, Stage: cmd.Stage, Instructions: cmd.Instructions}
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeSystem) Update(ctx context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
	p, err := f.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name, p.Instructions = cmd.Name, cmd.Instructions
	return p, nil
}

func (f *fakeSystem) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return prompts.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSystem) Activate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	target, err := f.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range f.byID {
		if p.Stage == target.Stage {
			p.Active = false
		}
	}
	target.Active = true
	return target, nil
}

func (f *fakeSystem) Deactivate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	p, err := f.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Active = false
	return p, nil
}

func (f *fakeSystem) Instructions(_ context.Context, stage prompts.Stage) (string, error) {
	for _, p := range f.byID {
		if p.Stage == stage && p.Active {
			return p.Instructions, nil
		}
	}
	return prompts.Instructions(stage)
}

func (f *fakeSystem) Spec(_ context.Context, stage prompts.Stage) (string, error) {
	return prompts.Spec(stage)
}

func samplePrompt() prompts.Prompt {
	return prompts.Prompt{
		ID:           uuid.MustParse("3f2b8a64-0d7c-4e15-9a3e-5c6d7e8f9a0b"),
		Name:         "warm-tone",
		Stage:        prompts.StageAnalyze,
		Instructions: "Focus on family and hobbies.",
		Description:  ptr("softer wording"),
	}
}

func do(f *fakeSystem, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, f.Handler().Routes())

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHandlerStageContent(t *testing.T) {
	p := samplePrompt()
	f := newFake(p)

	rec := do(f, "GET", "/prompts/analyze/instructions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	builtin, err := prompts.Instructions(prompts.StageAnalyze)
	require.NoError(t, err)
	assert.Equal(t, builtin, decode[prompts.StageContent](t, rec).Content)

	require.Equal(t, http.StatusOK, do(f, "POST", "/prompts/"+p.ID.String()+"/activate", "").Code)

	rec = do(f, "GET", "/prompts/analyze/instructions", "")
	got := decode[prompts.StageContent](t, rec)
	assert.Equal(t, prompts.StageAnalyze, got.Stage)
	assert.Equal(t, p.Instructions, got.Content)

	rec = do(f, "GET", "/prompts/analyze/spec", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[prompts.StageContent](t, rec).Content)

	assert.Equal(t, http.StatusBadRequest, do(f, "GET", "/prompts/classify/instructions", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(f, "GET", "/prompts/classify/spec", "").Code)
}

func TestHandlerCreate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"created", `{"name":"brief","stage":"analyze","instructions":"Keep it short."}`, http.StatusCreated},
		{"unknown stage", `{"name":"x","stage":"classify","instructions":"y"}`, http.StatusBadRequest},
		{"malformed", `{"name":`, http.StatusBadRequest},
		{"duplicate name", `{"name":"warm-tone","stage":"analyze","instructions":"y"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newFake(samplePrompt()), "POST", "/prompts", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandlerByID(t *testing.T) {
	p := samplePrompt()
	missing := uuid.NewString()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"find", "GET", "/prompts/" + p.ID.String(), "", http.StatusOK},
		{"find missing", "GET", "/prompts/" + missing, "", http.StatusNotFound},
		{"find invalid id", "GET", "/prompts/not-a-uuid", "", http.StatusBadRequest},
		{"update", "PUT", "/prompts/" + p.ID.String(), `{"name":"warmer","stage":"analyze","instructions":"z"}`, http.StatusOK},
		{"update invalid id", "PUT", "/prompts/nope", `{}`, http.StatusBadRequest},
		{"deactivate", "POST", "/prompts/" + p.ID.String() + "/deactivate", "", http.StatusOK},
		{"activate missing", "POST", "/prompts/" + missing + "/activate", "", http.StatusNotFound},
		{"delete", "DELETE", "/prompts/" + p.ID.String(), "", http.StatusNoContent},
		{"delete missing", "DELETE", "/prompts/" + missing, "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newFake(p), tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandlerActivate(t *testing.T) {
	p := samplePrompt()
	other := samplePrompt()
	other.ID, other.Name, other.Active = uuid.New(), "old-tone", true
	f := newFake(p, other)

	rec := do(f, "POST", "/prompts/"+p.ID.String()+"/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[prompts.Prompt](t, rec).Active)
	assert.False(t, f.byID[other.ID].Active, "previous override should be cleared")
}

func TestHandlerListAndSearch(t *testing.T) {
	f := newFake(samplePrompt())

	rec := do(f, "GET", "/prompts?page=2&pageSize=5&stage=analyze&active=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, f.lastPage.Page)
	require.NotNil(t, f.lastFilt.Stage)
	assert.Equal(t, prompts.StageAnalyze, *f.lastFilt.Stage)
	require.NotNil(t, f.lastFilt.Active)
	assert.True(t, *f.lastFilt.Active)

	rec = do(f, "POST", "/prompts/search", `{"page":0,"pageSize":1000,"name":"warm"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.lastPage.Page)
	assert.Equal(t, 100, f.lastPage.PageSize)
	require.NotNil(t, f.lastFilt.Name)
	assert.Equal(t, "warm", *f.lastFilt.Name)

	page := decode[pagination.PageResult[prompts.Prompt]](t, rec)
	assert.Equal(t, 1, page.Total)

	rec = do(f, "GET", "/prompts/stages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []prompts.Stage{prompts.StageAnalyze}, decode[[]prompts.Stage](t, rec))
}
