package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcircle/internal/delivery/http/helpers"
	"eventcircle/internal/domain"
)

// fakeTokens signs a scope by prefixing it.
type fakeTokens struct {
	issueErr error
}

func (f *fakeTokens) Issue(scope string, expiry time.Duration) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return "signed:" + scope, nil
}

func (f *fakeTokens) Verify(token string) (string, error) {
	scope, ok := strings.CutPrefix(token, "signed:")
	if !ok {
		return "", errors.New("bad signature")
	}
	return scope, nil
}

// fakeViewerService returns one user per scope.
type fakeViewerService struct {
	byScope map[string]*domain.User
	err     error
	scopes  []string
}

func (f *fakeViewerService) Current(ctx context.Context, scope string) (*domain.User, error) {
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byScope[scope]; ok {
		return u, nil
	}
	u := domain.NewUser(1, "John Doe", "john@example.com")
	return &u, nil
}

func (f *fakeViewerService) Switch(ctx context.Context, scope string, userID int64) (*domain.User, error) {
	return nil, errors.New("not used")
}

func TestResolveViewer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	jane := domain.NewUser(2, "Jane Doe", "jane@example.com")

	tests := []struct {
		name       string
		token      string
		tokens     *fakeTokens
		viewers    *fakeViewerService
		wantStatus int
		wantCode   string
		wantScope  string
		wantUserID int64
		wantNewTok bool
	}{
		{
			name:       "valid token keeps scope",
			token:      "signed:scope-1",
			tokens:     &fakeTokens{},
			viewers:    &fakeViewerService{byScope: map[string]*domain.User{"scope-1": &jane}},
			wantStatus: http.StatusOK,
			wantScope:  "scope-1",
			wantUserID: 2,
		},
		{
			name:       "missing token starts a scope",
			tokens:     &fakeTokens{},
			viewers:    &fakeViewerService{},
			wantStatus: http.StatusOK,
			wantUserID: 1,
			wantNewTok: true,
		},
		{
			name:       "tampered token starts a scope",
			token:      "forged",
			tokens:     &fakeTokens{},
			viewers:    &fakeViewerService{},
			wantStatus: http.StatusOK,
			wantUserID: 1,
			wantNewTok: true,
		},
		{
			name:       "store unavailable",
			token:      "signed:scope-1",
			tokens:     &fakeTokens{},
			viewers:    &fakeViewerService{err: domain.MarkTransient(errors.New("redis down"))},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   helpers.ErrCodeUnavailable,
		},
		{
			name:       "token issue failure",
			tokens:     &fakeTokens{issueErr: errors.New("no key")},
			viewers:    &fakeViewerService{},
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser *domain.User
			var gotScope string
			next := func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = ViewerFromContext(r.Context())
				gotScope, _ = ViewerScopeFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}
			handler := ResolveViewer(tt.tokens, tt.viewers, time.Hour, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "/viewer", nil)
			if tt.token != "" {
				req.Header.Set(ViewerTokenHeader, tt.token)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				var resp helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.Nil(t, gotUser)
				return
			}

			require.NotNil(t, gotUser)
			assert.Equal(t, tt.wantUserID, gotUser.ID)
			echoed := rr.Header().Get(ViewerTokenHeader)
			if tt.wantNewTok {
				assert.NotEmpty(t, gotScope)
				assert.Equal(t, "signed:"+gotScope, echoed)
				assert.NotEqual(t, tt.token, echoed)
			} else {
				assert.Equal(t, tt.wantScope, gotScope)
				assert.Equal(t, tt.token, echoed)
			}
		})
	}
}

func TestViewerFromContext_Empty(t *testing.T) {
	_, ok := ViewerFromContext(context.Background())
	assert.False(t, ok)
	_, ok = ViewerScopeFromContext(context.Background())
	assert.False(t, ok)
}
