package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	httpapp "jwt_auth/internal/app/http"
	"jwt_auth/internal/config"
	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/lib/logger/handlers/slogdiscard"
	"jwt_auth/internal/services/auth"
	"jwt_auth/internal/services/identity"
	httprouters "jwt_auth/internal/transport/http"
	"jwt_auth/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RegisterNewUser(ctx context.Context, email, password string) (models.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockAuthService) ResetEmail(ctx context.Context, email, newEmail, password, newPassword string) (models.User, error) {
	args := m.Called(ctx, email, newEmail, password, newPassword)
	return args.Get(0).(models.User), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, accessToken string) (models.UserOut, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(models.UserOut), args.Error(1)
}

func newTestServer(svc *MockAuthService, resolver *MockResolver) http.Handler {
	log := slogdiscard.NewDiscardLogger()

	server := httpapp.New(log, config.HTTPConfig{Port: "0"}, httprouters.NewRouter(log, svc), resolver)
	server.BuildRouters()

	return server.Handler()
}

func doJSON(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func doForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestSignup(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockAuthService)
		id := uuid.New()

		svc.On("RegisterNewUser", mock.Anything, "a@x.com", "secret1").
			Return(models.User{ID: id, Email: "a@x.com", PasswordHash: "$2a$hash"}, nil).Once()

		rec := doJSON(newTestServer(svc, new(MockResolver)), http.MethodPost, "/signup", `{"email":"a@x.com","password":"secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, id.String(), body["id"])
		assert.Equal(t, "a@x.com", body["email"])
		assert.NotContains(t, body, "password")
		svc.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		cases := map[string]string{
			"bad email":       `{"email":"not-an-email","password":"secret1"}`,
			"short password":  `{"email":"a@x.com","password":"abcd"}`,
			"long password":   fmt.Sprintf(`{"email":"a@x.com","password":%q}`, strings.Repeat("a", 25)),
			"missing email":   `{"password":"secret1"}`,
			"malformed json":  `{"email":`,
			"empty body json": `{}`,
		}

		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				svc := new(MockAuthService)

				rec := doJSON(newTestServer(svc, new(MockResolver)), http.MethodPost, "/signup", body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, response.ErrInvalidRegisterRequest.Error, decodeError(t, rec).Error)
				svc.AssertNotCalled(t, "RegisterNewUser", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("RegisterNewUser", mock.Anything, "a@x.com", "secret1").
			Return(models.User{}, fmt.Errorf("auth.RegisterNewUser: %w", auth.ErrUserExist)).Once()

		rec := doJSON(newTestServer(svc, new(MockResolver)), http.MethodPost, "/signup", `{"email":"a@x.com","password":"secret1"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, response.ErrUserAlreadyExists, decodeError(t, rec))
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("RegisterNewUser", mock.Anything, "a@x.com", "secret1").
			Return(models.User{}, errors.New("db down")).Once()

		rec := doJSON(newTestServer(svc, new(MockResolver)), http.MethodPost, "/signup", `{"email":"a@x.com","password":"secret1"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}

func TestLogin(t *testing.T) {
	pair := &models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}

	t.Run("success", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "a@x.com", "secret1").Return(pair, nil).Once()

		rec := doForm(newTestServer(svc, new(MockResolver)), "/login", url.Values{
			"username":   {"a@x.com"},
			"password":   {"secret1"},
			"grant_type": {"password"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var body models.TokenPair
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, *pair, body)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "a@x.com", "wrong").
			Return(nil, fmt.Errorf("auth.Login: %w", auth.ErrInvalidCredentials)).Once()

		rec := doForm(newTestServer(svc, new(MockResolver)), "/login", url.Values{
			"username": {"a@x.com"},
			"password": {"wrong"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Incorrect email or password", decodeError(t, rec).Details)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := new(MockAuthService)

		rec := doForm(newTestServer(svc, new(MockResolver)), "/login", url.Values{"username": {"a@x.com"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported grant type", func(t *testing.T) {
		svc := new(MockAuthService)

		rec := doForm(newTestServer(svc, new(MockResolver)), "/login", url.Values{
			"username":   {"a@x.com"},
			"password":   {"secret1"},
			"grant_type": {"client_credentials"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "a@x.com", "secret1").Return(nil, errors.New("db down")).Once()

		rec := doForm(newTestServer(svc, new(MockResolver)), "/login", url.Values{
			"username": {"a@x.com"},
			"password": {"secret1"},
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestMe(t *testing.T) {
	user := models.UserOut{ID: uuid.New(), Email: "a@x.com"}

	get := func(h http.Handler, authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec
	}

	t.Run("success", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "good-token").Return(user, nil).Once()

		rec := get(newTestServer(new(MockAuthService), resolver), "Bearer good-token")
		require.Equal(t, http.StatusOK, rec.Code)

		var body models.UserOut
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, user, body)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "good-token").Return(user, nil).Once()

		rec := get(newTestServer(new(MockAuthService), resolver), "bearer good-token")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	for name, header := range map[string]string{
		"missing header": "",
		"basic scheme":   "Basic YTpi",
		"empty token":    "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			resolver := new(MockResolver)

			rec := get(newTestServer(new(MockAuthService), resolver), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Equal(t, response.ErrUnauthenticated, decodeError(t, rec))
			resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		})
	}

	t.Run("rejected token", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "bad-token").
			Return(models.UserOut{}, fmt.Errorf("identity.Resolve: %w", identity.ErrUnauthenticated)).Once()

		rec := get(newTestServer(new(MockAuthService), resolver), "Bearer bad-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("store failure", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "good-token").Return(models.UserOut{}, errors.New("db down")).Once()

		rec := get(newTestServer(new(MockAuthService), resolver), "Bearer good-token")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestResetEmail(t *testing.T) {
	form := url.Values{
		"email":        {"a@x.com"},
		"new_email":    {"b@x.com"},
		"password":     {"secret1"},
		"new_password": {"secret2"},
	}

	t.Run("success", func(t *testing.T) {
		svc := new(MockAuthService)
		id := uuid.New()
		svc.On("ResetEmail", mock.Anything, "a@x.com", "b@x.com", "secret1", "secret2").
			Return(models.User{ID: id, Email: "b@x.com"}, nil).Once()

		rec := doForm(newTestServer(svc, new(MockResolver)), "/reset_email", form)
		require.Equal(t, http.StatusOK, rec.Code)

		var body models.UserOut
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, models.UserOut{ID: id, Email: "b@x.com"}, body)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("ResetEmail", mock.Anything, "a@x.com", "b@x.com", "secret1", "secret2").
			Return(models.User{}, auth.ErrInvalidCredentials).Once()

		rec := doForm(newTestServer(svc, new(MockResolver)), "/reset_email", form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("new email taken", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("ResetEmail", mock.Anything, "a@x.com", "b@x.com", "secret1", "secret2").
			Return(models.User{}, auth.ErrUserExist).Once()

		rec := doForm(newTestServer(svc, new(MockResolver)), "/reset_email", form)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short new password", func(t *testing.T) {
		svc := new(MockAuthService)
		bad := url.Values{}
		for k, v := range form {
			bad[k] = v
		}
		bad.Set("new_password", "abc")

		rec := doForm(newTestServer(svc, new(MockResolver)), "/reset_email", bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "ResetEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDocsRedirect(t *testing.T) {
	h := newTestServer(new(MockAuthService), new(MockResolver))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/docs/index.html", rec.Header().Get("Location"))
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(new(MockAuthService), new(MockResolver))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
