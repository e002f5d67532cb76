package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalogapi/internal/apperror"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/service"
	serviceMocks "catalogapi/internal/service/mocks"
)

func jsonBody(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newJSONRequest(method, target string, v any) *http.Request {
	req := httptest.NewRequest(method, target, jsonBody(v))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/register", Register(mockSvc))

	t.Run("success", func(t *testing.T) {
		in := model.Registration{Username: "alice", Password: "p1", Email: "a@x.com"}
		mockSvc.On("Register", mock.Anything, in).
			Return(&model.TokenPair{Access: "a1", Refresh: "r1", AccountID: 1}, nil).Once()

		resp, _ := app.Test(newJSONRequest(http.MethodPost, "/auth/register", in))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, map[string]any{"access": "a1", "refresh": "r1"}, body)
		mockSvc.AssertExpectations(t)
	})

	t.Run("duplicate", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: alice", apperror.ErrDuplicateAccount)).Once()

		resp, _ := app.Test(newJSONRequest(http.MethodPost, "/auth/register", model.Registration{Username: "alice", Password: "p1"}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "DUPLICATE_ACCOUNT", decodeError(t, resp).Error.Code)
	})

	t.Run("validation error carries fields", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).
			Return(nil, apperror.Invalid("email", "must be a valid email address")).Once()

		resp, _ := app.Test(newJSONRequest(http.MethodPost, "/auth/register", model.Registration{Username: "bob", Password: "p", Email: "x"}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, "must be a valid email address", body.Error.Fields["email"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})
}

func TestLogin(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/login", Login(mockSvc))

	mockSvc.On("Login", mock.Anything, model.Credentials{Username: "alice", Password: "wrong"}).
		Return(nil, apperror.ErrInvalidCredentials).Once()

	resp, _ := app.Test(newJSONRequest(http.MethodPost, "/auth/login", model.Credentials{Username: "alice", Password: "wrong"}))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp).Error.Code)
	mockSvc.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Post("/auth/logout", middleware.RequireAuth(mockSvc), Logout(mockSvc))

	t.Run("first logout succeeds", func(t *testing.T) {
		mockSvc.On("Authenticate", mock.Anything, "tok").Return(int64(1), nil).Once()
		mockSvc.On("Logout", mock.Anything, "tok").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body messageResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Message)
	})

	t.Run("revoked token is rejected by the guard", func(t *testing.T) {
		mockSvc.On("Authenticate", mock.Anything, "tok").
			Return(int64(0), fmt.Errorf("%w: token revoked", apperror.ErrUnauthenticated)).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))
		assert.Equal(t, "UNAUTHENTICATED", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestChangePassword(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/changepassword", func(c *fiber.Ctx) error {
		c.Locals(middleware.AccessTokenLocalKey, "tok")
		return c.Next()
	}, ChangePassword(mockSvc))

	in := model.PasswordChange{OldPassword: "nope", NewPassword: "new"}
	mockSvc.On("ChangePassword", mock.Anything, "tok", in).Return(apperror.ErrInvalidCredentials).Once()

	resp, _ := app.Test(newJSONRequest(http.MethodPost, "/auth/changepassword", in))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp).Error.Code)
	mockSvc.AssertExpectations(t)
}

func TestListRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockCatalogService[model.Patron])
	app := fiber.New()
	app.Get("/booklovers", ListRecords[model.Patron](mockSvc))

	t.Run("success", func(t *testing.T) {
		next := 2
		page := &query.Page[model.Patron]{
			Count:    3,
			Page:     1,
			PageSize: 2,
			Next:     &next,
			Results:  []model.Patron{{ID: 1, FirstName: "Jane"}, {ID: 2, FirstName: "Jane"}},
		}
		mockSvc.On("List", mock.Anything, query.Params{"first_name": "Jane", "birthday": "1990-01-01", "pagesize": "2"}).
			Return(page, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/booklovers?first_name=Jane&birthday=1990-01-01&pagesize=2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(3), body["count"])
		assert.Equal(t, float64(2), body["next"])
		assert.Nil(t, body["previous"])
		assert.Len(t, body["results"], 2)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed filter", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, query.Params{"birthday": "yesterday"}).
			Return(nil, apperror.Invalid("birthday", "must be a date in YYYY-MM-DD format")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/booklovers?birthday=yesterday", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Fields, "birthday")
	})

	t.Run("store unavailable", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, query.Params{}).
			Return(nil, apperror.Unavailable(errors.New("db down"))).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/booklovers", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestGetRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockCatalogService[model.Region])
	app := fiber.New()
	app.Get("/regions/:id", GetRecord[model.Region](mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(5)).Return(&model.Region{ID: 5, Code: "N", Name: "North"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/regions/5", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.Region
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "North", result.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(6)).Return(nil, fmt.Errorf("region 6: %w", apperror.ErrNotFound)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/regions/6", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/regions/abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("unexpected error is not leaked", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(7)).Return(nil, sql.ErrConnDone).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/regions/7", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "sql")
	})

	mockSvc.AssertExpectations(t)
}

func TestCreateRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockCatalogService[model.Book])
	app := fiber.New()
	app.Post("/books", CreateRecord[model.Book](mockSvc))

	in := model.Book{Title: "Dune", Volumes: []model.Volume{{VolumeNumber: 1, NumberOfPages: 300}}}
	mockSvc.On("Create", mock.Anything, &in).
		Return(&model.Book{ID: 1, Title: "Dune", Volumes: []model.Volume{{ID: 10, VolumeNumber: 1, NumberOfPages: 300}}}, nil).Once()

	resp, _ := app.Test(newJSONRequest(http.MethodPost, "/books", in))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(1), result["id_book"])
	require.Len(t, result["volumes"], 1)
	mockSvc.AssertExpectations(t)
}

func TestUpdateRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockCatalogService[model.Publisher])
	app := fiber.New()
	app.Put("/publishers/:id", UpdateRecord[model.Publisher](mockSvc))

	mockSvc.On("Update", mock.Anything, int64(3), &model.Publisher{Name: "Acme", RegionID: 2}).
		Return(&model.Publisher{ID: 3, Name: "Acme", RegionID: 2}, nil).Once()

	resp, _ := app.Test(newJSONRequest(http.MethodPut, "/publishers/3", map[string]any{"name": "Acme", "region": 2}))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestDeleteRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockCatalogService[model.Region])
	app := fiber.New()
	app.Delete("/regions/:id", DeleteRecord[model.Region](mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, int64(1)).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/regions/1", nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, int64(2)).Return(apperror.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/regions/2", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func imageForm(t *testing.T, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="cover.png"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	part.Write([]byte("\x89PNG"))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadCover(t *testing.T) {
	mockSvc := new(serviceMocks.MockBookService)
	app := fiber.New()
	app.Post("/books/:id/cover", UploadCover(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := imageForm(t, "image/png")
		key := "covers/x.png"
		mockSvc.On("UploadCover", mock.Anything, int64(1), mock.MatchedBy(func(in service.CoverUpload) bool {
			return in.Filename == "cover.png" && in.ContentType == "image/png" && in.Size == 4
		})).Return(&model.Book{ID: 1, Title: "Dune", CoverPhoto: &key}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/books/1/cover", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.Book
		json.NewDecoder(resp.Body).Decode(&result)
		require.NotNil(t, result.CoverPhoto)
		assert.Equal(t, key, *result.CoverPhoto)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/books/1/cover", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		body, ct := imageForm(t, "text/plain")
		mockSvc.On("UploadCover", mock.Anything, int64(2), mock.Anything).
			Return(nil, apperror.Invalid("file", "must be an image")).Once()

		req := httptest.NewRequest(http.MethodPost, "/books/2/cover", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "must be an image", decodeError(t, resp).Error.Fields["file"])
	})

	mockSvc.AssertExpectations(t)
}

func TestGetCover(t *testing.T) {
	mockSvc := new(serviceMocks.MockBookService)
	app := fiber.New()
	app.Get("/books/:id/cover", GetCover(mockSvc))

	mockSvc.On("CoverURL", mock.Anything, int64(1)).Return("http://minio.local/covers/x.png?X-Amz-Signature=abc", nil).Once()
	mockSvc.On("CoverURL", mock.Anything, int64(2)).Return("", apperror.ErrNotFound).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/books/1/cover", nil))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "http://minio.local/covers/x.png?X-Amz-Signature=abc", resp.Header.Get(fiber.HeaderLocation))

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/books/2/cover", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func newTestServices() (Services, *serviceMocks.MockAuthService, *serviceMocks.MockCatalogService[model.Region]) {
	auth := new(serviceMocks.MockAuthService)
	regions := new(serviceMocks.MockCatalogService[model.Region])
	return Services{
		Auth:       auth,
		Regions:    regions,
		Patrons:    new(serviceMocks.MockCatalogService[model.Patron]),
		Publishers: new(serviceMocks.MockCatalogService[model.Publisher]),
		Books:      new(serviceMocks.MockBookService),
	}, auth, regions
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	app.Use(middleware.RequestID())

	svcs, auth, regions := newTestServices()
	RegisterRoutes(app, nil, svcs)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// health only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("listing is public", func(t *testing.T) {
		regions.On("List", mock.Anything, query.Params{"ordering": "asc"}).
			Return(&query.Page[model.Region]{Page: 1, PageSize: 100, Results: []model.Region{}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/regions?ordering=asc", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("detail requires a token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/regions/1", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHENTICATED", decodeError(t, resp).Error.Code)
		regions.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("detail with a valid token", func(t *testing.T) {
		auth.On("Authenticate", mock.Anything, "good").Return(int64(9), nil).Once()
		regions.On("Get", mock.Anything, int64(1)).Return(&model.Region{ID: 1, Code: "N", Name: "North"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/regions/1", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer good")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	auth.AssertExpectations(t)
	regions.AssertExpectations(t)
}
