package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"eduflix/backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestListUsersHandler_PaginationAndFilters(t *testing.T) {
	smock := setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAdmin)
	router.GET("/users", ListUsersHandler)

	// 5 registros no total pós-filtro; page=2 limit=2 → 2 itens, pages=3.
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	rows := sqlmock.NewRows([]string{"id", "name", "email", "role", "avatar_url"}).
		AddRow(uuid.New(), "João Costa", "joao@example.com", "aluno", "").
		AddRow(uuid.New(), "Joana Prado", "joana@example.com", "aluno", "")
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE (name ILIKE $1 OR email ILIKE $2) AND role = $3 ORDER BY name asc`)).
		WillReturnRows(rows)

	req, _ := http.NewRequest(http.MethodGet, "/users?page=2&limit=2&search=jo&role=aluno", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())

	var response UserListResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Len(t, response.Data, 2)
	assert.Equal(t, int64(5), response.Total)
	assert.Equal(t, int64(3), response.Pages)
	assert.Equal(t, 2, response.CurrentPage)
	assert.NotContains(t, rr.Body.String(), "password")

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestListUsersHandler_DefaultsOnInvalidParams(t *testing.T) {
	smock := setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAluno)
	router.GET("/users", ListUsersHandler)

	smock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" ORDER BY name asc`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// page=0 e limit=-3 caem nos defaults (1, 10).
	req, _ := http.NewRequest(http.MethodGet, "/users?page=0&limit=-3", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var response UserListResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, 1, response.CurrentPage)
	assert.Equal(t, int64(0), response.Pages)
	assert.Empty(t, response.Data)

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestGetUserHandler_NotFound(t *testing.T) {
	smock := setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAluno)
	router.GET("/users/:id", GetUserHandler)

	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req, _ := http.NewRequest(http.MethodGet, "/users/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestGetUserHandler_InvalidID(t *testing.T) {
	setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAluno)
	router.GET("/users/:id", GetUserHandler)

	req, _ := http.NewRequest(http.MethodGet, "/users/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func putJSON(router http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	jsonPayload, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPut, path, bytes.NewBuffer(jsonPayload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestUpdateUserHandler_ForbiddenForOtherUser(t *testing.T) {
	setupTestDB(t)
	actingID := uuid.New()
	router := getRouterWithAuthenticatedContext(actingID, models.RoleAluno)
	router.PUT("/users/:id", UpdateUserHandler)

	name := "New Name"
	rr := putJSON(router, "/users/"+uuid.NewString(), UpdateUserPayload{Name: &name})

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUpdateUserHandler_RoleChangeRequiresAdmin(t *testing.T) {
	setupTestDB(t)
	actingID := uuid.New()
	router := getRouterWithAuthenticatedContext(actingID, models.RoleAluno)
	router.PUT("/users/:id", UpdateUserHandler)

	role := models.RoleAdmin
	// Alvo é o próprio usuário, mas aluno não pode promover a si mesmo.
	rr := putJSON(router, "/users/"+actingID.String(), UpdateUserPayload{Role: &role})

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUpdateUserHandler_EmailConflict(t *testing.T) {
	smock := setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAdmin)
	router.PUT("/users/:id", UpdateUserHandler)

	targetID := uuid.New()
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow(targetID, "Target User", "target@example.com", "aluno"))

	// O e-mail novo já pertence a outro id.
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1 AND id <> $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(uuid.New(), "other@example.com"))

	email := "other@example.com"
	rr := putJSON(router, "/users/"+targetID.String(), UpdateUserPayload{Email: &email})

	assert.Equal(t, http.StatusConflict, rr.Code)
	var errorResponse map[string]string
	json.Unmarshal(rr.Body.Bytes(), &errorResponse)
	assert.Equal(t, "Email already in use", errorResponse["error"])

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestUpdateUserHandler_SameEmailNoConflict(t *testing.T) {
	smock := setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAdmin)
	router.PUT("/users/:id", UpdateUserHandler)

	targetID := uuid.New()
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow(targetID, "Target User", "same@example.com", "aluno"))

	// Mesmo e-mail do próprio registro: nenhuma checagem de conflito.
	smock.ExpectBegin()
	smock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	smock.ExpectCommit()

	email := "same@example.com"
	name := "Renamed User"
	rr := putJSON(router, "/users/"+targetID.String(), UpdateUserPayload{Email: &email, Name: &name})

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())
	var response UserResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "Renamed User", response.Name)

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestUpdateUserHandler_NotFound(t *testing.T) {
	smock := setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAdmin)
	router.PUT("/users/:id", UpdateUserHandler)

	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	name := "Ghost"
	rr := putJSON(router, "/users/"+uuid.NewString(), UpdateUserPayload{Name: &name})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestDeleteUserHandler_Success(t *testing.T) {
	smock := setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAdmin)
	router.DELETE("/users/:id", DeleteUserHandler)

	smock.ExpectBegin()
	smock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	smock.ExpectCommit()

	req, _ := http.NewRequest(http.MethodDelete, "/users/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "User deleted successfully")
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestDeleteUserHandler_NotFound(t *testing.T) {
	smock := setupTestDB(t)
	router := getRouterWithAuthenticatedContext(uuid.New(), models.RoleAdmin)
	router.DELETE("/users/:id", DeleteUserHandler)

	smock.ExpectBegin()
	smock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	smock.ExpectCommit()

	req, _ := http.NewRequest(http.MethodDelete, "/users/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, smock.ExpectationsWereMet())
}
