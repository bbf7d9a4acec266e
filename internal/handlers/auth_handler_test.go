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
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	jsonPayload, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonPayload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRegisterHandler_Success(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/register", RegisterHandler)

	// Check de existência: nenhum usuário com o e-mail.
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	smock.ExpectBegin()
	smock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	smock.ExpectCommit()

	rr := postJSON(router, "/register", RegisterPayload{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Password: "secret123",
		Role:     models.RoleProfessor,
	})

	assert.Equal(t, http.StatusCreated, rr.Code, "Response body: %s", rr.Body.String())

	var response struct {
		Message string       `json:"message"`
		User    UserResponse `json:"user"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "maria@example.com", response.User.Email)
	assert.Equal(t, models.RoleProfessor, response.User.Role)
	assert.NotEqual(t, uuid.Nil, response.User.ID)

	// A resposta nunca carrega hash de senha, em nenhum campo.
	assert.NotContains(t, rr.Body.String(), "password")
	assert.NotContains(t, rr.Body.String(), "secret123")

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestRegisterHandler_DefaultsRoleToAluno(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/register", RegisterHandler)

	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	smock.ExpectBegin()
	smock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	smock.ExpectCommit()

	rr := postJSON(router, "/register", RegisterPayload{
		Name:     "Aluno Sem Papel",
		Email:    "aluno@example.com",
		Password: "secret123",
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	var response struct {
		User UserResponse `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, models.RoleAluno, response.User.Role)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestRegisterHandler_InvalidRole(t *testing.T) {
	setupTestDB(t)
	router := gin.New()
	router.POST("/register", RegisterHandler)

	rr := postJSON(router, "/register", map[string]string{
		"name":     "Papel Inválido",
		"email":    "invalid-role@example.com",
		"password": "secret123",
		"role":     "superuser",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/register", RegisterHandler)

	existingID := uuid.New()
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(existingID, "taken@example.com"))

	rr := postJSON(router, "/register", RegisterPayload{
		Name:     "Segundo Registro",
		Email:    "taken@example.com",
		Password: "secret123",
	})

	assert.Equal(t, http.StatusConflict, rr.Code)
	var errorResponse map[string]string
	json.Unmarshal(rr.Body.Bytes(), &errorResponse)
	assert.Equal(t, "Email already in use", errorResponse["error"])
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestLoginHandler_Success(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/login", LoginHandler)

	userPassword := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(userPassword), bcrypt.DefaultCost)
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "avatar_url", "is_totp_enabled", "totp_secret"}).
		AddRow(userID, "Test User", "test@example.com", string(hashedPassword), "aluno", "", false, "")
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(rows)

	rr := postJSON(router, "/login", LoginPayload{Email: "test@example.com", Password: userPassword})

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())
	var response LoginResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.NotEmpty(t, response.AccessToken)
	assert.Equal(t, userID, response.User.ID)
	assert.Equal(t, "test@example.com", response.User.Email)
	assert.NotContains(t, rr.Body.String(), "password")

	assert.NoError(t, smock.ExpectationsWereMet())
}

// Usuário inexistente e senha errada precisam produzir exatamente a mesma
// resposta: mesmo status, mesmo corpo.
func TestLoginHandler_CollapsedUnauthorized(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/login", LoginHandler)

	// Caso 1: e-mail desconhecido.
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	rrUnknown := postJSON(router, "/login", LoginPayload{Email: "nobody@example.com", Password: "whatever1"})

	// Caso 2: e-mail certo, senha errada.
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.DefaultCost)
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "is_totp_enabled"}).
		AddRow(uuid.New(), "Someone", "someone@example.com", string(hashedPassword), "aluno", false)
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(rows)
	rrWrongPass := postJSON(router, "/login", LoginPayload{Email: "someone@example.com", Password: "wrongpassword"})

	assert.Equal(t, http.StatusUnauthorized, rrUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, rrWrongPass.Code)
	assert.JSONEq(t, rrUnknown.Body.String(), rrWrongPass.Body.String(),
		"responses for unknown email and wrong password must be indistinguishable")

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestLoginHandler_2FARequired(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/login", LoginHandler)

	userPassword := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(userPassword), bcrypt.DefaultCost)
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "is_totp_enabled", "totp_secret"}).
		AddRow(userID, "2FA User", "2fa@example.com", string(hashedPassword), "aluno", true, "SOMESECRET")
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(rows)

	rr := postJSON(router, "/login", LoginPayload{Email: "2fa@example.com", Password: userPassword})

	assert.Equal(t, http.StatusOK, rr.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.True(t, response["2fa_required"].(bool))
	assert.Equal(t, userID.String(), response["user_id"])
	assert.NotContains(t, rr.Body.String(), "accessToken")

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestGoogleLoginHandler_ProvisionsNewAluno(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/google-login", GoogleLoginHandler)

	// Conta ainda não existe.
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	smock.ExpectBegin()
	smock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	smock.ExpectCommit()

	rr := postJSON(router, "/google-login", GoogleLoginPayload{
		Name:      "Google User",
		Email:     "google@example.com",
		AvatarURL: "https://lh3.googleusercontent.com/a/photo.jpg",
	})

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())
	var response LoginResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.NotEmpty(t, response.AccessToken)
	assert.Equal(t, models.RoleAluno, response.User.Role)
	assert.Equal(t, "google@example.com", response.User.Email)
	assert.NotContains(t, rr.Body.String(), "password")

	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestGoogleLoginHandler_ExistingAccountKeepsProfile(t *testing.T) {
	smock := setupTestDB(t)
	router := gin.New()
	router.POST("/google-login", GoogleLoginHandler)

	userID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "avatar_url", "is_totp_enabled"}).
		AddRow(userID, "Original Name", "repeat@example.com", "somehash", "professor", "https://cdn.example.com/old.png", false)
	smock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(rows)

	rr := postJSON(router, "/google-login", GoogleLoginPayload{
		Name:      "New Google Name",
		Email:     "repeat@example.com",
		AvatarURL: "https://lh3.googleusercontent.com/a/new.jpg",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	var response LoginResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	// Logins repetidos não sobrescrevem nome nem avatar.
	assert.Equal(t, "Original Name", response.User.Name)
	assert.Equal(t, models.UserRole("professor"), response.User.Role)

	assert.NoError(t, smock.ExpectationsWereMet())
}
