package controller

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/config"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	apperrors "github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
	"github.com/virginiacakes/storefront-backend/pkg/mailer"
)

const testJWTSecret = "test-secret"

func setupAuthControllerTest(t *testing.T) (*controllerFixture, *mailer.Recorder) {
	f := setupControllerTest(t)

	userRepo := repository.NewUserRepository(f.db)
	adminRepo := repository.NewAdminRepository(f.db)
	recorder := mailer.NewRecorder()
	notifier := service.NewNotificationService(recorder, nil, config.EmailConfig{BrandName: "Virginia Cakes"})

	authService := service.NewAuthService(userRepo, adminRepo, nil, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	resetService := service.NewPasswordResetService(repository.NewPasswordResetRepository(f.db), userRepo,
		notifier, "https://virginiacakes.com")

	ctrl := NewAuthController(authService, resetService)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, nil, adminRepo)

	f.router.POST("/register", ctrl.Register)
	f.router.POST("/login", ctrl.Login)
	f.router.POST("/refresh", ctrl.RefreshToken)
	f.router.POST("/forgot-password", ctrl.ForgotPassword)
	f.router.POST("/reset-password", ctrl.ResetPassword)
	f.router.GET("/me", authMiddleware.Authenticate(), ctrl.GetMe)
	return f, recorder
}

func registerBody() gin.H {
	return gin.H{
		"email":    "Ada@Example.com",
		"password": "password123",
		"name":     "Ada Obi",
		"phone":    "08030000000",
	}
}

func TestAuthController_Register_Success(t *testing.T) {
	f, _ := setupAuthControllerTest(t)

	w := f.do(http.MethodPost, "/register", registerBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	response := decodeBody(t, w)
	user := response["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotNil(t, response["tokens"])
}

func TestAuthController_Register_Rejections(t *testing.T) {
	f, _ := setupAuthControllerTest(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/register", registerBody()).Code)

	shortPassword := registerBody()
	shortPassword["email"] = "new@example.com"
	shortPassword["password"] = "short"
	badEmail := registerBody()
	badEmail["email"] = "not-an-email"
	noName := registerBody()
	delete(noName, "name")

	tests := []struct {
		name   string
		body   gin.H
		status int
		code   string
	}{
		{"duplicate email", registerBody(), http.StatusConflict, apperrors.AuthEmailAlreadyExists},
		{"short password", shortPassword, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"bad email", badEmail, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"missing name", noName, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/register", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeBody(t, w)["error"])
		})
	}
}

func TestAuthController_LoginAndMe(t *testing.T) {
	f, _ := setupAuthControllerTest(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/register", registerBody()).Code)

	w := f.do(http.MethodPost, "/login", gin.H{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.AuthInvalidCredentials, decodeBody(t, w)["error"])

	w = f.do(http.MethodPost, "/login", gin.H{"email": "ada@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	tokens := decodeBody(t, w)["tokens"].(map[string]interface{})
	access := tokens["access_token"].(string)
	refresh := tokens["refresh_token"].(string)

	req := newAuthedRequest(http.MethodGet, "/me", access)
	rec := serve(f.router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", me["email"])
	assert.Equal(t, false, me["is_admin"])

	w = f.do(http.MethodPost, "/refresh", gin.H{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, "/refresh", gin.H{"refresh_token": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "access tokens cannot refresh")
}

func TestAuthController_PasswordReset(t *testing.T) {
	f, recorder := setupAuthControllerTest(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/register", registerBody()).Code)

	w := f.do(http.MethodPost, "/forgot-password", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code, "unknown emails look the same")
	assert.Empty(t, recorder.Messages())

	w = f.do(http.MethodPost, "/forgot-password", gin.H{"email": "ada@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	msgs := recorder.Messages()
	require.Len(t, msgs, 1)

	_, token, found := strings.Cut(msgs[0].Text+msgs[0].HTML, "token=")
	require.True(t, found)
	token = token[:64]

	w = f.do(http.MethodPost, "/reset-password", gin.H{"token": token, "new_password": "new-password-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodPost, "/reset-password", gin.H{"token": token, "new_password": "new-password-2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuthResetTokenInvalid, decodeBody(t, w)["error"])

	w = f.do(http.MethodPost, "/login", gin.H{"email": "ada@example.com", "password": "new-password-1"})
	assert.Equal(t, http.StatusOK, w.Code)
}
