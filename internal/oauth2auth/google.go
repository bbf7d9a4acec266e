package oauth2auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eduflix/backend/internal/auth"
	"eduflix/backend/internal/handlers"
	appConfig "eduflix/backend/pkg/config"
	phxlog "eduflix/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleOAuth2 "golang.org/x/oauth2/google"
	googleAPI "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const googleOAuthStateCookie = "eduflix_google_oauth_state"

// getGoogleOAuthConfig monta a config do fluxo server-side a partir do
// client registrado em GOOGLE_OAUTH_CLIENT_ID/SECRET.
func getGoogleOAuthConfig() (*oauth2.Config, error) {
	if appConfig.Cfg.GoogleOAuthClientID == "" || appConfig.Cfg.GoogleOAuthClientSecret == "" {
		return nil, fmt.Errorf("google OAuth2 client not configured (GOOGLE_OAUTH_CLIENT_ID/GOOGLE_OAUTH_CLIENT_SECRET)")
	}
	if appConfig.Cfg.AppRootURL == "" {
		return nil, fmt.Errorf("APP_ROOT_URL not configured (required for the OAuth2 redirect URI)")
	}

	return &oauth2.Config{
		ClientID:     appConfig.Cfg.GoogleOAuthClientID,
		ClientSecret: appConfig.Cfg.GoogleOAuthClientSecret,
		RedirectURL:  fmt.Sprintf("%s/auth/oauth2/google/callback", appConfig.Cfg.AppRootURL),
		Scopes:       []string{googleAPI.UserinfoEmailScope, googleAPI.UserinfoProfileScope},
		Endpoint:     googleOAuth2.Endpoint,
	}, nil
}

// GoogleLoginHandler inicia o fluxo de login Google server-side.
func GoogleLoginHandler(c *gin.Context) {
	oauthCfg, err := getGoogleOAuthConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to configure Google OAuth2: " + err.Error()})
		return
	}

	// State aleatório para proteção CSRF, guardado em cookie curto.
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate OAuth state"})
		return
	}
	state := base64.URLEncoding.EncodeToString(b)

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     googleOAuthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/",
		Secure:   c.Request.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	c.Redirect(http.StatusFound, oauthCfg.AuthCodeURL(state))
}

// GoogleCallbackHandler troca o código por token, busca o perfil e entrega a
// sessão ao frontend via redirect. A conta é provisionada pela mesma rotina
// do POST /auth/google-login.
func GoogleCallbackHandler(c *gin.Context) {
	log := phxlog.L.Named("GoogleCallbackHandler")

	stateCookie, err := c.Cookie(googleOAuthStateCookie)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing OAuth state cookie"})
		return
	}
	// Cookie de state é de uso único.
	http.SetCookie(c.Writer, &http.Cookie{Name: googleOAuthStateCookie, Value: "", MaxAge: -1, Path: "/"})

	if c.Query("state") != stateCookie {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OAuth state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "OAuth authorization code not found or access denied"})
		return
	}

	oauthCfg, err := getGoogleOAuthConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to configure Google OAuth2: " + err.Error()})
		return
	}

	token, err := oauthCfg.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Error("Failed to exchange OAuth code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange OAuth code for token"})
		return
	}
	if !token.Valid() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OAuth token received is invalid or expired"})
		return
	}

	oauth2Service, err := googleAPI.NewService(c.Request.Context(), option.WithTokenSource(oauthCfg.TokenSource(context.Background(), token)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Google API service client"})
		return
	}
	userInfo, err := oauth2Service.Userinfo.Get().Do()
	if err != nil {
		log.Error("Failed to fetch Google user info", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info from Google"})
		return
	}

	if userInfo.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email not provided by Google"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(userInfo.Email))
	fullName := strings.TrimSpace(userInfo.Name)
	if fullName == "" {
		fullName = email
	}

	user, err := handlers.FindOrProvisionGoogleUser(fullName, email, userInfo.Picture)
	if err != nil {
		log.Error("Failed to provision federated user", zap.String("email", email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to provision federated user"})
		return
	}

	jwtToken, err := auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate session token"})
		return
	}

	frontendRedirectURL := appConfig.Cfg.FrontendBaseURL
	if frontendRedirectURL == "" {
		frontendRedirectURL = "/"
	}
	targetURL := fmt.Sprintf("%s/oauth2/callback?token=%s&sso_success=true&provider=google", frontendRedirectURL, jwtToken)
	c.Redirect(http.StatusFound, targetURL)
}
