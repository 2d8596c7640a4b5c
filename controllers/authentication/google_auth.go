package authentication

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
)

var googleOauthConfig = &oauth2.Config{
	RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
	ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
	ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
	Endpoint:     google.Endpoint,
}

// HandleGoogleLogin: начинает Google OAuth, state хранится в сессии
func HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if googleOauthConfig.ClientID == "" || googleOauthConfig.ClientSecret == "" {
		http.Error(w, "Google OAuth is not configured", http.StatusServiceUnavailable)
		return
	}

	state := uuid.NewString()
	session, _ := config.Store.Get(r, "pathforge-session")
	session.Values["oauth_state"] = state
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Error saving session", http.StatusInternalServerError)
		return
	}

	url := googleOauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleGoogleCallback: обменивает код на токен, находит или создает
// пользователя и выдает JWT
func HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	session, _ := config.Store.Get(r, "pathforge-session")
	expectedState, _ := session.Values["oauth_state"].(string)
	if expectedState == "" || r.FormValue("state") != expectedState {
		log.Warn().Msg("invalid OAuth state")
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	token, err := googleOauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		log.Error().Err(err).Msg("failed to exchange OAuth code")
		http.Error(w, "Failed to exchange code", http.StatusBadGateway)
		return
	}

	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch Google user info")
		http.Error(w, "Failed to fetch user info", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		http.Error(w, "Failed to read user info", http.StatusBadGateway)
		return
	}

	var userInfo struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.Unmarshal(content, &userInfo); err != nil || userInfo.Email == "" {
		http.Error(w, "Failed to parse user info", http.StatusBadGateway)
		return
	}

	// Ищем пользователя по email, при отсутствии создаем нового student
	var user users.User
	if err := config.DB.Where("email = ?", userInfo.Email).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			http.Error(w, "Error looking up user", http.StatusInternalServerError)
			return
		}
		user = users.User{
			Email:    userInfo.Email,
			Name:     userInfo.GivenName + " " + userInfo.FamilyName,
			Role:     users.RoleStudent,
			Provider: "google",
		}
		if err := config.DB.Create(&user).Error; err != nil {
			log.Error().Err(err).Msg("failed to create user from Google profile")
			http.Error(w, "Error creating user", http.StatusInternalServerError)
			return
		}
	}

	// Создаем или обновляем привязку GoogleUser
	var googleUser users.GoogleUser
	if err := config.DB.Where("google_id = ?", userInfo.ID).First(&googleUser).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			http.Error(w, "Error looking up Google account", http.StatusInternalServerError)
			return
		}
		googleUser = users.GoogleUser{
			UserID:       user.ID,
			GoogleID:     userInfo.ID,
			Email:        userInfo.Email,
			FirstName:    userInfo.GivenName,
			LastName:     userInfo.FamilyName,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
		}
		if err := config.DB.Create(&googleUser).Error; err != nil {
			http.Error(w, "Error linking Google account", http.StatusInternalServerError)
			return
		}
	} else {
		googleUser.Email = userInfo.Email
		googleUser.FirstName = userInfo.GivenName
		googleUser.LastName = userInfo.FamilyName
		googleUser.AccessToken = token.AccessToken
		if token.RefreshToken != "" {
			googleUser.RefreshToken = token.RefreshToken
		}
		if err := config.DB.Save(&googleUser).Error; err != nil {
			http.Error(w, "Error updating Google account", http.StatusInternalServerError)
			return
		}
	}

	jwtToken, err := GenerateToken(&user)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	delete(session.Values, "oauth_state")
	session.Save(r, w)

	user.AccessToken = jwtToken
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  user,
		"token": jwtToken,
	})
}
