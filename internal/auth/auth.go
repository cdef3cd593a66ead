package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/ski-rental-api/internal/config"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
	DiscordUserGuildsAPI     = "https://discord.com/api/users/@me/guilds"

	CookieName    = "auth_token"
	TokenDuration = 24 * time.Hour

	StateCookieName = "oauth_state"
	StateDuration   = 10 * time.Minute
)

// RoleChecker reports whether a Discord user holds the staff role.
type RoleChecker interface {
	HasRole(ctx context.Context, discordID string) (bool, error)
}

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
	roles       RoleChecker
}

// NewAuthHandler sets up staff login. session is the bot session used for
// role checks and may be nil when no staff role is configured.
func NewAuthHandler(cfg *config.Config, db *gorm.DB, session *discordgo.Session) *AuthHandler {
	h := &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		db:  db,
		cfg: cfg,
	}
	if session != nil {
		h.roles = NewDiscordRoleChecker(session, cfg.DiscordGuildID, cfg.StaffRole)
	}
	return h
}

// WithRoleChecker replaces the Discord role lookup.
func (h *AuthHandler) WithRoleChecker(r RoleChecker) *AuthHandler {
	h.roles = r
	return h
}

// HandleLogin redirects to Discord with a fresh state that the callback must
// echo back from the same browser.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/auth/discord",
		MaxAge:   int(StateDuration.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func validState(r *http.Request) bool {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	state := r.URL.Query().Get("state")
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) == 1
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	valid := validState(r)
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Path:     "/auth/discord",
		MaxAge:   -1,
		HttpOnly: true,
	})
	if !valid {
		log.Warn().Str("remote", r.RemoteAddr).Msg("Rejected login callback with bad state")
		http.Error(w, "Invalid login state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to exchange discord token")
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)

	// Staff must belong to the shop's guild.
	if h.cfg.DiscordGuildID != "" {
		guildsResp, err := client.Get(DiscordUserGuildsAPI)
		if err != nil {
			http.Error(w, "Failed to get user guilds", http.StatusInternalServerError)
			return
		}
		defer guildsResp.Body.Close()

		var guilds []struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(guildsResp.Body).Decode(&guilds); err != nil {
			http.Error(w, "Failed to decode user guilds", http.StatusInternalServerError)
			return
		}

		isMember := false
		for _, g := range guilds {
			if g.ID == h.cfg.DiscordGuildID {
				isMember = true
				break
			}
		}

		if !isMember {
			http.Error(w, "Access denied: You are not a member of the required guild.", http.StatusForbidden)
			return
		}
	}

	resp, err := client.Get(DiscordUserAPI)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var discordUser struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&discordUser); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	user, err := h.upsertUser(discordUser.ID, discordUser.Username, discordUser.Email, discordUser.Avatar)
	if err != nil {
		log.Error().Err(err).Msg("Failed to save staff user")
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	h.setCookie(w, jwtToken)

	log.Info().Str("discord_id", user.DiscordID).Str("username", user.Username).Msg("Staff logged in")

	if h.cfg.FrontendURL != "" {
		http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
		return
	}
	fmt.Fprintf(w, "Welcome %s! You are logged in.", user.Username)
}

func (h *AuthHandler) upsertUser(discordID, username, email, avatar string) (*models.User, error) {
	var user models.User
	if err := h.db.FirstOrInit(&user, models.User{DiscordID: discordID}).Error; err != nil {
		return nil, err
	}
	user.Username = username
	user.Email = email
	user.Avatar = avatar
	if err := h.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

var ErrInvalidToken = errors.New("invalid token")

// ParseToken verifies a session token and returns its user and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (uint, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, time.Time{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, time.Time{}, ErrInvalidToken
	}
	var expiry time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiry = time.Unix(int64(exp), 0)
	}
	return uint(userIDFloat), expiry, nil
}

type MeOutput struct {
	Body struct {
		ID        uint   `json:"id"`
		DiscordID string `json:"discord_id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Avatar    string `json:"avatar"`
		Staff     bool   `json:"staff"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *struct{}) (*MeOutput, error) {
	user, err := h.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	resp := &MeOutput{}
	resp.Body.ID = user.ID
	resp.Body.DiscordID = user.DiscordID
	resp.Body.Username = user.Username
	resp.Body.Email = user.Email
	resp.Body.Avatar = user.Avatar
	staff, err := h.isStaff(ctx, user)
	if err != nil {
		log.Warn().Err(err).Str("discord_id", user.DiscordID).Msg("Staff role lookup failed")
	}
	resp.Body.Staff = staff
	return resp, nil
}

// CurrentUser loads the user the session middleware put on ctx.
func (h *AuthHandler) CurrentUser(ctx context.Context) (*models.User, error) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	var user models.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error401Unauthorized("Unknown user")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}
	return &user, nil
}

// RequireStaff returns the signed-in user if they hold the staff role. With
// no staff role configured every signed-in guild member counts as staff.
func (h *AuthHandler) RequireStaff(ctx context.Context) (*models.User, error) {
	user, err := h.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := h.isStaff(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("discord_id", user.DiscordID).Msg("Staff role lookup failed")
		return nil, huma.Error503ServiceUnavailable("Staff role check unavailable")
	}
	if !staff {
		return nil, huma.Error403Forbidden("Staff only")
	}
	return user, nil
}

func (h *AuthHandler) isStaff(ctx context.Context, user *models.User) (bool, error) {
	if h.cfg.StaffRole == "" {
		return true, nil
	}
	if h.roles == nil {
		return false, errors.New("no discord session for role checks")
	}
	return h.roles.HasRole(ctx, user.DiscordID)
}

// DiscordRoleChecker looks the role up by name through the bot session.
type DiscordRoleChecker struct {
	session  *discordgo.Session
	guildID  string
	roleName string
}

func NewDiscordRoleChecker(session *discordgo.Session, guildID, roleName string) *DiscordRoleChecker {
	return &DiscordRoleChecker{session: session, guildID: guildID, roleName: roleName}
}

func (c *DiscordRoleChecker) HasRole(ctx context.Context, discordID string) (bool, error) {
	member, err := c.session.GuildMember(c.guildID, discordID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get guild member: %w", err)
	}
	roles, err := c.session.GuildRoles(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get guild roles: %w", err)
	}

	var roleID string
	for _, role := range roles {
		if role.Name == c.roleName {
			roleID = role.ID
			break
		}
	}
	if roleID == "" {
		return false, nil
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}
