package api

import "time"

// AuthUser is the compact user identity returned with a token pair.
type AuthUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsAdmin    bool   `json:"is_admin"`
	IsVerified bool   `json:"is_verified"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	FreeFireID string `json:"free_fire_id,omitempty"`
}

// AuthResponse is the backend's response to login and OTP verification.
type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type,omitempty"`
	User         AuthUser `json:"user"`
}

// User is the full profile from GET /users/me.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Age          int        `json:"age"`
	FreeFireID   string     `json:"free_fire_id"`
	FreeFireName string     `json:"free_fire_name"`
	Rank         string     `json:"rank,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	IsVerified   bool       `json:"is_verified"`
	IsBanned     bool       `json:"is_banned"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// LoginRequest is the credentials payload for POST /auth/login. The backend
// takes a JSON body with an email field, not an OAuth2 form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates an unverified account and triggers an OTP email.
// The backend validates confirm_password server-side too; validating here
// saves a round trip.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Age             int    `json:"age" validate:"required,gt=12"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FreeFireID      string `json:"free_fire_id" validate:"required"`
	FreeFireName    string `json:"free_fire_name" validate:"required"`
}

// UpdateProfileRequest updates the mutable profile fields.
type UpdateProfileRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=30"`
	Age          int    `json:"age" validate:"required,gt=12"`
	FreeFireID   string `json:"free_fire_id" validate:"required"`
	FreeFireName string `json:"free_fire_name" validate:"required"`
}

// OTPPurpose selects which flow an OTP belongs to.
type OTPPurpose string

const (
	OTPPurposeRegister       OTPPurpose = "register"
	OTPPurposeForgotPassword OTPPurpose = "forgot_password"
)

// MessageResponse is the backend's generic acknowledgment shape.
type MessageResponse struct {
	Message string `json:"message"`
}

// League is a tournament tier.
type League struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	EntryFee    int    `json:"entry_fee"`
	Description string `json:"description,omitempty"`
	MaxPlayers  int    `json:"max_players"`
	ImageURL    string `json:"image_url,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// Room is a joinable match room within a league.
type Room struct {
	ID             string     `json:"id"`
	LeagueID       string     `json:"league_id"`
	Name           string     `json:"name"`
	EntryFee       int        `json:"entry_fee"`
	Division       string     `json:"division,omitempty"`
	MaxPlayers     int        `json:"max_players"`
	CurrentPlayers int        `json:"current_players"`
	Status         string     `json:"status"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
}

// Wallet is the user's coin balance. Closed coin economy: a single balance,
// no withdrawals.
type Wallet struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Balance   int       `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	AvatarURL     string  `json:"avatar_url,omitempty"`
	TotalWinnings int     `json:"total_winnings"`
	GamesPlayed   int     `json:"games_played"`
	WinRate       float64 `json:"win_rate"`
	AverageKills  float64 `json:"average_kills"`
	Points        int     `json:"points"`
}

// LeaderboardResponse is the paged global leaderboard.
type LeaderboardResponse struct {
	Total   int                `json:"total"`
	Entries []LeaderboardEntry `json:"entries"`
}

// Match is one completed match from the user's history.
type Match struct {
	ID       string    `json:"id"`
	RoomID   string    `json:"room_id,omitempty"`
	LeagueID string    `json:"league_id,omitempty"`
	Division string    `json:"division"`
	RoomName string    `json:"room_name,omitempty"`
	Result   string    `json:"result"`
	CoinsWon int       `json:"coins_won"`
	Kills    int       `json:"kills"`
	Position int       `json:"position,omitempty"`
	PlayedAt time.Time `json:"played_at"`
}

// MatchHistoryResponse is a page of the user's match history.
type MatchHistoryResponse struct {
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	Limit   int     `json:"limit"`
	Matches []Match `json:"matches"`
}

// CoinPackage is a purchasable coin bundle. Pricing lives on the backend;
// packages arrive active and ordered by sort_order.
type CoinPackage struct {
	ID        string `json:"id"`
	Coins     int    `json:"coins"`
	PriceINR  int    `json:"price_inr"`
	IsPopular bool   `json:"is_popular"`
	SortOrder int    `json:"sort_order"`
}
