package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/jaeholee/decotree/internal/nickname"
)

var (
	defaultJwtExpiration = time.Hour * 24
	tokenCookieKey       = "token"
)

const (
	userIdClaim   = "user-id"
	nicknameClaim = "nickname"
	sessionClaim  = "session-id"
	expClaim      = "exp"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the anonymous participant minted by the session
// endpoint and carried in the JWT cookie.
type Identity struct {
	Id       string `json:"id"`
	Nickname string `json:"nickname"`
	Session  string `json:"session"`
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

type CreateSessionRequest struct {
	Nickname string `json:"nickname"`
}

func (s *App) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	userId, err := s.generateUserId()
	if err != nil {
		s.log.Println("generate user id:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	identity := Identity{
		Id:       userId,
		Nickname: req.Nickname,
		Session:  uuid.NewString(),
	}
	if identity.Nickname == "" {
		identity.Nickname = nickname.Generate()
	}

	token, err := s.createJwtForSession(identity, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.SetCookie(w, createJwtCookie(token, defaultJwtExpiration))

	s.writeJson(w, http.StatusCreated, identity)
}

func (s *App) session(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, identity)
}

func createJwtCookie(tokenString string, exp time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieKey,
		Value:    tokenString,
		Path:     "/",
		Expires:  time.Now().Add(exp),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (s *App) createJwtForSession(identity Identity, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim:   identity.Id,
		nicknameClaim: identity.Nickname,
		sessionClaim:  identity.Session,
		expClaim:      time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *App) verifyToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return token, nil
}

func (s *App) extractIdentityFromToken(tokenString string) (Identity, error) {
	token, err := s.verifyToken(tokenString)
	if err != nil {
		return Identity{}, fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("invalid token claims")
	}

	userId, ok := claims[userIdClaim].(string)
	if !ok || userId == "" {
		return Identity{}, fmt.Errorf("invalid user id claim")
	}

	nick, _ := claims[nicknameClaim].(string)
	session, _ := claims[sessionClaim].(string)

	return Identity{Id: userId, Nickname: nick, Session: session}, nil
}
