// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/models"
)

// TokenTTL is how long an issued token stays valid
const TokenTTL = 24 * time.Hour

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID     string   `json:"userId"`
	Email      string   `json:"email"`
	ActiveRole string   `json:"activeRole"`
	Roles      []string `json:"roles"`
	jwt.StandardClaims
}

// Valid implements the Claims interface for Echo's JWT middleware
func (c JwtCustomClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}
	if c.NotBefore > 0 && time.Now().Unix() < c.NotBefore {
		return errors.New("token used before valid")
	}
	if c.UserID == "" {
		return errors.New("token has no subject")
	}
	return nil
}

// Actor is the authenticated caller of a request
type Actor struct {
	UserID     primitive.ObjectID
	Email      string
	ActiveRole string
}

// JWTMiddleware returns a configured JWT middleware. The token is read from
// the Authorization header, or from the token query parameter for websocket
// upgrades.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	if secret == "" {
		log.Printf("Warning: JWT secret is not set")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(echo.ErrUnauthorized.Code, "JWT configuration error")
			}
		}
	}

	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:  []byte(secret),
		Claims:      &JwtCustomClaims{},
		TokenLookup: "header:Authorization,query:token",
		SuccessHandler: func(c echo.Context) {
			user := c.Get("user").(*jwt.Token)
			claims := user.Claims.(*JwtCustomClaims)

			c.Set("userId", claims.UserID)
			c.Set("activeRole", claims.ActiveRole)
			c.Set("email", claims.Email)
		},
		ErrorHandler: func(err error) error {
			log.Printf("JWT middleware error: %v", err)
			if err.Error() == "token contains an invalid number of segments" {
				return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Invalid token format")
			}
			return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Please provide valid credentials")
		},
	})
}

// GenerateJWT signs a token for user acting as its active role
func GenerateJWT(secret string, user *models.User) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret is required")
	}

	now := time.Now()
	claims := &JwtCustomClaims{
		UserID:     user.ID.Hex(),
		Email:      user.Email,
		ActiveRole: user.ActiveRole,
		Roles:      user.Roles,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(TokenTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GetUserFromToken extracts user information from JWT token
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	user := c.Get("user")
	if user == nil {
		return nil
	}

	token, ok := user.(*jwt.Token)
	if !ok {
		return nil
	}

	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil
	}

	return claims
}

// ExtractActiveRole safely extracts the active role from the context
func ExtractActiveRole(c echo.Context) string {
	if role, ok := c.Get("activeRole").(string); ok && role != "" {
		return role
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.ActiveRole
	}
	return ""
}

// GetActor resolves the authenticated caller
func GetActor(c echo.Context) (Actor, error) {
	claims := GetUserFromToken(c)
	if claims == nil {
		return Actor{}, errors.New("invalid token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return Actor{}, errors.New("invalid user ID in token")
	}
	return Actor{UserID: id, Email: claims.Email, ActiveRole: claims.ActiveRole}, nil
}
