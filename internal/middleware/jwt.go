package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errNoToken     = errors.New("Token faltante")
	errBadHeader   = errors.New("Formato de Authorization inválido")
	errBadToken    = errors.New("Token inválido")
	errMissingUser = errors.New("Token sin usuario")
)

// AuthRequired exige un bearer token valide et place user_id, email et
// role dans le contexte gin.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, secret); err != nil {
			log.Printf("❌ Authentification refusée (%s %s): %v", c.Request.Method, c.FullPath(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// OptionalAuth renseigne l'utilisateur si un token valide est présent,
// sans jamais bloquer la requête (paniers invités).
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, secret); err != nil && !errors.Is(err, errNoToken) {
			log.Printf("⚠️ Token ignoré: %v", err)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, secret string) error {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return errNoToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return errBadHeader
	}

	claims, err := parseClaims(parts[1], secret)
	if err != nil {
		return err
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return errMissingUser
	}

	c.Set("user_id", userID)
	if email, ok := claims["email"].(string); ok {
		c.Set("email", email)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
	return nil
}

// parseClaims vérifie la signature HMAC et l'expiration.
func parseClaims(tokenString, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, errBadToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("Token vencido")
		}
		return nil, errBadToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errBadToken
	}
	return claims, nil
}
