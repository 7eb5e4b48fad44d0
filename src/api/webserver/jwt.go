package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func issueJWT(userID uint64, username string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"uid":  userID,
		"name": username,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tok, err := jwt.Parse(h[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil })
		if err != nil || !tok.Valid {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims := tok.Claims.(jwt.MapClaims)
		if uid, ok := claims["uid"].(float64); ok {
			c.Set("uid", uint64(uid))
		}
		c.Set("name", claims["name"])
		c.Next()
	}
}

func currentUser(c *gin.Context) uint64 {
	uid, _ := c.Get("uid")
	id, _ := uid.(uint64)
	return id
}
