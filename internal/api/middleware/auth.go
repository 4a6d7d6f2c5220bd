package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"actionflow/backend/internal/models"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	Issuer   = "actionflow"
	actorKey = "actor"
)

// Claims carry the acting identity. The subject is the admin or user id.
type Claims struct {
	OrgID uint   `json:"org_id"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

var errBadActor = errors.New("token does not describe an actor")

// IssueToken signs an HS256 token for actor, valid for ttl from now.
func IssueToken(secret []byte, actor models.Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		OrgID: actor.OrgID,
		Role:  string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(actor.SubjectID), 10),
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates a token and returns the actor it names.
func ParseToken(secret []byte, tokenString string) (models.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return models.Actor{}, err
	}
	if !token.Valid {
		return models.Actor{}, errBadActor
	}

	sub, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || sub == 0 || claims.OrgID == 0 {
		return models.Actor{}, errBadActor
	}
	actor := models.Actor{OrgID: claims.OrgID, Role: models.Role(claims.Role), SubjectID: uint(sub)}
	if !actor.IsAdmin() && !actor.IsUser() {
		return models.Actor{}, errBadActor
	}
	return actor, nil
}

// Auth requires a bearer token. Browsers cannot set headers on websocket
// upgrades, so a "token" query parameter is accepted as well.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if h := c.GetHeader("Authorization"); h != "" {
			tokenString = strings.TrimPrefix(h, "Bearer ")
			if tokenString == h {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token must be in format: Bearer <token>"})
				return
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
			return
		}

		actor, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Auth.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
