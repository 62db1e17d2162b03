package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
)

const actorHeader = "X-Actor-Id"

type actorKey struct{}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid bearer token")
	errMissingActor = errors.New("missing actor id")
)

// authenticator resolves the id of the acting user from either a HS256
// bearer token, whose subject is the actor id, or from the X-Actor-Id header
// when auth is disabled.
type authenticator struct {
	secret []byte
	noAuth bool
}

func (a authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorId, err := a.actorId(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		ctx := context.WithValue(r.Context(), actorKey{}, actorId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a authenticator) actorId(r *http.Request) (string, error) {
	if a.noAuth {
		actorId := strings.TrimSpace(r.Header.Get(actorHeader))
		if len(actorId) <= 0 {
			return "", errMissingActor
		}
		return actorId, nil
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errMissingToken
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	if len(claims.Subject) <= 0 {
		return "", errMissingActor
	}
	return claims.Subject, nil
}

func actorFromContext(ctx context.Context) string {
	actorId, _ := ctx.Value(actorKey{}).(string)
	return actorId
}
