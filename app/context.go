package main

import (
	"context"
	"net/http"
)

type contextKey string

const userContextKey = contextKey("userID")

const authErrorContextKey = contextKey("authError")

// anonymousUser marks requests that carry no valid bearer token.
const anonymousUser = 0

func (app *application) createUserContext(r *http.Request, userID int) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, userID)
	return r.WithContext(ctx)
}

func (app *application) getUserContext(r *http.Request) int {
	userID, ok := r.Context().Value(userContextKey).(int)
	if !ok {
		return anonymousUser
	}
	return userID
}

func (app *application) createAuthErrorContext(r *http.Request, err error) *http.Request {
	ctx := context.WithValue(r.Context(), authErrorContextKey, err)
	return r.WithContext(ctx)
}

func (app *application) getAuthErrorContext(r *http.Request) error {
	err, ok := r.Context().Value(authErrorContextKey).(error)
	if !ok {
		return nil
	}
	return err
}
