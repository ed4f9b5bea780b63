package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/notify"
	"go.uber.org/zap"
)

// envelope carries the payload together with the notices raised while
// serving the request.
type envelope struct {
	Data    any             `json:"data,omitempty"`
	Notices []notify.Notice `json:"notices"`
}

type ErrorResponse struct {
	Error    string          `json:"error"`
	Code     string          `json:"code,omitempty"`
	Details  string          `json:"details,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
	Notices  []notify.Notice `json:"notices"`
}

func notices(r *http.Request) []notify.Notice {
	if b := notify.BufferFrom(r.Context()); b != nil {
		return b.Notices()
	}
	return []notify.Notice{}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, envelope{Data: data, Notices: notices(r)})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Notices: notices(r),
	})
}

func respondErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
		Notices: notices(r),
	})
}

// respondRedirect tells the client where to go next, e.g. the sign-in page.
func respondRedirect(w http.ResponseWriter, r *http.Request, status int, code, message, redirect string) {
	writeJSON(w, status, ErrorResponse{
		Error:    message,
		Code:     code,
		Redirect: redirect,
		Notices:  notices(r),
	})
}

// decodeJSON decodes the request body. An empty body is accepted when
// allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
