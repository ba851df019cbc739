package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/obs"
)

// API responses share one envelope: {"success":true,"data":...} on the happy
// path, {"success":false,"error_code":...,"error_message":...} for denials.

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, map[string]any{
		"success": true,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"success":       false,
		"error_code":    codeForStatus(code),
		"error_message": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func writeDenial(w http.ResponseWriter, r *http.Request, d *auth.Denial) {
	payload := map[string]any{
		"success":       false,
		"error_code":    string(d.Code),
		"error_message": d.Message,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, statusForDenial(d.Code), payload)
}

// handleServiceError maps a service failure onto the wire. Denials carry
// their own code; anything else is an infrastructure fault and reports as an
// opaque 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if d, ok := auth.AsDenial(err); ok {
		writeDenial(w, r, d)
		return
	}
	if errors.Is(err, auth.ErrInvalidInput) {
		writeError(w, r, http.StatusBadRequest, "invalid input")
		return
	}
	obs.Logger().Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err),
	)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func statusForDenial(code auth.DenialCode) int {
	switch code {
	case auth.CodeUnauthorized:
		return http.StatusUnauthorized
	case auth.CodeForbidden:
		return http.StatusForbidden
	case auth.CodeUserNotFound, auth.CodeTeamNotFound, auth.CodeSignUpReqNotFound,
		auth.CodeSlugNotFound, auth.CodeBlogNotFound, auth.CodeProjectNotFound:
		return http.StatusNotFound
	case auth.CodeEmailTaken, auth.CodeSlugAlreadyInUse:
		return http.StatusConflict
	case auth.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case auth.CodeInvalidCredentials, auth.CodeInvalidOTP, auth.CodeOAuthFailed:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return string(auth.CodeUnauthorized)
	case http.StatusForbidden:
		return string(auth.CodeForbidden)
	case http.StatusTooManyRequests:
		return string(auth.CodeTooManyRequests)
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusInternalServerError:
		return "INTERNAL"
	default:
		return "BAD_REQUEST"
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
