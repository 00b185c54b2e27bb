package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/auth"
	apimw "github.com/hamed0406/healthchecker/internal/httpapi/middleware"
)

type loginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
	Confirm string `json:"confirm_password"`
}

type resultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// readCredentials accepts a JSON body or a form post.
func readCredentials(w http.ResponseWriter, r *http.Request) (string, string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
			return "", "", err
		}
		return body.Username, body.Password, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return r.PostFormValue("username"), r.PostFormValue("password"), nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, err := readCredentials(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	sess, err := s.Auth.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeJSON(w, http.StatusOK, loginResponse{Message: "Invalid username or password"})
		return
	}
	if err != nil {
		s.Logger.Error("login_error", zap.Error(err))
		writeJSON(w, http.StatusOK, loginResponse{Message: "Database error occurred"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     apimw.SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Success:     true,
		Message:     "Login successful!",
		RedirectURL: "/dashboard",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(apimw.SessionCookie); err == nil {
		if err := s.Auth.Logout(r.Context(), c.Value); err != nil {
			s.Logger.Warn("logout_error", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     apimw.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Opts.SecureCookies,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := apimw.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"username":   sess.Username,
		"login_time": sess.LoginTime,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := apimw.SessionFrom(r.Context())
	var req changePasswordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	err := s.Auth.ChangePassword(r.Context(), sess.UserID, req.Current, req.New, req.Confirm)
	var msg string
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resultResponse{Success: true, Message: "Password changed successfully!"})
		return
	case errors.Is(err, auth.ErrPasswordMismatch):
		msg = "New password and confirmation password do not match"
	case errors.Is(err, auth.ErrPasswordTooShort):
		msg = "New password must be at least 6 characters long"
	case errors.Is(err, auth.ErrWrongPassword):
		msg = "Current password is incorrect"
	default:
		s.Logger.Error("change_password_error", zap.Error(err))
		msg = "Failed to update password. Please try again."
	}
	writeJSON(w, http.StatusOK, resultResponse{Message: msg})
}
