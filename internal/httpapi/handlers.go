package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/usecase"
)

const maxJSONBody = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.deps.Accounts.Register(r.Context(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
		return
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Missing email or password"})
		return
	case err != nil:
		s.internalError(w, r, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    map[string]any{"id": user.ID, "email": user.Email},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := s.deps.Accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		s.internalError(w, r, "login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Accounts.Logout(r.Context(), sessionToken(r)); err != nil {
		s.internalError(w, r, "logout", err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type publishRequest struct {
	ArticleID int64 `json:"articleId"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ArticleID <= 0 {
		writeError(w, http.StatusBadRequest, "articleId is required")
		return
	}

	out := s.deps.Publisher.Publish(r.Context(), userID(r), req.ArticleID)
	if out.OK() {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "link": out.Link})
		return
	}
	writeJSON(w, publishStatus(out.Kind), map[string]any{"success": false, "error": out.Message})
}

func publishStatus(kind usecase.OutcomeKind) int {
	switch kind {
	case usecase.OutcomePublished:
		return http.StatusOK
	case usecase.OutcomeNotFound:
		return http.StatusNotFound
	case usecase.OutcomeAlreadyPublished, usecase.OutcomeInProgress,
		usecase.OutcomeWebsiteInactive, usecase.OutcomeAttemptsExhausted:
		return http.StatusBadRequest
	case usecase.OutcomeRemoteFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.deps.Dashboard.Articles(r.Context(), userID(r))
	if err != nil {
		s.serviceError(w, r, "list articles", err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.deps.Dashboard.LiveLinks(r.Context(), userID(r))
	if err != nil {
		s.serviceError(w, r, "list links", err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Dashboard.Stats(r.Context(), userID(r))
	if err != nil {
		s.serviceError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.deps.Websites.List(r.Context(), userID(r))
	if err != nil {
		s.serviceError(w, r, "list websites", err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (s *Server) handleCreateWebsite(w http.ResponseWriter, r *http.Request) {
	var req usecase.WebsiteInput
	if !decodeJSON(w, r, &req) {
		return
	}
	site, err := s.deps.Websites.Create(r.Context(), userID(r), req)
	if err != nil {
		s.serviceError(w, r, "create website", err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

func (s *Server) handleDeleteWebsite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid website id")
		return
	}
	if err := s.deps.Websites.Delete(r.Context(), userID(r), id); err != nil {
		s.serviceError(w, r, "delete website", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleTestWebsite(w http.ResponseWriter, r *http.Request) {
	var req usecase.ConnectionTest
	if !decodeJSON(w, r, &req) {
		return
	}
	name, err := s.deps.Websites.TestConnection(r.Context(), userID(r), req)
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": remote.Message})
		return
	}
	if err != nil {
		s.serviceError(w, r, "test website", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": name})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.internalError(w, r, "read upload", err)
		return
	}

	res, err := s.deps.Ingestor.Ingest(r.Context(), userID(r), usecase.Upload{
		FileName: header.Filename,
		Size:     header.Size,
		Data:     data,
	})
	if err != nil {
		s.serviceError(w, r, "ingest upload", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "batchId": res.Batch.ID, "articles": res.Articles})
}

type processRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (s *Server) handleProcessUpload(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.deps.Ingestor.IngestURL(r.Context(), userID(r), req.URL, req.Name, req.Size)
	if err != nil {
		s.serviceError(w, r, "process upload", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "batchId": res.Batch.ID, "articles": res.Articles})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// serviceError maps domain sentinels onto HTTP statuses.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "Conflict")
	default:
		s.internalError(w, r, op, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error("request failed", "request_id", requestID(r), "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
