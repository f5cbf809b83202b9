package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/service"
	"github.com/rocketscienceinc/gamehub-backend/internal/usecase"
)

const (
	TokenHeader = "X-Session-Token"
	TokenCookie = "session_token"

	qrSize     = 256
	maxBodyLen = 16 << 10
	cookieTTL  = 24 * time.Hour
)

var errMissingToken = errors.New("missing session token")

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}

func (that *Server) handleCreate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	that.create(w, r, ps, false)
}

func (that *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	that.create(w, r, ps, true)
}

func (that *Server) create(w http.ResponseWriter, r *http.Request, ps httprouter.Params, room bool) {
	kind, err := entity.ParseKind(ps.ByName("kind"))
	if err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", apperror.ErrUnknownGameKind, err))
		return
	}

	var req createRequest
	if err = that.decode(r, &req, true); err != nil {
		that.writeError(w, err)
		return
	}

	var result *usecase.SeatResult
	if room {
		result, err = that.manager.CreateRoom(r.Context(), kind, req.toConfig())
	} else {
		result, err = that.manager.Create(r.Context(), kind, req.toConfig())
	}

	if err != nil {
		that.writeError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result)
}

func (that *Server) handleJoin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req joinRequest
	if err := that.decode(r, &req, false); err != nil {
		that.writeError(w, err)
		return
	}

	result, err := that.manager.JoinRoom(r.Context(), req.Code, req.Name)
	if err != nil {
		that.writeError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

func (that *Server) handleQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := strings.ToUpper(ps.ByName("code"))
	if !service.ValidCode(code) {
		that.writeError(w, fmt.Errorf("%w: malformed room code", apperror.ErrInvalidInput))
		return
	}

	exists, err := that.manager.RoomExists(r.Context(), code)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if !exists {
		that.writeError(w, apperror.ErrRoomNotFound)
		return
	}

	png, err := qrcode.Encode(that.publicURL+"/join/"+code, qrcode.Medium, qrSize)
	if err != nil {
		that.writeError(w, fmt.Errorf("failed to encode qr: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(png); err != nil {
		that.logger.Error("failed to write qr", "error", err)
	}
}

func (that *Server) handleAct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token, err := sessionToken(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	var req actRequest
	if err = that.decode(r, &req, false); err != nil {
		that.writeError(w, err)
		return
	}

	snapshot, err := that.manager.Act(r.Context(), token, req.toAction())
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) handlePoll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	that.snapshot(w, r, that.manager.Poll)
}

func (that *Server) handleNextRound(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	that.snapshot(w, r, that.manager.NextRound)
}

func (that *Server) handleDismissOverlay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	that.snapshot(w, r, that.manager.DismissOverlay)
}

func (that *Server) handleReset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	that.end(w, r, that.manager.Reset)
}

func (that *Server) handleLeave(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	that.end(w, r, that.manager.LeaveRoom)
}

func (that *Server) snapshot(
	w http.ResponseWriter,
	r *http.Request,
	call func(ctx context.Context, token string) (*service.Snapshot, error),
) {
	token, err := sessionToken(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	snapshot, err := call(r.Context(), token)
	if err != nil {
		that.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) end(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, token string) error) {
	token, err := sessionToken(r)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if err = call(r.Context(), token); err != nil && !errors.Is(err, apperror.ErrSessionExpired) {
		that.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: TokenCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into dst and validates it. With optional set an
// empty body leaves dst at its zero value.
func (that *Server) decode(r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyLen)).Decode(dst)
	if errors.Is(err, io.EOF) && optional {
		err = nil
	}

	if err != nil {
		return fmt.Errorf("%w: malformed body: %w", apperror.ErrInvalidInput, err)
	}

	if err = that.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidInput, err)
	}

	return nil
}

func sessionToken(r *http.Request) (string, error) {
	if token := r.Header.Get(TokenHeader); token != "" {
		return token, nil
	}

	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errMissingToken
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(cookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func statusOf(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, errMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrInvalidInput),
		errors.Is(err, apperror.ErrUnknownGameKind),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrTurnNotYours),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotRoomHost):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrRoomExpired),
		errors.Is(err, apperror.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, apperror.ErrCodeSpaceExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
