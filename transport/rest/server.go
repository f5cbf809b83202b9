package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/service"
	"github.com/rocketscienceinc/gamehub-backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type gameManager interface {
	Create(ctx context.Context, kind entity.Kind, cfg usecase.GameConfig) (*usecase.SeatResult, error)
	CreateRoom(ctx context.Context, kind entity.Kind, cfg usecase.GameConfig) (*usecase.SeatResult, error)
	JoinRoom(ctx context.Context, code, name string) (*usecase.SeatResult, error)

	Act(ctx context.Context, token string, action entity.Action) (*service.Snapshot, error)
	Poll(ctx context.Context, token string) (*service.Snapshot, error)
	NextRound(ctx context.Context, token string) (*service.Snapshot, error)
	DismissOverlay(ctx context.Context, token string) (*service.Snapshot, error)

	Reset(ctx context.Context, token string) error
	LeaveRoom(ctx context.Context, token string) error

	RoomExists(ctx context.Context, code string) (bool, error)
}

type Server struct {
	logger    *slog.Logger
	manager   gameManager
	validate  *validator.Validate
	publicURL string

	router *httprouter.Router
}

// NewServer builds the HTTP API. ws, when not nil, is mounted at GET /ws.
func NewServer(logger *slog.Logger, manager gameManager, ws http.Handler, publicURL string) *Server {
	that := &Server{
		logger:    logger.With("component", "rest"),
		manager:   manager,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		publicURL: strings.TrimSuffix(publicURL, "/"),
		router:    httprouter.New(),
	}

	that.router.GET("/ping", that.handlePing)

	that.router.POST("/api/games/:kind/sessions", that.handleCreate)
	that.router.POST("/api/games/:kind/rooms", that.handleCreateRoom)
	that.router.POST("/api/rooms/join", that.handleJoin)
	that.router.GET("/api/rooms/:code/qr", that.handleQR)

	that.router.POST("/api/session/act", that.handleAct)
	that.router.GET("/api/session/poll", that.handlePoll)
	that.router.POST("/api/session/next", that.handleNextRound)
	that.router.POST("/api/session/overlay", that.handleDismissOverlay)
	that.router.POST("/api/session/reset", that.handleReset)
	that.router.POST("/api/session/leave", that.handleLeave)

	if ws != nil {
		that.router.Handler(http.MethodGet, "/ws", ws)
	}

	that.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		that.logger.Error("panic while serving request", "path", r.URL.Path, "panic", v)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	return that
}

func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	that.router.ServeHTTP(w, r)
}

// Start serves on port until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
