package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gamehub-backend/internal/config"
	"github.com/rocketscienceinc/gamehub-backend/internal/pkg"
	"github.com/rocketscienceinc/gamehub-backend/internal/quiz"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository"
	"github.com/rocketscienceinc/gamehub-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gamehub-backend/internal/service"
	"github.com/rocketscienceinc/gamehub-backend/internal/usecase"
	"github.com/rocketscienceinc/gamehub-backend/transport/rest"
	"github.com/rocketscienceinc/gamehub-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type repositories struct {
	sessions repository.SessionRepository
	rooms    repository.RoomRepository
	seats    repository.SeatRepository
	close    func()
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	hub := websocket.NewHub(logger)
	defer hub.Close()

	repos, err := newRepositories(ctx, logger, conf, hub.Notify)
	if err != nil {
		return err
	}
	defer repos.close()

	catalog, err := quiz.NewSampleCatalog()
	if err != nil {
		return fmt.Errorf("could not load quiz catalog: %w", err)
	}

	rnd := pkg.NewRand(conf.Rooms.Seed)

	gameManager := usecase.NewGameManager(
		logger,
		repos.sessions,
		repos.rooms,
		repos.seats,
		service.NewRoomCodeGenerator(repos.rooms, rnd, conf.Rooms.CodeAttempts),
		quiz.NewEngine(catalog, rnd, conf.Quiz.DefaultRounds),
		service.NewBotService(rnd),
		hub,
	)

	server := rest.NewServer(logger, gameManager, hub, conf.PublicURL)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage.Driver)
	if err = server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// newRepositories builds the stores for the configured driver. Rooms of
// evicted sessions are deleted and reported to released.
func newRepositories(ctx context.Context, logger *slog.Logger, conf *config.Config, released func(code string)) (*repositories, error) {
	if conf.Storage.Driver == config.StorageMemory {
		rooms := repository.NewMemoryRoomRepository()

		sessions, err := repository.NewMemorySessionRepository(
			logger, conf.Storage.Capacity, repository.ReleaseRooms(logger, rooms, released),
		)
		if err != nil {
			return nil, fmt.Errorf("could not create session store: %w", err)
		}

		seats, err := repository.NewMemorySeatRepository(conf.Storage.Capacity)
		if err != nil {
			return nil, fmt.Errorf("could not create seat store: %w", err)
		}

		return &repositories{
			sessions: sessions,
			rooms:    rooms,
			seats:    seats,
			close:    func() {},
		}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	rooms := repository.NewRedisRoomRepository(redisStorage.Connection)
	onEvict := repository.ReleaseRooms(logger, rooms, released)

	return &repositories{
		sessions: repository.NewRedisSessionRepository(logger, redisStorage.Connection, conf.Storage.Capacity, onEvict),
		rooms:    rooms,
		seats:    repository.NewRedisSeatRepository(redisStorage.Connection),
		close: func() {
			if err := redisStorage.Close(); err != nil {
				logger.Error("could not close redis storage", "error", err)
			}
		},
	}, nil
}
