package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/allichat/server/internal/auth"
	"github.com/allichat/server/internal/chat"
	"github.com/allichat/server/internal/config"
	"github.com/allichat/server/internal/handlers"
	"github.com/allichat/server/internal/middleware"
	"github.com/allichat/server/internal/redisc"
	"github.com/allichat/server/internal/service"
	"github.com/allichat/server/internal/store/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	rdb, err := redisc.InitRedis(cfg.RedisURL)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	users := postgres.NewUserStore(db)
	rooms := postgres.NewRoomStore(db)
	messages := postgres.NewMessageStore(db)
	announcements := postgres.NewAnnouncementStore(db)
	subteams := postgres.NewSubteamStore(db)
	notifications := postgres.NewNotificationStore(db)

	roomSvc := service.NewRoomService(rooms, users, cfg.GlobalRoomName)
	msgSvc := service.NewMessageService(users, rooms, messages)
	subteamSvc := service.NewSubteamService(subteams, users, notifications)
	noteSvc := service.NewNotificationService(notifications)
	adminSvc := service.NewAdminService(users, rooms, messages, announcements)

	hub := chat.NewHub(roomSvc, msgSvc, subteamSvc, noteSvc, users, announcements, rdb, cfg.JWTSecret)
	publisher := chat.NewPublisher(rdb)
	roomSvc.SetNotifier(publisher)
	msgSvc.SetNotifier(publisher)
	subteamSvc.SetNotifier(publisher)
	noteSvc.SetNotifier(publisher)
	adminSvc.SetNotifier(publisher)

	if err := roomSvc.EnsureGlobalRoom(context.Background()); err != nil {
		slog.Error("ensuring global room", "error", err)
		os.Exit(1)
	}

	go hub.Run()
	go hub.Listen()

	r := mux.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	r.HandleFunc("/health", handlers.Health).Methods("GET")
	r.HandleFunc("/api/login", auth.LoginHandler(users, rdb, cfg.JWTSecret)).Methods("POST", "OPTIONS")
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		chat.ServeWS(hub, w, req)
	})

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware(cfg.JWTSecret))
	api.HandleFunc("/logout", auth.LogoutHandler(users, rdb)).Methods("POST", "OPTIONS")
	api.HandleFunc("/me", auth.MeHandler(users)).Methods("GET")
	api.HandleFunc("/users", handlers.ListUsers(users)).Methods("GET")
	api.HandleFunc("/users/online", handlers.OnlineUsers(rdb)).Methods("GET")

	api.HandleFunc("/rooms", handlers.ListRooms(roomSvc)).Methods("GET")
	api.HandleFunc("/rooms", handlers.CreateGroup(roomSvc)).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/discover", handlers.DiscoverRooms(roomSvc)).Methods("GET")
	api.HandleFunc("/rooms/direct", handlers.StartDirect(roomSvc)).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{id}/join", handlers.JoinRoom(roomSvc)).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{id}/leave", handlers.LeaveRoom(roomSvc)).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{id}/messages", handlers.RoomMessages(msgSvc)).Methods("GET")

	api.HandleFunc("/announcements", handlers.ListAnnouncements(announcements)).Methods("GET")
	api.HandleFunc("/announcements", handlers.CreateAnnouncement(adminSvc)).Methods("POST", "OPTIONS")
	api.HandleFunc("/announcements/{id}", handlers.DeleteAnnouncement(adminSvc)).Methods("DELETE", "OPTIONS")

	api.HandleFunc("/subteams", handlers.ListSubteams(subteamSvc)).Methods("GET")
	api.HandleFunc("/subteams", handlers.CreateSubteam(subteamSvc)).Methods("POST", "OPTIONS")
	api.HandleFunc("/subteams/{id}", handlers.UpdateSubteam(subteamSvc)).Methods("PUT", "OPTIONS")
	api.HandleFunc("/subteams/{id}", handlers.DeleteSubteam(subteamSvc)).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/subteams/{id}/members", handlers.AddSubteamMember(subteamSvc)).Methods("POST", "OPTIONS")

	api.HandleFunc("/notifications", handlers.ListNotifications(noteSvc)).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", handlers.MarkNotificationRead(noteSvc)).Methods("POST", "OPTIONS")

	api.HandleFunc("/admin/users/{name}/mute", handlers.SetUserMuted(adminSvc)).Methods("POST", "OPTIONS")
	api.HandleFunc("/admin/users/{name}/ban", handlers.SetUserBanned(adminSvc)).Methods("POST", "OPTIONS")
	api.HandleFunc("/admin/sudo-send", handlers.SudoSend(adminSvc)).Methods("POST", "OPTIONS")

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
