package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "hostel-backend/internal/config"
	intdb "hostel-backend/internal/db"
	router "hostel-backend/internal/http"
	"hostel-backend/internal/http/handlers"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/repositories/memory"
	"hostel-backend/internal/services"
	"hostel-backend/internal/utils"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	hd := &handlers.Handler{
		Clock:       utils.SystemClock{},
		PaymentLink: env.PaymentLink,
	}
	var users repositories.UserStore

	switch env.StoreDriver {
	case intconfig.StoreMemory:
		st := memory.New()
		hd.Rooms, hd.Hostlers, hd.Payments, users = st, st, st, st
		log.Println("using in-memory store; data is lost on exit")
	default:
		conn, err := intconfig.ConnectDB(env.DBDSN)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer intconfig.CloseDB()

		if env.DBAutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := intdb.EnsureSchema(ctx, conn)
			cancel()
			if err != nil {
				log.Fatalf("schema migration failed: %v", err)
			}
		}
		hd.Rooms = repositories.RoomRepository{DB: conn}
		hd.Hostlers = repositories.HostlerRepository{DB: conn}
		hd.Payments = repositories.PaymentRepository{DB: conn}
		users = repositories.UserRepository{DB: conn}
		hd.Ping = intconfig.EnsureDB
	}

	hd.Auth = services.AuthService{Users: users, Secret: []byte(env.JWTSecret), TTL: env.JWTTTL}
	if env.AdminPhone != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := hd.Auth.EnsureAdmin(ctx, env.AdminName, env.AdminPhone, env.AdminPassword)
		cancel()
		if err != nil {
			log.Fatalf("admin account setup failed: %v", err)
		}
	}

	r := router.NewRouter(env, hd)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}
