package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ciaapp/seat-reservation/internal/config"
	"github.com/ciaapp/seat-reservation/internal/database"
	"github.com/ciaapp/seat-reservation/internal/entrycode"
	"github.com/ciaapp/seat-reservation/internal/handler"
	"github.com/ciaapp/seat-reservation/internal/notifier"
	"github.com/ciaapp/seat-reservation/internal/queue"
	"github.com/ciaapp/seat-reservation/internal/repository"
	"github.com/ciaapp/seat-reservation/internal/router"
	"github.com/ciaapp/seat-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The venue layout is fixed; seeding is idempotent and safe to run
	// on every start.
	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.SeedSeats(seedCtx, db); err != nil {
		cancel()
		log.Fatalf("seed seats: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil when Redis is not configured

	journal := repository.NewTransactionRepo(db)
	ledger := repository.NewSeatLedger(db, journal)
	users := repository.NewUserRepo(db)
	resetTokens := repository.NewResetTokenRepo(db)

	codec := entrycode.NewCodec(cfg.EntryCodeSecret)
	mailer := notifier.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	var publisher service.Publisher
	if cfg.AMQPURL != "" {
		pub, err := queue.NewPublisher(cfg.AMQPURL)
		if err != nil {
			// The broker is an optional side channel; reservations must
			// not depend on it being reachable at boot.
			log.Printf("rabbitmq unavailable, events disabled: %v", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	svc := service.NewReservationService(ledger, mailer, publisher, service.PriceTable{
		FullCents: cfg.FullPriceCents,
		HalfCents: cfg.HalfPriceCents,
	})

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, resetTokens, mailer), cfg.JWTSecret, rdb)
	router.RegisterSeats(e, handler.NewSeatHandler(svc, ledger, journal, codec), cfg.JWTSecret, rdb)
	router.RegisterAdmin(e, handler.NewAdminHandler(ledger, codec), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
