package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/anjiri1684/course_marketplace/database"
	"github.com/anjiri1684/course_marketplace/events"
	"github.com/anjiri1684/course_marketplace/jobs"
	"github.com/anjiri1684/course_marketplace/media"
	"github.com/anjiri1684/course_marketplace/notifications"
	"github.com/anjiri1684/course_marketplace/payments"
	"github.com/anjiri1684/course_marketplace/routes"
	"github.com/anjiri1684/course_marketplace/services"
	"github.com/anjiri1684/course_marketplace/websocket"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.ConnectDB()
	database.Migrate()

	var gateway payments.Gateway
	if gw, err := payments.NewPayPalGateway(cfg.PayPal, ""); err != nil {
		log.Printf("⚠️ PayPal gateway disabled: %v", err)
	} else {
		gateway = gw
	}

	var (
		store    media.Store
		uploader services.BlobUploader
	)
	if cld, err := media.NewCloudinaryStore(cfg.Cloudinary); err != nil {
		log.Printf("⚠️ Media storage disabled: %v", err)
	} else {
		store, uploader = cld, cld
	}

	publisher, err := events.NewPublisher(ctx, cfg.Events)
	if err != nil {
		log.Printf("⚠️ Purchase events disabled: %v", err)
		publisher = events.NopPublisher{}
	}

	var mailer services.Mailer
	if brevo := notifications.NewBrevoService(cfg.Email); brevo != nil {
		mailer = brevo
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	projector := services.NewProjector(database.DB)
	orders := services.NewOrderService(services.OrderDeps{
		DB:             database.DB,
		Gateway:        gateway,
		Projector:      projector,
		Events:         publisher,
		Mailer:         mailer,
		Status:         hub,
		ClientURL:      cfg.ClientURL,
		Currency:       cfg.PayPal.Currency,
		GatewayTimeout: cfg.GatewayTimeout,
	})
	certificates := services.NewCertificateService(database.DB, uploader, nil)
	progress := services.NewProgressService(database.DB, certificates)

	c := cron.New()
	if _, err := jobs.Schedule(c, cfg.ReconcileSchedule, projector); err != nil {
		log.Fatalf("🔥 Failed to schedule purchase reconciliation: %v", err)
	}
	c.Start()
	defer c.Stop()
	log.Println("✅ Cron job for purchase reconciliation scheduled successfully.")

	app := routes.NewApp(cfg)
	routes.Register(app, routes.Deps{
		Orders:    orders,
		Progress:  progress,
		Media:     store,
		Hub:       hub,
		UploadDir: cfg.UploadDir,
		JWTSecret: []byte(cfg.JWTSecret),
	})

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Server running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed: %v", err)
	}
}
