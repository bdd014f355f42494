// README: Entry point; loads config, wires services, starts HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chauffeur/internal/config"
	httptransport "chauffeur/internal/http"
	"chauffeur/internal/infra"
	"chauffeur/internal/maps"
	"chauffeur/internal/modules/catalog"
	"chauffeur/internal/modules/geocode"
	"chauffeur/internal/modules/order"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/modules/staging"
	"chauffeur/internal/modules/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	var (
		catalogSource catalog.Source
		ledger        order.Recorder
	)
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		sqlDB := infra.SQLDB(dbPool)
		defer sqlDB.Close()

		catalogSource = catalog.NewStore(dbPool)
		ledger = order.NewLedger(sqlDB)
	} else {
		log.Printf("[BOOT] action=no_database msg=using built-in vehicle catalog; unrecorded payments are only logged")
	}

	catalogSvc := catalog.NewService(catalogSource)
	if err := catalogSvc.Reload(ctx); err != nil {
		log.Printf("[BOOT] action=catalog_reload msg=keeping built-in vehicles: %v", err)
	}
	pricingSvc := pricing.NewService(catalogSvc)

	var provider geocode.Provider = geocode.Disabled{}
	if cfg.Maps.APIKey != "" {
		mapsClient, err := infra.NewMapsClient(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal(err)
		}
		provider = maps.NewGeocodeService(mapsClient, cfg.Maps.Language, cfg.Maps.Region)
	} else {
		log.Printf("[BOOT] action=no_maps_key msg=location suggestions disabled")
	}
	geocodeSvc := geocode.NewService(provider, cfg.Geocode.Timeout)

	orderClient := order.NewClient(cfg.Orders.Endpoint, cfg.Orders.Token, &http.Client{Timeout: cfg.Orders.Timeout + 5*time.Second})
	orderSvc := order.NewService(orderClient, ledger, cfg.Orders.Timeout)

	stagingStore := staging.NewStore(staging.NewRedisKV(redisClient, cfg.Redis.SessionTTL))
	wizardSvc := wizard.NewService(stagingStore, pricingSvc, orderSvc, geocodeSvc, cfg.Booking)

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.ServerDeps{
		Catalog:        catalogSvc,
		Geocode:        geocodeSvc,
		Wizard:         wizardSvc,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		SessionTTL:     cfg.Redis.SessionTTL,
		SecureCookies:  cfg.HTTP.SecureCookies,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[BOOT] action=shutdown msg=%v", err)
		}
	}()

	log.Printf("[BOOT] action=listen addr=%s currency=%s timezone=%s", cfg.HTTP.Addr, cfg.Booking.Currency, cfg.Booking.TimeZone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
