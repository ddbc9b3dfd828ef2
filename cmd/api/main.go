package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "waqf-platform-backend/internal/adapter/http"
	appmw "waqf-platform-backend/internal/adapter/middleware"
	"waqf-platform-backend/internal/adapter/repository/mysql"
	"waqf-platform-backend/internal/config"
	"waqf-platform-backend/internal/infrastructure/cache"
	"waqf-platform-backend/internal/infrastructure/db"
	"waqf-platform-backend/internal/infrastructure/lock"
	"waqf-platform-backend/internal/usecase/dispatch"
	"waqf-platform-backend/internal/usecase/donationhooks"
	"waqf-platform-backend/internal/usecase/tranche"
	"waqf-platform-backend/internal/usecase/waqfhooks"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := mysql.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	store := mysql.NewDocumentStore(gdb)
	locks := lock.NewRedisLocker(rdb, time.Duration(cfg.WaqfLockTTLSecs)*time.Second)

	svc := dispatch.NewWriteService(store)
	svc.Register("waqfs", waqfhooks.NewHook(waqfhooks.NewValidator(cfg.EnforceHybridAllocationSums), store))
	svc.Register("donations", donationhooks.NewHook(donationhooks.NewUpdater(store, locks)))
	svc.Register("tranche_returns", dispatch.NewReturnsHook())

	trancheUC := tranche.NewUsecase(store, locks)

	h := httpadp.NewHandler()
	docH := httpadp.NewDocHandler(svc)
	donationH := httpadp.NewDonationHandler(svc)
	trancheH := httpadp.NewTrancheHandler(trancheUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := appmw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	// routes
	e.GET("/health", h.Health)

	e.GET("/collections/:collection/docs", docH.ListDocs)
	e.GET("/collections/:collection/docs/:key", docH.GetDoc)
	e.PUT("/collections/:collection/docs/:key", docH.PutDoc, idemp)
	e.DELETE("/collections/:collection/docs/:key", docH.DeleteDoc, idemp)

	e.POST("/donations", donationH.CreateDonation, idemp)

	e.POST("/waqfs/:waqf_id/tranches/:tranche_id/return", trancheH.ReturnTranche, idemp)
	e.POST("/waqfs/:waqf_id/tranches/:tranche_id/rollover", trancheH.RolloverTranche, idemp)
	e.POST("/waqfs/:waqf_id/tranches/:tranche_id/convert", trancheH.ConvertTranche, idemp)
	e.POST("/waqfs/:waqf_id/tranches/:tranche_id/installments/pay", trancheH.PayInstallment, idemp)
	e.POST("/waqfs/:waqf_id/tranches/sweep", trancheH.SweepMatured, idemp)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
