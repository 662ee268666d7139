package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"example.com/pos-scanner/internal/config"
	domorder "example.com/pos-scanner/internal/domain/order"
	domproduct "example.com/pos-scanner/internal/domain/product"
	"example.com/pos-scanner/internal/infra/barcode"
	"example.com/pos-scanner/internal/infra/camera"
	"example.com/pos-scanner/internal/infra/persistence/memory"
	"example.com/pos-scanner/internal/infra/persistence/mysql"
	"example.com/pos-scanner/internal/infra/persistence/postgres"
	"example.com/pos-scanner/internal/infra/sound"
	httpapi "example.com/pos-scanner/internal/interface/http"
	"example.com/pos-scanner/internal/scheduler"
	cartuc "example.com/pos-scanner/internal/usecase/cart"
	checkoutuc "example.com/pos-scanner/internal/usecase/checkout"
	orderuc "example.com/pos-scanner/internal/usecase/order"
	productuc "example.com/pos-scanner/internal/usecase/product"
	reportuc "example.com/pos-scanner/internal/usecase/report"
	scanuc "example.com/pos-scanner/internal/usecase/scan"
	"example.com/pos-scanner/pkg/logger"
)

type store struct {
	products domproduct.Repository
	orders   domorder.Repository
	check    func(ctx context.Context) error
	close    func()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		return &store{
			products: postgres.NewProductRepository(pool),
			orders:   postgres.NewOrderRepository(pool),
			check:    pool.Ping,
			close:    pool.Close,
		}, nil
	default:
		db, err := mysql.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return &store{
			products: mysql.NewProductRepository(db),
			orders:   mysql.NewOrderRepository(db),
			check:    db.PingContext,
			close:    func() { _ = db.Close() },
		}, nil
	}
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	st, err := openStore(context.Background(), cfg.Store)
	if err != nil {
		baseLogger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	cart := memory.NewCartStore()
	productSvc := productuc.NewService(st.products)
	orderSvc := orderuc.NewService(st.orders)

	var beeper scanuc.Beeper = sound.Silent{}
	if cfg.Beep.Enabled {
		b := sound.NewBeeper(cfg.Beep.Frequency, cfg.Beep.Duration, logger.Named(baseLogger, "sound"))
		defer b.Close()
		beeper = b
	}

	scanner := scanuc.NewScanner(scanuc.Config{
		CameraIndex: cfg.Camera.Index,
		Cooldown:    cfg.Scan.Cooldown,
		Enhancement: scanuc.Enhancement{Gain: cfg.Scan.ContrastGain, Offset: cfg.Scan.BrightnessOffset},
		FrameDelay:  cfg.Scan.FrameDelay,
		JPEGQuality: cfg.Scan.JPEGQuality,
	}, scanuc.Dependencies{
		Device:    camera.NewDevice(cfg.Camera.Width, cfg.Camera.Height),
		Reader:    barcode.NewReader(),
		Annotator: barcode.NewAnnotator(),
		Catalog:   productSvc,
		Cart:      cart,
		Beeper:    beeper,
		Logger:    logger.Named(baseLogger, "scan"),
	})

	api := httpapi.NewAPI(httpapi.Dependencies{
		ProductService:  productSvc,
		CartService:     cartuc.NewService(cart),
		CheckoutService: checkoutuc.NewService(cart, st.orders, logger.Named(baseLogger, "checkout")),
		OrderService:    orderSvc,
		Scanner:         scanner,
		StoreCheck:      st.check,
		ScanTimeouts: httpapi.ScanTimeouts{
			Default: cfg.Scan.DefaultTimeout,
			Max:     cfg.Scan.MaxTimeout,
		},
		Logger: logger.Named(baseLogger, "http"),
	})

	sched := scheduler.NewScheduler(cfg.Reporting.CronSchedule, reportuc.NewService(orderSvc), logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Scan.MaxTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	scanner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
