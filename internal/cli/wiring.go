package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"biosync/internal/adapters/device/memory"
	"biosync/internal/adapters/device/zk"
	"biosync/internal/adapters/sink/csvfile"
	"biosync/internal/adapters/sink/docstore"
	"biosync/internal/adapters/sink/jsonfile"
	"biosync/internal/adapters/sink/sqlstore"
	"biosync/internal/config"
	"biosync/internal/core/domain"
	"biosync/internal/core/ports"
	"biosync/internal/core/services"
)

func newDevice(cfg *config.Config) (ports.Device, error) {
	switch cfg.DeviceMode {
	case config.DeviceModeCSV:
		dev := memory.NewDevice(cfg.DeviceID, cfg.Location)
		if err := dev.LoadFromCSV(cfg.DeviceCSV); err != nil {
			return nil, fmt.Errorf("load device fixture %s: %w", cfg.DeviceCSV, err)
		}
		users, punches := dev.Count()
		slog.Info("device fixture loaded", "path", cfg.DeviceCSV, "users", users, "punches", punches)
		return dev, nil
	default:
		return zk.NewClient(cfg.DeviceID, cfg.DeviceAddress(), zk.Options{Location: cfg.Location}), nil
	}
}

// protocolLabel is what /api/health reports for the configured device.
func protocolLabel(cfg *config.Config) string {
	if cfg.DeviceMode == config.DeviceModeCSV {
		return "CSV fixture"
	}
	return fmt.Sprintf("ZK (Port %d)", cfg.DevicePort)
}

// newSinks opens every configured sink. The returned func closes the ones
// holding connections.
func newSinks(ctx context.Context, cfg *config.Config) ([]ports.Sink, func(), error) {
	var (
		sinks   []ports.Sink
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Error("error closing sink", "error", err)
			}
		}
	}

	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkJSON:
			sinks = append(sinks, jsonfile.NewSink(cfg.DataDir))
		case config.SinkCSV:
			sinks = append(sinks, csvfile.NewSink(filepath.Join(cfg.DataDir, "csv"), cfg.CSVLayout))
		case config.SinkDocstore:
			w, err := docstore.NewMongoWriter(ctx, cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("open document store: %w", err)
			}
			closers = append(closers, func() error { return w.Close(context.Background()) })
			sinks = append(sinks, docstore.NewSink(w))
		case config.SinkSQL:
			st, err := sqlstore.Open(cfg.SQLDSN)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("open sql archive: %w", err)
			}
			closers = append(closers, st.Close)
			sinks = append(sinks, st)
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown sink %q", name)
		}
	}
	if len(sinks) == 0 {
		return nil, nil, errors.New("no sinks configured")
	}
	return sinks, closeAll, nil
}

// newSyncService wires device, sinks and strategy from cfg. recorder may be
// nil.
func newSyncService(ctx context.Context, cfg *config.Config, recorder ports.RunRecorder) (*services.SyncServiceImpl, func(), error) {
	strategy, err := domain.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, nil, err
	}
	dev, err := newDevice(cfg)
	if err != nil {
		return nil, nil, err
	}
	sinks, closeSinks, err := newSinks(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := services.NewSyncService(dev, sinks, services.Options{
		StartDate: cfg.StartDate,
		Strategy:  strategy,
		Timeout:   cfg.DeviceTimeout,
		Recorder:  recorder,
	})
	return svc, closeSinks, nil
}
