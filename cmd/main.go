package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"thermal_regulator/internal/actuator"
	"thermal_regulator/internal/config"
	"thermal_regulator/internal/control"
	"thermal_regulator/internal/handlers"
	"thermal_regulator/internal/keypad"
	"thermal_regulator/internal/logger"
	"thermal_regulator/internal/repository"
	"thermal_regulator/internal/repository/db"
	"thermal_regulator/internal/scheduler"
	"thermal_regulator/internal/sensor"
	"thermal_regulator/internal/server"
	"thermal_regulator/internal/service"
	"thermal_regulator/internal/telemetry"
)

const (
	keyQueueSize    = 64
	hubBuffer       = 8
	recorderBuffer  = 256
	sensorReadyPoll = 250 * time.Millisecond
)

func main() {
	// load config.yml; THERMO_CONFIG points at an explicit file
	cfg, err := config.Load(os.Getenv("THERMO_CONFIG"))
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer closeDB(conn, log)

	repos := repository.NewRepository(conn)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// hardware or simulator
	var sim *service.SimulatorService
	if cfg.Sensor.Driver == config.DriverSim || cfg.Actuator.Driver == config.DriverSim {
		sim = service.NewSimulatorService(cfg.Sim, time.Now)
	}
	probe, err := openSensor(cfg.Sensor, sim)
	if err != nil {
		log.Fatalw("failed to open sensor", "err", err, "driver", cfg.Sensor.Driver)
	}
	sink, err := openSink(cfg, sim)
	if err != nil {
		log.Fatalw("failed to open actuator", "err", err, "driver", cfg.Actuator.Driver)
	}
	if c, err := sensor.WaitReady(ctx, probe, cfg.Sensor.StartupTimeout, sensorReadyPoll); err != nil {
		log.Warnw("sensor_not_ready", "err", err)
	} else {
		log.Infow("sensor_ready", "reading_c", c)
	}

	// operator input
	queue := keypad.NewQueue(keyQueueSize)
	keys, closeKeys := openKeypad(ctx, cfg.Keypad, queue, log)
	defer closeKeys()

	// remote notifications
	hub := telemetry.NewHub(hubBuffer)
	remote := telemetry.Fanout{hub}
	var mqtt *telemetry.MQTTPublisher
	if cfg.MQTT.Enabled() {
		mqtt, err = telemetry.NewMQTTPublisher(telemetry.MQTTConfig{
			Broker:         cfg.MQTT.Broker,
			ClientID:       cfg.MQTT.ClientID,
			Topic:          cfg.MQTT.Topic,
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
		}, log.Named("mqtt"))
		if err != nil {
			log.Errorw("mqtt_disabled", "err", err, "broker", cfg.MQTT.Broker)
		} else {
			remote = append(remote, mqtt)
		}
	}

	// persistence runs off the control goroutine
	recorder := service.NewRecorderService(repos.StateRepo, repos.EventRepo, log.Named("recorder"), recorderBuffer)
	go recorder.Run()

	loop := scheduler.New(scheduler.Intervals{
		Control: cfg.Loop.Control,
		Status:  cfg.Loop.Status,
		Remote:  cfg.Loop.Remote,
		Poll:    cfg.Loop.Poll,
	}, scheduler.Deps{
		Controller: control.NewController(time.Now()),
		Keys:       keys,
		Ingest:     sensor.NewIngest(probe),
		Sink:       sink,
		Status:     telemetry.NewConsole(log.Named("status")),
		Remote:     remote,
		Recorder:   recorder,
		Log:        log.Named("loop"),
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("control loop stopped", "err", err)
		}
	}()

	// wire HTTP
	services := service.NewService(repos, service.Deps{
		Keys: queue,
		Live: loop,
		Auth: cfg.Auth,
	})
	apiHandler := handlers.NewHandler(services, hub, log.Named("http"))

	srv := &server.Server{}
	runHTTPServer(srv, cfg.HTTP, apiHandler, log)

	// graceful shutdown
	waitForSignal()
	log.Infow("shutting down...")

	// the loop turns the outputs off and records STOP before the recorder drains
	cancel()
	wg.Wait()
	recorder.Close()
	if err := sink.Close(); err != nil {
		log.Errorw("failed to release actuator", "err", err)
	}
	if mqtt != nil {
		_ = mqtt.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}

func openSensor(cfg config.SensorConfig, sim *service.SimulatorService) (sensor.Sensor, error) {
	switch cfg.Driver {
	case config.DriverSim:
		return sim, nil
	case config.DriverOneWire:
		return sensor.NewOneWire(cfg.W1Root, cfg.Device)
	default:
		return nil, fmt.Errorf("unsupported sensor driver %q", cfg.Driver)
	}
}

// openSink returns the actuator sink. The simulator always follows the commanded outputs so a
// simulated probe sees the heater even when a real relay is driven.
func openSink(cfg *config.Config, sim *service.SimulatorService) (actuator.Sink, error) {
	switch cfg.Actuator.Driver {
	case config.DriverSim:
		return sim, nil
	case config.DriverGPIO:
		a := cfg.Actuator
		gpio, err := actuator.NewGPIOSink(a.Chip, a.HeaterLine, a.PWMChip, a.PWMChannel)
		if err != nil {
			return nil, err
		}
		if sim != nil {
			return actuator.Multi{gpio, sim}, nil
		}
		return gpio, nil
	default:
		return nil, fmt.Errorf("unsupported actuator driver %q", cfg.Actuator.Driver)
	}
}

// openKeypad combines the remote key queue with the local matrix and stdin, whichever are
// configured. The returned func releases the matrix lines.
func openKeypad(ctx context.Context, cfg config.KeypadConfig, queue *keypad.Queue, log *logger.Logger) (keypad.Source, func()) {
	sources := keypad.Multi{queue}
	closeFn := func() {}

	if cfg.Driver == config.DriverMatrix {
		m, err := keypad.NewMatrix(cfg.Chip, cfg.Rows, cfg.Cols)
		if err != nil {
			log.Errorw("keypad_matrix_unavailable", "err", err, "chip", cfg.Chip)
		} else {
			sources = append(sources, m)
			closeFn = func() {
				if err := m.Close(); err != nil {
					log.Errorw("failed to release keypad", "err", err)
				}
			}
		}
	}
	if cfg.Console {
		go func() {
			if err := keypad.ReadConsole(ctx, os.Stdin, queue); err != nil && !errors.Is(err, context.Canceled) {
				log.Warnw("console_keypad_stopped", "err", err)
			}
		}()
	}
	return sources, closeFn
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg config.HTTPConfig, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(cfg, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForSignal blocks until SIGINT or SIGTERM.
func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func closeDB(conn *sql.DB, log *logger.Logger) {
	if err := conn.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}
