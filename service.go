package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aura_backend/core"
	"aura_backend/logging"
	"aura_backend/shutdown"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serviceName identifies the installed system service.
const serviceName = "aura-extractor"

// serviceStopGrace is added to the shutdown timeout when waiting in Stop.
const serviceStopGrace = 5 * time.Second

// program adapts the server to service.Interface so it can run under the
// Windows service manager, systemd or launchd.
type program struct {
	manager *shutdown.Manager
	logger  *logging.Logger
	timeout time.Duration
	done    chan error

	// start builds and serves the app; replaced in tests.
	start func(ctx context.Context, manager *shutdown.Manager) error
}

func newProgram() *program {
	return &program{done: make(chan error, 1)}
}

// Start must not block; the server runs on its own goroutine.
func (p *program) Start(s service.Service) error {
	if p.start == nil {
		cfg, err := core.LoadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		p.logger = logger
		p.timeout = cfg.ShutdownTimeout
		p.start = func(ctx context.Context, m *shutdown.Manager) error {
			return serve(ctx, cfg, logger, m)
		}
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	if p.timeout <= 0 {
		p.timeout = shutdown.DefaultTimeout
	}

	p.manager = shutdown.NewManager(p.logger, shutdown.WithTimeout(p.timeout))
	p.logger.Info("service starting", zap.Bool("interactive", service.Interactive()))
	go func() {
		p.done <- p.start(context.Background(), p.manager)
	}()
	return nil
}

// Stop begins shutdown and waits for it to finish.
func (p *program) Stop(s service.Service) error {
	if p.manager == nil {
		return nil
	}
	p.manager.Cancel()

	select {
	case err := <-p.done:
		return err
	case <-time.After(p.timeout + serviceStopGrace):
		return errors.New("timeout waiting for service to stop")
	}
}

func serviceConfig() *service.Config {
	return &service.Config{
		Name:        serviceName,
		DisplayName: "Aura Business Brief Extractor",
		Description: "Extracts structured fields from uploaded business briefs.",
		Arguments:   []string{"service", "run"},
		Option: service.KeyValue{
			"StartType": "automatic",
			"Restart":   "on-failure",
		},
	}
}

// serviceActions maps service subcommands to their service.Service calls.
var serviceActions = map[string]func(service.Service) error{
	"install":   service.Service.Install,
	"uninstall": service.Service.Uninstall,
	"start":     service.Service.Start,
	"stop":      service.Service.Stop,
	"restart":   service.Service.Restart,
}

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the system service",
		Long: `Install, control or run aura as a system service (Windows service,
systemd unit or launchd agent depending on the platform).`,
	}

	for _, name := range []string{"install", "uninstall", "start", "stop", "restart"} {
		action := serviceActions[name]
		cmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("%s the %s service", name, serviceName),
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				s, err := service.New(newProgram(), serviceConfig())
				if err != nil {
					return fmt.Errorf("create service: %w", err)
				}
				if err := action(s); err != nil {
					return fmt.Errorf("%s service: %w", c.Name(), err)
				}
				fmt.Fprintf(c.OutOrStdout(), "Service %s: %s ok\n", serviceName, c.Name())
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the service status",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			s, err := service.New(newProgram(), serviceConfig())
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}
			status, err := s.Status()
			if err != nil && !errors.Is(err, service.ErrNotInstalled) {
				return fmt.Errorf("service status: %w", err)
			}
			fmt.Fprintf(c.OutOrStdout(), "Service %s is %s\n", serviceName, statusText(status, err))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			s, err := service.New(newProgram(), serviceConfig())
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}
			return s.Run()
		},
	})
	return cmd
}

func statusText(status service.Status, err error) string {
	if errors.Is(err, service.ErrNotInstalled) {
		return "not installed"
	}
	switch status {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "in an unknown state"
	}
}
