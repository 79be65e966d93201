package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	om "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/buttplugd/internal/config"
	"github.com/srg/buttplugd/internal/devicemanager"
	"github.com/srg/buttplugd/internal/feature"
	"github.com/srg/buttplugd/internal/groutine"
	"github.com/srg/buttplugd/internal/hardware"
	"github.com/srg/buttplugd/internal/hardware/mock"
	"github.com/srg/buttplugd/internal/protocol"
	"github.com/srg/buttplugd/internal/protocol/handlers"
	"github.com/srg/buttplugd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Buttplug WebSocket server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	cfg := config.DefaultServerConfig()
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.ListenAddr = listen
	}
	if maxPing, _ := cmd.Flags().GetDuration("max-ping-time"); maxPing > 0 {
		cfg.MaxPingTime = maxPing
	}

	devicePath, _ := cmd.Flags().GetString("device-config")
	userPath, _ := cmd.Flags().GetString("user-config")
	file, err := loadDeviceConfig(devicePath, userPath)
	if err != nil {
		return err
	}

	table := config.BuildTable(file)

	registry := protocol.NewRegistry()
	handlers.Register(registry)

	manager := devicemanager.New(table, registry, logger)

	allowMode, _ := cmd.Flags().GetBool("allow-mode")
	manager.SetAllowMode(allowMode)

	ctx := cmd.Context()

	simulate, _ := cmd.Flags().GetBool("simulate")
	if simulate {
		cm := mock.NewCommunicationManager("simulated")
		manager.RegisterCommunicationManager(ctx, cm)
		groutine.Go(ctx, "buttplugd.simulate.demoDevice", func(ctx context.Context) {
			emitDemoDeviceOnScan(ctx, cm, logger)
		})
	}

	srv := server.New(manager, cfg, logger)
	logger.WithField("address", cfg.ListenAddr).Info("buttplugd listening")
	return srv.ListenAndServe(ctx)
}

// emitDemoDeviceOnScan advertises one simulated vibrator half a second after
// startup, whether or not StartScanning has been called, standing in for a
// real communication manager
// (concrete transport drivers are out of scope; see DESIGN.md).
func emitDemoDeviceOnScan(ctx context.Context, cm *mock.CommunicationManager, logger *logrus.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(500 * time.Millisecond):
	}
	dev := mock.NewDevice("Simulated Vibrator", "00:00:00:00:00:01").
		WithEndpoints(hardware.EndpointTx).
		Build()
	connector := &mock.Connector{Dev: dev, Spec: hardware.Specifier{Name: "Simulated Vibrator"}}
	logger.Info("simulated communication manager advertising demo device")
	cm.Emit("Simulated Vibrator", dev.Address(), connector)
}

// loadDeviceConfig reads the base device configuration file (falling back to
// a minimal built-in catalog when none is supplied) and merges an optional
// user overlay onto it (spec section 6).
func loadDeviceConfig(devicePath, userPath string) (*config.File, error) {
	var base *config.File
	if devicePath == "" {
		base = builtinDeviceConfig()
	} else {
		data, err := os.ReadFile(devicePath)
		if err != nil {
			return nil, err
		}
		parsed, err := config.ParseFile(data)
		if err != nil {
			return nil, err
		}
		base = parsed
	}

	if userPath == "" {
		return base, nil
	}
	data, err := os.ReadFile(userPath)
	if err != nil {
		return nil, err
	}
	overlay, err := config.ParseFile(data)
	if err != nil {
		return nil, err
	}
	return base.Merge(overlay), nil
}

// builtinDeviceConfig is the fallback catalog used when no --device-config
// is given: one entry matching the simulated communication manager's demo
// device, resolved through the generic-single-byte handler.
func builtinDeviceConfig() *config.File {
	vibrateOutput := om.New[feature.OutputType, feature.Range]()
	vibrateOutput.Set(feature.OutputVibrate, feature.Range{Min: 0, Max: 20})

	demoFeature := &feature.DeviceFeature{
		ID:          uuid.New(),
		Description: "Vibration motor",
		Output:      vibrateOutput,
	}

	return &config.File{
		Version: config.FileVersion{Major: 1, Minor: 0},
		Protocols: map[string]config.ProtocolConfig{
			"generic-single-byte": {
				Communication: []hardware.Specifier{
					{Name: "Simulated Vibrator"},
				},
				Defaults: &config.DeviceConfigEntry{
					Name:     "Simulated Vibrator",
					Features: []*feature.DeviceFeature{demoFeature},
				},
			},
		},
	}
}
