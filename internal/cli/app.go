package cli

import (
	"io"

	"github.com/faturarapida/faturarapida/internal/blobstore"
	"github.com/faturarapida/faturarapida/internal/config"
	"github.com/faturarapida/faturarapida/internal/render"
	"github.com/faturarapida/faturarapida/internal/service"
	"github.com/faturarapida/faturarapida/internal/store"
)

// app bundles the wired components behind a command. Every command
// builds one, uses it and closes it; nothing is shared globally.
type app struct {
	cfg     config.Config
	records *store.Store
	blobs   *blobstore.Store
	svc     *service.Service
}

// openApp loads configuration (file if given, defaults otherwise,
// flag overrides last) and wires store, blob store and service.
func openApp(opts *RootOptions) (*app, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}
	if opts.Root != "" {
		cfg.ArtifactRoot = opts.Root
	}

	records, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	blobs, err := blobstore.New(cfg.ArtifactRoot)
	if err != nil {
		records.Close()
		return nil, WrapExitError(ExitCommandError, "open artifact store", err)
	}

	svc := service.New(service.Config{
		Records: records,
		Blobs:   blobs,
		Render:  render.PDF,
		TaxRate: cfg.TaxRateDecimal(),
	})

	return &app{cfg: cfg, records: records, blobs: blobs, svc: svc}, nil
}

func (a *app) Close() {
	a.records.Close()
}

func formatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}
