package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koinslot/kyflash/internal/app"
	"github.com/koinslot/kyflash/internal/config"
	"github.com/koinslot/kyflash/internal/fetch"
	"github.com/koinslot/kyflash/internal/flash"
	"github.com/koinslot/kyflash/internal/pages"
	"github.com/koinslot/kyflash/internal/serialport"
	"github.com/koinslot/kyflash/internal/store"
	"github.com/koinslot/kyflash/internal/volume"
)

func main() {
	cfg := config.Load()
	st := store.New(config.Dir())

	// Collaborators are built per run so settings edits take effect on
	// the next flash without a restart.
	install := func(ctx context.Context, ref fetch.Reference, events func(flash.Event)) flash.Outcome {
		orch := flash.New(
			serialport.NewLocator(identity(cfg)),
			serialport.NewToucher(),
			volume.New(volumeConfig(cfg)),
			fetch.NewClient(),
			flash.WithEvents(events),
			flash.WithTimings(flash.Timings{
				ProbeTimeout: cfg.ProbeTimeout(),
				WaitTimeout:  cfg.WaitTimeout(),
				RetouchDelay: cfg.RetouchDelay(),
				SettleDelay:  cfg.SettleDelay(),
			}),
		)
		return orch.Install(ctx, ref)
	}

	pageMap := map[app.PageID]app.Page{
		app.FirmwarePage: pages.NewFirmwarePage(&cfg),
		app.FlashPage:    pages.NewFlashPage(st, install),
		app.DevicesPage:  pages.NewDevicesPage(&cfg),
		app.HistoryPage:  pages.NewHistoryPage(st),
		app.SettingsPage: pages.NewSettingsPage(&cfg),
	}

	model := app.New(pageMap, &cfg)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func identity(cfg config.Config) serialport.Identity {
	return serialport.Identity{
		VendorID:   cfg.VendorID,
		ProductID:  cfg.ProductID,
		VendorName: cfg.VendorName,
	}
}

func volumeConfig(cfg config.Config) volume.Config {
	return volume.Config{
		Label:        cfg.VolumeLabel,
		MarkerFile:   cfg.MarkerFile,
		PollInterval: cfg.PollInterval(),
	}
}
