package app

import (
	"context"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koinslot/kyflash/internal/config"
	"github.com/koinslot/kyflash/internal/release"
)

// FirmwareItem is one flashable asset from a configured repo.
type FirmwareItem struct {
	Name   string
	Source string
	Size   int64
	Repo   string
	Tag    string
}

// FirmwareLoadedMsg carries the flashable assets of all configured
// repos. Err holds the first lookup failure; items from the repos that
// did answer are still included.
type FirmwareLoadedMsg struct {
	Items []FirmwareItem
	Err   error
}

// LoadFirmware fetches the latest release of every configured repo and
// collects their UF2 assets.
func LoadFirmware(repos []config.Repo) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client := release.NewClient()
		var items []FirmwareItem
		var firstErr error

		for _, r := range repos {
			rel, err := client.Latest(ctx, r.Owner, r.Repo)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			for _, a := range rel.UF2Assets() {
				items = append(items, FirmwareItem{
					Name:   a.Name,
					Source: a.DownloadURL,
					Size:   a.Size,
					Repo:   r.Owner + "/" + r.Repo,
					Tag:    rel.TagName,
				})
			}
		}

		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		return FirmwareLoadedMsg{Items: items, Err: firstErr}
	}
}
