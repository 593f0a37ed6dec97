package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/example/room-planner/internal/application"
	"github.com/example/room-planner/internal/logging"
)

// seedCatalog is the YAML document read by "planner seed".
type seedCatalog struct {
	Admin *seedAdmin `yaml:"admin"`
	Rooms []seedRoom `yaml:"rooms"`
}

type seedAdmin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type seedRoom struct {
	Name     string     `yaml:"name"`
	Capacity int        `yaml:"capacity"`
	Slots    []seedSlot `yaml:"slots"`
}

type seedSlot struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type seedSummary struct {
	RoomsCreated int
	SlotsCreated int
	AdminID      string
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create rooms, slots and an optional admin account from a YAML catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := readSeedCatalog(file)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.LogFormat)

			app, err := buildComponents(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			summary, err := applySeed(cmd.Context(), app, catalog)
			if err != nil {
				return err
			}
			printSeedSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "YAML catalog to load")
	return cmd
}

func readSeedCatalog(path string) (seedCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return seedCatalog{}, fmt.Errorf("read seed file: %w", err)
	}
	var catalog seedCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return seedCatalog{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return catalog, nil
}

// applySeed is idempotent: rooms are matched by name and slots by window.
func applySeed(ctx context.Context, app *components, catalog seedCatalog) (seedSummary, error) {
	var summary seedSummary
	principal := application.Principal{UserID: "seed", IsAdmin: true}

	if catalog.Admin != nil {
		admin, err := app.users.RegisterAdmin(ctx, application.RegisterInput{
			Name:     catalog.Admin.Name,
			Email:    catalog.Admin.Email,
			Password: catalog.Admin.Password,
		})
		if err != nil {
			return summary, fmt.Errorf("seed admin %s: %w", catalog.Admin.Email, err)
		}
		summary.AdminID = admin.ID
		principal.UserID = admin.ID
	}

	existing, err := app.rooms.ListRooms(ctx, 0)
	if err != nil {
		return summary, err
	}
	byName := make(map[string]application.Room, len(existing))
	for _, room := range existing {
		byName[strings.ToLower(room.Name)] = room
	}

	for _, entry := range catalog.Rooms {
		room, ok := byName[strings.ToLower(strings.TrimSpace(entry.Name))]
		if !ok {
			room, err = app.rooms.CreateRoom(ctx, application.CreateRoomParams{
				Principal: principal,
				Input:     application.RoomInput{Name: entry.Name, Capacity: entry.Capacity},
			})
			if err != nil {
				return summary, fmt.Errorf("seed room %q: %w", entry.Name, err)
			}
			byName[strings.ToLower(room.Name)] = room
			summary.RoomsCreated++
		}

		have := make(map[string]bool)
		if slots, err := app.rooms.RoomSchedules(ctx, room.ID); err == nil {
			for _, s := range slots {
				have[s.Start.String()+"-"+s.End.String()] = true
			}
		}

		for _, slot := range entry.Slots {
			if have[strings.TrimSpace(slot.Start)+"-"+strings.TrimSpace(slot.End)] {
				continue
			}
			created, err := app.rooms.AddSlot(ctx, application.AddSlotParams{
				Principal: principal,
				RoomID:    room.ID,
				Start:     slot.Start,
				End:       slot.End,
			})
			if err != nil {
				return summary, fmt.Errorf("seed slot %s-%s of %q: %w", slot.Start, slot.End, entry.Name, err)
			}
			have[created.Start.String()+"-"+created.End.String()] = true
			summary.SlotsCreated++
		}
	}
	return summary, nil
}

func printSeedSummary(w io.Writer, s seedSummary) {
	if s.AdminID != "" {
		fmt.Fprintf(w, "admin user %s\n", s.AdminID)
	}
	fmt.Fprintf(w, "rooms created: %d\nslots created: %d\n", s.RoomsCreated, s.SlotsCreated)
}
