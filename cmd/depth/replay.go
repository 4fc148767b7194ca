package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/depth.report/internal/db"
	"github.com/banshee-data/depth.report/internal/depthstats"
	"github.com/banshee-data/depth.report/internal/monitoring"
	"github.com/banshee-data/depth.report/internal/report"
	"github.com/banshee-data/depth.report/internal/security"
	"github.com/banshee-data/depth.report/internal/units"
)

type replayOutput struct {
	Session string `json:"session"`
	Name    string `json:"name"`
	report.ReplaySummary
	StatsSamples int      `json:"stats_samples"`
	Files        []string `json:"files"`
}

type sessionListing struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Started string `json:"started"`
}

func handleReplay(args []string, stdout io.Writer) error {
	fs := newFlagSet("replay", stdout)
	dbPath := fs.String("db", "depth.db", "Session database path")
	sessionID := fs.String("session", "", "Session id; lists sessions when empty")
	outDir := fs.String("out", "", "Directory for the stats chart and rotation plot (no reports when empty)")
	tz := fs.String("tz", "UTC", "Timezone for session times in the listing")
	configPath := fs.String("config", "", "Depth tuning JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !units.IsTimezoneValid(*tz) {
		return fmt.Errorf("invalid timezone %q", *tz)
	}
	settings, err := loadSettings(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if *sessionID == "" {
		sessions, err := database.ListSessions(ctx)
		if err != nil {
			return err
		}
		list := make([]sessionListing, 0, len(sessions))
		for _, s := range sessions {
			started, err := units.FormatSessionTime(s.StartedAt, *tz)
			if err != nil {
				return err
			}
			list = append(list, sessionListing{ID: s.ID, Name: s.Name, Started: started})
		}
		return writeJSON(stdout, list)
	}

	session, err := database.GetSession(ctx, *sessionID)
	if err != nil {
		return err
	}
	frames, err := database.Frames(ctx, session.ID)
	if err != nil {
		return err
	}
	samples, err := database.StatsSamples(ctx, session.ID)
	if err != nil {
		return err
	}

	out := replayOutput{
		Session:       session.ID,
		Name:          session.Name,
		ReplaySummary: report.Replay(frames),
		StatsSamples:  len(samples),
		Files:         []string{},
	}
	if out.MaxDeviation3DOF > 1e-9 {
		monitoring.Warnf("[replay] session %s: recomputed 3DOF matrices differ by %g", session.ID, out.MaxDeviation3DOF)
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return err
		}
		th := depthstats.Thresholds{
			MeanMin: settings.GetMeanThresholdMin(),
			MeanMax: settings.GetMeanThresholdMax(),
			StdMin:  settings.GetStdThresholdMin(),
			StdMax:  settings.GetStdThresholdMax(),
		}
		title := fmt.Sprintf("%s (%s)", session.Name, session.ID)

		htmlPath, err := security.ReportPath(*outDir, session.Name, "-stats.html")
		if err != nil {
			return err
		}
		if err := writeFile(htmlPath, func(w io.Writer) error {
			return report.WriteStatsHTML(w, title, samples, th)
		}); err != nil {
			return err
		}
		pngPath, err := security.ReportPath(*outDir, session.Name, "-rotation.png")
		if err != nil {
			return err
		}
		if err := writeFile(pngPath, func(w io.Writer) error {
			return report.WriteRotationPNG(w, title, report.RotationDeltas(frames))
		}); err != nil {
			return err
		}
		out.Files = append(out.Files, htmlPath, pngPath)
	}
	return writeJSON(stdout, out)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func handleMigrate(args []string, stdout io.Writer) error {
	fs := newFlagSet("migrate", stdout)
	dbPath := fs.String("db", "depth.db", "Session database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return db.RunMigrateCommand(stdout, fs.Args(), *dbPath)
}
