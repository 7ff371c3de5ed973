package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/planbiir/gpause/internal/config"
	"github.com/planbiir/gpause/internal/logging"
	"github.com/planbiir/gpause/internal/pause"
	"github.com/planbiir/gpause/internal/report"
	"github.com/planbiir/gpause/internal/service"
	"github.com/planbiir/gpause/internal/store"
)

func main() {
	defaults := pause.DefaultConfig()

	var (
		inputFile  = flag.String("i", "", "Input GPX file")
		annotated  = flag.String("o", "", "Write the input with one waypoint per pause to this file")
		stripped   = flag.String("strip", "", "Write the track without the fixes inside each pause to this file")
		asJSON     = flag.Bool("json", false, "Print the report as JSON")
		configFile = flag.String("config", "", "Config file (default: gpause.yaml in . or ./configs)")
		dbPath     = flag.String("db", "", "SQLite database to store the analysis in")
		verbose    = flag.Bool("v", false, "Log every pause transition")
		version    = flag.Bool("version", false, "Show version information")

		distStart       = flag.Float64("dist-start", defaults.DistStart, "Max spread in meters over the start window to open a pause")
		distEnd         = flag.Float64("dist-end", defaults.DistEnd, "Min spread in meters over the end window to close a pause")
		timeWindowStart = flag.Float64("time-window-start", defaults.TimeWindowStart, "Start window in seconds")
		timeWindowEnd   = flag.Float64("time-window-end", defaults.TimeWindowEnd, "End window in seconds")
		paceStart       = flag.Float64("pace-start", defaults.PaceStart, "Pace in min/km above which a pause may open")
		paceEnd         = flag.Float64("pace-end", defaults.PaceEnd, "Pace in min/km below which a pause may close")
		nStart          = flag.Int("n-start", defaults.NStart, "Segments averaged for the start pace")
		nEnd            = flag.Int("n-end", defaults.NEnd, "Segments averaged for the end pace")
		densityThresh   = flag.Float64("density-thresh", defaults.DensityThresh, "Points per second below which a pause may open")
		densityWindow   = flag.Float64("density-window", defaults.DensityWindow, "Density window in seconds")
	)

	flag.Usage = func() {
		fmt.Printf("gpause - Detect pauses in GPX tracks\n\n")
		fmt.Printf("usage: gpause -i /path/to/file.gpx\n\n")
		fmt.Printf("examples:\n")
		fmt.Printf("  gpause -i track.gpx\n")
		fmt.Printf("  gpause -i track.gpx -o track_pauses.gpx\n")
		fmt.Printf("  gpause -i track.gpx -strip track_moving.gpx -json\n")
		fmt.Printf("  gpause -i track.gpx -pace-start 12 -db gpause.db\n\n")
		fmt.Printf("options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("gpause v1.0.0 - GPS pause detection")
		fmt.Println("https://github.com/planbiir/gpause")
		os.Exit(0)
	}

	if *inputFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(2)
	}

	// Flags only override the loaded config when given explicitly
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dist-start":
			cfg.Detection.DistStart = *distStart
		case "dist-end":
			cfg.Detection.DistEnd = *distEnd
		case "time-window-start":
			cfg.Detection.TimeWindowStart = *timeWindowStart
		case "time-window-end":
			cfg.Detection.TimeWindowEnd = *timeWindowEnd
		case "pace-start":
			cfg.Detection.PaceStart = *paceStart
		case "pace-end":
			cfg.Detection.PaceEnd = *paceEnd
		case "n-start":
			cfg.Detection.NStart = *nStart
		case "n-end":
			cfg.Detection.NEnd = *nEnd
		case "density-thresh":
			cfg.Detection.DensityThresh = *densityThresh
		case "density-window":
			cfg.Detection.DensityWindow = *densityWindow
		case "db":
			cfg.Store.Path = *dbPath
		case "v":
			if *verbose {
				cfg.Log.Level = "debug"
			}
		}
	})

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	detector, err := pause.NewDetector(cfg.Detection, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	analyzer := service.NewAnalyzer(detector, logger)

	// Keep stdout clean for the JSON report
	var progress io.Writer = os.Stdout
	if *asJSON {
		progress = os.Stderr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(progress, "📖 Reading GPX file: %s\n", *inputFile)
	analysis, err := analyzer.AnalyzeFile(ctx, *inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing track: %v\n", err)
		os.Exit(1)
	}

	r := analysis.Report
	points, tracks, segments, duration, _ := analysis.Doc.Stats()
	fmt.Fprintf(progress, "📊 Track: %d points across %d tracks / %d segments, %v\n", points, tracks, segments, duration)
	if r.DroppedPoints > 0 {
		fmt.Fprintf(progress, "⚠️  %d points without timestamp ignored\n", r.DroppedPoints)
	}
	fmt.Fprintf(progress, "⏸️  %d pauses found\n", len(r.Pauses))

	if cfg.Store.Path != "" {
		id, err := saveReport(ctx, cfg.Store.Path, r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error storing analysis: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(progress, "🗄️  Stored analysis %s in %s\n", id, cfg.Store.Path)
	}

	if *asJSON {
		jsonData, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling report: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	} else if err := report.WriteText(os.Stdout, r); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	if *annotated != "" {
		n := analysis.Annotate()
		fmt.Fprintf(progress, "💾 Writing annotated track (%d waypoints): %s\n", n, *annotated)
		if err := analysis.Doc.Write(*annotated); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing GPX file: %v\n", err)
			os.Exit(1)
		}
	}

	if *stripped != "" {
		n := analysis.Strip()
		fmt.Fprintf(progress, "💾 Writing track without pauses (%d points removed): %s\n", n, *stripped)
		if err := analysis.Doc.Write(*stripped); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing GPX file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(progress, "✅ Track analyzed successfully!\n")
}

func saveReport(ctx context.Context, path string, r *report.Report) (string, error) {
	s, err := store.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer s.Close()

	return s.Save(ctx, r)
}
