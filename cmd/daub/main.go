package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/esimov/daub"
	"github.com/esimov/daub/utils"
)

const helpBanner = `
┌┬┐┌─┐┬ ┬┌┐
 ││├─┤│ │├┴┐
─┴┘┴ ┴└─┘└─┘

Paint inside silhouettes, one region at a time.
    Version: %s

`

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Level file or directory of level files")
	destination = flag.String("out", "", "Destination image or directory (png, jpg, bmp)")
	assetsDir   = flag.String("assets", "", "Directory of the cutout images (defaults to the level directory)")
	configFile  = flag.String("config", "", "TOML configuration file")
	brushSize   = flag.Int("brush", 0, "Brush diameter")
	softBrush   = flag.Bool("soft", true, "Use a soft edged brush")
	threshold   = flag.Float64("threshold", 0, "Coverage needed to complete a region")
	gridSize    = flag.Int("grid", 0, "Side of the coverage grid")
	async       = flag.Bool("async", false, "Measure the coverage off the event loop")
	preview     = flag.Bool("preview", false, "Paint the level interactively")
	verbose     = flag.Bool("v", false, "Log the engine activity")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of level files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		daub.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf(utils.DecorateText("Invalid configuration: %v", utils.ErrorMessage), err)
	}

	if *preview {
		runPreview(cfg)
		return
	}

	var fs os.FileInfo
	if *source == pipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(*source)
	}
	if err != nil {
		log.Fatalf(
			utils.DecorateText("Failed to load the level: %v", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ DAUB", utils.StatusMessage),
		utils.DecorateText("⇢ replaying the strokes...", utils.DefaultMessage))
	spinner := utils.NewSpinner(os.Stderr, spinnerText, time.Millisecond*80)

	// Capture CTRL-C signal and restore the cursor visibility back.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		spinner.RestoreCursor()
	}()

	now := time.Now()
	spinner.Start()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		// Limit the concurrently running workers to maxWorkers.
		if *workers <= 0 || *workers > maxWorkers {
			*workers = runtime.NumCPU()
		}
		var results []result
		err = paintDir(ctx, *source, *destination, ".png", *assetsDir, *workers, cfg, func(res result) {
			results = append(results, res)
		})
		spinner.Stop()
		for _, res := range results {
			printStatus(res)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		res := paintLevel(ctx, *source, *destination, *assetsDir, cfg)
		spinner.Stop()
		printStatus(res)
	default:
		spinner.Stop()
		log.Fatal(utils.DecorateText("The source should be a level file, a directory or a pipe!", utils.ErrorMessage))
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// loadConfig reads the optional configuration file, then applies the
// flags explicitly set on the command line.
func loadConfig() (daub.Config, error) {
	cfg := daub.DefaultConfig()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			return cfg, err
		}
		defer f.Close()

		if cfg, err = daub.LoadConfig(f); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "brush":
			cfg.BrushDiameter = *brushSize
		case "soft":
			cfg.SoftBrush = *softBrush
		case "threshold":
			cfg.WinThreshold = *threshold
		case "grid":
			cfg.GridSize = *gridSize
		case "async":
			cfg.AsyncCoverage = *async
		}
	})
	return cfg, cfg.Validate()
}

// runPreview opens the level in a Gio window. The stroke script, if any,
// is replayed before the user takes over.
func runPreview(cfg daub.Config) {
	if *source == pipeName {
		log.Fatal(utils.DecorateText("The preview mode needs a level file!", utils.ErrorMessage))
	}
	f, err := os.Open(*source)
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to load the level: %v", utils.ErrorMessage), err)
	}
	defer f.Close()

	assets := *assetsDir
	if assets == "" {
		assets = filepath.Dir(*source)
	}
	s, err := openSession(f, assets, cfg, func(id string, used daub.ColorSet) {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			utils.DecorateText(fmt.Sprintf("✔ %s", id), utils.SuccessMessage),
			utils.DecorateText(fmt.Sprintf("completed with %d color(s)", used.Len()), utils.DefaultMessage),
		)
	})
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to build the level: %v", utils.ErrorMessage), err)
	}
	if err := s.replay(context.Background()); err != nil {
		log.Fatalf(utils.DecorateText("Failed to replay the strokes: %v", utils.ErrorMessage), err)
	}

	title := s.level.Name
	if title == "" {
		title = filepath.Base(*source)
	}
	gui := NewGUI(s.engine, s.level.Bounds(s.reg), s.bg, title)

	go func() {
		if err := gui.Run(); err != nil {
			log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
		if *destination != "" {
			if err := exportTo(s, *destination); err != nil {
				log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
			}
		}
		os.Exit(0)
	}()
	app.Main()
}

// exportTo writes the composed level to the out path.
func exportTo(s *session, out string) error {
	if out == pipeName {
		return s.export(os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	defer f.Close()

	return s.export(f)
}

// printStatus displays the relevant information about a painted level.
func printStatus(res result) {
	if res.err != nil {
		fmt.Fprintf(os.Stderr, "\n%s%s",
			utils.DecorateText(fmt.Sprintf("Error painting %s", res.path), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", res.err), utils.DefaultMessage),
		)
		return
	}
	status := fmt.Sprintf("%d/%d regions completed", res.finished, res.total)
	if res.finished == res.total {
		status = utils.DecorateText(status, utils.SuccessMessage)
	}
	fmt.Fprintf(os.Stderr, "\n%s: %s", filepath.Base(res.path), status)
	if res.out != "" && res.out != pipeName {
		fmt.Fprintf(os.Stderr, ", saved as %s", utils.DecorateText(filepath.Base(res.out), utils.SuccessMessage))
	}
	fmt.Fprintln(os.Stderr)
}
