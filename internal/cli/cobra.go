package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LdDl/pointtrack-go/internal/config"
	"github.com/LdDl/pointtrack-go/internal/logging"
	"github.com/LdDl/pointtrack-go/pointtrack"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root Cobra command
func NewRootCmd(version string) *cobra.Command {
	var configPath string
	rootCmd := &cobra.Command{
		Use:   "pointtrack",
		Short: "Pointtrack follows operator chosen points through a frame sequence",
		Long: `Pointtrack tracks points across consecutive frames with pyramidal Lucas-Kanade
optical flow and exports their trajectories as semicolon separated records.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML, JSON or TOML)")

	rootCmd.AddCommand(newTrackCmd(&configPath))
	rootCmd.AddCommand(newVersionCmd(version))
	return rootCmd
}

type trackOptions struct {
	framesDir   string
	points      []string
	auto        int
	outDir      string
	overlaysDir string
}

func newTrackCmd(configPath *string) *cobra.Command {
	opts := trackOptions{}
	cmd := &cobra.Command{
		Use:   "track <frames_directory>",
		Short: "Track points through image files of a directory",
		Long: `Frames are the PNG/JPEG files of the directory in lexical order.
Points are seeded on the first frame with --point and/or --auto.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.framesDir = args[0]
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				opts.outDir = cfg.Export.Dir
			}
			if !cmd.Flags().Changed("overlays") {
				opts.overlaysDir = cfg.Export.OverlaysDir
			}
			logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr(), nil)
			path, err := runTrack(cfg, opts, logger)
			if err != nil {
				return err
			}
			cmd.Println(path)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&opts.points, "point", nil, "Seed point 'x,y' on the first frame, repeatable")
	cmd.Flags().IntVar(&opts.auto, "auto", 0, "Seed up to N strongest corners on the first frame")
	cmd.Flags().StringVar(&opts.outDir, "out", ".", "Directory for exported trajectories")
	cmd.Flags().StringVar(&opts.overlaysDir, "overlays", "", "Directory for rendered overlay PNGs, none when empty")
	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("pointtrack " + version)
		},
	}
}

// runTrack drives tracker over every frame and returns path of exported file
func runTrack(cfg *config.Config, opts trackOptions, logger zerolog.Logger) (string, error) {
	seeds := make([]pointtrack.Point, 0, len(opts.points))
	for _, s := range opts.points {
		p, err := parsePoint(s)
		if err != nil {
			return "", err
		}
		seeds = append(seeds, p)
	}
	if len(seeds) == 0 && opts.auto <= 0 {
		return "", errors.New("nothing to track: use --point or --auto")
	}
	paths, err := listFrames(opts.framesDir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", errors.Errorf("no frames in '%s'", opts.framesDir)
	}
	if opts.overlaysDir != "" {
		if err := os.MkdirAll(opts.overlaysDir, 0755); err != nil {
			return "", errors.Wrap(err, "Can't create overlays directory")
		}
	}
	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return "", errors.Wrap(err, "Can't create export directory")
	}

	params, err := cfg.TrackerParams()
	if err != nil {
		return "", err
	}
	sink := &logSink{logger: logger}
	tracker, err := pointtrack.NewLucasKanadeTracker(params, pointtrack.WithEventSink(sink), pointtrack.WithLogger(logger))
	if err != nil {
		return "", errors.Wrap(err, "Can't create tracker")
	}
	defer tracker.Close()
	logger.Info().Str("session", tracker.Session().String()).Int("frames", len(paths)).Msg("tracking started")

	st := time.Now()
	for frame, path := range paths {
		if err := trackFrame(tracker, frame, path, seeds, opts, logger); err != nil {
			return "", err
		}
		if sink.Paused() {
			logger.Warn().Int("frame", frame).Msg("playback paused on invalid point")
			break
		}
	}
	logger.Info().Dur("elapsed", time.Since(st)).Int("points", tracker.ObjectCount()).Msg("tracking done")

	exported, err := tracker.ExportToDir(opts.outDir, time.Now())
	if err != nil {
		return "", err
	}
	return exported, nil
}

// trackFrame loads one frame, tracks it and writes its overlay when requested
func trackFrame(tracker *pointtrack.LucasKanadeTracker, frame int, path string, seeds []pointtrack.Point, opts trackOptions, logger zerolog.Logger) error {
	img, err := loadFrame(path)
	if err != nil {
		return err
	}
	defer img.Close()
	res, err := tracker.TrackMat(frame, img)
	if err != nil {
		return errors.Wrapf(err, "Can't track frame %d", frame)
	}
	if frame == 0 {
		if err := seed(tracker, seeds, opts.auto, logger); err != nil {
			return err
		}
	}
	if len(res.Lost) > 0 {
		logger.Info().Int("frame", frame).Ints("ids", res.Lost).Msg("points lost")
	}
	if opts.overlaysDir == "" {
		return nil
	}
	// Overlay is drawn on the decoded frame itself: it is released right after
	canvas := pointtrack.NewMatCanvas(img)
	tracker.RenderOverlay(frame, canvas)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_overlay.png"
	return saveOverlay(filepath.Join(opts.overlaysDir, name), canvas.Mat)
}

func seed(tracker *pointtrack.LucasKanadeTracker, seeds []pointtrack.Point, auto int, logger zerolog.Logger) error {
	for _, p := range seeds {
		id, err := tracker.CreatePoint(p)
		if err != nil {
			if errors.Is(err, pointtrack.ErrTooClose) {
				continue
			}
			return errors.Wrapf(err, "Can't create point at %v", p)
		}
		logger.Debug().Int("id", id).Msg("seeded")
	}
	if auto > 0 {
		if _, err := tracker.AutoSeed(auto); err != nil {
			return errors.Wrap(err, "Can't seed points")
		}
	}
	return nil
}
