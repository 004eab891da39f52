package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/qrship"
	"github.com/bft-labs/qrship/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/qrship/internal/adapters/http"
	logAdapter "github.com/bft-labs/qrship/internal/adapters/log"
	"github.com/bft-labs/qrship/internal/cliconfig"
	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/watch"
)

const longHelp = `Render files as a numbered sequence of QR codes for devices that can only
receive data through a camera.

Each file is framed with its name and 4-byte type tag, zlib-compressed, split
into fixed-size chunks and stamped with per-chunk and whole-file checksums.
Scan the codes in order on the device to rebuild the file.`

var exampleUsage = strings.TrimSpace(`
  qrship render --input files.json --out ./codes
  qrship render --input files.json --watch
  qrship encode GAME.PRG --name GAME --out ./codes
  qrship serve --listen :8080
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig(), log: cliconfig.NewLogger("info")}

	root := &cobra.Command{
		Use:               "qrship",
		Short:             "Render files as QR code sequences for camera-only devices",
		Long:              longHelp,
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "path to config file, .toml or .yaml (default: $HOME/.qrship/config.toml)")
	pf.IntVar(&c.cfg.BytesPerCode, "bytes-per-code", c.cfg.BytesPerCode, "container bytes carried by each code")
	pf.IntVar(&c.cfg.QRVersion, "qr-version", c.cfg.QRVersion, "forced QR symbol version (1-40)")
	pf.StringVar(&c.cfg.ECC, "ecc", c.cfg.ECC, "error correction level (L, M, Q, H)")
	pf.StringVar(&c.cfg.Checksum, "checksum", c.cfg.Checksum, "frame checksum algorithm (md5, blake3)")
	pf.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.BoolVar(&c.cfg.NoProgress, "no-progress", c.cfg.NoProgress, "disable the progress bar")

	root.AddCommand(c.renderCommand(), c.encodeCommand(), c.serveCommand())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		c.log.Error().Err(err).Msg("qrship")
		os.Exit(1)
	}
}

// loadConfig layers file, then environment, under explicitly set flags.
func (c *cli) loadConfig(cmd *cobra.Command, args []string) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log = cliconfig.NewLogger(c.cfg.LogLevel)
	c.log.Debug().Interface("config", c.cfg).Msg("configuration")
	return nil
}

func (c *cli) pipeline(cfg domain.QrConfig, observer qrship.Observer) (*qrship.Pipeline, error) {
	opts := []qrship.Option{
		qrship.WithLogger(logAdapter.NewZerologAdapter(c.log)),
		qrship.WithChecksum(c.cfg.Checksum),
	}
	if observer != nil {
		opts = append(opts, qrship.WithObserver(observer))
	}
	return qrship.New(cfg, opts...)
}

func (c *cli) renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render every file listed in a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Input == "" {
				return fmt.Errorf("input is required")
			}
			once := func(ctx context.Context) error {
				text, err := readInput(c.cfg.Input)
				if err != nil {
					return err
				}
				files, err := qrship.LoadDocument(text)
				if err != nil {
					return err
				}
				return c.renderAndWrite(ctx, files)
			}

			if !c.cfg.Watch {
				return once(cmd.Context())
			}
			if c.cfg.Input == "-" {
				return fmt.Errorf("--watch needs a file input, not stdin")
			}
			w := watch.New(watch.Config{
				Path:          c.cfg.Input,
				DebounceDelay: c.cfg.DebounceDelay,
			}, once, logAdapter.NewZerologAdapter(c.log))
			c.log.Info().Str("input", c.cfg.Input).Msg("watching input for changes")
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&c.cfg.Input, "input", c.cfg.Input, "JSON document to render, or - for stdin")
	cmd.Flags().StringVar(&c.cfg.OutDir, "out", c.cfg.OutDir, "output directory")
	cmd.Flags().BoolVar(&c.cfg.Watch, "watch", c.cfg.Watch, "re-render whenever the input changes")
	cmd.Flags().DurationVar(&c.cfg.DebounceDelay, "debounce", c.cfg.DebounceDelay, "delay after a change before re-rendering")
	return cmd
}

func (c *cli) encodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode FILE",
		Short: "Render one raw file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			name := c.cfg.Name
			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}
			if len(name) > domain.NameSize {
				c.log.Warn().Str("name", name).Int("max", domain.NameSize).Msg("name will be truncated")
			}
			return c.renderAndWrite(cmd.Context(), []qrship.SourceFile{{Name: name, Raw: raw}})
		},
	}
	cmd.Flags().StringVar(&c.cfg.Name, "name", "", "name stored on the device (default: file name without extension)")
	cmd.Flags().StringVar(&c.cfg.OutDir, "out", c.cfg.OutDir, "output directory")
	return cmd
}

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := c.cfg.QrConfig()
			if err != nil {
				return err
			}
			factory := func(cfg domain.QrConfig) (*qrship.Pipeline, error) {
				return c.pipeline(cfg, nil)
			}
			srv := httpAdapter.NewServer(base, factory, logAdapter.NewZerologAdapter(c.log))
			srv.SetMaxBodyBytes(int64(c.cfg.MaxBodyBytes))
			return srv.ListenAndServe(cmd.Context(), c.cfg.Listen)
		},
	}
	cmd.Flags().StringVar(&c.cfg.Listen, "listen", c.cfg.Listen, "HTTP listen address")
	cmd.Flags().IntVar(&c.cfg.MaxBodyBytes, "max-body-bytes", c.cfg.MaxBodyBytes, "maximum request document size")
	return cmd
}

func (c *cli) renderAndWrite(ctx context.Context, files []qrship.SourceFile) error {
	cfg, err := c.cfg.QrConfig()
	if err != nil {
		return err
	}

	var observer qrship.Observer
	if !c.cfg.NoProgress && isTerminal(os.Stderr) {
		observer = newProgressObserver(os.Stderr)
	}
	p, err := c.pipeline(cfg, observer)
	if err != nil {
		return err
	}

	rendered, err := p.RenderBatch(ctx, files)
	if err != nil {
		return err
	}

	out := fs.NewOutputDir(c.cfg.OutDir)
	m, err := out.Write(rendered)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	codes := 0
	for _, f := range m.Files {
		codes += len(f.Codes)
	}
	c.log.Info().
		Int("files", len(m.Files)).
		Int("codes", codes).
		Str("dir", out.Path()).
		Str("manifest", out.ManifestPath()).
		Msg("wrote codes")
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
