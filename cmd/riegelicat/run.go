package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rgli/riegeli/chain"
	"github.com/rgli/riegeli/ffi"
	"github.com/rgli/riegeli/internal/logging"
	"github.com/rgli/riegeli/internal/xcmd"
	"github.com/rgli/riegeli/ioriegeli"
	"github.com/rgli/riegeli/record"
)

// Cmd is the set of command-line inputs bound by cobra flags.
type Cmd struct {
	// ConfigPath is the path to an optional YAML config file.
	ConfigPath string
	// Paths are record files, or directories to glob-match within.
	Paths []string
	// Follow retries a not-yet-present path with backoff instead of
	// failing immediately.
	Follow bool
	// FollowTimeout bounds how long Follow waits for a missing path.
	FollowTimeout time.Duration
	// Buffer reads each file into an in-memory Chain before parsing
	// records out of it, instead of reading the file directly.
	Buffer bool
	// MinBlockSize/MaxBlockSize size the Chain's blocks when Buffer is
	// set, as human-readable sizes like "4KiB".
	MinBlockSize string
	MaxBlockSize string
}

func run(cmd Cmd) error {
	cfg, err := LoadConfig(cmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, _, err := logging.Init(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	paths, err := resolvePaths(cmd.Paths, cfg.GlobPattern)
	if err != nil {
		return fmt.Errorf("resolving input paths: %w", err)
	}
	if len(paths) == 0 {
		return errors.New("no input files matched")
	}

	chainOpts := chain.DefaultOptions()
	if cmd.Buffer {
		chainOpts, err = blockOptionsFrom(cmd)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg, gctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		err := xcmd.WaitInterrupted(gctx)
		log.Infow("caught signal", "signal", err)
		return err
	})

	printer := &recordPrinter{out: os.Stdout, format: cfg.Format}
	var dumpErr error
	wg.Go(func() error {
		defer cancel()
		dumpErr = dumpAll(gctx, log, cmd, chainOpts, paths, printer)
		return nil
	})

	waitErr := wg.Wait()
	if dumpErr != nil {
		return dumpErr
	}
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		var sig xcmd.Interrupted
		if errors.As(waitErr, &sig) {
			return nil
		}
		return waitErr
	}
	return nil
}

// blockOptionsFrom parses cmd's human-readable block-size flags into
// chain.Options for the --buffer read path.
func blockOptionsFrom(cmd Cmd) (chain.Options, error) {
	opts := chain.DefaultOptions()
	if cmd.MinBlockSize != "" {
		n, err := chain.ParseBlockSize(cmd.MinBlockSize)
		if err != nil {
			return opts, fmt.Errorf("--min-block-size: %w", err)
		}
		opts.MinBlockSize = n
	}
	if cmd.MaxBlockSize != "" {
		n, err := chain.ParseBlockSize(cmd.MaxBlockSize)
		if err != nil {
			return opts, fmt.Errorf("--max-block-size: %w", err)
		}
		opts.MaxBlockSize = n
	}
	return opts, nil
}

// dumpAll opens and dumps every path, aggregating per-file failures
// rather than stopping at the first one so one bad file doesn't hide
// problems in the rest of the batch.
func dumpAll(ctx context.Context, log *zap.SugaredLogger, cmd Cmd, chainOpts chain.Options, paths []string, printer *recordPrinter) error {
	var errs *multierror.Error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			break
		}
		var err error
		if cmd.Buffer {
			err = dumpOneBuffered(ctx, cmd, chainOpts, path, printer)
		} else {
			err = dumpOne(ctx, log, cmd, path, printer)
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errs.ErrorOrNil()
}

// dumpOne reads path directly through the ffi handle API (the default,
// no-extra-copy path).
func dumpOne(ctx context.Context, log *zap.SugaredLogger, cmd Cmd, path string, printer *recordPrinter) error {
	if cmd.Follow {
		if err := waitForFile(ctx, path, cmd.FollowTimeout); err != nil {
			return err
		}
	}

	handle, err := ffi.Open(path)
	if err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	defer func() {
		if cerr := ffi.Close(handle); cerr != nil {
			log.Warnw("failed to close handle", "path", path, "error", cerr)
		}
	}()

	for i := 0; ; i++ {
		payload, err := ffi.ReadRecord(handle)
		if err != nil {
			return fmt.Errorf("reading record %d: %w", i, err)
		}
		if payload == nil {
			return nil
		}
		printer.print(path, i, payload)
	}
}

// dumpOneBuffered copies path into an in-memory Chain sized by
// chainOpts, then parses records out of the Chain rather than the file
// directly — useful when a stream is still growing and the caller wants
// a stable snapshot to read records out of.
func dumpOneBuffered(ctx context.Context, cmd Cmd, chainOpts chain.Options, path string, printer *recordPrinter) error {
	if cmd.Follow {
		if err := waitForFile(ctx, path, cmd.FollowTimeout); err != nil {
			return err
		}
	}

	fr, err := ioriegeli.OpenFileReader(path)
	if err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	defer fr.Close()

	buf := chain.New()
	bw := ioriegeli.NewChainWriter(buf, chainOpts)
	if _, err := ioriegeli.CopyAll(fr, bw, 1<<40); err != nil {
		return fmt.Errorf("buffering into chain: %w", err)
	}
	if !bw.Flush() {
		return fmt.Errorf("flushing chain buffer: %w", bw.Err())
	}

	br := ioriegeli.NewChainReader(buf)
	for i := 0; ; i++ {
		payload, err := record.ReadRecord(br)
		if err != nil {
			return fmt.Errorf("reading record %d: %w", i, err)
		}
		if payload == nil {
			return nil
		}
		printer.print(path, i, payload)
	}
}

// waitForFile blocks until path exists, retrying with exponential
// backoff, bounded by timeout.
func waitForFile(ctx context.Context, path string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	op := func() (struct{}, error) {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(timeout),
	)
	return err
}
