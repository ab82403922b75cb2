package main

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/usherasnick/concat-stream/compress"
	"github.com/usherasnick/concat-stream/fwriter"
	streamio "github.com/usherasnick/concat-stream/stream-io"
	"github.com/usherasnick/concat-stream/tpsctrl"
)

var (
	app = kingpin.New("concat-cat", "Concatenate files, or the entries of zip archives, into one stream.")

	inputs  = app.Arg("inputs", "Files to concatenate, in order.").Required().ExistingFiles()
	output  = app.Flag("output", "Write atomically to this file instead of stdout.").Short('o').String()
	rate    = app.Flag("rate", "Limit reading to this many bytes per second, 0 means unlimited.").Default("0").Int64()
	zipMode = app.Flag("zip", "Treat every input as a zip archive and concatenate its entries.").Bool()
	strict  = app.Flag("strict-eof", "Only move to the next input on EOF, never on a short read.").Bool()
	verbose = app.Flag("verbose", "Log debug messages.").Short('v').Bool()
)

// options 命令行参数.
type options struct {
	inputs    []string
	output    string
	rate      int64
	zipMode   bool
	strictEOF bool
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	kingpin.MustParse(app.Parse(os.Args[1:]))

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	opts := options{
		inputs:    *inputs,
		output:    *output,
		rate:      *rate,
		zipMode:   *zipMode,
		strictEOF: *strict,
	}
	if err := run(opts, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("concat-cat failed")
	}
}

func run(opts options, stdout io.Writer) error {
	sources, err := openInputs(opts.inputs, opts.zipMode)
	if err != nil {
		return err
	}
	sources = tpsctrl.NewBandwidthController(opts.rate).WrapAll(sources)

	cfg := &streamio.ConcatReaderCfg{Advance: streamio.AdvanceOnShortRead}
	if opts.strictEOF {
		cfg.Advance = streamio.AdvanceOnEOF
	}
	r, err := streamio.NewConcatReaderWithCfg(sources, cfg)
	if err != nil {
		closeAll(sources)
		return err
	}
	defer r.Close()

	if opts.output == "" {
		n, err := io.Copy(stdout, r)
		log.Debug().Msgf("copied %d bytes to stdout", n)
		return err
	}

	w, err := fwriter.NewSafeWriter(opts.output)
	if err != nil {
		return errors.Wrapf(err, "open %s", opts.output)
	}
	if _, err := w.CopyFrom(r); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}

func openInputs(paths []string, zipMode bool) ([]io.ReadCloser, error) {
	sources := make([]io.ReadCloser, 0, len(paths))
	for _, p := range paths {
		var (
			src io.ReadCloser
			err error
		)
		if zipMode {
			src, err = compress.OpenZip(p)
		} else {
			var f *os.File
			f, err = os.Open(p)
			if err == nil {
				src = streamio.NewFillReader(f)
			}
		}
		if err != nil {
			closeAll(sources)
			return nil, errors.Wrapf(err, "open %s", p)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func closeAll(sources []io.ReadCloser) {
	for _, src := range sources {
		if err := src.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close input")
		}
	}
}
