package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/io/csvio"
	iox "github.com/wdm0006/surveyframe/pkg/io/ioutils"
	"github.com/wdm0006/surveyframe/pkg/io/jsonio"
	"github.com/wdm0006/surveyframe/pkg/io/xlsxio"
	"github.com/wdm0006/surveyframe/pkg/profile"
	"github.com/wdm0006/surveyframe/pkg/session"
	"github.com/wdm0006/surveyframe/pkg/transform/filter"
	"github.com/wdm0006/surveyframe/pkg/transform/temporal"
)

var (
	version = "0.1.0-dev"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Path to config (JSON, YAML or TOML)")
	profileFmt := flag.String("profile", "", "Print column statistics: text or json")
	topK := flag.Int("top", 10, "Values shown per column in the profile")
	listCols := flag.Bool("columns", false, "List columns with kinds and temporal candidates")
	find := flag.String("find", "", "Comma separated name fragments; list matching columns")
	verbose := flag.Bool("verbose", false, "Development logging")
	flag.Parse()

	if *showVersion {
		fmt.Println("surveyframe", version)
		return
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "no config provided; nothing to do. try --config <file> or --version")
		os.Exit(2)
	}
	if *profileFmt != "" && *profileFmt != "text" && *profileFmt != "json" {
		fmt.Fprintf(os.Stderr, "unsupported profile format %q\n", *profileFmt)
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	f, err := run(context.Background(), cfg, log)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *listCols {
		printColumns(f, temporal.Classifier{MaxInvalidRatio: cfg.Temporal.MaxInvalidRatio}.Classify(f))
	}
	if *find != "" {
		for _, c := range filter.Candidates(f, strings.Split(*find, ",")...) {
			fmt.Println(c)
		}
	}
	switch *profileFmt {
	case "text":
		fmt.Print(profile.Describe(f, *topK).ReportText())
	case "json":
		b, _ := json.MarshalIndent(profile.Describe(f, *topK).ReportJSON(), "", "  ")
		fmt.Println(string(b))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// run executes the configured pipeline and returns the final table.
func run(ctx context.Context, cfg *Config, log *zap.Logger) (*frame.Frame, error) {
	steps, err := buildSteps(cfg.Steps, log)
	if err != nil {
		return nil, err
	}
	post, err := buildSteps(cfg.PostMerge, log)
	if err != nil {
		return nil, err
	}
	sinks, err := session.NewSinks(cfg.Snapshots...)
	if err != nil {
		return nil, err
	}
	s := session.New(session.Options{
		Logger:     log,
		Sink:       sinks,
		Ingest:     frame.IngestOptions{Drop: cfg.Input.Drop},
		Classifier: temporal.Classifier{MaxInvalidRatio: cfg.Temporal.MaxInvalidRatio},
	})
	defer func() { _ = s.Close() }()

	recs, err := jsonio.ReadFile(cfg.Input.Path, jsonio.Options{Envelope: cfg.Input.Envelope, AnyEnvelope: cfg.Input.AnyEnvelope})
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx, recs); err != nil {
		return nil, err
	}
	if err := s.Run(ctx, steps...); err != nil {
		return nil, err
	}

	if cfg.Merge != nil {
		up, err := readUpload(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.AttachSecondary(ctx, up); err != nil {
			return nil, err
		}
		if _, err := s.Merge(ctx, mergerFrom(cfg)); err != nil {
			return nil, err
		}
		if err := s.Run(ctx, post...); err != nil {
			return nil, err
		}
	}

	f, _ := s.Current()
	if cfg.Output.Path != "" {
		if err := export(f, cfg.Output.Path, cfg.Output.Columns); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func readUpload(cfg *Config) (*frame.Frame, error) {
	path := cfg.Upload.Path
	switch iox.Format(path) {
	case "xlsx":
		return xlsxio.ReadTable(path, xlsxio.Options{Sheet: cfg.Upload.Sheet})
	case "csv", "tsv":
		var delim rune
		if cfg.Upload.Delimiter != "" {
			delim = []rune(cfg.Upload.Delimiter)[0]
		} else if iox.Format(path) == "tsv" {
			delim = '\t'
		}
		return csvio.ReadTable(path, csvio.ReaderOptions{Delimiter: delim})
	default:
		return nil, fmt.Errorf("unsupported upload format: %s", path)
	}
}

// export writes the final table, optionally limited to a column subset.
func export(f *frame.Frame, path string, cols []string) error {
	if len(cols) > 0 {
		var err error
		if f, err = f.Select(cols...); err != nil {
			return err
		}
	}
	sink, err := session.NewSink(path)
	if err != nil {
		return err
	}
	if err := sink.Write(f); err != nil {
		_ = sink.Close()
		return err
	}
	return sink.Close()
}

func selectColumns(cols []string) func(context.Context, *frame.Frame) (*frame.Frame, error) {
	return func(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
		return f.Select(cols...)
	}
}

func printColumns(f *frame.Frame, temporalCols []string) {
	isTemporal := make(map[string]bool, len(temporalCols))
	for _, c := range temporalCols {
		isTemporal[c] = true
	}
	for _, cs := range f.Schema().Columns {
		mark := ""
		if isTemporal[cs.Name] {
			mark = " [temporal]"
		}
		fmt.Printf("%s\t%v%s\n", cs.Name, cs.Type, mark)
	}
}
