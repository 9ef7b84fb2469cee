// Command gpa parses a transcript PDF and prints its courses and GPA,
// either locally or through a parse worker over NATS.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/engine/gpa"
	"github.com/WessleyAI/gradepoint/engine/transcript"
	"github.com/WessleyAI/gradepoint/internal/rpc"
	"github.com/WessleyAI/gradepoint/pkg/natsutil"
)

type options struct {
	path    string
	text    bool
	json    bool
	relaxed bool
	natsURL string
	timeout time.Duration
	verbose bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.json, "json", false, "print JSON instead of a table")
	flag.BoolVar(&opts.text, "text", false, "treat the input as already extracted transcript text")
	flag.BoolVar(&opts.relaxed, "relaxed", false, "accept any non-empty parse (skip the completeness check)")
	flag.StringVar(&opts.natsURL, "nats", "", "NATS URL of a parse worker (empty parses locally)")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall deadline")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: gpa [flags] transcript.pdf|transcript.txt\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.path = flag.Arg(0)

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	reply, err := parse(ctx, opts, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gpa: %s: %v\n", transcript.Kind(err), err)
		os.Exit(1)
	}
	if err := render(os.Stdout, reply, opts.json); err != nil {
		fmt.Fprintf(os.Stderr, "gpa: %v\n", err)
		os.Exit(1)
	}
}

func parse(ctx context.Context, opts options, logger *slog.Logger) (rpc.ParseReply, error) {
	if opts.natsURL != "" {
		if opts.text {
			return rpc.ParseReply{}, errors.New("-text cannot be combined with -nats")
		}
		return parseRemote(ctx, opts)
	}

	gate := transcript.DefaultGate()
	gate.Strict = !opts.relaxed
	parser := transcript.New(transcript.Config{Logger: logger, Gate: &gate})

	var courses []domain.Course
	var err error
	if opts.text {
		courses, err = parseTextFile(ctx, parser, opts.path)
	} else {
		courses, err = parser.Parse(ctx, opts.path)
	}
	if err != nil {
		return rpc.ParseReply{}, err
	}
	g, err := gpa.Calculate(courses)
	if err != nil {
		return rpc.ParseReply{}, err
	}
	return rpc.ParseReply{Courses: courses, GPA: g}, nil
}

func parseTextFile(ctx context.Context, parser *transcript.Parser, path string) ([]domain.Course, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", transcript.ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return parser.ParseText(ctx, string(data))
}

// parseRemote sends an absolute path, since the worker resolves it on its
// own filesystem.
func parseRemote(ctx context.Context, opts options) (rpc.ParseReply, error) {
	abs, err := filepath.Abs(opts.path)
	if err != nil {
		return rpc.ParseReply{}, err
	}
	nc, err := nats.Connect(opts.natsURL, nats.Name("gradepoint-cli"))
	if err != nil {
		return rpc.ParseReply{}, fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	reply, err := natsutil.Request[rpc.ParseRequest, rpc.ParseReply](ctx, nc, rpc.SubjectParse, rpc.ParseRequest{Path: abs})
	if err != nil {
		return rpc.ParseReply{}, err
	}
	if reply.Error != "" {
		return rpc.ParseReply{}, fmt.Errorf("%s: %w", reply.Kind, errors.New(reply.Error))
	}
	return reply, nil
}

func render(w io.Writer, reply rpc.ParseReply, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBJECT\tNUMBER\tTITLE\tGRADE\tUNITS")
	for _, c := range reply.Courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.3f\n", c.Subject, c.Number, c.Title, c.Grade, c.Units)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d courses, GPA %.2f\n", len(reply.Courses), reply.GPA)
	return err
}
