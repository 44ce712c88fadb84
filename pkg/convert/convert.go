// Package convert drives the event-to-flame-graph pipeline: pull events
// from a source, fold them into the aggregation tree, emit once at the
// end.
package convert

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flamefold/flamefold/pkg/event"
	"github.com/flamefold/flamefold/pkg/fold"
	"github.com/flamefold/flamefold/pkg/frame"
	"github.com/flamefold/flamefold/pkg/recording"
)

// OutputFormat selects the emitted aggregate form.
type OutputFormat string

const (
	OutputFolded OutputFormat = "folded"
	OutputJSON   OutputFormat = "json"
)

// ParseOutputFormat validates an output format name.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(name); f {
	case OutputFolded, OutputJSON:
		return f, nil
	case "":
		return OutputFolded, nil
	}
	return "", fmt.Errorf("unknown output format %q (known: folded, json)", name)
}

// Options configures a conversion. Options are read by New and never
// change afterwards.
type Options struct {
	Category event.Category
	Namer    frame.Options
	Output   OutputFormat
}

// DefaultOptions returns the default conversion options: cpu events to
// folded output.
func DefaultOptions() Options {
	return Options{
		Category: event.CategoryCPU,
		Output:   OutputFolded,
	}
}

// Converter folds profiling events into a flame graph aggregate.
type Converter struct {
	opts    Options
	logger  *logrus.Logger
	namer   *frame.Namer
	weigher event.Weigher
	tree    *fold.Tree
	events  uint64
	skipped uint64
}

// New validates the options and prepares a converter.
func New(opts Options, logger *logrus.Logger) (*Converter, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	weigher, err := event.NewWeigher(opts.Category)
	if err != nil {
		return nil, err
	}
	output, err := ParseOutputFormat(string(opts.Output))
	if err != nil {
		return nil, err
	}
	opts.Output = output

	return &Converter{
		opts:    opts,
		logger:  logger,
		namer:   frame.NewNamer(opts.Namer),
		weigher: weigher,
		tree:    fold.NewTree(),
	}, nil
}

// Run pulls every event from src, folds it, and writes the aggregate to
// w. Nothing is written before the source is exhausted, so a malformed
// recording never leaves partial output behind.
func (c *Converter) Run(src recording.Source, w io.Writer) error {
	start := time.Now()
	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		path, skipped := c.namer.BuildPath(e.Stack)
		c.skipped += uint64(skipped)
		weight, err := c.weigher.Weigh(e)
		if err != nil {
			return err
		}
		c.tree.Insert(path, weight)
		c.events++
	}
	folded := time.Since(start)

	c.logger.WithFields(logrus.Fields{
		"category": c.opts.Category,
		"events":   c.events,
		"nodes":    c.tree.Len(),
		"total":    c.tree.TotalWeight(),
	}).Debug("Aggregation complete")
	if c.skipped > 0 {
		c.logger.WithField("frames", c.skipped).Debug("Dropped frames without names")
	}

	start = time.Now()
	if err := c.emit(w); err != nil {
		return err
	}
	c.logger.WithFields(logrus.Fields{
		"fold": folded,
		"emit": time.Since(start),
	}).Debug("Stage durations")
	return nil
}

// Refold re-aggregates already-folded stacks: duplicate paths merge, and
// the result can be emitted in either output format.
func (c *Converter) Refold(r io.Reader, w io.Writer) error {
	profile, err := fold.Decode(r)
	if err != nil {
		return err
	}
	c.tree.InsertProfile(profile)
	c.events += uint64(len(profile.Samples))

	c.logger.WithFields(logrus.Fields{
		"samples": len(profile.Samples),
		"nodes":   c.tree.Len(),
		"total":   c.tree.TotalWeight(),
	}).Debug("Refold complete")

	return c.emit(w)
}

func (c *Converter) emit(w io.Writer) error {
	var err error
	switch c.opts.Output {
	case OutputJSON:
		err = c.tree.WriteHierarchy(w)
	default:
		err = c.tree.WriteFolded(w)
	}
	if err != nil {
		return fmt.Errorf("convert: write output: %w", err)
	}
	return nil
}

// Tree exposes the aggregate for callers that post-process it.
func (c *Converter) Tree() *fold.Tree {
	return c.tree
}

// Events returns how many events were folded.
func (c *Converter) Events() uint64 {
	return c.events
}

// SkippedFrames returns how many frames were dropped for lack of a name.
func (c *Converter) SkippedFrames() uint64 {
	return c.skipped
}
