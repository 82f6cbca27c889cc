package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/cvfilter/flip"
	"github.com/xaionaro-go/cvfilter/imageprocessor"
	"github.com/xaionaro-go/cvfilter/logger"
	"github.com/xaionaro-go/cvfilter/runningaverage"
	"github.com/xaionaro-go/observability"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [options] <image> [<image> ...]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	weight := pflag.Float64("weight", runningaverage.DefaultWeight, "the contribution of every new image to the average, within [0, 1]")
	flipEnabled := pflag.Bool("flip", false, "mirror every image before averaging")
	flipHorizontal := pflag.Bool("flip-horizontal", true, "mirror left<->right instead of upside down (with --flip)")
	blurRadius := pflag.Float64("blur-radius", 0, "gaussian blur radius applied before averaging (8-bit images only); 0 disables")
	outputDir := pflag.String("output-dir", ".", "a directory to write the averaged images into")
	pflag.Parse()
	if len(pflag.Args()) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt)
	defer cancelFn()
	logger.SetDefault(func() logger.Logger {
		return l
	})
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	avg, err := runningaverage.New(runningaverage.Config{Weight: *weight})
	if err != nil {
		l.Fatal(err)
	}

	var seq imageprocessor.Sequence
	if *flipEnabled {
		seq = append(seq, flip.New(*flipHorizontal))
	}
	if *blurRadius > 0 {
		seq = append(seq, imageprocessor.NewGaussianBlur(*blurRadius))
	}
	seq = append(seq, avg)
	l.Debugf("processing chain: %s", seq)

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		l.Fatalf("unable to create the output directory '%s': %v", *outputDir, err)
	}

	resultCh := ProcessFilesAsync(ctx, seq, pflag.Args(), *outputDir)

	var r Result
	select {
	case <-ctx.Done():
		l.Warnf("interrupted, waiting for the current image to finish")
		r = <-resultCh
	case r = <-resultCh:
	}

	fmt.Printf(
		"processed %d images (%s read, %s written) into '%s'\n",
		r.Stats.Images,
		humanize.Bytes(r.Stats.BytesRead),
		humanize.Bytes(r.Stats.BytesWritten),
		*outputDir,
	)
	if r.Err != nil {
		l.Fatal(r.Err)
	}
}
