package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xaionaro-go/cvfilter/frame"
	"github.com/xaionaro-go/cvfilter/imageprocessor"
	"github.com/xaionaro-go/cvfilter/logger"
	"github.com/xaionaro-go/observability"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

type Stats struct {
	Images       uint
	BytesRead    uint64
	BytesWritten uint64
}

type Result struct {
	Stats Stats
	Err   error
}

// ProcessFilesAsync runs ProcessFiles in a background goroutine; the
// returned channel receives exactly one Result.
func ProcessFilesAsync(
	ctx context.Context,
	proc imageprocessor.Abstract,
	paths []string,
	outputDir string,
) <-chan Result {
	resultCh := make(chan Result, 1)
	observability.Go(ctx, func(ctx context.Context) {
		stats, err := ProcessFiles(ctx, proc, paths, outputDir)
		resultCh <- Result{Stats: stats, Err: err}
	})
	return resultCh
}

// ProcessFiles feeds the images in the given order through proc and writes
// every result as a PNG named after its source into outputDir.
func ProcessFiles(
	ctx context.Context,
	proc imageprocessor.Abstract,
	paths []string,
	outputDir string,
) (_ret Stats, _err error) {
	logger.Debugf(ctx, "ProcessFiles(%s, %d files, '%s')", proc, len(paths), outputDir)
	defer func() { logger.Debugf(ctx, "/ProcessFiles: %#+v %v", _ret, _err) }()

	var stats Stats
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		in, n, err := readFrame(path)
		stats.BytesRead += n
		if err != nil {
			return stats, fmt.Errorf("unable to read '%s': %w", path, err)
		}

		out, err := proc.Process(ctx, in)
		if err != nil {
			return stats, fmt.Errorf("unable to process '%s': %w", path, err)
		}

		outPath := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".png")
		n, err = writeFrame(outPath, out)
		frame.Pool.Put(out)
		stats.BytesWritten += n
		if err != nil {
			return stats, fmt.Errorf("unable to write '%s': %w", outPath, err)
		}
		stats.Images++
		logger.Debugf(ctx, "'%s' -> '%s'", path, outPath)
	}
	return stats, nil
}

func readFrame(path string) (*frame.Frame, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	counter := &countingReader{Reader: f}
	img, format, err := image.Decode(counter)
	if err != nil {
		return nil, counter.N, fmt.Errorf("unable to decode the image: %w", err)
	}
	fr, err := frame.FromImage(img)
	if err != nil {
		return nil, counter.N, fmt.Errorf("unable to convert the %s image: %w", format, err)
	}
	return fr, counter.N, nil
}

func writeFrame(path string, fr *frame.Frame) (uint64, error) {
	img, err := fr.ToImage()
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	counter := &countingWriter{Writer: f}
	err = png.Encode(counter, img)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return counter.N, err
}

type countingReader struct {
	io.Reader
	N uint64
}

func (r *countingReader) Read(b []byte) (int, error) {
	n, err := r.Reader.Read(b)
	r.N += uint64(n)
	return n, err
}

type countingWriter struct {
	io.Writer
	N uint64
}

func (w *countingWriter) Write(b []byte) (int, error) {
	n, err := w.Writer.Write(b)
	w.N += uint64(n)
	return n, err
}
