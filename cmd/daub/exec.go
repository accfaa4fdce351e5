package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/esimov/daub"
	"github.com/esimov/daub/utils"
	"golang.org/x/term"
)

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// levelExtensions lists the file extensions of the level definitions.
var levelExtensions = []string{".yaml", ".yml"}

// result holds the outcome of painting a single level.
type result struct {
	path     string
	out      string
	finished int
	total    int
	err      error
}

// session is a level loaded together with the engine painting it.
type session struct {
	level  *daub.Level
	reg    *daub.Registry
	engine *daub.Engine
	bg     color.NRGBA
}

// openSession loads the level read from r and builds its regions, resolving
// the cutouts relative to the assets directory.
func openSession(r io.Reader, assets string, cfg daub.Config, onComplete daub.CompletionFunc) (*session, error) {
	lvl, err := daub.LoadLevel(r)
	if err != nil {
		return nil, err
	}
	bg := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if lvl.Background != "" {
		if bg, err = utils.HexToRGBA(lvl.Background); err != nil {
			return nil, fmt.Errorf("invalid background: %w", err)
		}
	}

	reg := daub.NewRegistry(cfg, onComplete)
	if err := reg.Build(lvl, daub.DirAssets(assets)); err != nil {
		return nil, err
	}
	return &session{
		level:  lvl,
		reg:    reg,
		engine: daub.NewEngine(reg),
		bg:     bg,
	}, nil
}

// replay runs the stroke script of the level and waits for the pending
// coverage evaluations.
func (s *session) replay(ctx context.Context) error {
	if err := daub.Replay(s.engine, s.level.Strokes); err != nil {
		return err
	}
	return s.engine.Flush(ctx)
}

// export writes the composed level to w.
func (s *session) export(w io.Writer) error {
	img, err := s.reg.Render(s.level.Bounds(s.reg), s.bg)
	if err != nil {
		return err
	}
	return daub.Encode(w, img)
}

// paintLevel replays the stroke script of a level file and exports the
// composed result to out, unless out is empty.
func paintLevel(ctx context.Context, in, out, assets string, cfg daub.Config) result {
	res := result{path: in, out: out}

	src, dst, err := pathToFile(in, out)
	if err != nil {
		res.err = err
		return res
	}
	if f, ok := src.(*os.File); ok && f != os.Stdin {
		defer f.Close()
	}
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		defer f.Close()
	}

	if assets == "" {
		assets = filepath.Dir(in)
		if in == pipeName {
			assets = "."
		}
	}
	s, err := openSession(src, assets, cfg, nil)
	if err != nil {
		res.err = err
		return res
	}
	if err := s.replay(ctx); err != nil {
		res.err = err
		return res
	}
	res.finished, res.total = s.reg.Progress()

	if dst != nil {
		res.err = s.export(dst)
	}
	return res
}

// walkDir starts a goroutine to walk the specified directory tree in recursive manner
// and send the path of each level file on the string channel.
// It sends the result of the walk on the error channel.
// It terminates in case done channel is closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			if !utils.Contains(srcExts, strings.ToLower(filepath.Ext(info.Name()))) {
				return nil
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// consumer reads the level paths from the paths channel, paints them
// and sends the results on the res channel.
func consumer(
	ctx context.Context,
	done <-chan struct{},
	paths <-chan string,
	dest, ext, assets string,
	cfg daub.Config,
	res chan<- result,
) {
	for src := range paths {
		out := ""
		if dest != "" {
			name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
			out = filepath.Join(dest, name+ext)
		}

		select {
		case <-done:
			return
		case res <- paintLevel(ctx, src, out, assets, cfg):
		}
	}
}

// paintDir paints every level file of the src directory with a bounded
// number of workers.
func paintDir(ctx context.Context, src, dest, ext, assets string, workers int, cfg daub.Config, report func(result)) error {
	if dest != "" {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
	}

	var wg sync.WaitGroup
	ch := make(chan result)
	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(done, src, levelExtensions)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			consumer(ctx, done, paths, dest, ext, assets, cfg, ch)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	for res := range ch {
		report(res)
	}
	return <-errc
}

// pathToFile converts the source and destination paths to readable and writable files.
// An empty destination means the composed image is not exported.
func pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	switch out {
	case "":
	case pipeName:
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	default:
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}
