package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/pion/videorecord/pkg/movie"
)

// DefaultFFmpegArgs produces an H.264 MP4. {fps} and {out} are substituted
// after the template is split into arguments.
const DefaultFFmpegArgs = "-hide_banner -loglevel error -y -f mjpeg -framerate {fps} -i pipe:0 " +
	"-c:v libx264 -preset veryfast -crf 28 -pix_fmt yuv420p -movflags +faststart {out}"

// FFmpeg pipes the frames of a movie into an ffmpeg process.
type FFmpeg struct {
	// Path to the ffmpeg binary, "ffmpeg" from PATH if empty.
	Path string
	// Args is a shell-like argument template, DefaultFFmpegArgs if empty.
	Args string
}

// Available reports whether the ffmpeg binary can be found.
func (f FFmpeg) Available() bool {
	_, err := exec.LookPath(f.binary())
	return err == nil
}

func (f FFmpeg) binary() string {
	if f.Path == "" {
		return "ffmpeg"
	}
	return f.Path
}

func (f FFmpeg) args(fps float64, out string) ([]string, error) {
	tmpl := f.Args
	if tmpl == "" {
		tmpl = DefaultFFmpegArgs
	}
	args, err := shlex.Split(tmpl)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg arguments: %w", err)
	}
	for i, a := range args {
		a = strings.ReplaceAll(a, "{fps}", strconv.FormatFloat(fps, 'f', 3, 64))
		args[i] = strings.ReplaceAll(a, "{out}", out)
	}
	return args, nil
}

func (f FFmpeg) Transcode(ctx context.Context, in, out string) error {
	// The frame rate is needed before the first frame goes out, and
	// probing also refuses movies that were never finalized.
	info, err := movie.Probe(in)
	if err != nil {
		return err
	}
	if !info.Complete {
		return movie.ErrTruncated
	}
	if info.Frames == 0 {
		return ErrEmptyMovie
	}
	fps := 30.0
	if info.Duration > 0 && info.Frames > 1 {
		fps = float64(info.Frames) / info.Duration.Seconds()
	}

	args, err := f.args(fps, out)
	if err != nil {
		return err
	}

	r, err := movie.Open(in)
	if err != nil {
		return err
	}
	defer r.Close()

	cmd := exec.CommandContext(ctx, f.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	logger.Debugf("running %s %s", f.binary(), strings.Join(args, " "))

	writeErr := pipeFrames(r, stdin)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()

	if waitErr != nil {
		return fmt.Errorf("ffmpeg: %w: %s", waitErr, strings.TrimSpace(stderr.String()))
	}
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

func pipeFrames(r *movie.Reader, w io.Writer) error {
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := w.Write(f.Data); err != nil {
			return err
		}
	}
}
