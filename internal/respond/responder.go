package respond

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eleven-am/cascade-detect/internal/artifact"
	"github.com/eleven-am/cascade-detect/internal/media"
)

type Mode string

const (
	// ModeInline embeds the result as a base64 data URL.
	ModeInline Mode = "inline"
	// ModeURL publishes the result under the static root and returns its URL.
	ModeURL Mode = "url"
)

func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeURL {
		return ModeURL
	}
	return ModeInline
}

const (
	imageMIME = "image/jpeg"
	videoMIME = "video/mp4"
)

// Delivery carries exactly one of Data or URL depending on the mode.
type Delivery struct {
	Data string
	URL  string
}

type Config struct {
	Mode       Mode
	PublishDir string
	URLPrefix  string
	Registry   *artifact.Registry
	Logger     *slog.Logger
}

type Responder struct {
	mode       Mode
	publishDir string
	urlPrefix  string
	registry   *artifact.Registry
	logger     *slog.Logger
}

func NewResponder(cfg Config) (*Responder, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Responder{
		mode:       cfg.Mode,
		publishDir: cfg.PublishDir,
		urlPrefix:  strings.TrimRight(cfg.URLPrefix, "/"),
		registry:   cfg.Registry,
		logger:     logger.With("component", "responder"),
	}
	if r.mode == "" {
		r.mode = ModeInline
	}

	if r.mode == ModeURL {
		if r.publishDir == "" {
			return nil, fmt.Errorf("url delivery requires a publish directory")
		}
		if err := os.MkdirAll(r.publishDir, 0o755); err != nil {
			return nil, fmt.Errorf("create publish dir: %w", err)
		}
		if r.registry == nil {
			r.logger.Warn("no artifact registry configured, published files will not expire")
		}
	}
	return r, nil
}

func (r *Responder) Mode() Mode {
	return r.mode
}

// Image delivers an encoded JPEG. unique names the upload it was derived from.
func (r *Responder) Image(ctx context.Context, jpeg []byte, unique string) (Delivery, error) {
	if r.mode == ModeInline {
		return Delivery{Data: dataURL(imageMIME, jpeg)}, nil
	}

	name := "processed_" + strings.TrimSuffix(unique, filepath.Ext(unique)) + ".jpg"
	dst := filepath.Join(r.publishDir, name)
	if err := os.WriteFile(dst, jpeg, 0o644); err != nil {
		return Delivery{}, fmt.Errorf("%w: publish image: %v", media.ErrEncode, err)
	}
	return r.publish(ctx, dst, name)
}

// Video delivers the finished container at path. In url mode the file is
// moved out of scratch space.
func (r *Responder) Video(ctx context.Context, path string) (Delivery, error) {
	if r.mode == ModeInline {
		data, err := os.ReadFile(path)
		if err != nil {
			return Delivery{}, fmt.Errorf("%w: read video: %v", media.ErrEncode, err)
		}
		return Delivery{Data: dataURL(videoMIME, data)}, nil
	}

	name := filepath.Base(path)
	dst := filepath.Join(r.publishDir, name)
	if err := move(path, dst); err != nil {
		return Delivery{}, fmt.Errorf("%w: publish video: %v", media.ErrEncode, err)
	}
	return r.publish(ctx, dst, name)
}

func (r *Responder) publish(ctx context.Context, dst, name string) (Delivery, error) {
	if r.registry != nil {
		if err := r.registry.Register(ctx, dst); err != nil {
			if rmErr := artifact.Remove(dst); rmErr != nil {
				r.logger.Warn("cleanup failed", "artifact", dst, "error", rmErr)
			}
			return Delivery{}, fmt.Errorf("register artifact: %w", err)
		}
	}
	return Delivery{URL: r.urlPrefix + "/" + name}, nil
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
