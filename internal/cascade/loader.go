package cascade

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/eleven-am/cascade-detect/internal/detect"
)

const (
	BackendOpenCV = "opencv"
	BackendPigo   = "pigo"
)

type Config struct {
	Dir         string
	Face        string
	Eye         string
	Pedestrian  string
	Vehicle     string
	FaceBackend string
	PigoCascade string
	Copies      int
}

// Set owns every classifier loaded at startup.
type Set struct {
	models  detect.Models
	closers []io.Closer
}

// Load reads every configured model. A model that fails to load is logged and
// left nil so the dispatcher can degrade instead of refusing to start.
func Load(cfg Config, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "cascade-loader")

	s := &Set{}

	if cfg.FaceBackend == BackendPigo {
		p, err := LoadPigo(cfg.PigoCascade)
		if err != nil {
			logger.Warn("could not load pigo face cascade, falling back to opencv", "path", cfg.PigoCascade, "error", err)
		} else {
			s.models.Face = p
			logger.Info("loaded classifier", "kind", detect.KindFace, "backend", BackendPigo, "path", p.Path())
		}
	}
	if s.models.Face == nil {
		s.models.Face = s.loadOpenCV(cfg, cfg.Face, detect.KindFace, logger)
	}
	s.models.Eye = s.loadOpenCV(cfg, cfg.Eye, detect.KindEye, logger)
	s.models.Pedestrian = s.loadOpenCV(cfg, cfg.Pedestrian, detect.KindPedestrian, logger)
	s.models.Vehicle = s.loadOpenCV(cfg, cfg.Vehicle, detect.KindVehicle, logger)

	return s
}

func (s *Set) loadOpenCV(cfg Config, name string, kind detect.Kind, logger *slog.Logger) detect.Classifier {
	if name == "" {
		logger.Warn("no model configured", "kind", kind)
		return nil
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Dir, name)
	}

	c, err := LoadOpenCV(path, cfg.Copies)
	if err != nil {
		logger.Warn("could not load classifier", "kind", kind, "path", path, "error", err)
		return nil
	}

	s.closers = append(s.closers, c)
	logger.Info("loaded classifier", "kind", kind, "backend", BackendOpenCV, "path", c.Path())
	return c
}

func (s *Set) Models() detect.Models {
	return s.models
}

func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
