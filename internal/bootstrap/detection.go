package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/cascade-detect/internal/artifact"
	"github.com/eleven-am/cascade-detect/internal/cascade"
	"github.com/eleven-am/cascade-detect/internal/detect"
	"github.com/eleven-am/cascade-detect/internal/detection"
	"github.com/eleven-am/cascade-detect/internal/media"
	"github.com/eleven-am/cascade-detect/internal/media/opencv"
	"github.com/eleven-am/cascade-detect/internal/pipeline"
	"github.com/eleven-am/cascade-detect/internal/report"
	"github.com/eleven-am/cascade-detect/internal/respond"
	"go.uber.org/fx"
)

func ProvideCascades(lc fx.Lifecycle, cfg *Config, logger *slog.Logger) *cascade.Set {
	set := cascade.Load(cascade.Config{
		Dir:         cfg.CascadeDir,
		Face:        cfg.FaceCascade,
		Eye:         cfg.EyeCascade,
		Pedestrian:  cfg.PedestrianCascade,
		Vehicle:     cfg.VehicleCascade,
		FaceBackend: cfg.FaceBackend,
		PigoCascade: cfg.PigoCascade,
		Copies:      cfg.MaxConcurrentJobs,
	}, logger)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return set.Close()
		},
	})
	return set
}

func ProvideDispatcher(set *cascade.Set, cfg *Config, logger *slog.Logger) *detect.Dispatcher {
	return detect.NewDispatcher(set.Models(), detect.ParseFallbackPolicy(cfg.VehicleFallback), logger)
}

func ProvideVideoCodec() media.VideoCodec {
	return opencv.NewCodec()
}

func ProvidePipeline(dispatcher *detect.Dispatcher, codec media.VideoCodec, cfg *Config, logger *slog.Logger) *pipeline.Service {
	return pipeline.NewService(pipeline.Config{
		Dispatcher:    dispatcher,
		Codec:         codec,
		VideoPolicy:   report.ParseVideoPolicy(cfg.VideoSummary),
		JPEGQuality:   cfg.JPEGQuality,
		MaxConcurrent: cfg.MaxConcurrentJobs,
		Logger:        logger,
	})
}

func ProvideResponder(cfg *Config, registry *artifact.Registry, logger *slog.Logger) (*respond.Responder, error) {
	r, err := respond.NewResponder(respond.Config{
		Mode:       respond.ParseMode(cfg.DeliveryMode),
		PublishDir: cfg.PublishDir(),
		URLPrefix:  cfg.PublishURLPrefix(),
		Registry:   registry,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("responder configured", "mode", r.Mode())
	return r, nil
}

func ProvideDetectionHandler(service *pipeline.Service, scratch *artifact.Scratch, responder *respond.Responder, logger *slog.Logger) *detection.Handler {
	return detection.NewHandler(service, scratch, responder, logger.With("handler", "detection"))
}

var DetectionModule = fx.Options(
	fx.Provide(
		ProvideCascades,
		ProvideDispatcher,
		ProvideVideoCodec,
		ProvidePipeline,
		ProvideResponder,
		ProvideDetectionHandler,
	),
)
