package main

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/schul-cloud/schulcloud-editor/api"
	"github.com/schul-cloud/schulcloud-editor/env"
	"github.com/schul-cloud/schulcloud-editor/middleware"
	"github.com/schul-cloud/schulcloud-editor/services/access"
	"github.com/schul-cloud/schulcloud-editor/services/content"
	"github.com/schul-cloud/schulcloud-editor/services/events"
	"github.com/schul-cloud/schulcloud-editor/services/mongo"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := env.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoService, disconnect, err := mongo.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to mongo")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := disconnect(shutdownCtx); err != nil {
			logger.WithError(err).Error("failed to disconnect from mongo")
		}
	}()

	lessonStore := mongo.NewLessonStore(mongoService)
	sectionStore := mongo.NewSectionStore(mongoService)
	groupStore := mongo.NewSyncGroupStore(mongoService)

	evaluator := access.NewEvaluator(groupStore)
	gate := access.NewGate(evaluator)

	var emitter events.Emitter = events.NopEmitter{}
	var publisher *events.Publisher
	if cfg.RedisHost != "" {
		publisher = events.NewPublisher(events.NewRedisClient(cfg.RedisHost, "", cfg.RedisDB), logger)
		emitter = publisher
	}

	lessonService := content.NewLessonService(lessonStore, sectionStore, groupStore, gate, mongoService, emitter, logger)
	sectionService := content.NewSectionService(sectionStore, lessonStore, groupStore, gate, emitter, logger)
	visibilityService := content.NewVisibilityService(lessonStore, sectionStore, gate, mongoService, emitter, logger)

	identity, err := middleware.NewIdentity(cfg.JWTSecret, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to set up identity middleware")
	}

	var hub *api.Hub
	if publisher != nil {
		hub = api.NewHub(logger)
		go hub.Run(context.Background(), publisher.Subscribe(context.Background()))
	}

	server := api.NewServer(lessonService, sectionService, visibilityService, identity, hub, logger)

	logger.WithField("port", cfg.Port).Info("starting editor server")
	if err := http.ListenAndServe(":"+cfg.Port, server.Handler()); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
