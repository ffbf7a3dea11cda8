package handler

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/guji3/ping/internal/emergency"
	"github.com/guji3/ping/pkg/auth"
)

// Handlers bundles the dependencies every HTTP handler needs.
type Handlers struct {
	db       *gorm.DB
	jwt      *auth.Manager
	pipeline *emergency.Pipeline
	log      *zap.SugaredLogger
}

func New(db *gorm.DB, jwt *auth.Manager, pipeline *emergency.Pipeline, log *zap.SugaredLogger) *Handlers {
	return &Handlers{db: db, jwt: jwt, pipeline: pipeline, log: log}
}
