package inbound

import (
	"context"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/data/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
)

type uc interface {
	Create(ctx context.Context, in usecase.CreateInput) (*usecase.CreateOutput, error)
	List(ctx context.Context, in usecase.ListInput) (*usecase.ListOutput, error)
	Get(ctx context.Context, in usecase.GetInput) (*entity.Record, error)
	Update(ctx context.Context, in usecase.UpdateInput) (*entity.Record, error)
	Delete(ctx context.Context, in usecase.DeleteInput) error
	Export(ctx context.Context, in usecase.ExportInput) (*usecase.ExportOutput, error)
}

type Options struct {
	// ExportEnabled mounts POST /api/data/export/:userId.
	ExportEnabled bool
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, opts Options, mws ...router.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/data/create", end.Create, mws...)
	r.GET("/api/data/list/:userId", end.List, mws...)
	r.GET("/api/data/:userId/:id", end.Get, mws...)
	r.PUT("/api/data/:userId/:id", end.Update, mws...)
	r.DELETE("/api/data/:userId/:id", end.Delete, mws...)

	if opts.ExportEnabled {
		r.POST("/api/data/export/:userId", end.Export, mws...)
	}
}
