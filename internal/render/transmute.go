package render

import (
	"context"
	"fmt"

	"github.com/openrend/rend/internal/location"
	"github.com/openrend/rend/internal/table"
)

// Publisher registers a table document with the rendering server and
// returns the absolute URL of its route. Satisfied by server.Manager.
type Publisher interface {
	Publish(ctx context.Context, doc *table.Document) (string, error)
}

// FrameTransmuter turns a dataset into a web location by publishing its
// layout under a fresh server route. The resulting location flows through
// the same viewer path as any URL, so tab reuse applies to datasets too.
type FrameTransmuter struct {
	Layouts table.FrameLayoutFactory
	Server  Publisher
}

func (t FrameTransmuter) Transmute(ctx context.Context, src table.FrameSource) (location.Location, error) {
	doc, err := t.Layouts.Build(src)
	if err != nil {
		return location.Location{}, fmt.Errorf("could not build layout for %s: %w", src.Name(), err)
	}
	return publish(ctx, t.Server, doc)
}

// DescriberTransmuter is the FrameTransmuter variant for datasets that
// carry pre-computed per-column metadata, rendered as header tooltips.
type DescriberTransmuter struct {
	Layouts table.DescriberLayoutFactory
	Server  Publisher
}

func (t DescriberTransmuter) Transmute(ctx context.Context, d *table.FrameDescriber) (location.Location, error) {
	doc, err := t.Layouts.Build(d)
	if err != nil {
		return location.Location{}, fmt.Errorf("could not build layout for %s: %w", d.Name(), err)
	}
	return publish(ctx, t.Server, doc)
}

func publish(ctx context.Context, server Publisher, doc *table.Document) (location.Location, error) {
	url, err := server.Publish(ctx, doc)
	if err != nil {
		return location.Location{}, err
	}
	return location.Location{
		Kind:    location.KindURL,
		Content: location.ContentWeb,
		Value:   url,
	}, nil
}
