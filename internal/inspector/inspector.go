// Package inspector coordinates retrieving document information and sending it to the
// inspector panel's header and details views.
package inspector

import (
	"context"
	"errors"
	"fmt"

	"docinspect/internal/model"
)

// View ids used to look up the panel's children in a Container.
const (
	HeaderViewID  = "inspector_header_view"
	DetailsViewID = "inspector_details_view"
)

var (
	ErrNilLoader    = errors.New("inspector: loader is required")
	ErrNilContainer = errors.New("inspector: container is required")
	ErrNilView      = errors.New("inspector: header and details views are required")
	ErrViewMissing  = errors.New("inspector: view not found in container")
)

// Loader loads document metadata asynchronously.
type Loader interface {
	// Load starts loading metadata for id. callback is invoked at most once,
	// when loading has finished. The DocumentInfo passed to it may be nil.
	Load(ctx context.Context, id string, callback func(*model.DocumentInfo))

	// Reset drops every load tied to the host's lifecycle.
	Reset()
}

// HeaderView renders the top of the panel.
type HeaderView interface {
	Update(info *model.DocumentInfo)
}

// DetailsView renders the property rows of the panel.
type DetailsView interface {
	Update(info *model.DocumentInfo)
}

// Container holds the panel's child views, addressed by id.
type Container interface {
	FindView(id string) any
}

// Option configures a Controller.
type Option func(*Controller)

// OnLoaded registers fn to run after every delivery from the loader, including nil ones.
// It runs after the views have been updated.
func OnLoaded(fn func(*model.DocumentInfo)) Option {
	return func(c *Controller) {
		c.onLoaded = fn
	}
}

// Controller wires a Loader to a header view and a details view.
type Controller struct {
	loader   Loader
	header   HeaderView
	details  DetailsView
	onLoaded func(*model.DocumentInfo)
}

// NewController builds a Controller from explicit views.
func NewController(loader Loader, header HeaderView, details DetailsView, opts ...Option) (*Controller, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if header == nil || details == nil {
		return nil, ErrNilView
	}
	c := &Controller{loader: loader, header: header, details: details}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewControllerFromContainer builds a Controller bound to the header and details views held by container.
func NewControllerFromContainer(loader Loader, container Container, opts ...Option) (*Controller, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if container == nil {
		return nil, ErrNilContainer
	}
	header, ok := container.FindView(HeaderViewID).(HeaderView)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewMissing, HeaderViewID)
	}
	details, ok := container.FindView(DetailsViewID).(DetailsView)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewMissing, DetailsViewID)
	}
	return NewController(loader, header, details, opts...)
}

// Reset forwards to the loader.
func (c *Controller) Reset() {
	c.loader.Reset()
}

// LoadInfo asks the loader for id's metadata. The views are updated when it arrives.
func (c *Controller) LoadInfo(ctx context.Context, id string) {
	c.loader.Load(ctx, id, c.updateView)
}

func (c *Controller) updateView(info *model.DocumentInfo) {
	if info != nil {
		c.header.Update(info)
		c.details.Update(info)
	}
	if c.onLoaded != nil {
		c.onLoaded(info)
	}
}
