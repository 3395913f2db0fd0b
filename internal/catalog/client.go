// Package catalog reads products from the remote API. Nothing is cached between
// calls.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/blackstar01-dark/mueblix/internal/domain"
	"github.com/blackstar01-dark/mueblix/internal/remote"
)

const (
	DefaultLimit = 20
	// bounds a shared detail fetch, which runs detached from any one caller
	defaultFetchTimeout = 30 * time.Second
)

var ErrInvalidID = errors.New("invalid product id")

type Doer interface {
	DoJSON(ctx context.Context, req remote.Request, out any) error
}

type Client struct {
	remote       Doer
	sfg          singleflight.Group // collapses concurrent fetches of the same detail
	fetchTimeout time.Duration
}

func NewClient(remote Doer) *Client {
	return &Client{remote: remote, fetchTimeout: defaultFetchTimeout}
}

// List fetches one page of product summaries.
func (c *Client) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	var products []domain.Product
	err := c.remote.DoJSON(ctx, remote.Request{
		Endpoint: "catalog.list",
		Method:   http.MethodGet,
		Path:     "/producto",
		Query: url.Values{
			"limit":  {strconv.Itoa(limit)},
			"offset": {strconv.Itoa(offset)},
		},
	}, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get fetches the detail record of one product. Concurrent calls for the same id
// share one request; each caller still returns as soon as its own ctx is done.
func (c *Client) Get(ctx context.Context, id string) (*domain.ProductDetail, error) {
	if id == "" || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	ch := c.sfg.DoChan(id, func() (interface{}, error) {
		// one caller's cancellation must not fail the others
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		var detail domain.ProductDetail
		err := c.remote.DoJSON(fetchCtx, remote.Request{
			Endpoint: "catalog.get",
			Method:   http.MethodGet,
			Path:     "/producto/" + url.PathEscape(id),
		}, &detail)
		if err != nil {
			return nil, err
		}
		return &detail, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to get product %s: %w", id, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to get product %s: %w", id, res.Err)
		}
		detail := *res.Val.(*domain.ProductDetail)
		return &detail, nil
	}
}

// Load builds the home screen listing: one page of summaries, then one detail
// call per entry, in order. The first failure aborts the load.
func (c *Client) Load(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	summaries, err := c.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(summaries))
	for _, summary := range summaries {
		detail, err := c.Get(ctx, summary.ID)
		if err != nil {
			return nil, err
		}
		products = append(products, detail.Product)
	}
	return products, nil
}
