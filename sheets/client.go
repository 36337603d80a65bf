// Package sheets reads cell values from Google Sheets spreadsheets using a service account.
package sheets

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Reader retrieves the cell values for a range of a spreadsheet.
type Reader interface {
	Values(ctx context.Context, spreadsheet, area string) ([][]any, error)
}

// Client is a Reader backed by the Google Sheets v4 API. The underlying service is created on first
// use and then shared by all callers.
type Client struct {
	credentials string
	connect     func(ctx context.Context) (*sheets.Service, error)

	group   singleflight.Group
	guard   sync.RWMutex
	service *sheets.Service
}

// NewClient returns a Client that authenticates with the service-account key in the credentials file.
// The file is not read until the first request.
func NewClient(credentials string, options ...option.ClientOption) *Client {
	return &Client{
		credentials: credentials,
		connect: func(ctx context.Context) (*sheets.Service, error) {
			return connect(ctx, credentials, options...)
		},
	}
}

// Service returns the shared Sheets service, creating it if necessary. Concurrent first calls
// share a single construction. A failed construction is not cached.
func (c *Client) Service(ctx context.Context) (*sheets.Service, error) {
	c.guard.RLock()
	service := c.service
	c.guard.RUnlock()

	if service != nil {
		return service, nil
	}

	ch := c.group.DoChan("service", func() (any, error) {
		c.guard.RLock()
		service := c.service
		c.guard.RUnlock()

		if service != nil {
			return service, nil
		}

		// the token source outlives any one request
		service, err := c.connect(context.Background())
		if err != nil {
			return nil, err
		}

		c.guard.Lock()
		c.service = service
		c.guard.Unlock()

		return service, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}

		return result.Val.(*sheets.Service), nil
	}
}

// Values retrieves the cells in area. The rows are returned exactly as supplied by the API and
// are nil if the range is empty.
func (c *Client) Values(ctx context.Context, spreadsheet, area string) ([][]any, error) {
	google, err := c.Service(ctx)
	if err != nil {
		return nil, err
	}

	response, err := google.Spreadsheets.Values.Get(spreadsheet, area).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet (%w)", err)
	}

	return response.Values, nil
}
