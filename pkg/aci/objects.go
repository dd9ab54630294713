package aci

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

// GetObjects streams every object of the given element names. Pages are
// fetched lazily as the sequence is consumed and the filter is closed when
// iteration stops. Elements without a registered model type are skipped.
func (c *Client) GetObjects(ctx context.Context, types ...string) iter.Seq2[model.Object, error] {
	return func(yield func(model.Object, error) bool) {
		handle, err := c.OpenFilter(ctx, types...)
		if err != nil {
			yield(nil, err)
			return
		}
		defer func() {
			if _, err := c.CloseFilter(context.WithoutCancel(ctx), handle); err != nil {
				c.logger.Debug("close filter failed", "handle", handle, "error", err)
			}
		}()

		for {
			page, err := c.GetFilterResults(ctx, handle, c.config.PageSize)
			if err != nil {
				yield(nil, err)
				return
			}

			objects, n, err := c.decodePage(page)
			if err != nil {
				yield(nil, err)
				return
			}
			if n == 0 {
				return
			}

			for _, obj := range objects {
				if !yield(obj, nil) {
					return
				}
			}
		}
	}
}

// decodePage decodes "<Object><Type ...>...</Type></Object>..." and returns
// the known objects plus the number of elements seen.
func (c *Client) decodePage(page string) ([]model.Object, int, error) {
	d := xml.NewDecoder(strings.NewReader(page))

	var (
		objects []model.Object
		seen    int
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return objects, seen, nil
		}
		if err != nil {
			return nil, 0, &clienterr.ProtocolError{Op: MethodGetFilterResults, Message: "malformed results: " + err.Error()}
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local == "Object" {
			continue
		}

		seen++
		obj, err := model.Decode(d, start)
		if errors.Is(err, model.ErrUnknownType) {
			c.logger.Debug("skipping unknown object type", "type", start.Name.Local)
			continue
		}
		if err != nil {
			return nil, 0, &clienterr.ProtocolError{Op: MethodGetFilterResults, Message: err.Error()}
		}
		objects = append(objects, obj)
	}
}
