package apiclient

import (
	"context"
	"fmt"

	"floorplan-inventory/internal/models"
)

func (c *Client) ListLocations(ctx context.Context) ([]models.Location, error) {
	var out []models.Location
	if err := c.do(ctx, "GET", "/Location", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	var out models.Location
	if err := c.do(ctx, "GET", fmt.Sprintf("/Location/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLocation(ctx context.Context, l models.Location) (*models.Location, error) {
	var out models.Location
	if err := c.do(ctx, "POST", "/Location", l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLocation(ctx context.Context, id int64, l models.Location) (*models.Location, error) {
	var out models.Location
	if err := c.do(ctx, "PUT", fmt.Sprintf("/Location/%d", id), l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLocation(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/Location/%d", id), nil, nil)
}

// FurnitureAt lists the furniture assigned to a location.
func (c *Client) FurnitureAt(ctx context.Context, locationID int64) ([]models.Furniture, error) {
	var out []models.Furniture
	if err := c.do(ctx, "GET", fmt.Sprintf("/Location/%d/furniture", locationID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LocationsByBuilding(ctx context.Context, building string) ([]models.Location, error) {
	var out []models.Location
	if err := c.do(ctx, "GET", "/Location/building/"+escape(building), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
