package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"floorplan-inventory/internal/models"
)

func (c *Client) ListFurniture(ctx context.Context) ([]models.Furniture, error) {
	var out []models.Furniture
	if err := c.do(ctx, "GET", "/Furniture", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFurniture(ctx context.Context, id int64) (*models.Furniture, error) {
	var out models.Furniture
	if err := c.do(ctx, "GET", fmt.Sprintf("/Furniture/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetFurnitureByBarcode(ctx context.Context, barcode string) (*models.Furniture, error) {
	var out models.Furniture
	if err := c.do(ctx, "GET", "/Furniture/barcode/"+escape(barcode), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchFurniture queries /Furniture/search; empty criteria are omitted.
func (c *Client) SearchFurniture(ctx context.Context, q models.FurnitureSearch) ([]models.Furniture, error) {
	v := url.Values{}
	if q.Reference != "" {
		v.Set("reference", q.Reference)
	}
	if q.Family != "" {
		v.Set("famille", q.Family)
	}
	if q.Site != "" {
		v.Set("site", q.Site)
	}

	var out []models.Furniture
	if err := c.do(ctx, "GET", "/Furniture/search?"+v.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateFurniture(ctx context.Context, f models.Furniture) (*models.Furniture, error) {
	var out models.Furniture
	if err := c.do(ctx, "POST", "/Furniture", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFurniture(ctx context.Context, id int64, f models.Furniture) (*models.Furniture, error) {
	var out models.Furniture
	if err := c.do(ctx, "PUT", fmt.Sprintf("/Furniture/%d", id), f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFurniture(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/Furniture/%d", id), nil, nil)
}

func (c *Client) AssignLocation(ctx context.Context, furnitureID, locationID int64) error {
	return c.do(ctx, "POST", fmt.Sprintf("/Furniture/%d/location/%d", furnitureID, locationID), struct{}{}, nil)
}

func (c *Client) AssignRFIDTag(ctx context.Context, furnitureID, tagID int64) error {
	return c.do(ctx, "POST", fmt.Sprintf("/Furniture/%d/rfid/%d", furnitureID, tagID), struct{}{}, nil)
}
