package apiclient

import (
	"context"
	"fmt"

	"floorplan-inventory/internal/models"
)

// ActiveTags lists the RFID tags that are still active.
func (c *Client) ActiveTags(ctx context.Context) ([]models.RFIDTag, error) {
	var out []models.RFIDTag
	if err := c.do(ctx, "GET", "/Rfid/tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTag(ctx context.Context, tagID string) (*models.RFIDTag, error) {
	var out models.RFIDTag
	if err := c.do(ctx, "GET", "/Rfid/tags/"+escape(tagID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterTag(ctx context.Context, tag models.RFIDTag) (*models.RFIDTag, error) {
	var out models.RFIDTag
	if err := c.do(ctx, "POST", "/Rfid/tags", tag, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AssignTag(ctx context.Context, tagID string, furnitureID int64) error {
	return c.do(ctx, "POST", fmt.Sprintf("/Rfid/tags/%s/assign/%d", escape(tagID), furnitureID), struct{}{}, nil)
}

func (c *Client) DeactivateTag(ctx context.Context, tagID string) error {
	return c.do(ctx, "POST", "/Rfid/tags/"+escape(tagID)+"/deactivate", struct{}{}, nil)
}

// ProcessRead reports one tag read to the API.
func (c *Client) ProcessRead(ctx context.Context, read models.TagRead) error {
	return c.do(ctx, "POST", "/Rfid/read", read, nil)
}

func (c *Client) ActiveReaders(ctx context.Context) ([]models.RFIDReader, error) {
	var out []models.RFIDReader
	if err := c.do(ctx, "GET", "/Rfid/readers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RegisterReader(ctx context.Context, reader models.RFIDReader) (*models.RFIDReader, error) {
	var out models.RFIDReader
	if err := c.do(ctx, "POST", "/Rfid/readers", reader, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReaderStatus(ctx context.Context, readerID, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, "POST", "/Rfid/readers/"+escape(readerID)+"/status", body, nil)
}
