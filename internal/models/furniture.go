package models

import (
	"time"

	"floorplan-inventory/pkg/inventory"
)

// Furniture is the collaborator API's furniture record. Field names on the
// wire are the API's French ones.
type Furniture struct {
	ID           int64              `json:"id"`
	Reference    string             `json:"reference"`
	Designation  string             `json:"designation"`
	Family       string             `json:"famille"`
	Type         string             `json:"type"`
	Supplier     string             `json:"fournisseur"`
	User         string             `json:"user,omitempty"`
	Barcode      string             `json:"codeBarre"`
	SerialNumber string             `json:"serialNumber,omitempty"`
	Information  string             `json:"information,omitempty"`
	DeliveryDate string             `json:"deliveryDate,omitempty"`
	LocationID   *int64             `json:"locationId,omitempty"`
	Location     *FurnitureLocation `json:"location,omitempty"`
	RFIDTagID    *string            `json:"rfidTagId,omitempty"`
	CreatedAt    *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time         `json:"updatedAt,omitempty"`
}

// FurnitureLocation is the location summary embedded in a furniture record.
type FurnitureLocation struct {
	ID           int64  `json:"id,omitempty"`
	BuildingName string `json:"buildingName"`
	Floor        string `json:"floor"`
	Room         string `json:"room"`
	Site         string `json:"site,omitempty"`
	FullPath     string `json:"fullPath,omitempty"`
}

// FurnitureSearch holds the optional search criteria of /Furniture/search.
type FurnitureSearch struct {
	Reference string
	Family    string
	Site      string
}

// Item converts a furniture record into an inventory item. A full location path
// is parsed like a spreadsheet cell; otherwise the embedded parts are used.
func (f Furniture) Item() inventory.Item {
	it := inventory.Item{
		ID:           f.ID,
		Reference:    f.Reference,
		Designation:  f.Designation,
		Family:       f.Family,
		Type:         f.Type,
		Supplier:     f.Supplier,
		User:         f.User,
		Barcode:      f.Barcode,
		SerialNumber: f.SerialNumber,
		Information:  f.Information,
		DeliveryDate: f.DeliveryDate,
	}
	if f.Location == nil {
		return it
	}
	if f.Location.FullPath != "" {
		it.Location = inventory.ParseLocation(f.Location.FullPath)
		return it
	}
	it.Location = inventory.Location{
		Building: optional(f.Location.BuildingName),
		Floor:    optional(f.Location.Floor),
		Room:     optional(f.Location.Room),
		Site:     optional(f.Location.Site),
	}
	return it
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
