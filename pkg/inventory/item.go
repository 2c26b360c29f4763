package inventory

// Coordinates is a marker position normalized to the floor-plan image:
// 0 is the left/top edge, 1 the right/bottom edge. Nil means not yet placed.
type Coordinates struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// At returns placed coordinates for x, y.
func At(x, y float64) Coordinates {
	return Coordinates{X: &x, Y: &y}
}

// Placed reports whether both axes are set.
func (c Coordinates) Placed() bool {
	return c.X != nil && c.Y != nil
}

// Values returns the coordinates and whether they are placed.
func (c Coordinates) Values() (x, y float64, ok bool) {
	if !c.Placed() {
		return 0, 0, false
	}
	return *c.X, *c.Y, true
}

// Item is one inventoried furniture record.
type Item struct {
	ID           int64       `json:"id"`
	Reference    string      `json:"reference"`
	Designation  string      `json:"designation"`
	Family       string      `json:"family"`
	Type         string      `json:"type"`
	Supplier     string      `json:"supplier"`
	User         string      `json:"user"`
	Barcode      string      `json:"barcode"`
	SerialNumber string      `json:"serialNumber"`
	Information  string      `json:"information"`
	DeliveryDate string      `json:"deliveryDate"`
	Location     Location    `json:"location"`
	Coordinates  Coordinates `json:"coordinates"`
}

// Clone returns a copy of items whose coordinates do not alias the source.
func Clone(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		if x, y, ok := it.Coordinates.Values(); ok {
			it.Coordinates = At(x, y)
		} else {
			it.Coordinates = Coordinates{}
		}
		out[i] = it
	}
	return out
}
