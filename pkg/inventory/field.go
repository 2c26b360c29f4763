package inventory

import "fmt"

// Field names one item attribute usable for unique-value extraction and grouping.
type Field int

const (
	FieldReference Field = iota
	FieldDesignation
	FieldFamily
	FieldType
	FieldSupplier
	FieldUser
	FieldBarcode
	FieldSerialNumber
	FieldCity
	FieldSite
	FieldBuilding
	FieldFloor
	FieldRoom
)

var fieldNames = map[Field]string{
	FieldReference:    "reference",
	FieldDesignation:  "designation",
	FieldFamily:       "family",
	FieldType:         "type",
	FieldSupplier:     "supplier",
	FieldUser:         "user",
	FieldBarcode:      "barcode",
	FieldSerialNumber: "serialNumber",
	FieldCity:         "location.city",
	FieldSite:         "location.site",
	FieldBuilding:     "location.building",
	FieldFloor:        "location.floor",
	FieldRoom:         "location.room",
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fieldNames))
	for f, name := range fieldNames {
		m[name] = f
	}
	return m
}()

// ParseField resolves a field name such as "family" or "location.floor".
func ParseField(name string) (Field, error) {
	if f, ok := fieldsByName[name]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown item field %q", name)
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Value returns the field's value on it, or "" when unset.
func (f Field) Value(it *Item) string {
	switch f {
	case FieldReference:
		return it.Reference
	case FieldDesignation:
		return it.Designation
	case FieldFamily:
		return it.Family
	case FieldType:
		return it.Type
	case FieldSupplier:
		return it.Supplier
	case FieldUser:
		return it.User
	case FieldBarcode:
		return it.Barcode
	case FieldSerialNumber:
		return it.SerialNumber
	case FieldCity:
		return it.Location.CityName()
	case FieldSite:
		return it.Location.SiteName()
	case FieldBuilding:
		return it.Location.BuildingName()
	case FieldFloor:
		return it.Location.FloorName()
	case FieldRoom:
		return it.Location.RoomName()
	}
	return ""
}
