package inventory

import "strings"

// PathSeparator separates the segments of a location path.
const PathSeparator = `\`

// Location is the hierarchical position of an item, derived from a path such as
// `25\BESANCON\Siege\VIOTTE\1er etage\105`. Missing segments are nil.
type Location struct {
	Floor    *string `json:"floor"`
	Room     *string `json:"room"`
	FullPath *string `json:"fullPath"`
	Building *string `json:"building"`
	Site     *string `json:"site"`
	City     *string `json:"city"`
}

// ParseLocation splits path on backslashes and maps the segments by position:
// 1 city, 2 site, 3 building, 4 floor, 5 room. Segment 0 is an organisation
// code and is not kept. Short or empty paths yield nil fields; it never fails.
func ParseLocation(path string) Location {
	if path == "" {
		return Location{}
	}

	parts := strings.Split(path, PathSeparator)
	segment := func(i int) *string {
		if len(parts) > i {
			s := parts[i]
			return &s
		}
		return nil
	}

	full := path
	return Location{
		Floor:    segment(4),
		Room:     segment(5),
		FullPath: &full,
		Building: segment(3),
		Site:     segment(2),
		City:     segment(1),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (l Location) FloorName() string    { return deref(l.Floor) }
func (l Location) RoomName() string     { return deref(l.Room) }
func (l Location) BuildingName() string { return deref(l.Building) }
func (l Location) SiteName() string     { return deref(l.Site) }
func (l Location) CityName() string     { return deref(l.City) }
func (l Location) Path() string         { return deref(l.FullPath) }

// Describe renders the location for display, e.g. "VIOTTE, Étage 1er etage, Salle 105".
func (l Location) Describe() string {
	parts := make([]string, 0, 3)
	if b := l.BuildingName(); b != "" {
		parts = append(parts, b)
	}
	if f := l.FloorName(); f != "" {
		parts = append(parts, "Étage "+f)
	}
	if r := l.RoomName(); r != "" {
		parts = append(parts, "Salle "+r)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
