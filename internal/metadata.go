package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Timestamp holds the three points in time a sidecar describes. Immutable
// once constructed.
type Timestamp struct {
	Taken    time.Time
	Created  time.Time
	Modified time.Time
}

// Equal is structural: all three fields must match.
func (t Timestamp) Equal(o Timestamp) bool {
	return t.Taken.Equal(o.Taken) && t.Created.Equal(o.Created) && t.Modified.Equal(o.Modified)
}

// IsZero reports whether no timestamp has been attached.
func (t Timestamp) IsZero() bool {
	return t.Taken.IsZero() && t.Created.IsZero() && t.Modified.IsZero()
}

// Location is the geoDataExif triple. Takeout writes all-zero coordinates
// when a photo carries no GPS data; IsZero detects that sentinel.
type Location struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

func (l Location) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0 && l.Altitude == 0
}

// Record is one parsed sidecar: the title it matches media by, plus the
// timestamp and location to embed.
type Record struct {
	Path      string
	Title     string
	Timestamp Timestamp
	Location  Location
}

// Sidecar JSON shape. Subtrees are pointers so an absent object is
// distinguishable from a zero one.
type sidecarDoc struct {
	Title            string       `json:"title"`
	PhotoTakenTime   *sidecarTime `json:"photoTakenTime"`
	CreationTime     *sidecarTime `json:"creationTime"`
	ModificationTime *sidecarTime `json:"modificationTime"`
	GeoDataExif      *sidecarGeo  `json:"geoDataExif"`
}

type sidecarTime struct {
	Formatted string `json:"formatted"`
}

type sidecarGeo struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
}

// ParseRecord reads one sidecar metadata file. Any missing required field
// fails the whole record with a MalformedMetadataError; partial records are
// never returned.
func ParseRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc sidecarDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedMetadataError{Path: path, Err: err}
	}

	if doc.Title == "" {
		return nil, &MalformedMetadataError{Path: path, Err: fmt.Errorf("missing title")}
	}
	if doc.PhotoTakenTime == nil || doc.CreationTime == nil || doc.ModificationTime == nil {
		return nil, &MalformedMetadataError{Path: path, Err: fmt.Errorf("missing timestamp block")}
	}
	geo := doc.GeoDataExif
	if geo == nil || geo.Latitude == nil || geo.Longitude == nil || geo.Altitude == nil {
		return nil, &MalformedMetadataError{Path: path, Err: fmt.Errorf("missing geoDataExif")}
	}

	taken, err := parseFormatted(doc.PhotoTakenTime.Formatted)
	if err != nil {
		return nil, &MalformedMetadataError{Path: path, Err: err}
	}
	created, err := parseFormatted(doc.CreationTime.Formatted)
	if err != nil {
		return nil, &MalformedMetadataError{Path: path, Err: err}
	}
	modified, err := parseFormatted(doc.ModificationTime.Formatted)
	if err != nil {
		return nil, &MalformedMetadataError{Path: path, Err: err}
	}

	return &Record{
		Path:      path,
		Title:     doc.Title,
		Timestamp: Timestamp{Taken: taken, Created: created, Modified: modified},
		Location:  Location{Latitude: *geo.Latitude, Longitude: *geo.Longitude, Altitude: *geo.Altitude},
	}, nil
}
