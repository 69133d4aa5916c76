package domain

import (
	"encoding/json"
	"time"

	"hotel_booking/internal/query"
)

type Hotel struct {
	ID         string    `json:"id"`
	Name       string    `json:"name" validate:"required,max=50"`
	Address    string    `json:"address" validate:"required,max=255"`
	District   string    `json:"district,omitempty" validate:"max=100"`
	Province   string    `json:"province,omitempty" validate:"max=100"`
	PostalCode string    `json:"postalcode,omitempty" validate:"omitempty,number,len=5"`
	Tel        string    `json:"tel,omitempty" validate:"max=32"`
	Region     string    `json:"region,omitempty" validate:"max=100"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HotelSchema lists the hotel fields that can be filtered, selected and sorted.
var HotelSchema = query.NewSchema().
	Field("id", query.String).
	Field("name", query.String).
	Field("address", query.String).
	Field("district", query.String).
	Field("province", query.String).
	Field("postalcode", query.String).
	Field("tel", query.String).
	Field("region", query.String).
	Field("createdAt", query.Time)

// DefaultHotelSort is newest first.
var DefaultHotelSort = []query.SortField{{Field: "createdAt", Descending: true}}

// Values returns the hotel keyed by schema field name.
func (h Hotel) Values() map[string]any {
	return map[string]any{
		"id":         h.ID,
		"name":       h.Name,
		"address":    h.Address,
		"district":   h.District,
		"province":   h.Province,
		"postalcode": h.PostalCode,
		"tel":        h.Tel,
		"region":     h.Region,
		"createdAt":  h.CreatedAt,
	}
}

// HotelPatch is a partial hotel update; nil fields are left untouched.
type HotelPatch struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	District   *string `json:"district"`
	Province   *string `json:"province"`
	PostalCode *string `json:"postalcode"`
	Tel        *string `json:"tel"`
	Region     *string `json:"region"`
}

func (p HotelPatch) Apply(h Hotel) Hotel {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&h.Name, p.Name)
	set(&h.Address, p.Address)
	set(&h.District, p.District)
	set(&h.Province, p.Province)
	set(&h.PostalCode, p.PostalCode)
	set(&h.Tel, p.Tel)
	set(&h.Region, p.Region)
	return h
}

// HotelQuery is what the hotel store needs to fetch one page of hotels.
type HotelQuery struct {
	Filter query.Filter
	Fields []string
	Sort   []query.SortField
	Offset int
	Limit  int
}

// HotelView is a listed hotel with its bookings attached. When Fields is set
// only those fields (and id) are rendered.
type HotelView struct {
	Hotel
	Bookings []Booking
	Fields   []string
}

func (v HotelView) MarshalJSON() ([]byte, error) {
	all := v.Hotel.Values()
	out := make(map[string]any, len(all)+1)
	if len(v.Fields) == 0 {
		for k, val := range all {
			out[k] = val
		}
	} else {
		out["id"] = v.ID
		for _, f := range v.Fields {
			if val, ok := all[f]; ok {
				out[f] = val
			}
		}
	}
	bookings := v.Bookings
	if bookings == nil {
		bookings = []Booking{}
	}
	out["bookings"] = bookings
	return json.Marshal(out)
}
