package app

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"hotel_booking/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hotelAliases = map[string][]string{
	"name":       {"name", "hotel_name", "property_name", "translations.name"},
	"address":    {"address_raw", "address.address", "address.line", "full_address", "formatted_address", "address", "street_address"},
	"district":   {"address.district", "district", "address.area", "neighbourhood"},
	"province":   {"address.province", "address.state", "province", "state", "address.city", "city"},
	"postalcode": {"address.postal_code", "address.postcode", "address.zip", "postalcode", "postal_code", "postcode", "zip"},
	"tel":        {"phone", "tel", "telephone", "contact.phone", "contact.tel"},
	"region":     {"address.region", "region", "address.country", "country"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string (or integral number) at path, or "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

// firstAlias: first non-empty value for a named alias set.
func firstAlias(m map[string]any, key string) string {
	for _, p := range hotelAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max]))
}

// postalCode keeps the value only when it is a five digit code.
func postalCode(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	if len(s) != 5 {
		return ""
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return s
}

/********** property mapper **********/

// mapProperty turns a loosely shaped directory record into a hotel. Values
// are trimmed to the limits the hotel model enforces.
func mapProperty(p map[string]any) domain.Hotel {
	addr := firstAlias(p, "address")
	if addr == "" {
		// compose from components if no single field is present
		parts := []string{
			lookupStr(p, "address.addressLine1"),
			lookupStr(p, "address.addressLine2"),
			lookupStr(p, "address.street"),
			lookupStr(p, "address.city"),
			lookupStr(p, "street"),
		}
		nonEmpty := make([]string, 0, len(parts))
		for _, part := range parts {
			if part != "" {
				nonEmpty = append(nonEmpty, part)
			}
		}
		addr = strings.Join(nonEmpty, ", ")
	}
	return domain.Hotel{
		Name:       truncate(firstAlias(p, "name"), 50),
		Address:    truncate(addr, 255),
		District:   truncate(firstAlias(p, "district"), 100),
		Province:   truncate(firstAlias(p, "province"), 100),
		PostalCode: postalCode(firstAlias(p, "postalcode")),
		Tel:        truncate(firstAlias(p, "tel"), 32),
		Region:     truncate(firstAlias(p, "region"), 100),
	}
}

// propertyID returns the directory id of a record, when it carries one.
func propertyID(p map[string]any) int64 {
	if v := firstInt64Flexible(p, "hotel_id", "property_id", "id"); v != nil {
		return *v
	}
	return 0
}
