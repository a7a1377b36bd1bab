package firestore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"driveeasy-rental-backend/internal/domain"
)

// Documents written by the storefront's first releases are loosely typed:
// prices in float dollars, features as a comma-separated string, numbers as
// strings. Everything below folds those shapes into strict domain values.

func carFromDoc(id string, d map[string]any) (domain.Car, error) {
	c := domain.Car{
		ID:          id,
		Name:        str(d["name"]),
		Type:        str(d["type"]),
		Brand:       str(d["brand"]),
		Description: str(d["description"]),
		ImageURL:    firstStr(d, "imageUrl", "image"),
		Features:    stringList(d["features"]),
		Available:   true,
	}

	year, err := toInt64(d["year"])
	if err != nil {
		return domain.Car{}, fmt.Errorf("car %s: year: %w", id, err)
	}
	c.Year = int32(year)

	if v, ok := d["pricePerDayCents"]; ok && v != nil {
		cents, err := toInt64(v)
		if err != nil {
			return domain.Car{}, fmt.Errorf("car %s: pricePerDayCents: %w", id, err)
		}
		c.PricePerDayCents = int32(cents)
	} else {
		cents, err := dollarsToCents(d["price"])
		if err != nil {
			return domain.Car{}, fmt.Errorf("car %s: price: %w", id, err)
		}
		c.PricePerDayCents = int32(cents)
	}
	if c.PricePerDayCents < 0 {
		return domain.Car{}, fmt.Errorf("car %s: negative price", id)
	}

	if v, ok := d["available"]; ok && v != nil {
		b, err := toBool(v)
		if err != nil {
			return domain.Car{}, fmt.Errorf("car %s: available: %w", id, err)
		}
		c.Available = b
	}
	if s := str(d["rentalId"]); s != "" {
		c.RentalID = &s
	}
	c.CreatedAt, _ = toTime(d["createdAt"])
	c.UpdatedAt, _ = toTime(d["updatedAt"])
	return c, nil
}

func carToDoc(c domain.Car) map[string]any {
	var rentalID any
	if c.RentalID != nil {
		rentalID = *c.RentalID
	}
	features := c.Features
	if features == nil {
		features = []string{}
	}
	return map[string]any{
		"name":             c.Name,
		"type":             c.Type,
		"brand":            c.Brand,
		"year":             int64(c.Year),
		"pricePerDayCents": int64(c.PricePerDayCents),
		"description":      c.Description,
		"imageUrl":         c.ImageURL,
		"features":         features,
		"available":        c.Available,
		"rentalId":         rentalID,
		"createdAt":        c.CreatedAt,
		"updatedAt":        c.UpdatedAt,
	}
}

func rentalFromDoc(id string, d map[string]any) (domain.Rental, error) {
	r := domain.Rental{
		ID:             id,
		CarID:          str(d["carId"]),
		CarName:        str(d["carName"]),
		CarType:        str(d["carType"]),
		CustomerName:   str(d["customerName"]),
		Email:          str(d["email"]),
		Phone:          str(d["phone"]),
		IDNumber:       str(d["idNumber"]),
		LicenseNumber:  str(d["licenseNumber"]),
		StartDate:      str(d["startDate"]),
		IDFileURL:      str(d["idFileUrl"]),
		LicenseFileURL: str(d["licenseFileUrl"]),
		Status:         domain.RentalStatus(strings.ToLower(str(d["status"]))),
	}
	if r.CarID == "" {
		return domain.Rental{}, fmt.Errorf("rental %s: missing carId", id)
	}
	if r.Status == "" {
		r.Status = domain.RentalStatusActive
	}
	if !r.Status.Valid() {
		return domain.Rental{}, fmt.Errorf("rental %s: unknown status %q", id, r.Status)
	}

	days, err := toInt64(d["rentalDays"])
	if err != nil {
		return domain.Rental{}, fmt.Errorf("rental %s: rentalDays: %w", id, err)
	}
	r.RentalDays = int32(days)

	if r.StartTime, err = toTime(firstOf(d, "startTime", "rentalStartTime")); err != nil {
		return domain.Rental{}, fmt.Errorf("rental %s: startTime: %w", id, err)
	}
	if r.EndTime, err = toTime(firstOf(d, "endTime", "rentalEndTime")); err != nil {
		return domain.Rental{}, fmt.Errorf("rental %s: endTime: %w", id, err)
	}

	if v, ok := d["dailyRateCents"]; ok && v != nil {
		rate, err := toInt64(v)
		if err != nil {
			return domain.Rental{}, fmt.Errorf("rental %s: dailyRateCents: %w", id, err)
		}
		r.DailyRateCents = int32(rate)
	}
	if v, ok := d["totalPriceCents"]; ok && v != nil {
		if r.TotalPriceCents, err = toInt64(v); err != nil {
			return domain.Rental{}, fmt.Errorf("rental %s: totalPriceCents: %w", id, err)
		}
	} else if r.TotalPriceCents, err = dollarsToCents(d["totalPrice"]); err != nil {
		return domain.Rental{}, fmt.Errorf("rental %s: totalPrice: %w", id, err)
	}
	if r.DailyRateCents == 0 && r.RentalDays > 0 {
		r.DailyRateCents = int32(r.TotalPriceCents / int64(r.RentalDays))
	}

	r.CompletedAt = optTime(d["completedAt"])
	r.CancelledAt = optTime(d["cancelledAt"])
	r.CreatedAt, _ = toTime(d["createdAt"])
	r.UpdatedAt, _ = toTime(d["updatedAt"])
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.StartTime
	}
	return r, nil
}

func rentalToDoc(r domain.Rental) map[string]any {
	return map[string]any{
		"carId":           r.CarID,
		"carName":         r.CarName,
		"carType":         r.CarType,
		"customerName":    r.CustomerName,
		"email":           r.Email,
		"phone":           r.Phone,
		"idNumber":        r.IDNumber,
		"licenseNumber":   r.LicenseNumber,
		"rentalDays":      int64(r.RentalDays),
		"startDate":       r.StartDate,
		"startTime":       r.StartTime,
		"endTime":         r.EndTime,
		"dailyRateCents":  int64(r.DailyRateCents),
		"totalPriceCents": r.TotalPriceCents,
		"status":          string(r.Status),
		"idFileUrl":       r.IDFileURL,
		"licenseFileUrl":  r.LicenseFileURL,
		"completedAt":     timeOrNil(r.CompletedAt),
		"cancelledAt":     timeOrNil(r.CancelledAt),
		"createdAt":       r.CreatedAt,
		"updatedAt":       r.UpdatedAt,
	}
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func firstOf(d map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := d[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstStr(d map[string]any, keys ...string) string {
	return str(firstOf(d, keys...))
}

func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if s := strings.TrimSpace(str(e)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float64:
		return int64(math.Round(t)), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, err
		}
		return int64(math.Round(f)), nil
	}
	return 0, fmt.Errorf("unsupported number type %T", v)
}

func dollarsToCents(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return t * 100, nil
	case int:
		return int64(t) * 100, nil
	case float64:
		return int64(math.Round(t * 100)), nil
	case string:
		s := strings.TrimPrefix(strings.TrimSpace(t), "$")
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int64(math.Round(f * 100)), nil
	}
	return 0, fmt.Errorf("unsupported price type %T", v)
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	}
	return false, fmt.Errorf("unsupported bool type %T", v)
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, err
		}
		return parsed.UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported time type %T", v)
}

func optTime(v any) *time.Time {
	t, err := toTime(v)
	if err != nil || t.IsZero() {
		return nil
	}
	return &t
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
