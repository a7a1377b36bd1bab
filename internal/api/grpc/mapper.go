package grpc

import (
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/service"
)

// Field readers tolerate what browser forms send: numbers may arrive as
// strings and booleans as "true"/"false".

func stringField(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	}
	return ""
}

func numberField(s *structpb.Struct, key string) (float64, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, false
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue, true
	case *structpb.Value_StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(k.StringValue), 64)
		return f, err == nil
	}
	return 0, false
}

// int32Field returns 0 for missing, malformed or out-of-range input.
func int32Field(s *structpb.Struct, key string) int32 {
	f, ok := numberField(s, key)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int32(f)
}

func boolField(s *structpb.Struct, key string) bool {
	v, ok := s.GetFields()[key]
	if !ok {
		return false
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return k.BoolValue
	case *structpb.Value_StringValue:
		b, _ := strconv.ParseBool(k.StringValue)
		return b
	}
	return false
}

// stringListField accepts a list or a comma separated string.
func stringListField(s *structpb.Struct, key string) []string {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil
	}
	var out []string
	switch k := v.GetKind().(type) {
	case *structpb.Value_ListValue:
		for _, item := range k.ListValue.GetValues() {
			if str, ok := item.GetKind().(*structpb.Value_StringValue); ok {
				out = append(out, str.StringValue)
			}
		}
	case *structpb.Value_StringValue:
		out = strings.Split(k.StringValue, ",")
	}
	return out
}

func structField(s *structpb.Struct, key string) *structpb.Struct {
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStructValue()
	}
	return nil
}

func str(v string) *structpb.Value  { return structpb.NewStringValue(v) }
func num(v float64) *structpb.Value { return structpb.NewNumberValue(v) }
func flag(v bool) *structpb.Value   { return structpb.NewBoolValue(v) }

func timeValue(t time.Time) *structpb.Value {
	if t.IsZero() {
		return structpb.NewNullValue()
	}
	return str(t.UTC().Format(time.RFC3339))
}

func optionalTime(t *time.Time) *structpb.Value {
	if t == nil {
		return structpb.NewNullValue()
	}
	return timeValue(*t)
}

func obj(fields map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: fields}
}

func list(values []*structpb.Value) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func MapCarToStruct(c domain.Car) *structpb.Struct {
	features := make([]*structpb.Value, 0, len(c.Features))
	for _, f := range c.Features {
		features = append(features, str(f))
	}
	rentalID := structpb.NewNullValue()
	if c.RentalID != nil {
		rentalID = str(*c.RentalID)
	}
	return obj(map[string]*structpb.Value{
		"id":               str(c.ID),
		"name":             str(c.Name),
		"type":             str(c.Type),
		"brand":            str(c.Brand),
		"year":             num(float64(c.Year)),
		"pricePerDayCents": num(float64(c.PricePerDayCents)),
		"price":            num(float64(c.PricePerDayCents) / 100),
		"description":      str(c.Description),
		"imageUrl":         str(c.ImageURL),
		"features":         list(features),
		"available":        flag(c.Available),
		"rentalId":         rentalID,
		"createdAt":        timeValue(c.CreatedAt),
		"updatedAt":        timeValue(c.UpdatedAt),
	})
}

func mapCars(cars []domain.Car) *structpb.Value {
	values := make([]*structpb.Value, 0, len(cars))
	for _, c := range cars {
		values = append(values, structpb.NewStructValue(MapCarToStruct(c)))
	}
	return list(values)
}

// MapStructToCarInput reads the car form. The daily price may be given in
// cents ("pricePerDayCents") or in dollars ("price").
func MapStructToCarInput(s *structpb.Struct) domain.CarInput {
	in := domain.CarInput{
		Name:        stringField(s, "name"),
		Type:        stringField(s, "type"),
		Brand:       stringField(s, "brand"),
		Year:        int32Field(s, "year"),
		Description: stringField(s, "description"),
		ImageURL:    stringField(s, "imageUrl"),
		Features:    stringListField(s, "features"),
	}
	if _, ok := s.GetFields()["pricePerDayCents"]; ok {
		in.PricePerDayCents = int32Field(s, "pricePerDayCents")
	} else if dollars, ok := numberField(s, "price"); ok && dollars*100 <= math.MaxInt32 {
		in.PricePerDayCents = int32(math.Round(dollars * 100))
	}
	return in
}

func MapStructToRentalRequest(s *structpb.Struct) domain.RentalRequest {
	return domain.RentalRequest{
		CarID:          stringField(s, "carId"),
		CustomerName:   stringField(s, "customerName"),
		Email:          strings.TrimSpace(stringField(s, "email")),
		Phone:          strings.TrimSpace(stringField(s, "phone")),
		IDNumber:       strings.TrimSpace(stringField(s, "idNumber")),
		LicenseNumber:  strings.TrimSpace(stringField(s, "licenseNumber")),
		RentalDays:     int32Field(s, "rentalDays"),
		StartDate:      strings.TrimSpace(stringField(s, "startDate")),
		IDFileURL:      stringField(s, "idFileUrl"),
		LicenseFileURL: stringField(s, "licenseFileUrl"),
	}
}

// MapRentalToStruct renders a rental for the dashboard. Customer-facing
// responses go through MapRentalToCustomerStruct instead.
func MapRentalToStruct(r domain.Rental) *structpb.Struct {
	return obj(rentalFields(r, r.IDNumber, r.LicenseNumber))
}

// MapRentalToCustomerStruct masks document numbers, since anyone holding the
// rental id can read the confirmation.
func MapRentalToCustomerStruct(r domain.Rental) *structpb.Struct {
	return obj(rentalFields(r, maskIdentifier(r.IDNumber), maskIdentifier(r.LicenseNumber)))
}

func rentalFields(r domain.Rental, idNumber, licenseNumber string) map[string]*structpb.Value {
	return map[string]*structpb.Value{
		"id":              str(r.ID),
		"carId":           str(r.CarID),
		"carName":         str(r.CarName),
		"carType":         str(r.CarType),
		"customerName":    str(r.CustomerName),
		"email":           str(r.Email),
		"phone":           str(r.Phone),
		"idNumber":        str(idNumber),
		"licenseNumber":   str(licenseNumber),
		"rentalDays":      num(float64(r.RentalDays)),
		"startDate":       str(r.StartDate),
		"rentalStartTime": timeValue(r.StartTime),
		"rentalEndTime":   timeValue(r.EndTime),
		"dailyRateCents":  num(float64(r.DailyRateCents)),
		"totalPriceCents": num(float64(r.TotalPriceCents)),
		"totalPrice":      num(float64(r.TotalPriceCents) / 100),
		"status":          str(string(r.Status)),
		"idFileUrl":       str(r.IDFileURL),
		"licenseFileUrl":  str(r.LicenseFileURL),
		"completedAt":     optionalTime(r.CompletedAt),
		"cancelledAt":     optionalTime(r.CancelledAt),
		"createdAt":       timeValue(r.CreatedAt),
		"updatedAt":       timeValue(r.UpdatedAt),
	}
}

func mapRentals(rentals []domain.Rental) *structpb.Value {
	values := make([]*structpb.Value, 0, len(rentals))
	for _, r := range rentals {
		values = append(values, structpb.NewStructValue(MapRentalToStruct(r)))
	}
	return list(values)
}

func maskIdentifier(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func MapTimeRemainingToStruct(t domain.TimeRemaining) *structpb.Struct {
	return obj(map[string]*structpb.Value{
		"expired": flag(t.Expired),
		"days":    num(float64(t.Days)),
		"hours":   num(float64(t.Hours)),
		"minutes": num(float64(t.Minutes)),
		"text":    str(t.String()),
	})
}

func MapStatsToStruct(st domain.DashboardStats) *structpb.Struct {
	return obj(map[string]*structpb.Value{
		"totalCars":        num(float64(st.TotalCars)),
		"availableCars":    num(float64(st.AvailableCars)),
		"rentedCars":       num(float64(st.RentedCars)),
		"totalRentals":     num(float64(st.TotalRentals)),
		"activeRentals":    num(float64(st.ActiveRentals)),
		"completedRentals": num(float64(st.CompletedRentals)),
		"cancelledRentals": num(float64(st.CancelledRentals)),
	})
}

func MapAdminToStruct(a domain.AdminUser) *structpb.Struct {
	return obj(map[string]*structpb.Value{
		"id":          str(a.ID),
		"email":       str(a.Email),
		"displayName": str(a.DisplayName),
	})
}

func mapSession(s *service.Session) map[string]*structpb.Value {
	return map[string]*structpb.Value{
		"admin":     structpb.NewStructValue(MapAdminToStruct(s.Admin)),
		"expiresAt": timeValue(s.ExpiresAt),
	}
}

func MapStructToContactMessage(s *structpb.Struct) domain.ContactMessage {
	return domain.ContactMessage{
		Name:    stringField(s, "name"),
		Email:   stringField(s, "email"),
		Phone:   stringField(s, "phone"),
		Subject: stringField(s, "subject"),
		Message: stringField(s, "message"),
	}
}
