package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/service"
)

type AdminHandler struct {
	adminSvc  service.AdminService
	rentalSvc service.RentalService
	imageSvc  service.ImageService
}

func NewAdminHandler(adminSvc service.AdminService, rentalSvc service.RentalService, imageSvc service.ImageService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, rentalSvc: rentalSvc, imageSvc: imageSvc}
}

// requireConfirmation rejects destructive actions the client has not
// explicitly confirmed.
func requireConfirmation(req *structpb.Struct) error {
	if !boolField(req, "confirmed") {
		return toStatus(domain.ErrConfirmationRequired)
	}
	return nil
}

func logAdminAction(ctx context.Context, action string, args ...any) {
	if s, err := SessionFromContext(ctx); err == nil {
		args = append(args, "admin_id", s.Admin.ID)
	}
	logger.InfoContext(ctx, "Admin action: "+action, args...)
}

func (h *AdminHandler) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tab, ok := domain.ParseCarTab(stringField(req, "tab"))
	if !ok {
		return nil, invalidField("tab", "enum", "tab must be one of all, rented, available")
	}
	dash, err := h.adminSvc.GetDashboard(ctx, tab)
	if err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{
		"stats": structpb.NewStructValue(MapStatsToStruct(dash.Stats)),
		"tab":   str(string(dash.Tab)),
		"cars":  mapCars(dash.Cars),
	}), nil
}

// carPayload accepts the car either nested under "car" or at the top level.
func carPayload(req *structpb.Struct) *structpb.Struct {
	if nested := structField(req, "car"); nested != nil {
		return nested
	}
	return req
}

func (h *AdminHandler) CreateCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	car, err := h.adminSvc.CreateCar(ctx, MapStructToCarInput(carPayload(req)))
	if err != nil {
		return nil, toStatus(err)
	}
	logAdminAction(ctx, "create car", "car_id", car.ID)
	return obj(map[string]*structpb.Value{
		"car": structpb.NewStructValue(MapCarToStruct(*car)),
	}), nil
}

func (h *AdminHandler) UpdateCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	carID := stringField(req, "carId")
	if carID == "" {
		return nil, invalidField("carId", "required", "carId is required")
	}
	car, err := h.adminSvc.UpdateCar(ctx, carID, MapStructToCarInput(carPayload(req)))
	if err != nil {
		return nil, toStatus(err)
	}
	logAdminAction(ctx, "update car", "car_id", car.ID)
	return obj(map[string]*structpb.Value{
		"car": structpb.NewStructValue(MapCarToStruct(*car)),
	}), nil
}

func (h *AdminHandler) DeleteCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireConfirmation(req); err != nil {
		return nil, err
	}
	carID := stringField(req, "carId")
	if err := h.adminSvc.DeleteCar(ctx, carID); err != nil {
		return nil, toStatus(err)
	}
	logAdminAction(ctx, "delete car", "car_id", carID)
	return obj(map[string]*structpb.Value{"success": flag(true)}), nil
}

func parseStatus(req *structpb.Struct) (domain.RentalStatus, error) {
	st := domain.RentalStatus(stringField(req, "status"))
	if st != "" && !st.Valid() {
		return "", invalidField("status", "enum", "status must be one of pending, active, completed, cancelled")
	}
	return st, nil
}

func (h *AdminHandler) ListRentals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	st, err := parseStatus(req)
	if err != nil {
		return nil, err
	}
	rentals, err := h.adminSvc.ListRentals(ctx, st)
	if err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{
		"rentals": mapRentals(rentals),
		"count":   num(float64(len(rentals))),
	}), nil
}

func (h *AdminHandler) WatchRentals(req *structpb.Struct, stream StructStream) error {
	st, err := parseStatus(req)
	if err != nil {
		return err
	}
	ctx := stream.Context()
	updates, err := h.adminSvc.WatchRentals(ctx)
	if err != nil {
		return toStatus(err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case rentals, ok := <-updates:
			if !ok {
				return nil
			}
			if st != "" {
				rentals = filterRentals(rentals, st)
			}
			msg := obj(map[string]*structpb.Value{
				"rentals": mapRentals(rentals),
				"count":   num(float64(len(rentals))),
			})
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

func filterRentals(rentals []domain.Rental, st domain.RentalStatus) []domain.Rental {
	out := make([]domain.Rental, 0, len(rentals))
	for _, r := range rentals {
		if r.Status == st {
			out = append(out, r)
		}
	}
	return out
}

func (h *AdminHandler) CompleteRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireConfirmation(req); err != nil {
		return nil, err
	}
	rental, err := h.rentalSvc.CompleteRental(ctx, stringField(req, "rentalId"), stringField(req, "carId"))
	if err != nil {
		return nil, toStatus(err)
	}
	logAdminAction(ctx, "complete rental", "rental_id", rental.ID, "car_id", rental.CarID)
	return obj(map[string]*structpb.Value{
		"rental": structpb.NewStructValue(MapRentalToStruct(*rental)),
	}), nil
}

func (h *AdminHandler) CancelRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireConfirmation(req); err != nil {
		return nil, err
	}
	rental, err := h.rentalSvc.CancelRental(ctx, stringField(req, "rentalId"))
	if err != nil {
		return nil, toStatus(err)
	}
	logAdminAction(ctx, "cancel rental", "rental_id", rental.ID)
	return obj(map[string]*structpb.Value{
		"rental": structpb.NewStructValue(MapRentalToStruct(*rental)),
	}), nil
}

func (h *AdminHandler) GetImageUploadUrl(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	up, err := h.imageSvc.GetUploadURL(ctx, stringField(req, "carId"), stringField(req, "fileName"), stringField(req, "contentType"))
	if err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{
		"key":         str(up.Key),
		"uploadUrl":   str(up.UploadURL),
		"downloadUrl": str(up.DownloadURL),
		"expiresAt":   timeValue(up.ExpiresAt),
	}), nil
}
