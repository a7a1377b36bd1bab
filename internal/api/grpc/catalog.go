package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"driveeasy-rental-backend/internal/catalog"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/service"
)

type CatalogHandler struct {
	catalogSvc service.CatalogService
}

func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

func parseSort(req *structpb.Struct) (catalog.SortKey, error) {
	key, ok := catalog.ParseSortKey(stringField(req, "sort"))
	if !ok {
		return "", invalidField("sort", "enum", "sort must be one of price_asc, price_desc, year_asc, year_desc, name")
	}
	return key, nil
}

func (h *CatalogHandler) ListCars(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sort, err := parseSort(req)
	if err != nil {
		return nil, err
	}
	cars, err := h.catalogSvc.ListCars(ctx, stringField(req, "query"), sort)
	if err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{
		"cars":  mapCars(cars),
		"count": num(float64(len(cars))),
	}), nil
}

func (h *CatalogHandler) GetCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	car, err := h.catalogSvc.GetCar(ctx, stringField(req, "carId"))
	if err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{
		"car": structpb.NewStructValue(MapCarToStruct(*car)),
	}), nil
}

func (h *CatalogHandler) WatchCars(req *structpb.Struct, stream StructStream) error {
	sort, err := parseSort(req)
	if err != nil {
		return err
	}
	ctx := stream.Context()
	updates, err := h.catalogSvc.WatchCars(ctx, stringField(req, "query"), sort)
	if err != nil {
		return toStatus(err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case cars, ok := <-updates:
			if !ok {
				return nil
			}
			msg := obj(map[string]*structpb.Value{
				"cars":  mapCars(cars),
				"count": num(float64(len(cars))),
			})
			if err := stream.Send(msg); err != nil {
				logger.Debug("WatchCars send failed", "error", err)
				return err
			}
		}
	}
}
