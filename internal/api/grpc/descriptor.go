package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Services speak google.protobuf.Struct in both directions, so descriptors are
// assembled here instead of generated from .proto files.

const (
	CatalogServiceName = "carrental.v1.CatalogService"
	RentalServiceName  = "carrental.v1.RentalService"
	AuthServiceName    = "carrental.v1.AuthService"
	AdminServiceName   = "carrental.v1.AdminService"
	ContactServiceName = "carrental.v1.ContactService"

	metadataFile = "carrental/v1/carrental.proto"
)

type unaryMethod[T any] func(srv T, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

type streamMethod[T any] func(srv T, req *structpb.Struct, stream StructStream) error

// StructStream is the server side of a server-streaming call.
type StructStream interface {
	Send(*structpb.Struct) error
	Context() context.Context
}

type structStream struct {
	gogrpc.ServerStream
}

func (s structStream) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

func unary[T any](service, method string, fn unaryMethod[T]) gogrpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return gogrpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(T), ctx, in)
			}
			info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(T), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func serverStream[T any](method string, fn streamMethod[T]) gogrpc.StreamDesc {
	return gogrpc.StreamDesc{
		StreamName:    method,
		ServerStreams: true,
		Handler: func(srv any, stream gogrpc.ServerStream) error {
			in := new(structpb.Struct)
			if err := stream.RecvMsg(in); err != nil {
				return err
			}
			return fn(srv.(T), in, structStream{stream})
		},
	}
}

type CatalogServer interface {
	ListCars(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	WatchCars(req *structpb.Struct, stream StructStream) error
}

var CatalogServiceDesc = gogrpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unary(CatalogServiceName, "ListCars", CatalogServer.ListCars),
		unary(CatalogServiceName, "GetCar", CatalogServer.GetCar),
	},
	Streams: []gogrpc.StreamDesc{
		serverStream("WatchCars", CatalogServer.WatchCars),
	},
	Metadata: metadataFile,
}

type RentalServer interface {
	SubmitRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var RentalServiceDesc = gogrpc.ServiceDesc{
	ServiceName: RentalServiceName,
	HandlerType: (*RentalServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unary(RentalServiceName, "SubmitRental", RentalServer.SubmitRental),
		unary(RentalServiceName, "GetRental", RentalServer.GetRental),
	},
	Metadata: metadataFile,
}

type AuthServer interface {
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Logout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CurrentUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var AuthServiceDesc = gogrpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unary(AuthServiceName, "Login", AuthServer.Login),
		unary(AuthServiceName, "Logout", AuthServer.Logout),
		unary(AuthServiceName, "CurrentUser", AuthServer.CurrentUser),
	},
	Metadata: metadataFile,
}

type AdminServer interface {
	GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteCar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListRentals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	WatchRentals(req *structpb.Struct, stream StructStream) error
	CompleteRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetImageUploadUrl(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var AdminServiceDesc = gogrpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unary(AdminServiceName, "GetDashboard", AdminServer.GetDashboard),
		unary(AdminServiceName, "CreateCar", AdminServer.CreateCar),
		unary(AdminServiceName, "UpdateCar", AdminServer.UpdateCar),
		unary(AdminServiceName, "DeleteCar", AdminServer.DeleteCar),
		unary(AdminServiceName, "ListRentals", AdminServer.ListRentals),
		unary(AdminServiceName, "CompleteRental", AdminServer.CompleteRental),
		unary(AdminServiceName, "CancelRental", AdminServer.CancelRental),
		unary(AdminServiceName, "GetImageUploadUrl", AdminServer.GetImageUploadUrl),
	},
	Streams: []gogrpc.StreamDesc{
		serverStream("WatchRentals", AdminServer.WatchRentals),
	},
	Metadata: metadataFile,
}

type ContactServer interface {
	SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ContactServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ContactServiceName,
	HandlerType: (*ContactServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unary(ContactServiceName, "SendMessage", ContactServer.SendMessage),
	},
	Metadata: metadataFile,
}

// Handlers bundles every service implementation registered on the server.
type Handlers struct {
	Catalog CatalogServer
	Rental  RentalServer
	Auth    AuthServer
	Admin   AdminServer
	Contact ContactServer
}

func Register(s gogrpc.ServiceRegistrar, h Handlers) {
	s.RegisterService(&CatalogServiceDesc, h.Catalog)
	s.RegisterService(&RentalServiceDesc, h.Rental)
	s.RegisterService(&AuthServiceDesc, h.Auth)
	s.RegisterService(&AdminServiceDesc, h.Admin)
	s.RegisterService(&ContactServiceDesc, h.Contact)
}
