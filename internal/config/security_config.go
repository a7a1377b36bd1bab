// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAdmin                       // Admin session required
)

const (
	CatalogServicePrefix = "/carrental.v1.CatalogService/"
	RentalServicePrefix  = "/carrental.v1.RentalService/"
	AuthServicePrefix    = "/carrental.v1.AuthService/"
	AdminServicePrefix   = "/carrental.v1.AdminService/"
	ContactServicePrefix = "/carrental.v1.ContactService/"
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// CatalogService - Public
	CatalogServicePrefix + "ListCars":  SecurityPublic,
	CatalogServicePrefix + "GetCar":    SecurityPublic,
	CatalogServicePrefix + "WatchCars": SecurityPublic,

	// RentalService - Public
	RentalServicePrefix + "SubmitRental": SecurityPublic,
	RentalServicePrefix + "GetRental":    SecurityPublic,

	// ContactService - Public
	ContactServicePrefix + "SendMessage": SecurityPublic,

	// AuthService
	AuthServicePrefix + "Login":       SecurityPublic,
	AuthServicePrefix + "Logout":      SecurityAdmin,
	AuthServicePrefix + "CurrentUser": SecurityAdmin,

	// AdminService - All Admin Protected
	AdminServicePrefix + "GetDashboard":      SecurityAdmin,
	AdminServicePrefix + "CreateCar":         SecurityAdmin,
	AdminServicePrefix + "UpdateCar":         SecurityAdmin,
	AdminServicePrefix + "DeleteCar":         SecurityAdmin,
	AdminServicePrefix + "ListRentals":       SecurityAdmin,
	AdminServicePrefix + "WatchRentals":      SecurityAdmin,
	AdminServicePrefix + "CompleteRental":    SecurityAdmin,
	AdminServicePrefix + "CancelRental":      SecurityAdmin,
	AdminServicePrefix + "GetImageUploadUrl": SecurityAdmin,

	// Health and reflection
	"/grpc.health.v1.Health/Check":                                   SecurityPublic,
	"/grpc.health.v1.Health/Watch":                                   SecurityPublic,
	"/grpc.health.v1.Health/List":                                    SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityPublic,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityPublic,
}

// IdempotentMethods are replayed from cache when a client retries with the
// same idempotency key.
var IdempotentMethods = map[string]bool{
	RentalServicePrefix + "SubmitRental":  true,
	ContactServicePrefix + "SendMessage":  true,
	AdminServicePrefix + "CreateCar":      true,
	AdminServicePrefix + "CompleteRental": true,
	AdminServicePrefix + "CancelRental":   true,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
