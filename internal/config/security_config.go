package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token (or dev user header) required
)

// EndpointSecurityConfig maps named HTTP routes to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health and metrics - Public
	"Ping":    SecurityPublic,
	"Metrics": SecurityPublic,

	// Mock storage - Public, the presigned URL is the credential
	"MockUpload":   SecurityPublic,
	"MockDownload": SecurityPublic,

	// Icons - catalog is Public, uploads are Access Protected
	"ListIcons":     SecurityPublic,
	"GetIcon":       SecurityPublic,
	"IconUploadURL": SecurityAccess,

	// Tools - reads Public, writes Access Protected
	"ListTools":           SecurityPublic,
	"GetTool":             SecurityPublic,
	"ListToolsByOwner":    SecurityPublic,
	"CreateTool":          SecurityAccess,
	"UpdateTool":          SecurityAccess,
	"DeleteTool":          SecurityAccess,
	"SetToolAvailability": SecurityAccess,

	// BorrowRequests - All Access Protected
	"CreateBorrowRequest":     SecurityAccess,
	"GetBorrowRequest":        SecurityAccess,
	"ListOwnerBorrowRequests": SecurityAccess,
	"ListBorrowerRequests":    SecurityAccess,
	"TransitionBorrowRequest": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
