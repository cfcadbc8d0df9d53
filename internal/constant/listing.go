package constant

const (
	ListingTypeSale = "sale"
	ListingTypeRent = "rent"
)

const (
	PropertyStatusDraft    = "draft"
	PropertyStatusPending  = "pending"
	PropertyStatusActive   = "active"
	PropertyStatusSold     = "sold"
	PropertyStatusRented   = "rented"
	PropertyStatusArchived = "archived"
)

const (
	ModerationActionHold   = "hold"
	ModerationActionReject = "reject"
)

const (
	InquiryStatusNew      = "new"
	InquiryStatusRead     = "read"
	InquiryStatusAnswered = "answered"
	InquiryStatusArchived = "archived"
)

const (
	DefaultPageSize   = 12
	MaxPageSize       = 50
	MaxListingImages  = 30
	ImageUploadExpiry = 15 // minutes
)

var AllowedImageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}
