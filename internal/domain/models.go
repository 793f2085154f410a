// Package domain defines the persistence models for the discount benefits
// catalog: companies, locations, categories, discounts, roles and users.
// These types are mapped with GORM and form the core data layer of the
// application.
package domain

import (
	"strings"
	"time"
)

// Company is a partner organisation offering discounts to employees.
// Title is the business key: the CSV importer reuses a company by exact title.
//
// Fields:
//   - ID: UUID primary key (char(36)), assigned on first persist.
//   - Title: unique display name (1–50 chars).
//   - Description / Address / Phone: contact details.
//   - Link: partner website, required.
type Company struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Title       string    `json:"title"       gorm:"type:varchar(50);not null;uniqueIndex:ux_companies_title"`
	Description string    `json:"description" gorm:"type:varchar(1000);not null"`
	Address     string    `json:"address"     gorm:"type:varchar(150);not null"`
	Phone       string    `json:"phone"       gorm:"type:varchar(20);not null"`
	Link        string    `json:"link"        gorm:"type:varchar(300);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Company.
func (Company) TableName() string { return "companies" }

// SameFields reports whether two companies carry identical business fields.
// IDs and timestamps are ignored.
func (c Company) SameFields(o Company) bool {
	return c.Title == o.Title &&
		c.Address == o.Address &&
		c.Description == o.Description &&
		c.Phone == o.Phone &&
		c.Link == o.Link
}

// Location is a city where discounts apply. The importer never creates
// locations; they are managed through the catalog API.
type Location struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Country   string    `json:"country"    gorm:"type:varchar(50);not null;uniqueIndex:ux_locations_country_city,priority:1"`
	City      string    `json:"city"       gorm:"type:varchar(50);not null;uniqueIndex:ux_locations_country_city,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Location.
func (Location) TableName() string { return "locations" }

// Category groups discounts (e.g. "Food", "Sport").
type Category struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Title     string    `json:"title"      gorm:"type:varchar(50);not null;uniqueIndex:ux_categories_title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Discount is a single benefit offered by a Company in one or more
// Locations and Categories.
//
// Fields:
//   - Type: free-form offer type (e.g. "Retail").
//   - Description / Condition / Size: offer texts.
//   - Kind: closed enumeration (see DiscountKind).
//   - StartDate / EndDate: validity window; EndDate is optional.
//   - Image: reference to the offer picture.
//   - Company: owning partner (required).
//   - Locations / Categories: non-empty many-to-many associations.
type Discount struct {
	ID          string       `json:"id"          gorm:"type:char(36);primaryKey"`
	Type        string       `json:"type"        gorm:"type:varchar(50);not null"`
	Description string       `json:"description" gorm:"type:varchar(2000);not null"`
	Condition   string       `json:"condition"   gorm:"column:discount_condition;type:varchar(500);not null"`
	Size        string       `json:"size"        gorm:"type:varchar(100);not null"`
	Kind        DiscountKind `json:"kind"        gorm:"type:varchar(16);not null;index"`
	StartDate   time.Time    `json:"start_date"  gorm:"not null"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
	Image       string       `json:"image"       gorm:"type:varchar(300);not null"`
	CompanyID   string       `json:"company_id"  gorm:"type:char(36);not null;index:idx_discounts_company"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"  gorm:"index"`

	Company    Company    `json:"company"    gorm:"foreignKey:CompanyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Locations  []Location `json:"locations"  gorm:"many2many:discount_locations;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Categories []Category `json:"categories" gorm:"many2many:discount_categories;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Discount.
func (Discount) TableName() string { return "discounts" }

// DuplicateOf reports whether d and o describe the same offer: equal type,
// description, condition, size, image and company fields. IDs, dates,
// locations and categories do not take part in the comparison.
func (d *Discount) DuplicateOf(o *Discount) bool {
	if d == nil || o == nil {
		return false
	}
	return d.Type == o.Type &&
		d.Description == o.Description &&
		d.Condition == o.Condition &&
		d.Size == o.Size &&
		d.Image == o.Image &&
		d.Company.SameFields(o.Company)
}

// DiscountKind is the closed set of offer kinds.
type DiscountKind string

const (
	KindDiscount    DiscountKind = "DISCOUNT"
	KindGift        DiscountKind = "GIFT"
	KindCertificate DiscountKind = "CERTIFICATE"
	KindBonus       DiscountKind = "BONUS"
)

// DiscountKinds lists every accepted kind in declaration order.
var DiscountKinds = []DiscountKind{KindDiscount, KindGift, KindCertificate, KindBonus}

// ParseDiscountKind maps text (case-insensitive, surrounding space ignored)
// to a DiscountKind. It returns ErrUnknownKind for anything outside the set.
func ParseDiscountKind(s string) (DiscountKind, error) {
	k := DiscountKind(strings.ToUpper(strings.TrimSpace(s)))
	if k.Valid() {
		return k, nil
	}
	return "", ErrUnknownKind
}

// Valid reports whether k belongs to the closed set.
func (k DiscountKind) Valid() bool {
	for _, v := range DiscountKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Role names used by the authorization layer.
const (
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
	RoleEmployee  = "EMPLOYEE"
)

// Role is a named permission bundle assigned to users.
type Role struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(32);not null;uniqueIndex:ux_roles_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Role.
func (Role) TableName() string { return "roles" }

// User is an employee account. PasswordHash holds an argon2id encoded hash
// and is never serialised.
type User struct {
	ID           string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"       gorm:"type:varchar(254);not null;uniqueIndex:ux_users_email"`
	FirstName    string    `json:"first_name"  gorm:"type:varchar(50);not null"`
	LastName     string    `json:"last_name"   gorm:"type:varchar(50);not null"`
	PasswordHash string    `json:"-"           gorm:"type:varchar(255);not null"`
	RoleID       string    `json:"role_id"     gorm:"type:char(36);not null;index"`
	LocationID   *string   `json:"location_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Role     Role      `json:"role"               gorm:"foreignKey:RoleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
