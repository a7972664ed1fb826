package model

import (
	"regexp"

	"github.com/google/uuid"
)

// Address is a delivery address owned by a user.
type Address struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	UserID                string    `json:"-" db:"user_id"`
	Name                  string    `json:"name" db:"name"`
	MobileNumber          string    `json:"mobileNumber" db:"mobile_number"`
	AlternateMobileNumber *string   `json:"alternateMobileNumber,omitempty" db:"alternate_mobile_number"`
	Address               string    `json:"address" db:"address"`
	Locality              string    `json:"locality" db:"locality"`
	City                  string    `json:"city" db:"city"`
	State                 string    `json:"state" db:"state"`
	Pincode               string    `json:"pincode" db:"pincode"`
	Landmark              *string   `json:"landmark,omitempty" db:"landmark"`
	Country               string    `json:"country" db:"country"`
}

var mobileNumber = regexp.MustCompile(`^\d{10}$`)

// Validate returns per-field problems, or nil when the address is usable.
func (a *Address) Validate() map[string]string {
	fields := map[string]string{}

	required := map[string]string{
		"name":     a.Name,
		"address":  a.Address,
		"locality": a.Locality,
		"city":     a.City,
		"state":    a.State,
		"pincode":  a.Pincode,
	}
	for field, value := range required {
		if value == "" {
			fields[field] = "is required"
		}
	}

	if !mobileNumber.MatchString(a.MobileNumber) {
		fields["mobileNumber"] = "must be exactly 10 digits"
	}
	if a.AlternateMobileNumber != nil && *a.AlternateMobileNumber != "" && !mobileNumber.MatchString(*a.AlternateMobileNumber) {
		fields["alternateMobileNumber"] = "must be exactly 10 digits"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// User is the subset of the account record this service reads.
type User struct {
	ID       string `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	FullName string `json:"fullName" db:"full_name"`
}
