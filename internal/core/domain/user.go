package domain

import (
	"encoding/json"
	"strconv"
)

// Role is the account type claimed by the server for the current user.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// Status is the account standing reported by the server.
type Status string

const (
	StatusActive   Status = "active"
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
	StatusBlocked  Status = "blocked"
)

// User is the in-memory user record. It is derived from the server after
// every credential change and never persisted by the client.
type User struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Type   Role   `json:"type"`
	Status Status `json:"status,omitempty"`

	// Customer extension.
	Address string `json:"address,omitempty"`
	Pincode string `json:"pincode,omitempty"`

	// Professional extension.
	ServiceType       string  `json:"service_type,omitempty"`
	Experience        string  `json:"experience,omitempty"`
	Charges           float64 `json:"charges,omitempty"`
	Available         *bool   `json:"available,omitempty"`
	IDProofPath       string  `json:"id_proof_path,omitempty"`
	CertificationPath string  `json:"certification_path,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate session-owned state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Available != nil {
		v := *u.Available
		c.Available = &v
	}
	return &c
}

// UnmarshalJSON accepts numbers for pincode and experience, which the
// server stores as integers for some account types.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	aux := struct {
		*plain
		Pincode    Text `json:"pincode"`
		Experience Text `json:"experience"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	u.Pincode = string(aux.Pincode)
	u.Experience = string(aux.Experience)
	return nil
}

// Text decodes a JSON string, number or null into its text form.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = Text(x)
	case float64:
		*t = Text(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		*t = Text(b)
	}
	return nil
}

// ProfileExtension is the role-specific part of a profile as returned by
// GET /customers/profile and GET /professionals/profile.
type ProfileExtension struct {
	User        *User   `json:"user,omitempty"`
	Address     string  `json:"address,omitempty"`
	Pincode     string  `json:"pincode,omitempty"`
	ServiceType string  `json:"service_type,omitempty"`
	Experience  string  `json:"experience,omitempty"`
	Charges     float64 `json:"charges,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

// Merge overlays the extension onto a copy of base. Identity fields of the
// base record are kept even if the extension's nested user disagrees.
func (e *ProfileExtension) Merge(base *User) *User {
	merged := base.Clone()
	if e == nil || merged == nil {
		return merged
	}
	if e.User != nil {
		if e.User.Name != "" {
			merged.Name = e.User.Name
		}
		if e.User.Phone != "" {
			merged.Phone = e.User.Phone
		}
		if e.User.Status != "" {
			merged.Status = e.User.Status
		}
	}
	switch merged.Type {
	case RoleCustomer:
		merged.Address = e.Address
		merged.Pincode = e.Pincode
	case RoleProfessional:
		merged.Experience = e.Experience
		merged.ServiceType = e.ServiceType
		merged.Charges = e.Charges
		if e.Available != nil {
			v := *e.Available
			merged.Available = &v
		}
	}
	return merged
}
