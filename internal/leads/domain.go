package leads

import (
	"time"

	"terraprime/internal/pagination"
)

// Visit is one stay of a lead at the sales office.
type Visit struct {
	ID            string     `json:"id"`
	LeadID        string     `json:"leadId"`
	ArrivalTime   time.Time  `json:"arrivalTime" validate:"required"`
	DepartureTime *time.Time `json:"departureTime,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// Lead is a sales prospect before becoming a client.
type Lead struct {
	ID             string    `json:"id" validate:"required"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Document       string    `json:"document"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Source         string    `json:"source"`
	Status         string    `json:"status"`
	IsInOffice     bool      `json:"isInOffice"`
	VendorID       string    `json:"vendorId,omitempty"`
	LinerID        string    `json:"linerId,omitempty"`
	TelemarketerID string    `json:"telemarketerId,omitempty"`
	Visits         []Visit   `json:"visits,omitempty" validate:"dive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// LeadInput is the payload for creating or updating a lead.
type LeadInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Document  string `json:"document"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Source    string `json:"source"`
	Status    string `json:"status"`
}

// Assignment links a lead to its vendor, liner and telemarketer.
type Assignment struct {
	VendorID       string `json:"vendorId" binding:"required"`
	LinerID        string `json:"linerId,omitempty"`
	TelemarketerID string `json:"telemarketerId,omitempty"`
}

// Filter narrows a lead listing.
type Filter struct {
	Search   string
	InOffice *bool
	VendorID string
	Page     pagination.Params
}

// LeadList is one page of leads.
type LeadList = pagination.Page[Lead]
