package model

import (
	"strings"
	"time"
)

// Company is a customer organization.
type Company struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry,omitempty"`
	CompanySize  string    `json:"company_size,omitempty"`
	TaxNumber    string    `json:"tax_number,omitempty"`
	Address      string    `json:"address,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	LinkedInURL  string    `json:"linkedin_url,omitempty"`
	WebsiteURL   string    `json:"website_url,omitempty"`
	ContactCount int       `json:"contact_count,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// CompanyInput is the create/update payload for a company.
type CompanyInput struct {
	Name        string `json:"name"`
	TaxNumber   string `json:"tax_number,omitempty"`
	Industry    string `json:"industry,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty"`
}

// Contact is a person at a customer company.
type Contact struct {
	ID          int64     `json:"id"`
	Company     int64     `json:"company"`
	CompanyName string    `json:"company_name,omitempty"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Position    string    `json:"position,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	IsPrimary   bool      `json:"is_primary"`
	LeadSource  string    `json:"lead_source,omitempty"`
	LeadStatus  string    `json:"lead_status,omitempty"`
	LinkedInURL string    `json:"linkedin_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// FullName joins the first and last name, skipping empty parts.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ContactInput is the create/update payload for a contact.
type ContactInput struct {
	Company     int64  `json:"company"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	IsPrimary   bool   `json:"is_primary,omitempty"`
	LeadSource  string `json:"lead_source,omitempty"`
	LeadStatus  string `json:"lead_status,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// Note is a free-form note attached to a company and/or contact.
type Note struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Company      *int64     `json:"company"`
	CompanyName  string     `json:"company_name,omitempty"`
	Contact      *int64     `json:"contact"`
	ContactName  string     `json:"contact_name,omitempty"`
	ReminderDate *time.Time `json:"reminder_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

// NoteInput is the create/update payload for a note.
type NoteInput struct {
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Company      *int64     `json:"company,omitempty"`
	Contact      *int64     `json:"contact,omitempty"`
	ReminderDate *time.Time `json:"reminder_date,omitempty"`
}
