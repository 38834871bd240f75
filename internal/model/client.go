package model

import "time"

// Client is a customer of the agency, identified by a Turkish national id
// (TCKN) for people or a tax number (VKN) for legal entities.
type Client struct {
	CreatedAt  time.Time
	ID         string
	OwnerID    string
	Name       string
	NationalID string
	TaxID      string
	Phone      string
	Email      string
	Address    string
}

// Company is an insurance company. The set is static reference data that
// imports never extend.
type Company struct {
	CreatedAt time.Time
	ID        string
	Name      string
}
