package model

import "time"

// Draft is a persisted checkout form snapshot
type Draft struct {
	CartID      string    `db:"cart_id"`
	AddressType string    `db:"address_type"`
	ProviderID  string    `db:"provider_id"`
	Payload     []byte    `db:"payload"`
	UpdatedAt   time.Time `db:"updated_at"`
}
